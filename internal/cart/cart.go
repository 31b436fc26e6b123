// Package cart holds the session-local cart aggregate. A cart never writes
// inventory; its stock checks use the figure known at the time of the check
// and are advisory until a commit re-checks persisted stock.
package cart

import (
	"encoding/json"
	"time"

	"pos-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Line is one product entry. UnitPrice is captured when the product is first
// added; KnownStock is the stock ceiling from the latest check.
type Line struct {
	ProductID  string          `json:"productId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	KnownStock int             `json:"knownStock"`
}

// Subtotal returns Quantity × UnitPrice.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart maps product IDs to lines. It is owned by one caller and is not safe
// for concurrent mutation.
type Cart struct {
	ID        string
	CreatedAt time.Time
	lines     map[string]*Line
	order     []string
}

// New returns an empty cart.
func New(id string, now time.Time) *Cart {
	return &Cart{ID: id, CreatedAt: now, lines: make(map[string]*Line)}
}

// AddLine adds qty units of product, merging into an existing line. The
// resulting quantity must not exceed the product's stock as currently known.
func (c *Cart) AddLine(p domain.Product, qty int) error {
	if qty < 1 {
		return domain.ErrInvalidQuantity
	}
	if p.Archived() {
		return domain.ErrProductArchived
	}
	c.ensure()
	if line, ok := c.lines[p.ID]; ok {
		next := line.Quantity + qty
		if next > p.Stock {
			return &domain.InsufficientStockError{ProductID: p.ID, Requested: next, Available: p.Stock}
		}
		line.Quantity = next
		line.KnownStock = p.Stock
		return nil
	}
	if qty > p.Stock {
		return &domain.InsufficientStockError{ProductID: p.ID, Requested: qty, Available: p.Stock}
	}
	c.lines[p.ID] = &Line{
		ProductID:  p.ID,
		Name:       p.Name,
		Quantity:   qty,
		UnitPrice:  p.Price,
		KnownStock: p.Stock,
	}
	c.order = append(c.order, p.ID)
	return nil
}

// SetQuantity replaces a line's quantity. qty < 1 removes the line.
func (c *Cart) SetQuantity(productID string, qty int) error {
	if qty < 1 {
		c.RemoveLine(productID)
		return nil
	}
	line, ok := c.lines[productID]
	if !ok {
		return domain.ErrNotFound
	}
	if qty > line.KnownStock {
		return &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: line.KnownStock}
	}
	line.Quantity = qty
	return nil
}

// RemoveLine drops a line; absent lines are ignored.
func (c *Cart) RemoveLine(productID string) {
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// UpdateStock records a fresher stock figure for a line. It reports whether
// the line now exceeds the ceiling; the quantity is left for the caller to
// adjust.
func (c *Cart) UpdateStock(productID string, stock int) (over bool, ok bool) {
	line, found := c.lines[productID]
	if !found {
		return false, false
	}
	line.KnownStock = stock
	return line.Quantity > stock, true
}

// Total sums quantity × unit price over all lines. It is recomputed on every
// call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, id := range c.order {
		total = total.Add(c.lines[id].Subtotal())
	}
	return total
}

// Lines returns copies of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// Line returns a copy of the line for productID.
func (c *Cart) Line(productID string) (Line, bool) {
	line, ok := c.lines[productID]
	if !ok {
		return Line{}, false
	}
	return *line, true
}

// Len returns the number of distinct products.
func (c *Cart) Len() int {
	return len(c.order)
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.order) == 0
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.lines = make(map[string]*Line)
	c.order = nil
}

func (c *Cart) ensure() {
	if c.lines == nil {
		c.lines = make(map[string]*Line)
	}
}

type cartJSON struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
}

// MarshalJSON encodes the cart with its lines in insertion order and the
// derived total.
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartJSON{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		Lines:     c.Lines(),
		Total:     c.Total(),
	})
}

// UnmarshalJSON restores a cart. The encoded total is ignored.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw cartJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ID = raw.ID
	c.CreatedAt = raw.CreatedAt
	c.Clear()
	for i := range raw.Lines {
		line := raw.Lines[i]
		if _, dup := c.lines[line.ProductID]; dup {
			continue
		}
		c.lines[line.ProductID] = &line
		c.order = append(c.order, line.ProductID)
	}
	return nil
}
