package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentCash is used when a commit does not name a payment method.
const PaymentCash = "cash"

// Sale is an immutable committed transaction.
type Sale struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"createdAt"`
	Total         decimal.Decimal `json:"total"`
	Tendered      decimal.Decimal `json:"tendered"`
	Change        decimal.Decimal `json:"change"`
	PaymentMethod string          `json:"paymentMethod"`
	CustomerID    *string         `json:"customerId,omitempty"`
	CashierID     string          `json:"cashierId"`
	PointsEarned  int64           `json:"pointsEarned"`
	Lines         []SaleLineItem  `json:"lines"`
}

// SaleLineItem belongs to exactly one sale. UnitPrice is the price at the time
// of sale, not the product's current price.
type SaleLineItem struct {
	SaleID      string          `json:"saleId"`
	LineNo      int             `json:"lineNo"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Subtotal returns Quantity × UnitPrice.
func (l SaleLineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LinesTotal sums the line subtotals of a sale.
func LinesTotal(lines []SaleLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
