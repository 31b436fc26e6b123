package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pos-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter loads a product catalogue from CSV with the header
// sku,name,price,stock,category. Rows are upserted by SKU; stock is only
// applied to products that do not exist yet.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

type csvRow struct {
	line     int
	SKU      string
	Name     string
	Price    decimal.Decimal
	Stock    int
	Category string
}

var requiredColumns = []string{"sku", "name", "price"}

// Run parses CSV rows and upserts them in file order. It stops at the first
// invalid row and returns the number of rows imported before it.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing required column %q", col)
		}
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		row, err := parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	p := domain.Product{
		SKU:      row.SKU,
		Name:     row.Name,
		Price:    row.Price,
		Stock:    row.Stock,
		Category: row.Category,
	}
	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q (row %d): %w", row.SKU, row.line, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	row := &csvRow{
		line:     line,
		SKU:      pick(record, index, "sku"),
		Name:     pick(record, index, "name"),
		Category: domain.NormalizeCategory(pick(record, index, "category")),
	}
	if row.SKU == "" || row.Name == "" {
		return nil, fmt.Errorf("row %d: sku and name are required", line)
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil {
		return nil, fmt.Errorf("row %d: invalid price: %w", line, err)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("row %d: price must not be negative", line)
	}
	row.Price = price

	if raw := pick(record, index, "stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("row %d: invalid stock %q", line, raw)
		}
		row.Stock = stock
	}
	return row, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
