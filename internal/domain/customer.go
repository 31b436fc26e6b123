package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer represents a loyalty member. Points and TotalSpent are only changed
// as a side effect of a committed sale; the membership tier is derived from
// TotalSpent and never stored.
type Customer struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone,omitempty"`
	Email      string          `json:"email,omitempty"`
	Address    string          `json:"address,omitempty"`
	Points     int64           `json:"points"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
	CreatedAt  time.Time       `json:"createdAt"`
}
