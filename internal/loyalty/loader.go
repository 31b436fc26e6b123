package loyalty

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// tierFile is the on-disk layout of a tier table:
//
//	tiers:
//	  - name: regular
//	    min_spend: "0"
//	    point_multiplier: "1"
//	    discount_pct: "0"
type tierFile struct {
	Tiers []tierEntry `yaml:"tiers"`
}

type tierEntry struct {
	Name            string `yaml:"name"`
	MinSpend        string `yaml:"min_spend"`
	PointMultiplier string `yaml:"point_multiplier"`
	DiscountPct     string `yaml:"discount_pct"`
}

// LoadTable reads a YAML tier table from path.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tier file %s: %w", path, err)
	}
	return ParseTable(data)
}

// ParseTable parses YAML tier data. Omitted multipliers default to 1 and
// omitted discounts to 0.
func ParseTable(data []byte) (*Table, error) {
	var f tierFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tier yaml: %w", err)
	}
	tiers := make([]Tier, 0, len(f.Tiers))
	for i, e := range f.Tiers {
		minSpend, err := parseAmount(e.MinSpend, "0")
		if err != nil {
			return nil, fmt.Errorf("tier %d min_spend: %w", i, err)
		}
		mult, err := parseAmount(e.PointMultiplier, "1")
		if err != nil {
			return nil, fmt.Errorf("tier %d point_multiplier: %w", i, err)
		}
		disc, err := parseAmount(e.DiscountPct, "0")
		if err != nil {
			return nil, fmt.Errorf("tier %d discount_pct: %w", i, err)
		}
		tiers = append(tiers, Tier{
			Name:            e.Name,
			MinSpend:        minSpend,
			PointMultiplier: mult,
			DiscountPct:     disc,
		})
	}
	return NewTable(tiers)
}

func parseAmount(raw, def string) (decimal.Decimal, error) {
	if raw == "" {
		raw = def
	}
	return decimal.NewFromString(raw)
}
