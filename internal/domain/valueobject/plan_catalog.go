// Package valueobject contains domain value objects for the streaming subscription system.
package valueobject

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Plan names offered by the streaming service.
const (
	PlanMobile   = "Mobile"
	PlanStandard = "Standard"
	PlanPremium  = "Premium"
)

// PlanCatalog maps plan names to their monthly full price.
// A catalog is immutable once built.
type PlanCatalog struct {
	prices map[string]decimal.Decimal
}

// DefaultPlanCatalog returns the catalog with the service's standard prices.
func DefaultPlanCatalog() PlanCatalog {
	return PlanCatalog{
		prices: map[string]decimal.Decimal{
			PlanMobile:   decimal.NewFromInt(149),
			PlanStandard: decimal.NewFromInt(499),
			PlanPremium:  decimal.NewFromInt(649),
		},
	}
}

// NewPlanCatalog builds a catalog from the given prices.
func NewPlanCatalog(prices map[string]decimal.Decimal) (PlanCatalog, error) {
	if len(prices) == 0 {
		return PlanCatalog{}, fmt.Errorf("plan catalog must contain at least one plan")
	}

	copied := make(map[string]decimal.Decimal, len(prices))
	for name, price := range prices {
		name = strings.TrimSpace(name)
		if name == "" {
			return PlanCatalog{}, fmt.Errorf("plan name cannot be empty")
		}
		if !price.IsPositive() {
			return PlanCatalog{}, fmt.Errorf("plan %q must have a positive price", name)
		}
		copied[name] = price
	}

	return PlanCatalog{prices: copied}, nil
}

// ParsePlanCatalog parses a "Name=price,Name=price" list.
func ParsePlanCatalog(raw string) (PlanCatalog, error) {
	prices := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return PlanCatalog{}, fmt.Errorf("invalid plan entry %q: expected Name=price", pair)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return PlanCatalog{}, fmt.Errorf("invalid price for plan %q: %w", name, err)
		}
		prices[strings.TrimSpace(name)] = price
	}
	return NewPlanCatalog(prices)
}

// Price returns the full monthly price of a plan.
func (c PlanCatalog) Price(plan string) (decimal.Decimal, bool) {
	price, ok := c.prices[plan]
	return price, ok
}

// Has reports whether the plan exists in the catalog.
func (c PlanCatalog) Has(plan string) bool {
	_, ok := c.prices[plan]
	return ok
}

// Names returns the plan names ordered by price, cheapest first.
func (c PlanCatalog) Names() []string {
	names := make([]string, 0, len(c.prices))
	for name := range c.prices {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := c.prices[names[i]], c.prices[names[j]]
		if pi.Equal(pj) {
			return names[i] < names[j]
		}
		return pi.LessThan(pj)
	})
	return names
}

// SplitPrice returns the per-member share of a plan split between members,
// rounded half away from zero to two decimal places.
func (c PlanCatalog) SplitPrice(plan string, members int) (decimal.Decimal, error) {
	price, ok := c.prices[plan]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown plan %q", plan)
	}
	if members <= 0 {
		return decimal.Zero, fmt.Errorf("member count must be positive, got %d", members)
	}
	return price.Div(decimal.NewFromInt(int64(members))).Round(2), nil
}
