package mutual

import (
	"github.com/shopspring/decimal"

	"github.com/streamshare/backend/internal/domain/valueobject"
)

// PlanQuote is a plan's full price.
type PlanQuote struct {
	Name  string
	Price decimal.Decimal
}

// ListPlansUseCase exposes the plan catalog so the admin can pick a plan when forming a group.
type ListPlansUseCase struct {
	catalog valueobject.PlanCatalog
}

// NewListPlansUseCase creates a new ListPlansUseCase instance.
func NewListPlansUseCase(catalog valueobject.PlanCatalog) *ListPlansUseCase {
	return &ListPlansUseCase{catalog: catalog}
}

// Execute returns the plans, cheapest first.
func (uc *ListPlansUseCase) Execute() []PlanQuote {
	names := uc.catalog.Names()
	quotes := make([]PlanQuote, 0, len(names))
	for _, name := range names {
		price, _ := uc.catalog.Price(name)
		quotes = append(quotes, PlanQuote{Name: name, Price: price})
	}
	return quotes
}
