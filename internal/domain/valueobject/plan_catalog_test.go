package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCatalog_SplitPrice(t *testing.T) {
	catalog := DefaultPlanCatalog()

	tests := []struct {
		name     string
		plan     string
		members  int
		expected string
	}{
		{name: "Premium between two", plan: PlanPremium, members: 2, expected: "324.50"},
		{name: "Standard between three rounds down", plan: PlanStandard, members: 3, expected: "166.33"},
		{name: "Mobile between four", plan: PlanMobile, members: 4, expected: "37.25"},
		{name: "Standard between two", plan: PlanStandard, members: 2, expected: "249.50"},
		{name: "Mobile between three", plan: PlanMobile, members: 3, expected: "49.67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := catalog.SplitPrice(tt.plan, tt.members)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, split.StringFixed(2))
		})
	}

	t.Run("unknown plan", func(t *testing.T) {
		_, err := catalog.SplitPrice("Ultra", 2)
		assert.Error(t, err)
	})

	t.Run("zero members", func(t *testing.T) {
		_, err := catalog.SplitPrice(PlanMobile, 0)
		assert.Error(t, err)
	})
}

func TestPlanCatalog_Names(t *testing.T) {
	catalog := DefaultPlanCatalog()
	assert.Equal(t, []string{PlanMobile, PlanStandard, PlanPremium}, catalog.Names())
	assert.True(t, catalog.Has(PlanStandard))
	assert.False(t, catalog.Has("standard"))
}

func TestParsePlanCatalog(t *testing.T) {
	t.Run("valid list", func(t *testing.T) {
		catalog, err := ParsePlanCatalog("Mobile=199, Premium=799.50")
		require.NoError(t, err)

		price, ok := catalog.Price(PlanPremium)
		require.True(t, ok)
		assert.True(t, price.Equal(decimal.RequireFromString("799.50")))
		assert.False(t, catalog.Has(PlanStandard))
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := ParsePlanCatalog("Mobile:199")
		assert.Error(t, err)
	})

	t.Run("non numeric price", func(t *testing.T) {
		_, err := ParsePlanCatalog("Mobile=cheap")
		assert.Error(t, err)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := ParsePlanCatalog("Mobile=-1")
		assert.Error(t, err)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParsePlanCatalog("")
		assert.Error(t, err)
	})
}
