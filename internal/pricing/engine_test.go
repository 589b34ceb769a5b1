package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *Engine { return NewEngine(DefaultCatalog()) }

func TestComputePriceWebBakeryOrderOnline(t *testing.T) {
	e := newEngine()
	features := e.FilterFeatures("Web Services", "bakery", []string{"order_online"})
	require.Equal(t, []string{"order_online"}, features)

	price, err := e.ComputePrice("Web Services", TierBasic, "bakery", 1, features)
	require.NoError(t, err)
	assert.Equal(t, 280, price)
	assert.Equal(t, 14, e.ComputeHours("Web Services", TierBasic, 1, features))
}

func TestComputePriceChargesExtraPages(t *testing.T) {
	e := newEngine()
	price, err := e.ComputePrice("Web Services", TierBasic, "bakery", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 560, price)
	// 200 per page / hourly rate 20 = 10h per extra page
	assert.Equal(t, 28, e.ComputeHours("Web Services", TierBasic, 3, nil))
}

func TestComputePriceIgnoresPagesWithoutPageCost(t *testing.T) {
	e := newEngine()
	price, err := e.ComputePrice("ERP Systems", TierPro, "retail", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, price)
}

func TestComputePriceErrors(t *testing.T) {
	e := newEngine()

	_, err := e.ComputePrice("Space Travel", TierBasic, "bakery", 1, nil)
	assert.True(t, errors.Is(err, ErrInvalidService))

	_, err = e.ComputePrice("Web Services", Tier("gold"), "bakery", 1, nil)
	assert.True(t, errors.Is(err, ErrInvalidTier))
}

func TestComputePriceSkipsInapplicableFeatures(t *testing.T) {
	e := newEngine()
	// unfiltered input: booking is not sold to bakeries, "teleport" does not exist
	price, err := e.ComputePrice("Web Services", TierBasic, "bakery", 1, []string{"booking", "teleport", "seo"})
	require.NoError(t, err)
	assert.Equal(t, 210, price)
}

func TestComputePriceChargesRepeatedFeatureOnce(t *testing.T) {
	e := newEngine()
	price, err := e.ComputePrice("Web Services", TierBasic, "bakery", 1, []string{"seo", "seo"})
	require.NoError(t, err)
	assert.Equal(t, 210, price)
	assert.Equal(t, 8, e.ComputeHours("Web Services", TierBasic, 1, []string{"seo", "seo"}))
}

func TestComputeHoursUnknownServiceIsZero(t *testing.T) {
	e := newEngine()
	assert.Zero(t, e.ComputeHours("Space Travel", TierBasic, 4, []string{"seo"}))
	assert.Zero(t, e.ComputeHours("ERP Systems", Tier("gold"), 1, nil))
}

func TestBasePriceIsLowerBound(t *testing.T) {
	e := newEngine()
	for _, def := range e.Catalog().Services() {
		for _, tier := range Tiers {
			price, err := e.ComputePrice(def.Name, tier, "any", 1, nil)
			require.NoError(t, err, "%s/%s", def.Name, tier)
			assert.GreaterOrEqual(t, price, def.BasePrice[tier], "%s/%s", def.Name, tier)
		}
	}
}

func TestFilterFeaturesIsIdempotent(t *testing.T) {
	e := newEngine()
	requested := []string{"cart", "booking", "seo", "nope", "seo", "order_online", "gdpr"}
	for _, subtype := range []string{"bakery", "salon", "retail", "unknown"} {
		once := e.FilterFeatures("Web Services", subtype, requested)
		twice := e.FilterFeatures("Web Services", subtype, once)
		assert.Equal(t, once, twice, subtype)
	}
}

func TestFilterFeaturesRespectsSubtypeAllowList(t *testing.T) {
	e := newEngine()
	def, ok := e.Catalog().Service("Web Services")
	require.True(t, ok)

	for _, f := range def.Features {
		if len(f.Subtypes) == 0 {
			continue
		}
		got := e.FilterFeatures("Web Services", "not-a-listed-subtype", []string{f.Key})
		assert.Empty(t, got, f.Key)
	}

	got := e.FilterFeatures("Web Services", "salon", []string{"order_online", "booking", "seo"})
	assert.Equal(t, []string{"booking", "seo"}, got)
}

func TestFilterFeaturesUnknownService(t *testing.T) {
	got := newEngine().FilterFeatures("Space Travel", "bakery", []string{"seo"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEstimate(t *testing.T) {
	e := newEngine()

	est, err := e.Estimate(Request{
		Service:  "Mobile Applications",
		Tier:     TierPro,
		Subtype:  "taxi_app",
		Pages:    7,
		Features: []string{"gps_tracking", "chat", "push"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, est.Pages)
	assert.Equal(t, []string{"gps_tracking", "push"}, est.Features)
	assert.Equal(t, 1000+70+50, est.Price)
	assert.Equal(t, 50+5, est.Hours)

	_, err = e.Estimate(Request{Service: "Web Services", Tier: TierBasic, Subtype: "  "})
	assert.True(t, errors.Is(err, ErrSubtypeRequired))

	_, err = e.Estimate(Request{Service: "Web Services", Tier: "gold", Subtype: "bakery"})
	assert.True(t, errors.Is(err, ErrInvalidTier))

	est, err = e.Estimate(Request{Service: "Web Services", Tier: TierBasic, Subtype: "bakery", Pages: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, est.Pages)
	assert.Equal(t, 160, est.Price)
}

func TestServicesReturnsCopies(t *testing.T) {
	c := DefaultCatalog()
	defs := c.Services()
	require.Len(t, defs, 6)
	defs[0].BasePrice[TierBasic] = -1
	defs[0].Features[0].Price = -1

	def, ok := c.Service(defs[0].Name)
	require.True(t, ok)
	assert.NotEqual(t, -1, def.BasePrice[TierBasic])
	assert.NotEqual(t, -1, def.Features[0].Price)
}
