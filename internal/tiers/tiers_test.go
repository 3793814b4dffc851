package tiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratecast/internal/domain"
)

func tiered(code int, ts ...domain.Tier) domain.ClassPolicy {
	return domain.ClassPolicy{Code: code, Tiers: ts}
}

// assertWellFormed checks the structural invariant: at most one unbounded
// tier, and if present it is last, with finite bounds ascending.
func assertWellFormed(t *testing.T, ts []domain.Tier) {
	t.Helper()
	unbounded := 0
	for i, tier := range ts {
		if tier.UpTo == nil {
			unbounded++
			assert.Equal(t, len(ts)-1, i, "unbounded tier must be last")
			continue
		}
		if i > 0 && ts[i-1].UpTo != nil {
			assert.LessOrEqual(t, *ts[i-1].UpTo, *tier.UpTo, "bounds must ascend")
		}
	}
	assert.LessOrEqual(t, unbounded, 1)
}

func TestAddTierFromFlat(t *testing.T) {
	flat := domain.ClassPolicy{Code: 3, Rate: domain.RatePtr(6.05)}

	got := AddTier(flat, DefaultBoundStep)

	assert.Equal(t, domain.KindTiered, got.Kind())
	assert.Nil(t, got.Rate, "flat rate must be cleared on conversion")
	require.Len(t, got.Tiers, 1)
	assert.Equal(t, 6.05, got.Tiers[0].Rate)
	assert.Nil(t, got.Tiers[0].UpTo)
}

func TestAddTierExtendsTerminalTier(t *testing.T) {
	p := tiered(1,
		domain.Tier{Rate: 5, UpTo: domain.BoundPtr(500_000)},
		domain.Tier{Rate: 7},
	)

	got := AddTier(p, DefaultBoundStep)

	require.Len(t, got.Tiers, 3)
	assert.Equal(t, 5.0, got.Tiers[0].Rate)
	require.NotNil(t, got.Tiers[1].UpTo)
	assert.Equal(t, int64(1_500_000), *got.Tiers[1].UpTo)
	assert.Equal(t, 7.0, got.Tiers[1].Rate)
	assert.Equal(t, 7.0, got.Tiers[2].Rate, "new terminal tier inherits the old terminal rate")
	assert.Nil(t, got.Tiers[2].UpTo)
	assertWellFormed(t, got.Tiers)
}

func TestAddTierSingleTierUsesStepFromZero(t *testing.T) {
	p := tiered(9, domain.Tier{Rate: 1.8})

	got := AddTier(p, DefaultBoundStep)

	require.Len(t, got.Tiers, 2)
	require.NotNil(t, got.Tiers[0].UpTo)
	assert.Equal(t, int64(1_000_000), *got.Tiers[0].UpTo)
	assert.Nil(t, got.Tiers[1].UpTo)
	assertWellFormed(t, got.Tiers)
}

func TestAddTierDoesNotMutateInput(t *testing.T) {
	p := tiered(1,
		domain.Tier{Rate: 5, UpTo: domain.BoundPtr(500_000)},
		domain.Tier{Rate: 7},
	)

	_ = AddTier(p, DefaultBoundStep)

	assert.Nil(t, p.Tiers[1].UpTo, "caller's terminal tier must stay unbounded")
}

func TestRemoveLastTierCollapsesToFlat(t *testing.T) {
	p := tiered(2, domain.Tier{Rate: 3.5})

	got, collapsed := RemoveTier(p, 0)

	assert.True(t, collapsed)
	assert.Equal(t, domain.KindFlat, got.Kind())
	require.NotNil(t, got.Rate)
	assert.Equal(t, 3.5, *got.Rate)
	assert.Empty(t, got.Tiers)
}

func TestRemoveTerminalTierReopensPrevious(t *testing.T) {
	p := tiered(1,
		domain.Tier{Rate: 5, UpTo: domain.BoundPtr(1_000_000)},
		domain.Tier{Rate: 8.5, UpTo: domain.BoundPtr(3_000_000)},
		domain.Tier{Rate: 14},
	)

	got, collapsed := RemoveTier(p, 2)

	assert.False(t, collapsed)
	require.Len(t, got.Tiers, 2)
	assert.Nil(t, got.Tiers[1].UpTo, "previously second-to-last tier absorbs the open bound")
	assertWellFormed(t, got.Tiers)
}

func TestRemoveMiddleTierKeepsTerminalOpen(t *testing.T) {
	p := tiered(1,
		domain.Tier{Rate: 5, UpTo: domain.BoundPtr(1_000_000)},
		domain.Tier{Rate: 8.5, UpTo: domain.BoundPtr(3_000_000)},
		domain.Tier{Rate: 14},
	)

	got, collapsed := RemoveTier(p, 1)

	assert.False(t, collapsed)
	require.Len(t, got.Tiers, 2)
	assert.Nil(t, got.Tiers[1].UpTo)
	assertWellFormed(t, got.Tiers)
}

func TestRemoveTierOutOfRangeIsNoop(t *testing.T) {
	p := tiered(1, domain.Tier{Rate: 5, UpTo: domain.BoundPtr(1_000_000)}, domain.Tier{Rate: 7})

	got, collapsed := RemoveTier(p, 5)

	assert.False(t, collapsed)
	assert.Len(t, got.Tiers, 2)
}

func TestChangeFieldParsesThousandsSeparators(t *testing.T) {
	ts := []domain.Tier{
		{Rate: 5, UpTo: domain.BoundPtr(1_000_000)},
		{Rate: 7},
	}

	got := ChangeField(ts, 0, FieldUpTo, "2,500,000")

	require.NotNil(t, got[0].UpTo)
	assert.Equal(t, int64(2_500_000), *got[0].UpTo)
	assertWellFormed(t, got)
}

func TestChangeFieldUnparseableBecomesZero(t *testing.T) {
	ts := []domain.Tier{
		{Rate: 5, UpTo: domain.BoundPtr(1_000_000)},
		{Rate: 7},
	}

	got := ChangeField(ts, 0, FieldRate, "not a number")
	assert.Equal(t, 0.0, got[0].Rate)

	got = ChangeField(ts, 0, FieldUpTo, "")
	require.NotNil(t, got[0].UpTo)
	assert.Equal(t, int64(0), *got[0].UpTo)
}

func TestChangeFieldResortsAfterEdit(t *testing.T) {
	ts := []domain.Tier{
		{Rate: 5, UpTo: domain.BoundPtr(1_000_000)},
		{Rate: 8.5, UpTo: domain.BoundPtr(3_000_000)},
		{Rate: 14},
	}

	// Push the first bound past the second; the rows must swap.
	got := ChangeField(ts, 0, FieldUpTo, "4,000,000")

	require.Len(t, got, 3)
	assert.Equal(t, 8.5, got[0].Rate)
	assert.Equal(t, 5.0, got[1].Rate)
	assert.Nil(t, got[2].UpTo)
	assertWellFormed(t, got)
}

func TestChangeFieldRejectsNaN(t *testing.T) {
	ts := []domain.Tier{{Rate: 5}}

	got := ChangeField(ts, 0, FieldRate, "NaN")

	assert.Equal(t, 0.0, got[0].Rate)
}

func TestLabels(t *testing.T) {
	ts := []domain.Tier{
		{Rate: 5.87, UpTo: domain.BoundPtr(1_000_000)},
		{Rate: 8.50, UpTo: domain.BoundPtr(3_000_000)},
		{Rate: 14.00},
	}

	got := Labels(ts)

	assert.Equal(t, []string{"Up to $1M", "$1M - $3M", "Over $3M"}, got)
}

func TestLabelsSingleUnboundedTier(t *testing.T) {
	got := Labels([]domain.Tier{{Rate: 14.6}})
	assert.Equal(t, []string{"All values"}, got)
}

func TestAbbrev(t *testing.T) {
	cases := map[int64]string{
		750:           "$750",
		500_000:       "$500K",
		1_000_000:     "$1M",
		1_300_000:     "$1.3M",
		4_500_000:     "$4.5M",
		2_000_000_000: "$2B",
	}
	for in, want := range cases {
		assert.Equal(t, want, Abbrev(in), "Abbrev(%d)", in)
	}
}
