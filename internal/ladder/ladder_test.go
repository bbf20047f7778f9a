package ladder

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForReferenceLadder(t *testing.T) {
	l := Default()

	cases := []struct {
		volume string
		index  int
		rate   string
	}{
		{"0", 0, "0"},
		{"99999.99", 0, "0"},
		{"100000", 1, "0.25"},
		{"2500000", 1, "0.25"},
		{"3000000", 2, "0.37"},
		{"4000000", 3, "0.5"},
		{"9999999", 8, "1.5"},
		{"10000000", 9, "2"},
		{"250000000", 9, "2"},
	}
	for _, tc := range cases {
		tier := l.TierFor(decimal.RequireFromString(tc.volume))
		assert.Equal(t, tc.index, tier.Index, "volume %s", tc.volume)
		assert.True(t, decimal.RequireFromString(tc.rate).Equal(tier.Rate), "volume %s rate %s", tc.volume, tier.Rate)
	}
}

func TestTierForIsMonotonic(t *testing.T) {
	l := Default()
	prev := l.TierFor(decimal.Zero)
	for v := int64(0); v <= 12_000_000; v += 50_000 {
		cur := l.TierFor(decimal.NewFromInt(v))
		assert.False(t, cur.Rate.LessThan(prev.Rate), "rate decreased at %d", v)
		assert.GreaterOrEqual(t, cur.Index, prev.Index)
		prev = cur
	}
}

func TestManualTiersNeverAssignedByVolume(t *testing.T) {
	l := Default()
	tier := l.TierFor(decimal.NewFromInt(1_000_000_000))
	assert.False(t, tier.Manual)
	assert.Equal(t, 9, tier.Index)
}

func TestEffectiveTier(t *testing.T) {
	l := Default()

	tier := l.EffectiveTier(decimal.NewFromInt(100000), 11)
	assert.Equal(t, 11, tier.Index)
	assert.Equal(t, "Director", tier.Name)
	assert.True(t, tier.Rate.IsZero())

	// a manual grant below the volume tier is ignored
	tier = l.EffectiveTier(decimal.NewFromInt(10_000_000), 2)
	assert.Equal(t, 9, tier.Index)

	// unknown manual index falls back to volume
	tier = l.EffectiveTier(decimal.NewFromInt(100000), 40)
	assert.Equal(t, 1, tier.Index)
}

func TestTiesPreferHigherTier(t *testing.T) {
	l, err := New([]Tier{
		{Index: 1, Name: "a", MinAmount: decimal.NewFromInt(100), Rate: decimal.NewFromInt(1)},
		{Index: 2, Name: "b", MinAmount: decimal.NewFromInt(100), Rate: decimal.NewFromInt(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, l.TierFor(decimal.NewFromInt(100)).Index)
}

func TestNewRejectsInvalidTables(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmptyLadder)

	_, err = New([]Tier{
		{Index: 1, MinAmount: decimal.NewFromInt(500), Rate: decimal.NewFromInt(1)},
		{Index: 2, MinAmount: decimal.NewFromInt(100), Rate: decimal.NewFromInt(2)},
	})
	assert.Error(t, err, "thresholds must not decrease")

	_, err = New([]Tier{
		{Index: 1, MinAmount: decimal.NewFromInt(100), Rate: decimal.NewFromInt(2)},
		{Index: 2, MinAmount: decimal.NewFromInt(500), Rate: decimal.NewFromInt(1)},
	})
	assert.Error(t, err, "rates must not decrease")

	_, err = New([]Tier{
		{Index: 1, MinAmount: decimal.NewFromInt(100), Rate: decimal.NewFromInt(1)},
		{Index: 1, MinAmount: decimal.NewFromInt(200), Rate: decimal.NewFromInt(1)},
	})
	assert.Error(t, err)

	_, err = New([]Tier{{Index: 1, Rate: decimal.NewFromInt(-1)}})
	assert.Error(t, err)
}

func TestTierLookupAndDepth(t *testing.T) {
	l := Default()
	assert.Equal(t, 12, l.Depth())

	tier, ok := l.Tier(7)
	require.True(t, ok)
	assert.Equal(t, "Diamond Ambassador", tier.Name)

	_, ok = l.Tier(13)
	assert.False(t, ok)
	assert.Len(t, l.Tiers(), 12)
}
