// Package ladder maps qualifying investment volume to a commission tier.
//
// A ladder is an ordered table of tiers. Automatic tiers are assigned by
// volume; manual tiers carry no volume threshold and are only ever granted
// administratively.
package ladder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type Tier struct {
	Index     int             `yaml:"index" json:"index"`
	Name      string          `yaml:"name" json:"name"`
	MinAmount decimal.Decimal `yaml:"min_amount" json:"min_amount"`
	MaxAmount decimal.Decimal `yaml:"max_amount" json:"max_amount"`
	Rate      decimal.Decimal `yaml:"rate" json:"rate"` // percent
	Manual    bool            `yaml:"manual" json:"manual"`
}

// Unranked is returned for volumes below the first automatic band.
var Unranked = Tier{Index: 0, Name: "Unranked", Rate: decimal.Zero}

var ErrEmptyLadder = errors.New("ladder: no tiers configured")

type Ladder struct {
	tiers []Tier // sorted by Index
	auto  []Tier // automatic tiers, sorted by Index
}

// New validates tiers and builds a ladder. Automatic tiers must have
// non-decreasing thresholds and rates in index order, so that TierFor is
// monotonic in volume.
func New(tiers []Tier) (*Ladder, error) {
	if len(tiers) == 0 {
		return nil, ErrEmptyLadder
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	l := &Ladder{tiers: sorted}
	seen := make(map[int]bool, len(sorted))
	for _, t := range sorted {
		if t.Index < 1 {
			return nil, fmt.Errorf("ladder: tier %q has index %d, indexes start at 1", t.Name, t.Index)
		}
		if seen[t.Index] {
			return nil, fmt.Errorf("ladder: duplicate tier index %d", t.Index)
		}
		seen[t.Index] = true
		if t.Rate.IsNegative() {
			return nil, fmt.Errorf("ladder: tier %d has negative rate", t.Index)
		}
		if t.MinAmount.IsNegative() {
			return nil, fmt.Errorf("ladder: tier %d has negative minimum", t.Index)
		}
		if t.Manual {
			continue
		}
		if n := len(l.auto); n > 0 {
			prev := l.auto[n-1]
			if t.MinAmount.LessThan(prev.MinAmount) {
				return nil, fmt.Errorf("ladder: tier %d threshold %s below tier %d threshold %s",
					t.Index, t.MinAmount, prev.Index, prev.MinAmount)
			}
			if t.Rate.LessThan(prev.Rate) {
				return nil, fmt.Errorf("ladder: tier %d rate %s below tier %d rate %s",
					t.Index, t.Rate, prev.Index, prev.Rate)
			}
		}
		l.auto = append(l.auto, t)
	}
	return l, nil
}

// TierFor returns the highest automatic tier whose minimum is at most volume.
// Equal thresholds resolve to the higher tier.
func (l *Ladder) TierFor(volume decimal.Decimal) Tier {
	for i := len(l.auto) - 1; i >= 0; i-- {
		if l.auto[i].MinAmount.LessThanOrEqual(volume) {
			return l.auto[i]
		}
	}
	return Unranked
}

// EffectiveTier combines the volume tier with an administratively granted
// tier; the higher index wins. A manual index of 0 means none.
func (l *Ladder) EffectiveTier(volume decimal.Decimal, manualIndex int) Tier {
	t := l.TierFor(volume)
	if manualIndex > t.Index {
		if m, ok := l.Tier(manualIndex); ok {
			return m
		}
	}
	return t
}

func (l *Ladder) Tier(index int) (Tier, bool) {
	i := sort.Search(len(l.tiers), func(i int) bool { return l.tiers[i].Index >= index })
	if i < len(l.tiers) && l.tiers[i].Index == index {
		return l.tiers[i], true
	}
	return Tier{}, false
}

// Tiers returns a copy of the full table.
func (l *Ladder) Tiers() []Tier {
	out := make([]Tier, len(l.tiers))
	copy(out, l.tiers)
	return out
}

// Depth is the number of tiers, used as the default distribution depth.
func (l *Ladder) Depth() int {
	return len(l.tiers)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Default is the reference twelve-tier ambassador ladder.
func Default() *Ladder {
	l, err := New([]Tier{
		{Index: 1, Name: "Professional Ambassador", MinAmount: d("100000"), MaxAmount: d("2000000"), Rate: d("0.25")},
		{Index: 2, Name: "Rubies Ambassador", MinAmount: d("3000000"), MaxAmount: d("3000000"), Rate: d("0.37")},
		{Index: 3, Name: "Topaz Ambassador", MinAmount: d("4000000"), MaxAmount: d("4000000"), Rate: d("0.50")},
		{Index: 4, Name: "Silver Ambassador", MinAmount: d("5000000"), MaxAmount: d("5000000"), Rate: d("0.70")},
		{Index: 5, Name: "Golden Ambassador", MinAmount: d("6000000"), MaxAmount: d("6000000"), Rate: d("0.85")},
		{Index: 6, Name: "Platinum Ambassador", MinAmount: d("7000000"), MaxAmount: d("7000000"), Rate: d("1.00")},
		{Index: 7, Name: "Diamond Ambassador", MinAmount: d("8000000"), MaxAmount: d("8000000"), Rate: d("1.25")},
		{Index: 8, Name: "MTA", MinAmount: d("9000000"), MaxAmount: d("9000000"), Rate: d("1.50")},
		{Index: 9, Name: "Channel Partner", MinAmount: d("10000000"), MaxAmount: d("10000000"), Rate: d("2.00")},
		{Index: 10, Name: "Co-Director", Manual: true},
		{Index: 11, Name: "Director", Manual: true},
		{Index: 12, Name: "MD/CEO/CMD", Manual: true},
	})
	if err != nil {
		panic(err)
	}
	return l
}
