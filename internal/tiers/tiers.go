package tiers

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"ratecast/internal/domain"
)

// DefaultBoundStep is the increment added to the previous finite boundary
// when a new terminal tier is opened under an existing one.
const DefaultBoundStep int64 = 1_000_000

// Field identifies which tier field an edit targets.
type Field string

const (
	FieldRate Field = "rate"
	FieldUpTo Field = "up_to"
)

// Sorted returns a copy of ts ordered ascending by upper bound, with
// unbounded tiers last. Bound pointers are copied so callers can treat the
// result as their own.
func Sorted(ts []domain.Tier) []domain.Tier {
	out := make([]domain.Tier, len(ts))
	for i, t := range ts {
		out[i] = t
		if t.UpTo != nil {
			b := *t.UpTo
			out[i].UpTo = &b
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i]) < sortKey(out[j])
	})
	return out
}

func sortKey(t domain.Tier) int64 {
	if t.UpTo == nil {
		return math.MaxInt64
	}
	return *t.UpTo
}

// ChangeField parses raw and replaces one field on the tier at index, then
// re-sorts the list. Index refers to ascending-bound order. Unparseable
// input becomes zero; the editor must always stay renderable.
func ChangeField(ts []domain.Tier, index int, field Field, raw string) []domain.Tier {
	out := Sorted(ts)
	if index < 0 || index >= len(out) {
		return out
	}
	switch field {
	case FieldUpTo:
		b := ParseBound(raw)
		out[index].UpTo = &b
	case FieldRate:
		out[index].Rate = ParseRate(raw)
	}
	return Sorted(out)
}

// AddTier grows the policy by one tier and returns the new policy.
//
// A flat (or empty-tiered) policy becomes a tiered policy with a single
// unbounded tier carrying the flat rate; the flat rate field is cleared.
// Otherwise the current terminal tier receives a finite bound one step above
// the second-to-last bound (or step itself when it was the only tier) and a
// new unbounded tier inheriting its rate is appended.
func AddTier(p domain.ClassPolicy, step int64) domain.ClassPolicy {
	if step <= 0 {
		step = DefaultBoundStep
	}
	if len(p.Tiers) == 0 {
		return domain.ClassPolicy{
			Code:  p.Code,
			Tiers: []domain.Tier{{Rate: p.FlatRate()}},
		}
	}

	ts := Sorted(p.Tiers)
	last := len(ts) - 1

	var base int64
	if last >= 1 && ts[last-1].UpTo != nil {
		base = *ts[last-1].UpTo
	}
	bound := base + step
	ts[last].UpTo = &bound
	ts = append(ts, domain.Tier{Rate: ts[last].Rate})

	return domain.ClassPolicy{Code: p.Code, Tiers: ts}
}

// RemoveTier deletes the tier at index (ascending-bound order). When the
// last tier is removed the policy collapses back to a flat policy at the
// removed tier's rate; the returned bool reports that collapse so the
// caller can close any tier-editing surface. Otherwise the new terminal
// tier is forced unbounded, whatever bound it carried before.
func RemoveTier(p domain.ClassPolicy, index int) (domain.ClassPolicy, bool) {
	ts := Sorted(p.Tiers)
	if index < 0 || index >= len(ts) {
		return p.Clone(), false
	}

	removed := ts[index]
	ts = append(ts[:index], ts[index+1:]...)

	if len(ts) == 0 {
		return domain.ClassPolicy{Code: p.Code, Rate: domain.RatePtr(removed.Rate)}, true
	}

	ts[len(ts)-1].UpTo = nil
	return domain.ClassPolicy{Code: p.Code, Tiers: ts}, false
}

// ParseBound parses a tier boundary from user input, tolerating thousands
// separators and surrounding noise ("1,500,000", "$2,000,000 "). Anything
// unparseable is zero.
func ParseBound(raw string) int64 {
	v, err := strconv.ParseInt(scrub(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseRate parses a rate from user input under the same rules as
// ParseBound. NaN and infinities are rejected to zero so they can never
// reach stored state.
func ParseRate(raw string) float64 {
	v, err := strconv.ParseFloat(scrub(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func scrub(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}
