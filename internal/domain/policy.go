package domain

import "sort"

// Tier is one bracket of a tiered class policy. Rate is in dollars per
// $1,000 of net taxable value. UpTo is the inclusive upper bound of assessed
// value covered by the bracket; nil means unbounded, and an unbounded tier
// must be the last tier of its policy.
type Tier struct {
	Rate float64 `json:"rate"`
	UpTo *int64  `json:"up_to"`
}

// Unbounded reports whether the tier has no upper bound.
func (t Tier) Unbounded() bool {
	return t.UpTo == nil
}

// PolicyKind discriminates the two ClassPolicy representations.
type PolicyKind int

const (
	KindFlat PolicyKind = iota
	KindTiered
)

// ClassPolicy is the rate rule for a single tax class: either a flat rate
// applied to the full value, or an ordered list of tiers with ascending
// upper bounds. A policy is never both at once; converting between the two
// representations clears the other field.
type ClassPolicy struct {
	Code  int      `json:"code"`
	Rate  *float64 `json:"rate"`
	Tiers []Tier   `json:"tiers"`
}

// Kind returns KindTiered when the policy carries tiers, KindFlat otherwise.
func (p ClassPolicy) Kind() PolicyKind {
	if len(p.Tiers) > 0 {
		return KindTiered
	}
	return KindFlat
}

// FlatRate returns the flat rate, or zero when the rate is unset.
func (p ClassPolicy) FlatRate() float64 {
	if p.Rate != nil {
		return *p.Rate
	}
	return 0
}

// Clone returns a deep copy of the policy.
func (p ClassPolicy) Clone() ClassPolicy {
	out := ClassPolicy{Code: p.Code}
	if p.Rate != nil {
		r := *p.Rate
		out.Rate = &r
	}
	if len(p.Tiers) > 0 {
		out.Tiers = make([]Tier, len(p.Tiers))
		for i, t := range p.Tiers {
			out.Tiers[i] = t
			if t.UpTo != nil {
				b := *t.UpTo
				out.Tiers[i].UpTo = &b
			}
		}
	}
	return out
}

// Policy maps tax-class names to their rate rules.
type Policy map[string]ClassPolicy

// Clone returns a deep copy of the whole policy map.
func (p Policy) Clone() Policy {
	if p == nil {
		return nil
	}
	out := make(Policy, len(p))
	for name, cp := range p {
		out[name] = cp.Clone()
	}
	return out
}

// ClassNames returns the class names ordered by class code, then name, so
// tables and scene lists render in a stable order.
func (p Policy) ClassNames() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := p[names[i]], p[names[j]]
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return names[i] < names[j]
	})
	return names
}

// RatePtr is a convenience for building flat policies.
func RatePtr(v float64) *float64 { return &v }

// BoundPtr is a convenience for building finite tier bounds.
func BoundPtr(v int64) *int64 { return &v }
