package tiers

import (
	"fmt"
	"strings"

	"ratecast/internal/domain"
)

// FormatBoundaryLabel renders the value range a tier covers. lower is the
// exclusive lower bound taken from the previous tier (zero for the first),
// upper is the tier's own bound, nil for the terminal tier.
func FormatBoundaryLabel(lower int64, upper *int64, first bool) string {
	switch {
	case upper == nil && first:
		return "All values"
	case upper == nil:
		return fmt.Sprintf("Over %s", Abbrev(lower))
	case first:
		return fmt.Sprintf("Up to %s", Abbrev(*upper))
	default:
		return fmt.Sprintf("%s - %s", Abbrev(lower), Abbrev(*upper))
	}
}

// Labels returns one boundary label per tier, in ascending order. The label
// for tier N depends on tier N-1's bound, which is why tiers are never
// allowed to go out of order even transiently.
func Labels(ts []domain.Tier) []string {
	sorted := Sorted(ts)
	labels := make([]string, len(sorted))
	var lower int64
	for i, t := range sorted {
		labels[i] = FormatBoundaryLabel(lower, t.UpTo, i == 0)
		if t.UpTo != nil {
			lower = *t.UpTo
		}
	}
	return labels
}

// Abbrev renders a dollar amount compactly with K/M/B suffixes.
func Abbrev(v int64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000_000:
		return "$" + trimZero(float64(v)/1_000_000_000) + "B"
	case abs >= 1_000_000:
		return "$" + trimZero(float64(v)/1_000_000) + "M"
	case abs >= 1_000:
		return "$" + trimZero(float64(v)/1_000) + "K"
	default:
		return fmt.Sprintf("$%d", v)
	}
}

func trimZero(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}
