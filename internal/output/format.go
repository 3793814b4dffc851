// Package output renders forecast responses for the console. Formatters
// mirror the backend's numbers; no revenue math happens here beyond
// presentation deltas.
package output

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ratecast/internal/domain"
)

// Options tune a formatter run.
type Options struct {
	// CompareFY selects a fiscal year from the response's comparison data
	// ("FY 2025"). Empty disables comparison columns.
	CompareFY string
}

// Formatter renders a forecast response.
type Formatter interface {
	Name() string
	Format(resp *domain.ForecastResponse, opts Options) ([]byte, error)
}

// GetFormatterByName returns the named formatter, or nil for an unknown
// name. Known names: table, json, csv.
func GetFormatterByName(name string) Formatter {
	switch strings.ToLower(name) {
	case "table", "console", "":
		return &TableFormatter{}
	case "json":
		return &JSONFormatter{}
	case "csv":
		return &CSVFormatter{}
	default:
		return nil
	}
}

// FormatCurrency renders a dollar amount with thousands grouping, rounded
// to whole dollars.
func FormatCurrency(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	s := d.StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = groupThousands(s)
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// DeltaPercent returns the percent change from base to value, formatted to
// one decimal place with sign. Empty when base is zero.
func DeltaPercent(value, base float64) string {
	b := decimal.NewFromFloat(base)
	if b.IsZero() {
		return ""
	}
	pct := decimal.NewFromFloat(value).Sub(b).Div(b).Mul(decimal.NewFromInt(100))
	s := pct.StringFixed(1)
	if pct.GreaterThanOrEqual(decimal.Zero) {
		return "+" + s + "%"
	}
	return s + "%"
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

// classOrder returns the result's class names sorted for stable rendering.
func classOrder(results map[string]domain.RevenueResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
