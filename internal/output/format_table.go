package output

import (
	"fmt"
	"strings"

	"ratecast/internal/domain"
)

// TableFormatter renders the forecast as a console table.
type TableFormatter struct{}

func (tf *TableFormatter) Name() string { return "table" }

// Format generates the per-class table, totals row, and an optional
// comparison section against a prior fiscal year.
func (tf *TableFormatter) Format(resp *domain.ForecastResponse, opts Options) ([]byte, error) {
	var sb strings.Builder

	nameWidth := 28
	countWidth := 9
	moneyWidth := 20

	sb.WriteString("REVENUE FORECAST\n")
	sb.WriteString(strings.Repeat("=", 96) + "\n")

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Tax Class",
		countWidth, "Parcels",
		countWidth, "Exempt",
		moneyWidth, "Certified Value",
		moneyWidth, "Certified Revenue"))
	sb.WriteString(strings.Repeat("-", 96) + "\n")

	for _, name := range classOrder(resp.ResultsByClass) {
		r := resp.ResultsByClass[name]
		sb.WriteString(fmt.Sprintf("%-*s %*d %*d %*s %*s\n",
			nameWidth, name,
			countWidth, r.ParcelCount,
			countWidth, r.ExemptionCount,
			moneyWidth, FormatCurrency(r.CertifiedValue),
			moneyWidth, FormatCurrency(r.CertifiedRevenue)))
	}

	sb.WriteString(strings.Repeat("-", 96) + "\n")
	sb.WriteString(fmt.Sprintf("%-*s %*d %*d %*s %*s\n",
		nameWidth, "TOTAL",
		countWidth, resp.Totals.ParcelCount,
		countWidth, resp.Totals.ExemptionCount,
		moneyWidth, FormatCurrency(resp.Totals.CertifiedValue),
		moneyWidth, FormatCurrency(resp.Totals.CertifiedRevenue)))
	sb.WriteString(strings.Repeat("=", 96) + "\n")

	if opts.CompareFY != "" {
		tf.writeComparison(&sb, resp, opts.CompareFY, nameWidth, moneyWidth)
	}

	return []byte(sb.String()), nil
}

func (tf *TableFormatter) writeComparison(sb *strings.Builder, resp *domain.ForecastResponse, fy string, nameWidth, moneyWidth int) {
	yearData, ok := resp.ComparisonData[fy]
	if !ok {
		sb.WriteString(fmt.Sprintf("\nNo comparison data for %s\n", fy))
		return
	}

	sb.WriteString(fmt.Sprintf("\nCOMPARISON TO %s\n", strings.ToUpper(fy)))
	sb.WriteString(strings.Repeat("-", 96) + "\n")

	for _, name := range classOrder(resp.ResultsByClass) {
		prior, ok := yearData[name]
		if !ok {
			continue
		}
		r := resp.ResultsByClass[name]
		delta := DeltaPercent(r.CertifiedRevenue, prior.CertifiedRevenue)
		if delta == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("%-*s %*s -> %*s  (%s)\n",
			nameWidth, name,
			moneyWidth, FormatCurrency(prior.CertifiedRevenue),
			moneyWidth, FormatCurrency(r.CertifiedRevenue),
			delta))
	}

	if prior, ok := yearData["totals"]; ok {
		sb.WriteString(strings.Repeat("-", 96) + "\n")
		sb.WriteString(fmt.Sprintf("%-*s %*s -> %*s  (%s)\n",
			nameWidth, "TOTAL",
			moneyWidth, FormatCurrency(prior.CertifiedRevenue),
			moneyWidth, FormatCurrency(resp.Totals.CertifiedRevenue),
			DeltaPercent(resp.Totals.CertifiedRevenue, prior.CertifiedRevenue)))
	}
}
