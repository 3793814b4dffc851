package output

import (
	"encoding/csv"
	"strconv"
	"strings"

	"ratecast/internal/domain"
)

// CSVFormatter emits one row per class plus a totals row. Money columns are
// raw numbers, not formatted currency, so spreadsheets can work with them.
type CSVFormatter struct{}

func (cf *CSVFormatter) Name() string { return "csv" }

func (cf *CSVFormatter) Format(resp *domain.ForecastResponse, _ Options) ([]byte, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := []string{"tax_class", "parcel_count", "exemption_count", "certified_value", "certified_revenue"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	writeRow := func(name string, r domain.RevenueResult) error {
		return w.Write([]string{
			name,
			strconv.Itoa(r.ParcelCount),
			strconv.Itoa(r.ExemptionCount),
			strconv.FormatFloat(r.CertifiedValue, 'f', 2, 64),
			strconv.FormatFloat(r.CertifiedRevenue, 'f', 2, 64),
		})
	}

	for _, name := range classOrder(resp.ResultsByClass) {
		if err := writeRow(name, resp.ResultsByClass[name]); err != nil {
			return nil, err
		}
	}
	if err := writeRow("TOTAL", resp.Totals); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
