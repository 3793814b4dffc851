package domain

// Appeals maps a tax-class name to its flat-dollar appeal value. The value
// is a deduction amount, not a rate; how it is applied is the backend's
// concern.
type Appeals map[string]float64

// ExemptionDetail carries the backend's per-class exemption derivation. The
// editor never computes with these, it only displays them and echoes the
// class names back on forecast requests.
type ExemptionDetail struct {
	DataParcelCount   int `json:"data_parcel_count"`
	FY2026ParcelCount int `json:"fy2026_parcel_count"`
	ExemptionCount    int `json:"exemption_count"`
}

// Exemptions maps class name to exemption detail.
type Exemptions map[string]ExemptionDetail

// AppealsAndExemptions is the combined defaults payload.
type AppealsAndExemptions struct {
	Appeals    Appeals    `json:"appeals"`
	Exemptions Exemptions `json:"exemptions"`
}

// ForecastRequest is the revenue-forecast submission body. The
// applyExemptionAverage key is camelCase on the wire.
type ForecastRequest struct {
	Policy                Policy  `json:"policy"`
	Appeals               Appeals `json:"appeals"`
	ApplyExemptionAverage bool    `json:"applyExemptionAverage"`
}

// RevenueResult is one class's (or the total) forecast outcome.
type RevenueResult struct {
	CertifiedValue   float64 `json:"certified_value"`
	CertifiedRevenue float64 `json:"certified_revenue"`
	ParcelCount      int     `json:"parcel_count"`
	ExemptionCount   int     `json:"exemption_count"`
}

// ComparisonFigures holds a prior fiscal year's certified numbers for one
// class, as published in the budget handout the backend ships.
type ComparisonFigures struct {
	CertifiedValue   float64 `json:"certified_value"`
	CertifiedRevenue float64 `json:"certified_revenue"`
}

// ForecastResponse is the full forecast result. ComparisonData maps a fiscal
// year label ("FY 2025") to per-class figures; the "totals" key appears
// alongside the class names.
type ForecastResponse struct {
	ResultsByClass map[string]RevenueResult                `json:"results_by_class"`
	Totals         RevenueResult                           `json:"totals"`
	ComparisonData map[string]map[string]ComparisonFigures `json:"comparison_data"`
}

// TierParcelCount correlates one tier boundary of a submitted policy with
// two parcel counts: one under the canonical reference policy and one under
// the current assessment data.
type TierParcelCount struct {
	UpTo           *int64 `json:"up_to"`
	ReferenceCount int    `json:"reference_count"`
	CurrentCount   int    `json:"current_count"`
}

// TierCounts is the auxiliary tier-parcel-counts response, stored for the
// optional comparison column and otherwise uninterpreted.
type TierCounts struct {
	CountsByClass map[string][]TierParcelCount `json:"counts_by_class"`
}
