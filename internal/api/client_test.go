package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratecast/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil)
}

func TestDefaultPolicy(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/policy/default", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"COMMERCIAL": {"code": 3, "rate": 6.05, "tiers": []},
			"OWNER-OCCUPIED": {"code": 9, "rate": null, "tiers": [
				{"up_to": 1300000, "rate": 1.8},
				{"up_to": null, "rate": 3.25}
			]}
		}`))
	}))

	policy, err := c.DefaultPolicy(context.Background())
	require.NoError(t, err)

	require.Len(t, policy, 2)
	assert.Equal(t, domain.KindFlat, policy["COMMERCIAL"].Kind())
	assert.Equal(t, 6.05, policy["COMMERCIAL"].FlatRate())

	oo := policy["OWNER-OCCUPIED"]
	assert.Equal(t, domain.KindTiered, oo.Kind())
	require.Len(t, oo.Tiers, 2)
	require.NotNil(t, oo.Tiers[0].UpTo)
	assert.Equal(t, int64(1_300_000), *oo.Tiers[0].UpTo)
	assert.Nil(t, oo.Tiers[1].UpTo)
}

func TestRevenueForecastSendsWireShape(t *testing.T) {
	var gotBody []byte
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/revenue-forecast", r.URL.Path)
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results_by_class": {"COMMERCIAL": {"certified_value": 100, "certified_revenue": 0.6, "parcel_count": 4, "exemption_count": 1}},
			"totals": {"certified_value": 100, "certified_revenue": 0.6, "parcel_count": 4, "exemption_count": 1},
			"comparison_data": {"FY 2025": {"totals": {"certified_value": 90, "certified_revenue": 0.5}}}
		}`))
	}))

	req := domain.ForecastRequest{
		Policy: domain.Policy{
			"COMMERCIAL": {Code: 3, Rate: domain.RatePtr(6.05)},
		},
		Appeals:               domain.Appeals{"COMMERCIAL": 50},
		ApplyExemptionAverage: true,
	}
	resp, err := c.RevenueForecast(context.Background(), req)
	require.NoError(t, err)

	// The exemption-average flag is camelCase on the wire.
	assert.Contains(t, string(gotBody), `"applyExemptionAverage":true`)

	assert.Equal(t, 4, resp.Totals.ParcelCount)
	assert.Equal(t, 0.5, resp.ComparisonData["FY 2025"]["totals"].CertifiedRevenue)
}

func TestStatusErrorPrefersDetail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "bad policy"}`))
	}))

	_, err := c.RevenueForecast(context.Background(), domain.ForecastRequest{})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "bad policy", err.Error())
}

func TestStatusErrorGenericFallback(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.RevenueForecast(context.Background(), domain.ForecastRequest{})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "request failed with status 500", err.Error())
}

func TestStatusErrorNonJSONBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))

	_, err := c.DefaultPolicy(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "request failed with status 502", err.Error())
}

func TestTierParcelCounts(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tier-parcel-counts", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"counts_by_class": {"OWNER-OCCUPIED": [
			{"up_to": 1300000, "reference_count": 20000, "current_count": 21000},
			{"up_to": null, "reference_count": 700, "current_count": 650}
		]}}`))
	}))

	counts, err := c.TierParcelCounts(context.Background(), domain.Policy{})
	require.NoError(t, err)

	rows := counts.CountsByClass["OWNER-OCCUPIED"]
	require.Len(t, rows, 2)
	assert.Equal(t, 21000, rows[0].CurrentCount)
	assert.Nil(t, rows[1].UpTo)
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.DefaultPolicy(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDataframes(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/dataframes":
			_, _ = w.Write([]byte(`["fullasmt25", "fulllegal25"]`))
		case "/api/dataframes/fullasmt25":
			_, _ = w.Write([]byte(`[{"TAX_RATE_CLASS": 3, "ASSESSED_LAND_VALUE": 250000}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	names, err := c.Dataframes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fullasmt25", "fulllegal25"}, names)

	rows, err := c.DataframeHead(context.Background(), "fullasmt25")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 3, rows[0]["TAX_RATE_CLASS"])
}
