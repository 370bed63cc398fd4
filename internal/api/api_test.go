package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"halal_finance/internal/market"
	"halal_finance/internal/models"
	"halal_finance/internal/portfolio"
	"halal_finance/internal/rates"
	"halal_finance/internal/screening"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	src := rates.Static{
		Rates:     models.DefaultRates(),
		Currency:  "USD",
		UpdatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	dir := market.SampleDirectory()
	screener := portfolio.NewScreener(screening.DefaultPolicy, dir, 2, zap.NewNop())
	s := NewServer(src, screening.DefaultPolicy, dir, screener, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return s.Router(ctx, opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec, out := do(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestRates(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec, out := do(t, h, http.MethodGet, "/api/rates", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "USD", out["currency"])
	assert.Equal(t, "65.5", out["gold_price_per_gram"])
	nisab := out["nisab"].(map[string]any)
	assert.Equal(t, "520.51", nisab["silver"])
	assert.Equal(t, "5729.94", nisab["gold"])
	assert.Equal(t, "2026-03-01T00:00:00Z", out["updated_at"])
}

func TestZakat(t *testing.T) {
	h := newTestRouter(t, Options{})

	tests := []struct {
		name      string
		body      string
		status    int
		due       string
		payable   bool
		formatted string
	}{
		{
			name:      "numbers and strings mixed",
			body:      `{"cash": 3000, "bankAccounts": "1,000", "method": "hanafi"}`,
			status:    http.StatusOK,
			due:       "100",
			payable:   true,
			formatted: "100.00",
		},
		{
			name:    "gold standard below nisab",
			body:    `{"cash": "3000", "method": "gold"}`,
			status:  http.StatusOK,
			due:     "0",
			payable: false,
		},
		{
			name:      "garbage fields are zero",
			body:      `{"cash": "abc", "gold_grams": null, "silver": {"x": 1}, "investments": 10000, "currency": "sar"}`,
			status:    http.StatusOK,
			due:       "250",
			payable:   true,
			formatted: "250.00",
		},
		{
			name:    "out of range exponent is zero",
			body:    `{"cash": 1e-40000000, "investments": 10000}`,
			status:  http.StatusOK,
			due:     "250",
			payable: true,
		},
		{
			name:   "unknown method",
			body:   `{"cash": 100, "method": "zahiri"}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "unsupported currency",
			body:   `{"cash": 100, "currency": "JPY"}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "not an object",
			body:   `[1, 2]`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := do(t, h, http.MethodPost, "/api/zakat", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				assert.NotEmpty(t, out["error"])
				return
			}
			assert.Equal(t, tt.due, out["zakat_due"])
			assert.Equal(t, tt.payable, out["is_payable"])
			if tt.formatted != "" {
				f := out["formatted"].(map[string]any)
				assert.Contains(t, f["zakat_due"], tt.formatted)
			}
		})
	}
}

func TestZakat_InvalidRates(t *testing.T) {
	s := NewServer(rates.Static{Currency: "USD"}, screening.DefaultPolicy, nil, nil, nil)
	h := s.Router(context.Background(), Options{})

	rec, out := do(t, h, http.MethodPost, "/api/zakat", `{"cash": 100}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, out["error"], "invalid metal rate")
}

func TestScreen(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec, out := do(t, h, http.MethodPost, "/api/screen",
		`{"symbol": "jpm", "haram_industry": true, "interest_income_ratio": 78.5, "haram_revenue_ratio": 95, "debt_ratio": 85.2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "JPM", out["symbol"])
	assert.Equal(t, float64(0), out["halal_score"])
	assert.Equal(t, "F", out["grade"])
	assert.Equal(t, "avoid", out["recommendation"])
	assert.Equal(t, []any{"ISRA", "HLAL", "SPUS"}, out["alternatives"])
	security := out["security"].(map[string]any)
	assert.Equal(t, "JPMorgan Chase & Co.", security["name"])

	rec, out = do(t, h, http.MethodPost, "/api/screen", `{"symbol": "NOPE", "debt_ratio": 40}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(93), out["halal_score"])
	assert.NotContains(t, out, "security")

	rec, out = do(t, h, http.MethodPost, "/api/screen", `{"debt_ratio": 140}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, out["error"], "debt_ratio")

	rec, _ = do(t, h, http.MethodPost, "/api/screen", `{"debt_ratio": "high"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScreenPortfolio(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec, out := do(t, h, http.MethodPost, "/api/portfolio/screen", `{"holdings": [
		{"symbol": "AAPL", "debt_ratio": 15.2, "interest_income_ratio": 1.8},
		{"symbol": "BAD", "interest_income_ratio": -1},
		{"symbol": "TSLA", "debt_ratio": 22.1, "name": "Tesla"}
	]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.NotEmpty(t, out["id"])
	assert.Equal(t, float64(2), out["screened"])
	assert.Equal(t, float64(1), out["rejected"])

	holdings := out["holdings"].([]any)
	require.Len(t, holdings, 3)
	first := holdings[0].(map[string]any)
	assert.Equal(t, "AAPL", first["symbol"])
	assert.Equal(t, "Apple Inc.", first["name"])
	bad := holdings[1].(map[string]any)
	assert.Contains(t, bad["error"], "interest_income_ratio")
	assert.NotContains(t, bad, "result")
	assert.Equal(t, "Tesla", holdings[2].(map[string]any)["name"])

	rec, _ = do(t, h, http.MethodPost, "/api/portfolio/screen", `{"holdings": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	big := `{"holdings": [` + strings.Repeat(`{"symbol":"X"},`, MaxHoldings) + `{"symbol":"Y"}]}`
	rec, _ = do(t, h, http.MethodPost, "/api/portfolio/screen", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestRouter(t, Options{RateLimitPerMin: 1, RateBurst: 2})

	for i := 0; i < 2; i++ {
		rec, _ := do(t, h, http.MethodGet, "/api/rates", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, out := do(t, h, http.MethodGet, "/api/rates", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.NotEmpty(t, out["error"])

	// Health checks are never throttled.
	rec, _ = do(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIPLimiterSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ipl := newIPLimiter(1, 1)
	ipl.now = func() time.Time { return now }

	ipl.getLimiter("10.0.0.1")
	now = now.Add(limiterIdleTTL / 2)
	ipl.getLimiter("10.0.0.2")
	now = now.Add(limiterIdleTTL/2 + time.Second)
	ipl.sweep()

	assert.NotContains(t, ipl.limiters, "10.0.0.1")
	assert.Contains(t, ipl.limiters, "10.0.0.2")
}

func TestCORS(t *testing.T) {
	h := newTestRouter(t, Options{AllowedOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/zakat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
