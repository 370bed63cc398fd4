package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"halal_finance/internal/format"
	"halal_finance/internal/market"
	"halal_finance/internal/models"
	"halal_finance/internal/screening"
	"halal_finance/internal/zakat"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Health reports liveness.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type ratesResponse struct {
	Currency           string            `json:"currency"`
	GoldPricePerGram   decimal.Decimal   `json:"gold_price_per_gram"`
	SilverPricePerGram decimal.Decimal   `json:"silver_price_per_gram"`
	Nisab              map[string]string `json:"nisab"`
	UpdatedAt          *time.Time        `json:"updated_at,omitempty"`
}

// Rates returns the current metal prices and both nisab thresholds.
func (s *Server) Rates(w http.ResponseWriter, r *http.Request) {
	snap := s.rates.Current()
	resp := ratesResponse{
		Currency:           snap.Currency,
		GoldPricePerGram:   snap.Rates.GoldPricePerGram,
		SilverPricePerGram: snap.Rates.SilverPricePerGram,
		Nisab: map[string]string{
			string(models.SilverStandard): snap.Rates.Threshold(models.SilverStandard).StringFixed(2),
			string(models.GoldStandard):   snap.Rates.Threshold(models.GoldStandard).StringFixed(2),
		},
	}
	if !snap.UpdatedAt.IsZero() {
		t := snap.UpdatedAt.UTC()
		resp.UpdatedAt = &t
	}
	JSON(w, http.StatusOK, resp)
}

type zakatResponse struct {
	models.ZakatResult
	Currency  string            `json:"currency"`
	Formatted map[string]string `json:"formatted"`
}

// Zakat calculates zakat for a loosely-typed declaration. Amounts may be sent
// as numbers or strings; anything unreadable counts as zero, as on the web form.
func (s *Server) Zakat(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := decode(w, r, &body); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	form := flatten(body)

	method, err := zakat.ParseMethod(form["method"])
	if err != nil {
		JSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	snap := s.rates.Current()
	code := strings.ToUpper(strings.TrimSpace(form["currency"]))
	if code == "" {
		code = snap.Currency
	}
	if !format.Supported(code) {
		JSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%v: %q", format.ErrUnsupportedCurrency, code))
		return
	}

	res, err := zakat.Calculate(zakat.DeclarationFromForm(form), snap.Rates, method)
	if err != nil {
		s.logger.Error("Zakat calculation failed", zap.Error(err))
		JSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	formatted := make(map[string]string, 4)
	for k, v := range map[string]decimal.Decimal{
		"total_assets":    res.TotalAssets,
		"net_wealth":      res.NetWealth,
		"nisab_threshold": res.Threshold,
		"zakat_due":       res.Due,
	} {
		formatted[k], _ = format.Money(v, code)
	}

	JSON(w, http.StatusOK, zakatResponse{ZakatResult: res, Currency: code, Formatted: formatted})
}

// flatten turns JSON scalars into form strings. Non-scalar values become "".
func flatten(body map[string]json.RawMessage) map[string]string {
	form := make(map[string]string, len(body))
	for k, raw := range body {
		v := strings.TrimSpace(string(raw))
		switch {
		case v == "null":
			v = ""
		case strings.HasPrefix(v, `"`):
			unq, err := strconv.Unquote(v)
			if err != nil {
				unq = ""
			}
			v = unq
		case strings.HasPrefix(v, "{"), strings.HasPrefix(v, "["):
			v = ""
		}
		form[k] = v
	}
	return form
}

type screenResponse struct {
	models.ScreeningResult
	Security *models.SecurityInfo `json:"security,omitempty"`
}

// Screen grades one security. Ratios are validated strictly.
func (s *Server) Screen(w http.ResponseWriter, r *http.Request) {
	var m models.ComplianceMetrics
	if err := decode(w, r, &m); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	res, err := s.policy.Screen(m)
	if err != nil {
		if errors.Is(err, screening.ErrInvalidRatio) {
			JSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		JSONError(w, http.StatusInternalServerError, "Screening failed")
		return
	}

	resp := screenResponse{ScreeningResult: res}
	if s.directory != nil && res.Symbol != "" {
		info, err := s.directory.Lookup(res.Symbol)
		switch {
		case err == nil:
			resp.Security = info
		case !errors.Is(err, market.ErrUnknownSymbol):
			s.logger.Warn("Directory lookup failed", zap.String("symbol", res.Symbol), zap.Error(err))
		}
	}
	JSON(w, http.StatusOK, resp)
}

type portfolioRequest struct {
	Holdings []models.Holding `json:"holdings"`
}

// ScreenPortfolio grades every holding. Invalid holdings are reported per item.
func (s *Server) ScreenPortfolio(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := decode(w, r, &req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(req.Holdings) == 0 {
		JSONError(w, http.StatusBadRequest, "holdings must not be empty")
		return
	}
	if len(req.Holdings) > MaxHoldings {
		JSONError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("at most %d holdings per request", MaxHoldings))
		return
	}

	report, err := s.screener.Screen(r.Context(), req.Holdings)
	if err != nil {
		s.logger.Warn("Portfolio screening aborted", zap.Error(err))
		JSONError(w, http.StatusServiceUnavailable, "Portfolio screening aborted")
		return
	}
	JSON(w, http.StatusOK, report)
}
