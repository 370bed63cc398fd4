package market

import (
	"errors"
	"sort"
	"strings"

	"halal_finance/internal/models"
)

// ErrUnknownSymbol is returned when a directory has no record of a symbol.
var ErrUnknownSymbol = errors.New("unknown symbol")

// MaxSearchResults caps Search output.
const MaxSearchResults = 5

// Directory resolves ticker symbols to reference data.
// Implementations: alpaca.Directory (live assets API) and Static (fixed table).
type Directory interface {
	Lookup(symbol string) (*models.SecurityInfo, error)
	Search(query string) ([]models.SecurityInfo, error)
}

// Static is an in-memory directory keyed by upper-case symbol.
type Static map[string]models.SecurityInfo

// SampleDirectory holds the securities featured on the public screener.
func SampleDirectory() Static {
	return Static{
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ", Class: "us_equity", Sector: "Technology Hardware", Tradable: true},
		"MSFT": {Symbol: "MSFT", Name: "Microsoft Corporation", Exchange: "NASDAQ", Class: "us_equity", Sector: "Software & Services", Tradable: true},
		"TSLA": {Symbol: "TSLA", Name: "Tesla Inc.", Exchange: "NASDAQ", Class: "us_equity", Sector: "Automotive", Tradable: true},
		"JPM":  {Symbol: "JPM", Name: "JPMorgan Chase & Co.", Exchange: "NYSE", Class: "us_equity", Sector: "Banking", Tradable: true},
		"SPUS": {Symbol: "SPUS", Name: "SP Funds S&P 500 Sharia Industry Exclusions ETF", Exchange: "ARCA", Class: "us_equity", Sector: "Islamic ETF", Tradable: true},
		"HLAL": {Symbol: "HLAL", Name: "Wahed FTSE USA Shariah ETF", Exchange: "NASDAQ", Class: "us_equity", Sector: "Islamic ETF", Tradable: true},
	}
}

// Lookup returns the record for symbol.
func (s Static) Lookup(symbol string) (*models.SecurityInfo, error) {
	info, ok := s[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return nil, ErrUnknownSymbol
	}
	return &info, nil
}

// Search matches query against symbols and names, case-insensitively.
func (s Static) Search(query string) ([]models.SecurityInfo, error) {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var results []models.SecurityInfo
	for _, k := range keys {
		if Matches(s[k], query) {
			results = append(results, s[k])
			if len(results) >= MaxSearchResults {
				break
			}
		}
	}
	return results, nil
}

// Matches reports whether info's symbol or name contains query.
func Matches(info models.SecurityInfo, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(info.Symbol), q) ||
		strings.Contains(strings.ToLower(info.Name), q)
}
