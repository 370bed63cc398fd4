package alpaca

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"halal_finance/internal/market"
	"halal_finance/internal/models"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
)

// assetsClient is the slice of the Alpaca trading client the directory uses.
type assetsClient interface {
	GetAsset(symbol string) (*alpaca.Asset, error)
	GetAssets(req alpaca.GetAssetsRequest) ([]alpaca.Asset, error)
}

// Directory resolves symbols through Alpaca's assets endpoint.
type Directory struct {
	client assetsClient
}

// Ensure Directory implements the interface
var _ market.Directory = (*Directory)(nil)

// NewDirectory returns a directory backed by a trading client.
// Credentials come from APCA_API_KEY_ID / APCA_API_SECRET_KEY / APCA_API_BASE_URL.
func NewDirectory() *Directory {
	return &Directory{client: alpaca.NewClient(alpaca.ClientOpts{})}
}

// Lookup fetches a single asset. A 404 from the API maps to market.ErrUnknownSymbol.
func (d *Directory) Lookup(symbol string) (*models.SecurityInfo, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, market.ErrUnknownSymbol
	}

	a, err := d.client.GetAsset(symbol)
	if err != nil {
		var apiErr *alpaca.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", market.ErrUnknownSymbol, symbol)
		}
		return nil, fmt.Errorf("alpaca asset %s: %w", symbol, err)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", market.ErrUnknownSymbol, symbol)
	}

	info := mapAsset(*a)
	return &info, nil
}

// Search fetches active US equities and filters them in memory.
// Returns a maximum of market.MaxSearchResults results.
func (d *Directory) Search(query string) ([]models.SecurityInfo, error) {
	assets, err := d.client.GetAssets(alpaca.GetAssetsRequest{
		Status:     "active",
		AssetClass: "us_equity",
	})
	if err != nil {
		return nil, err
	}

	var results []models.SecurityInfo
	for _, a := range assets {
		info := mapAsset(a)
		if market.Matches(info, query) {
			results = append(results, info)
			if len(results) >= market.MaxSearchResults {
				break
			}
		}
	}
	return results, nil
}

func mapAsset(a alpaca.Asset) models.SecurityInfo {
	return models.SecurityInfo{
		Symbol:   a.Symbol,
		Name:     a.Name,
		Exchange: a.Exchange,
		Class:    string(a.Class),
		Tradable: a.Tradable,
	}
}
