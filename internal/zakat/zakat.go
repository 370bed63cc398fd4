// Package zakat computes the zakat obligation on a declared set of assets.
//
// Amounts are shopspring/decimal values throughout. Form input is parsed
// tolerantly: a blank or unreadable field counts as zero and is never an
// error. Metal prices are the only input that can be rejected.
package zakat

import (
	"errors"
	"fmt"
	"strings"

	"halal_finance/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidRate is returned when a metal price is zero or negative.
	ErrInvalidRate = errors.New("invalid metal rate")
	// ErrUnknownMethod is returned by ParseMethod for an unrecognised selector.
	ErrUnknownMethod = errors.New("unknown juristic method")
)

// Rate is the fixed levy, one fortieth of qualifying wealth.
var Rate = decimal.NewFromInt(1).Div(decimal.NewFromInt(40))

// Calculate aggregates assets, nets liabilities and applies the nisab test for method.
func Calculate(assets models.AssetDeclaration, rates models.PreciousMetalRates, method models.JuristicMethod) (models.ZakatResult, error) {
	if err := validateRates(rates); err != nil {
		return models.ZakatResult{}, err
	}
	if !method.Valid() {
		return models.ZakatResult{}, fmt.Errorf("%w: %q", ErrUnknownMethod, string(method))
	}

	a := sanitize(assets)

	goldValue := a.GoldGrams.Mul(rates.GoldPricePerGram)
	silverValue := a.SilverGrams.Mul(rates.SilverPricePerGram)

	total := decimal.Sum(a.Cash, a.BankBalances, a.Investments, a.Business, goldValue, silverValue)
	liabilities := a.Debts.Add(a.Loans)
	net := total.Sub(liabilities)

	threshold := rates.Threshold(method)

	due := decimal.Zero
	payable := net.GreaterThanOrEqual(threshold)
	if payable {
		due = net.Mul(Rate)
	}

	return models.ZakatResult{
		Method:      method,
		MethodLabel: method.Label(),
		TotalAssets: total,
		NetWealth:   net,
		Threshold:   threshold,
		Due:         due,
		IsPayable:   payable,
		Breakdown: models.ZakatBreakdown{
			Cash:        a.Cash.Add(a.BankBalances),
			Investments: a.Investments,
			Gold:        goldValue,
			Silver:      silverValue,
			Business:    a.Business,
			Liabilities: liabilities,
		},
	}, nil
}

func validateRates(r models.PreciousMetalRates) error {
	if !r.GoldPricePerGram.IsPositive() {
		return fmt.Errorf("%w: gold_price_per_gram must be positive, got %s", ErrInvalidRate, r.GoldPricePerGram)
	}
	if !r.SilverPricePerGram.IsPositive() {
		return fmt.Errorf("%w: silver_price_per_gram must be positive, got %s", ErrInvalidRate, r.SilverPricePerGram)
	}
	return nil
}

// sanitize degrades negative amounts to zero.
func sanitize(a models.AssetDeclaration) models.AssetDeclaration {
	for _, f := range []*decimal.Decimal{
		&a.Cash, &a.BankBalances, &a.Investments, &a.Business,
		&a.GoldGrams, &a.SilverGrams, &a.Debts, &a.Loans,
	} {
		if f.IsNegative() {
			*f = decimal.Zero
		}
	}
	return a
}

// ParseMethod maps a selector ("silver", "gold", or a madhab name) to a method.
// An empty selector means the silver standard.
func ParseMethod(s string) (models.JuristicMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "silver", "hanafi":
		return models.SilverStandard, nil
	case "gold", "majority", "shafi", "shafii", "maliki", "hanbali":
		return models.GoldStandard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}
