package zakat

import (
	"strings"

	"halal_finance/internal/models"

	"github.com/shopspring/decimal"
)

// Bounds on accepted amounts. Arithmetic rescales operands to a shared
// exponent, so an input like "1e-40000000" would stall a calculation.
const (
	maxAmountExponent = 18
	maxAmountDigits   = 36
)

// ParseAmount converts user input to a non-negative decimal.
// Blank, unparseable, negative or out-of-range input yields zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	if exp := d.Exponent(); exp < -maxAmountExponent || exp > maxAmountExponent {
		return decimal.Zero
	}
	if d.NumDigits() > maxAmountDigits {
		return decimal.Zero
	}
	return d
}

// formKeys lists the accepted keys for each declaration field, as sent by
// the web form (camelCase) or by API clients (snake_case).
var formKeys = map[string][]string{
	"cash":        {"cash"},
	"bank":        {"bankAccounts", "bank_accounts", "bank_balances", "bank"},
	"investments": {"investments"},
	"business":    {"business", "business_assets"},
	"gold":        {"gold", "gold_grams"},
	"silver":      {"silver", "silver_grams"},
	"debts":       {"debts"},
	"loans":       {"loans", "loans_payable"},
}

// DeclarationFromForm builds a declaration from loosely-typed form values.
func DeclarationFromForm(form map[string]string) models.AssetDeclaration {
	get := func(field string) decimal.Decimal {
		for _, k := range formKeys[field] {
			if v, ok := form[k]; ok {
				return ParseAmount(v)
			}
		}
		return decimal.Zero
	}

	return models.AssetDeclaration{
		Cash:         get("cash"),
		BankBalances: get("bank"),
		Investments:  get("investments"),
		Business:     get("business"),
		GoldGrams:    get("gold"),
		SilverGrams:  get("silver"),
		Debts:        get("debts"),
		Loans:        get("loans"),
	}
}
