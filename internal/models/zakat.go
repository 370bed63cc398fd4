package models

import "github.com/shopspring/decimal"

// Nisab reference masses from classical jurisprudence.
const (
	GoldNisabGrams   = "87.48"
	SilverNisabGrams = "612.36"
)

// JuristicMethod selects which metal's nisab is the obligation threshold.
type JuristicMethod string

const (
	SilverStandard JuristicMethod = "silver" // Hanafi
	GoldStandard   JuristicMethod = "gold"   // Shafi'i, Maliki, Hanbali
)

// Valid reports whether m is one of the two supported methods.
func (m JuristicMethod) Valid() bool {
	return m == SilverStandard || m == GoldStandard
}

// Label is the human-readable name shown next to a result.
func (m JuristicMethod) Label() string {
	if m == GoldStandard {
		return "Shafi/Maliki/Hanbali (Gold Standard)"
	}
	return "Hanafi (Silver Standard)"
}

func (m JuristicMethod) String() string { return string(m) }

// AssetDeclaration is a snapshot of the wealth components for one calculation.
// Currency fields are amounts in the display currency, Gold and Silver are grams.
type AssetDeclaration struct {
	Cash         decimal.Decimal `json:"cash"`
	BankBalances decimal.Decimal `json:"bank_balances"`
	Investments  decimal.Decimal `json:"investments"`
	Business     decimal.Decimal `json:"business"`
	GoldGrams    decimal.Decimal `json:"gold_grams"`
	SilverGrams  decimal.Decimal `json:"silver_grams"`
	Debts        decimal.Decimal `json:"debts"`
	Loans        decimal.Decimal `json:"loans"`
}

// PreciousMetalRates holds spot prices per gram. The nisab masses are fixed.
type PreciousMetalRates struct {
	GoldPricePerGram   decimal.Decimal `json:"gold_price_per_gram"`
	SilverPricePerGram decimal.Decimal `json:"silver_price_per_gram"`
}

// NewRates builds rates from per-gram prices.
func NewRates(gold, silver decimal.Decimal) PreciousMetalRates {
	return PreciousMetalRates{GoldPricePerGram: gold, SilverPricePerGram: silver}
}

// DefaultRates are the sample USD prices the public calculator ships with.
func DefaultRates() PreciousMetalRates {
	return NewRates(decimal.RequireFromString("65.50"), decimal.RequireFromString("0.85"))
}

// GoldNisab is the gold nisab mass in grams.
func (r PreciousMetalRates) GoldNisab() decimal.Decimal {
	return decimal.RequireFromString(GoldNisabGrams)
}

// SilverNisab is the silver nisab mass in grams.
func (r PreciousMetalRates) SilverNisab() decimal.Decimal {
	return decimal.RequireFromString(SilverNisabGrams)
}

// Threshold returns the nisab value in currency for the given method.
func (r PreciousMetalRates) Threshold(m JuristicMethod) decimal.Decimal {
	if m == SilverStandard {
		return r.SilverNisab().Mul(r.SilverPricePerGram)
	}
	return r.GoldNisab().Mul(r.GoldPricePerGram)
}

// ZakatBreakdown maps each asset category to its currency contribution.
type ZakatBreakdown struct {
	Cash        decimal.Decimal `json:"cash"` // cash on hand + bank balances
	Investments decimal.Decimal `json:"investments"`
	Gold        decimal.Decimal `json:"gold"`
	Silver      decimal.Decimal `json:"silver"`
	Business    decimal.Decimal `json:"business"`
	Liabilities decimal.Decimal `json:"liabilities"`
}

// ZakatResult is the outcome of one calculation.
type ZakatResult struct {
	Method      JuristicMethod  `json:"method"`
	MethodLabel string          `json:"method_label"`
	TotalAssets decimal.Decimal `json:"total_assets"`
	NetWealth   decimal.Decimal `json:"net_wealth"`
	Threshold   decimal.Decimal `json:"nisab_threshold"`
	Due         decimal.Decimal `json:"zakat_due"`
	IsPayable   bool            `json:"is_payable"`
	Breakdown   ZakatBreakdown  `json:"breakdown"`
}
