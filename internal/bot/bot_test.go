package bot

import (
	"fmt"
	"strings"
	"testing"

	"halal_finance/internal/market"
	"halal_finance/internal/models"
	"halal_finance/internal/rates"
	"halal_finance/internal/screening"

	"github.com/shopspring/decimal"
)

// MockDirectory implements market.Directory for testing
type MockDirectory struct {
	market.Static
	err error
}

func (m *MockDirectory) Lookup(symbol string) (*models.SecurityInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.Static.Lookup(symbol)
}

func newTestBot(dir market.Directory) *Bot {
	src := rates.Static{Rates: models.DefaultRates(), Currency: "USD"}
	return New(src, screening.DefaultPolicy, dir, nil)
}

func TestHandleCommand_Basics(t *testing.T) {
	b := newTestBot(nil)

	if got := b.HandleCommand("/ping"); got != "Pong 🏓" {
		t.Errorf("Expected pong, got %q", got)
	}
	if got := b.HandleCommand("   "); got != "" {
		t.Errorf("Expected empty reply for blank input, got %q", got)
	}
	if got := b.HandleCommand("/buy AAPL 1"); !strings.Contains(got, "Unknown command") {
		t.Errorf("Expected unknown command reply, got %q", got)
	}
	if got := b.HandleCommand("/PING@HalalBot"); got != "Pong 🏓" {
		t.Errorf("Expected addressed command to be accepted, got %q", got)
	}

	help := b.HandleCommand("/help")
	for _, cmd := range []string{"/zakat", "/screen", "/nisab", "/rates"} {
		if !strings.Contains(help, cmd) {
			t.Errorf("Help is missing %s", cmd)
		}
	}
}

func TestHandleCommand_RatesAndNisab(t *testing.T) {
	b := newTestBot(nil)

	r := b.HandleCommand("/rates")
	if !strings.Contains(r, "Gold: USD 65.50") || !strings.Contains(r, "Silver: USD 0.85") {
		t.Errorf("Unexpected rates reply:\n%s", r)
	}

	n := b.HandleCommand("/nisab")
	if !strings.Contains(n, "USD 520.51") {
		t.Errorf("Expected silver nisab USD 520.51, got:\n%s", n)
	}
	if !strings.Contains(n, "USD 5,729.94") {
		t.Errorf("Expected gold nisab USD 5,729.94, got:\n%s", n)
	}
}

func TestHandleCommand_Zakat(t *testing.T) {
	b := newTestBot(nil)

	tests := []struct {
		name     string
		cmd      string
		contains []string
	}{
		{
			name:     "usage",
			cmd:      "/zakat",
			contains: []string{"Usage: /zakat"},
		},
		{
			name:     "silver default",
			cmd:      "/zakat cash=3000",
			contains: []string{"Hanafi (Silver Standard)", "Zakat Due: USD 75.00"},
		},
		{
			name:     "gold below nisab",
			cmd:      "/zakat cash=3000 method=gold",
			contains: []string{"Gold Standard", "below nisab"},
		},
		{
			name:     "madhab alias",
			cmd:      "/zakat cash=10000 method=Maliki",
			contains: []string{"Gold Standard", "Zakat Due: USD 250.00"},
		},
		{
			name:     "liabilities and metals",
			cmd:      "/zakat cash=5,000 bank=12000 gold=20 debts=1500",
			contains: []string{"Cash & Bank: USD 17,000.00", "Gold: USD 1,310.00", "Liabilities: -USD 1,500.00", "Net Wealth: USD 16,810.00"},
		},
		{
			name:     "garbage amounts count as zero",
			cmd:      "/zakat cash=lots silver=-5",
			contains: []string{"Net Wealth: USD 0.00", "below nisab"},
		},
		{
			name:     "unknown method",
			cmd:      "/zakat cash=100 method=zahiri",
			contains: []string{"Unknown method 'zahiri'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.HandleCommand(tt.cmd)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Expected %q in reply:\n%s", want, got)
				}
			}
		})
	}
}

func TestHandleCommand_ZakatWithoutRates(t *testing.T) {
	b := New(rates.Static{Currency: "USD"}, screening.DefaultPolicy, nil, nil)
	if got := b.HandleCommand("/zakat cash=100"); !strings.Contains(got, "unavailable") {
		t.Errorf("Expected unavailable prices reply, got %q", got)
	}
}

func TestHandleCommand_Screen(t *testing.T) {
	b := newTestBot(&MockDirectory{Static: market.SampleDirectory()})

	tests := []struct {
		name        string
		cmd         string
		contains    []string
		notContains []string
	}{
		{
			name:     "usage",
			cmd:      "/screen debt=10",
			contains: []string{"Usage: /screen"},
		},
		{
			name:        "compliant",
			cmd:         "/screen aapl debt=35 interest=2 haram=1 industry=no",
			contains:    []string{"AAPL (Apple Inc.)", "Score: 98/100 (Grade A+)", "Highly Recommended", "❌ Debt"},
			notContains: []string{"Consider instead"},
		},
		{
			name:     "haram industry capped",
			cmd:      "/screen JPM debt=85.2 interest=78.5 haram=95 industry=yes",
			contains: []string{"JPMorgan", "Grade F", "Avoid", "Consider instead: ISRA, HLAL, SPUS"},
		},
		{
			name:     "unknown symbol still screened",
			cmd:      "/screen ZZZZ debt=10",
			contains: []string{"SCREENING: ZZZZ*", "Score: 100/100"},
		},
		{
			name:     "malformed ratio",
			cmd:      "/screen AAPL debt=high",
			contains: []string{"invalid debt ratio 'high'"},
		},
		{
			name:     "out of range ratio",
			cmd:      "/screen AAPL interest=150",
			contains: []string{"invalid ratio", "interest_income_ratio"},
		},
		{
			name:     "unknown parameter",
			cmd:      "/screen AAPL beta=1.2",
			contains: []string{"unknown parameter 'beta'"},
		},
		{
			name:     "bad industry flag",
			cmd:      "/screen AAPL industry=maybe",
			contains: []string{"industry must be yes or no"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.HandleCommand(tt.cmd)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Expected %q in reply:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("Did not expect %q in reply:\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestHandleCommand_ScreenDirectoryDown(t *testing.T) {
	b := newTestBot(&MockDirectory{err: fmt.Errorf("alpaca unavailable")})

	got := b.HandleCommand("/screen MSFT debt=20")
	if !strings.Contains(got, "SCREENING: MSFT*") {
		t.Errorf("Expected screening without a name, got:\n%s", got)
	}
}

func TestHandleCommand_Search(t *testing.T) {
	b := newTestBot(&MockDirectory{Static: market.SampleDirectory()})

	got := b.HandleCommand("/search sharia")
	if !strings.Contains(got, "`SPUS`") || strings.Contains(got, "AAPL") {
		t.Errorf("Unexpected search reply:\n%s", got)
	}
	if got := b.HandleCommand("/search zzzz"); !strings.Contains(got, "No securities match") {
		t.Errorf("Expected no matches, got %q", got)
	}
	if got := b.HandleCommand("/search"); !strings.HasPrefix(got, "Usage") {
		t.Errorf("Expected usage, got %q", got)
	}
	if got := newTestBot(nil).HandleCommand("/search apple"); !strings.Contains(got, "not available") {
		t.Errorf("Expected unavailable search, got %q", got)
	}
}

func TestParseMetrics(t *testing.T) {
	m, err := parseMetrics("tsla", map[string]string{"debt": "17.5%", "revenue": "0.5", "industry": "halal"})
	if err != nil {
		t.Fatalf("parseMetrics failed: %v", err)
	}
	want := models.ComplianceMetrics{Symbol: "tsla", DebtRatio: 17.5, HaramRevenueRatio: 0.5}
	if m != want {
		t.Errorf("Expected %+v, got %+v", want, m)
	}
}

func TestParseArgs(t *testing.T) {
	kv := parseArgs([]string{"Cash=100", "noise", "=5", "gold=1.5"})
	if len(kv) != 2 || kv["cash"] != "100" || kv["gold"] != "1.5" {
		t.Errorf("Unexpected parse %v", kv)
	}
	if d := decimal.RequireFromString(kv["gold"]); !d.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("Unexpected gold value %s", d)
	}
}
