// Package bot answers the slash commands sent to the Telegram bot.
package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"halal_finance/internal/format"
	"halal_finance/internal/market"
	"halal_finance/internal/models"
	"halal_finance/internal/rates"
	"halal_finance/internal/screening"
	"halal_finance/internal/zakat"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CommandDoc struct {
	Name        string
	Description string
	Example     string
}

// Bot holds what the command handlers need. It keeps no per-chat state.
type Bot struct {
	rates     rates.Source
	policy    screening.Policy
	directory market.Directory
	logger    *zap.Logger
	commands  []CommandDoc
}

// New builds a bot. directory may be nil, in which case names are not resolved.
func New(src rates.Source, policy screening.Policy, directory market.Directory, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		rates:     src,
		policy:    policy,
		directory: directory,
		logger:    logger,
		commands: []CommandDoc{
			{"/ping", "Health check.", "/ping"},
			{"/rates", "Current gold and silver prices.", "/rates"},
			{"/nisab", "Nisab thresholds under both methods.", "/nisab"},
			{"/zakat", "Zakat due on declared assets. Amounts in currency, metals in grams.",
				"/zakat cash=5000 bank=12000 gold=20 debts=1500 method=gold"},
			{"/screen", "Halal score for a stock. Ratios in percent.",
				"/screen AAPL debt=35 interest=2 haram=1 industry=no"},
			{"/search", "Find a ticker by company name.", "/search apple"},
		},
	}
}

// HandleCommand processes inbound Telegram commands safely.
func (b *Bot) HandleCommand(cmd string) string {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return ""
	}

	// "/zakat@MyBot" is how group chats address a command.
	name, _, _ := strings.Cut(strings.ToLower(parts[0]), "@")

	switch name {
	case "/ping":
		return "Pong 🏓"
	case "/help", "/start":
		return b.getHelp()
	case "/rates":
		return b.getRates()
	case "/nisab":
		return b.getNisab()
	case "/zakat":
		return b.handleZakatCommand(parts[1:])
	case "/screen":
		return b.handleScreenCommand(parts[1:])
	case "/search":
		if len(parts) < 2 {
			return "Usage: /search <query>"
		}
		return b.searchSecurities(strings.Join(parts[1:], " "))
	default:
		return "Unknown command. Try /zakat, /screen, /search, /nisab, /rates or /help."
	}
}

func (b *Bot) getHelp() string {
	var sb strings.Builder
	sb.WriteString("🕌 *HALAL FINANCE COMMANDS*\n\n")
	for _, cmd := range b.commands {
		sb.WriteString(fmt.Sprintf("🔹 *%s*\n%s\n`%s`\n\n", cmd.Name, cmd.Description, cmd.Example))
	}
	return sb.String()
}

func (b *Bot) getRates() string {
	snap := b.rates.Current()
	gold, err := format.ISO(snap.Rates.GoldPricePerGram, snap.Currency)
	if err != nil {
		return "⚠️ Rates are quoted in an unsupported currency."
	}
	silver, _ := format.ISO(snap.Rates.SilverPricePerGram, snap.Currency)

	var sb strings.Builder
	sb.WriteString("💰 *METAL PRICES (per gram)*\n")
	sb.WriteString(fmt.Sprintf("Gold: %s\n", gold))
	sb.WriteString(fmt.Sprintf("Silver: %s\n", silver))
	if !snap.UpdatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("_Updated %s_", snap.UpdatedAt.UTC().Format("2006-01-02 15:04 MST")))
	}
	return sb.String()
}

func (b *Bot) getNisab() string {
	snap := b.rates.Current()
	var sb strings.Builder
	sb.WriteString("⚖️ *NISAB THRESHOLDS*\n")
	for _, m := range []models.JuristicMethod{models.SilverStandard, models.GoldStandard} {
		v, err := format.ISO(snap.Rates.Threshold(m), snap.Currency)
		if err != nil {
			return "⚠️ Rates are quoted in an unsupported currency."
		}
		sb.WriteString(fmt.Sprintf("• %s: %s\n", m.Label(), v))
	}
	return sb.String()
}

// handleZakatCommand is as forgiving as the web form: unknown keys are
// ignored and unreadable amounts count as zero.
func (b *Bot) handleZakatCommand(args []string) string {
	if len(args) == 0 {
		return "Usage: /zakat cash=<amt> bank=<amt> investments=<amt> business=<amt> gold=<g> silver=<g> debts=<amt> loans=<amt> [method=silver|gold]"
	}

	form := parseArgs(args)
	method, err := zakat.ParseMethod(form["method"])
	if err != nil {
		return fmt.Sprintf("⚠️ Unknown method '%s'. Use silver (Hanafi) or gold (Shafi/Maliki/Hanbali).", form["method"])
	}

	snap := b.rates.Current()
	res, err := zakat.Calculate(zakat.DeclarationFromForm(form), snap.Rates, method)
	if err != nil {
		b.logger.Error("Zakat calculation failed", zap.Error(err))
		return "⚠️ Metal prices are unavailable right now."
	}

	money := func(d decimal.Decimal) string {
		s, err := format.ISO(d, snap.Currency)
		if err != nil {
			return d.StringFixed(2)
		}
		return s
	}

	var sb strings.Builder
	sb.WriteString("🧮 *ZAKAT CALCULATION*\n")
	sb.WriteString(fmt.Sprintf("Method: %s\n\n", res.MethodLabel))
	sb.WriteString(fmt.Sprintf("Cash & Bank: %s\n", money(res.Breakdown.Cash)))
	sb.WriteString(fmt.Sprintf("Investments: %s\n", money(res.Breakdown.Investments)))
	sb.WriteString(fmt.Sprintf("Gold: %s\n", money(res.Breakdown.Gold)))
	sb.WriteString(fmt.Sprintf("Silver: %s\n", money(res.Breakdown.Silver)))
	sb.WriteString(fmt.Sprintf("Business: %s\n", money(res.Breakdown.Business)))
	sb.WriteString(fmt.Sprintf("Liabilities: -%s\n\n", money(res.Breakdown.Liabilities)))
	sb.WriteString(fmt.Sprintf("Net Wealth: %s\n", money(res.NetWealth)))
	sb.WriteString(fmt.Sprintf("Nisab: %s\n", money(res.Threshold)))
	if res.IsPayable {
		sb.WriteString(fmt.Sprintf("✅ *Zakat Due: %s*", money(res.Due)))
	} else {
		sb.WriteString("ℹ️ Net wealth is below nisab. No zakat is due.")
	}
	return sb.String()
}

// screenKeys maps command keys to the metric they set.
var screenKeys = map[string]string{
	"debt":     "debt",
	"interest": "interest",
	"haram":    "haram",
	"revenue":  "haram",
	"industry": "industry",
}

func (b *Bot) handleScreenCommand(args []string) string {
	if len(args) == 0 || strings.Contains(args[0], "=") {
		return "Usage: /screen <ticker> debt=<pct> interest=<pct> haram=<pct> [industry=yes|no]"
	}

	m, err := parseMetrics(args[0], parseArgs(args[1:]))
	if err != nil {
		return fmt.Sprintf("⚠️ %v", err)
	}

	res, err := b.policy.Screen(m)
	if err != nil {
		return fmt.Sprintf("⚠️ %v", err)
	}

	title := res.Symbol
	if b.directory != nil {
		info, err := b.directory.Lookup(res.Symbol)
		switch {
		case err == nil:
			title = fmt.Sprintf("%s (%s)", res.Symbol, info.Name)
		case !errors.Is(err, market.ErrUnknownSymbol):
			b.logger.Warn("Directory lookup failed", zap.String("symbol", res.Symbol), zap.Error(err))
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *SCREENING: %s*\n", title))
	sb.WriteString(fmt.Sprintf("Score: %d/100 (Grade %s)\n", res.Score, res.Grade))
	sb.WriteString(fmt.Sprintf("Verdict: %s\n", res.Recommendation.Label()))
	sb.WriteString(fmt.Sprintf("Gharar: %s\n\n", res.Gharar))
	sb.WriteString(fmt.Sprintf("%s Riba-free (interest ≤ %.0f%%)\n", mark(res.Checks.RibaFree), screening.InterestLimit))
	sb.WriteString(fmt.Sprintf("%s Debt (≤ %.0f%%)\n", mark(res.Checks.DebtCompliant), screening.DebtLimit))
	sb.WriteString(fmt.Sprintf("%s Haram revenue (≤ %.0f%%)\n", mark(res.Checks.RevenueCompliant), screening.HaramRevenueLimit))
	sb.WriteString(fmt.Sprintf("%s Permissible industry\n", mark(!res.Checks.HaramIndustry)))
	if len(res.Alternatives) > 0 {
		sb.WriteString(fmt.Sprintf("\nConsider instead: %s", strings.Join(res.Alternatives, ", ")))
	}
	return sb.String()
}

func (b *Bot) searchSecurities(query string) string {
	if b.directory == nil {
		return "⚠️ Symbol search is not available."
	}
	results, err := b.directory.Search(query)
	if err != nil {
		b.logger.Warn("Directory search failed", zap.String("query", query), zap.Error(err))
		return "⚠️ Search failed. Try again later."
	}
	if len(results) == 0 {
		return fmt.Sprintf("No securities match '%s'.", query)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔎 *RESULTS: %s*\n", query))
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("• `%s` %s (%s)\n", r.Symbol, r.Name, r.Exchange))
	}
	return sb.String()
}

// parseMetrics reads ratios strictly; a malformed number is an error, not zero.
func parseMetrics(symbol string, kv map[string]string) (models.ComplianceMetrics, error) {
	m := models.ComplianceMetrics{Symbol: symbol}
	for k, v := range kv {
		field, ok := screenKeys[k]
		if !ok {
			return m, fmt.Errorf("unknown parameter '%s'", k)
		}
		if field == "industry" {
			haram, err := parseYesNo(v)
			if err != nil {
				return m, err
			}
			m.HaramIndustry = haram
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return m, fmt.Errorf("invalid %s ratio '%s'", k, v)
		}
		switch field {
		case "debt":
			m.DebtRatio = f
		case "interest":
			m.InterestIncomeRatio = f
		case "haram":
			m.HaramRevenueRatio = f
		}
	}
	return m, nil
}

func parseYesNo(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "yes", "y", "true", "1", "haram":
		return true, nil
	case "no", "n", "false", "0", "halal":
		return false, nil
	}
	return false, fmt.Errorf("industry must be yes or no, got '%s'", v)
}

// parseArgs splits key=value tokens. Keys are lower-cased; tokens without
// '=' are skipped.
func parseArgs(args []string) map[string]string {
	kv := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			continue
		}
		kv[strings.ToLower(k)] = v
	}
	return kv
}

func mark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}
