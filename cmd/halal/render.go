package main

import (
	"fmt"
	"strings"

	"halal_finance/internal/format"
	"halal_finance/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	accent  = lipgloss.Color("#2E7D32")
	success = lipgloss.Color("#8BC34A")
	warning = lipgloss.Color("#FFC107")
	danger  = lipgloss.Color("#E53935")
	muted   = lipgloss.Color("#9E9E9E")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Width(16).Foreground(muted)
	valueStyle = lipgloss.NewStyle().Align(lipgloss.Right).Width(20)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 2)
	goodStyle  = lipgloss.NewStyle().Bold(true).Foreground(success)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(warning)
	badStyle   = lipgloss.NewStyle().Bold(true).Foreground(danger)
	mutedStyle = lipgloss.NewStyle().Foreground(muted)
)

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

func renderZakat(res models.ZakatResult, code string) string {
	money := func(d decimal.Decimal) string {
		s, err := format.Money(d, code)
		if err != nil {
			return d.StringFixed(2)
		}
		return s
	}

	lines := []string{
		titleStyle.Render("Zakat Calculation"),
		mutedStyle.Render(res.MethodLabel),
		"",
		row("Cash & Bank", money(res.Breakdown.Cash)),
		row("Investments", money(res.Breakdown.Investments)),
		row("Gold", money(res.Breakdown.Gold)),
		row("Silver", money(res.Breakdown.Silver)),
		row("Business", money(res.Breakdown.Business)),
		row("Liabilities", "-"+money(res.Breakdown.Liabilities)),
		"",
		row("Net Wealth", money(res.NetWealth)),
		row("Nisab", money(res.Threshold)),
		"",
	}
	if res.IsPayable {
		lines = append(lines, goodStyle.Render("Zakat due: "+money(res.Due)))
	} else {
		lines = append(lines, warnStyle.Render("Below nisab. No zakat is due."))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func recommendationStyle(r models.Recommendation) lipgloss.Style {
	switch r {
	case models.HighlyRecommended, models.Recommended:
		return goodStyle
	case models.Caution:
		return warnStyle
	default:
		return badStyle
	}
}

func check(ok bool) string {
	if ok {
		return goodStyle.Render("✓")
	}
	return badStyle.Render("✗")
}

func renderScreening(res models.ScreeningResult, info *models.SecurityInfo) string {
	title := res.Symbol
	if title == "" {
		title = "Security"
	}
	if info != nil {
		title = fmt.Sprintf("%s · %s", res.Symbol, info.Name)
	}

	lines := []string{
		titleStyle.Render(title),
		row("Halal score", fmt.Sprintf("%d/100", res.Score)),
		row("Grade", string(res.Grade)),
		row("Gharar", string(res.Gharar)),
		recommendationStyle(res.Recommendation).Render(res.Recommendation.Label()),
		"",
		check(res.Checks.RibaFree) + " Riba-free",
		check(res.Checks.DebtCompliant) + " Debt ratio",
		check(res.Checks.RevenueCompliant) + " Haram revenue",
		check(!res.Checks.HaramIndustry) + " Permissible industry",
	}
	if len(res.Alternatives) > 0 {
		lines = append(lines, "", mutedStyle.Render("Alternatives: "+strings.Join(res.Alternatives, ", ")))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderPortfolio(name string, report *models.PortfolioReport) string {
	if name == "" {
		name = "Portfolio"
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(name))
	sb.WriteString("\n")
	for _, h := range report.Holdings {
		symbol := lipgloss.NewStyle().Width(8).Bold(true).Render(h.Symbol)
		if h.Result == nil {
			sb.WriteString(fmt.Sprintf("%s %s\n", symbol, badStyle.Render("rejected: "+h.Error)))
			continue
		}
		verdict := recommendationStyle(h.Result.Recommendation).Render(h.Result.Recommendation.Label())
		sb.WriteString(fmt.Sprintf("%s %3d  %-2s  %s %s\n", symbol, h.Result.Score, h.Result.Grade, verdict, mutedStyle.Render(h.Name)))
	}
	sb.WriteString("\n")
	sb.WriteString(row("Screened", fmt.Sprintf("%d", report.Screened)) + "\n")
	sb.WriteString(row("Rejected", fmt.Sprintf("%d", report.Rejected)) + "\n")
	sb.WriteString(row("Compliant", fmt.Sprintf("%d", report.Compliant)) + "\n")
	sb.WriteString(row("Average score", fmt.Sprintf("%.1f", report.AverageScore)) + "\n")
	sb.WriteString(mutedStyle.Render("Report " + report.ID))
	return boxStyle.Render(sb.String())
}
