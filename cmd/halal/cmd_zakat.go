package main

import (
	"fmt"
	"strings"

	"halal_finance/internal/format"
	"halal_finance/internal/models"
	"halal_finance/internal/zakat"

	"github.com/spf13/cobra"
)

// zakatFields are the declaration flags; values are read as loosely as the web form.
var zakatFields = []struct {
	flag  string
	usage string
}{
	{"cash", "Cash on hand"},
	{"bank", "Bank account balances"},
	{"investments", "Stocks, funds and other investments"},
	{"business", "Business inventory and receivables"},
	{"gold", "Gold held, in grams"},
	{"silver", "Silver held, in grams"},
	{"debts", "Debts due now"},
	{"loans", "Loan installments payable"},
}

// zakatCmd calculates zakat on declared wealth
var zakatCmd = &cobra.Command{
	Use:   "zakat",
	Short: "Calculate zakat on declared wealth",
	Long: `Calculate zakat on declared wealth.

Amounts are in the display currency; gold and silver are in grams.
Blank or unreadable amounts count as zero.

Methods:
  silver (hanafi)                          - nisab of 612.36 g silver
  gold   (shafi, maliki, hanbali, majority) - nisab of 87.48 g gold`,
	Example: `  halal zakat --cash 5000 --bank 12000 --gold 20 --debts 1500
  halal zakat --investments 40000 --method gold --currency SAR --json`,
	Args: cobra.NoArgs,
	RunE: runZakat,
}

func init() {
	for _, f := range zakatFields {
		zakatCmd.Flags().String(f.flag, "", f.usage)
	}
	zakatCmd.Flags().String("method", "silver", "Nisab standard: silver|gold or a madhab name")
	zakatCmd.Flags().String("currency", "", "Display currency (default: ZAKAT_CURRENCY)")
}

type zakatReport struct {
	models.ZakatResult
	Currency string `json:"currency"`
}

func runZakat(cmd *cobra.Command, args []string) error {
	form := make(map[string]string, len(zakatFields))
	for _, f := range zakatFields {
		form[f.flag], _ = cmd.Flags().GetString(f.flag)
	}

	methodFlag, _ := cmd.Flags().GetString("method")
	method, err := zakat.ParseMethod(methodFlag)
	if err != nil {
		return err
	}

	src, _, err := ratesSource()
	if err != nil {
		return err
	}
	snap := src.Current()

	code, _ := cmd.Flags().GetString("currency")
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = snap.Currency
	}
	if !format.Supported(code) {
		return fmt.Errorf("%w: %q (supported: %s)", format.ErrUnsupportedCurrency, code, strings.Join(format.Currencies, ", "))
	}

	res, err := zakat.Calculate(zakat.DeclarationFromForm(form), snap.Rates, method)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), zakatReport{ZakatResult: res, Currency: code})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderZakat(res, code))
	return nil
}
