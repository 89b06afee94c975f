package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/mcclellann/depreg/pkg/models"
	"github.com/mcclellann/depreg/pkg/money"
)

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writer remembers the first error so rendering code can stay linear.
type writer struct {
	w   io.Writer
	err error
}

func (p *writer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *writer) workings(ws []models.Working) {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	for _, wk := range ws {
		note := ""
		if wk.Note != "" {
			note = "  [" + wk.Note + "]"
		}
		if p.err == nil {
			_, p.err = fmt.Fprintf(tw, "    %s\t%s\t%s\t%s\n", wk.Description, wk.Calculation, money.FormatINR(wk.Amount), note)
		}
	}
	if p.err == nil {
		p.err = tw.Flush()
	}
}

func (p *writer) warnings(ws []string) {
	if len(ws) == 0 {
		return
	}
	p.printf("\nWarnings:\n")
	for _, w := range ws {
		p.printf("  - %s\n", w)
	}
}

// CompaniesActText renders each asset's workings followed by the totals.
func CompaniesActText(w io.Writer, fy string, method models.Method, results []models.CompaniesActResult, summary models.CompaniesActSummary, warnings []string) error {
	p := &writer{w: w}
	p.printf("Companies Act depreciation (%s) for %s\n", method, fy)
	p.printf("%s\n", strings.Repeat("=", 60))
	for _, r := range results {
		p.printf("\n%s (%s)\n", r.AssetName, displayType(r.AssetType))
		p.workings(r.Workings)
		p.printf("  Depreciation for the year: %s   Closing WDV: %s\n", money.FormatINR(r.DepreciationForYear), money.FormatINR(r.ClosingWDV))
	}
	t := summary.Totals
	p.printf("\nTotals (%d assets)\n", t.Count)
	p.printf("  Gross block:  %s -> %s\n", money.FormatINR(t.OpeningGrossBlock), money.FormatINR(t.ClosingGrossBlock))
	p.printf("  Depreciation: %s\n", money.FormatINR(t.DepreciationForYear))
	p.printf("  WDV:          %s -> %s\n", money.FormatINR(t.OpeningWDV), money.FormatINR(t.ClosingWDV))
	if !t.ProfitOrLoss.IsZero() {
		p.printf("  Profit/(loss) on sale: %s\n", money.FormatINR(t.ProfitOrLoss))
	}
	p.warnings(warnings)
	return p.err
}

// IncomeTaxText renders each block's workings followed by the totals.
func IncomeTaxText(w io.Writer, fy string, results []models.IncomeTaxResult, summary models.IncomeTaxSummary, warnings []string) error {
	p := &writer{w: w}
	p.printf("Income Tax depreciation for %s\n", fy)
	p.printf("%s\n", strings.Repeat("=", 60))
	for _, r := range results {
		p.printf("\n%s (%s @ %s)\n", r.BlockName, displayType(r.BlockType), money.Percent(r.Rate))
		p.workings(r.Workings)
		p.printf("  Depreciation for the year: %s   Closing WDV: %s\n", money.FormatINR(r.DepreciationForYear), money.FormatINR(r.ClosingWDV))
	}
	t := summary.Totals
	p.printf("\nTotals (%d blocks)\n", t.Count)
	p.printf("  Normal depreciation:     %s\n", money.FormatINR(t.NormalDepreciation))
	p.printf("  Additional depreciation: %s\n", money.FormatINR(t.AdditionalDepreciation))
	p.printf("  Closing WDV:             %s\n", money.FormatINR(t.ClosingWDV))
	if !t.ShortTermCapitalGainLoss.IsZero() {
		p.printf("  Short-term capital gain/(loss): %s\n", money.FormatINR(t.ShortTermCapitalGainLoss))
	}
	p.warnings(warnings)
	return p.err
}

// DeferredTaxText renders the reconciliation workings and the journal entry.
func DeferredTaxText(w io.Writer, fy string, res models.DeferredTaxResult, warnings []string) error {
	p := &writer{w: w}
	p.printf("Deferred tax for %s\n", fy)
	p.printf("%s\n", strings.Repeat("=", 60))
	p.workings(res.Workings)
	p.printf("\nJournal entry\n")
	p.printf("  Dr %s  %s\n", res.JournalEntry.Debit, money.FormatINR(res.JournalEntry.Amount))
	p.printf("      Cr %s  %s\n", res.JournalEntry.Credit, money.FormatINR(res.JournalEntry.Amount))
	p.printf("\nClosing position: %s of %s\n", res.ClosingClassification, money.FormatINR(res.ClosingDeferredTax.Abs()))
	p.printf("Tax expense: current %s + deferred %s = %s\n",
		money.FormatINR(res.CurrentTax), money.FormatINR(res.DeferredTaxExpense), money.FormatINR(res.TotalTaxExpense))
	p.warnings(warnings)
	return p.err
}

func displayType(t string) string {
	if t == "" {
		return models.UnclassifiedKey
	}
	return t
}
