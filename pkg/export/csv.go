// Package export renders computed schedules as CSV and as plain-text workings.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mcclellann/depreg/pkg/models"
	"github.com/shopspring/decimal"
)

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

var companiesActHeader = []string{
	"asset_id", "asset_name", "asset_type", "method",
	"opening_gross_block", "additions", "disposals_cost", "closing_gross_block",
	"opening_accumulated_depreciation", "depreciation_for_year", "depreciation_on_disposals", "closing_accumulated_depreciation",
	"opening_wdv", "closing_wdv", "sale_value", "profit_or_loss", "disposed", "frozen",
}

// CompaniesActCSV writes one row per asset result.
func CompaniesActCSV(w io.Writer, results []models.CompaniesActResult) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.AssetID.String(), r.AssetName, r.AssetType, string(r.Method),
			amount(r.OpeningGrossBlock), amount(r.Additions), amount(r.DisposalsCost), amount(r.ClosingGrossBlock),
			amount(r.OpeningAccumulatedDepreciation), amount(r.DepreciationForYear), amount(r.DepreciationOnDisposals), amount(r.ClosingAccumulatedDepreciation),
			amount(r.OpeningWDV), amount(r.ClosingWDV), amount(r.SaleValue), amount(r.ProfitOrLoss),
			strconv.FormatBool(r.Disposed), strconv.FormatBool(r.Frozen),
		})
	}
	return writeAll(w, companiesActHeader, rows)
}

var incomeTaxHeader = []string{
	"block_id", "block_name", "block_type", "rate",
	"opening_wdv", "additions_full_rate", "additions_half_rate", "total_additions", "sale_proceeds",
	"wdv_before_depreciation", "normal_depreciation", "additional_depreciation", "depreciation_for_year",
	"closing_wdv", "short_term_capital_gain_loss", "block_ceased", "unclassified",
}

// IncomeTaxCSV writes one row per block result.
func IncomeTaxCSV(w io.Writer, results []models.IncomeTaxResult) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.BlockID.String(), r.BlockName, r.BlockType, r.Rate.String(),
			amount(r.OpeningWDV), amount(r.AdditionsFullRate), amount(r.AdditionsHalfRate), amount(r.TotalAdditions), amount(r.SaleProceeds),
			amount(r.WDVBeforeDepreciation), amount(r.NormalDepreciation), amount(r.AdditionalDepreciation), amount(r.DepreciationForYear),
			amount(r.ClosingWDV), amount(r.ShortTermCapitalGainLoss),
			strconv.FormatBool(r.BlockCeased), strconv.FormatBool(r.Unclassified),
		})
	}
	return writeAll(w, incomeTaxHeader, rows)
}

var companiesActSummaryHeader = []string{
	"asset_type", "count", "opening_gross_block", "additions", "disposals_cost", "closing_gross_block",
	"opening_accumulated_depreciation", "depreciation_for_year", "depreciation_on_disposals", "closing_accumulated_depreciation",
	"opening_wdv", "closing_wdv", "profit_or_loss",
}

func companiesActTotalsRow(key string, t models.CompaniesActTotals) []string {
	return []string{
		key, strconv.Itoa(t.Count),
		amount(t.OpeningGrossBlock), amount(t.Additions), amount(t.DisposalsCost), amount(t.ClosingGrossBlock),
		amount(t.OpeningAccumulatedDepreciation), amount(t.DepreciationForYear), amount(t.DepreciationOnDisposals), amount(t.ClosingAccumulatedDepreciation),
		amount(t.OpeningWDV), amount(t.ClosingWDV), amount(t.ProfitOrLoss),
	}
}

// CompaniesActSummaryCSV writes one row per asset type followed by a "total" row.
func CompaniesActSummaryCSV(w io.Writer, s models.CompaniesActSummary) error {
	var rows [][]string
	for _, key := range sortedKeys(s.ByType) {
		rows = append(rows, companiesActTotalsRow(key, s.ByType[key]))
	}
	rows = append(rows, companiesActTotalsRow("total", s.Totals))
	return writeAll(w, companiesActSummaryHeader, rows)
}

var incomeTaxSummaryHeader = []string{
	"block_type", "count", "opening_wdv", "additions_full_rate", "additions_half_rate", "total_additions",
	"sale_proceeds", "normal_depreciation", "additional_depreciation", "depreciation_for_year",
	"closing_wdv", "short_term_capital_gain_loss",
}

func incomeTaxTotalsRow(key string, t models.IncomeTaxTotals) []string {
	return []string{
		key, strconv.Itoa(t.Count),
		amount(t.OpeningWDV), amount(t.AdditionsFullRate), amount(t.AdditionsHalfRate), amount(t.TotalAdditions),
		amount(t.SaleProceeds), amount(t.NormalDepreciation), amount(t.AdditionalDepreciation), amount(t.DepreciationForYear),
		amount(t.ClosingWDV), amount(t.ShortTermCapitalGainLoss),
	}
}

// IncomeTaxSummaryCSV writes one row per block type followed by a "total" row.
func IncomeTaxSummaryCSV(w io.Writer, s models.IncomeTaxSummary) error {
	var rows [][]string
	for _, key := range sortedKeys(s.ByType) {
		rows = append(rows, incomeTaxTotalsRow(key, s.ByType[key]))
	}
	rows = append(rows, incomeTaxTotalsRow("total", s.Totals))
	return writeAll(w, incomeTaxSummaryHeader, rows)
}
