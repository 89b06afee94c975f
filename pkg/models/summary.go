package models

import "github.com/shopspring/decimal"

// UnclassifiedKey groups entities with no type selected.
const UnclassifiedKey = "unclassified"

// CompaniesActTotals are the summed schedule columns for a group of assets.
type CompaniesActTotals struct {
	Count                          int             `json:"count"`
	OpeningGrossBlock              decimal.Decimal `json:"opening_gross_block"`
	Additions                      decimal.Decimal `json:"additions"`
	DisposalsCost                  decimal.Decimal `json:"disposals_cost"`
	ClosingGrossBlock              decimal.Decimal `json:"closing_gross_block"`
	OpeningAccumulatedDepreciation decimal.Decimal `json:"opening_accumulated_depreciation"`
	DepreciationForYear            decimal.Decimal `json:"depreciation_for_year"`
	DepreciationOnDisposals        decimal.Decimal `json:"depreciation_on_disposals"`
	ClosingAccumulatedDepreciation decimal.Decimal `json:"closing_accumulated_depreciation"`
	OpeningWDV                     decimal.Decimal `json:"opening_wdv"`
	ClosingWDV                     decimal.Decimal `json:"closing_wdv"`
	ProfitOrLoss                   decimal.Decimal `json:"profit_or_loss"`
}

// CompaniesActSummary groups asset results by asset type.
type CompaniesActSummary struct {
	ByType map[string]CompaniesActTotals `json:"by_type"`
	Totals CompaniesActTotals            `json:"totals"`
}

// IncomeTaxTotals are the summed schedule columns for a group of blocks.
type IncomeTaxTotals struct {
	Count                    int             `json:"count"`
	OpeningWDV               decimal.Decimal `json:"opening_wdv"`
	AdditionsFullRate        decimal.Decimal `json:"additions_full_rate"`
	AdditionsHalfRate        decimal.Decimal `json:"additions_half_rate"`
	TotalAdditions           decimal.Decimal `json:"total_additions"`
	SaleProceeds             decimal.Decimal `json:"sale_proceeds"`
	NormalDepreciation       decimal.Decimal `json:"normal_depreciation"`
	AdditionalDepreciation   decimal.Decimal `json:"additional_depreciation"`
	DepreciationForYear      decimal.Decimal `json:"depreciation_for_year"`
	ClosingWDV               decimal.Decimal `json:"closing_wdv"`
	ShortTermCapitalGainLoss decimal.Decimal `json:"short_term_capital_gain_loss"`
}

// IncomeTaxSummary groups block results by block type.
type IncomeTaxSummary struct {
	ByType map[string]IncomeTaxTotals `json:"by_type"`
	Totals IncomeTaxTotals            `json:"totals"`
}

// DeferredTaxInput is the aggregate data the reconciliation needs.
type DeferredTaxInput struct {
	CompaniesActDepreciation decimal.Decimal `json:"companies_act_depreciation"`
	IncomeTaxDepreciation    decimal.Decimal `json:"income_tax_depreciation"`
	OpeningCompaniesActWDV   decimal.Decimal `json:"opening_companies_act_wdv"`
	OpeningIncomeTaxWDV      decimal.Decimal `json:"opening_income_tax_wdv"`
	TaxRate                  decimal.Decimal `json:"tax_rate"`
	AccountingProfit         decimal.Decimal `json:"accounting_profit"`
}

// Deferred tax classifications.
const (
	DeferredTaxAsset     = "Deferred Tax Asset"
	DeferredTaxLiability = "Deferred Tax Liability"
)

// JournalEntry is a two-line debit/credit posting.
type JournalEntry struct {
	Debit  string          `json:"debit"`
	Credit string          `json:"credit"`
	Amount decimal.Decimal `json:"amount"`
}

// DeferredTaxResult is the reconciliation between book and tax depreciation.
type DeferredTaxResult struct {
	Input                    DeferredTaxInput `json:"input"`
	OpeningTimingDifference  decimal.Decimal  `json:"opening_timing_difference"`
	OpeningDeferredTax       decimal.Decimal  `json:"opening_deferred_tax"`
	MovementTimingDifference decimal.Decimal  `json:"movement_timing_difference"`
	MovementDeferredTax      decimal.Decimal  `json:"movement_deferred_tax"`
	ClosingTimingDifference  decimal.Decimal  `json:"closing_timing_difference"`
	ClosingDeferredTax       decimal.Decimal  `json:"closing_deferred_tax"`
	OpeningClassification    string           `json:"opening_classification"`
	ClosingClassification    string           `json:"closing_classification"`
	JournalEntry             JournalEntry     `json:"journal_entry"`
	CurrentTax               decimal.Decimal  `json:"current_tax"`
	DeferredTaxExpense       decimal.Decimal  `json:"deferred_tax_expense"`
	TotalTaxExpense          decimal.Decimal  `json:"total_tax_expense"`
	Workings                 []Working        `json:"workings"`
}
