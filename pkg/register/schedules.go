package register

import (
	"fmt"

	"github.com/mcclellann/depreg/pkg/depreciation"
	"github.com/mcclellann/depreg/pkg/fiscal"
	"github.com/mcclellann/depreg/pkg/models"
	"github.com/shopspring/decimal"
)

// CompaniesActSchedule is the Companies Act schedule for one financial year.
type CompaniesActSchedule struct {
	FinancialYear string                      `json:"financial_year"`
	Method        models.Method               `json:"method"`
	Results       []models.CompaniesActResult `json:"results"`
	Summary       models.CompaniesActSummary  `json:"summary"`
	Warnings      []string                    `json:"warnings"`
}

// IncomeTaxSchedule is the Income Tax block schedule for one financial year.
type IncomeTaxSchedule struct {
	FinancialYear string                   `json:"financial_year"`
	Results       []models.IncomeTaxResult `json:"results"`
	Summary       models.IncomeTaxSummary  `json:"summary"`
	Warnings      []string                 `json:"warnings"`
}

// DeferredTaxReport pairs the reconciliation with the schedules' warnings.
type DeferredTaxReport struct {
	FinancialYear string                   `json:"financial_year"`
	Method        models.Method            `json:"method"`
	Result        models.DeferredTaxResult `json:"result"`
	Warnings      []string                 `json:"warnings"`
}

func (r *Register) assetWarnings(a models.CompaniesActAsset, w fiscal.Window) []string {
	var out []string
	warn := func(format string, args ...any) {
		out = append(out, a.Name+": "+fmt.Sprintf(format, args...))
	}
	if a.AssetType == "" {
		warn("asset type not selected")
	} else if _, ok := r.engine.Tables().AssetClass(a.AssetType); !ok {
		warn("asset type %q not in the Schedule II table", a.AssetType)
	}
	if a.OpeningAccumulatedDepreciation.GreaterThan(a.OpeningGrossBlock) {
		warn("accumulated depreciation exceeds gross block")
	}
	if a.ResidualValue.GreaterThan(a.OpeningGrossBlock) && a.OpeningGrossBlock.IsPositive() {
		warn("residual value exceeds gross block")
	}
	if a.SaleValue.IsPositive() && !fiscal.Given(a.DisposalDate) {
		warn("sale value entered without a disposal date")
	}
	if fiscal.Given(a.DisposalDate) {
		if fiscal.Given(a.PurchaseDate) && a.DisposalDate.Before(*a.PurchaseDate) {
			warn("disposal date is before purchase date")
		}
		if !w.Contains(*a.DisposalDate) {
			warn("disposal date %s is outside %s", a.DisposalDate, w.Label())
		}
	}
	for i, add := range a.Additions {
		if fiscal.Given(add.Date) && !w.Contains(*add.Date) {
			warn("addition #%d dated %s is outside %s", i+1, add.Date, w.Label())
		}
	}
	return out
}

func (r *Register) blockWarnings(b models.IncomeTaxBlock, w fiscal.Window) []string {
	var out []string
	warn := func(format string, args ...any) {
		out = append(out, b.Name+": "+fmt.Sprintf(format, args...))
	}
	if b.BlockType == "" {
		warn("block type not selected")
	}
	if b.EligibleForAdditional && !r.engine.AdditionalAllowed(b) {
		warn("additional depreciation claimed but its conditions are not met")
	}
	invested := b.OpeningWDV
	for i, add := range b.Additions {
		invested = invested.Add(add.Cost)
		if fiscal.Given(add.Date) && !w.Contains(*add.Date) {
			warn("addition #%d dated %s is outside %s", i+1, add.Date, w.Label())
		}
	}
	if !b.BlockCeased && invested.IsPositive() && b.SaleProceeds.GreaterThan(invested) {
		warn("sale proceeds exceed the block; the excess is a short-term capital gain")
	}
	return out
}

// BuildCompaniesActSchedule computes a schedule over the given assets. It does
// not touch storage, so the CLI can run it over a snapshot file.
func (r *Register) BuildCompaniesActSchedule(assets []models.CompaniesActAsset, method models.Method, w fiscal.Window) *CompaniesActSchedule {
	sched := &CompaniesActSchedule{
		FinancialYear: w.Label(),
		Method:        method,
		Results:       make([]models.CompaniesActResult, 0, len(assets)),
		Warnings:      []string{},
	}
	for _, a := range assets {
		sched.Results = append(sched.Results, r.engine.ComputeCompaniesAct(a, method, w))
		sched.Warnings = append(sched.Warnings, r.assetWarnings(a, w)...)
	}
	sched.Summary = depreciation.SummarizeCompaniesAct(sched.Results)
	return sched
}

// BuildIncomeTaxSchedule computes a block schedule over the given blocks.
func (r *Register) BuildIncomeTaxSchedule(blocks []models.IncomeTaxBlock, w fiscal.Window) *IncomeTaxSchedule {
	sched := &IncomeTaxSchedule{
		FinancialYear: w.Label(),
		Results:       make([]models.IncomeTaxResult, 0, len(blocks)),
		Warnings:      []string{},
	}
	for _, b := range blocks {
		sched.Results = append(sched.Results, r.engine.ComputeIncomeTax(b, w))
		sched.Warnings = append(sched.Warnings, r.blockWarnings(b, w)...)
	}
	sched.Summary = depreciation.SummarizeIncomeTax(sched.Results)
	return sched
}

// CompaniesActSchedule computes the Companies Act schedule for every stored asset.
func (r *Register) CompaniesActSchedule(method models.Method, w fiscal.Window) (*CompaniesActSchedule, error) {
	assets, err := r.storage.GetAllAssets()
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	list := make([]models.CompaniesActAsset, 0, len(assets))
	for _, a := range assets {
		list = append(list, *a)
	}
	sched := r.BuildCompaniesActSchedule(list, method, w)
	r.logger.Info().
		Str("fy", sched.FinancialYear).
		Str("method", string(method)).
		Int("assets", len(list)).
		Str("depreciation", sched.Summary.Totals.DepreciationForYear.StringFixed(2)).
		Msg("Companies Act schedule computed")
	return sched, nil
}

// IncomeTaxSchedule computes the Income Tax schedule for every stored block.
func (r *Register) IncomeTaxSchedule(w fiscal.Window) (*IncomeTaxSchedule, error) {
	blocks, err := r.storage.GetAllBlocks()
	if err != nil {
		return nil, fmt.Errorf("failed to load blocks: %w", err)
	}
	list := make([]models.IncomeTaxBlock, 0, len(blocks))
	for _, b := range blocks {
		list = append(list, *b)
	}
	sched := r.BuildIncomeTaxSchedule(list, w)
	r.logger.Info().
		Str("fy", sched.FinancialYear).
		Int("blocks", len(list)).
		Str("depreciation", sched.Summary.Totals.DepreciationForYear.StringFixed(2)).
		Msg("Income Tax schedule computed")
	return sched, nil
}

// BuildDeferredTax reconciles two already computed schedules.
func BuildDeferredTax(ca *CompaniesActSchedule, it *IncomeTaxSchedule, taxRate, accountingProfit decimal.Decimal) *DeferredTaxReport {
	in := depreciation.DeferredTaxInputFrom(ca.Summary, it.Summary, taxRate, accountingProfit)
	report := &DeferredTaxReport{
		FinancialYear: ca.FinancialYear,
		Method:        ca.Method,
		Result:        depreciation.ReconcileDeferredTax(in),
		Warnings:      append(append([]string{}, ca.Warnings...), it.Warnings...),
	}
	return report
}

// DeferredTax reconciles the stored register for the year.
func (r *Register) DeferredTax(method models.Method, w fiscal.Window, taxRate, accountingProfit decimal.Decimal) (*DeferredTaxReport, error) {
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, invalid("tax rate must be between 0 and 1, got %s", taxRate)
	}
	ca, err := r.CompaniesActSchedule(method, w)
	if err != nil {
		return nil, err
	}
	it, err := r.IncomeTaxSchedule(w)
	if err != nil {
		return nil, err
	}
	report := BuildDeferredTax(ca, it, taxRate, accountingProfit)
	r.logger.Info().
		Str("fy", report.FinancialYear).
		Str("closing_deferred_tax", report.Result.ClosingDeferredTax.StringFixed(2)).
		Str("classification", report.Result.ClosingClassification).
		Msg("Deferred tax reconciled")
	return report, nil
}
