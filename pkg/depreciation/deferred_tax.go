package depreciation

import (
	"fmt"

	"github.com/mcclellann/depreg/pkg/models"
	"github.com/mcclellann/depreg/pkg/money"
	"github.com/shopspring/decimal"
)

// Journal entry account names.
const (
	AccountDeferredTaxAsset     = "Deferred Tax Asset"
	AccountDeferredTaxLiability = "Deferred Tax Liability"
	AccountDeferredTaxIncome    = "Deferred Tax Income (Profit and Loss)"
	AccountDeferredTaxExpense   = "Deferred Tax Expense (Profit and Loss)"
)

// DeferredTaxInputFrom builds the reconciliation input from the two schedules.
func DeferredTaxInputFrom(ca models.CompaniesActSummary, it models.IncomeTaxSummary, taxRate, accountingProfit decimal.Decimal) models.DeferredTaxInput {
	return models.DeferredTaxInput{
		CompaniesActDepreciation: ca.Totals.DepreciationForYear,
		IncomeTaxDepreciation:    it.Totals.DepreciationForYear,
		OpeningCompaniesActWDV:   ca.Totals.OpeningWDV,
		OpeningIncomeTaxWDV:      it.Totals.OpeningWDV,
		TaxRate:                  taxRate,
		AccountingProfit:         accountingProfit,
	}
}

func classify(d decimal.Decimal) string {
	if d.IsNegative() {
		return models.DeferredTaxLiability
	}
	return models.DeferredTaxAsset
}

// ReconcileDeferredTax computes the deferred tax position arising from the
// difference between book and tax depreciation.
//
// Timing differences are measured as tax WDV minus book WDV, so a positive
// balance is a deferred tax asset. The year's movement in that difference is
// book depreciation minus tax depreciation.
func ReconcileDeferredTax(in models.DeferredTaxInput) models.DeferredTaxResult {
	rate := in.TaxRate

	openingTD := money.Round(in.OpeningIncomeTaxWDV.Sub(in.OpeningCompaniesActWDV))
	openingDT := money.Round(openingTD.Mul(rate))
	movementTD := money.Round(in.CompaniesActDepreciation.Sub(in.IncomeTaxDepreciation))
	movementDT := money.Round(movementTD.Mul(rate))
	closingTD := money.Round(openingTD.Add(movementTD))
	closingDT := money.Round(openingDT.Add(movementDT))

	res := models.DeferredTaxResult{
		Input:                    in,
		OpeningTimingDifference:  openingTD,
		OpeningDeferredTax:       openingDT,
		MovementTimingDifference: movementTD,
		MovementDeferredTax:      movementDT,
		ClosingTimingDifference:  closingTD,
		ClosingDeferredTax:       closingDT,
		OpeningClassification:    classify(openingDT),
		ClosingClassification:    classify(closingDT),
	}

	if !movementDT.IsNegative() {
		res.JournalEntry = models.JournalEntry{Debit: AccountDeferredTaxAsset, Credit: AccountDeferredTaxIncome, Amount: movementDT}
	} else {
		res.JournalEntry = models.JournalEntry{Debit: AccountDeferredTaxExpense, Credit: AccountDeferredTaxLiability, Amount: movementDT.Abs()}
	}

	res.CurrentTax = money.Round(in.AccountingProfit.Add(movementTD).Mul(rate))
	res.DeferredTaxExpense = movementDT.Neg()
	res.TotalTaxExpense = money.Round(res.CurrentTax.Add(res.DeferredTaxExpense))

	pct := money.Percent(rate)
	res.Workings = []models.Working{
		{
			Description: "Opening timing difference",
			Calculation: fmt.Sprintf("Tax WDV %s - book WDV %s", inr(in.OpeningIncomeTaxWDV), inr(in.OpeningCompaniesActWDV)),
			Amount:      openingTD,
		},
		{
			Description: "Opening deferred tax",
			Calculation: fmt.Sprintf("%s x %s", inr(openingTD), pct),
			Amount:      openingDT,
			Note:        res.OpeningClassification,
		},
		{
			Description: "Timing difference for the year",
			Calculation: fmt.Sprintf("Book depreciation %s - tax depreciation %s", inr(in.CompaniesActDepreciation), inr(in.IncomeTaxDepreciation)),
			Amount:      movementTD,
		},
		{
			Description: "Deferred tax for the year",
			Calculation: fmt.Sprintf("%s x %s", inr(movementTD), pct),
			Amount:      movementDT,
		},
		{
			Description: "Closing deferred tax",
			Calculation: fmt.Sprintf("%s + %s", inr(openingDT), inr(movementDT)),
			Amount:      closingDT,
			Note:        res.ClosingClassification,
		},
		{
			Description: "Current tax",
			Calculation: fmt.Sprintf("(accounting profit %s + %s) x %s", inr(in.AccountingProfit), inr(movementTD), pct),
			Amount:      res.CurrentTax,
		},
		{
			Description: "Total tax expense",
			Calculation: fmt.Sprintf("Current tax %s + deferred tax %s", inr(res.CurrentTax), inr(res.DeferredTaxExpense)),
			Amount:      res.TotalTaxExpense,
		},
	}
	return res
}
