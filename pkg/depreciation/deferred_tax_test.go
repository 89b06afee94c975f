package depreciation

import (
	"testing"

	"github.com/mcclellann/depreg/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestReconcileDeferredTax_Liability(t *testing.T) {
	res := ReconcileDeferredTax(models.DeferredTaxInput{
		CompaniesActDepreciation: d("100000"),
		IncomeTaxDepreciation:    d("150000"),
		OpeningCompaniesActWDV:   d("1000000"),
		OpeningIncomeTaxWDV:      d("900000"),
		TaxRate:                  d("0.25"),
		AccountingProfit:         d("500000"),
	})

	assertAmount(t, "-100000", res.OpeningTimingDifference)
	assertAmount(t, "-25000", res.OpeningDeferredTax)
	assert.Equal(t, models.DeferredTaxLiability, res.OpeningClassification)
	assertAmount(t, "-50000", res.MovementTimingDifference)
	assertAmount(t, "-12500", res.MovementDeferredTax)
	assertAmount(t, "-150000", res.ClosingTimingDifference)
	assertAmount(t, "-37500", res.ClosingDeferredTax)
	assert.Equal(t, models.DeferredTaxLiability, res.ClosingClassification)

	assert.Equal(t, AccountDeferredTaxExpense, res.JournalEntry.Debit)
	assert.Equal(t, AccountDeferredTaxLiability, res.JournalEntry.Credit)
	assertAmount(t, "12500", res.JournalEntry.Amount)

	assertAmount(t, "112500", res.CurrentTax)
	assertAmount(t, "12500", res.DeferredTaxExpense)
	assertAmount(t, "125000", res.TotalTaxExpense)
	assert.Len(t, res.Workings, 7)
}

func TestReconcileDeferredTax_Asset(t *testing.T) {
	res := ReconcileDeferredTax(models.DeferredTaxInput{
		CompaniesActDepreciation: d("200000"),
		IncomeTaxDepreciation:    d("120000"),
		OpeningCompaniesActWDV:   d("500000"),
		OpeningIncomeTaxWDV:      d("500000"),
		TaxRate:                  d("0.2517"),
		AccountingProfit:         d("1000000"),
	})

	assertAmount(t, "0", res.OpeningDeferredTax)
	assert.Equal(t, models.DeferredTaxAsset, res.OpeningClassification)
	assertAmount(t, "80000", res.MovementTimingDifference)
	assertAmount(t, "20136", res.MovementDeferredTax)
	assertAmount(t, "20136", res.ClosingDeferredTax)
	assert.Equal(t, models.DeferredTaxAsset, res.ClosingClassification)

	assert.Equal(t, AccountDeferredTaxAsset, res.JournalEntry.Debit)
	assert.Equal(t, AccountDeferredTaxIncome, res.JournalEntry.Credit)
	assertAmount(t, "20136", res.JournalEntry.Amount)

	assertAmount(t, "271836", res.CurrentTax)
	assertAmount(t, "251700", res.TotalTaxExpense)
}

func TestReconcileDeferredTax_ClosingIsOpeningPlusMovement(t *testing.T) {
	amounts := []string{"0", "1", "0.01", "12345.67", "999999.99", "81450", "3.33"}
	taxRates := []string{"0", "0.25", "0.2517", "0.3494", "0.333333"}

	for _, caDep := range amounts {
		for _, itDep := range amounts {
			for _, rate := range taxRates {
				res := ReconcileDeferredTax(models.DeferredTaxInput{
					CompaniesActDepreciation: d(caDep),
					IncomeTaxDepreciation:    d(itDep),
					OpeningCompaniesActWDV:   d("1234.56"),
					OpeningIncomeTaxWDV:      d("7890.12"),
					TaxRate:                  d(rate),
				})
				want := res.OpeningDeferredTax.Add(res.MovementDeferredTax)
				assert.True(t, want.Equal(res.ClosingDeferredTax), "ca=%s it=%s rate=%s", caDep, itDep, rate)
			}
		}
	}
}

func TestDeferredTaxInputFrom(t *testing.T) {
	ca := models.CompaniesActSummary{Totals: models.CompaniesActTotals{DepreciationForYear: d("10"), OpeningWDV: d("100")}}
	it := models.IncomeTaxSummary{Totals: models.IncomeTaxTotals{DepreciationForYear: d("20"), OpeningWDV: d("90")}}

	in := DeferredTaxInputFrom(ca, it, d("0.25"), d("1000"))

	assertAmount(t, "10", in.CompaniesActDepreciation)
	assertAmount(t, "20", in.IncomeTaxDepreciation)
	assertAmount(t, "100", in.OpeningCompaniesActWDV)
	assertAmount(t, "90", in.OpeningIncomeTaxWDV)
	assertAmount(t, "0.25", in.TaxRate)
	assertAmount(t, "1000", in.AccountingProfit)
}
