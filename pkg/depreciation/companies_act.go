package depreciation

import (
	"fmt"

	"github.com/mcclellann/depreg/pkg/fiscal"
	"github.com/mcclellann/depreg/pkg/models"
	"github.com/mcclellann/depreg/pkg/money"
	"github.com/shopspring/decimal"
)

func normalizeAsset(a models.CompaniesActAsset) models.CompaniesActAsset {
	a.OpeningGrossBlock = money.Round(money.NonNegative(a.OpeningGrossBlock))
	a.OpeningAccumulatedDepreciation = money.Round(money.NonNegative(a.OpeningAccumulatedDepreciation))
	a.ResidualValue = money.Round(money.NonNegative(a.ResidualValue))
	a.SaleValue = money.Round(money.NonNegative(a.SaleValue))
	a.Additions = normalizeAdditions(a.Additions)
	return a
}

// ComputeCompaniesAct computes the year's depreciation for one asset under the
// Companies Act using the given method. An invalid method is treated as SLM.
func (e *Engine) ComputeCompaniesAct(asset models.CompaniesActAsset, method models.Method, w fiscal.Window) models.CompaniesActResult {
	if !method.Valid() {
		method = models.MethodSLM
	}
	a := normalizeAsset(asset)

	res := models.CompaniesActResult{
		AssetID:   a.ID,
		AssetName: a.Name,
		AssetType: a.AssetType,
		Method:    method,
		Workings:  []models.Working{},
	}

	// Nothing to depreciate.
	if a.OpeningGrossBlock.IsZero() && len(a.Additions) == 0 {
		return res
	}

	res.OpeningGrossBlock = a.OpeningGrossBlock
	res.OpeningAccumulatedDepreciation = a.OpeningAccumulatedDepreciation
	res.SaleValue = a.SaleValue
	allAdditions := totalCost(a.Additions)

	if a.OpeningAccumulatedDepreciation.GreaterThan(a.OpeningGrossBlock) {
		return frozenResult(res, a, allAdditions)
	}

	openingWDV := money.Round(a.OpeningGrossBlock.Sub(a.OpeningAccumulatedDepreciation))
	res.OpeningWDV = openingWDV

	disposed := fiscal.Given(a.DisposalDate)
	counted := make([]int, 0, len(a.Additions))
	for i, add := range a.Additions {
		if disposed && fiscal.Given(add.Date) && add.Date.After(*a.DisposalDate) {
			continue
		}
		counted = append(counted, i)
	}

	life, rate := e.tables.UsefulLife(a.AssetType), e.tables.WDVRate(a.AssetType)
	if _, known := e.tables.AssetClass(a.AssetType); !known {
		res.Workings = append(res.Workings, models.Working{
			Description: "Asset type not classified",
			Calculation: fmt.Sprintf("No useful life or rate configured for %q", a.AssetType),
			Amount:      decimal.Zero,
			Note:        "Select an asset type to compute depreciation",
		})
	}

	days := fiscal.DaysUsed(a.PurchaseDate, a.DisposalDate, w)
	parts := []decimal.Decimal{}

	var opening models.Working
	var ok bool
	if method == models.MethodSLM {
		opening, ok = slmOpening(a, openingWDV, life, days)
	} else {
		opening, ok = wdvOpening(a, openingWDV, rate, days)
	}
	if ok {
		res.Workings = append(res.Workings, opening)
		parts = append(parts, opening.Amount)
	}

	for _, i := range counted {
		add := a.Additions[i]
		if !add.Cost.IsPositive() || !fiscal.Given(add.Date) {
			continue
		}
		addDays := fiscal.DaysUsed(add.Date, a.DisposalDate, w)
		var line models.Working
		if method == models.MethodSLM {
			line, ok = slmAddition(i+1, add, life, addDays)
		} else {
			line, ok = wdvAddition(i+1, add, rate, addDays)
		}
		if ok {
			res.Workings = append(res.Workings, line)
			parts = append(parts, line.Amount)
		}
	}

	dep := money.Sum(parts...)
	res.DepreciationForYear = dep

	if disposed {
		preDisposal := decimal.Zero
		for _, i := range counted {
			preDisposal = money.Round(preDisposal.Add(a.Additions[i].Cost))
		}
		costOfDisposed := money.Round(a.OpeningGrossBlock.Add(preDisposal))
		depToDate := money.Round(a.OpeningAccumulatedDepreciation.Add(dep))
		wdvOnSale := money.Round(costOfDisposed.Sub(depToDate))
		profit := money.Round(a.SaleValue.Sub(wdvOnSale))

		res.Disposed = true
		res.Additions = preDisposal
		res.DisposalsCost = costOfDisposed
		res.DepreciationOnDisposals = depToDate
		res.ProfitOrLoss = profit
		res.ClosingGrossBlock = decimal.Zero
		res.ClosingAccumulatedDepreciation = decimal.Zero
		res.ClosingWDV = decimal.Zero

		note := "Profit on sale"
		if profit.IsNegative() {
			note = "Loss on sale"
		}
		res.Workings = append(res.Workings,
			models.Working{
				Description: "Cost of asset disposed",
				Calculation: fmt.Sprintf("Opening gross block %s + additions before disposal %s", inr(a.OpeningGrossBlock), inr(preDisposal)),
				Amount:      costOfDisposed,
			},
			models.Working{
				Description: "WDV on date of sale (" + a.DisposalDate.String() + ")",
				Calculation: fmt.Sprintf("%s - (opening accumulated depreciation %s + depreciation for year %s)", inr(costOfDisposed), inr(a.OpeningAccumulatedDepreciation), inr(dep)),
				Amount:      wdvOnSale,
			},
			models.Working{
				Description: "Profit/(loss) on sale",
				Calculation: fmt.Sprintf("Sale value %s - WDV on sale %s", inr(a.SaleValue), inr(wdvOnSale)),
				Amount:      profit,
				Note:        note,
			},
		)
		return res
	}

	res.Additions = allAdditions
	res.ClosingGrossBlock = money.Round(a.OpeningGrossBlock.Add(allAdditions))
	res.ClosingAccumulatedDepreciation = money.Round(a.OpeningAccumulatedDepreciation.Add(dep))
	res.ClosingWDV = money.Round(res.ClosingGrossBlock.Sub(res.ClosingAccumulatedDepreciation))
	return res
}

// frozenResult rolls the gross block forward and carries the invalid
// accumulated depreciation unchanged with no depreciation for the year.
func frozenResult(res models.CompaniesActResult, a models.CompaniesActAsset, additions decimal.Decimal) models.CompaniesActResult {
	res.Frozen = true
	res.Additions = additions
	res.ClosingGrossBlock = money.Round(a.OpeningGrossBlock.Add(additions))
	res.ClosingAccumulatedDepreciation = a.OpeningAccumulatedDepreciation
	res.ClosingWDV = money.NonNegative(money.Round(res.ClosingGrossBlock.Sub(a.OpeningAccumulatedDepreciation)))
	res.Workings = append(res.Workings, models.Working{
		Description: "Depreciation not computed",
		Calculation: fmt.Sprintf("Accumulated depreciation %s exceeds gross block %s", inr(a.OpeningAccumulatedDepreciation), inr(a.OpeningGrossBlock)),
		Amount:      decimal.Zero,
		Note:        "Correct the opening balances to compute depreciation",
	})
	return res
}

func slmOpening(a models.CompaniesActAsset, openingWDV decimal.Decimal, life int, days fiscal.Days) (models.Working, bool) {
	base := money.Round(a.OpeningGrossBlock.Sub(a.ResidualValue))
	if life <= 0 || !base.IsPositive() {
		return models.Working{}, false
	}
	annual := money.Round(base.Div(decimal.NewFromInt(int64(life))))
	dep := money.Prorate(annual, days.Used, days.InYear)

	w := models.Working{
		Description: "Depreciation on opening gross block (SLM)",
		Calculation: fmt.Sprintf("(%s - residual %s) / %d years x %s", inr(a.OpeningGrossBlock), inr(a.ResidualValue), life, daysFraction(days.Used, days.InYear)),
	}
	limit := money.NonNegative(money.Round(openingWDV.Sub(a.ResidualValue)))
	if dep.GreaterThan(limit) {
		dep = limit
		w.Note = "Depreciation capped to not fall below residual value"
	}
	w.Amount = dep
	return w, true
}

func wdvOpening(a models.CompaniesActAsset, openingWDV, rate decimal.Decimal, days fiscal.Days) (models.Working, bool) {
	if !rate.IsPositive() || !openingWDV.IsPositive() {
		return models.Working{}, false
	}
	raw := money.Round(openingWDV.Mul(rate))
	dep := money.Prorate(raw, days.Used, days.InYear)

	w := models.Working{
		Description: "Depreciation on opening WDV (WDV)",
		Calculation: fmt.Sprintf("%s x %s x %s", inr(openingWDV), money.Percent(rate), daysFraction(days.Used, days.InYear)),
	}
	if dep.GreaterThan(openingWDV) {
		dep = openingWDV
		w.Note = "Depreciation capped at opening WDV"
	}
	w.Amount = dep
	return w, true
}

func slmAddition(n int, add models.Addition, life int, days fiscal.Days) (models.Working, bool) {
	base := money.Round(add.Cost.Sub(add.ResidualValue))
	if life <= 0 || !base.IsPositive() {
		return models.Working{}, false
	}
	annual := money.Round(base.Div(decimal.NewFromInt(int64(life))))
	dep := money.Prorate(annual, days.Used, days.InYear)

	w := models.Working{
		Description: fmt.Sprintf("Depreciation on addition #%d (%s)", n, add.Date),
		Calculation: fmt.Sprintf("(%s - residual %s) / %d years x %s", inr(add.Cost), inr(add.ResidualValue), life, daysFraction(days.Used, days.InYear)),
	}
	if dep.GreaterThan(base) {
		dep = base
		w.Note = "Depreciation capped at depreciable amount"
	}
	w.Amount = dep
	return w, true
}

func wdvAddition(n int, add models.Addition, rate decimal.Decimal, days fiscal.Days) (models.Working, bool) {
	if !rate.IsPositive() {
		return models.Working{}, false
	}
	raw := money.Round(add.Cost.Mul(rate))
	dep := money.Prorate(raw, days.Used, days.InYear)

	w := models.Working{
		Description: fmt.Sprintf("Depreciation on addition #%d (%s)", n, add.Date),
		Calculation: fmt.Sprintf("%s x %s x %s", inr(add.Cost), money.Percent(rate), daysFraction(days.Used, days.InYear)),
	}
	if dep.GreaterThan(add.Cost) {
		dep = add.Cost
		w.Note = "Depreciation capped at cost"
	}
	w.Amount = dep
	return w, true
}
