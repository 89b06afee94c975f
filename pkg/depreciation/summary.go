package depreciation

import (
	"sort"

	"github.com/mcclellann/depreg/pkg/models"
	"github.com/mcclellann/depreg/pkg/money"
	"github.com/shopspring/decimal"
)

func groupKey(t string) string {
	if t == "" {
		return models.UnclassifiedKey
	}
	return t
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func add(a, b decimal.Decimal) decimal.Decimal {
	return money.Round(a.Add(b))
}

func addCompaniesAct(t models.CompaniesActTotals, r models.CompaniesActTotals) models.CompaniesActTotals {
	return models.CompaniesActTotals{
		Count:                          t.Count + r.Count,
		OpeningGrossBlock:              add(t.OpeningGrossBlock, r.OpeningGrossBlock),
		Additions:                      add(t.Additions, r.Additions),
		DisposalsCost:                  add(t.DisposalsCost, r.DisposalsCost),
		ClosingGrossBlock:              add(t.ClosingGrossBlock, r.ClosingGrossBlock),
		OpeningAccumulatedDepreciation: add(t.OpeningAccumulatedDepreciation, r.OpeningAccumulatedDepreciation),
		DepreciationForYear:            add(t.DepreciationForYear, r.DepreciationForYear),
		DepreciationOnDisposals:        add(t.DepreciationOnDisposals, r.DepreciationOnDisposals),
		ClosingAccumulatedDepreciation: add(t.ClosingAccumulatedDepreciation, r.ClosingAccumulatedDepreciation),
		OpeningWDV:                     add(t.OpeningWDV, r.OpeningWDV),
		ClosingWDV:                     add(t.ClosingWDV, r.ClosingWDV),
		ProfitOrLoss:                   add(t.ProfitOrLoss, r.ProfitOrLoss),
	}
}

func companiesActRow(r models.CompaniesActResult) models.CompaniesActTotals {
	return models.CompaniesActTotals{
		Count:                          1,
		OpeningGrossBlock:              r.OpeningGrossBlock,
		Additions:                      r.Additions,
		DisposalsCost:                  r.DisposalsCost,
		ClosingGrossBlock:              r.ClosingGrossBlock,
		OpeningAccumulatedDepreciation: r.OpeningAccumulatedDepreciation,
		DepreciationForYear:            r.DepreciationForYear,
		DepreciationOnDisposals:        r.DepreciationOnDisposals,
		ClosingAccumulatedDepreciation: r.ClosingAccumulatedDepreciation,
		OpeningWDV:                     r.OpeningWDV,
		ClosingWDV:                     r.ClosingWDV,
		ProfitOrLoss:                   r.ProfitOrLoss,
	}
}

// SummarizeCompaniesAct groups asset results by asset type. Totals is the sum
// across all groups.
func SummarizeCompaniesAct(results []models.CompaniesActResult) models.CompaniesActSummary {
	s := models.CompaniesActSummary{ByType: map[string]models.CompaniesActTotals{}}
	for _, r := range results {
		key := groupKey(r.AssetType)
		s.ByType[key] = addCompaniesAct(s.ByType[key], companiesActRow(r))
	}
	for _, key := range sortedKeys(s.ByType) {
		s.Totals = addCompaniesAct(s.Totals, s.ByType[key])
	}
	return s
}

func addIncomeTax(t models.IncomeTaxTotals, r models.IncomeTaxTotals) models.IncomeTaxTotals {
	return models.IncomeTaxTotals{
		Count:                    t.Count + r.Count,
		OpeningWDV:               add(t.OpeningWDV, r.OpeningWDV),
		AdditionsFullRate:        add(t.AdditionsFullRate, r.AdditionsFullRate),
		AdditionsHalfRate:        add(t.AdditionsHalfRate, r.AdditionsHalfRate),
		TotalAdditions:           add(t.TotalAdditions, r.TotalAdditions),
		SaleProceeds:             add(t.SaleProceeds, r.SaleProceeds),
		NormalDepreciation:       add(t.NormalDepreciation, r.NormalDepreciation),
		AdditionalDepreciation:   add(t.AdditionalDepreciation, r.AdditionalDepreciation),
		DepreciationForYear:      add(t.DepreciationForYear, r.DepreciationForYear),
		ClosingWDV:               add(t.ClosingWDV, r.ClosingWDV),
		ShortTermCapitalGainLoss: add(t.ShortTermCapitalGainLoss, r.ShortTermCapitalGainLoss),
	}
}

func incomeTaxRow(r models.IncomeTaxResult) models.IncomeTaxTotals {
	return models.IncomeTaxTotals{
		Count:                    1,
		OpeningWDV:               r.OpeningWDV,
		AdditionsFullRate:        r.AdditionsFullRate,
		AdditionsHalfRate:        r.AdditionsHalfRate,
		TotalAdditions:           r.TotalAdditions,
		SaleProceeds:             r.SaleProceeds,
		NormalDepreciation:       r.NormalDepreciation,
		AdditionalDepreciation:   r.AdditionalDepreciation,
		DepreciationForYear:      r.DepreciationForYear,
		ClosingWDV:               r.ClosingWDV,
		ShortTermCapitalGainLoss: r.ShortTermCapitalGainLoss,
	}
}

// SummarizeIncomeTax groups block results by block type. Totals is the sum
// across all groups.
func SummarizeIncomeTax(results []models.IncomeTaxResult) models.IncomeTaxSummary {
	s := models.IncomeTaxSummary{ByType: map[string]models.IncomeTaxTotals{}}
	for _, r := range results {
		key := groupKey(r.BlockType)
		s.ByType[key] = addIncomeTax(s.ByType[key], incomeTaxRow(r))
	}
	for _, key := range sortedKeys(s.ByType) {
		s.Totals = addIncomeTax(s.Totals, s.ByType[key])
	}
	return s
}
