package depreciation

import (
	"fmt"

	"github.com/mcclellann/depreg/pkg/fiscal"
	"github.com/mcclellann/depreg/pkg/models"
	"github.com/mcclellann/depreg/pkg/money"
	"github.com/mcclellann/depreg/pkg/rates"
	"github.com/shopspring/decimal"
)

// HalfRateThreshold is the number of days of use below which an addition
// only earns half the block rate in its first year.
const HalfRateThreshold = 180

var two = decimal.NewFromInt(2)

func normalizeBlock(b models.IncomeTaxBlock) models.IncomeTaxBlock {
	b.OpeningWDV = money.Round(money.NonNegative(b.OpeningWDV))
	b.SaleProceeds = money.Round(money.NonNegative(b.SaleProceeds))
	b.Rate = money.NonNegative(b.Rate)
	b.Additions = normalizeAdditions(b.Additions)
	return b
}

// blockRate prefers the table rate and falls back to the block's own rate
// for types the tables do not know.
func (e *Engine) blockRate(b models.IncomeTaxBlock) decimal.Decimal {
	if rate, ok := e.tables.BlockRate(b.BlockType); ok {
		return rate
	}
	return b.Rate
}

// AdditionalAllowed reports whether the block may claim additional depreciation:
// the claim is made, every checklist condition holds and the block type is
// not excluded.
func (e *Engine) AdditionalAllowed(b models.IncomeTaxBlock) bool {
	return b.EligibleForAdditional &&
		b.AdditionalChecklist.Satisfied() &&
		!e.tables.ExcludedFromAdditional(b.BlockType)
}

// ComputeIncomeTax computes the year's depreciation for one block of assets.
func (e *Engine) ComputeIncomeTax(block models.IncomeTaxBlock, w fiscal.Window) models.IncomeTaxResult {
	b := normalizeBlock(block)
	rate := e.blockRate(b)

	res := models.IncomeTaxResult{
		BlockID:     b.ID,
		BlockName:   b.Name,
		BlockType:   b.BlockType,
		Rate:        rate,
		OpeningWDV:  b.OpeningWDV,
		BlockCeased: b.BlockCeased,
		Workings:    []models.Working{},
	}

	full, half := decimal.Zero, decimal.Zero
	var additionLines []models.Working
	for i, add := range b.Additions {
		if !add.Cost.IsPositive() {
			continue
		}
		days := fiscal.DaysUsed(add.Date, nil, w)
		line := models.Working{
			Description: fmt.Sprintf("Addition #%d", i+1),
			Amount:      add.Cost,
		}
		if days.Used >= HalfRateThreshold {
			full = money.Round(full.Add(add.Cost))
			line.Calculation = fmt.Sprintf("Put to use for %d days (>= %d): full rate", days.Used, HalfRateThreshold)
		} else {
			half = money.Round(half.Add(add.Cost))
			line.Calculation = fmt.Sprintf("Put to use for %d days (< %d): half rate", days.Used, HalfRateThreshold)
		}
		if fiscal.Given(add.Date) {
			line.Description += " (" + add.Date.String() + ")"
		}
		additionLines = append(additionLines, line)
	}
	total := money.Round(full.Add(half))

	sale := b.SaleProceeds
	if b.OpeningWDV.IsZero() && total.IsZero() {
		sale = decimal.Zero
	}
	wdvBefore := money.Round(b.OpeningWDV.Add(total).Sub(sale))

	res.AdditionsFullRate = full
	res.AdditionsHalfRate = half
	res.TotalAdditions = total
	res.SaleProceeds = sale
	res.WDVBeforeDepreciation = wdvBefore

	if b.BlockType == "" {
		res.Unclassified = true
		res.Workings = append(res.Workings, models.Working{
			Description: "Block type not selected",
			Calculation: "Select a block of assets to compute depreciation",
			Amount:      decimal.Zero,
		})
		return res
	}

	res.Workings = append(res.Workings, additionLines...)

	switch {
	case b.BlockCeased:
		invested := money.Round(b.OpeningWDV.Add(total))
		gain := money.Round(sale.Sub(invested))
		res.ShortTermCapitalGainLoss = gain
		res.ClosingWDV = decimal.Zero

		note := "Short-term capital gain"
		if gain.IsNegative() {
			note = "Short-term capital loss"
		}
		res.Workings = append(res.Workings, models.Working{
			Description: "Block ceased to exist",
			Calculation: fmt.Sprintf("Sale proceeds %s - (opening WDV %s + additions %s)", inr(sale), inr(b.OpeningWDV), inr(total)),
			Amount:      gain,
			Note:        note,
		})

	case wdvBefore.IsPositive():
		e.depreciateBlock(&res, b, rate)

	default:
		// Proceeds exceed the block. The field stays signed as the balance;
		// the working shows the gain as a positive amount.
		res.ShortTermCapitalGainLoss = wdvBefore
		res.ClosingWDV = decimal.Zero
		res.Workings = append(res.Workings, models.Working{
			Description: "Short-term capital gain",
			Calculation: fmt.Sprintf("Sale proceeds %s - (opening WDV %s + additions %s)", inr(sale), inr(b.OpeningWDV), inr(total)),
			Amount:      wdvBefore.Neg(),
			Note:        "Sale proceeds exceed the written down value of the block",
		})
	}
	return res
}

func (e *Engine) depreciateBlock(res *models.IncomeTaxResult, b models.IncomeTaxBlock, rate decimal.Decimal) {
	full, half, wdvBefore := res.AdditionsFullRate, res.AdditionsHalfRate, res.WDVBeforeDepreciation

	openingPortion := money.NonNegative(money.Round(wdvBefore.Sub(full).Sub(half)))
	onOpening := money.Round(openingPortion.Mul(rate))
	onFull := money.Round(full.Mul(rate))
	onHalf := money.Round(half.Mul(rate).Div(two))
	normal := money.Sum(onOpening, onFull, onHalf)

	res.Workings = append(res.Workings, models.Working{
		Description: "WDV before depreciation",
		Calculation: fmt.Sprintf("Opening WDV %s + additions %s - sale proceeds %s", inr(b.OpeningWDV), inr(res.TotalAdditions), inr(res.SaleProceeds)),
		Amount:      wdvBefore,
	})
	res.Workings = append(res.Workings, models.Working{
		Description: "Depreciation on opening balance",
		Calculation: fmt.Sprintf("%s x %s", inr(openingPortion), money.Percent(rate)),
		Amount:      onOpening,
	})
	if full.IsPositive() {
		res.Workings = append(res.Workings, models.Working{
			Description: "Depreciation on additions used 180 days or more",
			Calculation: fmt.Sprintf("%s x %s", inr(full), money.Percent(rate)),
			Amount:      onFull,
		})
	}
	if half.IsPositive() {
		res.Workings = append(res.Workings, models.Working{
			Description: "Depreciation on additions used less than 180 days",
			Calculation: fmt.Sprintf("%s x %s / 2", inr(half), money.Percent(rate)),
			Amount:      onHalf,
		})
	}

	additional := decimal.Zero
	if e.AdditionalAllowed(b) {
		additional = money.Sum(
			money.Round(full.Mul(rates.AdditionalFullRate)),
			money.Round(half.Mul(rates.AdditionalHalfRate)),
		)
		res.Workings = append(res.Workings, models.Working{
			Description: "Additional depreciation",
			Calculation: fmt.Sprintf("%s x %s + %s x %s", inr(full), money.Percent(rates.AdditionalFullRate), inr(half), money.Percent(rates.AdditionalHalfRate)),
			Amount:      additional,
		})
	}

	// Depreciation can never take the block below zero.
	capped := false
	if normal.GreaterThan(wdvBefore) {
		normal, capped = wdvBefore, true
	}
	if room := money.Round(wdvBefore.Sub(normal)); additional.GreaterThan(room) {
		additional, capped = room, true
	}
	if capped {
		res.Workings = append(res.Workings, models.Working{
			Description: "Depreciation restricted",
			Calculation: fmt.Sprintf("Normal %s + additional %s limited to WDV before depreciation %s", inr(normal), inr(additional), inr(wdvBefore)),
			Amount:      money.Sum(normal, additional),
			Note:        "Depreciation capped at WDV before depreciation",
		})
	}

	res.NormalDepreciation = normal
	res.AdditionalDepreciation = additional
	res.DepreciationForYear = money.Sum(normal, additional)
	res.ClosingWDV = money.Round(wdvBefore.Sub(res.DepreciationForYear))
}
