// Package depreciation computes Companies Act and Income Tax Act depreciation
// schedules, their summaries and the deferred tax reconciliation between them.
//
// Every calculation is a pure function of its inputs and the engine's rate
// tables. Nothing here performs I/O or returns an error: malformed input is
// normalised (negative amounts clamp to zero, missing dates fall back to the
// financial-year boundary) and the result carries advisory workings instead.
package depreciation

import (
	"fmt"

	"github.com/mcclellann/depreg/pkg/models"
	"github.com/mcclellann/depreg/pkg/money"
	"github.com/mcclellann/depreg/pkg/rates"
	"github.com/shopspring/decimal"
)

// Engine computes depreciation against a fixed set of rate tables.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	tables rates.Tables
}

// NewEngine creates an Engine over the given tables.
func NewEngine(tables rates.Tables) *Engine {
	return &Engine{tables: tables}
}

// Tables returns the rate tables the engine was built with.
func (e *Engine) Tables() rates.Tables {
	return e.tables
}

// ClassifyBlock sets the block type, copies its table rate and clears the
// additional depreciation claim when the new type can never qualify.
func (e *Engine) ClassifyBlock(block *models.IncomeTaxBlock, blockType string) {
	block.BlockType = blockType
	if rate, ok := e.tables.BlockRate(blockType); ok {
		block.Rate = rate
	}
	if e.tables.ExcludedFromAdditional(blockType) {
		block.EligibleForAdditional = false
		block.AdditionalChecklist = models.AdditionalChecklist{}
	}
}

func normalizeAdditions(in []models.Addition) []models.Addition {
	out := make([]models.Addition, len(in))
	for i, a := range in {
		out[i] = models.Addition{
			Date:          a.Date,
			Cost:          money.NonNegative(a.Cost),
			ResidualValue: money.NonNegative(a.ResidualValue),
		}
	}
	return out
}

func totalCost(additions []models.Addition) decimal.Decimal {
	total := decimal.Zero
	for _, a := range additions {
		total = money.Round(total.Add(a.Cost))
	}
	return total
}

func inr(d decimal.Decimal) string {
	return money.FormatINR(d)
}

func daysFraction(used, inYear int) string {
	return fmt.Sprintf("%d/%d days", used, inYear)
}
