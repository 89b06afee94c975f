package depreciation

import (
	"testing"

	"github.com/mcclellann/depreg/pkg/fiscal"
	"github.com/mcclellann/depreg/pkg/models"
	"github.com/mcclellann/depreg/pkg/rates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eligibleChecklist() models.AdditionalChecklist {
	return models.AdditionalChecklist{NewPlantOrMachinery: true, ManufacturingBusiness: true, NotExcludedCategory: true}
}

func TestIncomeTax_OpeningOnly(t *testing.T) {
	block := models.IncomeTaxBlock{
		Name:       "Plant & machinery @15%",
		BlockType:  rates.BlockPlantMachinery,
		OpeningWDV: d("1000000"),
	}

	res := newEngine().ComputeIncomeTax(block, fy2024)

	assertAmount(t, "0.15", res.Rate)
	assertAmount(t, "150000.00", res.DepreciationForYear)
	assertAmount(t, "850000.00", res.ClosingWDV)
	assert.True(t, res.ShortTermCapitalGainLoss.IsZero())
}

func TestIncomeTax_180DayBoundary(t *testing.T) {
	require.Equal(t, 180, fiscal.DaysUsed(date("2024-10-03"), nil, fy2024).Used)
	require.Equal(t, 179, fiscal.DaysUsed(date("2024-10-04"), nil, fy2024).Used)

	tests := []struct {
		date     string
		wantFull string
		wantHalf string
		wantDep  string
	}{
		{"2024-10-03", "100000", "0", "15000.00"},
		{"2024-10-04", "0", "100000", "7500.00"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			block := models.IncomeTaxBlock{
				BlockType: rates.BlockPlantMachinery,
				Additions: []models.Addition{{Date: date(tt.date), Cost: d("100000")}},
			}
			res := newEngine().ComputeIncomeTax(block, fy2024)
			assertAmount(t, tt.wantFull, res.AdditionsFullRate)
			assertAmount(t, tt.wantHalf, res.AdditionsHalfRate)
			assertAmount(t, tt.wantDep, res.DepreciationForYear)
		})
	}
}

func TestIncomeTax_UndatedAdditionIsFullYear(t *testing.T) {
	block := models.IncomeTaxBlock{
		BlockType: rates.BlockComputer,
		Additions: []models.Addition{{Cost: d("10000")}},
	}

	res := newEngine().ComputeIncomeTax(block, fy2024)

	assertAmount(t, "10000", res.AdditionsFullRate)
	assertAmount(t, "4000.00", res.DepreciationForYear)
}

func TestIncomeTax_AdditionalDepreciation(t *testing.T) {
	base := models.IncomeTaxBlock{
		BlockType: rates.BlockPlantMachinery,
		Additions: []models.Addition{
			{Date: date("2024-05-01"), Cost: d("100000")},
			{Date: date("2025-01-01"), Cost: d("50000")},
		},
	}

	t.Run("eligible", func(t *testing.T) {
		block := base
		block.EligibleForAdditional = true
		block.AdditionalChecklist = eligibleChecklist()

		res := newEngine().ComputeIncomeTax(block, fy2024)

		assertAmount(t, "18750.00", res.NormalDepreciation)
		assertAmount(t, "25000.00", res.AdditionalDepreciation)
		assertAmount(t, "43750.00", res.DepreciationForYear)
		assertAmount(t, "106250.00", res.ClosingWDV)

		var found bool
		for _, w := range res.Workings {
			if w.Description == "Additional depreciation" {
				found = true
				assertAmount(t, "25000.00", w.Amount)
			}
		}
		assert.True(t, found, "additional depreciation working missing")
	})

	t.Run("checklist incomplete", func(t *testing.T) {
		block := base
		block.EligibleForAdditional = true
		block.AdditionalChecklist = models.AdditionalChecklist{NewPlantOrMachinery: true, ManufacturingBusiness: true}

		res := newEngine().ComputeIncomeTax(block, fy2024)

		assert.True(t, res.AdditionalDepreciation.IsZero())
		assertAmount(t, "18750.00", res.DepreciationForYear)
	})

	t.Run("excluded block type", func(t *testing.T) {
		block := base
		block.BlockType = rates.BlockMotorCar
		block.EligibleForAdditional = true
		block.AdditionalChecklist = eligibleChecklist()

		res := newEngine().ComputeIncomeTax(block, fy2024)

		assert.True(t, res.AdditionalDepreciation.IsZero())
	})
}

func TestIncomeTax_SaleReducesBlock(t *testing.T) {
	block := models.IncomeTaxBlock{
		BlockType:    rates.BlockPlantMachinery,
		OpeningWDV:   d("1000000"),
		SaleProceeds: d("200000"),
		Additions:    []models.Addition{{Date: date("2024-06-01"), Cost: d("100000")}},
	}

	res := newEngine().ComputeIncomeTax(block, fy2024)

	assertAmount(t, "900000.00", res.WDVBeforeDepreciation)
	assertAmount(t, "135000.00", res.DepreciationForYear)
	assertAmount(t, "765000.00", res.ClosingWDV)
}

func TestIncomeTax_BlockCeased(t *testing.T) {
	tests := []struct {
		sale string
		want string
		note string
	}{
		{"700000", "100000.00", "Short-term capital gain"},
		{"400000", "-200000.00", "Short-term capital loss"},
	}
	for _, tt := range tests {
		t.Run(tt.sale, func(t *testing.T) {
			block := models.IncomeTaxBlock{
				BlockType:             rates.BlockPlantMachinery,
				OpeningWDV:            d("500000"),
				SaleProceeds:          d(tt.sale),
				BlockCeased:           true,
				EligibleForAdditional: true,
				AdditionalChecklist:   eligibleChecklist(),
				Additions:             []models.Addition{{Date: date("2024-05-01"), Cost: d("100000")}},
			}
			res := newEngine().ComputeIncomeTax(block, fy2024)

			assertAmount(t, tt.want, res.ShortTermCapitalGainLoss)
			assert.True(t, res.DepreciationForYear.IsZero())
			assert.True(t, res.ClosingWDV.IsZero())
			assert.Equal(t, tt.note, res.Workings[len(res.Workings)-1].Note)
		})
	}
}

func TestIncomeTax_ProceedsExceedBlock(t *testing.T) {
	block := models.IncomeTaxBlock{
		BlockType:    rates.BlockFurniture,
		OpeningWDV:   d("100000"),
		SaleProceeds: d("150000"),
	}

	res := newEngine().ComputeIncomeTax(block, fy2024)

	assertAmount(t, "-50000.00", res.ShortTermCapitalGainLoss)
	assert.True(t, res.DepreciationForYear.IsZero())
	assert.True(t, res.ClosingWDV.IsZero())
	last := res.Workings[len(res.Workings)-1]
	assertAmount(t, "50000.00", last.Amount)
}

func TestIncomeTax_SaleOnEmptyBlockIgnored(t *testing.T) {
	block := models.IncomeTaxBlock{BlockType: rates.BlockFurniture, SaleProceeds: d("10000")}

	res := newEngine().ComputeIncomeTax(block, fy2024)

	assert.True(t, res.SaleProceeds.IsZero())
	assert.True(t, res.ShortTermCapitalGainLoss.IsZero())
	assert.True(t, res.ClosingWDV.IsZero())
}

func TestIncomeTax_Unclassified(t *testing.T) {
	block := models.IncomeTaxBlock{OpeningWDV: d("50000"), Rate: d("0.15")}

	res := newEngine().ComputeIncomeTax(block, fy2024)

	assert.True(t, res.Unclassified)
	assert.True(t, res.DepreciationForYear.IsZero())
	require.Len(t, res.Workings, 1)
	assert.Equal(t, "Block type not selected", res.Workings[0].Description)
}

func TestIncomeTax_CappedAtWDVBeforeDepreciation(t *testing.T) {
	block := models.IncomeTaxBlock{
		BlockType:             rates.BlockPlantMachinery,
		SaleProceeds:          d("90000"),
		EligibleForAdditional: true,
		AdditionalChecklist:   eligibleChecklist(),
		Additions:             []models.Addition{{Date: date("2024-05-01"), Cost: d("100000")}},
	}

	res := newEngine().ComputeIncomeTax(block, fy2024)

	assertAmount(t, "10000.00", res.DepreciationForYear)
	assert.True(t, res.AdditionalDepreciation.IsZero())
	assert.True(t, res.ClosingWDV.IsZero())
	assert.Equal(t, "Depreciation capped at WDV before depreciation", res.Workings[len(res.Workings)-1].Note)
}

func TestIncomeTax_CustomRateForUnknownType(t *testing.T) {
	block := models.IncomeTaxBlock{BlockType: "solar_plant", Rate: d("0.40"), OpeningWDV: d("100000")}

	res := newEngine().ComputeIncomeTax(block, fy2024)

	assertAmount(t, "40000.00", res.DepreciationForYear)
}

func TestIncomeTax_TableRateWins(t *testing.T) {
	block := models.IncomeTaxBlock{BlockType: rates.BlockFurniture, Rate: d("0.99"), OpeningWDV: d("100000")}

	res := newEngine().ComputeIncomeTax(block, fy2024)

	assertAmount(t, "10000.00", res.DepreciationForYear)
}

func TestIncomeTax_CessationAlwaysZeroes(t *testing.T) {
	e := newEngine()
	for _, blockType := range []string{rates.BlockComputer, rates.BlockPlantMachinery, rates.BlockIntangible} {
		block := models.IncomeTaxBlock{
			BlockType:    blockType,
			OpeningWDV:   d("250000"),
			SaleProceeds: d("1000"),
			BlockCeased:  true,
			Additions:    []models.Addition{{Date: date("2025-03-01"), Cost: d("9000")}},
		}
		res := e.ComputeIncomeTax(block, fy2024)
		assert.True(t, res.DepreciationForYear.IsZero(), blockType)
		assert.True(t, res.ClosingWDV.IsZero(), blockType)
	}
}

func TestClassifyBlock(t *testing.T) {
	e := newEngine()
	block := models.IncomeTaxBlock{EligibleForAdditional: true, AdditionalChecklist: eligibleChecklist()}

	e.ClassifyBlock(&block, rates.BlockPlantMachinery)
	assertAmount(t, "0.15", block.Rate)
	assert.True(t, block.EligibleForAdditional)

	e.ClassifyBlock(&block, rates.BlockComputer)
	assertAmount(t, "0.40", block.Rate)
	assert.True(t, block.EligibleForAdditional)

	e.ClassifyBlock(&block, rates.BlockMotorCar)
	assertAmount(t, "0.15", block.Rate)
	assert.False(t, block.EligibleForAdditional)
	assert.False(t, block.AdditionalChecklist.Satisfied())
}
