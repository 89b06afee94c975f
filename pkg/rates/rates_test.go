package rates

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Lookups(t *testing.T) {
	tables := Default()

	assert.Equal(t, 15, tables.UsefulLife(PlantMachinery))
	assert.Equal(t, "0.181", tables.WDVRate(PlantMachinery).String())

	rate, ok := tables.BlockRate(BlockPlantMachinery)
	require.True(t, ok)
	assert.Equal(t, "0.15", rate.String())

	assert.False(t, tables.ExcludedFromAdditional(BlockPlantMachinery))
	for _, key := range []string{BlockMotorCar, BlockShip, BlockAircraft, BlockIntangible, BlockBuildingOther, BlockBuildingResidential} {
		assert.True(t, tables.ExcludedFromAdditional(key), key)
	}
}

func TestDefault_UnknownTypes(t *testing.T) {
	tables := Default()

	assert.Equal(t, 0, tables.UsefulLife("spaceship"))
	assert.True(t, tables.WDVRate("spaceship").IsZero())
	_, ok := tables.BlockRate("spaceship")
	assert.False(t, ok)
	assert.False(t, tables.ExcludedFromAdditional(""))
}

func TestClassesAreSorted(t *testing.T) {
	classes := Default().AssetClasses()
	require.Len(t, classes, 10)
	for i := 1; i < len(classes); i++ {
		assert.Less(t, classes[i-1].Key, classes[i].Key)
	}
	assert.Len(t, Default().BlockClasses(), 9)
}

func TestWithOverrides_DoesNotMutate(t *testing.T) {
	base := Default()
	custom := base.WithOverrides(
		[]AssetClass{{Key: PlantMachinery, UsefulLife: 20, WDVRate: decimal.RequireFromString("0.1391")}},
		[]BlockClass{{Key: "wind_turbine", Rate: decimal.RequireFromString("0.40")}},
	)

	assert.Equal(t, 20, custom.UsefulLife(PlantMachinery))
	assert.Equal(t, 15, base.UsefulLife(PlantMachinery))

	_, ok := custom.BlockRate("wind_turbine")
	assert.True(t, ok)
	_, ok = base.BlockRate("wind_turbine")
	assert.False(t, ok)
}
