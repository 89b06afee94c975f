package rates

import "github.com/shopspring/decimal"

// Companies Act asset type keys.
const (
	BuildingFactory        = "building_factory"
	BuildingOther          = "building_other"
	PlantMachinery         = "plant_machinery"
	FurnitureFittings      = "furniture_fittings"
	MotorCar               = "motor_car"
	MotorCycle             = "motor_cycle"
	OfficeEquipment        = "office_equipment"
	Computer               = "computer"
	ServerNetwork          = "server_network"
	ElectricalInstallation = "electrical_installation"
)

// Income Tax block type keys.
const (
	BlockBuildingResidential = "building_residential"
	BlockBuildingOther       = "building_other"
	BlockFurniture           = "furniture"
	BlockPlantMachinery      = "plant_machinery"
	BlockMotorCar            = "motor_car"
	BlockComputer            = "computer"
	BlockShip                = "ship"
	BlockAircraft            = "aircraft"
	BlockIntangible          = "intangible"
)

// Additional depreciation rates for additions used at least / less than 180 days.
var (
	AdditionalFullRate = decimal.RequireFromString("0.20")
	AdditionalHalfRate = decimal.RequireFromString("0.10")
)

func r(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Default returns Schedule II useful lives (WDV rates derived for a 5% residual
// value) and the Appendix I block rates.
func Default() Tables {
	return New(
		[]AssetClass{
			{Key: BuildingFactory, Label: "Factory Buildings", UsefulLife: 30, WDVRate: r("0.0950")},
			{Key: BuildingOther, Label: "Buildings (other than factory)", UsefulLife: 60, WDVRate: r("0.0487")},
			{Key: PlantMachinery, Label: "Plant and Machinery (general)", UsefulLife: 15, WDVRate: r("0.1810")},
			{Key: FurnitureFittings, Label: "Furniture and Fittings", UsefulLife: 10, WDVRate: r("0.2589")},
			{Key: MotorCar, Label: "Motor Cars", UsefulLife: 8, WDVRate: r("0.3123")},
			{Key: MotorCycle, Label: "Motor Cycles and Scooters", UsefulLife: 10, WDVRate: r("0.2589")},
			{Key: OfficeEquipment, Label: "Office Equipment", UsefulLife: 5, WDVRate: r("0.4507")},
			{Key: Computer, Label: "Computers (end user devices)", UsefulLife: 3, WDVRate: r("0.6316")},
			{Key: ServerNetwork, Label: "Servers and Networks", UsefulLife: 6, WDVRate: r("0.3930")},
			{Key: ElectricalInstallation, Label: "Electrical Installations", UsefulLife: 10, WDVRate: r("0.2589")},
		},
		[]BlockClass{
			{Key: BlockBuildingResidential, Label: "Buildings (residential)", Rate: r("0.05"), ExcludedFromAdditional: true},
			{Key: BlockBuildingOther, Label: "Buildings (other)", Rate: r("0.10"), ExcludedFromAdditional: true},
			{Key: BlockFurniture, Label: "Furniture and Fittings", Rate: r("0.10")},
			{Key: BlockPlantMachinery, Label: "Plant and Machinery (general)", Rate: r("0.15")},
			{Key: BlockMotorCar, Label: "Motor Cars", Rate: r("0.15"), ExcludedFromAdditional: true},
			{Key: BlockComputer, Label: "Computers and Software", Rate: r("0.40")},
			{Key: BlockShip, Label: "Ships", Rate: r("0.20"), ExcludedFromAdditional: true},
			{Key: BlockAircraft, Label: "Aircraft", Rate: r("0.40"), ExcludedFromAdditional: true},
			{Key: BlockIntangible, Label: "Intangible Assets", Rate: r("0.25"), ExcludedFromAdditional: true},
		},
	)
}
