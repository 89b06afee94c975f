package models

import (
	"github.com/google/uuid"
	"github.com/mcclellann/depreg/pkg/fiscal"
	"github.com/shopspring/decimal"
)

// Method is the Companies Act depreciation method.
type Method string

const (
	MethodSLM Method = "SLM"
	MethodWDV Method = "WDV"
)

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	return m == MethodSLM || m == MethodWDV
}

// Addition is a capital addition made during the financial year.
type Addition struct {
	Date          *fiscal.Date    `json:"date,omitempty"`
	Cost          decimal.Decimal `json:"cost"`
	ResidualValue decimal.Decimal `json:"residual_value"` // Companies Act SLM only
}

// CompaniesActAsset is an individual fixed asset in the Companies Act register.
type CompaniesActAsset struct {
	ID                             uuid.UUID       `json:"id"`
	Name                           string          `json:"name"`
	AssetType                      string          `json:"asset_type"` // Key into the Schedule II table
	OpeningGrossBlock              decimal.Decimal `json:"opening_gross_block"`
	OpeningAccumulatedDepreciation decimal.Decimal `json:"opening_accumulated_depreciation"`
	ResidualValue                  decimal.Decimal `json:"residual_value"`
	PurchaseDate                   *fiscal.Date    `json:"purchase_date,omitempty"`
	DisposalDate                   *fiscal.Date    `json:"disposal_date,omitempty"`
	SaleValue                      decimal.Decimal `json:"sale_value"`
	Additions                      []Addition      `json:"additions"`
}

// AdditionalChecklist holds the three conditions for additional depreciation.
type AdditionalChecklist struct {
	NewPlantOrMachinery   bool `json:"new_plant_or_machinery"`
	ManufacturingBusiness bool `json:"manufacturing_business"`
	NotExcludedCategory   bool `json:"not_excluded_category"`
}

// Satisfied reports whether every condition holds.
func (c AdditionalChecklist) Satisfied() bool {
	return c.NewPlantOrMachinery && c.ManufacturingBusiness && c.NotExcludedCategory
}

// IncomeTaxBlock is a block of assets under the Income Tax Act.
type IncomeTaxBlock struct {
	ID                    uuid.UUID           `json:"id"`
	Name                  string              `json:"name"`
	BlockType             string              `json:"block_type"`
	Rate                  decimal.Decimal     `json:"rate"` // Copied from the block table when the type is chosen
	OpeningWDV            decimal.Decimal     `json:"opening_wdv"`
	Additions             []Addition          `json:"additions"`
	SaleProceeds          decimal.Decimal     `json:"sale_proceeds"`
	BlockCeased           bool                `json:"block_ceased"`
	EligibleForAdditional bool                `json:"eligible_for_additional"`
	AdditionalChecklist   AdditionalChecklist `json:"additional_checklist"`
}

// Working is one line of the itemised calculation shown for audit.
type Working struct {
	Description string          `json:"description"`
	Calculation string          `json:"calculation"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note,omitempty"`
}

// CompaniesActResult is the computed schedule row for one asset.
type CompaniesActResult struct {
	AssetID                        uuid.UUID       `json:"asset_id"`
	AssetName                      string          `json:"asset_name"`
	AssetType                      string          `json:"asset_type"`
	Method                         Method          `json:"method"`
	OpeningGrossBlock              decimal.Decimal `json:"opening_gross_block"`
	Additions                      decimal.Decimal `json:"additions"`
	DisposalsCost                  decimal.Decimal `json:"disposals_cost"`
	ClosingGrossBlock              decimal.Decimal `json:"closing_gross_block"`
	OpeningAccumulatedDepreciation decimal.Decimal `json:"opening_accumulated_depreciation"`
	DepreciationForYear            decimal.Decimal `json:"depreciation_for_year"`
	DepreciationOnDisposals        decimal.Decimal `json:"depreciation_on_disposals"`
	ClosingAccumulatedDepreciation decimal.Decimal `json:"closing_accumulated_depreciation"`
	OpeningWDV                     decimal.Decimal `json:"opening_wdv"`
	ClosingWDV                     decimal.Decimal `json:"closing_wdv"`
	SaleValue                      decimal.Decimal `json:"sale_value"`
	ProfitOrLoss                   decimal.Decimal `json:"profit_or_loss"` // Positive is profit
	Disposed                       bool            `json:"disposed"`
	Frozen                         bool            `json:"frozen"` // Accumulated depreciation exceeds gross block
	Workings                       []Working       `json:"workings"`
}

// IncomeTaxResult is the computed schedule row for one block.
type IncomeTaxResult struct {
	BlockID                  uuid.UUID       `json:"block_id"`
	BlockName                string          `json:"block_name"`
	BlockType                string          `json:"block_type"`
	Rate                     decimal.Decimal `json:"rate"`
	OpeningWDV               decimal.Decimal `json:"opening_wdv"`
	AdditionsFullRate        decimal.Decimal `json:"additions_full_rate"`
	AdditionsHalfRate        decimal.Decimal `json:"additions_half_rate"`
	TotalAdditions           decimal.Decimal `json:"total_additions"`
	SaleProceeds             decimal.Decimal `json:"sale_proceeds"`
	WDVBeforeDepreciation    decimal.Decimal `json:"wdv_before_depreciation"`
	NormalDepreciation       decimal.Decimal `json:"normal_depreciation"`
	AdditionalDepreciation   decimal.Decimal `json:"additional_depreciation"`
	DepreciationForYear      decimal.Decimal `json:"depreciation_for_year"`
	ClosingWDV               decimal.Decimal `json:"closing_wdv"`
	ShortTermCapitalGainLoss decimal.Decimal `json:"short_term_capital_gain_loss"`
	BlockCeased              bool            `json:"block_ceased"`
	Unclassified             bool            `json:"unclassified"` // No block type chosen yet
	Workings                 []Working       `json:"workings"`
}
