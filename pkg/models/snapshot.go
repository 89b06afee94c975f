package models

import "github.com/shopspring/decimal"

// Settings are the register-wide selections persisted alongside the records.
type Settings struct {
	Method           Method          `json:"method"`
	FinancialYear    int             `json:"financial_year"` // Start year, e.g. 2024 for FY2024-25
	TaxRate          decimal.Decimal `json:"tax_rate"`
	AccountingProfit decimal.Decimal `json:"accounting_profit"`
}

// Snapshot is the complete persisted register, restorable verbatim.
type Snapshot struct {
	Settings Settings            `json:"settings"`
	Assets   []CompaniesActAsset `json:"assets"`
	Blocks   []IncomeTaxBlock    `json:"blocks"`
}
