package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mcclellann/depreg/pkg/fiscal"
	"github.com/mcclellann/depreg/pkg/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"
)

// Settings keys.
const (
	settingMethod           = "method"
	settingFinancialYear    = "financial_year"
	settingTaxRate          = "tax_rate"
	settingAccountingProfit = "accounting_profit"
)

// SQLiteStore manages the database connection and operations for SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database and initializes the schema.
func NewSQLiteStore(dataSourceName string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	// Manually enable foreign keys and WAL mode
	if _, err = db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err = db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	logger.Info().Str("path", dataSourceName).Msg("Database connection established and schema initialized")
	return s, nil
}

// initSchema creates the tables if they don't already exist and adds columns
// introduced after the first release.
// Decimal fields are TEXT so no precision is lost.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		asset_type TEXT NOT NULL,
		opening_gross_block TEXT NOT NULL,
		opening_accumulated_depreciation TEXT NOT NULL,
		residual_value TEXT NOT NULL DEFAULT '0',
		purchase_date TEXT,
		disposal_date TEXT,
		sale_value TEXT NOT NULL DEFAULT '0'
	);
	CREATE TABLE IF NOT EXISTS asset_additions (
		asset_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		date TEXT,
		cost TEXT NOT NULL,
		residual_value TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (asset_id, position),
		FOREIGN KEY(asset_id) REFERENCES assets(id)
	);
	CREATE TABLE IF NOT EXISTS blocks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		block_type TEXT NOT NULL,
		rate TEXT NOT NULL,
		opening_wdv TEXT NOT NULL,
		sale_proceeds TEXT NOT NULL DEFAULT '0',
		block_ceased INTEGER NOT NULL DEFAULT 0,
		eligible_for_additional INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS block_additions (
		block_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		date TEXT,
		cost TEXT NOT NULL,
		PRIMARY KEY (block_id, position),
		FOREIGN KEY(block_id) REFERENCES blocks(id)
	);
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// The additional depreciation checklist was added after the blocks table.
	columns := []string{
		"new_plant_or_machinery INTEGER NOT NULL DEFAULT 0",
		"manufacturing_business INTEGER NOT NULL DEFAULT 0",
		"not_excluded_category INTEGER NOT NULL DEFAULT 0",
	}
	for _, col := range columns {
		_, err := s.db.Exec(fmt.Sprintf("ALTER TABLE blocks ADD COLUMN %s", col))
		if err != nil && !isDuplicateColumnError(err) {
			return fmt.Errorf("failed to add column %s: %w", col, err)
		}
	}
	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "duplicate column name")
}

func datePtr(d fiscal.Date) *fiscal.Date {
	if d.IsZero() {
		return nil
	}
	return &d
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertAsset(ex execer, a *models.CompaniesActAsset) error {
	_, err := ex.Exec(
		`INSERT INTO assets (id, name, asset_type, opening_gross_block, opening_accumulated_depreciation, residual_value, purchase_date, disposal_date, sale_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.Name, a.AssetType, a.OpeningGrossBlock, a.OpeningAccumulatedDepreciation, a.ResidualValue, a.PurchaseDate, a.DisposalDate, a.SaleValue,
	)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return writeAssetAdditions(ex, a)
}

func writeAssetAdditions(ex execer, a *models.CompaniesActAsset) error {
	if _, err := ex.Exec(`DELETE FROM asset_additions WHERE asset_id = ?`, a.ID.String()); err != nil {
		return fmt.Errorf("failed to clear asset additions: %w", err)
	}
	for i, add := range a.Additions {
		_, err := ex.Exec(
			`INSERT INTO asset_additions (asset_id, position, date, cost, residual_value) VALUES (?, ?, ?, ?, ?)`,
			a.ID.String(), i, add.Date, add.Cost, add.ResidualValue,
		)
		if err != nil {
			return fmt.Errorf("failed to store asset addition %d: %w", i+1, err)
		}
	}
	return nil
}

// CreateAsset inserts a new asset and its additions.
func (s *SQLiteStore) CreateAsset(asset *models.CompaniesActAsset) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertAsset(tx, asset); err != nil {
		return err
	}
	return tx.Commit()
}

const assetColumns = `id, name, asset_type, opening_gross_block, opening_accumulated_depreciation, residual_value, purchase_date, disposal_date, sale_value`

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (*models.CompaniesActAsset, error) {
	var a models.CompaniesActAsset
	var idStr string
	var purchase, disposal fiscal.Date
	if err := row.Scan(&idStr, &a.Name, &a.AssetType, &a.OpeningGrossBlock, &a.OpeningAccumulatedDepreciation, &a.ResidualValue, &purchase, &disposal, &a.SaleValue); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid asset id %q: %w", idStr, err)
	}
	a.ID = id
	a.PurchaseDate = datePtr(purchase)
	a.DisposalDate = datePtr(disposal)
	return &a, nil
}

func (s *SQLiteStore) loadAssetAdditions(a *models.CompaniesActAsset) error {
	rows, err := s.db.Query(`SELECT date, cost, residual_value FROM asset_additions WHERE asset_id = ? ORDER BY position ASC`, a.ID.String())
	if err != nil {
		return fmt.Errorf("failed to get additions for asset %s: %w", a.ID, err)
	}
	defer rows.Close()

	a.Additions = []models.Addition{}
	for rows.Next() {
		var add models.Addition
		var d fiscal.Date
		if err := rows.Scan(&d, &add.Cost, &add.ResidualValue); err != nil {
			return fmt.Errorf("failed to scan asset addition: %w", err)
		}
		add.Date = datePtr(d)
		a.Additions = append(a.Additions, add)
	}
	return rows.Err()
}

// GetAsset retrieves an asset by its ID.
func (s *SQLiteStore) GetAsset(id uuid.UUID) (*models.CompaniesActAsset, error) {
	row := s.db.QueryRow(`SELECT `+assetColumns+` FROM assets WHERE id = ?`, id.String())
	a, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	if err := s.loadAssetAdditions(a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAsset replaces an asset and its additions.
func (s *SQLiteStore) UpdateAsset(asset *models.CompaniesActAsset) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE assets SET name = ?, asset_type = ?, opening_gross_block = ?, opening_accumulated_depreciation = ?, residual_value = ?, purchase_date = ?, disposal_date = ?, sale_value = ? WHERE id = ?`,
		asset.Name, asset.AssetType, asset.OpeningGrossBlock, asset.OpeningAccumulatedDepreciation, asset.ResidualValue, asset.PurchaseDate, asset.DisposalDate, asset.SaleValue, asset.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	if err := requireRow(result, ErrAssetNotFound); err != nil {
		return err
	}
	if err := writeAssetAdditions(tx, asset); err != nil {
		return err
	}
	return tx.Commit()
}

func requireRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

// DeleteAsset removes an asset and its additions within a transaction.
func (s *SQLiteStore) DeleteAsset(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.Exec(`DELETE FROM asset_additions WHERE asset_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete associated additions: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM assets WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if err := requireRow(result, ErrAssetNotFound); err != nil {
		return err
	}
	return tx.Commit()
}

// GetAllAssets retrieves all assets ordered by name.
func (s *SQLiteStore) GetAllAssets() ([]*models.CompaniesActAsset, error) {
	rows, err := s.db.Query(`SELECT ` + assetColumns + ` FROM assets ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all assets: %w", err)
	}

	var assets []*models.CompaniesActAsset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	rows.Close()

	for _, a := range assets {
		if err := s.loadAssetAdditions(a); err != nil {
			return nil, err
		}
	}
	return assets, nil
}

func insertBlock(ex execer, b *models.IncomeTaxBlock) error {
	c := b.AdditionalChecklist
	_, err := ex.Exec(
		`INSERT INTO blocks (id, name, block_type, rate, opening_wdv, sale_proceeds, block_ceased, eligible_for_additional, new_plant_or_machinery, manufacturing_business, not_excluded_category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID.String(), b.Name, b.BlockType, b.Rate, b.OpeningWDV, b.SaleProceeds, b.BlockCeased, b.EligibleForAdditional, c.NewPlantOrMachinery, c.ManufacturingBusiness, c.NotExcludedCategory,
	)
	if err != nil {
		return fmt.Errorf("failed to create block: %w", err)
	}
	return writeBlockAdditions(ex, b)
}

func writeBlockAdditions(ex execer, b *models.IncomeTaxBlock) error {
	if _, err := ex.Exec(`DELETE FROM block_additions WHERE block_id = ?`, b.ID.String()); err != nil {
		return fmt.Errorf("failed to clear block additions: %w", err)
	}
	for i, add := range b.Additions {
		_, err := ex.Exec(
			`INSERT INTO block_additions (block_id, position, date, cost) VALUES (?, ?, ?, ?)`,
			b.ID.String(), i, add.Date, add.Cost,
		)
		if err != nil {
			return fmt.Errorf("failed to store block addition %d: %w", i+1, err)
		}
	}
	return nil
}

// CreateBlock inserts a new block and its additions.
func (s *SQLiteStore) CreateBlock(block *models.IncomeTaxBlock) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertBlock(tx, block); err != nil {
		return err
	}
	return tx.Commit()
}

const blockColumns = `id, name, block_type, rate, opening_wdv, sale_proceeds, block_ceased, eligible_for_additional, new_plant_or_machinery, manufacturing_business, not_excluded_category`

func scanBlock(row scanner) (*models.IncomeTaxBlock, error) {
	var b models.IncomeTaxBlock
	var idStr string
	c := &b.AdditionalChecklist
	if err := row.Scan(&idStr, &b.Name, &b.BlockType, &b.Rate, &b.OpeningWDV, &b.SaleProceeds, &b.BlockCeased, &b.EligibleForAdditional, &c.NewPlantOrMachinery, &c.ManufacturingBusiness, &c.NotExcludedCategory); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid block id %q: %w", idStr, err)
	}
	b.ID = id
	return &b, nil
}

func (s *SQLiteStore) loadBlockAdditions(b *models.IncomeTaxBlock) error {
	rows, err := s.db.Query(`SELECT date, cost FROM block_additions WHERE block_id = ? ORDER BY position ASC`, b.ID.String())
	if err != nil {
		return fmt.Errorf("failed to get additions for block %s: %w", b.ID, err)
	}
	defer rows.Close()

	b.Additions = []models.Addition{}
	for rows.Next() {
		var add models.Addition
		var d fiscal.Date
		if err := rows.Scan(&d, &add.Cost); err != nil {
			return fmt.Errorf("failed to scan block addition: %w", err)
		}
		add.Date = datePtr(d)
		b.Additions = append(b.Additions, add)
	}
	return rows.Err()
}

// GetBlock retrieves a block by its ID.
func (s *SQLiteStore) GetBlock(id uuid.UUID) (*models.IncomeTaxBlock, error) {
	row := s.db.QueryRow(`SELECT `+blockColumns+` FROM blocks WHERE id = ?`, id.String())
	b, err := scanBlock(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBlockNotFound
		}
		return nil, fmt.Errorf("failed to get block: %w", err)
	}
	if err := s.loadBlockAdditions(b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBlock replaces a block and its additions.
func (s *SQLiteStore) UpdateBlock(block *models.IncomeTaxBlock) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	c := block.AdditionalChecklist
	result, err := tx.Exec(
		`UPDATE blocks SET name = ?, block_type = ?, rate = ?, opening_wdv = ?, sale_proceeds = ?, block_ceased = ?, eligible_for_additional = ?, new_plant_or_machinery = ?, manufacturing_business = ?, not_excluded_category = ? WHERE id = ?`,
		block.Name, block.BlockType, block.Rate, block.OpeningWDV, block.SaleProceeds, block.BlockCeased, block.EligibleForAdditional, c.NewPlantOrMachinery, c.ManufacturingBusiness, c.NotExcludedCategory, block.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update block: %w", err)
	}
	if err := requireRow(result, ErrBlockNotFound); err != nil {
		return err
	}
	if err := writeBlockAdditions(tx, block); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteBlock removes a block and its additions within a transaction.
func (s *SQLiteStore) DeleteBlock(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.Exec(`DELETE FROM block_additions WHERE block_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete associated additions: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM blocks WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	if err := requireRow(result, ErrBlockNotFound); err != nil {
		return err
	}
	return tx.Commit()
}

// GetAllBlocks retrieves all blocks ordered by name.
func (s *SQLiteStore) GetAllBlocks() ([]*models.IncomeTaxBlock, error) {
	rows, err := s.db.Query(`SELECT ` + blockColumns + ` FROM blocks ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all blocks: %w", err)
	}

	var blocks []*models.IncomeTaxBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan block row: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	rows.Close()

	for _, b := range blocks {
		if err := s.loadBlockAdditions(b); err != nil {
			return nil, err
		}
	}
	return blocks, nil
}

// GetSettings returns the saved settings, or ErrSettingsNotFound when none
// have been saved. Keys missing from an older database are left zero.
func (s *SQLiteStore) GetSettings() (*models.Settings, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	defer rows.Close()

	settings := &models.Settings{}
	found := false
	for rows.Next() {
		found = true
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		if err := applySetting(settings, key, value); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Ignoring unreadable setting")
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for settings: %w", err)
	}
	if !found {
		return nil, ErrSettingsNotFound
	}
	return settings, nil
}

func applySetting(settings *models.Settings, key, value string) error {
	switch key {
	case settingMethod:
		settings.Method = models.Method(value)
	case settingFinancialYear:
		var year int
		if _, err := fmt.Sscanf(value, "%d", &year); err != nil {
			return fmt.Errorf("invalid financial year %q: %w", value, err)
		}
		settings.FinancialYear = year
	case settingTaxRate:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return err
		}
		settings.TaxRate = d
	case settingAccountingProfit:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return err
		}
		settings.AccountingProfit = d
	}
	return nil
}

func writeSettings(ex execer, settings *models.Settings) error {
	values := map[string]string{
		settingMethod:           string(settings.Method),
		settingFinancialYear:    fmt.Sprintf("%d", settings.FinancialYear),
		settingTaxRate:          settings.TaxRate.String(),
		settingAccountingProfit: settings.AccountingProfit.String(),
	}
	for key, value := range values {
		_, err := ex.Exec(`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
		if err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return nil
}

// SaveSettings upserts every setting.
func (s *SQLiteStore) SaveSettings(settings *models.Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeSettings(tx, settings); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceAll clears the register and writes the snapshot in one transaction.
func (s *SQLiteStore) ReplaceAll(snapshot *models.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"asset_additions", "assets", "block_additions", "blocks", "settings"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	for i := range snapshot.Assets {
		if err := insertAsset(tx, &snapshot.Assets[i]); err != nil {
			return err
		}
	}
	for i := range snapshot.Blocks {
		if err := insertBlock(tx, &snapshot.Blocks[i]); err != nil {
			return err
		}
	}
	if err := writeSettings(tx, &snapshot.Settings); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
