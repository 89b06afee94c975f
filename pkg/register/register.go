// Package register is the service layer over the asset register: it keeps
// assets and blocks in a store.Storage and runs them through the
// depreciation engine to produce schedules.
package register

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mcclellann/depreg/pkg/depreciation"
	"github.com/mcclellann/depreg/pkg/fiscal"
	"github.com/mcclellann/depreg/pkg/models"
	"github.com/mcclellann/depreg/pkg/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrInvalid marks input rejected before it reaches storage.
var ErrInvalid = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Register handles the business logic for assets, blocks and schedules.
type Register struct {
	storage  store.Storage
	engine   *depreciation.Engine
	logger   zerolog.Logger
	defaults models.Settings
}

// NewRegister creates a Register over the given storage and engine.
func NewRegister(s store.Storage, engine *depreciation.Engine, logger zerolog.Logger) *Register {
	return &Register{
		storage: s,
		engine:  engine,
		logger:  logger,
		defaults: models.Settings{
			Method:        models.MethodSLM,
			FinancialYear: 2024,
			TaxRate:       decimal.RequireFromString("0.25"),
		},
	}
}

// WithDefaults sets the settings used for anything never saved.
func (r *Register) WithDefaults(d models.Settings) *Register {
	r.defaults = d
	return r
}

// Engine exposes the engine so callers can reach its rate tables.
func (r *Register) Engine() *depreciation.Engine {
	return r.engine
}

func checkAmount(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid("%s must not be negative", field)
	}
	return nil
}

func checkAdditions(additions []models.Addition) error {
	for i, add := range additions {
		if err := checkAmount(fmt.Sprintf("addition #%d cost", i+1), add.Cost); err != nil {
			return err
		}
		if err := checkAmount(fmt.Sprintf("addition #%d residual value", i+1), add.ResidualValue); err != nil {
			return err
		}
	}
	return nil
}

func validateAsset(a *models.CompaniesActAsset) error {
	if strings.TrimSpace(a.Name) == "" {
		return invalid("asset name is required")
	}
	amounts := map[string]decimal.Decimal{
		"opening gross block":              a.OpeningGrossBlock,
		"opening accumulated depreciation": a.OpeningAccumulatedDepreciation,
		"residual value":                   a.ResidualValue,
		"sale value":                       a.SaleValue,
	}
	for field, d := range amounts {
		if err := checkAmount(field, d); err != nil {
			return err
		}
	}
	return checkAdditions(a.Additions)
}

func validateBlock(b *models.IncomeTaxBlock) error {
	if strings.TrimSpace(b.Name) == "" {
		return invalid("block name is required")
	}
	for field, d := range map[string]decimal.Decimal{"rate": b.Rate, "opening WDV": b.OpeningWDV, "sale proceeds": b.SaleProceeds} {
		if err := checkAmount(field, d); err != nil {
			return err
		}
	}
	if b.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return invalid("rate must be a fraction, got %s", b.Rate)
	}
	return checkAdditions(b.Additions)
}

// CreateAsset assigns an ID and stores a new asset.
func (r *Register) CreateAsset(asset *models.CompaniesActAsset) (*models.CompaniesActAsset, error) {
	if err := validateAsset(asset); err != nil {
		return nil, err
	}
	asset.ID = uuid.New()
	if asset.Additions == nil {
		asset.Additions = []models.Addition{}
	}
	if err := r.storage.CreateAsset(asset); err != nil {
		return nil, fmt.Errorf("failed to store asset: %w", err)
	}
	r.logger.Info().Str("asset_id", asset.ID.String()).Str("asset_type", asset.AssetType).Msg("Asset created")
	return asset, nil
}

// GetAsset retrieves an asset by its ID.
func (r *Register) GetAsset(id uuid.UUID) (*models.CompaniesActAsset, error) {
	return r.storage.GetAsset(id)
}

// ListAssets retrieves all assets ordered by name.
func (r *Register) ListAssets() ([]*models.CompaniesActAsset, error) {
	return r.storage.GetAllAssets()
}

// UpdateAsset replaces an existing asset.
func (r *Register) UpdateAsset(asset *models.CompaniesActAsset) error {
	if err := validateAsset(asset); err != nil {
		return err
	}
	if err := r.storage.UpdateAsset(asset); err != nil {
		return err
	}
	r.logger.Info().Str("asset_id", asset.ID.String()).Msg("Asset updated")
	return nil
}

// DeleteAsset deletes an asset.
func (r *Register) DeleteAsset(id uuid.UUID) error {
	if err := r.storage.DeleteAsset(id); err != nil {
		return err
	}
	r.logger.Info().Str("asset_id", id.String()).Msg("Asset deleted")
	return nil
}

// CreateBlock assigns an ID, applies the block table for its type and stores it.
func (r *Register) CreateBlock(block *models.IncomeTaxBlock) (*models.IncomeTaxBlock, error) {
	if err := validateBlock(block); err != nil {
		return nil, err
	}
	block.ID = uuid.New()
	if block.Additions == nil {
		block.Additions = []models.Addition{}
	}
	r.engine.ClassifyBlock(block, block.BlockType)
	if err := r.storage.CreateBlock(block); err != nil {
		return nil, fmt.Errorf("failed to store block: %w", err)
	}
	r.logger.Info().Str("block_id", block.ID.String()).Str("block_type", block.BlockType).Msg("Block created")
	return block, nil
}

// GetBlock retrieves a block by its ID.
func (r *Register) GetBlock(id uuid.UUID) (*models.IncomeTaxBlock, error) {
	return r.storage.GetBlock(id)
}

// ListBlocks retrieves all blocks ordered by name.
func (r *Register) ListBlocks() ([]*models.IncomeTaxBlock, error) {
	return r.storage.GetAllBlocks()
}

// UpdateBlock replaces an existing block, re-applying the block table.
func (r *Register) UpdateBlock(block *models.IncomeTaxBlock) error {
	if err := validateBlock(block); err != nil {
		return err
	}
	r.engine.ClassifyBlock(block, block.BlockType)
	if err := r.storage.UpdateBlock(block); err != nil {
		return err
	}
	r.logger.Info().Str("block_id", block.ID.String()).Msg("Block updated")
	return nil
}

// DeleteBlock deletes a block.
func (r *Register) DeleteBlock(id uuid.UUID) error {
	if err := r.storage.DeleteBlock(id); err != nil {
		return err
	}
	r.logger.Info().Str("block_id", id.String()).Msg("Block deleted")
	return nil
}

// Settings returns the saved settings, or the defaults when nothing has been
// saved. Saved amounts are returned as stored, zero included.
func (r *Register) Settings() (models.Settings, error) {
	saved, err := r.storage.GetSettings()
	if errors.Is(err, store.ErrSettingsNotFound) {
		return r.defaults, nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	s := *saved
	if !s.Method.Valid() {
		s.Method = r.defaults.Method
	}
	if s.FinancialYear == 0 {
		s.FinancialYear = r.defaults.FinancialYear
	}
	return s, nil
}

func validateSettings(s models.Settings) error {
	if !s.Method.Valid() {
		return invalid("method must be %s or %s, got %q", models.MethodSLM, models.MethodWDV, s.Method)
	}
	if s.FinancialYear < 1900 {
		return invalid("financial year %d out of range", s.FinancialYear)
	}
	if s.TaxRate.IsNegative() || s.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return invalid("tax rate must be between 0 and 1, got %s", s.TaxRate)
	}
	return nil
}

// UpdateSettings validates and saves the settings.
func (r *Register) UpdateSettings(s models.Settings) error {
	if err := validateSettings(s); err != nil {
		return err
	}
	if err := r.storage.SaveSettings(&s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	r.logger.Info().Str("method", string(s.Method)).Int("financial_year", s.FinancialYear).Msg("Settings updated")
	return nil
}

// Window parses a financial year label, falling back to the saved year when
// the label is empty.
func (r *Register) Window(label string) (fiscal.Window, error) {
	if strings.TrimSpace(label) == "" {
		s, err := r.Settings()
		if err != nil {
			return fiscal.Window{}, err
		}
		return fiscal.ForYear(s.FinancialYear), nil
	}
	w, err := fiscal.ParseYear(label)
	if err != nil {
		return fiscal.Window{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return w, nil
}

// Method parses a method, falling back to the saved method when empty.
func (r *Register) Method(value string) (models.Method, error) {
	if value == "" {
		s, err := r.Settings()
		if err != nil {
			return "", err
		}
		return s.Method, nil
	}
	m := models.Method(strings.ToUpper(value))
	if !m.Valid() {
		return "", invalid("method must be %s or %s, got %q", models.MethodSLM, models.MethodWDV, value)
	}
	return m, nil
}

// ExportSnapshot returns the whole register.
func (r *Register) ExportSnapshot() (*models.Snapshot, error) {
	settings, err := r.Settings()
	if err != nil {
		return nil, err
	}
	assets, err := r.storage.GetAllAssets()
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	blocks, err := r.storage.GetAllBlocks()
	if err != nil {
		return nil, fmt.Errorf("failed to load blocks: %w", err)
	}

	snap := &models.Snapshot{
		Settings: settings,
		Assets:   make([]models.CompaniesActAsset, 0, len(assets)),
		Blocks:   make([]models.IncomeTaxBlock, 0, len(blocks)),
	}
	for _, a := range assets {
		snap.Assets = append(snap.Assets, *a)
	}
	for _, b := range blocks {
		snap.Blocks = append(snap.Blocks, *b)
	}
	return snap, nil
}

// ImportSnapshot replaces the register with the snapshot. Records without an
// ID are given one; every record is validated first so a bad snapshot leaves
// the register untouched.
func (r *Register) ImportSnapshot(snap *models.Snapshot) error {
	for i := range snap.Assets {
		a := &snap.Assets[i]
		if err := validateAsset(a); err != nil {
			return fmt.Errorf("asset %d: %w", i+1, err)
		}
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
	}
	for i := range snap.Blocks {
		b := &snap.Blocks[i]
		if err := validateBlock(b); err != nil {
			return fmt.Errorf("block %d: %w", i+1, err)
		}
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		r.engine.ClassifyBlock(b, b.BlockType)
	}
	if snap.Settings.Method == "" {
		snap.Settings.Method = r.defaults.Method
	}
	if snap.Settings.FinancialYear == 0 {
		snap.Settings.FinancialYear = r.defaults.FinancialYear
	}
	if err := validateSettings(snap.Settings); err != nil {
		return err
	}

	if err := r.storage.ReplaceAll(snap); err != nil {
		return fmt.Errorf("failed to import snapshot: %w", err)
	}
	r.logger.Info().Int("assets", len(snap.Assets)).Int("blocks", len(snap.Blocks)).Msg("Snapshot imported")
	return nil
}
