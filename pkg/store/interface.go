package store

import (
	"errors"

	"github.com/google/uuid"
	"github.com/mcclellann/depreg/pkg/models"
)

var (
	ErrAssetNotFound    = errors.New("asset not found")
	ErrBlockNotFound    = errors.New("block not found")
	ErrSettingsNotFound = errors.New("settings not found")
)

// Storage defines the persistence operations for the asset register.
type Storage interface {
	CreateAsset(asset *models.CompaniesActAsset) error
	GetAsset(id uuid.UUID) (*models.CompaniesActAsset, error)
	UpdateAsset(asset *models.CompaniesActAsset) error
	DeleteAsset(id uuid.UUID) error
	GetAllAssets() ([]*models.CompaniesActAsset, error)

	CreateBlock(block *models.IncomeTaxBlock) error
	GetBlock(id uuid.UUID) (*models.IncomeTaxBlock, error)
	UpdateBlock(block *models.IncomeTaxBlock) error
	DeleteBlock(id uuid.UUID) error
	GetAllBlocks() ([]*models.IncomeTaxBlock, error)

	GetSettings() (*models.Settings, error)
	SaveSettings(settings *models.Settings) error

	// ReplaceAll swaps the whole register for the snapshot's contents.
	ReplaceAll(snapshot *models.Snapshot) error

	Close() error
}
