package store

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mcclellann/depreg/pkg/models"
)

// MemoryStore keeps the register in process memory. Records are copied on the
// way in and out so callers never share additions slices with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	assets      map[uuid.UUID]models.CompaniesActAsset
	blocks      map[uuid.UUID]models.IncomeTaxBlock
	settings    models.Settings
	hasSettings bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assets: make(map[uuid.UUID]models.CompaniesActAsset),
		blocks: make(map[uuid.UUID]models.IncomeTaxBlock),
	}
}

func copyAdditions(in []models.Addition) []models.Addition {
	out := make([]models.Addition, len(in))
	for i, a := range in {
		out[i] = a
		if a.Date != nil {
			d := *a.Date
			out[i].Date = &d
		}
	}
	return out
}

func cloneAsset(a models.CompaniesActAsset) models.CompaniesActAsset {
	a.Additions = copyAdditions(a.Additions)
	return a
}

func cloneBlock(b models.IncomeTaxBlock) models.IncomeTaxBlock {
	b.Additions = copyAdditions(b.Additions)
	return b
}

func (m *MemoryStore) CreateAsset(asset *models.CompaniesActAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[asset.ID] = cloneAsset(*asset)
	return nil
}

func (m *MemoryStore) GetAsset(id uuid.UUID) (*models.CompaniesActAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, ErrAssetNotFound
	}
	out := cloneAsset(a)
	return &out, nil
}

func (m *MemoryStore) UpdateAsset(asset *models.CompaniesActAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assets[asset.ID]; !ok {
		return ErrAssetNotFound
	}
	m.assets[asset.ID] = cloneAsset(*asset)
	return nil
}

func (m *MemoryStore) DeleteAsset(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assets[id]; !ok {
		return ErrAssetNotFound
	}
	delete(m.assets, id)
	return nil
}

func (m *MemoryStore) GetAllAssets() ([]*models.CompaniesActAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.CompaniesActAsset, 0, len(m.assets))
	for _, a := range m.assets {
		c := cloneAsset(a)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *MemoryStore) CreateBlock(block *models.IncomeTaxBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[block.ID] = cloneBlock(*block)
	return nil
}

func (m *MemoryStore) GetBlock(id uuid.UUID) (*models.IncomeTaxBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blocks[id]
	if !ok {
		return nil, ErrBlockNotFound
	}
	out := cloneBlock(b)
	return &out, nil
}

func (m *MemoryStore) UpdateBlock(block *models.IncomeTaxBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blocks[block.ID]; !ok {
		return ErrBlockNotFound
	}
	m.blocks[block.ID] = cloneBlock(*block)
	return nil
}

func (m *MemoryStore) DeleteBlock(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blocks[id]; !ok {
		return ErrBlockNotFound
	}
	delete(m.blocks, id)
	return nil
}

func (m *MemoryStore) GetAllBlocks() ([]*models.IncomeTaxBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.IncomeTaxBlock, 0, len(m.blocks))
	for _, b := range m.blocks {
		c := cloneBlock(b)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *MemoryStore) GetSettings() (*models.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.hasSettings {
		return nil, ErrSettingsNotFound
	}
	s := m.settings
	return &s, nil
}

func (m *MemoryStore) SaveSettings(settings *models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = *settings
	m.hasSettings = true
	return nil
}

func (m *MemoryStore) ReplaceAll(snapshot *models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets = make(map[uuid.UUID]models.CompaniesActAsset, len(snapshot.Assets))
	for _, a := range snapshot.Assets {
		m.assets[a.ID] = cloneAsset(a)
	}
	m.blocks = make(map[uuid.UUID]models.IncomeTaxBlock, len(snapshot.Blocks))
	for _, b := range snapshot.Blocks {
		m.blocks[b.ID] = cloneBlock(b)
	}
	m.settings = snapshot.Settings
	m.hasSettings = true
	return nil
}

func (m *MemoryStore) Close() error { return nil }
