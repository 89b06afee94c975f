// Package rates holds the statutory rate and useful-life tables.
//
// Tables are immutable once built. The engine receives a Tables value at
// construction and never reads rates from anywhere else, so tests can run
// against arbitrary tables.
package rates

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AssetClass is a Companies Act (Schedule II) asset type.
type AssetClass struct {
	Key        string          `json:"key"`
	Label      string          `json:"label"`
	UsefulLife int             `json:"useful_life"`
	WDVRate    decimal.Decimal `json:"wdv_rate"`
}

// BlockClass is an Income Tax block of assets.
type BlockClass struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Rate  decimal.Decimal `json:"rate"`
	// ExcludedFromAdditional marks blocks that can never claim additional depreciation.
	ExcludedFromAdditional bool `json:"excluded_from_additional"`
}

// Tables is the read-only lookup used by the engine.
type Tables struct {
	assets map[string]AssetClass
	blocks map[string]BlockClass
}

// New builds tables from the given classes. Later entries win on duplicate keys.
func New(assets []AssetClass, blocks []BlockClass) Tables {
	t := Tables{
		assets: make(map[string]AssetClass, len(assets)),
		blocks: make(map[string]BlockClass, len(blocks)),
	}
	for _, a := range assets {
		t.assets[a.Key] = a
	}
	for _, b := range blocks {
		t.blocks[b.Key] = b
	}
	return t
}

// AssetClass looks up a Companies Act asset type.
func (t Tables) AssetClass(key string) (AssetClass, bool) {
	a, ok := t.assets[key]
	return a, ok
}

// BlockClass looks up an Income Tax block type.
func (t Tables) BlockClass(key string) (BlockClass, bool) {
	b, ok := t.blocks[key]
	return b, ok
}

// UsefulLife returns the SLM useful life in years, or 0 for unknown types.
func (t Tables) UsefulLife(assetType string) int {
	return t.assets[assetType].UsefulLife
}

// WDVRate returns the Companies Act WDV rate, or zero for unknown types.
func (t Tables) WDVRate(assetType string) decimal.Decimal {
	return t.assets[assetType].WDVRate
}

// BlockRate returns the block rate and whether the type is known.
func (t Tables) BlockRate(blockType string) (decimal.Decimal, bool) {
	b, ok := t.blocks[blockType]
	return b.Rate, ok
}

// ExcludedFromAdditional reports whether the block type may never claim
// additional depreciation.
func (t Tables) ExcludedFromAdditional(blockType string) bool {
	return t.blocks[blockType].ExcludedFromAdditional
}

// AssetClasses lists the asset types ordered by key.
func (t Tables) AssetClasses() []AssetClass {
	out := make([]AssetClass, 0, len(t.assets))
	for _, a := range t.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// BlockClasses lists the block types ordered by key.
func (t Tables) BlockClasses() []BlockClass {
	out := make([]BlockClass, 0, len(t.blocks))
	for _, b := range t.blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// WithOverrides returns a copy of t with the given classes added or replaced.
func (t Tables) WithOverrides(assets []AssetClass, blocks []BlockClass) Tables {
	return New(append(t.AssetClasses(), assets...), append(t.BlockClasses(), blocks...))
}
