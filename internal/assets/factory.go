// Package assets copies cel images from a source project into migration output.
package assets

import (
	"fmt"

	"blit-migrate/internal/blit"
	"blit-migrate/internal/config"
)

// NewAssetStoreFromConfig creates an AssetStore implementation based on the assets config type.
func NewAssetStoreFromConfig(cfg config.AssetsConfig) (blit.AssetStore, error) {
	switch cfg.Type {
	case "filesystem", "":
		return NewFileSystemAssetStore(cfg.VerifyChecksums), nil
	case "memory":
		return NewMemoryAssetStore(), nil
	default:
		return nil, fmt.Errorf("unknown asset store type: %s", cfg.Type)
	}
}
