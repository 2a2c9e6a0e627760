package journal

import (
	"fmt"
	"os"
	"path/filepath"

	"blit-migrate/internal/blit"
	"blit-migrate/internal/config"
)

// FileName is the journal database file inside the configured data directory.
const FileName = "journal.db"

// NewJournalFromConfig creates a Journal implementation based on the journal config type.
func NewJournalFromConfig(cfg config.JournalConfig) (blit.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite journal")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
		return NewSQLiteJournal(filepath.Join(cfg.DataDir, FileName))
	case "memory":
		return NewSQLiteJournal(":memory:")
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}
