package store

import (
	"fmt"

	"github.com/brohem/BudgedBuddy/internal/config"
	applog "github.com/brohem/BudgedBuddy/internal/log"
	"github.com/brohem/BudgedBuddy/internal/storage"
	"github.com/brohem/BudgedBuddy/internal/store/memory"
)

// New selects the account store backend from configuration.
func New(cfg *config.Config, logger *applog.Logger) (AccountStore, error) {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized SQLite account store", applog.FieldBackend, cfg.DataBackend, "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case "memory":
		logger.Info("Initialized in-memory account store", applog.FieldBackend, cfg.DataBackend)
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
