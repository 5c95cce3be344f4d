// Package factory wires concrete store drivers from configuration.
package factory

import (
	"fmt"

	"github.com/memovault/memovault/internal/config"
	"github.com/memovault/memovault/internal/store"
	"github.com/memovault/memovault/internal/store/jsonfile"
	"github.com/memovault/memovault/internal/store/sqlite"
)

// NewStore returns the store driver selected by cfg.StoreDriver.
func NewStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverJSONFile:
		return jsonfile.Open(cfg.MemosFile)
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}
