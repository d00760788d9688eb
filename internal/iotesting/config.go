// Package iotesting provides shared test utilities: configuration for
// integration tests, an in-memory store and a fake lineage authority.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"os"

	"github.com/gnames/gntaxdb/internal/ioconfig"
	"github.com/gnames/gntaxdb/pkg/config"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against production databases.
	TestDatabaseName = "gntaxdb_test"
)

// GetTestConfig returns a configuration suitable for integration tests.
// It loads the standard config (from file, env or defaults) and overrides
// the database name to TestDatabaseName for safety.
//
// Usage in integration tests:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	var cfg *config.Config
	home, err := os.UserHomeDir()
	if err == nil {
		cfg, err = ioconfig.Load(home)
	}
	if err != nil || cfg == nil {
		cfg = config.New()
	}

	// Always use test database for safety
	cfg.Update([]config.Option{config.OptDatabaseDatabase(TestDatabaseName)})
	return cfg
}

// GetTestDatabaseConfig returns only the database configuration for tests.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}
