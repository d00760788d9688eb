// Package config provides configuration management for GNtaxdb.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid
// - All mutations go through Option functions
// - Invalid options are rejected with gn.Warn(), config stays valid
// - ToOptions() converts persistent fields (those in config.yaml)
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Taxonomy: source_url, fetch_batch_size, insert_batch_size,
//     update_batch_size, timeout_sec
//   - Log: level, format, destination
//   - General: jobs_number, metrics_file
//
// Runtime-only fields (CLI flags only):
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GNTAXDB_ prefix with underscores for nesting:
//
//	GNTAXDB_DATABASE_HOST=localhost
//	GNTAXDB_DATABASE_PORT=5432
//	GNTAXDB_TAXONOMY_SOURCE_URL=https://www.ebi.ac.uk/ena/browser/api/xml
//	GNTAXDB_LOG_LEVEL=info
//	GNTAXDB_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete GNtaxdb configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Taxonomy contains settings of the lineage authority and batching
	// of the reconciliation passes.
	Taxonomy TaxonomyConfig `mapstructure:"taxonomy" yaml:"taxonomy"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for parallel operations.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// MetricsFile is a path where Prometheus textfile metrics are written
	// after every job. Empty value disables metrics output.
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string `yaml:"-"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize is the number of rows read per chunk when streaming
	// leaf collections.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// TaxonomyConfig contains settings for the lineage authority client and
// for batching of taxonomy writes.
type TaxonomyConfig struct {
	// SourceURL is the endpoint of the ENA browser XML API. Taxids are
	// sent to it as a comma-separated list.
	SourceURL string `mapstructure:"source_url" yaml:"source_url"`

	// FetchBatchSize is the maximum number of taxids per request to the
	// authority.
	FetchBatchSize int `mapstructure:"fetch_batch_size" yaml:"fetch_batch_size"`

	// InsertBatchSize is the number of organisms or taxa inserted at once.
	// A failed insert discards the whole sub-batch.
	InsertBatchSize int `mapstructure:"insert_batch_size" yaml:"insert_batch_size"`

	// UpdateBatchSize is the number of point updates sent in one batch
	// during rebuild and aggregation.
	UpdateBatchSize int `mapstructure:"update_batch_size" yaml:"update_batch_size"`

	// TimeoutSec bounds every request to the authority. A timed out
	// request is treated as an empty batch.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "gntaxdb",
			SSLMode:   "disable",
			BatchSize: 10_000,
		},
		Taxonomy: TaxonomyConfig{
			SourceURL:       "https://www.ebi.ac.uk/ena/browser/api/xml",
			FetchBatchSize:  9000,
			InsertBatchSize: 5000,
			UpdateBatchSize: 1000,
			TimeoutSec:      300,
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
