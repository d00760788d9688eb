package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/gnames/gntaxdb/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "gntaxdb"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "gntaxdb"),
		},
		{
			msg: "lineage cache dir",
			fn:  config.LineageCacheDir,
			res: filepath.Join(tempHome, ".cache", "gntaxdb", "lineages"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "gntaxdb", "logs"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "gntaxdb", "config.yaml"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()
	require.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "postgres", cfg.Database.Password)
	assert.Equal(t, "gntaxdb", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10_000, cfg.Database.BatchSize)

	assert.Equal(t, 9000, cfg.Taxonomy.FetchBatchSize)
	assert.Equal(t, 5000, cfg.Taxonomy.InsertBatchSize)
	assert.Equal(t, 1000, cfg.Taxonomy.UpdateBatchSize)
	assert.Equal(t, 300, cfg.Taxonomy.TimeoutSec)
	assert.Contains(t, cfg.Taxonomy.SourceURL, "ebi.ac.uk")

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "file", cfg.Log.Destination)

	assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
	assert.Empty(t, cfg.MetricsFile)
	assert.NoError(t, cfg.Validate())
}

func TestOptionDatabaseHost(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sets valid host", "db.example.com", "db.example.com"},
		{"trims whitespace", "  db.example.com  ", "db.example.com"},
		{"ignores empty string", "", "localhost"},
		{"ignores whitespace-only", "   ", "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseHost(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.Host)
		})
	}
}

func TestOptionDatabaseSSLMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"disable", "disable", "disable"},
		{"require", "require", "require"},
		{"verify-full", "verify-full", "verify-full"},
		{"normalizes to lowercase", "REQUIRE", "require"},
		{"ignores invalid value", "invalid", "disable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseSSLMode(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.SSLMode)
		})
	}
}

func TestOptionTaxonomySourceURL(t *testing.T) {
	def := config.New().Taxonomy.SourceURL
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sets https url", "https://example.org/xml", "https://example.org/xml"},
		{"sets http url", "http://localhost:8080/xml", "http://localhost:8080/xml"},
		{"ignores empty", "", def},
		{"ignores no scheme", "example.org/xml", def},
		{"ignores ftp", "ftp://example.org/xml", def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptTaxonomySourceURL(tt.input)})
			assert.Equal(t, tt.expected, cfg.Taxonomy.SourceURL)
		})
	}
}

func TestOptionTaxonomyBatches(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptTaxonomyFetchBatchSize(100),
		config.OptTaxonomyInsertBatchSize(50),
		config.OptTaxonomyUpdateBatchSize(-1),
		config.OptTaxonomyTimeoutSec(0),
	})
	assert.Equal(t, 100, cfg.Taxonomy.FetchBatchSize)
	assert.Equal(t, 50, cfg.Taxonomy.InsertBatchSize)
	assert.Equal(t, 1000, cfg.Taxonomy.UpdateBatchSize)
	assert.Equal(t, 300, cfg.Taxonomy.TimeoutSec)
}

func TestOptionLog(t *testing.T) {
	tests := []struct {
		name   string
		opt    config.Option
		getter func(*config.Config) string
		res    string
	}{
		{"level debug", config.OptLogLevel("DEBUG"),
			func(c *config.Config) string { return c.Log.Level }, "debug"},
		{"level bad", config.OptLogLevel("trace"),
			func(c *config.Config) string { return c.Log.Level }, "info"},
		{"format text", config.OptLogFormat("text"),
			func(c *config.Config) string { return c.Log.Format }, "text"},
		{"format bad", config.OptLogFormat("xml"),
			func(c *config.Config) string { return c.Log.Format }, "json"},
		{"destination stderr", config.OptLogDestination("stderr"),
			func(c *config.Config) string { return c.Log.Destination }, "stderr"},
		{"destination bad", config.OptLogDestination("stdin"),
			func(c *config.Config) string { return c.Log.Destination }, "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{tt.opt})
			assert.Equal(t, tt.res, tt.getter(cfg))
		})
	}
}

func TestOptionJobsNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"sets valid jobs number", 8, 8},
		{"ignores zero", 0, runtime.NumCPU()},
		{"ignores negative", -5, runtime.NumCPU()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptJobsNumber(tt.input)})
			assert.Equal(t, tt.expected, cfg.JobsNumber)
		})
	}
}

func TestToOptions(t *testing.T) {
	t.Run("round trips persistent fields", func(t *testing.T) {
		original := config.New()
		original.Update([]config.Option{
			config.OptDatabaseHost("test.host.com"),
			config.OptDatabasePort(6543),
			config.OptDatabaseUser("testuser"),
			config.OptDatabasePassword("testpass"),
			config.OptDatabaseDatabase("testdb"),
			config.OptDatabaseSSLMode("require"),
			config.OptDatabaseBatchSize(2000),
			config.OptTaxonomySourceURL("https://example.org/xml"),
			config.OptTaxonomyFetchBatchSize(10),
			config.OptTaxonomyInsertBatchSize(20),
			config.OptTaxonomyUpdateBatchSize(30),
			config.OptTaxonomyTimeoutSec(40),
			config.OptLogLevel("debug"),
			config.OptLogFormat("text"),
			config.OptLogDestination("stdout"),
			config.OptJobsNumber(3),
			config.OptMetricsFile("/tmp/gntaxdb.prom"),
		})

		newCfg := config.New()
		newCfg.Update(original.ToOptions())
		assert.Equal(t, *original, *newCfg)
	})

	t.Run("excludes runtime-only fields", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{config.OptHomeDir("/custom/home")})

		newCfg := config.New()
		newCfg.Update(cfg.ToOptions())
		assert.Equal(t, "", newCfg.HomeDir)
	})
}

func TestValidate(t *testing.T) {
	cfg := config.New()
	cfg.Database.Database = ""
	cfg.Taxonomy.FetchBatchSize = 0

	err := cfg.Validate()
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")
	assert.Equal(t, errcode.ConfigInvalidError, gnErr.Code)
	require.Len(t, gnErr.Vars, 1)
	assert.Contains(t, gnErr.Err.Error(), "database name is empty")
	assert.Contains(t, gnErr.Err.Error(), "fetch batch size")
}
