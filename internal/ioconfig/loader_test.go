package ioconfig_test

import (
	"os"
	"testing"

	"github.com/gnames/gntaxdb/internal/ioconfig"
	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(config.ConfigDir(home), 0755))
	err := os.WriteFile(config.ConfigFilePath(home), []byte(content), 0644)
	require.NoError(t, err)
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "GNTAXDB_DATABASE_HOST", ioconfig.EnvVar("database.host"))
	assert.Equal(t, "GNTAXDB_JOBS_NUMBER", ioconfig.EnvVar("jobs_number"))
	assert.Equal(t,
		"GNTAXDB_TAXONOMY_FETCH_BATCH_SIZE",
		ioconfig.EnvVar("taxonomy.fetch_batch_size"),
	)
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := ioconfig.Load(home)
	require.NoError(t, err)

	want := config.New()
	assert.Equal(t, want.Database, cfg.Database)
	assert.Equal(t, want.Taxonomy, cfg.Taxonomy)
	assert.Equal(t, want.Log, cfg.Log)
	assert.Equal(t, home, cfg.HomeDir)
}

func TestLoad_File(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, `
database:
  host: db.example.org
  port: 5433
taxonomy:
  fetch_batch_size: 100
log:
  format: text
`)
	cfg, err := ioconfig.Load(home)
	require.NoError(t, err)
	assert.Equal(t, "db.example.org", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 100, cfg.Taxonomy.FetchBatchSize)
	assert.Equal(t, "text", cfg.Log.Format)
	// untouched values keep defaults
	assert.Equal(t, "gntaxdb", cfg.Database.Database)
	assert.Equal(t, 5000, cfg.Taxonomy.InsertBatchSize)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "database:\n  host: from-file\n")
	t.Setenv("GNTAXDB_DATABASE_HOST", "from-env")
	t.Setenv("GNTAXDB_TAXONOMY_TIMEOUT_SEC", "30")
	t.Setenv("GNTAXDB_METRICS_FILE", "/tmp/gntaxdb.prom")

	cfg, err := ioconfig.Load(home)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Host)
	assert.Equal(t, 30, cfg.Taxonomy.TimeoutSec)
	assert.Equal(t, "/tmp/gntaxdb.prom", cfg.MetricsFile)
}

func TestLoad_InvalidValuesKeepDefaults(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, `
database:
  ssl_mode: sometimes
log:
  destination: printer
`)
	cfg, err := ioconfig.Load(home)
	require.NoError(t, err)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "file", cfg.Log.Destination)
}

func TestLoad_Malformed(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "database: [unclosed\n")
	_, err := ioconfig.Load(home)
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	cfg := config.New()
	bs, err := ioconfig.Generate(cfg)
	require.NoError(t, err)

	txt := string(bs)
	assert.Contains(t, txt, "# GNtaxdb configuration.")
	assert.Contains(t, txt, "GNTAXDB_DATABASE_HOST")
	assert.Contains(t, txt, "# Maximum number of taxids per request.")
	assert.NotContains(t, txt, "homedir")

	var back config.Config
	require.NoError(t, yaml.Unmarshal(bs, &back))
	assert.Equal(t, cfg.Database, back.Database)
	assert.Equal(t, cfg.Taxonomy, back.Taxonomy)
	assert.Equal(t, cfg.Log, back.Log)
}

func TestGenerate_Loadable(t *testing.T) {
	home := t.TempDir()
	cfg := config.New()
	cfg.Update([]config.Option{config.OptDatabaseHost("generated")})
	bs, err := ioconfig.Generate(cfg)
	require.NoError(t, err)
	writeConfig(t, home, string(bs))

	res, err := ioconfig.Load(home)
	require.NoError(t, err)
	assert.Equal(t, "generated", res.Database.Host)
}
