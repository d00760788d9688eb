// Package ioconfig loads configuration from config.yaml and GNTAXDB_*
// environment variables.
package ioconfig

import (
	"os"
	"strings"

	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override
// config.yaml.
const EnvPrefix = "GNTAXDB"

// Keys are the persistent configuration keys. They match the fields
// returned by config.ToOptions and each of them can be set with an
// environment variable, for example GNTAXDB_DATABASE_HOST.
var Keys = []string{
	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.database",
	"database.ssl_mode",
	"database.batch_size",
	"taxonomy.source_url",
	"taxonomy.fetch_batch_size",
	"taxonomy.insert_batch_size",
	"taxonomy.update_batch_size",
	"taxonomy.timeout_sec",
	"log.level",
	"log.format",
	"log.destination",
	"jobs_number",
	"metrics_file",
}

// EnvVar returns the name of the environment variable of a key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load reads config.yaml from the home directory (if it exists), applies
// environment variables and returns a validated configuration. Values
// that are absent in both places keep defaults of config.New.
func Load(homeDir string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(homeDir)

	v := viper.New()
	setDefaults(v, config.New())
	initEnvVars(v)

	if _, err = os.Stat(cfgPath); err == nil {
		v.SetConfigFile(cfgPath)
		if err = v.ReadInConfig(); err != nil {
			return nil, ReadConfigError(cfgPath, err)
		}
	}

	var raw config.Config
	if err = v.Unmarshal(&raw); err != nil {
		return nil, ReadConfigError(cfgPath, err)
	}

	res := config.New()
	res.Update(raw.ToOptions())
	res.Update([]config.Option{config.OptHomeDir(homeDir)})

	if err = res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func setDefaults(v *viper.Viper, cfg *config.Config) {
	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.database", cfg.Database.Database)
	v.SetDefault("database.ssl_mode", cfg.Database.SSLMode)
	v.SetDefault("database.batch_size", cfg.Database.BatchSize)
	v.SetDefault("taxonomy.source_url", cfg.Taxonomy.SourceURL)
	v.SetDefault("taxonomy.fetch_batch_size", cfg.Taxonomy.FetchBatchSize)
	v.SetDefault("taxonomy.insert_batch_size", cfg.Taxonomy.InsertBatchSize)
	v.SetDefault("taxonomy.update_batch_size", cfg.Taxonomy.UpdateBatchSize)
	v.SetDefault("taxonomy.timeout_sec", cfg.Taxonomy.TimeoutSec)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.destination", cfg.Log.Destination)
	v.SetDefault("jobs_number", cfg.JobsNumber)
	v.SetDefault("metrics_file", cfg.MetricsFile)
}

// initEnvVars binds environment variables one by one, so it is easy to
// see which of them are allowed.
func initEnvVars(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range Keys {
		_ = v.BindEnv(k, EnvVar(k))
	}
}
