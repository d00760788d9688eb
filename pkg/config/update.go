package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int
	s = c.Database.Host
	if s != "" {
		res = append(res, OptDatabaseHost(s))
	}
	i = c.Database.Port
	if i > 0 {
		res = append(res, OptDatabasePort(i))
	}
	s = c.Database.User
	if s != "" {
		res = append(res, OptDatabaseUser(s))
	}
	s = c.Database.Password
	if s != "" {
		res = append(res, OptDatabasePassword(s))
	}
	s = c.Database.Database
	if s != "" {
		res = append(res, OptDatabaseDatabase(s))
	}
	s = c.Database.SSLMode
	if s != "" {
		res = append(res, OptDatabaseSSLMode(s))
	}
	i = c.Database.BatchSize
	if i > 0 {
		res = append(res, OptDatabaseBatchSize(i))
	}

	s = c.Taxonomy.SourceURL
	if s != "" {
		res = append(res, OptTaxonomySourceURL(s))
	}
	i = c.Taxonomy.FetchBatchSize
	if i > 0 {
		res = append(res, OptTaxonomyFetchBatchSize(i))
	}
	i = c.Taxonomy.InsertBatchSize
	if i > 0 {
		res = append(res, OptTaxonomyInsertBatchSize(i))
	}
	i = c.Taxonomy.UpdateBatchSize
	if i > 0 {
		res = append(res, OptTaxonomyUpdateBatchSize(i))
	}
	i = c.Taxonomy.TimeoutSec
	if i > 0 {
		res = append(res, OptTaxonomyTimeoutSec(i))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	i = c.JobsNumber
	if i > 0 {
		res = append(res, OptJobsNumber(i))
	}
	s = c.MetricsFile
	if s != "" {
		res = append(res, OptMetricsFile(s))
	}
	return res
}

// Validate checks values that Options cannot guarantee on their own,
// for example settings loaded directly into the struct by viper.
// It returns a *gn.Error with ConfigInvalidError code.
func (c *Config) Validate() error {
	var problems []string
	if c.Database.Database == "" {
		problems = append(problems, "database name is empty")
	}
	if c.Database.Host == "" {
		problems = append(problems, "database host is empty")
	}
	if c.Taxonomy.SourceURL == "" {
		problems = append(problems, "taxonomy source URL is empty")
	}
	if c.Taxonomy.FetchBatchSize <= 0 {
		problems = append(problems, "fetch batch size must be positive")
	}
	if c.Taxonomy.InsertBatchSize <= 0 {
		problems = append(problems, "insert batch size must be positive")
	}
	if c.Taxonomy.UpdateBatchSize <= 0 {
		problems = append(problems, "update batch size must be positive")
	}
	if c.Taxonomy.TimeoutSec <= 0 {
		problems = append(problems, "taxonomy timeout must be positive")
	}
	if len(problems) == 0 {
		return nil
	}

	msg := strings.Join(problems, "; ")
	return &gn.Error{
		Code: errcode.ConfigInvalidError,
		Msg:  "Invalid configuration: <em>%s</em>",
		Vars: []any{msg},
		Err:  fmt.Errorf("invalid configuration: %s", msg),
	}
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Database.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	if _, ok := data[name][val]; ok {
		return true
	}

	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		lines = append(lines, fmt.Sprintf("  * %s", v))
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}
