package ioschema

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
)

// NotConnectedError is returned when the operator has no pool.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Cannot change taxonomy schema without database connection",
		Err:  fmt.Errorf("not connected to database"),
	}
}

// GORMConnectionError wraps failures to open GORM on top of the pgx pool.
func GORMConnectionError(err error) error {
	msg := `Cannot open GORM session on the connection pool

<em>How to fix:</em>
  1. Check the <em>database</em> section of config.yaml
  2. Run the command with <em>GNTAXDB_LOG_LEVEL=debug</em>`

	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Err:  fmt.Errorf("gorm open: %w", err),
	}
}

// CreateSchemaError wraps AutoMigrate failures of a new database.
func CreateSchemaError(err error) error {
	msg := `Cannot create tables of organisms, taxa, assemblies and annotations

Check that the database user has CREATE permission.`

	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  msg,
		Err:  fmt.Errorf("create schema: %w", err),
	}
}

// MigrateSchemaError wraps AutoMigrate failures of an existing database.
func MigrateSchemaError(err error) error {
	msg := `Cannot migrate taxonomy tables

Existing rows might conflict with new constraints, see logs for details.`

	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Err:  fmt.Errorf("migrate schema: %w", err),
	}
}

// CollationError is returned when "C" collation cannot be set on a
// taxid or rank column.
func CollationError(table, column string, err error) error {
	msg := `Cannot set "C" collation on <em>%s.%s</em>`

	return &gn.Error{
		Code: errcode.SchemaCollationError,
		Msg:  msg,
		Vars: []any{table, column},
		Err:  fmt.Errorf("collation %s.%s: %w", table, column, err),
	}
}
