package iodb

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
)

// ConnectionError is returned when the database cannot be reached.
func ConnectionError(
	host string,
	port int,
	database, user string,
	err error,
) error {
	msg := `<title>Database Connection Failed</title>

<warning>Could not connect to PostgreSQL database.</warning>

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>

  2. Verify database <em>%s</em> exists and user <em>%s</em> can access it.

  3. Check ~/.config/gntaxdb/config.yaml or GNTAXDB_DATABASE_* variables
     for database <em>%s</em>.`

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: []any{host, port, database, user, database},
		Err: fmt.Errorf(
			"failed to connect to %s:%d/%s: %w", host, port, database, err,
		),
	}
}

// NotConnectedError is returned when an operation runs before Connect.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Database operation attempted without connection",
		Err:  fmt.Errorf("not connected to database"),
	}
}

// TableExistsCheckError is returned when a table lookup fails.
func TableExistsCheckError(table string, err error) error {
	return &gn.Error{
		Code: errcode.DBTableExistsCheckError,
		Msg:  "Cannot check if table <em>%s</em> exists",
		Vars: []any{table},
		Err:  fmt.Errorf("check table %s: %w", table, err),
	}
}

// TableCheckError is returned when the list of tables cannot be read.
func TableCheckError(err error) error {
	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  "Cannot verify database state",
		Err:  fmt.Errorf("failed to check database tables: %w", err),
	}
}

// QueryTablesError is returned when table names cannot be queried.
func QueryTablesError(err error) error {
	return &gn.Error{
		Code: errcode.DBQueryTablesError,
		Msg:  "Cannot query database tables",
		Err:  fmt.Errorf("query tables: %w", err),
	}
}

// ScanTableError is returned when table names cannot be read.
func ScanTableError(err error) error {
	return &gn.Error{
		Code: errcode.DBScanTableError,
		Msg:  "Cannot read names of database tables",
		Err:  fmt.Errorf("scan tables: %w", err),
	}
}

// DropTableError is returned when a table cannot be dropped.
func DropTableError(table string, err error) error {
	return &gn.Error{
		Code: errcode.DBDropTableError,
		Msg:  "Cannot drop table <em>%s</em>",
		Vars: []any{table},
		Err:  fmt.Errorf("drop table %s: %w", table, err),
	}
}

// EmptyDatabaseError is returned when a command needs the schema but the
// database has no tables.
func EmptyDatabaseError(database string) error {
	msg := `<title>Database Is Not Ready</title>

<warning>Database <em>%s</em> has no tables.</warning>

Run <em>gntaxdb create</em> first to initialize the schema.`
	return &gn.Error{
		Code: errcode.DBEmptyDatabaseError,
		Msg:  msg,
		Vars: []any{database},
		Err:  fmt.Errorf("database %s has no tables", database),
	}
}
