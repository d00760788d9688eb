package ioschema

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

type columnDef struct {
	table, column, typ string
}

var collatedColumns = []columnDef{
	{"organisms", "taxid", "VARCHAR(20)"},
	{"taxon_nodes", "taxid", "VARCHAR(20)"},
	{"taxon_nodes", "rank", "VARCHAR(100)"},
	{"assemblies", "taxid", "VARCHAR(20)"},
	{"annotations", "taxid", "VARCHAR(20)"},
}

// formatCollationSQL formats the collation SQL statement.
func formatCollationSQL(table, column, typ string) string {
	return fmt.Sprintf(
		`ALTER TABLE %s ALTER COLUMN %s TYPE %s COLLATE "C"`,
		pgx.Identifier{table}.Sanitize(),
		pgx.Identifier{column}.Sanitize(),
		typ,
	)
}
