package ioschema

import (
	"testing"

	"github.com/gnames/gntaxdb/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func TestFormatCollationSQL(t *testing.T) {
	tests := []struct {
		name                string
		table, column, typ  string
		expected            string
	}{
		{
			name:     "taxid",
			table:    "taxon_nodes",
			column:   "taxid",
			typ:      "VARCHAR(20)",
			expected: `ALTER TABLE "taxon_nodes" ALTER COLUMN "taxid" TYPE VARCHAR(20) COLLATE "C"`,
		},
		{
			name:     "rank",
			table:    "taxon_nodes",
			column:   "rank",
			typ:      "VARCHAR(100)",
			expected: `ALTER TABLE "taxon_nodes" ALTER COLUMN "rank" TYPE VARCHAR(100) COLLATE "C"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := formatCollationSQL(tt.table, tt.column, tt.typ)
			assert.Equal(t, tt.expected, res)
		})
	}
}

// TestCollatedColumns verifies that collation targets existing tables.
func TestCollatedColumns(t *testing.T) {
	tables := schema.TableNames()
	for _, c := range collatedColumns {
		assert.Contains(t, tables, c.table)
	}
}
