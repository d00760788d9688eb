package iodb

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	orig := errors.New("boom")
	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
		vars int
	}{
		{"connection", ConnectionError("localhost", 5432, "db", "user", orig),
			errcode.DBConnectionError, 5},
		{"table exists", TableExistsCheckError("organisms", orig),
			errcode.DBTableExistsCheckError, 1},
		{"table check", TableCheckError(orig), errcode.DBTableCheckError, 0},
		{"query tables", QueryTablesError(orig), errcode.DBQueryTablesError, 0},
		{"scan table", ScanTableError(orig), errcode.DBScanTableError, 0},
		{"drop table", DropTableError("organisms", orig),
			errcode.DBDropTableError, 1},
	}

	for _, v := range tests {
		gnErr, ok := v.err.(*gn.Error)
		require.True(t, ok, v.msg)
		assert.Equal(t, v.code, gnErr.Code, v.msg)
		assert.NotEmpty(t, gnErr.Msg, v.msg)
		assert.Len(t, gnErr.Vars, v.vars, v.msg)
		assert.ErrorIs(t, gnErr.Err, orig, v.msg)
	}
}

func TestNotConnectedErrors(t *testing.T) {
	err := NotConnectedError()
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.DBNotConnectedError, gnErr.Code)

	err = EmptyDatabaseError("gntaxdb")
	gnErr, ok = err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.DBEmptyDatabaseError, gnErr.Code)
	assert.Equal(t, []any{"gntaxdb"}, gnErr.Vars)
}
