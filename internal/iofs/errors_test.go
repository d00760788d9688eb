package iofs

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	origErr := errors.New("root cause")
	tests := []struct {
		name  string
		err   error
		code  gn.ErrorCode
		path  string
		inner string
	}{
		{"create dir", CreateDirError("/dir", origErr), errcode.CreateDirError, "/dir", "cannot create"},
		{"copy file", CopyFileError("/file", origErr), errcode.CopyFileError, "/file", "cannot write"},
		{"read file", ReadFileError("/path", origErr), errcode.ReadFileError, "/path", "cannot read"},
		{"remove file", RemoveFileError("/old", origErr), errcode.RemoveFileError, "/old", "cannot remove"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gnErr, ok := tt.err.(*gn.Error)
			require.True(t, ok, "Error should be of type *gn.Error")
			assert.Equal(t, tt.code, gnErr.Code)
			assert.NotEmpty(t, gnErr.Msg)
			require.Len(t, gnErr.Vars, 1)
			assert.Equal(t, tt.path, gnErr.Vars[0])
			assert.ErrorIs(t, gnErr.Err, origErr)
			assert.Contains(t, gnErr.Err.Error(), "from")
			assert.Contains(t, gnErr.Err.Error(), tt.inner)
		})
	}
}
