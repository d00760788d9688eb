package ioexport

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
)

func SQLiteError(path string, err error) error {
	msg := "Cannot write snapshot to <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.ExportSQLiteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("sqlite %s: %w", path, err),
	}
}

func UploadError(bucket, key string, err error) error {
	msg := "Cannot upload snapshot to bucket <em>%s</em>"
	vars := []any{bucket}
	return &gn.Error{
		Code: errcode.ExportUploadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("s3 %s/%s: %w", bucket, key, err),
	}
}
