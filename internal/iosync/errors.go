package iosync

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
)

func SyncError(stage string, err error) error {
	msg := "Taxonomy sync failed at <em>%s</em>"
	vars := []any{stage}
	return &gn.Error{
		Code: errcode.SyncError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("sync %s: %w", stage, err),
	}
}

func RefreshError(stage string, err error) error {
	msg := "Taxonomy refresh failed at <em>%s</em>"
	vars := []any{stage}
	return &gn.Error{
		Code: errcode.SyncRefreshError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("refresh %s: %w", stage, err),
	}
}

func FallbackError(stage string, err error) error {
	msg := "Lineage fallback failed at <em>%s</em>"
	vars := []any{stage}
	return &gn.Error{
		Code: errcode.SyncFallbackError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("fallback %s: %w", stage, err),
	}
}

func CacheError(path string, err error) error {
	msg := "Cannot use lineage cache <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.FetchCacheError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("lineage cache %s: %w", path, err),
	}
}
