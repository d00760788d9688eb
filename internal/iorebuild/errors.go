package iorebuild

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
)

func StreamError(source string, err error) error {
	msg := "Cannot read <em>%s</em>, the tree was not changed"
	vars := []any{source}
	return &gn.Error{
		Code: errcode.RebuildStreamError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("rebuild stream %s: %w", source, err),
	}
}
