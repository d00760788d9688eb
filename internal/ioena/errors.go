package ioena

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
)

func RequestError(url string, n int, err error) error {
	msg := "Cannot fetch %d taxa from <em>%s</em>"
	vars := []any{n, url}
	return &gn.Error{
		Code: errcode.FetchRequestError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("request to %s: %w", url, err),
	}
}

func StatusError(url string, status int) error {
	msg := "Lineage source <em>%s</em> answered with status %d"
	vars := []any{url, status}
	return &gn.Error{
		Code: errcode.FetchStatusError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("request to %s: status %d", url, status),
	}
}
