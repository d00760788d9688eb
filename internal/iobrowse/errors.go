package iobrowse

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
)

func errMalformedTaxID(taxid string) error {
	return fmt.Errorf("malformed taxid '%s'", taxid)
}

func QueryError(err error) error {
	msg := "Invalid query: %s"
	vars := []any{err.Error()}
	return &gn.Error{
		Code: errcode.QueryInvalidError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("invalid query: %w", err),
	}
}

func NotFoundError(taxid string) error {
	msg := "Taxon node <em>%s</em> not found"
	vars := []any{taxid}
	return &gn.Error{
		Code: errcode.TaxonNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("taxon %s not found", taxid),
	}
}
