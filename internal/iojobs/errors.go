package iojobs

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
)

func InvalidTaxIDError(taxid string) error {
	msg := "Taxid <em>%q</em> is not a number"
	vars := []any{taxid}
	return &gn.Error{
		Code: errcode.QueryInvalidError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("invalid taxid %q", taxid),
	}
}

func MetricsError(path string, err error) error {
	msg := "Cannot write metrics to <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.WriteFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("metrics %s: %w", path, err),
	}
}
