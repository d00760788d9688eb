package iostore

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
)

func NotConnectedError() error {
	msg := "Store is used without database connection"
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("not connected to database"),
	}
}

func QueryError(table string, err error) error {
	msg := "Cannot read from <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: query %s: %w", fn.Name(), table, err),
	}
}

func InsertError(table string, n int, err error) error {
	msg := "Cannot insert %d rows into <em>%s</em>"
	vars := []any{n, table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreInsertError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: insert into %s: %w", fn.Name(), table, err),
	}
}

func UpdateError(table string, err error) error {
	msg := "Cannot update <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreUpdateError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: update %s: %w", fn.Name(), table, err),
	}
}

func DeleteError(table string, err error) error {
	msg := "Cannot delete from <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreDeleteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: delete from %s: %w", fn.Name(), table, err),
	}
}

func StreamError(table string, err error) error {
	msg := "Cannot stream rows of <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreStreamError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: stream %s: %w", fn.Name(), table, err),
	}
}
