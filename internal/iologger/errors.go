package iologger

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
)

// LogFileError is returned when the log file cannot be opened for
// appending. The message suggests another log destination.
func LogFileError(path string, err error) error {
	return &gn.Error{
		Code: errcode.CreateLogFileError,
		Msg: "Cannot open log file <em>%s</em>, set <em>log.destination</em> " +
			"to stderr in config.yaml or GNTAXDB_LOG_DESTINATION",
		Vars: []any{path},
		Err:  fmt.Errorf("open log %s: %w", path, err),
	}
}
