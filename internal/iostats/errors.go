package iostats

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/errcode"
)

func RollupError(target string, err error) error {
	msg := "Cannot count records for <em>%s</em>, nothing was pruned"
	vars := []any{target}
	return &gn.Error{
		Code: errcode.StatsRollupError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("rollup %s: %w", target, err),
	}
}

func OrphanError(target string, err error) error {
	msg := "Cannot prune <em>%s</em> without annotations"
	vars := []any{target}
	return &gn.Error{
		Code: errcode.StatsOrphanError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("prune %s: %w", target, err),
	}
}

func DistributionError(cat string, err error) error {
	msg := "Cannot compute gene statistics of <em>%s</em>"
	vars := []any{cat}
	return &gn.Error{
		Code: errcode.StatsDistributionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("distribution %s: %w", cat, err),
	}
}
