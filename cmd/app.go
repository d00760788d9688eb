package cmd

import (
	"context"
	"log/slog"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/internal/ioena"
	"github.com/gnames/gntaxdb/internal/iodb"
	"github.com/gnames/gntaxdb/internal/iojobs"
	"github.com/gnames/gntaxdb/internal/iorebuild"
	"github.com/gnames/gntaxdb/internal/iostats"
	"github.com/gnames/gntaxdb/internal/iostore"
	"github.com/gnames/gntaxdb/internal/iosync"
	"github.com/gnames/gntaxdb/pkg/db"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/parserpool"
	"github.com/gnames/gntaxdb/pkg/schema"
	"github.com/gnames/gntaxdb/pkg/store"
)

// open connects to the database.
func open(ctx context.Context) (db.Operator, error) {
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return nil, err
	}

	gn.Info("Connected to database: <em>%s@%s:%d/%s</em>",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)
	return op, nil
}

// connect opens the database, makes sure taxonomy tables exist and
// creates a store on top of the connection pool.
func connect(ctx context.Context) (db.Operator, store.Store, error) {
	op, err := open(ctx)
	if err != nil {
		return nil, nil, err
	}

	missing, err := op.MissingTables(ctx, schema.TableNames())
	if err != nil {
		op.Close()
		return nil, nil, err
	}
	if len(missing) > 0 {
		op.Close()
		slog.Error("Missing tables", "tables", missing)
		return nil, nil, iodb.EmptyDatabaseError(cfg.Database.Database)
	}

	st, err := iostore.New(op, cfg)
	if err != nil {
		op.Close()
		return nil, nil, err
	}
	return op, st, nil
}

// newRunner wires reconciliation, rebuild and aggregation on top of the
// store. The returned function releases the name parsers.
func newRunner(st store.Store) (*iojobs.Runner, func()) {
	names := parserpool.NewPool(cfg.JobsNumber)
	rec := iosync.New(cfg, st, ioena.New(cfg), names)
	reb := iorebuild.New(cfg, st)
	agg := iostats.New(cfg, st)
	return iojobs.New(rec, reb, agg), names.Close
}

// runJob connects to the database, runs one job and reports its summary.
func runJob(
	ctx context.Context,
	job func(context.Context, *iojobs.Runner) (lifecycle.Summary, error),
) error {
	op, st, err := connect(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	runner, done := newRunner(st)
	defer done()

	sum, err := job(ctx, runner)
	if mErr := runner.WriteMetrics(cfg.MetricsFile); mErr != nil {
		gn.PrintErrorMessage(mErr)
	}
	gn.Info("%s", sum.String())
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		gn.Warn("<warn>%d batches failed, see logs for details</warn>",
			sum.Failed)
	}
	return nil
}
