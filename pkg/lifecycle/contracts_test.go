package lifecycle_test

import (
	"testing"

	"github.com/gnames/gntaxdb/internal/iodb"
	"github.com/gnames/gntaxdb/internal/iorebuild"
	"github.com/gnames/gntaxdb/internal/ioschema"
	"github.com/gnames/gntaxdb/internal/iostats"
	"github.com/gnames/gntaxdb/internal/iosync"
	"github.com/gnames/gntaxdb/internal/iotesting"
	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/parserpool"
	"github.com/stretchr/testify/assert"
)

// TestContracts ensures that constructors of the impure packages return
// implementations of lifecycle interfaces.
// The interface types of the variables are a compile-time check, the
// assertions confirm the test was executed.
func TestContracts(t *testing.T) {
	cfg := config.New()
	st := iotesting.NewMemStore()
	names := parserpool.NewPool(1)
	defer names.Close()

	var sm lifecycle.SchemaManager = ioschema.NewManager(iodb.NewPgxOperator())
	var rec lifecycle.Reconciler = iosync.New(cfg, st, iotesting.NewFakeSource(), names)
	var reb lifecycle.Rebuilder = iorebuild.New(cfg, st)
	var agg lifecycle.Aggregator = iostats.New(cfg, st)

	assert.NotNil(t, sm, "ioschema should implement SchemaManager")
	assert.NotNil(t, rec, "iosync should implement Reconciler")
	assert.NotNil(t, reb, "iorebuild should implement Rebuilder")
	assert.NotNil(t, agg, "iostats should implement Aggregator")
}
