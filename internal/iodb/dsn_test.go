package iodb

import (
	"testing"

	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "db.example.org",
		Port:     5433,
		User:     "tax admin",
		Password: "p@ss:w/rd?",
		Database: "gntaxdb",
		SSLMode:  "require",
	}

	pc, err := pgxpool.ParseConfig(dsn(cfg))
	require.NoError(t, err)
	cc := pc.ConnConfig
	assert.Equal(t, "db.example.org", cc.Host)
	assert.Equal(t, uint16(5433), cc.Port)
	assert.Equal(t, "tax admin", cc.User)
	assert.Equal(t, "p@ss:w/rd?", cc.Password)
	assert.Equal(t, "gntaxdb", cc.Database)
	assert.NotNil(t, cc.TLSConfig)
}
