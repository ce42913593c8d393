package db

import (
	"path/filepath"
	"testing"

	"github.com/NightSight1044/legalCRM1/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTursoDSN(t *testing.T) {
	assert.Equal(t, "libsql://firm.turso.io", TursoDSN("libsql://firm.turso.io", ""))
	assert.Equal(t, "libsql://firm.turso.io?authToken=abc", TursoDSN("libsql://firm.turso.io", "abc"))
}

func TestInitializeAndMigrate(t *testing.T) {
	cfg := &config.Config{
		Environment: "test",
		DBPath:      filepath.Join(t.TempDir(), "test.db"),
	}

	require.NoError(t, Initialize(cfg))
	t.Cleanup(func() { _ = Close() })

	require.NoError(t, AutoMigrate())
	assert.True(t, DB.Migrator().HasTable("cases"))
	assert.True(t, DB.Migrator().HasTable("invoice_line_items"))
}
