package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestInit_SQLiteMigratesAllTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Init(Config{Path: path, LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	for _, table := range []string{"review_changes", "ticket_changes", "release_entries", "release_notes"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestInit_RejectsUnknownDriver(t *testing.T) {
	_, err := Init(Config{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestInit_PostgresNeedsDSN(t *testing.T) {
	_, err := Init(Config{Driver: "postgres"})
	assert.ErrorContains(t, err, "requires a dsn")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, ParseLogLevel("silent"))
	assert.Equal(t, logger.Info, ParseLogLevel(" INFO "))
	assert.Equal(t, logger.Error, ParseLogLevel("error"))
	assert.Equal(t, logger.Warn, ParseLogLevel(""))
	assert.Equal(t, logger.Warn, ParseLogLevel("verbose"))
}
