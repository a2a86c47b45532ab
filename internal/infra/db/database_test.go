package db

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDatabaseOverSQLite(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	database := Wrap(gdb)
	require.NoError(t, database.Migrate())
	require.NoError(t, database.Ping(context.Background()))

	for _, table := range []string{"users", "subscriptions", "user_activity", "mutual_groups", "mutual_invites", "email_queue"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}

	require.NoError(t, database.Close())
	assert.Error(t, database.Ping(context.Background()))
}
