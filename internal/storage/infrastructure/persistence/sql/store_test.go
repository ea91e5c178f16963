package sql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:3306)/storefront?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)
	return db
}

func TestSQLStore_SetUpserts(t *testing.T) {
	db := dryRunDB(t)
	s := &sqlStore{db: db}

	var sql string
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("capture", func(tx *gorm.DB) {
		sql = tx.Statement.SQL.String()
	}))

	require.NoError(t, s.Set(context.Background(), "storefront:session:x:cart", "[]"))
	assert.Contains(t, sql, "INSERT INTO `kv_entries`")
	assert.Contains(t, sql, "ON DUPLICATE KEY UPDATE")
}

func TestSQLStore_RemoveTargetsKey(t *testing.T) {
	db := dryRunDB(t)
	s := &sqlStore{db: db}

	var sql string
	require.NoError(t, db.Callback().Delete().After("gorm:delete").Register("capture", func(tx *gorm.DB) {
		sql = tx.Statement.SQL.String()
	}))

	require.NoError(t, s.Remove(context.Background(), "k"))
	assert.Contains(t, sql, "DELETE FROM `kv_entries` WHERE `key` = ?")
}

func TestKVEntry_TableName(t *testing.T) {
	assert.Equal(t, "kv_entries", KVEntry{}.TableName())
}
