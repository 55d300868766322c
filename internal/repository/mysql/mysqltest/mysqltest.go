// Package mysqltest 为上层包的测试提供迁移好的内存 SQLite 库。
package mysqltest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nabirdeveloper/trusted-brother/internal/repository/mysql"
)

// Open 每次调用得到一个独立的库，测试结束时关闭
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := mysql.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, mysql.Migrate(db))
	return db
}
