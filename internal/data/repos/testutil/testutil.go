package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/rateio-sync-backend/internal/data/db"
	types "github.com/yungbote/rateio-sync-backend/internal/domain"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return log
}

// DB opens a private in-memory SQLite database with the sync tables, the hub table and
// the profile table in place.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	return open(tb, true)
}

// LegacyDB is DB with a hub table that has no status column.
func LegacyDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	return open(tb, false)
}

func open(tb testing.TB, withStatus bool) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("sqlite pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrateSync(gdb, false); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	if withStatus {
		if err := gdb.AutoMigrate(&types.HubLine{}); err != nil {
			tb.Fatalf("migrate hub: %v", err)
		}
	} else {
		if err := gdb.Exec(`CREATE TABLE rateio_claro_linhas (
			id text PRIMARY KEY,
			nome text,
			numero_linha text,
			user_id text,
			created_at datetime NOT NULL,
			updated_at datetime NOT NULL
		)`).Error; err != nil {
			tb.Fatalf("create legacy hub: %v", err)
		}
	}
	if err := gdb.Exec(`CREATE TABLE profiles (
		id text PRIMARY KEY,
		auth_user_id text UNIQUE,
		nome text,
		role text,
		modules text,
		is_active numeric NOT NULL DEFAULT 0
	)`).Error; err != nil {
		tb.Fatalf("create profiles: %v", err)
	}
	return gdb
}
