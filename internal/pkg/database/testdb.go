package database

import (
	"os"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/LeadFox/app/models"
)

// NewTestDB opens an isolated in-memory SQLite database with the full schema.
// It is used by repository, service and controller tests.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	if err := CreateViews(db); err != nil {
		t.Fatalf("create views: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a single connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// NewMySQLTestDB connects to TEST_MYSQL_DSN and recreates the schema, or skips
// the test. Row locks and concurrent writers only behave like production here.
func NewMySQLTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("Skipping MySQL-dependent test: TEST_MYSQL_DSN is not set")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("Skipping MySQL-dependent test: %v", err)
	}

	reset := func() {
		_ = db.Exec("DROP VIEW IF EXISTS " + PartnerPerformanceView).Error
		if err := db.Migrator().DropTable(models.All()...); err != nil {
			t.Fatalf("drop tables: %v", err)
		}
	}
	reset()
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	if err := CreateViews(db); err != nil {
		t.Fatalf("create views: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() {
		reset()
		_ = sqlDB.Close()
	})
	return db
}
