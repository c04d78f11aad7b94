package dbtest

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/migrate"
)

// EnvPostgresDSN names the database used by Postgres-only tests.
const EnvPostgresDSN = "STOREFRONT_TEST_DATABASE_DSN"

// OpenPostgres migrates a private schema on the database named by
// STOREFRONT_TEST_DATABASE_DSN and returns a client scoped to it. The test is
// skipped when the variable is unset. The schema is dropped on cleanup.
func OpenPostgres(t testing.TB) *db.Client {
	t.Helper()
	dsn := os.Getenv(EnvPostgresDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvPostgresDSN)
	}
	ctx := context.Background()

	admin, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	schema := "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	must(t, admin.Exec("CREATE SCHEMA "+schema).Error)

	client, err := db.New(ctx, config.DBConfig{DSN: withSearchPath(dsn, schema), Driver: "postgres"}, nil)
	if err != nil {
		t.Fatalf("open scoped client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
		_ = admin.Exec("DROP SCHEMA " + schema + " CASCADE").Error
		if sqlDB, err := admin.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	sqlDB, err := client.DB().DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	if err := migrate.Run(ctx, sqlDB, migrationsDir(), "up"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return client
}

func withSearchPath(dsn, schema string) string {
	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err == nil {
			q := u.Query()
			q.Set("search_path", schema)
			u.RawQuery = q.Encode()
			return u.String()
		}
	}
	return dsn + " search_path=" + schema
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrate", "migrations")
}
