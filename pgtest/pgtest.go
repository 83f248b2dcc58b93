// Package pgtest hands out isolated, fully migrated PostgreSQL databases to
// repository tests.
package pgtest

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/peterldowns/pgtestdb"
	"github.com/peterldowns/pgtestdb/migrators/golangmigrator"
)

var conf = pgtestdb.Config{
	DriverName: "pgx",
	User:       "proglv", // local dev pg user
	Password:   "proglv", // local dev pg password
	Host:       "localhost",
	Port:       "5433",
	Options:    "sslmode=disable",
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "migrate")
}

// NewDB returns a connection pool to a unique and isolated test database,
// fully migrated and ready for testing. The test is skipped when the local
// test server does not answer.
func NewDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?%s",
		conf.User, conf.Password, conf.Host, conf.Port, conf.Options)
	probe, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Skipf("test postgres is not reachable: %v", err)
	}
	probe.Close(ctx)

	gm := golangmigrator.New(migrationsDir())
	config := pgtestdb.Custom(t, conf, gm)

	pool, err := pgxpool.New(context.Background(), config.URL())
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}
