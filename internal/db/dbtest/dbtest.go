// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/local_directory/internal/config"
	"github.com/Skotchmaster/local_directory/internal/db"
)

var seq atomic.Int64

// Open returns a fresh, migrated SQLite database private to the test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:dirtest%d?mode=memory&cache=shared", seq.Add(1))
	gdb, err := db.Open(context.Background(), config.DriverSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}
