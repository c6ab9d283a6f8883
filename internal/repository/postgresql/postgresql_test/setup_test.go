package postgresql_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/faena-app/faena-backend/internal/pkg/database"
	"github.com/faena-app/faena-backend/migrations"
	"github.com/stretchr/testify/require"
)

// tables lists every table of the migrated schema, children first.
var tables = []string{
	"chat_messages",
	"worker_comments",
	"comment_blocks",
	"live_stock",
	"daily_reports",
	"attendance_records",
	"project_assignments",
	"projects",
	"users",
}

// newTestDB migrates the database at TEST_DATABASE_URL and empties every table.
// Without the variable the test is skipped.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, database.RunMigrations(dsn, migrations.FS))

	db, err := database.NewPostgreSQLDB(dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Exec(context.Background(), "TRUNCATE TABLE "+strings.Join(tables, ", ")+" CASCADE")
	require.NoError(t, err)
	return db
}
