package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests are skipped when no database is configured.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, postgresql.EnsureSchema(ctx, db))
	truncateAllTables(t, db)
	t.Cleanup(func() { truncateAllTables(t, db) })

	return db
}

// truncateAllTables mengosongkan semua tabel sebelum dan sesudah test
func truncateAllTables(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	err := postgresql.WithTransaction(ctx, db, func(ctx context.Context) error {
		_, err := postgresql.GetQuerier(ctx, db).Exec(ctx, "TRUNCATE TABLE inventory_adjustments, asset_requests, assets, users")
		return err
	})
	require.NoError(t, err)
}
