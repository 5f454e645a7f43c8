//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linsalefe/pos-plataform/internal/testutil"
)

const (
	testChannel = int64(2)
	testContact = "5511999990000"
)

// setupDB starts a migrated database with one channel and one named contact.
func setupDB(t *testing.T) (context.Context, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")

	testutil.SeedChannel(ctx, t, pool, testChannel)
	testutil.SeedContact(ctx, t, pool, testContact, "Maria Souza", testChannel)
	return ctx, pool
}
