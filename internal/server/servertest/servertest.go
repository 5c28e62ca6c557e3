// Package servertest starts a seeded cart server on an in-memory database.
package servertest

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/dwikikusuma/cart-sync/internal/server"
	"github.com/dwikikusuma/cart-sync/pkg/database"
	"github.com/stretchr/testify/require"
)

// Start returns a running httptest server seeded with the demo catalog.
// It is closed when the test ends.
func Start(t testing.TB, maxQuantity int) (*httptest.Server, *server.Server) {
	t.Helper()

	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)

	srv, err := server.New(context.Background(), db, server.Options{
		MaxQuantity: maxQuantity,
		SeedDemo:    true,
	}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = database.Close(db)
	})
	return ts, srv
}
