//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"usersearch/internal/identity/store"
	"usersearch/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	st := store.NewPostgres(pg.DB)
	require.NoError(t, st.Migrate(context.Background()))
	pg.Exec(t,
		"TRUNCATE identities",
		"TRUNCATE identity_handles",
		"TRUNCATE identity_blocks",
	)

	exerciseStore(t, st)
}
