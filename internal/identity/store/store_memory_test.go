package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersearch/internal/identity/groups"
	"usersearch/internal/identity/models"
	"usersearch/internal/identity/store"
	"usersearch/internal/search/index"
	id "usersearch/pkg/domain"
)

func TestInMemoryStore(t *testing.T) {
	exerciseStore(t, store.NewInMemory())
}

func TestInMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemory()
	require.NoError(t, st.Put(ctx, &models.Identity{UID: "1", Username: "alice"}))

	got, err := st.FullRecords(ctx, []id.UID{"1"})
	require.NoError(t, err)
	blocked := true
	got[0].IsBlocked = &blocked
	got[0].Username = "mallory"

	again, err := st.FullRecords(ctx, []id.UID{"1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", again[0].Username)
	assert.Nil(t, again[0].IsBlocked)
}

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemory()
	idx := index.NewInMemory()
	g := groups.NewInMemory()

	require.NoError(t, store.SeedDemo(ctx, st, idx, g, time.UnixMilli(1700000000000)))

	uids, err := index.NewPrefixSearcher(idx).Search(ctx, "ali", index.FieldUsername, 0)
	require.NoError(t, err)
	assert.Equal(t, []id.UID{"2", "3"}, uids)

	remote, err := index.NewPrefixSearcher(idx).Search(ctx, "ali", index.FieldActorPreferredUsername, 0)
	require.NoError(t, err)
	assert.Equal(t, []id.UID{"https://remote.example/users/alice"}, remote)

	banned, err := g.IsMembers(ctx, []id.UID{"1", "4"}, groups.BannedGroup)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, banned)

	blocked, err := st.BlockedUIDs(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, []id.UID{"3"}, blocked)
}
