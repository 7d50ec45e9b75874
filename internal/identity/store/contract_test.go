package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersearch/internal/identity/models"
	id "usersearch/pkg/domain"
	"usersearch/pkg/platform/sentinel"
)

type readWriter interface {
	Put(ctx context.Context, identity *models.Identity) error
	PutHandle(ctx context.Context, handle string, uid id.UID) error
	Block(ctx context.Context, uid, target id.UID, at int64) error
	FullRecords(ctx context.Context, uids []id.UID) ([]*models.Identity, error)
	PartialRecords(ctx context.Context, uids []id.UID, fields []models.Field) ([]*models.Partial, error)
	BlockedUIDs(ctx context.Context, uid id.UID) ([]id.UID, error)
	UIDBySlug(ctx context.Context, slug string) (id.UID, error)
}

const remoteActor = id.UID("https://remote.example/users/dana")

// exerciseStore runs the read contract every backend must satisfy.
func exerciseStore(t *testing.T, st readWriter) {
	ctx := context.Background()
	require.NoError(t, st.Put(ctx, &models.Identity{
		UID: "1", Username: "Alice", Userslug: "alice", Fullname: "Alice Liddell",
		Status: "online", LastOnline: 1700000000000, Flags: 2, EmailConfirmed: true,
	}))
	require.NoError(t, st.Put(ctx, &models.Identity{
		UID: "2", Username: "bob", Userslug: "bob", Status: "offline", LastOnline: 5,
	}))
	require.NoError(t, st.Put(ctx, &models.Identity{
		UID: remoteActor, Username: "dana@remote.example", Userslug: "dana@remote.example", Status: "online",
	}))
	require.NoError(t, st.PutHandle(ctx, "Dana@Remote.Example", remoteActor))

	t.Run("full records are positional with nil for missing", func(t *testing.T) {
		got, err := st.FullRecords(ctx, []id.UID{"2", "999", "1", remoteActor})
		require.NoError(t, err)
		require.Len(t, got, 4)
		require.NotNil(t, got[0])
		assert.Equal(t, "bob", got[0].Username)
		assert.Nil(t, got[1])
		require.NotNil(t, got[2])
		assert.Equal(t, id.UID("1"), got[2].UID)
		assert.Equal(t, "Alice Liddell", got[2].Fullname)
		assert.Equal(t, int64(1700000000000), got[2].LastOnline)
		assert.True(t, got[2].EmailConfirmed)
		assert.Nil(t, got[2].IsBlocked)
		require.NotNil(t, got[3])
		assert.Equal(t, remoteActor, got[3].UID)
	})

	t.Run("partial records carry only requested fields", func(t *testing.T) {
		got, err := st.PartialRecords(ctx, []id.UID{"1", "3"},
			[]models.Field{models.FieldFlags, models.FieldEmailConfirmed, models.FieldLastOnline})
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.NotNil(t, got[0])
		assert.Equal(t, id.UID("1"), got[0].UID)
		assert.Equal(t, "2", got[0].Value(models.FieldFlags))
		assert.True(t, models.Truthy(got[0].Value(models.FieldEmailConfirmed)))
		n, ok := got[0].Number(models.FieldLastOnline)
		assert.True(t, ok)
		assert.Equal(t, float64(1700000000000), n)
		assert.Empty(t, got[0].Value(models.FieldUsername))
		assert.Nil(t, got[1])
	})

	t.Run("block lists are most recent first", func(t *testing.T) {
		require.NoError(t, st.Block(ctx, "1", "2", 100))
		require.NoError(t, st.Block(ctx, "1", remoteActor, 200))

		got, err := st.BlockedUIDs(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, []id.UID{remoteActor, "2"}, got)

		got, err = st.BlockedUIDs(ctx, "2")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("slug lookups", func(t *testing.T) {
		uid, err := st.UIDBySlug(ctx, "Alice")
		require.NoError(t, err)
		assert.Equal(t, id.UID("1"), uid)

		uid, err = st.UIDBySlug(ctx, "dana@remote.example")
		require.NoError(t, err)
		assert.Equal(t, remoteActor, uid)

		_, err = st.UIDBySlug(ctx, "nobody")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		_, err = st.UIDBySlug(ctx, "nobody@remote.example")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
