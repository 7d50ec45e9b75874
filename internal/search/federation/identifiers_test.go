package federation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersearch/internal/identity/models"
	"usersearch/internal/identity/store"
	id "usersearch/pkg/domain"
)

func TestParseHandle(t *testing.T) {
	tests := []struct {
		in   string
		want Handle
		ok   bool
	}{
		{in: "alice@remote.example", want: Handle{User: "alice", Host: "remote.example"}, ok: true},
		{in: "@alice@Remote.Example", want: Handle{User: "alice", Host: "remote.example"}, ok: true},
		{in: "bob.smith@social.example:8443", want: Handle{User: "bob.smith", Host: "social.example:8443"}, ok: true},
		{in: "alice", ok: false},
		{in: "alice@", ok: false},
		{in: "@remote.example", ok: false},
		{in: "https://remote.example/users/alice", ok: false},
		{in: "alice@remote example", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseHandle(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
	assert.Equal(t, "acct:alice@remote.example", Handle{User: "alice", Host: "remote.example"}.Resource())
}

func TestResolveLocalID(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemory()
	require.NoError(t, st.Put(ctx, &models.Identity{UID: "7", Username: "alice", Userslug: "alice"}))

	local, err := NewLocalResolver("https://forum.example/community", st)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want LocalRef
	}{
		{name: "uid path", in: "https://forum.example/community/uid/12", want: LocalRef{Kind: RefUser, ID: "12"}},
		{name: "user path", in: "https://forum.example/community/user/alice", want: LocalRef{Kind: RefUser, ID: "7"}},
		{name: "user path unknown slug", in: "https://forum.example/community/user/nobody", want: LocalRef{}},
		{name: "uid path not positive", in: "https://forum.example/community/uid/0", want: LocalRef{}},
		{name: "other path", in: "https://forum.example/community/post/3", want: LocalRef{}},
		{name: "other host", in: "https://remote.example/uid/12", want: LocalRef{}},
		{name: "local handle", in: "alice@forum.example", want: LocalRef{Kind: RefUser, ID: "7"}},
		{name: "remote handle", in: "alice@remote.example", want: LocalRef{}},
		{name: "plain text", in: "alice", want: LocalRef{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := local.ResolveLocalID(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("store failures propagate", func(t *testing.T) {
		broken, err := NewLocalResolver("https://forum.example", brokenSlugs{})
		require.NoError(t, err)
		_, err = broken.ResolveLocalID(ctx, "https://forum.example/user/alice")
		require.Error(t, err)
	})

	t.Run("base url must be absolute", func(t *testing.T) {
		_, err := NewLocalResolver("/relative", st)
		require.Error(t, err)
	})
}

type brokenSlugs struct{}

func (brokenSlugs) UIDBySlug(context.Context, string) (id.UID, error) {
	return "", errors.New("store unreachable")
}
