package groups

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "usersearch/pkg/domain"
)

func TestInMemoryIsMembers(t *testing.T) {
	ctx := context.Background()
	o := NewInMemory()
	require.NoError(t, o.Join(ctx, "mods", "1", 0))
	require.NoError(t, o.Join(ctx, BannedGroup, "3", 0))

	got, err := o.IsMembers(ctx, []id.UID{"1", "2", "3"}, "mods")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, got)

	got, err = o.IsMembers(ctx, []id.UID{"1", "3"}, BannedGroup)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, got)

	got, err = o.IsMembers(ctx, []id.UID{"1"}, "nobody")
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, got)
}

func TestMembersKey(t *testing.T) {
	assert.Equal(t, "group:banned-users:members", MembersKey(BannedGroup))
}
