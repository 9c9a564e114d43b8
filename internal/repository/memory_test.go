package repository

import (
	"context"
	"testing"

	"github.com/immxrtalbeast/lobby_relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdentityRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryIdentityRepository()

	_, err := repo.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	require.NoError(t, repo.Set(ctx, "a", domain.NewIdentity(1, 10)))
	require.NoError(t, repo.Set(ctx, "a", domain.NewIdentity(2, domain.NoClientID)))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.PlayerID)
	assert.Nil(t, got.ClientID)

	require.NoError(t, repo.Delete(ctx, "a"))
	require.NoError(t, repo.Delete(ctx, "a"))
	_, err = repo.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

func TestInMemoryIdentityRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewInMemoryIdentityRepository()
	assert.ErrorIs(t, repo.Set(ctx, "a", domain.Identity{}), context.Canceled)
}

func TestInMemoryRoomRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRoomRepository()

	assert.ErrorIs(t, repo.Join(ctx, "", "a"), ErrEmptyRoomCode)

	require.NoError(t, repo.Join(ctx, "LOBBY", "b"))
	require.NoError(t, repo.Join(ctx, "LOBBY", "a"))
	require.NoError(t, repo.Join(ctx, "LOBBY", "a"))
	require.NoError(t, repo.Join(ctx, "OTHER", "c"))

	members, err := repo.MembersExcluding(ctx, "LOBBY", "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, members)

	members, err = repo.MembersExcluding(ctx, "LOBBY", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, members)
	assert.Equal(t, 2, repo.RoomCount())

	require.NoError(t, repo.Leave(ctx, "LOBBY", "a"))
	require.NoError(t, repo.Leave(ctx, "LOBBY", "a"))
	require.NoError(t, repo.Leave(ctx, "MISSING", "a"))
	require.NoError(t, repo.Leave(ctx, "LOBBY", "b"))
	assert.Equal(t, 1, repo.RoomCount())

	members, err = repo.MembersExcluding(ctx, "LOBBY", "")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestInMemoryPeerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryPeerRepository()
	peer := domain.NewPeer("127.0.0.1:1", "ua", 1)

	require.NoError(t, repo.Add(ctx, peer))
	assert.ErrorIs(t, repo.Add(ctx, peer), ErrPeerExists)

	got, err := repo.Get(ctx, peer.ID)
	require.NoError(t, err)
	assert.Same(t, peer, got)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Remove(ctx, peer.ID))
	_, err = repo.Get(ctx, peer.ID)
	assert.ErrorIs(t, err, ErrPeerNotFound)
}
