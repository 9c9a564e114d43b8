package repository

import (
	"context"

	"github.com/immxrtalbeast/lobby_relay/internal/domain"
)

// IdentityRepository is the connection registry: connection id -> declared identity.
type IdentityRepository interface {
	Get(ctx context.Context, connectionID string) (domain.Identity, error)
	Set(ctx context.Context, connectionID string, identity domain.Identity) error
	Delete(ctx context.Context, connectionID string) error
}

// RoomRepository tracks lobby membership by lobby code.
type RoomRepository interface {
	Join(ctx context.Context, code string, connectionID string) error
	Leave(ctx context.Context, code string, connectionID string) error
	MembersExcluding(ctx context.Context, code string, connectionID string) ([]string, error)
}

// PeerRepository resolves connection ids to live peers.
type PeerRepository interface {
	Add(ctx context.Context, peer *domain.Peer) error
	Get(ctx context.Context, connectionID string) (*domain.Peer, error)
	Remove(ctx context.Context, connectionID string) error
	Count(ctx context.Context) (int, error)
}
