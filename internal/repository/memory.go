package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/immxrtalbeast/lobby_relay/internal/domain"
)

var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrPeerNotFound     = errors.New("peer not found")
	ErrPeerExists       = errors.New("peer already registered")
	ErrEmptyRoomCode    = errors.New("room code is empty")
)

type InMemoryIdentityRepository struct {
	mu         sync.RWMutex
	identities map[string]domain.Identity
}

func NewInMemoryIdentityRepository() *InMemoryIdentityRepository {
	return &InMemoryIdentityRepository{
		identities: make(map[string]domain.Identity),
	}
}

func (r *InMemoryIdentityRepository) Get(ctx context.Context, connectionID string) (domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return domain.Identity{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.identities[connectionID]
	if !ok {
		return domain.Identity{}, ErrIdentityNotFound
	}

	return identity, nil
}

func (r *InMemoryIdentityRepository) Set(ctx context.Context, connectionID string, identity domain.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.identities[connectionID] = identity
	return nil
}

func (r *InMemoryIdentityRepository) Delete(ctx context.Context, connectionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.identities, connectionID)
	return nil
}

type InMemoryRoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

func NewInMemoryRoomRepository() *InMemoryRoomRepository {
	return &InMemoryRoomRepository{
		rooms: make(map[string]map[string]struct{}),
	}
}

func (r *InMemoryRoomRepository) Join(ctx context.Context, code string, connectionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if code == "" {
		return ErrEmptyRoomCode
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[code]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[code] = members
	}
	members[connectionID] = struct{}{}
	return nil
}

func (r *InMemoryRoomRepository) Leave(ctx context.Context, code string, connectionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[code]
	if !ok {
		return nil
	}

	delete(members, connectionID)
	if len(members) == 0 {
		delete(r.rooms, code)
	}
	return nil
}

// MembersExcluding returns the room members other than connectionID, sorted.
func (r *InMemoryRoomRepository) MembersExcluding(ctx context.Context, code string, connectionID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[code]
	result := make([]string, 0, len(members))
	for id := range members {
		if id == connectionID {
			continue
		}
		result = append(result, id)
	}
	sort.Strings(result)
	return result, nil
}

// RoomCount reports how many non-empty rooms exist.
func (r *InMemoryRoomRepository) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

type InMemoryPeerRepository struct {
	mu    sync.RWMutex
	peers map[string]*domain.Peer
}

func NewInMemoryPeerRepository() *InMemoryPeerRepository {
	return &InMemoryPeerRepository{
		peers: make(map[string]*domain.Peer),
	}
}

func (r *InMemoryPeerRepository) Add(ctx context.Context, peer *domain.Peer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if peer == nil {
		return errors.New("peer is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.peers[peer.ID]; ok {
		return ErrPeerExists
	}

	r.peers[peer.ID] = peer
	return nil
}

func (r *InMemoryPeerRepository) Get(ctx context.Context, connectionID string) (*domain.Peer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	peer, ok := r.peers[connectionID]
	if !ok {
		return nil, ErrPeerNotFound
	}

	return peer, nil
}

func (r *InMemoryPeerRepository) Remove(ctx context.Context, connectionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.peers, connectionID)
	return nil
}

func (r *InMemoryPeerRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.peers), nil
}
