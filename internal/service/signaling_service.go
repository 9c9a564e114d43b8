package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/immxrtalbeast/lobby_relay/internal/domain"
	"github.com/immxrtalbeast/lobby_relay/internal/repository"
)

// SignalingService owns the registry, room membership and peer directory.
// Every event from every connection is handled under mu, so check-then-act
// sequences in join and id never interleave with other mutations.
type SignalingService struct {
	mu         sync.Mutex
	identities repository.IdentityRepository
	rooms      repository.RoomRepository
	peers      repository.PeerRepository
	relay      *Relay
	validate   *validator.Validate
	log        *slog.Logger

	connections atomic.Int64
	startedAt   time.Time
}

func NewSignalingService(
	identities repository.IdentityRepository,
	rooms repository.RoomRepository,
	peers repository.PeerRepository,
	log *slog.Logger,
) *SignalingService {
	if log == nil {
		log = slog.Default()
	}
	return &SignalingService{
		identities: identities,
		rooms:      rooms,
		peers:      peers,
		relay:      NewRelay(peers, rooms, log),
		validate:   newValidator(),
		log:        log,
		startedAt:  time.Now(),
	}
}

// Attach admits a peer that already passed the version gate and returns its
// session. The live connection count includes it until the session is torn down.
func (s *SignalingService) Attach(ctx context.Context, peer *domain.Peer) (SessionHandler, error) {
	const op = "service.signaling.attach"

	if peer == nil {
		return nil, fmt.Errorf("%s: peer is required", op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.peers.Add(ctx, peer); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	count := s.connections.Add(1)

	log := s.log.With(
		slog.String("connection_id", peer.ID),
		slog.String("remote_addr", peer.RemoteAddr),
	)
	log.Info("connection admitted", slog.Int64("connections", count))

	return newSession(s, peer, log), nil
}

// ConnectionCount is the number of admitted, not yet torn down connections.
func (s *SignalingService) ConnectionCount() int64 {
	return s.connections.Load()
}

func (s *SignalingService) Uptime() time.Duration {
	return time.Since(s.startedAt)
}

func (s *SignalingService) releaseConnection() int64 {
	for {
		current := s.connections.Load()
		if current <= 0 {
			return 0
		}
		if s.connections.CompareAndSwap(current, current-1) {
			return current - 1
		}
	}
}
