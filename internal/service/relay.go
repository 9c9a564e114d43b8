package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/immxrtalbeast/lobby_relay/internal/domain"
	"github.com/immxrtalbeast/lobby_relay/internal/repository"
	"github.com/immxrtalbeast/lobby_relay/lib/logger/sl"
)

// Relay delivers events to single connections or to the rest of a room.
// Delivery is fire-and-forget: unknown targets and full queues drop silently.
type Relay struct {
	peers repository.PeerRepository
	rooms repository.RoomRepository
	log   *slog.Logger
}

func NewRelay(peers repository.PeerRepository, rooms repository.RoomRepository, log *slog.Logger) *Relay {
	if log == nil {
		log = slog.Default()
	}
	return &Relay{
		peers: peers,
		rooms: rooms,
		log:   log,
	}
}

// SendTo reports whether the event was queued for connectionID.
func (r *Relay) SendTo(ctx context.Context, connectionID string, msg domain.Message) bool {
	peer, err := r.peers.Get(ctx, connectionID)
	if err != nil {
		if !errors.Is(err, repository.ErrPeerNotFound) {
			r.log.Error("failed to resolve peer", slog.String("peer", connectionID), sl.Err(err))
		}
		return false
	}

	if !peer.EnqueueEvent(msg) {
		r.log.Debug("dropping event", slog.String("peer", connectionID), slog.String("event", msg.Event))
		return false
	}
	return true
}

// BroadcastExcluding sends msg to every member of code except exclude and
// returns how many members it was queued for.
func (r *Relay) BroadcastExcluding(ctx context.Context, code string, exclude string, msg domain.Message) int {
	members, err := r.rooms.MembersExcluding(ctx, code, exclude)
	if err != nil {
		r.log.Error("failed to list room members", slog.String("room", code), sl.Err(err))
		return 0
	}

	delivered := 0
	for _, id := range members {
		if r.SendTo(ctx, id, msg) {
			delivered++
		}
	}
	return delivered
}
