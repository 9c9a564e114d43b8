package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/immxrtalbeast/lobby_relay/internal/domain"
	"github.com/immxrtalbeast/lobby_relay/internal/repository"
	"github.com/immxrtalbeast/lobby_relay/lib/logger/sl"
)

type eventHandler func(s *Session, ctx context.Context, args []json.RawMessage) error

// handlers is the per-event dispatch table. disconnect is normally raised by
// the transport through Disconnect; a client sending it gets the same teardown.
var handlers = map[string]eventHandler{
	domain.EventJoin:       (*Session).handleJoin,
	domain.EventID:         (*Session).handleID,
	domain.EventLeave:      (*Session).handleLeave,
	domain.EventSignal:     (*Session).handleSignal,
	domain.EventDisconnect: (*Session).handleDisconnect,
}

// Session is the protocol state of one connection. All fields are guarded by
// the owning service's mutex.
type Session struct {
	svc    *SignalingService
	peer   *domain.Peer
	log    *slog.Logger
	room   string
	closed bool
}

func newSession(svc *SignalingService, peer *domain.Peer, log *slog.Logger) *Session {
	return &Session{
		svc:  svc,
		peer: peer,
		log:  log,
	}
}

func (s *Session) ID() string {
	return s.peer.ID
}

// Room returns the lobby code the connection is in, or "" when it is in none.
func (s *Session) Room() string {
	s.svc.mu.Lock()
	defer s.svc.mu.Unlock()
	return s.room
}

// Dispatch runs one inbound event to completion. A returned error matching
// IsTerminal means the caller must close the connection.
func (s *Session) Dispatch(ctx context.Context, frame domain.Frame) error {
	handler, ok := handlers[frame.Event]
	if !ok {
		s.log.Debug("ignoring unknown event", slog.String("event", frame.Event))
		return nil
	}

	s.svc.mu.Lock()
	defer s.svc.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	err := handler(s, ctx, frame.Args)
	switch {
	case err == nil:
	case errors.Is(err, ErrSpoofAttempt):
		s.log.Error("spoofing attempt, terminating connection", slog.String("event", frame.Event), sl.Err(err))
	case errors.Is(err, ErrMalformedInput):
		s.log.Error("malformed event, terminating connection", slog.String("event", frame.Event), sl.Err(err))
	case errors.Is(err, ErrDisconnected):
		s.log.Debug("client requested disconnect")
	default:
		s.log.Error("event failed", slog.String("event", frame.Event), sl.Err(err))
	}
	return err
}

// Disconnect tears the session down. Only the first call has an effect.
func (s *Session) Disconnect(ctx context.Context) {
	s.svc.mu.Lock()
	defer s.svc.mu.Unlock()

	s.teardown(ctx)
}

func (s *Session) handleJoin(ctx context.Context, args []json.RawMessage) error {
	const op = "service.session.join"

	code, ok := stringArg(args, 0)
	if !ok {
		return malformed(op, "lobby code must be a string")
	}
	if code == "" {
		return malformed(op, "lobby code is empty")
	}
	playerID, ok := integerArg(args, 1)
	if !ok {
		return malformed(op, "player id must be an integer")
	}
	wireClientID, ok := integerArg(args, 2)
	if !ok {
		return malformed(op, "client id must be an integer")
	}

	identity := domain.NewIdentity(playerID, wireClientID)

	members, err := s.svc.rooms.MembersExcluding(ctx, code, s.peer.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	clients := make(domain.Clients, len(members))
	for _, member := range members {
		stored, err := s.svc.identities.Get(ctx, member)
		if err != nil {
			if errors.Is(err, repository.ErrIdentityNotFound) {
				continue
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		if domain.SameClient(stored.ClientID, identity.ClientID) {
			return fmt.Errorf("%s: client id %d already used by %s in room %q: %w",
				op, *identity.ClientID, member, code, ErrSpoofAttempt)
		}
		clients[member] = stored
	}

	if s.room != "" && s.room != code {
		if err := s.svc.rooms.Leave(ctx, s.room, s.peer.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := s.svc.rooms.Join(ctx, code, s.peer.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.room = code

	notified := s.svc.relay.BroadcastExcluding(ctx, code, s.peer.ID, domain.JoinMessage(s.peer.ID, identity))
	s.svc.relay.SendTo(ctx, s.peer.ID, domain.SetClientsMessage(clients))

	s.log.Info("joined room",
		slog.String("room", code),
		slog.Int64("player_id", playerID),
		slog.Int("members", len(members)),
		slog.Int("notified", notified),
	)
	return nil
}

func (s *Session) handleID(ctx context.Context, args []json.RawMessage) error {
	const op = "service.session.id"

	playerID, ok := integerArg(args, 0)
	if !ok {
		return malformed(op, "player id must be an integer")
	}
	wireClientID, ok := integerArg(args, 1)
	if !ok {
		return malformed(op, "client id must be an integer")
	}

	identity := domain.NewIdentity(playerID, wireClientID)

	stored, err := s.svc.identities.Get(ctx, s.peer.ID)
	switch {
	case err == nil:
		if stored.HasClientID() && !domain.ClientIDEqual(stored.ClientID, identity.ClientID) {
			return fmt.Errorf("%s: client id %d cannot change: %w", op, *stored.ClientID, ErrSpoofAttempt)
		}
	case errors.Is(err, repository.ErrIdentityNotFound):
	default:
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.svc.identities.Set(ctx, s.peer.ID, identity); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.room != "" {
		s.svc.relay.BroadcastExcluding(ctx, s.room, s.peer.ID, domain.SetClientMessage(s.peer.ID, identity))
	}

	s.log.Debug("identity set", slog.Int64("player_id", playerID), slog.Bool("has_client_id", identity.HasClientID()))
	return nil
}

func (s *Session) handleLeave(ctx context.Context, _ []json.RawMessage) error {
	const op = "service.session.leave"

	if s.room == "" {
		return nil
	}

	if err := s.svc.rooms.Leave(ctx, s.room, s.peer.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.svc.identities.Delete(ctx, s.peer.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("left room", slog.String("room", s.room))
	s.room = ""
	return nil
}

func (s *Session) handleSignal(ctx context.Context, args []json.RawMessage) error {
	const op = "service.session.signal"

	raw, ok := rawArg(args, 0)
	if !ok {
		return malformed(op, "signal payload is missing")
	}

	var req domain.SignalRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return malformed(op, "signal payload must be an object with a string target: %v", err)
	}
	if err := s.svc.validate.Struct(req); err != nil {
		return malformed(op, "invalid signal payload: %v", err)
	}

	delivered := s.svc.relay.SendTo(ctx, req.To, domain.SignalDeliveryMessage(domain.SignalDelivery{
		Data: req.Data,
		From: s.peer.ID,
	}))
	if !delivered {
		s.log.Debug("signal not delivered", slog.String("to", req.To))
	}
	return nil
}

func (s *Session) handleDisconnect(ctx context.Context, _ []json.RawMessage) error {
	s.teardown(ctx)
	return ErrDisconnected
}

// teardown must be called with the service mutex held.
func (s *Session) teardown(ctx context.Context) {
	if s.closed {
		return
	}
	s.closed = true

	// Cleanup must finish even if the caller's context is already canceled.
	ctx = context.WithoutCancel(ctx)

	if s.room != "" {
		if err := s.svc.rooms.Leave(ctx, s.room, s.peer.ID); err != nil {
			s.log.Error("failed to leave room on disconnect", sl.Err(err))
		}
		s.room = ""
	}
	if err := s.svc.identities.Delete(ctx, s.peer.ID); err != nil {
		s.log.Error("failed to delete identity on disconnect", sl.Err(err))
	}
	if err := s.svc.peers.Remove(ctx, s.peer.ID); err != nil {
		s.log.Error("failed to remove peer on disconnect", sl.Err(err))
	}
	s.peer.Close()

	remaining := s.svc.releaseConnection()
	s.log.Info("connection closed", slog.Int64("connections", remaining))
}
