package service

import (
	"context"
	"errors"
	"time"

	"github.com/immxrtalbeast/lobby_relay/internal/domain"
)

var (
	// ErrMalformedInput and ErrSpoofAttempt both terminate the offending connection.
	ErrMalformedInput = errors.New("malformed input")
	ErrSpoofAttempt   = errors.New("client id spoofing attempt")

	ErrSessionClosed      = errors.New("session closed")
	ErrDisconnected       = errors.New("client disconnected")
	ErrUnsupportedVersion = errors.New("unsupported client version")
)

// IsTerminal reports whether err requires the connection to be dropped.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrMalformedInput) ||
		errors.Is(err, ErrSpoofAttempt) ||
		errors.Is(err, ErrDisconnected)
}

type SignalingInteractor interface {
	Attach(ctx context.Context, peer *domain.Peer) (SessionHandler, error)
	ConnectionCount() int64
	Uptime() time.Duration
}

type SessionHandler interface {
	ID() string
	Dispatch(ctx context.Context, frame domain.Frame) error
	Disconnect(ctx context.Context)
}

type VersionChecker interface {
	Check(token string) (ClientInfo, error)
}
