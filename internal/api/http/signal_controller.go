package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/lobby_relay/internal/config"
	"github.com/immxrtalbeast/lobby_relay/internal/domain"
	"github.com/immxrtalbeast/lobby_relay/internal/service"
	"github.com/immxrtalbeast/lobby_relay/lib/logger/sl"
)

type SignalController struct {
	signaling service.SignalingInteractor
	gate      service.VersionChecker
	upgrader  websocket.Upgrader
	cfg       config.WebSocketConfig
	log       *slog.Logger
}

func NewSignalController(
	signaling service.SignalingInteractor,
	gate service.VersionChecker,
	cfg config.WebSocketConfig,
	log *slog.Logger,
) *SignalController {
	if log == nil {
		log = slog.Default()
	}
	return &SignalController{
		signaling: signaling,
		gate:      gate,
		cfg:       cfg.WithDefaults(),
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Connect runs the version gate, upgrades the request and serves the
// connection until it closes.
func (c *SignalController) Connect(ctx *gin.Context) {
	const op = "api.http.signal.connect"

	userAgent := ctx.GetHeader("User-Agent")
	log := c.log.With(
		slog.String("op", op),
		slog.String("remote_addr", ctx.ClientIP()),
	)

	if _, err := c.gate.Check(userAgent); err != nil {
		var versionErr *service.VersionError
		if errors.As(err, &versionErr) {
			log.Info("rejected client", slog.String("user_agent", userAgent))
			ctx.AbortWithStatusJSON(http.StatusForbidden, versionErr)
			return
		}
		log.Error("version gate failed", sl.Err(err))
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", sl.Err(err))
		return
	}

	peer := domain.NewPeer(ctx.ClientIP(), userAgent, c.cfg.SendBuffer)
	session, err := c.signaling.Attach(context.Background(), peer)
	if err != nil {
		log.Error("failed to attach connection", sl.Err(err))
		writeClose(conn, websocket.CloseInternalServerErr, "internal error", c.cfg.WriteWait)
		conn.Close()
		return
	}

	go c.writePump(conn, peer)
	c.readPump(conn, session, log.With(slog.String("connection_id", session.ID())))
}

func (c *SignalController) readPump(conn *websocket.Conn, session service.SessionHandler, log *slog.Logger) {
	ctx := context.Background()
	defer func() {
		session.Disconnect(ctx)
		conn.Close()
	}()

	conn.SetReadLimit(c.cfg.ReadLimit)
	c.extendReadDeadline(conn, log)
	conn.SetPongHandler(func(string) error {
		c.extendReadDeadline(conn, log)
		return nil
	})

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("connection read failed", sl.Err(err))
			}
			return
		}
		c.extendReadDeadline(conn, log)

		if messageType != websocket.TextMessage {
			log.Error("unexpected binary frame, terminating connection")
			writeClose(conn, websocket.CloseUnsupportedData, "expected text frame", c.cfg.WriteWait)
			return
		}

		var frame domain.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Error("undecodable frame, terminating connection", sl.Err(err))
			writeClose(conn, websocket.ClosePolicyViolation, "malformed input", c.cfg.WriteWait)
			return
		}

		err = session.Dispatch(ctx, frame)
		switch {
		case err == nil:
			continue
		case errors.Is(err, service.ErrSessionClosed):
			return
		case errors.Is(err, service.ErrDisconnected):
			writeClose(conn, websocket.CloseNormalClosure, "", c.cfg.WriteWait)
		case errors.Is(err, service.ErrSpoofAttempt):
			writeClose(conn, websocket.ClosePolicyViolation, "spoofing attempt", c.cfg.WriteWait)
		case errors.Is(err, service.ErrMalformedInput):
			writeClose(conn, websocket.ClosePolicyViolation, "malformed input", c.cfg.WriteWait)
		default:
			writeClose(conn, websocket.CloseInternalServerErr, "internal error", c.cfg.WriteWait)
		}
		return
	}
}

func (c *SignalController) writePump(conn *websocket.Conn, peer *domain.Peer) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event := <-peer.Events:
			if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
		case <-peer.Done():
			return
		}
	}
}

func (c *SignalController) extendReadDeadline(conn *websocket.Conn, log *slog.Logger) {
	if err := conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
		log.Debug("failed to set read deadline", sl.Err(err))
	}
}

func writeClose(conn *websocket.Conn, code int, reason string, wait time.Duration) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wait))
}
