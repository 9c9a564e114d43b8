package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/lobby_relay/internal/api/http/converter"
	"github.com/immxrtalbeast/lobby_relay/internal/discord"
	"github.com/immxrtalbeast/lobby_relay/internal/service"
	"github.com/immxrtalbeast/lobby_relay/lib/logger/sl"
	"github.com/pion/webrtc/v3"
)

type WidgetProvider interface {
	Widget(ctx context.Context) (*discord.Widget, error)
}

type StatusController struct {
	signaling  service.SignalingInteractor
	widgets    WidgetProvider
	iceServers []webrtc.ICEServer
	name       string
	address    string
	log        *slog.Logger
}

func NewStatusController(
	signaling service.SignalingInteractor,
	widgets WidgetProvider,
	iceServers []webrtc.ICEServer,
	name string,
	address string,
	log *slog.Logger,
) *StatusController {
	if log == nil {
		log = slog.Default()
	}
	return &StatusController{
		signaling:  signaling,
		widgets:    widgets,
		iceServers: iceServers,
		name:       name,
		address:    address,
		log:        log,
	}
}

func (c *StatusController) Landing(ctx *gin.Context) {
	resp := converter.LandingResponse{
		Name:            c.name,
		ConnectionCount: c.signaling.ConnectionCount(),
		Address:         c.address,
		DiscordWidget:   c.widget(ctx.Request.Context()),
	}

	ctx.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: landingTemplateName,
		HTMLData: resp,
		JSONData: resp,
	})
}

func (c *StatusController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, converter.HealthToApi(
		c.name,
		c.address,
		c.signaling.ConnectionCount(),
		c.signaling.Uptime(),
	))
}

func (c *StatusController) PeerConfig(ctx *gin.Context) {
	servers := c.iceServers
	if servers == nil {
		servers = []webrtc.ICEServer{}
	}
	ctx.JSON(http.StatusOK, converter.PeerConfigResponse{ICEServers: servers})
}

func (c *StatusController) widget(ctx context.Context) *discord.Widget {
	if c.widgets == nil {
		return nil
	}

	widget, err := c.widgets.Widget(ctx)
	if err != nil {
		if !errors.Is(err, discord.ErrWidgetDisabled) {
			c.log.Warn("discord widget unavailable", sl.Err(err))
		}
		return nil
	}
	return widget
}
