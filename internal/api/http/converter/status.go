package converter

import (
	"time"

	"github.com/immxrtalbeast/lobby_relay/internal/config"
	"github.com/immxrtalbeast/lobby_relay/internal/discord"
	"github.com/pion/webrtc/v3"
)

type LandingResponse struct {
	Name            string          `json:"name"`
	ConnectionCount int64           `json:"connectionCount"`
	Address         string          `json:"address"`
	DiscordWidget   *discord.Widget `json:"discordWidget"`
}

type HealthResponse struct {
	Uptime          float64 `json:"uptime"`
	ConnectionCount int64   `json:"connectionCount"`
	Address         string  `json:"address"`
	Name            string  `json:"name"`
}

type PeerConfigResponse struct {
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

func HealthToApi(name, address string, connections int64, uptime time.Duration) *HealthResponse {
	return &HealthResponse{
		Uptime:          uptime.Seconds(),
		ConnectionCount: connections,
		Address:         address,
		Name:            name,
	}
}

func ICEServersToApi(cfg config.WebRTCConfig) []webrtc.ICEServer {
	servers := make([]webrtc.ICEServer, 0, len(cfg.STUNServers)+len(cfg.TURNServers))
	for _, url := range cfg.STUNServers {
		if url == "" {
			continue
		}
		servers = append(servers, webrtc.ICEServer{URLs: []string{url}})
	}
	for _, turn := range cfg.TURNServers {
		if turn.URL == "" {
			continue
		}
		servers = append(servers, webrtc.ICEServer{
			URLs:           []string{turn.URL},
			Username:       turn.Username,
			Credential:     turn.Credential,
			CredentialType: webrtc.ICECredentialTypePassword,
		})
	}
	return servers
}
