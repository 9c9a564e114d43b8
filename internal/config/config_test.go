package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadPath_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "address: relay.example.com\n")

	cfg, err := LoadPath(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "relay.example.com", cfg.Address)
	assert.Equal(t, ":9736", cfg.HTTP.Address)
	assert.Equal(t, "Voice Relay", cfg.Name)
	assert.Equal(t, "CrewLink", cfg.VersionGate.ClientName)
	assert.Equal(t, []string{"1.2.0", "1.2.1"}, cfg.VersionGate.SupportedVersions)
	assert.Equal(t, 64, cfg.WebSocket.SendBuffer)
	assert.Equal(t, 25*time.Second, cfg.WebSocket.PingInterval)
	assert.Equal(t, 5*time.Minute, cfg.Discord.RefreshInterval)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.WebRTC.STUNServers)
	assert.False(t, cfg.TLS.Enabled)
}

func TestLoadPath_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "address: from-file\nname: From File\n")
	t.Setenv("ADDRESS", "from-env")
	t.Setenv("SUPPORTED_VERSIONS", "2.0.0,2.0.1")

	cfg, err := LoadPath(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Address)
	assert.Equal(t, "From File", cfg.Name)
	assert.Equal(t, []string{"2.0.0", "2.0.1"}, cfg.VersionGate.SupportedVersions)
}

func TestLoadPath_RequiresAddress(t *testing.T) {
	path := writeConfig(t, "name: nameless\n")

	_, err := LoadPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADDRESS")
}

func TestLoadPath_RejectsBadKeepalive(t *testing.T) {
	path := writeConfig(t, "address: a\nwebsocket:\n  ping_interval: 90s\n  pong_wait: 60s\n")

	_, err := LoadPath(path)
	assert.Error(t, err)
}

func TestLoadPath_MissingFile(t *testing.T) {
	_, err := LoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMustLoadPath_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}

func TestTLSConfig_CertPaths(t *testing.T) {
	cfg := TLSConfig{CertDir: "/etc/relay", CertFile: "fullchain.pem", KeyFile: "privkey.pem"}

	cert, key := cfg.CertPaths()
	assert.Equal(t, "/etc/relay/fullchain.pem", cert)
	assert.Equal(t, "/etc/relay/privkey.pem", key)
}

func TestWebSocketConfig_WithDefaults(t *testing.T) {
	cfg := WebSocketConfig{SendBuffer: 8}.WithDefaults()

	assert.Equal(t, 8, cfg.SendBuffer)
	assert.Equal(t, int64(64<<10), cfg.ReadLimit)
	assert.Equal(t, 25*time.Second, cfg.PingInterval)
	assert.Equal(t, 60*time.Second, cfg.PongWait)
	assert.Equal(t, 10*time.Second, cfg.WriteWait)
}
