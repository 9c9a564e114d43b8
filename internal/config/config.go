package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	Name        string            `yaml:"name" env:"NAME"`
	Address     string            `yaml:"address" env:"ADDRESS"`
	HTTP        HTTPConfig        `yaml:"http"`
	TLS         TLSConfig         `yaml:"tls"`
	VersionGate VersionGateConfig `yaml:"version_gate"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Discord     DiscordConfig     `yaml:"discord"`
	WebRTC      WebRTCConfig      `yaml:"webrtc"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:""`
	CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type TLSConfig struct {
	Enabled  bool   `yaml:"enabled" env:"HTTPS" env-default:"false"`
	CertDir  string `yaml:"cert_dir" env:"SSLPATH"`
	CertFile string `yaml:"cert_file" env-default:"fullchain.pem"`
	KeyFile  string `yaml:"key_file" env-default:"privkey.pem"`
}

type VersionGateConfig struct {
	ClientName        string   `yaml:"client_name" env:"CLIENT_NAME" env-default:"CrewLink"`
	SupportedVersions []string `yaml:"supported_versions" env:"SUPPORTED_VERSIONS" env-separator:","`
}

type WebSocketConfig struct {
	ReadLimit    int64         `yaml:"read_limit" env-default:"65536"`
	SendBuffer   int           `yaml:"send_buffer" env-default:"64"`
	PingInterval time.Duration `yaml:"ping_interval" env-default:"25s"`
	PongWait     time.Duration `yaml:"pong_wait" env-default:"60s"`
	WriteWait    time.Duration `yaml:"write_wait" env-default:"10s"`
}

type DiscordConfig struct {
	GuildID         string        `yaml:"guild_id" env:"DISCORD_GUILD_ID"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env-default:"5m"`
	Timeout         time.Duration `yaml:"timeout" env-default:"5s"`
}

type WebRTCConfig struct {
	STUNServers []string     `yaml:"stun_servers" env:"STUN_SERVERS" env-separator:","`
	TURNServers []TURNServer `yaml:"turn_servers"`
}

type TURNServer struct {
	URL        string `yaml:"url"`
	Username   string `yaml:"username"`
	Credential string `yaml:"credential"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := LoadPath(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func LoadPath(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.New("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, errors.New("cannot read config: " + err.Error())
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

// CertPaths returns the certificate and key file paths used when TLS is enabled.
func (c TLSConfig) CertPaths() (string, string) {
	dir := c.CertDir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return filepath.Join(dir, c.CertFile), filepath.Join(dir, c.KeyFile)
}

// WithDefaults fills unset websocket settings, for callers that build the
// config by hand instead of loading it.
func (c WebSocketConfig) WithDefaults() WebSocketConfig {
	if c.ReadLimit <= 0 {
		c.ReadLimit = 64 << 10
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	return c
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":9736"
	}
	if c.Name == "" {
		c.Name = "Voice Relay"
	}
	if len(c.VersionGate.SupportedVersions) == 0 {
		c.VersionGate.SupportedVersions = []string{"1.2.0", "1.2.1"}
	}
	if len(c.WebRTC.STUNServers) == 0 {
		c.WebRTC.STUNServers = []string{"stun:stun.l.google.com:19302"}
	}
}

func (c *Config) validate() error {
	if c.Address == "" {
		return errors.New("address is required, set ADDRESS to the public address of this server")
	}
	if c.WebSocket.SendBuffer <= 0 {
		return errors.New("websocket send_buffer must be positive")
	}
	if c.WebSocket.PingInterval >= c.WebSocket.PongWait {
		return errors.New("websocket ping_interval must be shorter than pong_wait")
	}
	return nil
}
