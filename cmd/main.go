package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	httpapi "github.com/immxrtalbeast/lobby_relay/internal/api/http"
	"github.com/immxrtalbeast/lobby_relay/internal/api/http/converter"
	"github.com/immxrtalbeast/lobby_relay/internal/config"
	"github.com/immxrtalbeast/lobby_relay/internal/discord"
	"github.com/immxrtalbeast/lobby_relay/internal/repository"
	"github.com/immxrtalbeast/lobby_relay/internal/service"
	"github.com/immxrtalbeast/lobby_relay/lib/logger/sl"
	"github.com/immxrtalbeast/lobby_relay/lib/logger/slogpretty"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	if cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	gate, err := service.NewVersionGate(cfg.VersionGate.ClientName, cfg.VersionGate.SupportedVersions)
	if err != nil {
		log.Error("failed to build version gate", sl.Err(err))
		os.Exit(1)
	}

	signaling := service.NewSignalingService(
		repository.NewInMemoryIdentityRepository(),
		repository.NewInMemoryRoomRepository(),
		repository.NewInMemoryPeerRepository(),
		log,
	)

	widgets := discord.NewWidgetFetcher(cfg.Discord.GuildID, cfg.Discord.RefreshInterval, cfg.Discord.Timeout, log)

	signalController := httpapi.NewSignalController(signaling, gate, cfg.WebSocket, log)
	statusController := httpapi.NewStatusController(
		signaling,
		widgets,
		converter.ICEServersToApi(cfg.WebRTC),
		cfg.Name,
		cfg.Address,
		log,
	)

	router := httpapi.SetupRouter(signalController, statusController, cfg.HTTP.CORSOrigins)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting application",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("address", cfg.Address),
			slog.Bool("tls", cfg.TLS.Enabled),
			slog.Any("supported_versions", gate.Supported()),
		)
		serveErr <- serve(srv, cfg.TLS)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", sl.Err(err))
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	log.Info("shutting down", slog.Int64("connections", signaling.ConnectionCount()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down http server", sl.Err(err))
		os.Exit(1)
	}
}

func serve(srv *http.Server, tls config.TLSConfig) error {
	if !tls.Enabled {
		return srv.ListenAndServe()
	}
	certFile, keyFile := tls.CertPaths()
	return srv.ListenAndServeTLS(certFile, keyFile)
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
