// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blattodea-games/roachpoker/internal/auth"
	"github.com/blattodea-games/roachpoker/internal/cache"
	"github.com/blattodea-games/roachpoker/internal/config"
	"github.com/blattodea-games/roachpoker/internal/database"
	"github.com/blattodea-games/roachpoker/internal/game"
	"github.com/blattodea-games/roachpoker/internal/handlers"
	"github.com/blattodea-games/roachpoker/internal/models"
	"github.com/blattodea-games/roachpoker/internal/realtime"
	"github.com/blattodea-games/roachpoker/internal/ws"
)

const releaseVersion = "0.1.0"

func main() {
	cfg := config.New()
	cobra.CheckErr(newCmd(cfg).Execute())
}

func newCmd(cfg *config.Config) *cobra.Command {
	// A .env file, when present, seeds the environment before flags bind.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("could not load .env file: %v", err)
	}

	var issueTokenUser string

	cmd := &cobra.Command{
		Use:           "roachpoker",
		Short:         "Session server for a two-player bluffing card game: rooms, websockets, reconnection.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if issueTokenUser != "" {
				return issueToken(cfg, issueTokenUser)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	cfg.RegisterFlags(fs)
	fs.StringVar(&issueTokenUser, "issue-token", "", "mint a player token for the given username and exit")
	config.BindEnv(viper.New(), fs)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("roachpoker v{{.Version}}\n")

	return cmd
}

// issueToken mints a standalone player identity, for development and for
// driving the REST API from scripts.
func issueToken(cfg *config.Config, username string) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt-secret is required")
	}
	tokens := auth.NewTokenService(cfg.JWTSecret, auth.DefaultTokenLifetime)
	playerID := uuid.New()
	token, err := tokens.Mint(playerID, username)
	if err != nil {
		return err
	}
	fmt.Printf("player_id: %s\ntoken: %s\n", playerID, token)
	return nil
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logrus.StandardLogger()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log.SetLevel(level)
	if cfg.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
		return err
	}
	defer database.Close()
	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := cache.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPass); err != nil {
		return err
	}
	defer cache.Close()

	clock := clockwork.NewRealClock()
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry)

	defaults := models.DefaultRoomConfig()
	defaults.RespondTimeoutSec = cfg.RespondTimeoutSec
	defaults.ReconnectGraceSec = cfg.ReconnectGraceSec
	manager := game.NewRoomManager(registry, dispatcher, clock, defaults)

	tokens := auth.NewTokenService(cfg.JWTSecret, auth.DefaultTokenLifetime)

	// The monitor and the socket server reference each other: evictions
	// close sockets, sockets feed heartbeats. The eviction callback binds
	// the server pointer late to break the cycle; no connection can be
	// tracked before the server exists.
	var sockets *ws.Server
	monitor := realtime.NewMonitor(clock, cfg.SweepInterval, cfg.HeartbeatTimeout, func(connID uuid.UUID) {
		sockets.EvictConnection(connID)
	})
	sockets = ws.NewServer(ws.Deps{
		Tokens:     tokens,
		Manager:    manager,
		Registry:   registry,
		Dispatcher: dispatcher,
		Monitor:    monitor,
		Origins:    cfg.CORSOrigin,
		Log:        log,
	})

	rest := handlers.New(manager, tokens, cfg.PublicURL, log)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigin,
		AllowedMethods: []string{http.MethodHead, http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
	})

	// No global read/write timeouts: websocket connections are long-lived
	// and hijacked out of the server's control.
	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           corsHandler.Handler(rest.Router(sockets)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go monitor.Run(runCtx)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("roachpoker v%s listening on %s", releaseVersion, cfg.ListenAddr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Infof("received %s, shutting down", sig)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
