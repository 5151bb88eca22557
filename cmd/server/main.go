package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zksprint/land-battle-arbiter/internal/config"
	"github.com/zksprint/land-battle-arbiter/internal/handler"
	"github.com/zksprint/land-battle-arbiter/internal/identity"
	"github.com/zksprint/land-battle-arbiter/internal/lobby"
	"github.com/zksprint/land-battle-arbiter/internal/logger"
	"github.com/zksprint/land-battle-arbiter/internal/middleware"
	"github.com/zksprint/land-battle-arbiter/internal/repository"
	"github.com/zksprint/land-battle-arbiter/internal/repository/postgres"
	redisrepo "github.com/zksprint/land-battle-arbiter/internal/repository/redis"
)

func main() {
	logger.Init()
	cfg := config.Load()

	// The arbiter identity is the one piece of configuration the process
	// cannot run without.
	ident, err := identity.New(cfg.ArbiterKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Arbiter identity unavailable (set ARBITER_PRIVATE_KEY)")
	}
	log.Info().Str("arbiter", ident.Address).Msg("Arbiter identity derived")

	// Database: durable match history. Optional; the arbiter adjudicates
	// fine without it.
	var recorder repository.MatchRecorder
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("Database unavailable, match history disabled")
		} else {
			defer db.Close()
			recorder = postgres.NewMatchRepo(db)
		}
	}

	// Redis: live match status mirror. Also optional.
	var cache repository.MatchStatusCache
	if cfg.RedisURL != "" {
		redisClient, err := redisrepo.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error().Err(err).Msg("Redis unavailable, status mirror disabled")
		} else {
			defer redisClient.Close()
			cache = redisClient
		}
	}

	lob := lobby.New(ident.Address, recorder, cache)
	lobbyHandler := handler.NewLobbyHandler(lob)
	gameHandler := handler.NewGameHandler(lob)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /join", lobbyHandler.Join)
	mux.HandleFunc("GET /join/{pubkey}", lobbyHandler.JoinGet)
	mux.HandleFunc("GET /game", gameHandler.ServeGame)

	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go lob.Reap(ctx)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Arbiter listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down arbiter")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	lob.Shutdown(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Arbiter stopped")
}
