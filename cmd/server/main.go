package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/Fubalt/Blindtest-web-app/auth"
	"github.com/Fubalt/Blindtest-web-app/config"
	"github.com/Fubalt/Blindtest-web-app/crypto"
	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/Fubalt/Blindtest-web-app/game"
	"github.com/Fubalt/Blindtest-web-app/logger"
	"github.com/Fubalt/Blindtest-web-app/migrations"
	"github.com/Fubalt/Blindtest-web-app/playlist"
	"github.com/Fubalt/Blindtest-web-app/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type repository interface {
	auth.UserRepo
	playlist.PlaylistRepo
	game.RoomStore
}

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	r.Use(gin.Recovery(), logger.GinMiddleware())

	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
	}))

	return r
}

// openRepository uses Postgres when a url is configured and falls back to the
// in-process store otherwise.
func openRepository(ctx context.Context, cfg *config.Config) (repository, func(), error) {
	if cfg.Postgres.URL == "" {
		log.Warn().Msg("no postgres url configured, state lives in memory only")
		return storage.NewMemoryRepo(), func() {}, nil
	}

	if err := migrations.Migrate(cfg.Postgres.URL); err != nil {
		return nil, nil, err
	}

	pgRepo, err := storage.NewPostgresRepo(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := pgRepo.Ping(ctx); err != nil {
		pgRepo.Close()
		return nil, nil, err
	}
	return pgRepo, pgRepo.Close, nil
}

// withRoomCache puts the Redis snapshot cache in front of rooms when an
// address is configured and reachable.
func withRoomCache(ctx context.Context, cfg *config.Config, rooms repository) (game.RoomStore, func()) {
	if cfg.Redis.Addr == "" {
		return rooms, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, serving rooms without cache")
		client.Close()
		return rooms, func() {}
	}
	log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.SnapshotTTL).Msg("room snapshot cache enabled")
	return storage.NewRedisRoomCache(rooms, client, cfg.Redis.SnapshotTTL), func() { client.Close() }
}

// NewRouter builds the services on top of the given stores and mounts every
// route on a fresh engine.
func NewRouter(cfg *config.Config, repo repository, rooms game.RoomStore) *gin.Engine {
	tokenManager := crypto.NewJWTManager(cfg.Auth.JWTKey, cfg.Auth.TokenAge)
	authService := auth.NewService(repo, tokenManager)
	authHandler := auth.NewAuthHandler(authService, cfg.Auth.TokenAge)

	playlistHandler := playlist.NewPlaylistHandler(playlist.NewService(repo))

	roomService := game.NewService(rooms, repo, repo, game.NewIdGen(), game.Options{
		ServerTiming: cfg.Game.ServerTiming,
		DefaultSettings: domain.Settings{
			Rounds:       cfg.Game.DefaultRounds,
			TimerSeconds: cfg.Game.DefaultTimerSeconds,
		},
		GuessLimiter: game.NewGuessLimiter(cfg.Game.GuessRate, cfg.Game.GuessBurst),
	})
	gameHandler := game.NewGameHandler(roomService)

	r := CreateServer(cfg.Server.AllowedOrigins)

	{
		authGroup := r.Group("/auth")
		authGroup.POST("/login", authHandler.LoginHandler)
		authGroup.POST("/logout", authHandler.LogoutHandler)
		authGroup.GET("/refresh", authHandler.RefreshSessionHandler)
	}

	{
		api := r.Group("/api")
		api.Use(authHandler.RequireAuthMiddleware(2 * time.Second))
		api.GET("/me", authHandler.MeHandler)
		playlistHandler.RegisterRoutes(api)
		gameHandler.RegisterRoutes(api)
	}

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	logger.Setup(cfg.Server.Debug, cfg.Server.PrettyLogs)
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	repo, closeRepo, err := openRepository(startupCtx, cfg)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("opening repository")
	}
	defer closeRepo()

	rooms, closeCache := withRoomCache(startupCtx, cfg, repo)
	defer closeCache()
	cancel()

	r := NewRouter(cfg, repo, rooms)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server stopped")
		}
	}()
	log.Info().Str("addr", cfg.Server.Addr).Msg("server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	<-sigCh
	log.Info().Msg("SIGTERM or SIGINT received, draining requests")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("shutting down now")
}
