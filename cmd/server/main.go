package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/rhyrak/go-registrar/internal/config"
	"github.com/rhyrak/go-registrar/internal/logger"
	"github.com/rhyrak/go-registrar/internal/store"
)

func newRouter(s *server) *gin.Engine {
	gin.SetMode(s.cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = s.cfg.MaxUploadBytes

	corsConfig := cors.DefaultConfig()
	if len(s.cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = s.cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	r.GET("/health", handleHealth)

	runs := r.Group("/runs")
	{
		runs.GET("", s.handleListRuns)
		runs.POST("", s.handlePostRun)
		runs.GET("/:id", s.handleGetRun)
		runs.GET("/:id/:artifact", s.handleGetArtifact)
		runs.DELETE("/:id", s.handleDeleteRun)
	}
	return r
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreBackend).
		Msg("Starting registrar server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runStore, closeStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open run store")
	}
	defer closeStore()

	var inflight sync.WaitGroup
	s := &server{
		store: runStore,
		cfg:   cfg,
		log:   log,
		spawn: func(fn func()) {
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				fn()
			}()
		},
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: newRouter(s),
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Simulations are not cancellable; let running ones land in the store.
	inflight.Wait()
	log.Info().Msg("Shutdown complete")
}
