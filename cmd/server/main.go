package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"varejopos/internal/config"
	"varejopos/internal/infra"
	"varejopos/internal/repository"
	"varejopos/internal/router"
	"varejopos/internal/service"
	"varejopos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Billing gateway circuit breaker — shared between the sale engine and
	// anything else that talks to the provider.
	billingCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	// Stock balance audit cron: recomputes the cached product balances from
	// the approved ledger history and repairs drift.
	estoqueRepo := repository.NewEstoqueRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	configRepo := repository.NewConfiguracaoRepository(db)
	configSvc := service.NewConfiguracaoService(configRepo, rdb)
	estoqueSvc := service.NewEstoqueService(estoqueRepo, produtoRepo, configSvc)
	worker.StartEstoqueAudit(ctx, worker.EstoqueAuditConfig{
		EstoqueRepo: estoqueRepo,
		EstoqueSvc:  estoqueSvc,
		Interval:    time.Duration(cfg.StockAuditIntervalSec) * time.Second,
	})

	r := router.New(cfg, db, rdb, billingCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("varejopos backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
