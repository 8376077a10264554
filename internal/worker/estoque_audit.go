package worker

// estoque_audit.go
// Background goroutine that periodically audits the denormalized stock
// balance on produtos against the recomputed sum of APROVADO ledger entries
// and repairs any drift. The ledger is the source of truth; the column is a
// cache that can go stale if a write path ever misses the bump.

import (
	"context"
	"time"

	"varejopos/internal/repository"
	"varejopos/internal/service"

	"github.com/rs/zerolog/log"
)

// EstoqueAuditConfig holds all dependencies for the audit goroutine.
type EstoqueAuditConfig struct {
	EstoqueRepo repository.EstoqueRepository
	EstoqueSvc  service.EstoqueService
	Interval    time.Duration
}

// StartEstoqueAudit launches a background goroutine that ticks on the
// configured interval and recalculates every product with movement history.
// It respects the context for graceful shutdown.
func StartEstoqueAudit(ctx context.Context, cfg EstoqueAuditConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("estoque_audit: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("estoque_audit: shutting down")
				return
			case <-ticker.C:
				auditarSaldos(ctx, cfg)
			}
		}
	}()
}

func auditarSaldos(ctx context.Context, cfg EstoqueAuditConfig) {
	ids, err := cfg.EstoqueRepo.ProdutosComMovimentacao(ctx)
	if err != nil {
		log.Error().Err(err).Msg("estoque_audit: failed to list products with movements")
		return
	}
	if len(ids) == 0 {
		return
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if _, err := cfg.EstoqueSvc.Recalcular(ctx, id); err != nil {
			log.Error().Err(err).
				Str("produto_id", id.String()).
				Msg("estoque_audit: recalculation failed")
		}
	}

	log.Debug().Int("produtos", len(ids)).Msg("estoque_audit: tick complete")
}
