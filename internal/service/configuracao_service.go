package service

import (
	"context"
	"encoding/json"
	"time"

	"varejopos/internal/model"
	"varejopos/internal/repository"

	"github.com/redis/go-redis/v9"
)

const (
	configuracaoCacheKey = "cache:configuracao"
	configuracaoCacheTTL = 30 * time.Second
)

// ConfiguracaoService exposes the settings collaborator to the core. The
// approval flag is read on every stock write, so lookups go through a
// short-TTL redis cache in front of postgres.
type ConfiguracaoService interface {
	Obter(ctx context.Context) (*model.Configuracao, error)
	AprovacaoEstoqueAtiva(ctx context.Context) (bool, error)
}

type configuracaoService struct {
	repo repository.ConfiguracaoRepository
	rdb  *redis.Client // nil disables caching (unit test mode)
}

func NewConfiguracaoService(repo repository.ConfiguracaoRepository, rdb *redis.Client) ConfiguracaoService {
	return &configuracaoService{repo: repo, rdb: rdb}
}

func (s *configuracaoService) Obter(ctx context.Context) (*model.Configuracao, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, configuracaoCacheKey).Bytes(); err == nil {
			var cfg model.Configuracao
			if json.Unmarshal(raw, &cfg) == nil {
				return &cfg, nil
			}
		}
	}

	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(cfg); err == nil {
			// Best-effort: a cache write failure never fails the lookup.
			_ = s.rdb.Set(ctx, configuracaoCacheKey, raw, configuracaoCacheTTL).Err()
		}
	}
	return cfg, nil
}

func (s *configuracaoService) AprovacaoEstoqueAtiva(ctx context.Context) (bool, error) {
	cfg, err := s.Obter(ctx)
	if err != nil {
		return false, err
	}
	return cfg.AprovacaoEstoque, nil
}
