package infra

import (
	"fmt"

	"varejopos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for all tables, then applies the idempotent SQL patches GORM cannot
// express (partial unique indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates the schema. Exposed separately so
// integration tests can run it against a scratch database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Produto{},
		&model.Servico{},
		&model.Cliente{},
		&model.MetodoPagamento{},
		&model.Usuario{},
		&model.Configuracao{},
		&model.SessaoCaixa{},
		&model.MovimentacaoCaixa{},
		&model.Venda{},
		&model.VendaItem{},
		&model.VendaPagamento{},
		&model.MovimentacaoEstoque{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle.
// The partial unique index is what enforces "at most one ABERTO session" at
// the storage layer — two racing opens cannot both commit.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_sessao_caixa_aberta') THEN
		    CREATE UNIQUE INDEX uni_sessao_caixa_aberta
		        ON sessoes_caixa (status)
		        WHERE status = 'ABERTO';
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_mov_estoque_produto_status') THEN
		    CREATE INDEX idx_mov_estoque_produto_status
		        ON movimentacoes_estoque (produto_id, status);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
