package router

import (
	"time"

	"varejopos/internal/config"
	"varejopos/internal/handler"
	"varejopos/internal/infra"
	"varejopos/internal/middleware"
	"varejopos/internal/repository"
	"varejopos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, billingCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	gateway := infra.NewCobrancaClient(infra.BillingBaseURL(cfg.BillingEnv), cfg.BillingAPIKey, billingCB)

	// ── Repositories ─────────────────────────────────────────────────────────
	caixaRepo := repository.NewCaixaRepository(db)
	vendaRepo := repository.NewVendaRepository(db)
	estoqueRepo := repository.NewEstoqueRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	servicoRepo := repository.NewServicoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	metodoRepo := repository.NewMetodoPagamentoRepository(db)
	configRepo := repository.NewConfiguracaoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	configSvc := service.NewConfiguracaoService(configRepo, rdb)
	estoqueSvc := service.NewEstoqueService(estoqueRepo, produtoRepo, configSvc)
	caixaSvc := service.NewCaixaService(caixaRepo, vendaRepo)
	vendaSvc := service.NewVendaService(
		vendaRepo, caixaRepo, estoqueSvc,
		produtoRepo, servicoRepo, clienteRepo, metodoRepo,
		gateway, cfg.PDFStoragePath,
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	caixaH := handler.NewCaixaHandler(caixaSvc)
	vendasH := handler.NewVendasHandler(vendaSvc)
	estoqueH := handler.NewEstoqueHandler(estoqueSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes — the auth collaborator issues tokens; this service
	// only validates and extracts the actor.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)

	caixa := r.Group("/caixa", jwtMW)
	{
		caixa.POST("/abrir", caixaH.Abrir)
		caixa.POST("/fechar", caixaH.Fechar)
		caixa.POST("/movimentar", caixaH.Movimentar)
		caixa.GET("/aberto", caixaH.SessaoAberta)
		caixa.GET("/:id/resumo", caixaH.Resumo)
	}

	sales := r.Group("/sales", jwtMW)
	{
		sales.POST("", vendasH.Registrar)
		sales.GET("", vendasH.Listar)
		sales.GET("/:id", vendasH.Buscar)
		sales.GET("/:id/recibo", vendasH.Recibo)
		sales.PATCH("/:id/status", vendasH.AtualizarStatus)
	}

	stock := r.Group("/stock", jwtMW)
	{
		stock.POST("/movements", estoqueH.Registrar)
		stock.GET("/movements", estoqueH.Listar)
		stock.PUT("/movements/:id/status", middleware.RequireRole("supervisor", "administrador"), estoqueH.AtualizarStatus)
		stock.POST("/produtos/:id/recalcular", middleware.RequireRole("supervisor", "administrador"), estoqueH.Recalcular)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
