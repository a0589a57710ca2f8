package router

import (
	"time"

	"corralon/internal/config"
	"corralon/internal/handler"
	"corralon/internal/infra"
	"corralon/internal/middleware"
	"corralon/internal/repository"
	"corralon/internal/service"
	"corralon/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services groups the treasury services shared by the HTTP surface and the
// background jobs started from main.
type Services struct {
	Cheques service.ChequeService
	Caja    service.CajaService
	Cuentas service.CuentaCorrienteService
	Pagos   service.PagoService
}

// NewServices wires Service ← Repository ← DB/Redis.
// Without Redis, settlements skip idempotency keys and post-commit notices.
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Services {
	opts := service.Opciones{
		TxTimeout:      cfg.TxTimeout(),
		PlazoLegalDias: cfg.ChequePlazoLegalDias,
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	chequeRepo := repository.NewChequeRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	entidadRepo := repository.NewEntidadRepository(db)
	cuentaRepo := repository.NewCuentaCorrienteRepository(db)
	pagoRepo := repository.NewPagoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	chequeSvc := service.NewChequeService(chequeRepo, entidadRepo, opts)
	cajaSvc := service.NewCajaService(cajaRepo, opts)
	cuentaSvc := service.NewCuentaCorrienteService(cuentaRepo, entidadRepo, chequeRepo, opts)

	var (
		publisher service.Publisher
		idem      service.IdempotencyStore
	)
	if rdb != nil {
		publisher = worker.NewDispatcher(rdb)
		idem = infra.NewRedisIdempotency(rdb)
	}
	pagoSvc := service.NewPagoService(pagoRepo, chequeRepo, chequeSvc, cajaSvc, cuentaSvc,
		publisher, idem, cfg.IdempotencyTTL(), opts)

	return &Services{Cheques: chequeSvc, Caja: cajaSvc, Cuentas: cuentaSvc, Pagos: pagoSvc}
}

// New returns a configured Gin engine over svcs.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker, svcs *Services) *gin.Engine {
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

	// ── Handlers ─────────────────────────────────────────────────────────────
	chequesH := handler.NewChequesHandler(svcs.Cheques)
	cajaH := handler.NewCajaHandler(svcs.Caja)
	cuentaH := handler.NewCuentaCorrienteHandler(svcs.Cuentas)
	pagosH := handler.NewPagosHandler(svcs.Pagos)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	todos := middleware.RequireRole(middleware.RolCajero, middleware.RolSupervisor, middleware.RolAdministrador)
	supervisores := middleware.RequireRole(middleware.RolSupervisor, middleware.RolAdministrador)
	admin := middleware.RequireRole(middleware.RolAdministrador)

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		cheques := v1.Group("/cheques")
		{
			cheques.GET("", todos, chequesH.Listar)
			cheques.GET("/:id", todos, chequesH.ObtenerPorID)
			cheques.POST("", todos, chequesH.Crear)
			cheques.PUT("/:id", supervisores, chequesH.Actualizar)
			cheques.PATCH("/:id/estado", supervisores, chequesH.Transicionar)
			cheques.DELETE("/:id", supervisores, chequesH.Eliminar)
			cheques.PATCH("/:id/restaurar", supervisores, chequesH.Restaurar)
			cheques.PATCH("/:id/correccion", admin, chequesH.Corregir)
			cheques.DELETE("/:id/purgar", admin, chequesH.Purgar)
		}

		caja := v1.Group("/caja")
		{
			caja.GET("/estado", todos, cajaH.Estado)
			caja.POST("/abrir", todos, cajaH.Abrir)
			caja.POST("/movimiento", todos, cajaH.RegistrarMovimiento)
			caja.GET("/movimientos", todos, cajaH.Movimientos)
			caja.POST("/cerrar", supervisores, cajaH.Cerrar)
			caja.GET("/historial", supervisores, cajaH.Historial)
		}

		cc := v1.Group("/cuenta-corriente")
		{
			cc.GET("/:tipo/:id", todos, cuentaH.Obtener)
			cc.POST("/movimiento", supervisores, cuentaH.RegistrarMovimiento)
		}

		pagos := v1.Group("/pagos")
		{
			pagos.POST("", todos, pagosH.Registrar)
			pagos.GET("/:id", todos, pagosH.Obtener)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
