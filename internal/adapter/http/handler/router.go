package handler

import (
	"loyalty-ledger/internal/adapter/http/middleware"
	redisStore "loyalty-ledger/internal/adapter/storage/redis"
	"loyalty-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	TransactionSvc ports.TransactionService
	LedgerSvc      ports.LedgerService
	OperatorSvc    ports.OperatorService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis + NATS)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes. Everything under /api/v1 is tenant-scoped.
	v1 := r.Group("/api/v1", middleware.TenantContext())

	transactionHandler := NewTransactionHandler(deps.TransactionSvc)
	transactions := v1.Group("/transactions")
	{
		transactions.POST("/issue", rl("transactions"), transactionHandler.IssuePoints)
		transactions.POST("/redeem", rl("transactions"), transactionHandler.RedeemPoints)
	}

	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	customers := v1.Group("/customers")
	{
		customers.GET("/:id/balance", rl("ledger"), ledgerHandler.GetBalance)
		customers.GET("/:id/ledger", rl("ledger"), ledgerHandler.GetLedgerHistory)
	}

	// --- Operator routes (privileged; require an audited actor) ---
	operatorHandler := NewOperatorHandler(deps.OperatorSvc)
	operator := v1.Group("/operator", middleware.RequireUser())
	{
		operator.POST("/adjustments", rl("operator"), operatorHandler.ManualAdjustment)
		operator.POST("/transactions/:id/reverse", rl("operator"), operatorHandler.ReverseTransaction)
	}

	return r
}
