package api

import (
	"github.com/brightledger/payments-core/internal/api/handler"
	"github.com/brightledger/payments-core/internal/api/middleware"
	"github.com/brightledger/payments-core/internal/api/spec"
	"github.com/brightledger/payments-core/internal/config"
	"github.com/brightledger/payments-core/internal/repository"
	"github.com/brightledger/payments-core/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// Router wires every handler and middleware stage behind a single chi
// mux. Construction never fails: missing dependencies panic at Routes()
// time rather than silently serving a half-wired tree.
type Router struct {
	cfg         *config.Config
	logger      *zap.Logger
	db          *pgxpool.Pool
	repo        *repository.Repository
	accountSvc  *service.AccountService
	txnSvc      *service.TransactionService
	apiKeySvc   *service.ApiKeyService
	webhookSvc  *service.WebhookService
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *pgxpool.Pool,
	repo *repository.Repository,
	accountSvc *service.AccountService,
	txnSvc *service.TransactionService,
	apiKeySvc *service.ApiKeyService,
	webhookSvc *service.WebhookService,
) *Router {
	return &Router{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		repo:       repo,
		accountSvc: accountSvc,
		txnSvc:     txnSvc,
		apiKeySvc:  apiKeySvc,
		webhookSvc: webhookSvc,
	}
}

func (a *Router) Routes() chi.Router {
	if a.accountSvc == nil || a.txnSvc == nil || a.apiKeySvc == nil || a.webhookSvc == nil {
		panic("router dependencies are not configured")
	}

	r := chi.NewRouter()
	r.Use(middleware.RecoverMiddleware(a.logger))
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(a.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RateLimit(a.cfg.RateLimitRequests, a.cfg.RateLimitPeriod))
	r.Use(middleware.Auth(a.apiKeySvc))

	accountHandler := handler.NewAccountHandler(a.accountSvc, a.logger)
	txnHandler := handler.NewTransactionHandler(a.txnSvc, a.logger)
	apiKeyHandler := handler.NewApiKeyHandler(a.apiKeySvc, a.logger)
	webhookHandler := handler.NewWebhookHandler(a.webhookSvc, a.logger)
	exchangeHandler := handler.NewExchangeHandler()
	healthHandler := handler.NewHealthHandler()

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	r.Post("/api/bootstrap", apiKeyHandler.Bootstrap)

	r.Route("/api/keys", func(k chi.Router) {
		k.Post("/", apiKeyHandler.CreateApiKey)
		k.Get("/", apiKeyHandler.ListApiKeys)
		k.Delete("/{id}", apiKeyHandler.DeleteApiKey)
	})

	r.Route("/api/accounts", func(acc chi.Router) {
		acc.Post("/", accountHandler.CreateAccount)
		acc.Get("/", accountHandler.ListAccounts)
		acc.Get("/{id}", accountHandler.GetAccount)
		acc.Get("/{id}/transactions", accountHandler.ListTransactions)
	})

	r.Route("/api/transactions", func(txn chi.Router) {
		txn.Post("/deposit", txnHandler.Deposit)
		txn.Post("/withdraw", txnHandler.Withdraw)
		txn.Post("/transfer", txnHandler.Transfer)
	})

	r.Route("/api/webhooks", func(wh chi.Router) {
		wh.Post("/", webhookHandler.RegisterEndpoint)
		wh.Get("/", webhookHandler.ListEndpoints)
	})

	r.Get("/api/rates/{base}", exchangeHandler.Rates)
	r.Post("/api/convert", exchangeHandler.Convert)

	return r
}
