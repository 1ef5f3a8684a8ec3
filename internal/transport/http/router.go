package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/go-storefront-api/internal/application/order"
	"github.com/go-storefront-api/internal/application/product"
	"github.com/go-storefront-api/internal/application/verification"
	"github.com/go-storefront-api/internal/config"
	"github.com/go-storefront-api/internal/infrastructure/database"
	"github.com/go-storefront-api/internal/infrastructure/kvstore"
	"github.com/go-storefront-api/internal/transport/http/handler"
	appmiddleware "github.com/go-storefront-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router. Background work
// started here (rate-limiter cleanup) stops when ctx is done.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLog(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, per client IP.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	accounts := database.NewAccountRepo(deps.DB, cfg.DBTimeout)
	verifySvc := verification.NewService(verification.ServiceDeps{
		Store:      deps.KV,
		Accounts:   accounts,
		Dispatcher: deps.Dispatcher,
		Log:        log.Named("verification"),
	})
	orderSvc := order.NewService(order.ServiceDeps{
		Orders:   database.NewOrderRepo(deps.DB, cfg.DBTimeout),
		Accounts: accounts,
		Guests:   verifySvc,
		Log:      log.Named("order"),
	})
	productSvc := product.NewService(database.NewProductRepo(deps.DB, cfg.DBTimeout))

	healthH := handler.NewHealthHandler(handler.HealthConfig{
		PingDB:          func(ctx context.Context) error { return database.Ping(ctx, deps.DB) },
		EmailConfigured: deps.EmailConfigured,
		SMSConfigured:   deps.SMSConfigured,
		KVBackend:       deps.KVBackend,
		PrimaryKV:       deps.KVBackend != kvstore.BackendMemory,
	})
	verifyH := handler.NewVerificationHandler(verifySvc, log)
	orderH := handler.NewOrderHandler(orderSvc, log)
	productH := handler.NewProductHandler(productSvc, log)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// ── Public routes ────────────────────────────────────────────────────
		r.Get("/health", healthH.Check)
		r.Get("/products", productH.List)
		r.Post("/products/stock-check", productH.StockCheck)
		r.Post("/orders/check-guest-limits", orderH.CheckGuestLimits)

		r.With(sensitiveRL.Limit).Post("/auth/send-guest-verification", verifyH.SendGuest)
		r.With(sensitiveRL.Limit).Post("/auth/verify-guest", verifyH.VerifyGuest)
		r.With(sensitiveRL.Limit).Post("/orders/guest", orderH.CreateGuest)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.With(sensitiveRL.Limit).Post("/auth/send-account-verification", verifyH.SendAccount)
			r.Post("/auth/verify-account", verifyH.VerifyAccount)
			r.Post("/orders", orderH.Create)
		})
	})

	return r
}
