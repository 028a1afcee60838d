package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/chieftain/api/controllers"
	"github.com/angelmondragon/chieftain/api/middleware"
	"github.com/angelmondragon/chieftain/pkg/config"
	"github.com/angelmondragon/chieftain/pkg/logger"
	"github.com/angelmondragon/chieftain/pkg/pricing"
	"github.com/angelmondragon/chieftain/pkg/redis"
)

// Sessions is what the router needs from the session registry.
type Sessions interface {
	controllers.Sessions
	middleware.SessionResolver
}

// RedisStore backs readiness, rate limits and idempotency records.
type RedisStore interface {
	redis.Pinger
	redis.IdempotencyStore
	middleware.RateLimitStore
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient RedisStore,
	sessions Sessions,
	catalogService controllers.Catalog,
	ordersService controllers.Orders,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	policy := pricing.FromConfig(cfg.Pricing)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	idempotent := middleware.Idempotency(redisClient, cfg.App.IdempotencyTTL, logg)
	requireSession := middleware.RequireSession(sessions, cfg.Session.CookieName, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisClient))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(sessions, cfg.Session, logg))
		r.With(middleware.AuthRateLimit(signupPolicy, redisClient, logg), idempotent).Post("/signup", controllers.AuthSignup(sessions, cfg.Session, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.Session, logg))
		r.With(requireSession).Get("/me", controllers.AuthMe(logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", controllers.CategoriesList(catalogService, logg))
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(catalogService, logg))
			r.Get("/search", controllers.ProductsSearch(catalogService, logg))
			r.Get("/featured", controllers.ProductsFeatured(catalogService, logg))
			r.Get("/{productId}", controllers.ProductDetail(catalogService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(policy, logg))
				r.Post("/refresh", controllers.CartRefresh(policy, logg))
				r.Post("/items", controllers.CartAddItem(policy, logg))
				r.Put("/items/{itemId}", controllers.CartUpdateItem(policy, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(policy, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", controllers.CheckoutBegin(logg))
				r.Get("/", controllers.CheckoutView(logg))
				r.Delete("/", controllers.CheckoutCancel(logg))
				r.Post("/address", controllers.CheckoutAddress(logg))
				r.Post("/payment", controllers.CheckoutPayment(logg))
				r.Post("/back", controllers.CheckoutBack(logg))
				r.Post("/retry", controllers.CheckoutRetry(logg))
				r.With(idempotent).Post("/submit", controllers.CheckoutSubmit(logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(ordersService, logg))
				r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireSession)
		r.Use(middleware.RequireAdmin(logg))
		r.Get("/summary", controllers.AdminSummary(ordersService, logg))
		r.Route("/orders/{orderId}", func(r chi.Router) {
			r.Use(idempotent)
			r.Post("/advance", controllers.AdminAdvanceOrder(ordersService, logg))
			r.Post("/cancel", controllers.AdminCancelOrder(ordersService, logg))
		})
	})

	return r
}
