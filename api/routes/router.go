package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storefrontlabs/storefront-backend/api/controllers"
	"github.com/storefrontlabs/storefront-backend/api/middleware"
	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/internal/auth"
	"github.com/storefrontlabs/storefront-backend/internal/cart"
	"github.com/storefrontlabs/storefront-backend/internal/orders"
	product "github.com/storefrontlabs/storefront-backend/internal/products"
	"github.com/storefrontlabs/storefront-backend/internal/reviews"
	"github.com/storefrontlabs/storefront-backend/internal/shippers"
	"github.com/storefrontlabs/storefront-backend/pkg/auth/session"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/metrics"
	"github.com/storefrontlabs/storefront-backend/pkg/redis"
)

// Services is every domain service the API mounts.
type Services struct {
	Auth     auth.Service
	Orders   orders.Service
	Reviews  reviews.Service
	Cart     cart.Service
	Shippers shippers.Service
	Products product.Service
	Catalog  product.Catalog
}

// Deps carries the shared infrastructure. Redis backs rate limits and idempotency
// and is required. DB may be nil in tests; a nil Registry disables request
// metrics and the /metrics endpoint.
type Deps struct {
	DB       controllers.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Registry *prometheus.Registry
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps, svc Services) http.Handler {
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTPMetrics
	if deps.Registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(deps.Registry)
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { responses.WriteNotFoundRoute(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { responses.WriteNotFoundRoute(w) })

	var redisPinger controllers.Pinger
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, redisPinger, logg))
	})
	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginIdentifierLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterIdentityLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, cfg.Cookie, deps.Sessions, logg)
	// Replays are keyed on the resolved route, so this wraps endpoints only.
	idempotent := middleware.Idempotency(deps.Redis, logg)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.UserRegister(svc.Auth, cfg.Cookie, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.UserLogin(svc.Auth, cfg.Cookie, logg))
			r.Post("/logout", controllers.UserLogout(svc.Auth, cfg.JWT, cfg.Cookie, logg))
			r.With(requireAuth).Get("/me", controllers.UserMe(svc.Auth, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductCatalog(svc.Catalog, logg))
			r.Get("/categories", controllers.ProductCategories(svc.Catalog, logg))
			r.Get("/category/{category}", controllers.ProductsByCategory(svc.Catalog, logg))
			r.Get("/{barcode}", controllers.ProductDetails(svc.Catalog, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", controllers.ReviewList(svc.Reviews, logg))
			r.Get("/products", controllers.ReviewProducts(svc.Reviews, logg))
			r.Get("/product/{barcode}", controllers.ReviewList(svc.Reviews, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.With(idempotent).Post("/", controllers.ReviewCreate(svc.Reviews, logg))
				r.Get("/purchased", controllers.ReviewPurchased(svc.Reviews, logg))
				r.Post("/{id}/helpful", controllers.ReviewHelpful(svc.Reviews, logg))
				r.Post("/{id}/reactions", controllers.ReviewReact(svc.Reviews, logg))
			})

			r.Get("/by-id/{id}", controllers.ReviewGet(svc.Reviews, logg))
			// {id} is a product barcode here.
			r.Get("/{id}", controllers.ReviewList(svc.Reviews, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/orders", func(r chi.Router) {
				r.With(idempotent).Post("/", controllers.OrderCreate(svc.Orders, logg))
				r.Get("/details", controllers.OrderDetails(svc.Orders, logg))
				r.Get("/reports/top-selling", controllers.OrderTopSelling(svc.Orders, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/items", controllers.CartItems(svc.Cart, logg))
				r.Post("/", controllers.CartAdd(svc.Cart, logg))
				r.Delete("/", controllers.CartRemove(svc.Cart, logg))
			})

			r.Route("/shipper", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.RoleShipper))
				r.Get("/me", controllers.ShipperProfile(svc.Shippers, logg))
				r.Put("/me", controllers.ShipperUpdate(svc.Shippers, logg))
			})

			r.Route("/seller/products", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.RoleSeller))
				r.Get("/", controllers.SellerProductList(svc.Products, logg))
				r.Post("/", controllers.SellerProductCreate(svc.Products, logg))
				r.Get("/{barcode}", controllers.SellerProductGet(svc.Products, logg))
				r.Put("/{barcode}", controllers.SellerProductUpdate(svc.Products, logg))
				r.Patch("/{barcode}", controllers.SellerProductUpdate(svc.Products, logg))
				r.Delete("/{barcode}", controllers.SellerProductDelete(svc.Products, logg))
				r.Post("/{barcode}/variations", controllers.SellerProductVariations(svc.Products, logg))
			})
		})
	})

	return r
}
