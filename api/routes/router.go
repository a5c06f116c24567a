package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielcastano/mercato-backend/api/controllers"
	"github.com/danielcastano/mercato-backend/api/middleware"
	"github.com/danielcastano/mercato-backend/pkg/config"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	"github.com/danielcastano/mercato-backend/pkg/logger"
	"github.com/danielcastano/mercato-backend/pkg/metrics"
	"github.com/danielcastano/mercato-backend/pkg/redis"
)

const idempotencyRetention = 24 * time.Hour

// Deps bundles everything the router mounts. Redis may be nil, in which
// case rate limiting and idempotency checks are skipped.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    *redis.Client
	Metrics  *metrics.HTTPMetrics
	Accounts middleware.AccountChecker

	Registry prometheus.Gatherer

	Health     *controllers.HealthController
	Auth       *controllers.AuthController
	Cart       *controllers.CartController
	Orders     *controllers.OrderController
	ShopOrders *controllers.ShopOrderController
	Addresses  *controllers.AddressController
	Catalog    *controllers.CatalogController
	Media      *controllers.MediaController
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Recoverer(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", deps.Health.Healthz)
		r.Get("/ready", deps.Health.Readyz)
	})
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			register := chi.Chain()
			login := chi.Chain(middleware.OptionalAuth(cfg.JWT, deps.Accounts, logg))
			if deps.Redis != nil {
				rl := cfg.AuthRateLimit
				register = chi.Chain(middleware.RateLimit(deps.Redis, logg, "register", rl.RegisterIPLimit, rl.RegisterWindow))
				login = chi.Chain(
					middleware.RateLimit(deps.Redis, logg, "login", rl.LoginIPLimit, rl.LoginWindow),
					middleware.OptionalAuth(cfg.JWT, deps.Accounts, logg),
				)
			}
			r.With(register...).Post("/register", deps.Auth.Register)
			r.With(login...).Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.AuthOrGuest(cfg.JWT, deps.Accounts, logg))
			r.Get("/", deps.Cart.Get)
			r.Delete("/", deps.Cart.Clear)
			r.Post("/items", deps.Cart.AddItem)
			r.Put("/items/{itemId}", deps.Cart.UpdateItem)
			r.Delete("/items/{itemId}", deps.Cart.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.JWT, deps.Accounts, logg))
			place := chi.Chain()
			if deps.Redis != nil {
				place = chi.Chain(middleware.Idempotency(deps.Redis, logg, "orders:place", idempotencyRetention))
			}
			r.With(place...).Post("/", deps.Orders.Place)
			r.Get("/", deps.Orders.List)
			r.Get("/{orderId}", deps.Orders.Detail)
		})

		r.Route("/shop-orders", func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.JWT, deps.Accounts, logg))
			r.Use(middleware.RequireRole(logg, enums.UserRoleShopkeeper))
			r.Get("/{shopId}", deps.ShopOrders.List)
			r.Get("/{shopId}/{orderId}", deps.ShopOrders.Detail)
			r.Put("/{shopId}/{orderId}/status", deps.ShopOrders.UpdateStatus)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.JWT, deps.Accounts, logg))
			r.Post("/", deps.Addresses.Create)
			r.Get("/", deps.Addresses.List)
			r.Put("/{addressId}/default", deps.Addresses.SetDefault)
		})

		r.Route("/shops", func(r chi.Router) {
			r.Get("/", deps.Catalog.ListShops)
			r.Get("/{shopId}/products", deps.Catalog.ListShopProducts)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(cfg.JWT, deps.Accounts, logg))
				r.Use(middleware.RequireRole(logg, enums.UserRoleShopkeeper))
				r.Post("/", deps.Catalog.CreateShop)
				r.Put("/{shopId}/inventory", deps.Catalog.SetInventory)
			})
		})

		r.Get("/categories", deps.Catalog.ListCategories)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.JWT, deps.Accounts, logg))
			r.Use(middleware.RequireRole(logg, enums.UserRoleShopkeeper))
			r.Post("/categories", deps.Catalog.CreateCategory)
			r.Post("/products", deps.Catalog.CreateProduct)
			r.Post("/media/images", deps.Media.Upload)
			r.Delete("/media/images", deps.Media.Remove)
		})
	})

	return r
}
