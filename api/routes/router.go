package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Metrics     *metrics.HTTPMetrics
	AuthService auth.Service
	Categories  categories.Service
	Products    products.Service
	Orders      orders.Service
	Checkout    checkoutsvc.Service
}

// NewRouter builds the full HTTP surface: public catalog reads, token-gated
// buyer operations, and admin-gated mutations.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	authGate := middleware.Auth(cfg.JWT, logg)
	adminGate := middleware.RequireAdmin(logg)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	// Without redis there is nothing to count against, so the throttles
	// and the redis readiness check drop out.
	var redisP redis.Pinger
	if deps.Redis != nil {
		redisP = deps.Redis
	} else {
		loginPolicy = middleware.AuthRateLimitPolicy{}
		registerPolicy = middleware.AuthRateLimitPolicy{}
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisP))
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authGate)
			r.Get("/user-auth", controllers.AuthCheck())
			r.Put("/profile", controllers.ProfileUpdate(deps.AuthService, logg))
			r.Get("/orders", controllers.BuyerOrders(deps.Orders, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authGate, adminGate)
			r.Get("/admin-auth", controllers.AuthCheck())
			r.Get("/all-orders", controllers.AllOrders(deps.Orders, logg))
			r.Put("/order-status/{orderId}", controllers.OrderStatusUpdate(deps.Orders, logg))
		})
	})

	r.Route("/category", func(r chi.Router) {
		r.Get("/get-category", controllers.CategoryList(deps.Categories, logg))
		r.Get("/single-category/{slug}", controllers.CategorySingle(deps.Categories, logg))

		r.Group(func(r chi.Router) {
			r.Use(authGate, adminGate)
			r.Post("/create-category", controllers.CategoryCreate(deps.Categories, logg))
			r.Put("/update-category/{id}", controllers.CategoryUpdate(deps.Categories, logg))
			r.Delete("/delete-category/{id}", controllers.CategoryDelete(deps.Categories, logg))
		})
	})

	r.Route("/product", func(r chi.Router) {
		r.Get("/get-product", controllers.ProductList(deps.Products, logg))
		r.Get("/get-product/{slug}", controllers.ProductBySlug(deps.Products, logg))
		r.Get("/product-photo/{pid}", controllers.ProductPhoto(deps.Products, logg))
		r.Get("/product-count", controllers.ProductCount(deps.Products, logg))
		r.Get("/product-list/{page}", controllers.ProductPage(deps.Products, logg))
		r.Get("/search/{keyword}", controllers.ProductSearch(deps.Products, logg))
		r.Get("/related-product/{pid}/{cid}", controllers.RelatedProducts(deps.Products, logg))
		r.Get("/product-category/{slug}", controllers.ProductsByCategory(deps.Products, logg))
		r.Post("/product-filters", controllers.ProductFilters(deps.Products, logg))
		r.Get("/braintree/token", controllers.BraintreeToken(deps.Checkout, logg))

		r.Group(func(r chi.Router) {
			r.Use(authGate)
			r.Post("/braintree/payment", controllers.BraintreePayment(deps.Checkout, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authGate, adminGate)
			r.Post("/create-product", controllers.ProductCreate(deps.Products, cfg.Catalog, logg))
			r.Put("/update-product/{pid}", controllers.ProductUpdate(deps.Products, cfg.Catalog, logg))
			r.Delete("/delete-product/{pid}", controllers.ProductDelete(deps.Products, logg))
		})
	})

	return r
}
