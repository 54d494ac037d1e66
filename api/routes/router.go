package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/essenza-market/essenza-backend/api/controllers"
	webhookcontrollers "github.com/essenza-market/essenza-backend/api/controllers/webhooks"
	"github.com/essenza-market/essenza-backend/api/middleware"
	authsvc "github.com/essenza-market/essenza-backend/internal/auth"
	cartsvc "github.com/essenza-market/essenza-backend/internal/cart"
	checkoutsvc "github.com/essenza-market/essenza-backend/internal/checkout"
	listingsvc "github.com/essenza-market/essenza-backend/internal/listings"
	productsvc "github.com/essenza-market/essenza-backend/internal/products"
	profilesvc "github.com/essenza-market/essenza-backend/internal/profiles"
	reviewsvc "github.com/essenza-market/essenza-backend/internal/reviews"
	"github.com/essenza-market/essenza-backend/internal/users"
	stripewebhook "github.com/essenza-market/essenza-backend/internal/webhooks/stripe"
	wishlistsvc "github.com/essenza-market/essenza-backend/internal/wishlist"
	"github.com/essenza-market/essenza-backend/pkg/config"
	"github.com/essenza-market/essenza-backend/pkg/db"
	"github.com/essenza-market/essenza-backend/pkg/logger"
	pkgmetrics "github.com/essenza-market/essenza-backend/pkg/metrics"
	"github.com/essenza-market/essenza-backend/pkg/redis"
	"github.com/essenza-market/essenza-backend/pkg/stripe"
)

// Dependencies bundles everything the HTTP surface needs.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	HTTPMetrics *pkgmetrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	AuthService     authsvc.Service
	ProductService  productsvc.Service
	CartService     cartsvc.Service
	WishlistService wishlistsvc.Service
	ReviewService   reviewsvc.Service
	CheckoutService checkoutsvc.Service
	ListingService  listingsvc.Service
	ProfileService  profilesvc.Service
	UserRepo        *users.Repository

	StripeClient       *stripe.Client
	StripeWebhookSvc   webhookcontrollers.StripeWebhookService
	StripeWebhookGuard *stripewebhook.IdempotencyGuard
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware)
	}

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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, deps.Redis, logg))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg), middleware.Idempotency(deps.Redis, logg)).
			Post("/register", controllers.Register(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.Login(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.Me(deps.AuthService, logg))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.ProductService, logg))
		r.Get("/search", controllers.SearchProducts(deps.ProductService, logg))
		r.Get("/new-arrivals", controllers.NewArrivals(deps.ProductService, logg))
		r.Get("/popular", controllers.PopularProducts(deps.ProductService, logg))
		r.Get("/{productId}", controllers.GetProduct(deps.ProductService, logg))
		r.Get("/{productId}/reviews", controllers.GetProductReviews(deps.ReviewService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))
			r.Post("/{productId}/reviews", controllers.CreateReview(deps.ReviewService, logg))
			r.Put("/{productId}/reviews/{reviewId}/helpful", controllers.ReviewFeedback(deps.ReviewService, logg))
			r.Delete("/{productId}/reviews/{reviewId}", controllers.DeleteReview(deps.ReviewService, logg))
		})
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/", controllers.GetCart(deps.CartService, logg))
		r.Post("/add", controllers.AddCartItem(deps.CartService, logg))
		r.Put("/update", controllers.UpdateCartItem(deps.CartService, logg))
		r.Delete("/remove/{productId}", controllers.RemoveCartItem(deps.CartService, logg))
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/", controllers.GetWishlist(deps.WishlistService, logg))
		r.Post("/add", controllers.AddWishlistItem(deps.WishlistService, logg))
		r.Delete("/remove/{productId}", controllers.RemoveWishlistItem(deps.WishlistService, logg))
		r.Get("/check/{productId}", controllers.CheckWishlistItem(deps.WishlistService, logg))
		r.Delete("/clear", controllers.ClearWishlist(deps.WishlistService, logg))
	})

	r.Route("/api/payments", func(r chi.Router) {
		r.Post("/webhook", webhookcontrollers.StripeWebhook(deps.StripeWebhookSvc, deps.StripeClient, deps.StripeWebhookGuard, logg))
		// publishable key is needed by the storefront before login
		r.Get("/config", controllers.PaymentConfig(deps.CheckoutService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))
			r.Post("/create-payment-intent", controllers.CreatePaymentIntent(deps.CheckoutService, logg))
			r.Post("/create-order", controllers.CreateOrder(deps.CheckoutService, logg))
			r.Get("/orders", controllers.GetOrders(deps.CheckoutService, logg))
			r.Get("/orders/{orderId}", controllers.GetOrder(deps.CheckoutService, logg))
		})
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.GetMyListings(deps.ListingService, logg))
			r.Post("/", controllers.CreateListing(deps.ListingService, deps.UserRepo, logg))
			r.Get("/{productId}", controllers.GetMyListing(deps.ListingService, logg))
			r.Put("/{productId}", controllers.UpdateListing(deps.ListingService, logg))
			r.Delete("/{productId}", controllers.DeleteListing(deps.ListingService, logg))
			r.Put("/{productId}/activate", controllers.ActivateListing(deps.ListingService, logg))
			r.Put("/{productId}/images", controllers.AddListingImages(deps.ListingService, logg))
			r.Delete("/{productId}/images/{imageIndex}", controllers.RemoveListingImage(deps.ListingService, logg))
		})

		r.Get("/dashboard/stats", controllers.DashboardStats(deps.ListingService, logg))
		r.Get("/profile", controllers.GetProfile(deps.ProfileService, logg))
		r.Put("/profile", controllers.UpdateProfile(deps.ProfileService, logg))
	})

	r.Route("/api/sellers", func(r chi.Router) {
		r.Get("/{userId}", controllers.GetSeller(deps.ProfileService, logg))
		r.Get("/{userId}/products", controllers.GetSellerProducts(deps.ProfileService, logg))
	})

	return r
}
