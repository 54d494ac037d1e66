package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/essenza-market/essenza-backend/internal/auth"
	cartsvc "github.com/essenza-market/essenza-backend/internal/cart"
	checkoutsvc "github.com/essenza-market/essenza-backend/internal/checkout"
	listingsvc "github.com/essenza-market/essenza-backend/internal/listings"
	"github.com/essenza-market/essenza-backend/internal/orders"
	productsvc "github.com/essenza-market/essenza-backend/internal/products"
	profilesvc "github.com/essenza-market/essenza-backend/internal/profiles"
	reviewsvc "github.com/essenza-market/essenza-backend/internal/reviews"
	wishlistsvc "github.com/essenza-market/essenza-backend/internal/wishlist"
	pkgAuth "github.com/essenza-market/essenza-backend/pkg/auth"
	"github.com/essenza-market/essenza-backend/pkg/config"
	"github.com/essenza-market/essenza-backend/pkg/pagination"
	"github.com/essenza-market/essenza-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Register(context.Context, authsvc.RegisterInput) (authsvc.SessionDTO, error) {
	return authsvc.SessionDTO{}, nil
}
func (stubAuthService) Login(context.Context, authsvc.LoginInput) (authsvc.SessionDTO, error) {
	return authsvc.SessionDTO{}, nil
}
func (stubAuthService) Me(context.Context, uuid.UUID) (authsvc.UserDTO, error) {
	return authsvc.UserDTO{}, nil
}

type stubProductService struct{}

func (stubProductService) GetProducts(context.Context, productsvc.ListFilter) ([]productsvc.ProductDTO, error) {
	return nil, nil
}
func (stubProductService) GetProduct(context.Context, uuid.UUID) (productsvc.ProductDTO, error) {
	return productsvc.ProductDTO{}, nil
}
func (stubProductService) SearchProducts(context.Context, productsvc.SearchFilter) (productsvc.SearchPageDTO, error) {
	return productsvc.SearchPageDTO{}, nil
}
func (stubProductService) GetNewArrivals(context.Context) ([]productsvc.ProductDTO, error) {
	return nil, nil
}
func (stubProductService) GetPopularProducts(context.Context) ([]productsvc.ProductDTO, error) {
	return nil, nil
}

type stubCartService struct{}

func (stubCartService) GetCart(context.Context, uuid.UUID) (cartsvc.CartDTO, error) {
	return cartsvc.CartDTO{}, nil
}
func (stubCartService) AddItem(context.Context, uuid.UUID, uuid.UUID, int) (cartsvc.CartDTO, error) {
	return cartsvc.CartDTO{}, nil
}
func (stubCartService) UpdateItem(context.Context, uuid.UUID, uuid.UUID, int) (cartsvc.CartDTO, error) {
	return cartsvc.CartDTO{}, nil
}
func (stubCartService) RemoveItem(context.Context, uuid.UUID, uuid.UUID) (cartsvc.CartDTO, error) {
	return cartsvc.CartDTO{}, nil
}

type stubWishlistService struct{}

func (stubWishlistService) GetWishlist(context.Context, uuid.UUID) ([]wishlistsvc.WishlistItemDTO, error) {
	return nil, nil
}
func (stubWishlistService) AddItem(context.Context, uuid.UUID, uuid.UUID) error    { return nil }
func (stubWishlistService) RemoveItem(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (stubWishlistService) CheckItem(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}
func (stubWishlistService) Clear(context.Context, uuid.UUID) error { return nil }

type stubReviewService struct{}

func (stubReviewService) AddReview(context.Context, uuid.UUID, uuid.UUID, reviewsvc.CreateReviewInput) (reviewsvc.ReviewDTO, error) {
	return reviewsvc.ReviewDTO{}, nil
}
func (stubReviewService) GetProductReviews(context.Context, uuid.UUID) ([]reviewsvc.ReviewDTO, error) {
	return nil, nil
}
func (stubReviewService) AddFeedback(context.Context, uuid.UUID, bool) (reviewsvc.ReviewDTO, error) {
	return reviewsvc.ReviewDTO{}, nil
}
func (stubReviewService) DeleteReview(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubCheckoutService struct{}

func (stubCheckoutService) CreatePaymentIntent(context.Context, uuid.UUID, checkoutsvc.CreatePaymentIntentInput) (checkoutsvc.PaymentIntentDTO, error) {
	return checkoutsvc.PaymentIntentDTO{}, nil
}
func (stubCheckoutService) CreateOrder(context.Context, uuid.UUID, checkoutsvc.CreateOrderInput) (orders.OrderDTO, error) {
	return orders.OrderDTO{}, nil
}
func (stubCheckoutService) GetUserOrders(context.Context, uuid.UUID) ([]orders.OrderDTO, error) {
	return nil, nil
}
func (stubCheckoutService) GetOrderByID(context.Context, uuid.UUID, uuid.UUID, bool) (orders.OrderDTO, error) {
	return orders.OrderDTO{}, nil
}
func (stubCheckoutService) Config(context.Context) checkoutsvc.ConfigDTO {
	return checkoutsvc.ConfigDTO{}
}

type stubListingService struct{}

func (stubListingService) CreateListing(context.Context, uuid.UUID, string, listingsvc.CreateListingInput, []listingsvc.ImageUpload) (productsvc.ProductDTO, error) {
	return productsvc.ProductDTO{}, nil
}
func (stubListingService) GetMyListings(context.Context, uuid.UUID, *string, pagination.Page) (listingsvc.ListingsPageDTO, error) {
	return listingsvc.ListingsPageDTO{}, nil
}
func (stubListingService) GetMyListing(context.Context, uuid.UUID, uuid.UUID) (productsvc.ProductDTO, error) {
	return productsvc.ProductDTO{}, nil
}
func (stubListingService) UpdateListing(context.Context, uuid.UUID, uuid.UUID, listingsvc.UpdateListingInput) (productsvc.ProductDTO, error) {
	return productsvc.ProductDTO{}, nil
}
func (stubListingService) AddImages(context.Context, uuid.UUID, uuid.UUID, []listingsvc.ImageUpload) (productsvc.ProductDTO, error) {
	return productsvc.ProductDTO{}, nil
}
func (stubListingService) RemoveImage(context.Context, uuid.UUID, uuid.UUID, int) (productsvc.ProductDTO, error) {
	return productsvc.ProductDTO{}, nil
}
func (stubListingService) ActivateListing(context.Context, uuid.UUID, uuid.UUID) (productsvc.ProductDTO, error) {
	return productsvc.ProductDTO{}, nil
}
func (stubListingService) DeleteListing(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (stubListingService) DashboardStats(context.Context, uuid.UUID) (listingsvc.DashboardStatsDTO, error) {
	return listingsvc.DashboardStatsDTO{}, nil
}

type stubProfileService struct{}

func (stubProfileService) GetMine(context.Context, uuid.UUID) (profilesvc.ProfileDTO, error) {
	return profilesvc.ProfileDTO{}, nil
}
func (stubProfileService) UpdateMine(context.Context, uuid.UUID, profilesvc.UpdateProfileInput) (profilesvc.ProfileDTO, error) {
	return profilesvc.ProfileDTO{}, nil
}
func (stubProfileService) GetSeller(context.Context, uuid.UUID) (profilesvc.SellerDTO, error) {
	return profilesvc.SellerDTO{}, nil
}
func (stubProfileService) GetSellerProducts(context.Context, uuid.UUID, string, pagination.Page) (profilesvc.SellerProductsPageDTO, error) {
	return profilesvc.SellerProductsPageDTO{}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "essenza-test", ExpirationDays: 1}
	return cfg
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(Dependencies{
		Config:          testConfig(),
		DB:              stubPinger{},
		Redis:           &redis.Client{},
		AuthService:     stubAuthService{},
		ProductService:  stubProductService{},
		CartService:     stubCartService{},
		WishlistService: stubWishlistService{},
		ReviewService:   stubReviewService{},
		CheckoutService: stubCheckoutService{},
		ListingService:  stubListingService{},
		ProfileService:  stubProfileService{},
	})
}

func bearerToken(t *testing.T) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now().UTC(), pkgAuth.AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicCatalogRoutes(t *testing.T) {
	router := newTestRouter(t)
	for _, target := range []string{
		"/api/products",
		"/api/products/search",
		"/api/products/new-arrivals",
		"/api/products/popular",
		"/api/products/" + uuid.NewString(),
		"/api/products/" + uuid.NewString() + "/reviews",
		"/api/sellers/" + uuid.NewString(),
		"/api/sellers/" + uuid.NewString() + "/products",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d (%s)", target, resp.Code, resp.Body.String())
		}
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	router := newTestRouter(t)
	requests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/cart"},
		{http.MethodGet, "/api/wishlist"},
		{http.MethodGet, "/api/payments/orders"},
		{http.MethodGet, "/api/user/products"},
		{http.MethodGet, "/api/user/profile"},
		{http.MethodGet, "/api/user/dashboard/stats"},
		{http.MethodGet, "/api/auth/me"},
	}
	for _, tc := range requests {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.target, resp.Code)
		}
	}
}

func TestProtectedRoutesAcceptValidToken(t *testing.T) {
	router := newTestRouter(t)
	token := bearerToken(t)
	for _, target := range []string{
		"/api/cart",
		"/api/wishlist",
		"/api/payments/orders",
		"/api/user/products",
		"/api/user/profile",
		"/api/user/dashboard/stats",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d (%s)", target, resp.Code, resp.Body.String())
		}
	}
}

func TestPaymentConfigIsPublic(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/payments/config", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	// The storefront fetches the publishable key before any login.
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 without a token, got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestWebhookRouteIsPublic(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	// No service is wired in this test, but the route must resolve without auth.
	if resp.Code == http.StatusNotFound || resp.Code == http.StatusUnauthorized {
		t.Fatalf("webhook route should be public, got %d", resp.Code)
	}
}
