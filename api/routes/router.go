package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmalink/pharmacy-pos/api/controllers"
	"github.com/pharmalink/pharmacy-pos/api/middleware"
	"github.com/pharmalink/pharmacy-pos/internal/auth"
	"github.com/pharmalink/pharmacy-pos/internal/dashboard"
	"github.com/pharmalink/pharmacy-pos/internal/inventory"
	"github.com/pharmalink/pharmacy-pos/internal/onboarding"
	"github.com/pharmalink/pharmacy-pos/internal/orders"
	"github.com/pharmalink/pharmacy-pos/internal/pos"
	"github.com/pharmalink/pharmacy-pos/internal/profile"
	"github.com/pharmalink/pharmacy-pos/pkg/auth/session"
	"github.com/pharmalink/pharmacy-pos/pkg/config"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
	"github.com/pharmalink/pharmacy-pos/pkg/storage/kv"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	storePinger controllers.Pinger,
	sessions session.Reader,
	counter kv.Counter,
	idempotencyStore kv.Store,
	metricsHandler http.Handler,
	authService auth.Service,
	onboardingService onboarding.Service,
	dashboardService dashboard.Service,
	inventoryService inventory.Service,
	ordersService orders.Service,
	posService pos.Service,
	profileService profile.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

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
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, storePinger))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/app/state", controllers.AppState(onboardingService, logg))
		r.Get("/onboarding", controllers.OnboardingStatus(onboardingService, logg))
		r.Post("/onboarding/complete", controllers.OnboardingComplete(onboardingService, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, counter, logg)).Post("/login", controllers.AuthLogin(authService, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, counter, logg)).Post("/register", controllers.AuthRegister(authService, logg))
			r.Post("/forgot-password", controllers.AuthForgotPassword(authService, logg))
			r.Post("/logout", controllers.AuthLogout(authService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(sessions, logg))

			r.Get("/dashboard", controllers.Dashboard(dashboardService, logg))

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", controllers.InventoryList(inventoryService, logg))
				r.Post("/", controllers.InventoryAdd(inventoryService, logg))
				r.Patch("/", controllers.InventoryUpdate(inventoryService, logg))
				r.Get("/suggestions", controllers.InventorySuggestions(inventoryService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(ordersService, logg))
				r.Get("/{orderID}", controllers.OrderDetail(ordersService, logg))
				r.Patch("/{orderID}/status", controllers.OrderUpdateStatus(ordersService, logg))
			})

			r.Route("/pos", func(r chi.Router) {
				r.Get("/cart", controllers.PosCart(posService, logg))
				r.Delete("/cart", controllers.PosClearCart(posService, logg))
				r.Post("/cart/items", controllers.PosAddItem(posService, logg))
				r.Post("/cart/items/{medicationID}/increase", controllers.PosIncreaseItem(posService, logg))
				r.Post("/cart/items/{medicationID}/decrease", controllers.PosDecreaseItem(posService, logg))
				r.Delete("/cart/items/{medicationID}", controllers.PosRemoveItem(posService, logg))
				r.Get("/inventory", controllers.PosInventory(posService, logg))
				r.Post("/inventory/refresh", controllers.PosRefreshInventory(posService, logg))
				r.With(middleware.Idempotency(idempotencyStore, cfg.POS.CheckoutIdempotencyTTL, logg)).
					Post("/checkout", controllers.PosCheckout(posService, logg))
				r.Get("/sales", controllers.PosSalesHistory(posService, logg))
			})

			r.Get("/profile", controllers.ProfileGet(profileService, logg))
			r.Patch("/profile", controllers.ProfileUpdate(profileService, logg))
		})
	})

	return r
}
