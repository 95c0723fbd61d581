package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pharmalink/pharmacy-pos/internal/auth"
	"github.com/pharmalink/pharmacy-pos/internal/backend"
	"github.com/pharmalink/pharmacy-pos/internal/cart"
	"github.com/pharmalink/pharmacy-pos/internal/dashboard"
	"github.com/pharmalink/pharmacy-pos/internal/inventory"
	"github.com/pharmalink/pharmacy-pos/internal/onboarding"
	"github.com/pharmalink/pharmacy-pos/internal/pos"
	"github.com/pharmalink/pharmacy-pos/pkg/auth/session"
	"github.com/pharmalink/pharmacy-pos/pkg/config"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
	"github.com/pharmalink/pharmacy-pos/pkg/metrics"
	"github.com/pharmalink/pharmacy-pos/pkg/storage/kv"
)

type stubDashboard struct {
	token string
}

func (s *stubDashboard) Get(_ context.Context, token string) (*dashboard.Summary, error) {
	s.token = token
	return &dashboard.Summary{}, nil
}

type harness struct {
	router    http.Handler
	dashboard *stubDashboard
	sessions  *session.Manager
	sales     *int32
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:     time.Minute,
			LoginIPLimit:    100,
			LoginEmailLimit: 2,
		},
		POS: config.POSConfig{CheckoutIdempotencyTTL: time.Hour},
	}
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()

	var sales int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/auth/login":
			_, _ = io.WriteString(w, `{"token":"backend-token","user":{"id":"u-1","name":"Ada","email":"ada@pharmacy.ng"}}`)
		case r.URL.Path == "/pharmacy/medications":
			_, _ = io.WriteString(w, `{"medications":[{"id":1,"medicationId":"A","name":"Amoxicillin","stock":5,"price":500}]}`)
		case r.URL.Path == "/pharmacy/sales" && r.Method == http.MethodGet:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Token expired"}`)
		case r.URL.Path == "/pharmacy/sales" && r.Method == http.MethodPost:
			atomic.AddInt32(&sales, 1)
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	reg := prometheus.NewRegistry()

	client, err := backend.New(config.BackendConfig{BaseURL: upstream.URL, Timeout: time.Second}, metrics.NewBackendMetrics(reg), logg)
	if err != nil {
		t.Fatalf("backend client: %v", err)
	}

	store := kv.NewMemory()
	sessions, err := session.NewManager(store)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		Repo:    auth.NewRepository(client),
		Session: sessions,
		Cart:    cart.NewHandle(),
	})
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	client.OnUnauthorized(func(ctx context.Context, token string) {
		_ = authSvc.SessionRejected(ctx, token)
	})
	onboardingSvc, err := onboarding.NewService(store, sessions)
	if err != nil {
		t.Fatalf("onboarding service: %v", err)
	}

	cartHandle := cart.NewHandle()
	posSvc, err := pos.NewService(pos.ServiceParams{
		Inventory: inventory.NewRepository(client),
		Sales:     pos.NewRepository(client),
		Cart:      cartHandle,
		Logger:    logg,
	})
	if err != nil {
		t.Fatalf("pos service: %v", err)
	}

	dash := &stubDashboard{}
	router := NewRouter(
		cfg,
		logg,
		nil,
		sessions,
		kv.NewMemoryCounter(),
		store,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		authSvc,
		onboardingSvc,
		dash,
		nil,
		nil,
		posSvc,
		nil,
	)
	return &harness{router: router, dashboard: dash, sessions: sessions, sales: &sales}
}

func (h *harness) do(method, target, body string) *httptest.ResponseRecorder {
	return h.doWithHeaders(method, target, body, nil)
}

func (h *harness) doWithHeaders(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, req)
	return resp
}

func TestHealthLive(t *testing.T) {
	h := newHarness(t, testConfig())
	resp := h.do(http.MethodGet, "/health/live", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := newHarness(t, testConfig())
	for _, target := range []string{"/api/v1/dashboard", "/api/v1/pos/cart", "/api/v1/orders", "/api/v1/profile"} {
		resp := h.do(http.MethodGet, target, "")
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", target, resp.Code)
		}
	}
}

func TestAppStateFollowsOnboardingAndLogin(t *testing.T) {
	h := newHarness(t, testConfig())

	if stage := appStage(t, h); stage != "onboarding" {
		t.Fatalf("expected onboarding stage got %q", stage)
	}
	if resp := h.do(http.MethodPost, "/api/v1/onboarding/complete", ""); resp.Code != http.StatusOK {
		t.Fatalf("complete onboarding: %d %s", resp.Code, resp.Body.String())
	}
	if stage := appStage(t, h); stage != "auth" {
		t.Fatalf("expected auth stage got %q", stage)
	}

	resp := h.do(http.MethodPost, "/api/v1/auth/login", `{"email":"ada@pharmacy.ng","password":"secret"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("login: %d %s", resp.Code, resp.Body.String())
	}
	if stage := appStage(t, h); stage != "app" {
		t.Fatalf("expected app stage got %q", stage)
	}

	resp = h.do(http.MethodGet, "/api/v1/dashboard", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("dashboard: %d %s", resp.Code, resp.Body.String())
	}
	if h.dashboard.token != "backend-token" {
		t.Fatalf("dashboard received token %q", h.dashboard.token)
	}

	if resp := h.do(http.MethodPost, "/api/v1/auth/logout", ""); resp.Code != http.StatusOK {
		t.Fatalf("logout: %d", resp.Code)
	}
	if resp := h.do(http.MethodGet, "/api/v1/dashboard", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout got %d", resp.Code)
	}
}

func TestLoginIsRateLimitedPerEmail(t *testing.T) {
	h := newHarness(t, testConfig())
	body := `{"email":"ada@pharmacy.ng","password":"secret"}`

	for i := 0; i < 2; i++ {
		if resp := h.do(http.MethodPost, "/api/v1/auth/login", body); resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i+1, resp.Code)
		}
	}
	resp := h.do(http.MethodPost, "/api/v1/auth/login", body)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestMetricsExposeBackendCalls(t *testing.T) {
	h := newHarness(t, testConfig())
	h.do(http.MethodPost, "/api/v1/auth/login", `{"email":"ada@pharmacy.ng","password":"secret"}`)

	resp := h.do(http.MethodGet, "/metrics", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "backend_requests_total") {
		t.Fatalf("backend metrics missing from exposition")
	}
}

func TestUnwiredServiceReturnsInternal(t *testing.T) {
	h := newHarness(t, testConfig())
	if err := h.sessions.Login(context.Background(), "tok", session.User{Name: "Ada"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	resp := h.do(http.MethodGet, "/api/v1/orders", "")
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestCheckoutReplaysResponseForRepeatedIdempotencyKey(t *testing.T) {
	h := newHarness(t, testConfig())
	if err := h.sessions.Login(context.Background(), "tok", session.User{ID: "u-1", Name: "Ada"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp := h.do(http.MethodPost, "/api/v1/pos/inventory/refresh", ""); resp.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", resp.Code, resp.Body.String())
	}
	if resp := h.do(http.MethodPost, "/api/v1/pos/cart/items", `{"medicationId":"A"}`); resp.Code != http.StatusOK {
		t.Fatalf("add item: %d %s", resp.Code, resp.Body.String())
	}

	key := map[string]string{"Idempotency-Key": "till-1-sale-1"}
	first := h.doWithHeaders(http.MethodPost, "/api/v1/pos/checkout", `{"paymentMethod":"Cash"}`, key)
	if first.Code != http.StatusCreated {
		t.Fatalf("checkout: %d %s", first.Code, first.Body.String())
	}

	replay := h.doWithHeaders(http.MethodPost, "/api/v1/pos/checkout", `{"paymentMethod":"Cash"}`, key)
	if replay.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 got %d %s", replay.Code, replay.Body.String())
	}
	if replay.Body.String() != first.Body.String() {
		t.Fatalf("replayed body differs: %s vs %s", replay.Body.String(), first.Body.String())
	}
	if got := atomic.LoadInt32(h.sales); got != 1 {
		t.Fatalf("expected one recorded sale got %d", got)
	}

	reused := h.doWithHeaders(http.MethodPost, "/api/v1/pos/checkout", `{"paymentMethod":"Card"}`, key)
	if reused.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key got %d", reused.Code)
	}
	if !strings.Contains(reused.Body.String(), "IDEMPOTENCY_KEY_REUSED") {
		t.Fatalf("unexpected body %s", reused.Body.String())
	}
}

func TestBackendRejectionEndsSession(t *testing.T) {
	h := newHarness(t, testConfig())
	if err := h.sessions.Login(context.Background(), "tok", session.User{ID: "u-1", Name: "Ada"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if resp := h.do(http.MethodGet, "/api/v1/pos/sales", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected backend 401 to surface, got %d", resp.Code)
	}
	if resp := h.do(http.MethodGet, "/api/v1/pos/cart", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected session to be ended, got %d", resp.Code)
	}
	if stage := appStage(t, h); stage == "app" {
		t.Fatalf("expected to leave the app stage")
	}
}

func appStage(t *testing.T, h *harness) string {
	t.Helper()
	resp := h.do(http.MethodGet, "/api/v1/app/state", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("app state: %d %s", resp.Code, resp.Body.String())
	}
	var env struct {
		Data struct {
			Stage string `json:"stage"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode app state: %v", err)
	}
	return env.Data.Stage
}
