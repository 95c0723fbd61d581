package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pharmalink/pharmacy-pos/internal/backend"
	"github.com/pharmalink/pharmacy-pos/internal/cart"
	"github.com/pharmalink/pharmacy-pos/pkg/auth/session"
	"github.com/pharmalink/pharmacy-pos/pkg/config"
	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
	"github.com/pharmalink/pharmacy-pos/pkg/storage/kv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDeps struct {
	svc     Service
	session *session.Manager
	store   *kv.Memory
	cart    *cart.Handle
	calls   []string
}

func buildTestService(t *testing.T, handler http.HandlerFunc) *testDeps {
	t.Helper()
	deps := &testDeps{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deps.calls = append(deps.calls, r.Method+" "+r.URL.Path)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := backend.New(config.BackendConfig{BaseURL: srv.URL}, nil, nil)
	require.NoError(t, err)

	deps.store = kv.NewMemory()
	deps.session, err = session.NewManager(deps.store)
	require.NoError(t, err)
	deps.cart = cart.NewHandle()

	deps.svc, err = NewService(ServiceParams{
		Repo:    NewRepository(client),
		Session: deps.session,
		Cart:    deps.cart,
	})
	require.NoError(t, err)
	return deps
}

func validRegisterRequest() RegisterRequest {
	lat, lng := 6.5244, 3.3792
	return RegisterRequest{
		Pharmacy: RegisterPharmacy{
			Name: "Manzu Pharmacy", Address: "12 Broad St", LGA: "Lagos Island", State: "Lagos",
			Ward: "Ward A", Phone: "08030000000", LicenseNumber: "PCN-001", Latitude: &lat, Longitude: &lng,
		},
		User:            RegisterUser{Name: "Ada", Email: "ada@pharm.ng", Password: "secret"},
		ConfirmPassword: "secret",
	}
}

func TestLogin_StoresSessionWithPharmacy(t *testing.T) {
	deps := buildTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "ada@pharm.ng", body["email"])
		assert.Equal(t, "pw", body["password"])
		_, _ = w.Write([]byte(`{"token":"tok-1","user":{"id":3,"name":"Ada","email":"ada@pharm.ng"},"pharmacy":{"id":9,"name":"Manzu"}}`))
	})

	resp, err := deps.svc.Login(context.Background(), LoginRequest{Email: " ada@pharm.ng ", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "3", resp.User.ID.String())
	require.NotNil(t, resp.User.Pharmacy)
	assert.Equal(t, "Manzu", resp.User.Pharmacy.Name)

	assert.Equal(t, "tok-1", deps.session.Token())
	stored, err := deps.store.Get(context.Background(), session.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", stored)
	assert.Equal(t, []string{"POST /auth/login"}, deps.calls)
}

func TestLogin_SurfacesBackendMessage(t *testing.T) {
	deps := buildTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
	})

	_, err := deps.svc.Login(context.Background(), LoginRequest{Email: "ada@pharm.ng", Password: "bad"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	assert.Equal(t, "Invalid email or password", typed.Message())
	assert.Empty(t, deps.session.Token())
}

func TestLogin_RequiresCredentials(t *testing.T) {
	deps := buildTestService(t, func(http.ResponseWriter, *http.Request) {})
	_, err := deps.svc.Login(context.Background(), LoginRequest{Email: " ", Password: "x"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Empty(t, deps.calls)
}

func TestLogin_RejectsMissingToken(t *testing.T) {
	deps := buildTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"name":"Ada"}}`))
	})
	_, err := deps.svc.Login(context.Background(), LoginRequest{Email: "ada@pharm.ng", Password: "pw"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
	assert.Empty(t, deps.session.Token())
}

func TestRegister(t *testing.T) {
	deps := buildTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "Manzu Pharmacy", body["pharmacy"]["name"])
		assert.Equal(t, 6.5244, body["pharmacy"]["latitude"])
		assert.Equal(t, "secret", body["user"]["password"])
		_, hasConfirm := body["confirmPassword"]
		assert.False(t, hasConfirm)
		_, _ = w.Write([]byte(`{"token":"tok-new","user":{"id":"u1","name":"Ada","email":"ada@pharm.ng"}}`))
	})

	resp, err := deps.svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)
	assert.Equal(t, "Ada", resp.User.Name)
	assert.Equal(t, "tok-new", deps.session.Token())
}

func TestRegister_Validation(t *testing.T) {
	deps := buildTestService(t, func(http.ResponseWriter, *http.Request) {})

	missing := validRegisterRequest()
	missing.Pharmacy.Ward = " "
	_, err := deps.svc.Register(context.Background(), missing)
	require.Error(t, err)
	assert.Equal(t, allFieldsRequiredMessage, pkgerrors.As(err).Message())

	noCoords := validRegisterRequest()
	noCoords.Pharmacy.Longitude = nil
	_, err = deps.svc.Register(context.Background(), noCoords)
	assert.Equal(t, allFieldsRequiredMessage, pkgerrors.As(err).Message())

	mismatch := validRegisterRequest()
	mismatch.ConfirmPassword = "other"
	_, err = deps.svc.Register(context.Background(), mismatch)
	assert.Equal(t, passwordMismatchMessage, pkgerrors.As(err).Message())

	assert.Empty(t, deps.calls)
}

func TestForgotPassword(t *testing.T) {
	deps := buildTestService(t, func(http.ResponseWriter, *http.Request) {})

	resp, err := deps.svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "nobody@pharm.ng"})
	require.NoError(t, err)
	assert.Equal(t, ForgotPasswordMessage, resp.Message)

	_, err = deps.svc.ForgotPassword(context.Background(), ForgotPasswordRequest{})
	assert.Equal(t, emailRequiredMessage, pkgerrors.As(err).Message())
	assert.Empty(t, deps.calls)
}

func TestLogout_ClearsSessionAndCart(t *testing.T) {
	deps := buildTestService(t, func(http.ResponseWriter, *http.Request) {})
	ctx := context.Background()
	require.NoError(t, deps.session.Login(ctx, "tok", session.User{Name: "Ada"}))
	deps.cart.Dispatch(cart.AddItem{MedicationID: "1", Name: "Paracetamol", UnitPrice: decimal.NewFromInt(500), Quantity: 2})

	require.NoError(t, deps.svc.Logout(ctx))

	_, ok := deps.session.Current()
	assert.False(t, ok)
	assert.True(t, deps.cart.Snapshot().IsEmpty())
	_, err := deps.store.Get(ctx, session.TokenKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestSessionRejected_EndsOnlyTheActiveSession(t *testing.T) {
	deps := buildTestService(t, func(http.ResponseWriter, *http.Request) {})
	ctx := context.Background()
	require.NoError(t, deps.session.Login(ctx, "tok-new", session.User{Name: "Ada"}))
	deps.cart.Dispatch(cart.AddItem{MedicationID: "1", Name: "Paracetamol", UnitPrice: decimal.NewFromInt(500), Quantity: 1})

	require.NoError(t, deps.svc.SessionRejected(ctx, "tok-old"))
	assert.Equal(t, "tok-new", deps.session.Token())
	assert.False(t, deps.cart.Snapshot().IsEmpty())

	require.NoError(t, deps.svc.SessionRejected(ctx, "tok-new"))
	_, ok := deps.session.Current()
	assert.False(t, ok)
	assert.True(t, deps.cart.Snapshot().IsEmpty())
}

func TestLogin_ClearsCartWhenOperatorChanges(t *testing.T) {
	userID := "3"
	deps := buildTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok-` + userID + `","user":{"id":` + userID + `,"name":"Staff","email":"staff@pharm.ng"}}`))
	})
	ctx := context.Background()
	addLine := func() {
		deps.cart.Dispatch(cart.AddItem{MedicationID: "1", Name: "Paracetamol", UnitPrice: decimal.NewFromInt(500), Quantity: 1})
	}

	_, err := deps.svc.Login(ctx, LoginRequest{Email: "staff@pharm.ng", Password: "pw"})
	require.NoError(t, err)
	addLine()

	_, err = deps.svc.Login(ctx, LoginRequest{Email: "staff@pharm.ng", Password: "pw"})
	require.NoError(t, err)
	assert.False(t, deps.cart.Snapshot().IsEmpty(), "same operator keeps the sale in progress")

	userID = "4"
	_, err = deps.svc.Login(ctx, LoginRequest{Email: "other@pharm.ng", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, deps.cart.Snapshot().IsEmpty(), "a new operator starts with an empty cart")
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}
