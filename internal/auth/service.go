package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/pharmalink/pharmacy-pos/internal/cart"
	"github.com/pharmalink/pharmacy-pos/pkg/auth/session"
	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
)

const (
	allFieldsRequiredMessage = "All fields are required."
	passwordMismatchMessage  = "Passwords do not match."
	emailRequiredMessage     = "Email is required."
	// ForgotPasswordMessage is returned whether or not the address is known.
	ForgotPasswordMessage = "If this email exists, a reset link has been sent."
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*SessionResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error)
	Logout(ctx context.Context) error
	SessionRejected(ctx context.Context, token string) error
}

type repository interface {
	Login(ctx context.Context, email, password string) (*authPayload, error)
	Register(ctx context.Context, pharmacy RegisterPharmacy, user RegisterUser) (*authPayload, error)
}

type sessionManager interface {
	Login(ctx context.Context, token string, user session.User) error
	Logout(ctx context.Context) error
	Current() (session.Session, bool)
	Token() string
}

type cartDispatcher interface {
	Dispatch(action cart.Action) cart.State
}

type service struct {
	repo    repository
	session sessionManager
	cart    cartDispatcher
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Repo    repository
	Session sessionManager
	Cart    cartDispatcher
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("auth repository is required")
	}
	if params.Session == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart handle is required")
	}
	return &service{repo: params.Repo, session: params.Session, cart: params.Cart}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Email and password are required.")
	}

	payload, err := s.repo.Login(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}
	user := payload.User
	if user.Pharmacy == nil {
		user.Pharmacy = payload.Pharmacy
	}
	return s.startSession(ctx, payload.Token, user)
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error) {
	if !registerComplete(req) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, allFieldsRequiredMessage)
	}
	if req.User.Password != req.ConfirmPassword {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, passwordMismatchMessage)
	}

	req.User.Email = strings.TrimSpace(req.User.Email)
	payload, err := s.repo.Register(ctx, req.Pharmacy, req.User)
	if err != nil {
		return nil, err
	}
	user := payload.User
	if user.Pharmacy == nil {
		user.Pharmacy = payload.Pharmacy
	}
	return s.startSession(ctx, payload.Token, user)
}

// ForgotPassword never reveals whether the address has an account.
func (s *service) ForgotPassword(_ context.Context, req ForgotPasswordRequest) (*MessageResponse, error) {
	if strings.TrimSpace(req.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, emailRequiredMessage)
	}
	return &MessageResponse{Message: ForgotPasswordMessage}, nil
}

// Logout ends the session and drops any sale in progress.
func (s *service) Logout(ctx context.Context) error {
	s.cart.Dispatch(cart.Clear{})
	if err := s.session.Logout(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear session")
	}
	return nil
}

// SessionRejected ends the session when the backend refused token and it is
// still the active one. A token replaced by a newer sign-in is ignored.
func (s *service) SessionRejected(ctx context.Context, token string) error {
	if token == "" || s.session.Token() != token {
		return nil
	}
	return s.Logout(ctx)
}

func (s *service) startSession(ctx context.Context, token string, user session.User) (*SessionResponse, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "backend returned no session token")
	}
	prev, signedIn := s.session.Current()
	if err := s.session.Login(ctx, token, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store session")
	}
	if signedIn && !sameOperator(prev.User, user) {
		s.cart.Dispatch(cart.Clear{})
	}
	sess, _ := s.session.Current()
	return &SessionResponse{User: sess.User, ExpiresAt: sess.ExpiresAt}, nil
}

// sameOperator reports whether next is known to be the user of the previous
// session. An unknown previous user counts as a different operator.
func sameOperator(prev *session.User, next session.User) bool {
	if prev == nil {
		return false
	}
	id := prev.ID.String()
	return id != "" && id == next.ID.String()
}

func registerComplete(req RegisterRequest) bool {
	p, u := req.Pharmacy, req.User
	for _, v := range []string{p.Name, p.Address, p.LGA, p.State, p.Ward, p.Phone, p.LicenseNumber, u.Name, u.Email, u.Password, req.ConfirmPassword} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return p.Latitude != nil && p.Longitude != nil
}
