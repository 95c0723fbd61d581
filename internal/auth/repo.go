package auth

import (
	"context"
	"net/http"

	"github.com/pharmalink/pharmacy-pos/internal/backend"
)

// Repository calls the backend auth endpoints.
type Repository struct {
	api backend.Requester
}

func NewRepository(api backend.Requester) *Repository {
	return &Repository{api: api}
}

func (r *Repository) Login(ctx context.Context, email, password string) (*authPayload, error) {
	var out authPayload
	body := map[string]string{"email": email, "password": password}
	if err := r.api.Do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, backend.AsAppError(err)
	}
	return &out, nil
}

func (r *Repository) Register(ctx context.Context, pharmacy RegisterPharmacy, user RegisterUser) (*authPayload, error) {
	var out authPayload
	body := registerBody{Pharmacy: pharmacy, User: user}
	if err := r.api.Do(ctx, http.MethodPost, "/auth/register", "", body, &out); err != nil {
		return nil, backend.AsAppError(err)
	}
	return &out, nil
}
