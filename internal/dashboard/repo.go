package dashboard

import (
	"context"
	"net/http"

	"github.com/pharmalink/pharmacy-pos/internal/backend"
)

// Repository calls the backend dashboard endpoint.
type Repository struct {
	api backend.Requester
}

func NewRepository(api backend.Requester) *Repository {
	return &Repository{api: api}
}

func (r *Repository) Summary(ctx context.Context, token string) (*Summary, error) {
	var out Summary
	if err := r.api.Do(ctx, http.MethodGet, "/pharmacy/dashboard", token, nil, &out); err != nil {
		return nil, backend.AsAppError(err)
	}
	return &out, nil
}
