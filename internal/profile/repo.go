package profile

import (
	"context"
	"net/http"

	"github.com/pharmalink/pharmacy-pos/internal/backend"
)

const profilePath = "/pharmacy/profile"

// Repository calls the backend profile endpoint.
type Repository struct {
	api backend.Requester
}

func NewRepository(api backend.Requester) *Repository {
	return &Repository{api: api}
}

func (r *Repository) Get(ctx context.Context, token string) (*Profile, error) {
	var out Profile
	if err := r.api.Do(ctx, http.MethodGet, profilePath, token, nil, &out); err != nil {
		return nil, backend.AsAppError(err)
	}
	return &out, nil
}

func (r *Repository) Update(ctx context.Context, token string, body updateBody) error {
	if err := r.api.Do(ctx, http.MethodPatch, profilePath, token, body, nil); err != nil {
		return backend.AsAppError(err)
	}
	return nil
}
