package inventory

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pharmalink/pharmacy-pos/internal/backend"
)

// Repository calls the backend medication endpoints.
type Repository struct {
	api backend.Requester
}

func NewRepository(api backend.Requester) *Repository {
	return &Repository{api: api}
}

// List returns the pharmacy's medications with display names filled in.
func (r *Repository) List(ctx context.Context, token string) ([]Medication, error) {
	var out medicationsPayload
	if err := r.api.Do(ctx, http.MethodGet, "/pharmacy/medications", token, nil, &out); err != nil {
		return nil, backend.AsAppError(err)
	}
	meds := make([]Medication, 0, len(out.Medications))
	for _, med := range out.Medications {
		med.Name = med.DisplayName()
		meds = append(meds, med)
	}
	return meds, nil
}

func (r *Repository) Create(ctx context.Context, token string, body stockBody) error {
	if err := r.api.Do(ctx, http.MethodPost, "/pharmacy/medications", token, body, nil); err != nil {
		return backend.AsAppError(err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, token string, body stockBody) error {
	if err := r.api.Do(ctx, http.MethodPatch, "/pharmacy/medications", token, body, nil); err != nil {
		return backend.AsAppError(err)
	}
	return nil
}

func (r *Repository) Suggest(ctx context.Context, token, query string) ([]Suggestion, error) {
	var out []Suggestion
	opt := backend.WithQuery(url.Values{"q": {query}})
	if err := r.api.Do(ctx, http.MethodGet, "/medication-suggestions", token, nil, &out, opt); err != nil {
		return nil, backend.AsAppError(err)
	}
	return out, nil
}
