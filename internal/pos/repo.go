package pos

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pharmalink/pharmacy-pos/internal/backend"
)

// Repository calls the backend sales endpoints.
type Repository struct {
	api backend.Requester
}

func NewRepository(api backend.Requester) *Repository {
	return &Repository{api: api}
}

// RecordSale posts a sale. idempotencyKey is sent unchanged on every retry of
// the same cart.
func (r *Repository) RecordSale(ctx context.Context, token, idempotencyKey string, body saleBody) error {
	if err := r.api.Do(ctx, http.MethodPost, "/pharmacy/sales", token, body, nil, backend.WithIdempotencyKey(idempotencyKey)); err != nil {
		return backend.AsAppError(err)
	}
	return nil
}

func (r *Repository) ListSales(ctx context.Context, token, date string) ([]Sale, error) {
	var out salesPayload
	opt := backend.WithQuery(url.Values{"date": {date}})
	if err := r.api.Do(ctx, http.MethodGet, "/pharmacy/sales", token, nil, &out, opt); err != nil {
		return nil, backend.AsAppError(err)
	}
	if out.Sales == nil {
		return []Sale{}, nil
	}
	return out.Sales, nil
}
