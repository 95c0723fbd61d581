package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pharmalink/pharmacy-pos/internal/backend"
)

// Repository calls the backend order endpoints.
type Repository struct {
	api backend.Requester
}

func NewRepository(api backend.Requester) *Repository {
	return &Repository{api: api}
}

func (r *Repository) List(ctx context.Context, token string, page, limit int) (*listPayload, error) {
	var out listPayload
	query := backend.WithQuery(url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	})
	if err := r.api.Do(ctx, http.MethodGet, "/pharmacy/orders", token, nil, &out, query); err != nil {
		return nil, backend.AsAppError(err)
	}
	return &out, nil
}

// Get fetches one order. The backend may wrap it as {"order": {...}}.
func (r *Repository) Get(ctx context.Context, token, id string) (*Order, error) {
	var raw json.RawMessage
	if err := r.api.Do(ctx, http.MethodGet, "/pharmacy/orders/"+url.PathEscape(id), token, nil, &raw); err != nil {
		return nil, backend.AsAppError(err)
	}
	return decodeOrder(raw)
}

func (r *Repository) UpdateStatus(ctx context.Context, token, id string, body statusBody) (*Order, error) {
	var raw json.RawMessage
	path := "/pharmacy/orders/" + url.PathEscape(id) + "/status"
	if err := r.api.Do(ctx, http.MethodPatch, path, token, body, &raw); err != nil {
		return nil, backend.AsAppError(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	return decodeOrder(raw)
}

func decodeOrder(raw json.RawMessage) (*Order, error) {
	var wrapped struct {
		Order *Order `json:"order"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Order != nil {
		return wrapped.Order, nil
	}
	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decoding order: %w", err)
	}
	return &order, nil
}
