package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/pharmalink/pharmacy-pos/pkg/enums"
	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
	"github.com/pharmalink/pharmacy-pos/pkg/pagination"
)

// Service defines the behavior needed by the orders controller.
type Service interface {
	List(ctx context.Context, token string, q Query) (*ListResult, error)
	Get(ctx context.Context, token, id string) (*Order, error)
	UpdateStatus(ctx context.Context, token, id string, req UpdateStatusRequest) (*Order, error)
}

type repository interface {
	List(ctx context.Context, token string, page, limit int) (*listPayload, error)
	Get(ctx context.Context, token, id string) (*Order, error)
	UpdateStatus(ctx context.Context, token, id string, body statusBody) (*Order, error)
}

type service struct {
	repo     repository
	pageSize int
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	Repo     repository
	PageSize int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	return &service{repo: params.Repo, pageSize: params.PageSize}, nil
}

// List fetches one backend page, then applies the status filter and search
// to that page only. Total and HasMore describe the unfiltered backend list.
func (s *service) List(ctx context.Context, token string, q Query) (*ListResult, error) {
	status, err := parseStatusFilter(q.Status)
	if err != nil {
		return nil, err
	}
	params := pagination.Params{Page: q.Page, Limit: q.Limit}.Normalize(s.pageSize)

	payload, err := s.repo.List(ctx, token, params.Page, params.Limit)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Order, 0, len(payload.Orders))
	for _, order := range payload.Orders {
		if status != "" && order.Status != status {
			continue
		}
		if !matchesSearch(order, search) {
			continue
		}
		out = append(out, decorate(order))
	}

	return &ListResult{
		Orders:  out,
		Total:   payload.Total,
		Page:    params.Page,
		Limit:   params.Limit,
		HasMore: pagination.HasMore(params, payload.Total),
	}, nil
}

func (s *service) Get(ctx context.Context, token, id string) (*Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.Get(ctx, token, id)
	if err != nil {
		return nil, err
	}
	decorated := decorate(*order)
	return &decorated, nil
}

// UpdateStatus checks the transition table before asking the backend to apply
// it. The backend stays the authority; the local check only spares a request
// that cannot succeed.
func (s *service) UpdateStatus(ctx context.Context, token, id string, req UpdateStatusRequest) (*Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !req.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown order status %q", req.Status)
	}

	current := req.CurrentStatus
	if current == "" {
		order, err := s.repo.Get(ctx, token, id)
		if err != nil {
			return nil, err
		}
		current = order.Status
	}
	if !current.CanTransitionTo(req.Status) {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", current.Label(), req.Status.Label()).
			WithDetails(map[string]any{
				"current":   current,
				"allowed":   current.NextStatuses(),
				"requested": req.Status,
			})
	}

	updated, err := s.repo.UpdateStatus(ctx, token, id, statusBody{Status: req.Status})
	if err != nil {
		return nil, err
	}
	if updated == nil || updated.ID == "" {
		updated, err = s.repo.Get(ctx, token, id)
		if err != nil {
			return nil, err
		}
	}
	decorated := decorate(*updated)
	return &decorated, nil
}

func parseStatusFilter(raw string) (enums.OrderStatus, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" || raw == StatusAll {
		return "", nil
	}
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("unknown order status %q", raw))
	}
	return status, nil
}

func matchesSearch(order Order, search string) bool {
	if search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(order.ID.String()), search) {
		return true
	}
	if strings.Contains(strings.ToLower(order.UserIdentifier), search) {
		return true
	}
	for _, item := range order.Items {
		if item.Medication != nil && strings.Contains(strings.ToLower(item.Medication.Name), search) {
			return true
		}
	}
	return false
}

func decorate(order Order) Order {
	order.StatusLabel = order.Status.Label()
	order.NextStatuses = order.Status.NextStatuses()
	order.HasPrescription = order.Prescription != nil && strings.TrimSpace(order.Prescription.FileURL) != ""
	if order.Items == nil {
		order.Items = []OrderItem{}
	}
	return order
}
