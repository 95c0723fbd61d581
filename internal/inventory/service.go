package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pharmalink/pharmacy-pos/internal/backend"
	"github.com/pharmalink/pharmacy-pos/pkg/enums"
	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	// DefaultLowStockThreshold marks stock below this count as low.
	DefaultLowStockThreshold = 10
	requiredFieldsMessage    = "Medication, stock, and price are required."
)

// Service defines the behavior needed by the inventory controller.
type Service interface {
	List(ctx context.Context, token string, q Query) (*ListResult, error)
	Add(ctx context.Context, token string, req AddRequest) error
	Update(ctx context.Context, token string, req UpdateRequest) error
	Suggest(ctx context.Context, token, query string) []Suggestion
}

type repository interface {
	List(ctx context.Context, token string) ([]Medication, error)
	Create(ctx context.Context, token string, body stockBody) error
	Update(ctx context.Context, token string, body stockBody) error
	Suggest(ctx context.Context, token, query string) ([]Suggestion, error)
}

type service struct {
	repo              repository
	lowStockThreshold int
	now               func() time.Time
	logg              *logger.Logger
}

// ServiceParams bundles the dependencies required to build an inventory service.
type ServiceParams struct {
	Repo              repository
	LowStockThreshold int
	Logger            *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	threshold := params.LowStockThreshold
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &service{
		repo:              params.Repo,
		lowStockThreshold: threshold,
		now:               time.Now,
		logg:              params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context, token string, q Query) (*ListResult, error) {
	filter := q.Filter
	if filter == "" {
		filter = enums.InventoryFilterAll
	}
	if !filter.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown inventory filter %q", filter)
	}

	meds, err := s.repo.List(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Medication, 0, len(meds))
	for _, med := range meds {
		med.LowStock = med.Stock < s.lowStockThreshold
		if exp, ok := med.ExpiresAt(); ok {
			med.Expired = exp.Before(now)
		}
		if !matchesSearch(med, search) || !matchesFilter(med, filter) {
			continue
		}
		out = append(out, med)
	}
	return &ListResult{Medications: out, Total: len(out)}, nil
}

func (s *service) Add(ctx context.Context, token string, req AddRequest) error {
	body, err := buildStockBody(req.MedicationID, req.Stock, req.Price, req.ExpiryDate)
	if err != nil {
		return err
	}
	return s.repo.Create(ctx, token, body)
}

func (s *service) Update(ctx context.Context, token string, req UpdateRequest) error {
	body, err := buildStockBody(req.MedicationID, req.Stock, req.Price, req.ExpiryDate)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, token, body)
}

// Suggest never fails: a blank query or a backend error yields no suggestions.
func (s *service) Suggest(ctx context.Context, token, query string) []Suggestion {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Suggestion{}
	}
	out, err := s.repo.Suggest(ctx, token, query)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "inventory.suggest_failed")
		}
		return []Suggestion{}
	}
	if out == nil {
		return []Suggestion{}
	}
	return out
}

func matchesSearch(med Medication, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(med.Name), search) ||
		strings.Contains(strings.ToLower(med.ExpiryDate), search)
}

func matchesFilter(med Medication, filter enums.InventoryFilter) bool {
	switch filter {
	case enums.InventoryFilterLow:
		return med.LowStock
	case enums.InventoryFilterExpired:
		return med.Expired
	case enums.InventoryFilterInStock:
		return med.Stock > 0 && !med.Expired
	default:
		return true
	}
}

func buildStockBody(medicationID string, stock *int, price *decimal.Decimal, expiry string) (stockBody, error) {
	medicationID = strings.TrimSpace(medicationID)
	if medicationID == "" || stock == nil || price == nil {
		return stockBody{}, pkgerrors.New(pkgerrors.CodeValidation, requiredFieldsMessage)
	}
	if *stock < 0 {
		return stockBody{}, pkgerrors.New(pkgerrors.CodeValidation, "Stock cannot be negative.")
	}
	if price.IsNegative() {
		return stockBody{}, pkgerrors.New(pkgerrors.CodeValidation, "Price cannot be negative.")
	}
	expiry = strings.TrimSpace(expiry)
	if expiry != "" {
		if _, err := time.Parse(expiryLayout, expiry); err != nil {
			return stockBody{}, pkgerrors.New(pkgerrors.CodeValidation, "Expiry date must be YYYY-MM-DD.")
		}
	}
	return stockBody{
		MedicationID: medicationID,
		Stock:        *stock,
		Price:        backend.Number(*price),
		ExpiryDate:   expiry,
	}, nil
}
