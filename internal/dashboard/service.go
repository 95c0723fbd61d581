package dashboard

import (
	"context"
	"fmt"
)

// Service defines the behavior needed by the dashboard controller.
type Service interface {
	Get(ctx context.Context, token string) (*Summary, error)
}

type repository interface {
	Summary(ctx context.Context, token string) (*Summary, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository is required")
	}
	return &service{repo: repo}, nil
}

// Get returns the backend summary with its lists cut to display size.
func (s *service) Get(ctx context.Context, token string) (*Summary, error) {
	summary, err := s.repo.Summary(ctx, token)
	if err != nil {
		return nil, err
	}
	summary.TopSellingMeds = head(summary.TopSellingMeds, TopSellingLimit)
	summary.LowStockMeds = head(summary.LowStockMeds, LowStockLimit)
	summary.RecentActivity = head(summary.RecentActivity, RecentLimit)

	for i := range summary.LowStockMeds {
		summary.LowStockMeds[i].Urgency = urgency(summary.LowStockMeds[i].Stock)
	}
	for i := range summary.RecentActivity {
		summary.RecentActivity[i].StatusLabel = summary.RecentActivity[i].Status.Label()
	}
	return summary, nil
}

func head[T any](items []T, limit int) []T {
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		return []T{}
	}
	return items
}

func urgency(stock int) string {
	switch {
	case stock <= 0:
		return "critical"
	case stock < 5:
		return "high"
	default:
		return "medium"
	}
}
