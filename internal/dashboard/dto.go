package dashboard

import (
	"time"

	"github.com/pharmalink/pharmacy-pos/pkg/enums"
	"github.com/pharmalink/pharmacy-pos/pkg/types"
	"github.com/shopspring/decimal"
)

// Display limits for the summary lists.
const (
	TopSellingLimit = 3
	LowStockLimit   = 3
	RecentLimit     = 5
)

// TopSellingMed is a best seller of the current period.
type TopSellingMed struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// LowStockMed is a medication close to running out.
type LowStockMed struct {
	Name    string `json:"name"`
	Stock   int    `json:"stock"`
	Form    string `json:"form,omitempty"`
	Urgency string `json:"urgency"`
}

// Activity is a recent order event.
type Activity struct {
	ID          types.ID          `json:"id"`
	Status      enums.OrderStatus `json:"status"`
	StatusLabel string            `json:"statusLabel"`
	Amount      decimal.Decimal   `json:"amount"`
	Time        *time.Time        `json:"time,omitempty"`
}

// Summary is the pharmacy's at-a-glance figures for today. Trends are
// percentages against the previous period and absent when unknown.
type Summary struct {
	RevenueToday    decimal.Decimal `json:"revenueToday"`
	RevenueTrend    *float64        `json:"revenueTrend,omitempty"`
	PosRevenueToday decimal.Decimal `json:"posRevenueToday"`
	PosRevenueTrend *float64        `json:"posRevenueTrend,omitempty"`
	OrdersToday     int             `json:"ordersToday"`
	OrdersTrend     *float64        `json:"ordersTrend,omitempty"`
	PosSalesToday   int             `json:"posSalesToday"`
	PosSalesTrend   *float64        `json:"posSalesTrend,omitempty"`

	PendingOrders    int `json:"pendingOrders"`
	ProcessingOrders int `json:"processingOrders"`
	ReadyOrders      int `json:"readyOrders"`
	InventoryAlerts  int `json:"inventoryAlerts"`
	ExpiringMeds     int `json:"expiringMeds"`

	TopSellingMeds []TopSellingMed `json:"topSellingMeds"`
	LowStockMeds   []LowStockMed   `json:"lowStockMeds"`
	RecentActivity []Activity      `json:"recentActivity"`
}
