package orders

import (
	"time"

	"github.com/pharmalink/pharmacy-pos/pkg/enums"
	"github.com/pharmalink/pharmacy-pos/pkg/types"
	"github.com/shopspring/decimal"
)

// StatusAll disables the status filter.
const StatusAll = "ALL"

// OrderMedication is the catalogue entry behind an order item.
type OrderMedication struct {
	ID   types.ID `json:"id,omitempty"`
	Name string   `json:"name"`
}

// OrderItem is one medication line of a customer order.
type OrderItem struct {
	ID         types.ID         `json:"id,omitempty"`
	Quantity   int              `json:"quantity"`
	Price      decimal.Decimal  `json:"price"`
	Medication *OrderMedication `json:"medication,omitempty"`
}

// Prescription is an uploaded prescription attached to an order.
type Prescription struct {
	FileURL string `json:"fileUrl"`
}

// Order is a customer order placed with the pharmacy.
type Order struct {
	ID             types.ID          `json:"id"`
	Status         enums.OrderStatus `json:"status"`
	Name           string            `json:"name,omitempty"`
	UserIdentifier string            `json:"userIdentifier,omitempty"`
	TotalPrice     decimal.Decimal   `json:"totalPrice"`
	CreatedAt      *time.Time        `json:"createdAt,omitempty"`
	Items          []OrderItem       `json:"items"`
	Prescription   *Prescription     `json:"prescription,omitempty"`

	StatusLabel     string              `json:"statusLabel"`
	NextStatuses    []enums.OrderStatus `json:"nextStatuses"`
	HasPrescription bool                `json:"hasPrescription"`
}

// Query selects a page of orders and narrows it locally.
type Query struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// ListResult is one page of orders.
type ListResult struct {
	Orders  []Order `json:"orders"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	Limit   int     `json:"limit"`
	HasMore bool    `json:"hasMore"`
}

// UpdateStatusRequest moves an order to Status. CurrentStatus, when the caller
// already knows it, lets the transition be checked without a round trip.
type UpdateStatusRequest struct {
	Status        enums.OrderStatus `json:"status" validate:"required"`
	CurrentStatus enums.OrderStatus `json:"currentStatus,omitempty"`
}

type listPayload struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}

type statusBody struct {
	Status enums.OrderStatus `json:"status"`
}
