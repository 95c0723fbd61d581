package pos

import (
	"encoding/json"
	"time"

	"github.com/pharmalink/pharmacy-pos/internal/cart"
	"github.com/pharmalink/pharmacy-pos/pkg/types"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// CartView is the cart as shown at the till.
type CartView struct {
	Lines     []cart.Line     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

func viewOf(state cart.State) CartView {
	lines := state.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	return CartView{
		Lines:     lines,
		Total:     cart.Total(state),
		ItemCount: cart.ItemCount(state),
	}
}

// AddToCartRequest adds one unit of a stocked medication.
type AddToCartRequest struct {
	MedicationID string `json:"medicationId" validate:"required"`
}

// CheckoutRequest settles the current cart. A blank payment method falls back
// to the first configured one.
type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// CheckoutResult describes a recorded sale.
type CheckoutResult struct {
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"itemCount"`
	PaymentMethod string          `json:"paymentMethod"`
	Message       string          `json:"message"`
	Cart          CartView        `json:"cart"`
}

// SaleItem is one line of a recorded sale.
type SaleItem struct {
	MedicationID cart.MedicationID `json:"medicationId"`
	Name         string            `json:"name"`
	Price        decimal.Decimal   `json:"price"`
	Quantity     int               `json:"quantity"`
}

// Sale is a walk-in sale recorded by the backend.
type Sale struct {
	ID            types.ID        `json:"id,omitempty"`
	Items         []SaleItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	CreatedAt     *time.Time      `json:"createdAt,omitempty"`
}

// SalesHistory lists the sales recorded on one day.
type SalesHistory struct {
	Date  string          `json:"date"`
	Sales []Sale          `json:"sales"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type salesPayload struct {
	Sales []Sale `json:"sales"`
}

type saleItemBody struct {
	MedicationID string      `json:"medicationId"`
	Name         string      `json:"name"`
	Price        json.Number `json:"price"`
	Quantity     int         `json:"quantity"`
}

type saleBody struct {
	Items         []saleItemBody `json:"items"`
	Total         json.Number    `json:"total"`
	PaymentMethod string         `json:"paymentMethod"`
}
