package inventory

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pharmalink/pharmacy-pos/internal/cart"
	"github.com/pharmalink/pharmacy-pos/pkg/enums"
	"github.com/pharmalink/pharmacy-pos/pkg/types"
	"github.com/shopspring/decimal"
)

const expiryLayout = "2006-01-02"

// Medication is one stocked medication of the pharmacy.
type Medication struct {
	ID           types.ID          `json:"id"`
	MedicationID cart.MedicationID `json:"medicationId"`
	Name         string            `json:"name"`
	BrandName    string            `json:"brandName,omitempty"`
	GenericName  string            `json:"genericName,omitempty"`
	Stock        int               `json:"stock"`
	Price        decimal.Decimal   `json:"price"`
	ExpiryDate   string            `json:"expiryDate,omitempty"`

	LowStock bool `json:"lowStock"`
	Expired  bool `json:"expired"`
}

// Key is the identifier cart lines use for this medication.
func (m Medication) Key() cart.MedicationID {
	if !m.MedicationID.IsZero() {
		return m.MedicationID
	}
	return cart.MedicationID(m.ID)
}

// DisplayName prefers the brand name, then the generic name, then the raw name.
func (m Medication) DisplayName() string {
	for _, candidate := range []string{m.BrandName, m.GenericName, m.Name} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return ""
}

// ExpiresAt parses ExpiryDate, accepting a bare date or a full timestamp.
func (m Medication) ExpiresAt() (time.Time, bool) {
	raw := strings.TrimSpace(m.ExpiryDate)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(expiryLayout, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Query narrows the medication list.
type Query struct {
	Search string
	Filter enums.InventoryFilter
}

// ListResult is the filtered medication list.
type ListResult struct {
	Medications []Medication `json:"medications"`
	Total       int          `json:"total"`
}

// AddRequest stocks a catalogue medication chosen from the suggestions.
type AddRequest struct {
	MedicationID string           `json:"medicationId" validate:"required"`
	Stock        *int             `json:"stock" validate:"required,min=0"`
	Price        *decimal.Decimal `json:"price" validate:"required"`
	ExpiryDate   string           `json:"expiryDate"`
}

// UpdateRequest changes stock, price or expiry of a stocked medication.
type UpdateRequest struct {
	MedicationID string           `json:"medicationId" validate:"required"`
	Stock        *int             `json:"stock" validate:"required,min=0"`
	Price        *decimal.Decimal `json:"price" validate:"required"`
	ExpiryDate   string           `json:"expiryDate"`
}

// Suggestion is a catalogue entry offered while adding stock.
type Suggestion struct {
	ID          types.ID `json:"id"`
	Name        string   `json:"name,omitempty"`
	BrandName   string   `json:"brandName,omitempty"`
	GenericName string   `json:"genericName,omitempty"`
	Strength    string   `json:"strength,omitempty"`
	Form        string   `json:"form,omitempty"`
}

type medicationsPayload struct {
	Medications []Medication `json:"medications"`
}

type stockBody struct {
	MedicationID string      `json:"medicationId"`
	Stock        int         `json:"stock"`
	Price        json.Number `json:"price"`
	ExpiryDate   string      `json:"expiryDate"`
}
