package checkout

import (
	"fmt"

	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
)

// Stock violation reasons.
const (
	ReasonNotInInventory = "not_in_inventory"
	ReasonExceedsStock   = "exceeds_stock"
)

// StockValidationInput pairs one cart line with the stock last seen for it.
// Known is false when the medication is absent from the inventory snapshot.
type StockValidationInput struct {
	MedicationID string
	Name         string
	Known        bool
	Available    int
	Requested    int
}

// StockViolationDetail exposes the data returned to callers when a validation fails.
type StockViolationDetail struct {
	MedicationID string `json:"medicationId"`
	Name         string `json:"name,omitempty"`
	Available    int    `json:"available"`
	Requested    int    `json:"requested"`
	Reason       string `json:"reason"`
}

// ValidateStock ensures no line asks for more units than the snapshot holds.
// The message names the first offending medication.
func ValidateStock(items []StockValidationInput) error {
	var violations []StockViolationDetail
	for _, item := range items {
		switch {
		case !item.Known:
			violations = append(violations, StockViolationDetail{
				MedicationID: item.MedicationID,
				Name:         item.Name,
				Requested:    item.Requested,
				Reason:       ReasonNotInInventory,
			})
		case item.Requested > item.Available:
			violations = append(violations, StockViolationDetail{
				MedicationID: item.MedicationID,
				Name:         item.Name,
				Available:    item.Available,
				Requested:    item.Requested,
				Reason:       ReasonExceedsStock,
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	first := violations[0].Name
	if first == "" {
		first = violations[0].MedicationID
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Not enough stock for %s. Please adjust quantity.", first)).WithDetails(map[string]any{
		"violations": violations,
	})
}
