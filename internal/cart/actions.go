package cart

import "github.com/shopspring/decimal"

// Action is the closed set of cart transitions. Only the types in this file
// implement it.
type Action interface {
	isAction()
}

// AddOrAdjust creates the line when it is missing, otherwise shifts its quantity by
// Quantity (which may be negative). Name and UnitPrice are only read on creation.
type AddOrAdjust struct {
	MedicationID MedicationID
	Name         string
	UnitPrice    decimal.Decimal
	Quantity     int
}

// AddItem adds Quantity units, creating the line on first add.
type AddItem struct {
	MedicationID MedicationID
	Name         string
	UnitPrice    decimal.Decimal
	Quantity     int
}

// AdjustQuantity shifts the quantity of an existing line by Delta.
type AdjustQuantity struct {
	MedicationID MedicationID
	Delta        int
}

// Remove drops the line for MedicationID.
type Remove struct {
	MedicationID MedicationID
}

// Clear empties the cart.
type Clear struct{}

func (AddOrAdjust) isAction()    {}
func (AddItem) isAction()        {}
func (AdjustQuantity) isAction() {}
func (Remove) isAction()         {}
func (Clear) isAction()          {}
