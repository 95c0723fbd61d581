package enums

import "fmt"

// InventoryFilter narrows the medication list shown to staff.
type InventoryFilter string

const (
	InventoryFilterAll     InventoryFilter = "all"
	InventoryFilterLow     InventoryFilter = "low"
	InventoryFilterExpired InventoryFilter = "expired"
	InventoryFilterInStock InventoryFilter = "in_stock"
)

var validInventoryFilters = []InventoryFilter{
	InventoryFilterAll,
	InventoryFilterLow,
	InventoryFilterExpired,
	InventoryFilterInStock,
}

// String implements fmt.Stringer.
func (f InventoryFilter) String() string {
	return string(f)
}

// IsValid reports whether the value is a known InventoryFilter.
func (f InventoryFilter) IsValid() bool {
	for _, candidate := range validInventoryFilters {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseInventoryFilter converts raw input into an InventoryFilter. Blank input means all.
func ParseInventoryFilter(value string) (InventoryFilter, error) {
	if value == "" {
		return InventoryFilterAll, nil
	}
	for _, candidate := range validInventoryFilters {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory filter %q", value)
}
