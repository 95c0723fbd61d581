package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MedicationID is the opaque key of a cart line. The backend emits both numeric
// and string identifiers, so decoding accepts either and keeps the canonical text.
type MedicationID string

func (id MedicationID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is blank.
func (id MedicationID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id *MedicationID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode medication id: %w", err)
		}
		*id = MedicationID(strings.TrimSpace(raw))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return fmt.Errorf("decode medication id: %w", err)
	}
	*id = MedicationID(num.String())
	return nil
}

// Line is one medication in the in-progress sale. Name and UnitPrice are captured
// when the medication is first added and never overwritten afterwards.
type Line struct {
	MedicationID MedicationID    `json:"medicationId"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
}

// Subtotal is the line's contribution to the cart total.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State holds the lines in first-add order, at most one per medication.
type State struct {
	Lines []Line `json:"lines"`
}

// Empty returns the initial cart configuration.
func Empty() State {
	return State{Lines: []Line{}}
}

func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Find returns the line for id, if present.
func (s State) Find(id MedicationID) (Line, bool) {
	if idx := s.indexOf(id); idx >= 0 {
		return s.Lines[idx], true
	}
	return Line{}, false
}

func (s State) indexOf(id MedicationID) int {
	for i, line := range s.Lines {
		if line.MedicationID == id {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	lines := make([]Line, len(s.Lines))
	copy(lines, s.Lines)
	return State{Lines: lines}
}
