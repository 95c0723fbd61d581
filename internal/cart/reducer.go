package cart

import "github.com/shopspring/decimal"

// Apply returns the state that results from applying action to state. It never
// mutates its input and never fails. Every result keeps each line's quantity at
// one or more: a transition that would drop a line to zero or below removes it.
func Apply(state State, action Action) State {
	switch a := action.(type) {
	case AddOrAdjust:
		return addOrAdjust(state, a.MedicationID, a.Name, a.UnitPrice, a.Quantity)
	case AddItem:
		if a.Quantity <= 0 {
			return state
		}
		return addOrAdjust(state, a.MedicationID, a.Name, a.UnitPrice, a.Quantity)
	case AdjustQuantity:
		idx := state.indexOf(a.MedicationID)
		if idx < 0 {
			return state
		}
		return adjustAt(state, idx, a.Delta)
	case Remove:
		idx := state.indexOf(a.MedicationID)
		if idx < 0 {
			return state
		}
		return removeAt(state, idx)
	case Clear:
		return Empty()
	}
	return state
}

func addOrAdjust(state State, id MedicationID, name string, unitPrice decimal.Decimal, qty int) State {
	if qty == 0 {
		return state
	}
	idx := state.indexOf(id)
	if idx >= 0 {
		return adjustAt(state, idx, qty)
	}
	if qty < 0 {
		return state
	}
	next := state.clone()
	next.Lines = append(next.Lines, Line{
		MedicationID: id,
		Name:         name,
		UnitPrice:    unitPrice,
		Quantity:     qty,
	})
	return next
}

func adjustAt(state State, idx, delta int) State {
	if delta == 0 {
		return state
	}
	qty := state.Lines[idx].Quantity + delta
	if qty <= 0 {
		return removeAt(state, idx)
	}
	next := state.clone()
	next.Lines[idx].Quantity = qty
	return next
}

func removeAt(state State, idx int) State {
	lines := make([]Line, 0, len(state.Lines)-1)
	lines = append(lines, state.Lines[:idx]...)
	lines = append(lines, state.Lines[idx+1:]...)
	return State{Lines: lines}
}

// Total is Σ unit price × quantity over all lines.
func Total(state State) decimal.Decimal {
	total := decimal.Zero
	for _, line := range state.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount is Σ quantity over all lines.
func ItemCount(state State) int {
	count := 0
	for _, line := range state.Lines {
		count += line.Quantity
	}
	return count
}
