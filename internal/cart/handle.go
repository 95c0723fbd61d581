package cart

import "sync"

// Handle is the process-wide cart that the point-of-sale service is constructed
// with. Dispatches are serialised so each one completes before the next starts.
type Handle struct {
	mu    sync.Mutex
	state State
}

func NewHandle() *Handle {
	return &Handle{state: Empty()}
}

// Dispatch applies action and returns a copy of the resulting state.
func (h *Handle) Dispatch(action Action) State {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = Apply(h.state, action)
	return h.state.clone()
}

// Snapshot returns a copy of the current state.
func (h *Handle) Snapshot() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.clone()
}
