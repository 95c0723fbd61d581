package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any page can request.
	MaxLimit = 100
)

// Params holds page-number pagination inputs from controllers or services.
// Pages are 1-based.
type Params struct {
	Page  int
	Limit int
}

// Normalize applies the default page size (falling back to DefaultLimit when
// defaultLimit is not positive) and clamps page and limit into range.
func (p Params) Normalize(defaultLimit int) Params {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// HasMore reports whether rows beyond the current page exist given the
// backend's total count.
func HasMore(p Params, total int) bool {
	return p.Page*p.Limit < total
}
