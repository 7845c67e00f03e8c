package views

// Page is a deterministic window over an ordered result set. Requesting a
// page beyond the last one yields an empty Items slice, not an error.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"totalItems"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPage assembles a Page from an already-windowed item slice and the total
// size of the unwindowed result set.
func NewPage[T any](items []T, page, limit, totalItems int) Page[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}
	if items == nil {
		items = []T{}
	}

	totalPages := (totalItems + limit - 1) / limit

	return Page[T]{
		Items:      items,
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Paginate windows an in-memory slice that is already in its final order.
func Paginate[T any](items []T, page, limit int) Page[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	offset := (page - 1) * limit
	window := []T{}
	if offset < len(items) {
		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		window = items[offset:end]
	}

	return NewPage(window, page, limit, len(items))
}

// Window translates a page request into an offset/limit pair for store-level
// windowing.
func Window(page, limit int) (offset, lim int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	return (page - 1) * limit, limit
}
