package repository

// DefaultPageLimit is applied when a caller asks for a non-positive limit.
const DefaultPageLimit = 50

// Page represents a simple limit/offset window for listing operations.
// I keep it intentionally small; advanced filtering belongs to higher layers.
type Page struct {
	Limit  int
	Offset int
}

// PageResult carries a slice of items and the total count matching the query.
// I return the total so clients can compute pagination without an extra round trip.
type PageResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Normalize clamps the window to sane values.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Slice cuts a page out of an already ordered collection.
func Slice[T any](all []T, p Page) PageResult[T] {
	p = p.Normalize()
	res := PageResult[T]{Items: []T{}, Total: len(all)}
	if p.Offset >= len(all) {
		return res
	}
	end := p.Offset + p.Limit
	if end > len(all) {
		end = len(all)
	}
	res.Items = append(res.Items, all[p.Offset:end]...)
	return res
}
