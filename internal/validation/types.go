package validation

import "strings"

// CreateItemRequest is the payload for POST /api/items.
// Price is a pointer so an explicit zero survives the required check.
type CreateItemRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"` // optional, defaults to ""
	Price       *float64 `json:"price" validate:"required,gte=0"`
}

// Normalize trims the name so whitespace-only input fails required.
func (r *CreateItemRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// ReplaceItemRequest is the payload for PUT /api/items/:id. A replace
// carries the same writable fields as a create.
type ReplaceItemRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
}

func (r *ReplaceItemRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}
