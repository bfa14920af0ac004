package models

// Category represents a menu section as served by the catalog API.
// Name doubles as the display and lookup key of the resulting block.
type Category struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Children    []string `json:"children"`
}
