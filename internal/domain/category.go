package domain

// DefaultColorHex is used whenever a category has no usable color.
const DefaultColorHex = "#6750A4"

// Category is a user-defined spending category. Deleting a category does not
// cascade: transactions keep referencing the absent id and resolve to an
// "Unknown" placeholder at aggregation time.
type Category struct {
	ID        string
	Name      string
	ColorHex  string
	CreatedAt int64
}

// DecodeCategory builds a Category from a raw stored document, falling back
// field-by-field on missing or mistyped values.
func DecodeCategory(id string, data map[string]any) Category {
	color := asString(data["colorHex"])
	if color == "" {
		color = DefaultColorHex
	}
	return Category{
		ID:        id,
		Name:      asString(data["name"]),
		ColorHex:  color,
		CreatedAt: asInt64(data["createdAt"]),
	}
}

// EncodeCategory produces the stored document for c, without the id.
func EncodeCategory(c Category) map[string]any {
	return map[string]any{
		"name":      c.Name,
		"colorHex":  c.ColorHex,
		"createdAt": c.CreatedAt,
	}
}
