package domain

import (
	"strconv"
	"strings"
)

// DefaultColor is DefaultColorHex as packed ARGB.
const DefaultColor uint32 = 0xFF6750A4

// ParseColorHex converts a "#RRGGBB" or "#AARRGGBB" string to packed ARGB.
// Malformed values return the default color; rendering must never fail on
// whatever ended up in the store.
func ParseColorHex(hex string) uint32 {
	cleaned := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	v, err := strconv.ParseUint(cleaned, 16, 64)
	if err != nil {
		return DefaultColor
	}
	switch len(cleaned) {
	case 6:
		return 0xFF000000 | uint32(v)
	case 8:
		return uint32(v)
	}
	return DefaultColor
}
