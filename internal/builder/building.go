package builder

import (
	"strings"
	"unicode"

	"github.com/paulmach/osm"
	"github.com/shopspring/decimal"
)

const (
	buildingTag = "building"
	heightTag   = "height"
)

// Whether the tags mark a building. Values are compared without regard to case.
func IsBuilding(tags osm.Tags, truthy []string) bool {
	value := strings.TrimSpace(tags.Find(buildingTag))
	if value == "" {
		return false
	}
	for _, t := range truthy {
		if strings.EqualFold(value, t) {
			return true
		}
	}
	return false
}

// Parses the height tag, accepting free-form values such as "12", "12.5", "12,5" or "12.5 m".
// Missing, unparsable or non-positive heights yield def.
func BuildingHeight(tags osm.Tags, def float64) float64 {
	raw := strings.TrimSpace(tags.Find(heightTag))
	if raw == "" {
		return def
	}

	numeric := strings.ReplaceAll(leadingNumber(raw), ",", ".")
	d, err := decimal.NewFromString(numeric)
	if err != nil || !d.IsPositive() {
		return def
	}
	height, _ := d.Float64()
	return height
}

func leadingNumber(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != ',' && r != '-' && r != '+'
	})
	if end < 0 {
		return s
	}
	return s[:end]
}
