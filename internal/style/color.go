package style

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrInvalidColor = errors.New("invalid color")

// Color with components in [0, 1]
type ColorRGBA struct {
	R float64
	G float64
	B float64
	A float64
}

// Opaque white, the color used when none is configured
func DefaultColor() ColorRGBA {
	return ColorRGBA{R: 1, G: 1, B: 1, A: 1}
}

// Parses "#RRGGBBAA" or "#RRGGBB" hex notation
func ParseColor(s string) (ColorRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return ColorRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	rgb, err := colorful.Hex("#" + hex[:6])
	if err != nil {
		return ColorRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	alpha, err := strconv.ParseUint(hex[6:], 16, 8)
	if err != nil {
		return ColorRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	return ColorRGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: float64(alpha) / 255}, nil
}

// Parses a color and panics on error. Meant for literals in code.
func MustParseColor(s string) ColorRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ColorRGBA) String() string {
	rgb := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped()
	return fmt.Sprintf("%s%02x", rgb.Hex(), toByte(c.A))
}

func toByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
