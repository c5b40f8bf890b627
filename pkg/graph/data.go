package graph

import (
	"fmt"

	"github.com/chazu/nodegraph/pkg/geom"
)

// ---------------------------------------------------------------------------
// Color
// ---------------------------------------------------------------------------

// Color is an 8-bit RGBA colour. Presentation-only metadata.
type Color struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
	A uint8 `json:"a" yaml:"a"`
}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Hex formats the colour as #rrggbb, the form the web frontend consumes.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// Value is a socket default or a node property. The set of implementations
// is closed to this package.
type Value interface {
	value() // marker method restricting implementations to this package
	// Kind is the socket kind this value naturally flows through.
	Kind() SocketKind
}

// Number is a numeric value.
type Number float64

func (Number) value()           {}
func (Number) Kind() SocketKind { return KindNumber }

// Text is a string value.
type Text string

func (Text) value()           {}
func (Text) Kind() SocketKind { return KindString }

// Bool is a boolean value.
type Bool bool

func (Bool) value()           {}
func (Bool) Kind() SocketKind { return KindBoolean }

// VectorValue is a 2D vector value.
type VectorValue geom.Vec

func (VectorValue) value()           {}
func (VectorValue) Kind() SocketKind { return KindVector }

// ColorValue is a colour value.
type ColorValue Color

func (ColorValue) value()           {}
func (ColorValue) Kind() SocketKind { return KindColor }

// FormatValue renders a value for display. nil renders as the empty string.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case Number:
		return fmt.Sprintf("%g", float64(x))
	case Text:
		return string(x)
	case Bool:
		return fmt.Sprintf("%t", bool(x))
	case VectorValue:
		return fmt.Sprintf("(%g, %g)", x.X, x.Y)
	case ColorValue:
		return Color(x).Hex()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// cloneProperties copies a property map. Values are immutable so a shallow
// copy is a deep copy.
func cloneProperties(in map[string]Value) map[string]Value {
	if in == nil {
		return nil
	}
	out := make(map[string]Value, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneStrings(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
