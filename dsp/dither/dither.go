// Package dither converts rendered float samples to integer PCM with
// optional dither noise and first-order error feedback.
package dither

import (
	"fmt"
	"strings"
)

// Type selects the probability distribution of the dither noise.
type Type int

const (
	// TypeNone rounds without added noise.
	TypeNone Type = iota
	// TypeRectangular adds uniform noise of one LSB peak to peak.
	TypeRectangular
	// TypeTriangular adds triangular (TPDF) noise of two LSB peak to peak.
	TypeTriangular

	typeCount
)

var typeNames = [typeCount]string{"none", "rectangular", "triangular"}

func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known dither type.
func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

// ParseType resolves a name as printed by Type.String.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}

	return TypeNone, fmt.Errorf("dither: unknown type %q", name)
}
