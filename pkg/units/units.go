// Package units converts lengths between model units and metres. All
// geometry inside the module is in metres.
package units

import (
	"fmt"
	"strings"
)

// Unit is a length unit.
type Unit int

const (
	Metre Unit = iota
	Millimetre
	Centimetre
	Foot
	Inch
)

var scale = [...]float64{
	Metre:      1,
	Millimetre: 0.001,
	Centimetre: 0.01,
	Foot:       0.3048,
	Inch:       0.0254,
}

func (u Unit) String() string {
	switch u {
	case Metre:
		return "m"
	case Millimetre:
		return "mm"
	case Centimetre:
		return "cm"
	case Foot:
		return "ft"
	case Inch:
		return "in"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Parse accepts a unit symbol or its spelled-out name.
func Parse(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "metre", "meter", "metres", "meters":
		return Metre, nil
	case "mm", "millimetre", "millimeter", "millimetres", "millimeters":
		return Millimetre, nil
	case "cm", "centimetre", "centimeter", "centimetres", "centimeters":
		return Centimetre, nil
	case "ft", "foot", "feet":
		return Foot, nil
	case "in", "inch", "inches":
		return Inch, nil
	}
	return Metre, fmt.Errorf("units: unknown unit %q", s)
}

// ToMetres converts v from u to metres.
func (u Unit) ToMetres(v float64) float64 { return v * u.factor() }

// FromMetres converts v from metres to u.
func (u Unit) FromMetres(v float64) float64 { return v / u.factor() }

func (u Unit) factor() float64 {
	if u < 0 || int(u) >= len(scale) {
		return 1
	}
	return scale[u]
}

// MarshalText renders the unit symbol.
func (u Unit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

// UnmarshalText parses a unit symbol or name.
func (u *Unit) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}
