package geom

import "fmt"

// Side is one of the four boundaries of an icon a connector may leave or
// enter from.
type Side int

const (
	Top Side = iota
	Bottom
	Left
	Right
)

// Sides lists every side in the fixed search order used by the router.
var Sides = [4]Side{Top, Bottom, Left, Right}

var sideNames = [4]string{"top", "bottom", "left", "right"}

func (s Side) String() string {
	if s < Top || s > Right {
		return fmt.Sprintf("side(%d)", int(s))
	}
	return sideNames[s]
}

// ParseSide parses the lower-case name of a side.
func ParseSide(name string) (Side, error) {
	for i, n := range sideNames {
		if n == name {
			return Side(i), nil
		}
	}
	return 0, fmt.Errorf("unknown side %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Normal returns the outward unit normal of the side.
func (s Side) Normal() (dx, dy float64) {
	switch s {
	case Top:
		return 0, -1
	case Bottom:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// NormalAxis is the axis a stem leaving this side travels along.
func (s Side) NormalAxis() Axis {
	switch s {
	case Top, Bottom:
		return AxisY
	default:
		return AxisX
	}
}

// Tangent is the axis along which ports on this side are spread.
func (s Side) Tangent() Axis { return s.NormalAxis().Other() }

// Opposite returns the side facing s.
func (s Side) Opposite() Side {
	switch s {
	case Top:
		return Bottom
	case Bottom:
		return Top
	case Left:
		return Right
	default:
		return Left
	}
}

// Outward reports the sign of the outward normal along NormalAxis.
func (s Side) Outward() float64 {
	dx, dy := s.Normal()
	return dx + dy
}
