package rules

import (
	"fmt"
	"strings"
)

// Aura is the effect a cursor imparts on the sigils it collides with.
type Aura int

const (
	AuraCircle   Aura = iota + 1 // clone
	AuraTriangle                 // destroy
	AuraSquare                   // toggle rune
)

// Auras lists every aura in selection order.
var Auras = []Aura{AuraCircle, AuraTriangle, AuraSquare}

func (a Aura) String() string {
	switch a {
	case AuraCircle:
		return "circle"
	case AuraTriangle:
		return "triangle"
	case AuraSquare:
		return "square"
	default:
		return fmt.Sprintf("aura(%d)", int(a))
	}
}

// Valid reports whether a is one of the three auras.
func (a Aura) Valid() bool {
	return a >= AuraCircle && a <= AuraSquare
}

// Next cycles to the following aura, wrapping around.
func (a Aura) Next() Aura {
	if !a.Valid() || a == AuraSquare {
		return AuraCircle
	}
	return a + 1
}

// MarshalText implements encoding.TextMarshaler.
func (a Aura) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid aura %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Aura) UnmarshalText(text []byte) error {
	parsed, err := ParseAura(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAura parses an aura name, ignoring case.
func ParseAura(name string) (Aura, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, a := range Auras {
		if a.String() == want {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown aura %q", name)
}
