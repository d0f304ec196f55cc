package canon

import (
	"math"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the canonical value types.
type Value interface {
	canonValue()
}

// String is a text value. It is NFC normalised when marshalled.
type String string

func (String) canonValue() {}

// Int is an integer value.
type Int int64

func (Int) canonValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) canonValue() {}

// Array is an ordered list of values.
type Array []Value

func (Array) canonValue() {}

// Object maps keys to values. Marshalling orders keys by UTF-16 code units.
type Object map[string]Value

func (Object) canonValue() {}

// FixedScale is the number of units per coordinate unit used by Fixed.
const FixedScale = 1_000_000

// Fixed quantises a coordinate to an integer number of micro-units.
func Fixed(f float64) Int {
	q := math.Round(f * FixedScale)
	if q == 0 {
		return 0 // folds -0
	}
	return Int(q)
}

// SortedKeys returns keys in canonical order.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// compareUTF16 orders strings by UTF-16 code units, which differs from Go's
// byte order for characters outside the BMP.
func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
