package ir

import (
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
)

// IRValue is a sealed interface over the float-free value types that may
// appear in canonical JSON: IRString, IRInt, IRBool, IRArray and IRObject.
type IRValue interface {
	irValue()
}

// IRString represents a string value.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer value. Always int64.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents an array of IRValue elements.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to IRValue elements.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// Micro converts a float to integer micro-units, rounding half away from zero.
func Micro(f float64) IRInt {
	return IRInt(ToMicro(f))
}

// ToMicro is Micro without the IRValue wrapper.
func ToMicro(f float64) int64 {
	return int64(math.Round(f * 1e6))
}

// FromMicro converts micro-units back to a float.
func FromMicro(m int64) float64 {
	return float64(m) / 1e6
}

// Decimal encodes a float as its shortest exact decimal string.
// Used where a float must round-trip bit-for-bit (deltas, durations).
func Decimal(f float64) IRString {
	return IRString(strconv.FormatFloat(f, 'g', -1, 64))
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's string comparison orders by UTF-8 bytes, which differs for
// characters outside the BMP.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

func compareKeysRFC8785(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
