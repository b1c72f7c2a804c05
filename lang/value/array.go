package value

import "strings"

// Array is a resizable, shared-by-reference sequence of values.
type Array struct {
	elems *Cell[[]Value]
}

// NewArray wraps elems in a fresh Array value.
func NewArray(elems []Value) *Array {
	return &Array{elems: NewCell(elems)}
}

// Elems returns the array's current backing slice. Callers that intend to
// grow the array must go through SetElems so aliases observe the change.
func (a *Array) Elems() []Value { return a.elems.Get() }

// SetElems replaces the array's backing slice, visible to every alias of
// this Array.
func (a *Array) SetElems(elems []Value) { a.elems.Set(elems) }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.elems.Get()) }

// Get returns the element at i, or Nil if i is out of range.
func (a *Array) Get(i int) Value {
	elems := a.elems.Get()
	if i < 0 || i >= len(elems) {
		return Nil
	}
	return elems[i]
}

// Set writes v at index i, growing the array with Nil padding if needed.
func (a *Array) Set(i int, v Value) {
	elems := a.elems.Get()
	if i >= len(elems) {
		grown := make([]Value, i+1)
		copy(grown, elems)
		for j := len(elems); j < i; j++ {
			grown[j] = Nil
		}
		elems = grown
	}
	elems[i] = v
	a.elems.Set(elems)
}

func (a *Array) String() string {
	elems := a.elems.Get()
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (*Array) Type() string { return "array" }
