package value

import (
	"strings"

	"github.com/dolthub/swiss"
)

// Hash is a shared-by-reference key/value mapping. Per the language's
// hashing rule, only Number, Boolean, String, and Index keys are
// distinguished; any other key kind collapses into one shared bucket, the
// way the original implementation's hash table falls back to a single
// overflow chain for unhashable keys instead of rejecting them.
type Hash struct {
	entries *swiss.Map[Value, *hashEntry]
	order   *Cell[[]Value] // canonical keys, insertion order
}

type hashEntry struct {
	key   Value // the original, non-canonicalized key
	value Value
}

// bucketValue is the canonical key every non-primitive key collapses to.
type bucketValue struct{}

func (bucketValue) String() string { return "<unhashable>" }
func (bucketValue) Type() string   { return "unhashable" }

func canonicalKey(k Value) Value {
	switch k.(type) {
	case Number, Boolean, String, Index:
		return k
	default:
		return bucketValue{}
	}
}

// NewHash returns an empty Hash with initial capacity for size entries.
func NewHash(size int) *Hash {
	if size < 1 {
		size = 1
	}
	return &Hash{
		entries: swiss.NewMap[Value, *hashEntry](uint32(size)),
		order:   NewCell([]Value{}),
	}
}

// Get looks up key, returning (value, true) if present.
func (h *Hash) Get(key Value) (Value, bool) {
	e, ok := h.entries.Get(canonicalKey(key))
	if !ok {
		return Nil, false
	}
	return e.value, true
}

// Set inserts or updates key's value, recording insertion order on first
// write.
func (h *Hash) Set(key, val Value) {
	ck := canonicalKey(key)
	if _, ok := h.entries.Get(ck); !ok {
		h.order.Set(append(h.order.Get(), ck))
	}
	h.entries.Put(ck, &hashEntry{key: key, value: val})
}

// Len returns the number of entries.
func (h *Hash) Len() int { return int(h.entries.Count()) }

// Keys returns the original (non-canonicalized) keys in insertion order,
// suitable for `for (var k in hash)` iteration.
func (h *Hash) Keys() []Value {
	order := h.order.Get()
	keys := make([]Value, 0, len(order))
	for _, ck := range order {
		if e, ok := h.entries.Get(ck); ok {
			keys = append(keys, e.key)
		}
	}
	return keys
}

func (h *Hash) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range h.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		v, _ := h.Get(k)
		sb.WriteString(k.String())
		sb.WriteString(": ")
		sb.WriteString(v.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (*Hash) Type() string { return "hash" }
