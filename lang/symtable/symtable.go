// Package symtable implements the compiler's nested scope resolution:
// Global/Local/Free/Builtin/Function taxonomy, grounded on the teacher's
// lang/resolver binding model but reshaped for this compiler's simpler
// single-pass define/resolve flow.
package symtable

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Scope identifies where a Symbol's storage lives.
type Scope uint8

const (
	Global Scope = iota
	Local
	Free
	Builtin
	Function
)

var scopeNames = [...]string{
	Global:   "global",
	Local:    "local",
	Free:     "free",
	Builtin:  "builtin",
	Function: "function",
}

func (s Scope) String() string {
	if int(s) >= len(scopeNames) {
		return fmt.Sprintf("<invalid scope %d>", s)
	}
	return scopeNames[s]
}

// Symbol is the resolved binding for one name in one Table.
type Symbol struct {
	Name  string
	Scope Scope
	Index int
}

// Table is one lexical scope of the compiler's symbol resolution: the
// outermost Table (Outer == nil) resolves names as Global, every nested
// Table resolves its own definitions as Local.
type Table struct {
	Outer *Table

	store          map[string]Symbol
	numDefinitions int

	// FreeSymbols holds, in Index order, the *outer* Symbol each Free
	// symbol in this table was promoted from; Resolve appends to it when
	// it promotes a Local/Free binding found in an enclosing Table.
	FreeSymbols []Symbol
}

// New returns a top-level (global) table.
func New() *Table {
	return &Table{store: make(map[string]Symbol)}
}

// NewChild returns a table nested inside outer, used when the compiler
// enters a function body.
func NewChild(outer *Table) *Table {
	return &Table{Outer: outer, store: make(map[string]Symbol)}
}

// Define binds name in this table at a fresh index, with scope Global for
// the outermost table or Local otherwise.
func (t *Table) Define(name string) Symbol {
	scope := Local
	if t.Outer == nil {
		scope = Global
	}
	sym := Symbol{Name: name, Scope: scope, Index: t.numDefinitions}
	t.store[name] = sym
	t.numDefinitions++
	return sym
}

// DefineBuiltin binds name to a caller-chosen builtin registry index, with
// scope Builtin. Builtins are defined once on the outermost table and are
// visible from every nested scope without promotion.
func (t *Table) DefineBuiltin(index int, name string) Symbol {
	sym := Symbol{Name: name, Scope: Builtin, Index: index}
	t.store[name] = sym
	return sym
}

// DefineFunctionName binds name with scope Function at index 0, so a
// function body can reference itself by name for recursion without a
// prior `var`/global definition.
func (t *Table) DefineFunctionName(name string) Symbol {
	sym := Symbol{Name: name, Scope: Function, Index: 0}
	t.store[name] = sym
	return sym
}

// NumDefinitions reports how many names Define has bound directly in this
// table; this becomes a CompiledFunction's NumLocals.
func (t *Table) NumDefinitions() int { return t.numDefinitions }

// Names returns every non-builtin name bound directly in this table (not
// walking Outer), sorted for deterministic disassembly output (`dump`).
// Builtins are excluded since the builtin registry already lists them by
// its own stable index.
func (t *Table) Names() []string {
	nonBuiltins := make(map[string]Symbol, len(t.store))
	for name, sym := range t.store {
		if sym.Scope != Builtin {
			nonBuiltins[name] = sym
		}
	}
	names := maps.Keys(nonBuiltins)
	slices.Sort(names)
	return names
}

// Resolve looks up name, walking outward. A name found as Local or Free in
// an enclosing table is promoted: a new Free symbol is inserted into every
// table between (and including) the current one and the table that owns
// the original binding, preserving the original Index via FreeSymbols.
// Global and Builtin symbols are returned unmodified regardless of depth.
func (t *Table) Resolve(name string) (Symbol, bool) {
	if sym, ok := t.store[name]; ok {
		return sym, true
	}
	if t.Outer == nil {
		return Symbol{}, false
	}
	outerSym, ok := t.Outer.Resolve(name)
	if !ok {
		return Symbol{}, false
	}
	if outerSym.Scope == Global || outerSym.Scope == Builtin {
		return outerSym, true
	}
	return t.defineFree(outerSym), true
}

func (t *Table) defineFree(original Symbol) Symbol {
	t.FreeSymbols = append(t.FreeSymbols, original)
	sym := Symbol{Name: original.Name, Scope: Free, Index: len(t.FreeSymbols) - 1}
	t.store[original.Name] = sym
	return sym
}
