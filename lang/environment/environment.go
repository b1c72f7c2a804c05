// Package environment implements the lexically nested name->value scope
// used by the tree-walk evaluator, plus the current-class slot that backs
// `this` resolution inside method bodies.
package environment

import "github.com/loxcraft/loxcraft/lang/value"

// Environment is one lexical scope. Child scopes are created on block,
// function/method call, and loop-body entry, and discarded on exit.
type Environment struct {
	store        map[string]value.Value
	outer        *Environment
	currentClass value.Value // the ClassInstance receiving the enclosing method call, if any
}

// New creates a top-level (global) environment.
func New() *Environment {
	return &Environment{store: make(map[string]value.Value)}
}

// NewChild creates a scope nested inside outer.
func NewChild(outer *Environment) *Environment {
	return &Environment{store: make(map[string]value.Value), outer: outer}
}

// IsGlobal reports whether this is the outermost scope.
func (e *Environment) IsGlobal() bool { return e.outer == nil }

// Get looks up name, walking outward through enclosing scopes.
func (e *Environment) Get(name string) (value.Value, bool) {
	for env := e; env != nil; env = env.outer {
		if v, ok := env.store[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set walks outward for an existing binding of name and updates it there;
// if none is found, it creates the binding in this (innermost) scope.
func (e *Environment) Set(name string, v value.Value) {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = v
			return
		}
	}
	e.store[name] = v
}

// SetStore unconditionally creates or overwrites name in this scope,
// without walking outward; used to bind function parameters.
func (e *Environment) SetStore(name string, v value.Value) {
	e.store[name] = v
}

// SetCurrentClass installs instance as the receiver of the method call
// this scope (and its children) is evaluating.
func (e *Environment) SetCurrentClass(instance value.Value) { e.currentClass = instance }

// GetCurrentClass returns the receiver installed by SetCurrentClass,
// walking outward since nested blocks inside a method don't re-install it.
func (e *Environment) GetCurrentClass() (value.Value, bool) {
	for env := e; env != nil; env = env.outer {
		if env.currentClass != nil {
			return env.currentClass, true
		}
	}
	return nil, false
}

// ResetCurrentClass clears the receiver slot on this scope only.
func (e *Environment) ResetCurrentClass() { e.currentClass = nil }

// Snapshot captures the direct bindings of this scope, for hygiene tests
// that verify a function call leaves the caller's scope untouched except
// for outward-walking assignments.
func (e *Environment) Snapshot() map[string]value.Value {
	cp := make(map[string]value.Value, len(e.store))
	for k, v := range e.store {
		cp[k] = v
	}
	return cp
}
