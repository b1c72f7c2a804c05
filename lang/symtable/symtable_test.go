package symtable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loxcraft/loxcraft/lang/symtable"
)

func TestDefineGlobalAndLocal(t *testing.T) {
	global := symtable.New()
	a := global.Define("a")
	require.Equal(t, symtable.Global, a.Scope)
	require.Equal(t, 0, a.Index)

	local := symtable.NewChild(global)
	b := local.Define("b")
	require.Equal(t, symtable.Local, b.Scope)
	require.Equal(t, 0, b.Index)
}

func TestResolveWalksOutwardToGlobal(t *testing.T) {
	global := symtable.New()
	global.Define("g")
	local := symtable.NewChild(global)

	sym, ok := local.Resolve("g")
	require.True(t, ok)
	require.Equal(t, symtable.Global, sym.Scope)
}

func TestResolvePromotesEnclosingLocalToFree(t *testing.T) {
	global := symtable.New()
	outer := symtable.NewChild(global)
	outer.Define("x")
	inner := symtable.NewChild(outer)

	sym, ok := inner.Resolve("x")
	require.True(t, ok)
	require.Equal(t, symtable.Free, sym.Scope)
	require.Equal(t, 0, sym.Index)
	require.Len(t, inner.FreeSymbols, 1)
	require.Equal(t, "x", inner.FreeSymbols[0].Name)
	require.Equal(t, symtable.Local, inner.FreeSymbols[0].Scope)
}

func TestResolveChainsFreePromotionThroughMultipleLevels(t *testing.T) {
	global := symtable.New()
	l1 := symtable.NewChild(global)
	l1.Define("x")
	l2 := symtable.NewChild(l1)
	l3 := symtable.NewChild(l2)

	sym, ok := l3.Resolve("x")
	require.True(t, ok)
	require.Equal(t, symtable.Free, sym.Scope)

	// l2 must also have promoted x to Free for l3's promotion to chain
	// through it.
	midSym, ok := l2.Resolve("x")
	require.True(t, ok)
	require.Equal(t, symtable.Free, midSym.Scope)
}

func TestDefineBuiltinAndFunctionName(t *testing.T) {
	global := symtable.New()
	b := global.DefineBuiltin(3, "len")
	require.Equal(t, symtable.Builtin, b.Scope)
	require.Equal(t, 3, b.Index)

	fn := symtable.NewChild(global)
	self := fn.DefineFunctionName("f")
	require.Equal(t, symtable.Function, self.Scope)
	require.Equal(t, 0, self.Index)
}

func TestBuiltinResolvesFromNestedScopeWithoutPromotion(t *testing.T) {
	global := symtable.New()
	global.DefineBuiltin(0, "print")
	inner := symtable.NewChild(symtable.NewChild(global))

	sym, ok := inner.Resolve("print")
	require.True(t, ok)
	require.Equal(t, symtable.Builtin, sym.Scope)
	require.Empty(t, inner.FreeSymbols)
}

func TestResolveUndefinedReturnsFalse(t *testing.T) {
	global := symtable.New()
	_, ok := global.Resolve("nope")
	require.False(t, ok)
}
