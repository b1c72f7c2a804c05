package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	for k := Kind(0); k < maxKind; k++ {
		require.NotEmpty(t, k.String(), "kind %d has no string form", k)
	}
	require.Equal(t, "UNKNOWN", Kind(-1).String())
	require.Equal(t, "UNKNOWN", maxKind.String())
}

func TestLookupIdent(t *testing.T) {
	require.Equal(t, VAR, LookupIdent("var"))
	require.Equal(t, CLASS, LookupIdent("class"))
	require.Equal(t, IDENTIFIER, LookupIdent("variable"))
	require.Equal(t, IDENTIFIER, LookupIdent("Classroom"))
}

func TestTokenStringIncludesLexeme(t *testing.T) {
	tok := Token{Kind: IDENTIFIER, Lexeme: "a", Line: 1}
	require.Equal(t, "IDENTIFIER a", tok.String())
}
