package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loxcraft/loxcraft/lang/scanner"
	"github.com/loxcraft/loxcraft/lang/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeOperators(t *testing.T) {
	toks, errs := scanner.Tokenize(`+= -= *= /= %= == != <= >= && || = < >`)
	require.Empty(t, errs)
	require.Equal(t, []token.Kind{
		token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL, token.SLASH_EQUAL, token.PERCENT_EQUAL,
		token.EQUAL_EQUAL, token.BANG_EQUAL, token.LESS_EQUAL, token.GREATER_EQUAL,
		token.AMP_AMP, token.PIPE_PIPE, token.EQUAL, token.LESS, token.GREATER, token.EOF,
	}, kinds(toks))
}

func TestTokenizeKeywordsCaseInsensitive(t *testing.T) {
	toks, errs := scanner.Tokenize(`VAR Var var`)
	require.Empty(t, errs)
	require.Equal(t, []token.Kind{token.VAR, token.VAR, token.VAR, token.EOF}, kinds(toks))
}

func TestTokenizeNumber(t *testing.T) {
	toks, errs := scanner.Tokenize(`10 10.5 10.`)
	require.Empty(t, errs)
	require.Equal(t, 10.0, toks[0].Literal)
	require.Equal(t, 10.5, toks[1].Literal)
	require.Equal(t, float64(10), toks[2].Literal)
	require.Equal(t, token.DOT, toks[3].Kind)
}

func TestTokenizeString(t *testing.T) {
	toks, errs := scanner.Tokenize(`"a\nb" 'c'`)
	require.Empty(t, errs)
	require.Equal(t, "a\nb", toks[0].Literal)
	require.Equal(t, "c", toks[1].Literal)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, errs := scanner.Tokenize(`"unterminated`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "Unterminated string")
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	_, errs := scanner.Tokenize("@")
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "Unexpected character: @")
}

func TestTokenizeCommentIsDiscardedByHelper(t *testing.T) {
	toks, errs := scanner.Tokenize("var a; // trailing\nvar b;")
	require.Empty(t, errs)
	require.NotContains(t, kinds(toks), token.COMMENT)
}

func TestLineNumbersAreOneBased(t *testing.T) {
	toks, _ := scanner.Tokenize("var a;\nvar b;")
	require.Equal(t, 1, toks[0].Line)
	for _, tok := range toks {
		if tok.Lexeme == "b" {
			require.Equal(t, 2, tok.Line)
		}
	}
}
