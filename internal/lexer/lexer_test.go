package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biron-lang/bironc/internal/token"
)

func collect(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestKeywordsAndIdents(t *testing.T) {
	toks := collect("fn x return foo_bar")
	require.Equal(t, []token.Kind{token.FN, token.IDENT, token.RETURN, token.IDENT, token.EOF}, kinds(toks))
	require.Equal(t, "foo_bar", toks[3].Lexeme)
}

func TestOperatorsPreferLongestMatch(t *testing.T) {
	toks := collect("<<= <= << == = != ! -> += -= *= /= && ||")
	require.Equal(t, []token.Kind{
		token.SHL, token.ASSIGN,
		token.LE,
		token.SHL,
		token.EQ,
		token.ASSIGN,
		token.NE,
		token.BANG,
		token.ARROW,
		token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN,
		token.ANDAND, token.OROR,
		token.EOF,
	}, kinds(toks))
}

func TestIntegerLiteralSuffix(t *testing.T) {
	toks := collect("42_s32 7_u8 0xFF")
	require.Equal(t, token.INT, toks[0].Kind)
	require.Equal(t, "42_s32", toks[0].Lexeme)
	require.Equal(t, token.INT, toks[1].Kind)
	require.Equal(t, "7_u8", toks[1].Lexeme)
	require.Equal(t, token.INT, toks[2].Kind)
	require.Equal(t, "0xFF", toks[2].Lexeme)
}

func TestFloatLiteralSuffix(t *testing.T) {
	toks := collect("1.0_f64 3.5")
	require.Equal(t, token.FLOAT, toks[0].Kind)
	require.Equal(t, "1.0_f64", toks[0].Lexeme)
	require.Equal(t, token.FLOAT, toks[1].Kind)
}

func TestStringEscapes(t *testing.T) {
	toks := collect(`"hi\n\t\"end\\"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hi\n\t\"end\\", toks[0].Lexeme)
}

func TestNestedBlockComments(t *testing.T) {
	toks := collect("let /* outer /* inner */ still-comment */ x")
	require.Equal(t, []token.Kind{token.LET, token.IDENT, token.EOF}, kinds(toks))
}

func TestLineComment(t *testing.T) {
	toks := collect("let // trailing comment\nx")
	require.Equal(t, []token.Kind{token.LET, token.NEWLINE, token.IDENT, token.EOF}, kinds(toks))
}

func TestLineAndColumnTracking(t *testing.T) {
	toks := collect("ab\ncd")
	// "ab" on line 1, columns 1..2; newline; "cd" on line 2.
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 2, toks[2].Line)
}
