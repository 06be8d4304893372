package lexer

import (
	"testing"

	"github.com/nmscript/nms/internal/token"
	"github.com/stretchr/testify/require"
)

func TestTokenizeEndsWithEOF(t *testing.T) {
	tokens, diags := Tokenize(`scene intro { Hero "Hi." }`)
	require.True(t, diags.Empty())
	require.NotEmpty(t, tokens)
	require.Equal(t, token.EOF, tokens[len(tokens)-1].Kind)
}

func TestTokenizeKeywordsAndIdentifiers(t *testing.T) {
	tokens, diags := Tokenize(`character Hero scene foo`)
	require.True(t, diags.Empty())

	kinds := kindsOf(tokens)
	require.Equal(t, []token.Kind{token.CHARACTER, token.IDENTIFIER, token.SCENE, token.IDENTIFIER, token.EOF}, kinds)
}

func TestTokenizeNumbers(t *testing.T) {
	tokens, diags := Tokenize(`42 3.14 7`)
	require.True(t, diags.Empty())

	require.Equal(t, token.IntLiteral, tokens[0].Literal.Kind)
	require.EqualValues(t, 42, tokens[0].Literal.Int)

	require.Equal(t, token.FloatLiteral, tokens[1].Literal.Kind)
	require.InDelta(t, 3.14, tokens[1].Literal.Float, 1e-9)

	require.EqualValues(t, 7, tokens[2].Literal.Int)
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens, diags := Tokenize(`"line one\nline \"two\""`)
	require.True(t, diags.Empty())
	require.Equal(t, "line one\nline \"two\"", tokens[0].Lexeme)
}

func TestTokenizeUnterminatedStringRecovers(t *testing.T) {
	tokens, diags := Tokenize("\"oops\nshow")
	require.True(t, diags.HasErrors())
	// Lexing continues past the error: a SHOW token still follows.
	found := false
	for _, tok := range tokens {
		if tok.Kind == token.SHOW {
			found = true
		}
	}
	require.True(t, found, "expected lexer to recover and keep scanning: %+v", tokens)
}

func TestTokenizeInvalidEscape(t *testing.T) {
	_, diags := Tokenize(`"bad \q escape"`)
	require.True(t, diags.HasErrors())
}

func TestTokenizeNestedBlockComments(t *testing.T) {
	tokens, diags := Tokenize("/* outer /* inner */ still outer */ show")
	require.True(t, diags.Empty())
	require.Equal(t, token.SHOW, tokens[0].Kind)
}

func TestTokenizeUnterminatedBlockComment(t *testing.T) {
	_, diags := Tokenize("/* never closed")
	require.True(t, diags.HasErrors())
}

func TestTokenizeLineComment(t *testing.T) {
	tokens, diags := Tokenize("show // trailing comment\nhide")
	require.True(t, diags.Empty())
	require.Equal(t, []token.Kind{token.SHOW, token.HIDE, token.EOF}, kindsOf(tokens))
}

func TestTokenizeColorLiterals(t *testing.T) {
	for _, src := range []string{"#FFF", "#FFFF", "#FFCC00", "#FFCC00FF"} {
		tokens, diags := Tokenize(src)
		require.True(t, diags.Empty(), "src=%s diags=%v", src, diags.All())
		require.Equal(t, token.STRING, tokens[0].Kind)
		require.Equal(t, src, tokens[0].Lexeme)
	}
}

func TestTokenizeInvalidColorLength(t *testing.T) {
	_, diags := Tokenize("#12345")
	require.True(t, diags.HasErrors())
}

func TestTokenizeOperatorDisambiguation(t *testing.T) {
	tokens, diags := Tokenize("= == < <= > >= - ->")
	require.True(t, diags.Empty())
	require.Equal(t, []token.Kind{
		token.ASSIGN, token.EQ, token.LT, token.LE, token.GT, token.GE, token.MINUS, token.ARROW, token.EOF,
	}, kindsOf(tokens))
}

func TestSpansAreMonotonic(t *testing.T) {
	tokens, diags := Tokenize("set x = 1 + 2\nset y = 3")
	require.True(t, diags.Empty())

	for i := 1; i < len(tokens); i++ {
		prev, cur := tokens[i-1], tokens[i]
		require.False(t, cur.Span.Start.Less(prev.Span.Start), "token %d (%v) starts before %d (%v)", i, cur, i-1, prev)
	}
}

func kindsOf(tokens []token.Token) []token.Kind {
	kinds := make([]token.Kind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}
