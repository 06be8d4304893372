package token

import "github.com/nmscript/nms/internal/diag"

// LiteralKind tags which field of Literal, if any, carries a parsed value.
type LiteralKind int

const (
	// NoLiteral marks a token that carries no parsed numeric value.
	NoLiteral LiteralKind = iota
	IntLiteral
	FloatLiteral
)

// Literal holds the parsed numeric value of an INTEGER or FLOAT token. Most
// tokens carry NoLiteral and both numeric fields are zero.
type Literal struct {
	Kind  LiteralKind
	Int   int64
	Float float64
}

// Token is a single lexical unit: its kind, the exact source text it came
// from, its span, and (for numeric literals) its parsed value.
type Token struct {
	Kind    Kind
	Lexeme  string
	Span    diag.Span
	Literal Literal
}

// New builds a token with no literal value.
func New(kind Kind, lexeme string, span diag.Span) Token {
	return Token{Kind: kind, Lexeme: lexeme, Span: span}
}

// NewInt builds an INTEGER token carrying a parsed value.
func NewInt(lexeme string, span diag.Span, value int64) Token {
	return Token{Kind: INTEGER, Lexeme: lexeme, Span: span, Literal: Literal{Kind: IntLiteral, Int: value}}
}

// NewFloat builds a FLOAT token carrying a parsed value.
func NewFloat(lexeme string, span diag.Span, value float64) Token {
	return Token{Kind: FLOAT, Lexeme: lexeme, Span: span, Literal: Literal{Kind: FloatLiteral, Float: value}}
}

// String renders a token for debug/trace output: kind(lexeme)@span.
func (t Token) String() string {
	return t.Kind.String() + "(" + t.Lexeme + ")@" + t.Span.String()
}
