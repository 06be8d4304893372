package ast

import "github.com/nmscript/nms/internal/diag"

// LiteralKind tags which Go field of a Literal expression is meaningful.
type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralInt
	LiteralFloat
	LiteralBool
	LiteralString
)

// Literal is a constant value appearing directly in source: null, an
// integer, a float, a boolean, or a string.
type Literal struct {
	Kind   LiteralKind
	Int    int64
	Float  float64
	Bool   bool
	String string
	span   diag.Span
}

func NewLiteral(kind LiteralKind, span diag.Span) *Literal { return &Literal{Kind: kind, span: span} }
func (l *Literal) Span() diag.Span                         { return l.span }
func (*Literal) expressionNode()                           {}

// Identifier references a variable, flag, character, or scene name; which
// namespace it resolves in depends on context (the validator decides).
type Identifier struct {
	Name string
	span diag.Span
}

func NewIdentifier(name string, span diag.Span) *Identifier { return &Identifier{Name: name, span: span} }
func (i *Identifier) Span() diag.Span                       { return i.span }
func (*Identifier) expressionNode()                         {}

// BinaryExpr is a two-operand operation: arithmetic, comparison, or
// logical.
type BinaryExpr struct {
	Left, Right Expression
	Operator    string
	span        diag.Span
}

func NewBinaryExpr(left Expression, op string, right Expression, span diag.Span) *BinaryExpr {
	return &BinaryExpr{Left: left, Operator: op, Right: right, span: span}
}
func (b *BinaryExpr) Span() diag.Span { return b.span }
func (*BinaryExpr) expressionNode()   {}

// UnaryExpr is a one-operand prefix operation: "-" or "not".
type UnaryExpr struct {
	Operator string
	Operand  Expression
	span     diag.Span
}

func NewUnaryExpr(op string, operand Expression, span diag.Span) *UnaryExpr {
	return &UnaryExpr{Operator: op, Operand: operand, span: span}
}
func (u *UnaryExpr) Span() diag.Span { return u.span }
func (*UnaryExpr) expressionNode()   {}

// CallExpr invokes a named callee with positional arguments. Non-native
// callees are a VM no-op that pushes null; there is no user-defined
// function facility.
type CallExpr struct {
	Callee Expression
	Args   []Expression
	span   diag.Span
}

func NewCallExpr(callee Expression, args []Expression, span diag.Span) *CallExpr {
	return &CallExpr{Callee: callee, Args: args, span: span}
}
func (c *CallExpr) Span() diag.Span { return c.span }
func (*CallExpr) expressionNode()   {}

// PropertyExpr is a "." member access; the compiler emits only a string
// push for the property name since there is no dedicated opcode.
type PropertyExpr struct {
	Object Expression
	Name   string
	span   diag.Span
}

func NewPropertyExpr(object Expression, name string, span diag.Span) *PropertyExpr {
	return &PropertyExpr{Object: object, Name: name, span: span}
}
func (p *PropertyExpr) Span() diag.Span { return p.span }
func (*PropertyExpr) expressionNode()   {}
