package bytecode

import (
	"github.com/nmscript/nms/internal/ast"
	"github.com/nmscript/nms/internal/diag"
)

// foldConstantExpr applies the single constant-folding optimization carried
// over from CWBudde-go-dws's bytecode/optimizer.go: literal arithmetic
// folds to its result at compile time ("2 + 3" compiles as if the source
// had written "5"). This is restricted to numeric literal operands only — no
// string concatenation, no comparisons, nothing involving an identifier.
func foldConstantExpr(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		left := foldConstantExpr(e.Left)
		right := foldConstantExpr(e.Right)
		if folded, ok := foldNumericBinary(left, right, e.Operator, e.Span()); ok {
			return folded
		}
		if left != e.Left || right != e.Right {
			return ast.NewBinaryExpr(left, e.Operator, right, e.Span())
		}
		return e
	case *ast.UnaryExpr:
		operand := foldConstantExpr(e.Operand)
		if e.Operator == "-" {
			if lit, ok := operand.(*ast.Literal); ok {
				if negated, ok := negateNumericLiteral(lit); ok {
					return negated
				}
			}
		}
		if operand != e.Operand {
			return ast.NewUnaryExpr(e.Operator, operand, e.Span())
		}
		return e
	default:
		return expr
	}
}

// foldNumericBinary folds +, -, *, /, % over two numeric literals,
// widening to float if either side is a float. Division/modulo by a
// literal zero is left unfolded so the existing runtime
// division-by-zero handling still applies.
func foldNumericBinary(left, right ast.Expression, op string, span diag.Span) (ast.Expression, bool) {
	ll, lok := left.(*ast.Literal)
	rl, rok := right.(*ast.Literal)
	if !lok || !rok {
		return nil, false
	}
	lv, lIsNum := numericValue(ll)
	rv, rIsNum := numericValue(rl)
	if !lIsNum || !rIsNum {
		return nil, false
	}

	bothInt := ll.Kind == ast.LiteralInt && rl.Kind == ast.LiteralInt

	switch op {
	case "+", "-", "*":
		result := applyArith(op, lv, rv)
		return makeNumericLiteral(result, bothInt, span), true
	case "/", "%":
		if rv == 0 {
			return nil, false
		}
		if bothInt {
			li, ri := int64(lv), int64(rv)
			var result int64
			if op == "/" {
				result = li / ri
			} else {
				result = li % ri
			}
			lit := ast.NewLiteral(ast.LiteralInt, span)
			lit.Int = result
			return lit, true
		}
		var result float64
		if op == "/" {
			result = lv / rv
		} else {
			result = float64(int64(lv) % int64(rv))
		}
		lit := ast.NewLiteral(ast.LiteralFloat, span)
		lit.Float = result
		return lit, true
	default:
		return nil, false
	}
}

func applyArith(op string, l, r float64) float64 {
	switch op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	default:
		return 0
	}
}

func makeNumericLiteral(v float64, asInt bool, span diag.Span) *ast.Literal {
	if asInt {
		lit := ast.NewLiteral(ast.LiteralInt, span)
		lit.Int = int64(v)
		return lit
	}
	lit := ast.NewLiteral(ast.LiteralFloat, span)
	lit.Float = v
	return lit
}

func numericValue(lit *ast.Literal) (float64, bool) {
	switch lit.Kind {
	case ast.LiteralInt:
		return float64(lit.Int), true
	case ast.LiteralFloat:
		return lit.Float, true
	default:
		return 0, false
	}
}

func negateNumericLiteral(lit *ast.Literal) (*ast.Literal, bool) {
	switch lit.Kind {
	case ast.LiteralInt:
		out := ast.NewLiteral(ast.LiteralInt, lit.Span())
		out.Int = -lit.Int
		return out, true
	case ast.LiteralFloat:
		out := ast.NewLiteral(ast.LiteralFloat, lit.Span())
		out.Float = -lit.Float
		return out, true
	default:
		return nil, false
	}
}
