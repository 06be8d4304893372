package parser

import (
	"github.com/nmscript/nms/internal/ast"
	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/token"
)

// Expression parsing follows this precedence-climbing grammar:
//
//	expression ← or
//	or         ← and ("or" and)*
//	and        ← equality ("and" equality)*
//	equality   ← comparison (("=="|"!=") comparison)*
//	comparison ← term (("<"|"<="|">"|">=") term)*
//	term       ← factor (("+"|"-") factor)*
//	factor     ← unary (("*"|"/"|"%") unary)*
//	unary      ← ("not"|"-") unary | call
//	call       ← primary ( "(" args ")" | "." identifier )*
//	primary    ← literal | identifier | "(" expression ")"

func (p *Parser) parseExpression() ast.Expression {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expression {
	left := p.parseAnd()
	if left == nil {
		return nil
	}
	for p.check(token.OR) {
		opTok := p.advance()
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		left = ast.NewBinaryExpr(left, opTok.Lexeme, right, diag.NewSpan(left.Span().Start, right.Span().End))
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	left := p.parseEquality()
	if left == nil {
		return nil
	}
	for p.check(token.AND) {
		opTok := p.advance()
		right := p.parseEquality()
		if right == nil {
			return nil
		}
		left = ast.NewBinaryExpr(left, opTok.Lexeme, right, diag.NewSpan(left.Span().Start, right.Span().End))
	}
	return left
}

func (p *Parser) parseEquality() ast.Expression {
	left := p.parseComparison()
	if left == nil {
		return nil
	}
	for p.check(token.EQ) || p.check(token.NEQ) {
		opTok := p.advance()
		right := p.parseComparison()
		if right == nil {
			return nil
		}
		left = ast.NewBinaryExpr(left, opTok.Lexeme, right, diag.NewSpan(left.Span().Start, right.Span().End))
	}
	return left
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseTerm()
	if left == nil {
		return nil
	}
	for p.check(token.LT) || p.check(token.LE) || p.check(token.GT) || p.check(token.GE) {
		opTok := p.advance()
		right := p.parseTerm()
		if right == nil {
			return nil
		}
		left = ast.NewBinaryExpr(left, opTok.Lexeme, right, diag.NewSpan(left.Span().Start, right.Span().End))
	}
	return left
}

func (p *Parser) parseTerm() ast.Expression {
	left := p.parseFactor()
	if left == nil {
		return nil
	}
	for p.check(token.PLUS) || p.check(token.MINUS) {
		opTok := p.advance()
		right := p.parseFactor()
		if right == nil {
			return nil
		}
		left = ast.NewBinaryExpr(left, opTok.Lexeme, right, diag.NewSpan(left.Span().Start, right.Span().End))
	}
	return left
}

func (p *Parser) parseFactor() ast.Expression {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		opTok := p.advance()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = ast.NewBinaryExpr(left, opTok.Lexeme, right, diag.NewSpan(left.Span().Start, right.Span().End))
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	if p.check(token.NOT) || p.check(token.MINUS) {
		opTok := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return ast.NewUnaryExpr(opTok.Lexeme, operand, diag.NewSpan(opTok.Span.Start, operand.Span().End))
	}
	return p.parseCall()
}

func (p *Parser) parseCall() ast.Expression {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}

	for {
		switch {
		case p.check(token.LPAREN):
			p.advance()
			var args []ast.Expression
			for !p.check(token.RPAREN) && !p.check(token.EOF) {
				arg := p.parseExpression()
				if arg == nil {
					return nil
				}
				args = append(args, arg)
				if !p.match(token.COMMA) {
					break
				}
			}
			closeTok, ok := p.expect(token.RPAREN, "to close a call's argument list")
			if !ok {
				return nil
			}
			expr = ast.NewCallExpr(expr, args, diag.NewSpan(expr.Span().Start, closeTok.Span.End))
		case p.check(token.DOT):
			p.advance()
			nameTok, ok := p.expect(token.IDENTIFIER, "property name after '.'")
			if !ok {
				return nil
			}
			expr = ast.NewPropertyExpr(expr, nameTok.Lexeme, diag.NewSpan(expr.Span().Start, nameTok.Span.End))
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Kind {
	case token.INTEGER:
		p.advance()
		lit := ast.NewLiteral(ast.LiteralInt, tok.Span)
		lit.Int = tok.Literal.Int
		return lit
	case token.FLOAT:
		p.advance()
		lit := ast.NewLiteral(ast.LiteralFloat, tok.Span)
		lit.Float = tok.Literal.Float
		return lit
	case token.STRING:
		p.advance()
		lit := ast.NewLiteral(ast.LiteralString, tok.Span)
		lit.String = tok.Lexeme
		return lit
	case token.TRUE:
		p.advance()
		lit := ast.NewLiteral(ast.LiteralBool, tok.Span)
		lit.Bool = true
		return lit
	case token.FALSE:
		p.advance()
		return ast.NewLiteral(ast.LiteralBool, tok.Span)
	case token.IDENTIFIER, token.FLAG, token.LEFT, token.CENTER, token.RIGHT, token.FADE:
		p.advance()
		return ast.NewIdentifier(tok.Lexeme, tok.Span)
	case token.LPAREN:
		p.advance()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(token.RPAREN, "to close a parenthesized expression"); !ok {
			return nil
		}
		return inner
	default:
		p.errorf(diag.CodeExpectedExpression, tok.Span, "expected an expression, found %s", tok.Kind)
		return nil
	}
}
