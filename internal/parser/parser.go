// Package parser implements a recursive-descent, precedence-climbing
// parser for NMS source, with statement-level panic-mode recovery so a
// single syntax error never aborts the whole parse. The structure mirrors
// CWBudde-go-dws's internal/parser: a token cursor, one parse method per
// grammar production, and an accumulating diagnostics collection instead
// of returned errors.
package parser

import (
	"fmt"

	"github.com/nmscript/nms/internal/ast"
	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/lexer"
	"github.com/nmscript/nms/internal/token"
)

// Parser consumes a pre-scanned token slice and builds a Program.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  *diag.Collection
}

// New tokenizes src and returns a Parser ready to run ParseProgram. Lexer
// diagnostics (if any) are folded into the parser's collection up front so
// callers see lex and parse errors together, in source order relative to
// each phase.
func New(src string) *Parser {
	tokens, lexDiags := lexer.Tokenize(src)
	p := &Parser{tokens: tokens, diags: diag.NewCollection()}
	p.diags.Merge(lexDiags)
	return p
}

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek(ahead int) token.Token {
	idx := p.pos + ahead
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) advance() token.Token {
	tok := p.cur()
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.cur().Kind == kind
}

func (p *Parser) match(kind token.Kind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given kind or records a diagnostic and
// returns the current token unconsumed (so callers can decide whether to
// continue or synchronize).
func (p *Parser) expect(kind token.Kind, context string) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	if kind == token.IDENTIFIER {
		// Words that are keywords only inside one statement form remain
		// usable as names (`scene left`, `transition fade 0.5`).
		switch p.cur().Kind {
		case token.FLAG, token.LEFT, token.CENTER, token.RIGHT, token.FADE:
			return p.advance(), true
		}
	}
	tok := p.cur()
	p.errorf(codeForExpectedKind(kind), tok.Span, "expected %s %s, found %s", kind, context, tok.Kind)
	return tok, false
}

// codeForExpectedKind picks the most specific diagnostic code for a failed
// expect(kind), falling back to the generic unexpected-token code for kinds
// with no dedicated one (punctuation like comma or arrow).
func codeForExpectedKind(kind token.Kind) diag.Code {
	switch kind {
	case token.IDENTIFIER:
		return diag.CodeExpectedIdentifier
	case token.STRING:
		return diag.CodeExpectedString
	case token.LPAREN:
		return diag.CodeExpectedLeftParen
	case token.RPAREN:
		return diag.CodeExpectedRightParen
	case token.LBRACE, token.RBRACE:
		return diag.CodeUnclosedBlock
	default:
		return diag.CodeUnexpectedToken
	}
}

func (p *Parser) errorf(code diag.Code, span diag.Span, format string, args ...any) {
	p.diags.Add(diag.New(code, diag.Error, fmt.Sprintf(format, args...), span))
}

// Diagnostics returns every diagnostic recorded by the lexer and parser.
func (p *Parser) Diagnostics() *diag.Collection {
	return p.diags
}

// ParseProgram parses the entire token stream into a Program, recovering
// from syntax errors at statement boundaries rather than aborting. Parsing
// always runs to end-of-file.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}

	for !p.check(token.EOF) {
		switch {
		case p.check(token.CHARACTER):
			if decl := p.parseCharacterDecl(); decl != nil {
				prog.Characters = append(prog.Characters, decl)
			}
		case p.check(token.SCENE):
			if decl := p.parseSceneDecl(); decl != nil {
				prog.Scenes = append(prog.Scenes, decl)
			}
		default:
			if stmt := p.parseStatement(); stmt != nil {
				prog.Globals = append(prog.Globals, stmt)
			}
		}
	}

	return prog
}

// ParseExpression parses a single standalone expression from the full
// token stream, consuming it regardless of any trailing tokens. Exported
// for callers (the IR package's expression-property round trip) that need
// to reparse a pretty-printed expression fragment without going through
// ParseProgram's statement-level grammar.
func (p *Parser) ParseExpression() ast.Expression {
	return p.parseExpression()
}

// synchronize implements panic-mode recovery: after a statement-level
// error, skip tokens until a statement-starting keyword, a closing brace,
// or end-of-file, so the next ParseProgram/parseBlock iteration can make
// forward progress and at least one further statement still gets parsed.
func (p *Parser) synchronize() {
	for !p.check(token.EOF) {
		switch p.cur().Kind {
		case token.CHARACTER, token.SCENE, token.SHOW, token.HIDE, token.SAY,
			token.CHOICE, token.IF, token.GOTO, token.WAIT, token.PLAY,
			token.STOP, token.SET, token.TRANSITION, token.RBRACE:
			return
		}
		p.advance()
	}
}
