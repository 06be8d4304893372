package parser

import (
	"github.com/nmscript/nms/internal/ast"
	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/token"
)

// parseCharacterDecl parses:
//
//	character Hero(name="Alex", color="#FFCC00")
//	character Hero(name="Alex", color="#FFCC00", sprite="hero_default.png")
func (p *Parser) parseCharacterDecl() *ast.CharacterDecl {
	startTok := p.advance() // 'character'
	idTok, ok := p.expect(token.IDENTIFIER, "character id")
	if !ok {
		p.synchronize()
		return nil
	}

	var displayName, color, sprite string
	hasSprite := false

	if p.match(token.LPAREN) {
		for !p.check(token.RPAREN) && !p.check(token.EOF) {
			keyTok, ok := p.expect(token.IDENTIFIER, "property key")
			if !ok {
				p.synchronize()
				return nil
			}
			if _, ok := p.expect(token.ASSIGN, "after property key"); !ok {
				p.synchronize()
				return nil
			}
			valTok, ok := p.expect(token.STRING, "property value")
			if !ok {
				p.synchronize()
				return nil
			}
			switch keyTok.Lexeme {
			case "name":
				displayName = valTok.Lexeme
			case "color":
				color = valTok.Lexeme
			case "sprite":
				sprite = valTok.Lexeme
				hasSprite = true
			default:
				p.errorf(diag.CodeUnexpectedToken, keyTok.Span, "unknown character property '%s'", keyTok.Lexeme)
			}
			if !p.match(token.COMMA) {
				break
			}
		}
		if _, ok := p.expect(token.RPAREN, "to close character properties"); !ok {
			p.synchronize()
			return nil
		}
	}

	if displayName == "" {
		displayName = idTok.Lexeme
	}

	span := diag.NewSpan(startTok.Span.Start, idTok.Span.End)
	decl := ast.NewCharacterDecl(idTok.Lexeme, displayName, color, span)
	decl.DefaultSprite = sprite
	decl.HasDefaultSpr = hasSprite
	return decl
}

// parseSceneDecl parses:
//
//	scene intro { <statements> }
func (p *Parser) parseSceneDecl() *ast.SceneDecl {
	startTok := p.advance() // 'scene'
	nameTok, ok := p.expect(token.IDENTIFIER, "scene name")
	if !ok {
		p.synchronize()
		return nil
	}

	block := p.parseBlock()
	if block == nil {
		return nil
	}

	span := diag.NewSpan(startTok.Span.Start, block.Span().End)
	return ast.NewSceneDecl(nameTok.Lexeme, block.Statements, span)
}

// parseBlock parses a brace-delimited statement sequence.
func (p *Parser) parseBlock() *ast.Block {
	openTok, ok := p.expect(token.LBRACE, "to open a block")
	if !ok {
		p.synchronize()
		return nil
	}

	var stmts []ast.Statement
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	closeTok, ok := p.expect(token.RBRACE, "to close a block")
	if !ok {
		p.synchronize()
	}

	return ast.NewBlock(stmts, diag.NewSpan(openTok.Span.Start, closeTok.Span.End))
}
