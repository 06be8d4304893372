package parser

import (
	"github.com/nmscript/nms/internal/ast"
	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/token"
)

// parseStatement dispatches on the current token's kind to the right
// statement parser. On an unrecognized statement start it emits a
// diagnostic, synchronizes to the next statement boundary, and returns nil
// so the caller's loop keeps making progress.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Kind {
	case token.SHOW:
		return p.parseShow()
	case token.HIDE:
		return p.parseHide()
	case token.SAY:
		return p.parseSay()
	case token.CHOICE:
		return p.parseChoice()
	case token.IF:
		return p.parseIf()
	case token.GOTO:
		return p.parseGoto()
	case token.WAIT:
		return p.parseWait()
	case token.PLAY:
		return p.parsePlay()
	case token.STOP:
		return p.parseStop()
	case token.SET:
		return p.parseSet()
	case token.TRANSITION:
		return p.parseTransitionStmt()
	case token.LBRACE:
		return p.parseBlock()
	case token.IDENTIFIER:
		if p.peek(1).Kind == token.STRING {
			return p.parseDialogueShorthand()
		}
		return p.parseExpressionStatement()
	default:
		tok := p.cur()
		p.errorf(diag.CodeExpectedStatement, tok.Span, "expected a statement, found %s", tok.Kind)
		p.synchronize()
		return nil
	}
}

// parseDialogueShorthand parses `Identifier String`, equivalent to
// `say Identifier String`.
func (p *Parser) parseDialogueShorthand() ast.Statement {
	speakerTok := p.advance()
	textTok := p.advance()
	span := diag.NewSpan(speakerTok.Span.Start, textTok.Span.End)
	return ast.NewSay(speakerTok.Lexeme, true, textTok.Lexeme, span)
}

// parseShow parses the three Show sub-forms:
//
//	show background "bg.png" [transition fade 0.5]
//	show character Hero [at left] [transition fade 0.5]
//	show sprite Hero "pose.png" [at (10, 20)] [transition fade 0.5]
func (p *Parser) parseShow() ast.Statement {
	startTok := p.advance() // 'show'

	var target ast.ShowTarget
	switch p.cur().Kind {
	case token.BACKGROUND:
		p.advance()
		target = ast.ShowBackground
	case token.CHARACTER:
		p.advance()
		target = ast.ShowCharacter
	case token.IDENTIFIER:
		if p.cur().Lexeme == "sprite" {
			p.advance()
			target = ast.ShowSprite
		} else {
			p.errorf(diag.CodeInvalidShowForm, p.cur().Span, "expected background, character, or sprite after 'show'")
			p.synchronize()
			return nil
		}
	default:
		p.errorf(diag.CodeInvalidShowForm, p.cur().Span, "expected background, character, or sprite after 'show'")
		p.synchronize()
		return nil
	}

	var identifier, resource string
	hasResource := false

	switch target {
	case ast.ShowBackground:
		resTok, ok := p.expect(token.STRING, "background resource path")
		if !ok {
			p.synchronize()
			return nil
		}
		resource, hasResource = resTok.Lexeme, true
	case ast.ShowCharacter:
		idTok, ok := p.expect(token.IDENTIFIER, "character id")
		if !ok {
			p.synchronize()
			return nil
		}
		identifier = idTok.Lexeme
	case ast.ShowSprite:
		idTok, ok := p.expect(token.IDENTIFIER, "sprite owner id")
		if !ok {
			p.synchronize()
			return nil
		}
		identifier = idTok.Lexeme
		resTok, ok := p.expect(token.STRING, "sprite resource path")
		if !ok {
			p.synchronize()
			return nil
		}
		resource, hasResource = resTok.Lexeme, true
	}

	stmt := ast.NewShow(target, identifier, diag.Span{})
	stmt.Resource = resource
	stmt.HasResource = hasResource

	if p.match(token.AT) {
		stmt.Position = p.parsePosition()
	}

	endSpan := startTok.Span
	if p.match(token.TRANSITION) {
		typTok, ok := p.expect(token.IDENTIFIER, "transition type")
		if ok {
			durExpr := p.parseExpression()
			stmt.TransitionType = typTok.Lexeme
			stmt.TransitionDuration = durExpr
			stmt.HasTransition = true
			if durExpr != nil {
				endSpan = diag.NewSpan(startTok.Span.Start, durExpr.Span().End)
			}
		}
	}

	stmt.SetSpan(diag.NewSpan(startTok.Span.Start, endSpan.End))
	return stmt
}

func (p *Parser) parsePosition() ast.ScreenPosition {
	switch p.cur().Kind {
	case token.LEFT:
		p.advance()
		return ast.ScreenPosition{Kind: ast.PosLeft}
	case token.CENTER:
		p.advance()
		return ast.ScreenPosition{Kind: ast.PosCenter}
	case token.RIGHT:
		p.advance()
		return ast.ScreenPosition{Kind: ast.PosRight}
	case token.LPAREN:
		p.advance()
		x := p.parseExpression()
		p.expect(token.COMMA, "between position coordinates")
		y := p.parseExpression()
		p.expect(token.RPAREN, "to close a custom position")
		return ast.ScreenPosition{Kind: ast.PosCustom, X: x, Y: y}
	default:
		p.errorf(diag.CodeUnexpectedToken, p.cur().Span, "expected left, center, right, or (x, y) after 'at'")
		return ast.ScreenPosition{}
	}
}

func (p *Parser) parseHide() ast.Statement {
	startTok := p.advance() // 'hide'
	idTok, ok := p.expect(token.IDENTIFIER, "character id")
	if !ok {
		p.synchronize()
		return nil
	}
	return ast.NewHide(idTok.Lexeme, diag.NewSpan(startTok.Span.Start, idTok.Span.End))
}

// parseSay parses `say [Identifier] String`.
func (p *Parser) parseSay() ast.Statement {
	startTok := p.advance() // 'say'

	var speaker string
	hasSpeaker := false
	if p.check(token.IDENTIFIER) {
		speaker = p.advance().Lexeme
		hasSpeaker = true
	}

	textTok, ok := p.expect(token.STRING, "dialogue text")
	if !ok {
		p.synchronize()
		return nil
	}

	return ast.NewSay(speaker, hasSpeaker, textTok.Lexeme, diag.NewSpan(startTok.Span.Start, textTok.Span.End))
}

// parseChoice parses a choice block: an ordered list of options, each
// `STRING [if expr] -> (goto IDENT | block)`.
func (p *Parser) parseChoice() ast.Statement {
	startTok := p.advance() // 'choice'
	if _, ok := p.expect(token.LBRACE, "to open a choice block"); !ok {
		p.synchronize()
		return nil
	}

	var options []*ast.ChoiceOption
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		opt := p.parseChoiceOption()
		if opt != nil {
			options = append(options, opt)
		} else {
			p.synchronize()
		}
	}

	closeTok, ok := p.expect(token.RBRACE, "to close a choice block")
	if !ok {
		p.synchronize()
	}

	return ast.NewChoice(options, diag.NewSpan(startTok.Span.Start, closeTok.Span.End))
}

func (p *Parser) parseChoiceOption() *ast.ChoiceOption {
	if !p.check(token.STRING) {
		tok := p.cur()
		p.errorf(diag.CodeInvalidChoiceEntry, tok.Span, "expected a choice option text, found %s", tok.Kind)
		return nil
	}
	textTok := p.advance()

	opt := &ast.ChoiceOption{Text: textTok.Lexeme}

	if p.match(token.IF) {
		opt.Condition = p.parseExpression()
		opt.HasCondition = true
	}

	if _, ok := p.expect(token.ARROW, "after choice option"); !ok {
		return nil
	}

	endSpan := textTok.Span
	if p.match(token.GOTO) {
		targetTok, ok := p.expect(token.IDENTIFIER, "goto target scene")
		if !ok {
			return nil
		}
		opt.GotoTarget = targetTok.Lexeme
		opt.HasGoto = true
		endSpan = targetTok.Span
	} else {
		block := p.parseBlock()
		if block == nil {
			return nil
		}
		opt.Body = block.Statements
		endSpan = block.Span()
	}

	opt.SetSpan(diag.NewSpan(textTok.Span.Start, endSpan.End))
	return opt
}

// parseIf parses `if (expr) block [else (block | if ...)]`, representing
// `else if` as a nested If inside the else Block.
func (p *Parser) parseIf() ast.Statement {
	startTok := p.advance() // 'if'
	if _, ok := p.expect(token.LPAREN, "after 'if'"); !ok {
		p.synchronize()
		return nil
	}
	cond := p.parseExpression()
	if _, ok := p.expect(token.RPAREN, "to close 'if' condition"); !ok {
		p.synchronize()
		return nil
	}

	thenBlock := p.parseBlock()
	if thenBlock == nil {
		return nil
	}

	var elseBlock *ast.Block
	endSpan := thenBlock.Span()
	if p.match(token.ELSE) {
		if p.check(token.IF) {
			nested := p.parseIf()
			if nested != nil {
				elseBlock = ast.NewBlock([]ast.Statement{nested}, nested.Span())
				endSpan = nested.Span()
			}
		} else {
			elseBlock = p.parseBlock()
			if elseBlock != nil {
				endSpan = elseBlock.Span()
			}
		}
	}

	return ast.NewIf(cond, thenBlock, elseBlock, diag.NewSpan(startTok.Span.Start, endSpan.End))
}

func (p *Parser) parseGoto() ast.Statement {
	startTok := p.advance() // 'goto'
	targetTok, ok := p.expect(token.IDENTIFIER, "goto target scene")
	if !ok {
		p.synchronize()
		return nil
	}
	return ast.NewGoto(targetTok.Lexeme, diag.NewSpan(startTok.Span.Start, targetTok.Span.End))
}

func (p *Parser) parseWait() ast.Statement {
	startTok := p.advance() // 'wait'
	dur := p.parseExpression()
	if dur == nil {
		p.synchronize()
		return nil
	}
	return ast.NewWait(dur, diag.NewSpan(startTok.Span.Start, dur.Span().End))
}

// parsePlay parses `play (sound|music) "resource" [volume expr]`.
func (p *Parser) parsePlay() ast.Statement {
	startTok := p.advance() // 'play'
	kind, ok := p.expectPlayKind()
	if !ok {
		p.synchronize()
		return nil
	}
	resTok, ok := p.expect(token.STRING, "resource path")
	if !ok {
		p.synchronize()
		return nil
	}

	stmt := ast.NewPlay(kind, resTok.Lexeme, diag.Span{})
	endSpan := resTok.Span
	if p.check(token.IDENTIFIER) && p.cur().Lexeme == "volume" {
		p.advance()
		vol := p.parseExpression()
		stmt.Volume = vol
		stmt.HasVolume = true
		if vol != nil {
			endSpan = diag.NewSpan(resTok.Span.Start, vol.Span().End)
		}
	}
	stmt.SetSpan(diag.NewSpan(startTok.Span.Start, endSpan.End))
	return stmt
}

// parseStop parses `stop (sound|music) [fade expr]`.
func (p *Parser) parseStop() ast.Statement {
	startTok := p.advance() // 'stop'
	kind, ok := p.expectPlayKind()
	if !ok {
		p.synchronize()
		return nil
	}

	stmt := ast.NewStop(kind, diag.Span{})
	endSpan := startTok.Span
	if p.match(token.FADE) {
		fade := p.parseExpression()
		stmt.Fade = fade
		stmt.HasFade = true
		if fade != nil {
			endSpan = diag.NewSpan(startTok.Span.Start, fade.Span().End)
		}
	}
	stmt.SetSpan(diag.NewSpan(startTok.Span.Start, endSpan.End))
	return stmt
}

func (p *Parser) expectPlayKind() (ast.PlayKind, bool) {
	switch p.cur().Kind {
	case token.SOUND:
		p.advance()
		return ast.PlaySoundKind, true
	case token.MUSIC:
		p.advance()
		return ast.PlayMusicKind, true
	default:
		p.errorf(diag.CodeUnexpectedToken, p.cur().Span, "expected 'sound' or 'music'")
		return 0, false
	}
}

// parseSet parses `set [flag] name = expr`.
func (p *Parser) parseSet() ast.Statement {
	startTok := p.advance() // 'set'
	isFlag := p.match(token.FLAG)

	nameTok, ok := p.expect(token.IDENTIFIER, "variable name")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.ASSIGN, "after variable name"); !ok {
		p.synchronize()
		return nil
	}
	value := p.parseExpression()
	if value == nil {
		p.synchronize()
		return nil
	}
	return ast.NewSet(nameTok.Lexeme, value, isFlag, diag.NewSpan(startTok.Span.Start, value.Span().End))
}

// parseTransitionStmt parses a standalone `transition type duration`.
func (p *Parser) parseTransitionStmt() ast.Statement {
	startTok := p.advance() // 'transition'
	typTok, ok := p.expect(token.IDENTIFIER, "transition type")
	if !ok {
		p.synchronize()
		return nil
	}
	dur := p.parseExpression()
	if dur == nil {
		p.synchronize()
		return nil
	}
	return ast.NewTransition(typTok.Lexeme, dur, diag.NewSpan(startTok.Span.Start, dur.Span().End))
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	expr := p.parseExpression()
	if expr == nil {
		p.synchronize()
		return nil
	}
	return ast.NewExpressionStmt(expr, expr.Span())
}
