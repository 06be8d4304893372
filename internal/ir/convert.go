package ir

import (
	"fmt"

	"github.com/nmscript/nms/internal/ast"
	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/parser"
)

const (
	portIn  = "in"
	portOut = "out"
)

// astBuilder threads per-scene layout state (vertical cursor) through the
// AST -> IR conversion so node positions come out deterministic for
// identical inputs: each scene is laid out top-to-bottom with a uniform
// vertical spacing.
type astBuilder struct {
	g     *IRGraph
	y     float64
	yStep float64
}

const defaultYStep = 80

// FromAST converts a parsed program into an IRGraph. Conversion is
// deterministic: running it twice on the same Program yields identical
// node ids (allocated in declaration order) and identical positions.
func FromAST(prog *ast.Program) *IRGraph {
	g := NewIRGraph()

	for _, c := range prog.Characters {
		g.Characters = append(g.Characters, CharacterDecl{
			ID: c.ID, DisplayName: c.DisplayName, Color: c.Color,
			DefaultSprite: c.DefaultSprite, HasDefaultSprite: c.HasDefaultSpr,
		})
	}

	for _, scene := range prog.Scenes {
		b := &astBuilder{g: g, yStep: defaultYStep}
		start := g.NewNode(SceneStart)
		start.SetProp("name", StringProp(scene.Name))
		start.Span = scene.Span()
		start.Pos = Position{X: 0, Y: b.y}
		g.SceneEntry[scene.Name] = start.Id
		b.y += b.yStep

		entry, tail := b.convertChain(scene.Body)
		if entry != nil {
			b.connectNodes(start, entry)
		} else {
			tail = start
		}
		if tail != nil {
			end := g.NewNode(SceneEnd)
			end.Pos = Position{X: 0, Y: b.y}
			b.connectNodes(tail, end)
		}
	}

	return g
}

// convertChain converts a statement list, wiring each statement's entry to
// the previous statement's tail, and returns the chain's own entry and
// tail (either may be nil: entry is nil for an empty list, tail is nil
// when the last statement transfers control away unconditionally).
func (b *astBuilder) convertChain(stmts []ast.Statement) (entry, tail *IRNode) {
	var prevTail *IRNode
	for _, stmt := range stmts {
		e, t := b.convertStatement(stmt)
		if e == nil {
			continue
		}
		if entry == nil {
			entry = e
		}
		if prevTail != nil {
			b.connectNodes(prevTail, e)
		}
		prevTail = t
		if prevTail == nil {
			break // rest of the block is unreachable (e.g. after a goto)
		}
	}
	return entry, prevTail
}

// convertStatement converts a single statement to its IR form, returning
// the node a predecessor should wire into (entry) and the node subsequent
// statements should chain from (tail). For most statement kinds entry and
// tail are the same node; they differ for If (entry is the Branch, tail is
// its join) and Choice (entry is the Choice node, tail is nil: its arms
// never rejoin a single linear chain).
func (b *astBuilder) convertStatement(stmt ast.Statement) (entry, tail *IRNode) {
	var n *IRNode

	switch s := stmt.(type) {
	case *ast.Show:
		switch s.Target {
		case ast.ShowBackground:
			n = b.g.NewNode(ShowBackground)
			n.SetProp("resource", StringProp(s.Resource))
		default:
			n = b.g.NewNode(ShowCharacter)
			n.SetProp("identifier", StringProp(s.Identifier))
			n.SetProp("isSprite", BoolProp(s.Target == ast.ShowSprite))
			if s.HasResource {
				n.SetProp("resource", StringProp(s.Resource))
			}
		}
		n.SetProp("position", IntProp(int64(s.Position.Kind)))
		if s.HasTransition {
			n.SetProp("transitionType", StringProp(s.TransitionType))
			n.SetProp("transitionDuration", StringProp(ExprToText(s.TransitionDuration)))
		}

	case *ast.Hide:
		n = b.g.NewNode(HideCharacter)
		n.SetProp("identifier", StringProp(s.Identifier))

	case *ast.Say:
		n = b.g.NewNode(Dialogue)
		n.SetProp("text", StringProp(s.Text))
		if s.HasSpeaker {
			n.SetProp("speaker", StringProp(s.Speaker))
		}

	case *ast.Choice:
		n = b.g.NewNode(Choice)
		n.Span = stmt.Span()
		n.Pos = Position{X: 0, Y: b.y}
		b.y += b.yStep
		for i, opt := range s.Options {
			optNode := b.g.NewNode(ChoiceOption)
			optNode.SetProp("text", StringProp(opt.Text))
			optNode.SetProp("index", IntProp(int64(i)))
			if opt.HasCondition {
				optNode.SetProp("condition", StringProp(ExprToText(opt.Condition)))
			}
			optNode.Pos = Position{X: float64(i) * 200, Y: b.y}
			b.g.ConnectLabeled(PortId{Node: n.Id, Port: fmt.Sprintf("option%d", i), IsOutput: true},
				PortId{Node: optNode.Id, Port: portIn}, opt.Text)

			if opt.HasGoto {
				gotoNode := b.g.NewNode(Goto)
				gotoNode.SetProp("target", StringProp(opt.GotoTarget))
				gotoNode.Pos = Position{X: optNode.Pos.X, Y: b.y + b.yStep}
				b.connectNodes(optNode, gotoNode)
			} else {
				bodyEntry, _ := b.convertChain(opt.Body)
				if bodyEntry != nil {
					b.connectNodes(optNode, bodyEntry)
				}
			}
		}
		b.y += 2 * b.yStep
		return n, nil // choice branches never rejoin a single linear chain

	case *ast.If:
		n = b.g.NewNode(Branch)
		n.SetProp("condition", StringProp(ExprToText(s.Condition)))
		n.SetProp("hasElse", BoolProp(s.HasElse))
		n.Span = stmt.Span()
		n.Pos = Position{X: 0, Y: b.y}
		b.y += b.yStep

		branchY := b.y
		var thenTail *IRNode
		if len(s.Then.Statements) > 0 {
			thenEntry, t := b.convertChain(s.Then.Statements)
			b.g.ConnectLabeled(PortId{Node: n.Id, Port: "then", IsOutput: true}, PortId{Node: thenEntry.Id, Port: portIn}, "true")
			thenTail = t
		}
		var elseTail *IRNode
		if s.HasElse && len(s.Else.Statements) > 0 {
			b.y = branchY
			elseEntry, t := b.convertChain(s.Else.Statements)
			b.g.ConnectLabeled(PortId{Node: n.Id, Port: "else", IsOutput: true}, PortId{Node: elseEntry.Id, Port: portIn}, "false")
			elseTail = t
		}

		join := b.g.NewNode(Sequence)
		join.SetProp("join", BoolProp(true))
		b.y += b.yStep
		join.Pos = Position{X: 0, Y: b.y}
		if thenTail != nil {
			b.connectNodes(thenTail, join)
		} else if len(s.Then.Statements) == 0 {
			b.g.ConnectLabeled(PortId{Node: n.Id, Port: "then", IsOutput: true}, PortId{Node: join.Id, Port: portIn}, "true")
		}
		if elseTail != nil {
			b.connectNodes(elseTail, join)
		} else if !s.HasElse || len(s.Else.Statements) == 0 {
			b.g.ConnectLabeled(PortId{Node: n.Id, Port: "else", IsOutput: true}, PortId{Node: join.Id, Port: portIn}, "false")
		}
		return n, join

	case *ast.Goto:
		n = b.g.NewNode(Goto)
		n.SetProp("target", StringProp(s.Target))
		n.Span = stmt.Span()
		n.Pos = Position{X: 0, Y: b.y}
		b.y += b.yStep
		return n, nil

	case *ast.Wait:
		n = b.g.NewNode(Wait)
		n.SetProp("duration", StringProp(ExprToText(s.Duration)))

	case *ast.Play:
		if s.Kind == ast.PlayMusicKind {
			n = b.g.NewNode(PlayMusic)
		} else {
			n = b.g.NewNode(PlaySound)
		}
		n.SetProp("resource", StringProp(s.Resource))
		if s.HasVolume {
			n.SetProp("volume", StringProp(ExprToText(s.Volume)))
		}

	case *ast.Stop:
		n = b.g.NewNode(StopMusic)
		n.SetProp("kind", StringProp(map[bool]string{true: "music", false: "sound"}[s.Kind == ast.PlayMusicKind]))
		if s.HasFade {
			n.SetProp("fade", StringProp(ExprToText(s.Fade)))
		}

	case *ast.Set:
		n = b.g.NewNode(SetVariable)
		n.SetProp("name", StringProp(s.Name))
		n.SetProp("isFlag", BoolProp(s.IsFlag))
		n.SetProp("value", StringProp(ExprToText(s.Value)))

	case *ast.Transition:
		n = b.g.NewNode(Transition)
		n.SetProp("type", StringProp(s.Type))
		n.SetProp("duration", StringProp(ExprToText(s.Duration)))

	case *ast.ExpressionStmt:
		if call, ok := s.Expr.(*ast.CallExpr); ok {
			n = b.g.NewNode(FunctionCall)
			n.SetProp("callee", StringProp(ExprToText(call.Callee)))
			n.SetProp("args", StringListProp(callArgTexts(call)))
		} else {
			n = b.g.NewNode(ExpressionNode)
			n.SetProp("expr", StringProp(ExprToText(s.Expr)))
		}

	case *ast.Block:
		return b.convertChain(s.Statements)

	default:
		return nil, nil
	}

	n.Span = stmt.Span()
	n.Pos = Position{X: 0, Y: b.y}
	b.y += b.yStep
	return n, n
}

func (b *astBuilder) connectNodes(prev, n *IRNode) {
	if prev == nil || n == nil {
		return
	}
	b.g.Connect(PortId{Node: prev.Id, Port: portOut, IsOutput: true}, PortId{Node: n.Id, Port: portIn})
}

func callArgTexts(call *ast.CallExpr) []string {
	out := make([]string, len(call.Args))
	for i, a := range call.Args {
		out[i] = ExprToText(a)
	}
	return out
}

// ToAST converts an IRGraph back to a Program by walking from each
// SceneStart in flow order: a topological walk starting at each
// SceneStart node. Expression-bearing properties are reparsed from their
// stored text form via the parser's expression entry point.
func ToAST(g *IRGraph) (*ast.Program, *diag.Collection) {
	diags := diag.NewCollection()
	prog := &ast.Program{}

	for _, c := range g.Characters {
		prog.Characters = append(prog.Characters, ast.NewCharacterDecl(c.ID, c.DisplayName, c.Color, diag.Span{}))
	}

	outgoing := make(map[NodeId][]Connection)
	for _, c := range g.Connections {
		outgoing[c.Source.Node] = append(outgoing[c.Source.Node], c)
	}

	for name, startId := range g.SceneEntry {
		start := g.Nodes[startId]
		if start == nil {
			continue
		}
		body := walkFlow(g, outgoing, startId, map[NodeId]bool{})
		prog.Scenes = append(prog.Scenes, ast.NewSceneDecl(name, body, start.Span))
	}

	return prog, diags
}

// walkFlow lowers the node chain starting at id back into a statement
// slice, stopping at SceneEnd.
func walkFlow(g *IRGraph, outgoing map[NodeId][]Connection, id NodeId, visited map[NodeId]bool) []ast.Statement {
	stmts, _ := walkSegment(g, outgoing, id, visited)
	return stmts
}

// isJoin reports whether n is the Sequence node a Branch's two arms
// reconverge on (marked at construction time by FromAST).
func isJoin(n *IRNode) bool {
	return n.Type == Sequence && n.Prop("join").Bool
}

// walkSegment lowers a linear run of nodes into statements. It halts
// either at a natural terminator (SceneEnd, Goto, a Choice's fan-out) or
// at a join node it did not itself create, returning that join's id so
// the caller (an arm of the enclosing Branch) knows where sibling arms
// reconverge. A Branch encountered mid-segment is resolved recursively
// and fully, including stepping past its own join node, before this
// segment continues — so a join id is only ever surfaced to the direct
// caller of the arm-walk that produced it, never an unrelated ancestor.
func walkSegment(g *IRGraph, outgoing map[NodeId][]Connection, id NodeId, visited map[NodeId]bool) ([]ast.Statement, NodeId) {
	var out []ast.Statement
	for {
		if visited[id] {
			return out, 0
		}
		n := g.Nodes[id]
		if n == nil {
			return out, 0
		}
		if isJoin(n) {
			return out, id
		}
		visited[id] = true

		switch n.Type {
		case SceneStart:
			// no statement of its own; just advance

		case SceneEnd:
			return out, 0

		case Choice:
			opts := collectChoiceOptions(g, outgoing, id)
			out = append(out, ast.NewChoice(opts, n.Span))
			// all choice arms are terminal for this chain; nothing rejoins
			return out, 0

		case Branch:
			thenId, elseId := branchTargets(outgoing, id)
			var thenStmts, elseStmts []ast.Statement
			var joinId NodeId
			if thenId != 0 {
				var j NodeId
				thenStmts, j = walkSegment(g, outgoing, thenId, cloneVisited(visited))
				if j != 0 {
					joinId = j
				}
			}
			hasElse := n.Prop("hasElse").Bool
			if elseId != 0 && hasElse {
				var j NodeId
				elseStmts, j = walkSegment(g, outgoing, elseId, cloneVisited(visited))
				if j != 0 && joinId == 0 {
					joinId = j
				}
			} else if elseId != 0 {
				// No authored else block: the "else" edge runs straight to
				// the join node, which is also our own return point.
				if joinId == 0 {
					joinId = elseId
				}
			}
			cond := reparse(n.Prop("condition").String)
			var elseBlock *ast.Block
			if hasElse {
				elseBlock = ast.NewBlock(elseStmts, diag.Span{})
			}
			out = append(out, ast.NewIf(cond, ast.NewBlock(thenStmts, diag.Span{}), elseBlock, n.Span))

			if joinId == 0 {
				return out, 0
			}
			// Consume the join belonging to this Branch and continue past
			// it, rather than surfacing it to our own caller.
			visited[joinId] = true
			next, ok := soleSuccessor(outgoing, joinId)
			if !ok {
				return out, 0
			}
			id = next
			continue

		default:
			if stmt := lowerNode(n); stmt != nil {
				out = append(out, stmt)
			}
			if n.Type == Goto {
				return out, 0
			}
		}

		next, ok := soleSuccessor(outgoing, id)
		if !ok {
			return out, 0
		}
		id = next
	}
}

func cloneVisited(v map[NodeId]bool) map[NodeId]bool {
	out := make(map[NodeId]bool, len(v))
	for k, ok := range v {
		out[k] = ok
	}
	return out
}

func soleSuccessor(outgoing map[NodeId][]Connection, id NodeId) (NodeId, bool) {
	conns := outgoing[id]
	if len(conns) == 0 {
		return 0, false
	}
	return conns[0].Target.Node, true
}

func branchTargets(outgoing map[NodeId][]Connection, id NodeId) (thenId, elseId NodeId) {
	for _, c := range outgoing[id] {
		switch c.Source.Port {
		case "then":
			thenId = c.Target.Node
		case "else":
			elseId = c.Target.Node
		}
	}
	return
}

func collectChoiceOptions(g *IRGraph, outgoing map[NodeId][]Connection, choiceId NodeId) []*ast.ChoiceOption {
	conns := outgoing[choiceId]
	opts := make([]*ast.ChoiceOption, len(conns))
	for _, c := range conns {
		optNode := g.Nodes[c.Target.Node]
		if optNode == nil {
			continue
		}
		idx := int(optNode.Prop("index").Int)
		opt := &ast.ChoiceOption{Text: optNode.Prop("text").String}
		opt.SetSpan(optNode.Span)
		if cond := optNode.Prop("condition"); cond.Kind == PropString && cond.String != "" {
			opt.Condition = reparse(cond.String)
			opt.HasCondition = true
		}

		succ, ok := soleSuccessor(outgoing, optNode.Id)
		if ok {
			if g.Nodes[succ].Type == Goto {
				opt.GotoTarget = g.Nodes[succ].Prop("target").String
				opt.HasGoto = true
			} else {
				opt.Body = walkFlow(g, outgoing, succ, map[NodeId]bool{})
			}
		}
		if idx >= 0 && idx < len(opts) {
			opts[idx] = opt
		}
	}
	final := make([]*ast.ChoiceOption, 0, len(opts))
	for _, o := range opts {
		if o != nil {
			final = append(final, o)
		}
	}
	return final
}

func reparse(text string) ast.Expression {
	if text == "" {
		return nil
	}
	p := parser.New(text)
	return p.ParseExpression()
}

func lowerNode(n *IRNode) ast.Statement {
	switch n.Type {
	case ShowBackground:
		stmt := ast.NewShow(ast.ShowBackground, "", n.Span)
		stmt.Resource = n.Prop("resource").String
		stmt.HasResource = true
		applyShowExtras(stmt, n)
		return stmt
	case ShowCharacter:
		target := ast.ShowCharacter
		if n.Prop("isSprite").Bool {
			target = ast.ShowSprite
		}
		stmt := ast.NewShow(target, n.Prop("identifier").String, n.Span)
		if r := n.Prop("resource"); r.Kind == PropString {
			stmt.Resource = r.String
			stmt.HasResource = true
		}
		applyShowExtras(stmt, n)
		return stmt
	case HideCharacter:
		return ast.NewHide(n.Prop("identifier").String, n.Span)
	case Dialogue:
		speaker := n.Prop("speaker")
		return ast.NewSay(speaker.String, speaker.Kind == PropString, n.Prop("text").String, n.Span)
	case Goto:
		return ast.NewGoto(n.Prop("target").String, n.Span)
	case Wait:
		return ast.NewWait(reparse(n.Prop("duration").String), n.Span)
	case PlayMusic, PlaySound:
		kind := ast.PlaySoundKind
		if n.Type == PlayMusic {
			kind = ast.PlayMusicKind
		}
		stmt := ast.NewPlay(kind, n.Prop("resource").String, n.Span)
		if v := n.Prop("volume"); v.Kind == PropString {
			stmt.Volume = reparse(v.String)
			stmt.HasVolume = true
		}
		return stmt
	case StopMusic:
		kind := ast.PlayMusicKind
		if n.Prop("kind").String == "sound" {
			kind = ast.PlaySoundKind
		}
		stmt := ast.NewStop(kind, n.Span)
		if f := n.Prop("fade"); f.Kind == PropString {
			stmt.Fade = reparse(f.String)
			stmt.HasFade = true
		}
		return stmt
	case SetVariable:
		return ast.NewSet(n.Prop("name").String, reparse(n.Prop("value").String), n.Prop("isFlag").Bool, n.Span)
	case Transition:
		return ast.NewTransition(n.Prop("type").String, reparse(n.Prop("duration").String), n.Span)
	case FunctionCall:
		callee := reparse(n.Prop("callee").String)
		argTexts := n.Prop("args").StringList
		args := make([]ast.Expression, len(argTexts))
		for i, t := range argTexts {
			args[i] = reparse(t)
		}
		return ast.NewExpressionStmt(ast.NewCallExpr(callee, args, n.Span), n.Span)
	case ExpressionNode:
		return ast.NewExpressionStmt(reparse(n.Prop("expr").String), n.Span)
	default:
		return nil
	}
}

func applyShowExtras(stmt *ast.Show, n *IRNode) {
	stmt.Position = ast.ScreenPosition{Kind: ast.PositionKind(n.Prop("position").Int)}
	if t := n.Prop("transitionType"); t.Kind == PropString {
		stmt.TransitionType = t.String
		stmt.TransitionDuration = reparse(n.Prop("transitionDuration").String)
		stmt.HasTransition = true
	}
}
