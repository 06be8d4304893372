package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nmscript/nms/internal/ast"
)

// ExprToText renders an expression back to source form. Used both for the
// top-level "text -> IR -> text" round trip and to flatten expressions that
// live inside IR node properties (Wait's duration, Set's value, a Branch's
// condition) to a single string property, since the IR's closed property
// tagged union has no "sub-expression" case.
func ExprToText(e ast.Expression) string {
	switch n := e.(type) {
	case nil:
		return ""
	case *ast.Literal:
		switch n.Kind {
		case ast.LiteralNull:
			return "null"
		case ast.LiteralInt:
			return strconv.FormatInt(n.Int, 10)
		case ast.LiteralFloat:
			return strconv.FormatFloat(n.Float, 'g', -1, 64)
		case ast.LiteralBool:
			return strconv.FormatBool(n.Bool)
		case ast.LiteralString:
			return strconv.Quote(n.String)
		}
		return ""
	case *ast.Identifier:
		return n.Name
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", ExprToText(n.Left), n.Operator, ExprToText(n.Right))
	case *ast.UnaryExpr:
		if n.Operator == "not" {
			return "not " + ExprToText(n.Operand)
		}
		return n.Operator + ExprToText(n.Operand)
	case *ast.CallExpr:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = ExprToText(a)
		}
		return fmt.Sprintf("%s(%s)", ExprToText(n.Callee), strings.Join(args, ", "))
	case *ast.PropertyExpr:
		return ExprToText(n.Object) + "." + n.Name
	default:
		return ""
	}
}

// ProgramToText pretty-prints a whole program back to .nms source, one
// statement per line, matching the surface grammar's keyword forms closely
// enough that reparsing it reproduces a semantically equivalent AST.
func ProgramToText(prog *ast.Program) string {
	var b strings.Builder
	for _, c := range prog.Characters {
		fmt.Fprintf(&b, "character %s(name=%s", c.ID, strconv.Quote(c.DisplayName))
		if c.Color != "" {
			fmt.Fprintf(&b, ", color=%s", strconv.Quote(c.Color))
		}
		if c.HasDefaultSpr {
			fmt.Fprintf(&b, ", sprite=%s", strconv.Quote(c.DefaultSprite))
		}
		b.WriteString(")\n")
	}
	for _, s := range prog.Globals {
		writeStatement(&b, s, 0)
	}
	for _, s := range prog.Scenes {
		fmt.Fprintf(&b, "scene %s {\n", s.Name)
		for _, stmt := range s.Body {
			writeStatement(&b, stmt, 1)
		}
		b.WriteString("}\n")
	}
	return b.String()
}

func positionSuffix(pos ast.ScreenPosition) string {
	switch pos.Kind {
	case ast.PosLeft:
		return " at left"
	case ast.PosCenter:
		return " at center"
	case ast.PosRight:
		return " at right"
	case ast.PosCustom:
		return fmt.Sprintf(" at (%s, %s)", ExprToText(pos.X), ExprToText(pos.Y))
	default:
		return ""
	}
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("\t")
	}
}

func writeStatement(b *strings.Builder, s ast.Statement, depth int) {
	indent(b, depth)
	switch n := s.(type) {
	case *ast.Show:
		switch n.Target {
		case ast.ShowBackground:
			fmt.Fprintf(b, "show background %s", strconv.Quote(n.Resource))
		case ast.ShowCharacter:
			fmt.Fprintf(b, "show character %s", n.Identifier)
			b.WriteString(positionSuffix(n.Position))
		case ast.ShowSprite:
			fmt.Fprintf(b, "show sprite %s %s", n.Identifier, strconv.Quote(n.Resource))
			b.WriteString(positionSuffix(n.Position))
		}
		if n.HasTransition {
			fmt.Fprintf(b, " transition %s %s", n.TransitionType, ExprToText(n.TransitionDuration))
		}
		b.WriteString("\n")
	case *ast.Hide:
		fmt.Fprintf(b, "hide %s\n", n.Identifier)
	case *ast.Say:
		if n.HasSpeaker {
			fmt.Fprintf(b, "%s %s\n", n.Speaker, strconv.Quote(n.Text))
		} else {
			fmt.Fprintf(b, "say %s\n", strconv.Quote(n.Text))
		}
	case *ast.Choice:
		b.WriteString("choice {\n")
		for _, opt := range n.Options {
			indent(b, depth+1)
			fmt.Fprintf(b, "%s", strconv.Quote(opt.Text))
			if opt.HasCondition {
				fmt.Fprintf(b, " if %s", ExprToText(opt.Condition))
			}
			if opt.HasGoto {
				fmt.Fprintf(b, " -> goto %s\n", opt.GotoTarget)
			} else {
				b.WriteString(" -> {\n")
				for _, st := range opt.Body {
					writeStatement(b, st, depth+2)
				}
				indent(b, depth+1)
				b.WriteString("}\n")
			}
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *ast.If:
		fmt.Fprintf(b, "if (%s) {\n", ExprToText(n.Condition))
		for _, st := range n.Then.Statements {
			writeStatement(b, st, depth+1)
		}
		indent(b, depth)
		if n.HasElse {
			b.WriteString("} else {\n")
			for _, st := range n.Else.Statements {
				writeStatement(b, st, depth+1)
			}
			indent(b, depth)
		}
		b.WriteString("}\n")
	case *ast.Goto:
		fmt.Fprintf(b, "goto %s\n", n.Target)
	case *ast.Wait:
		fmt.Fprintf(b, "wait %s\n", ExprToText(n.Duration))
	case *ast.Play:
		kind := "sound"
		if n.Kind == ast.PlayMusicKind {
			kind = "music"
		}
		fmt.Fprintf(b, "play %s %s", kind, strconv.Quote(n.Resource))
		if n.HasVolume {
			fmt.Fprintf(b, " volume %s", ExprToText(n.Volume))
		}
		b.WriteString("\n")
	case *ast.Stop:
		kind := "sound"
		if n.Kind == ast.PlayMusicKind {
			kind = "music"
		}
		fmt.Fprintf(b, "stop %s", kind)
		if n.HasFade {
			fmt.Fprintf(b, " fade %s", ExprToText(n.Fade))
		}
		b.WriteString("\n")
	case *ast.Set:
		if n.IsFlag {
			fmt.Fprintf(b, "set flag %s = %s\n", n.Name, ExprToText(n.Value))
		} else {
			fmt.Fprintf(b, "set %s = %s\n", n.Name, ExprToText(n.Value))
		}
	case *ast.Transition:
		fmt.Fprintf(b, "transition %s %s\n", n.Type, ExprToText(n.Duration))
	case *ast.ExpressionStmt:
		fmt.Fprintf(b, "%s\n", ExprToText(n.Expr))
	case *ast.Block:
		for _, st := range n.Statements {
			writeStatement(b, st, depth)
		}
	}
}
