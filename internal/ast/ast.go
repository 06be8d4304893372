// Package ast defines the sum-type tree produced by the parser: expressions
// and statements rooted in a Program. Every node owns its children (no
// shared ownership, no parent pointers) and carries the source span it was
// parsed from, following CWBudde-go-dws's internal/ast owned-tree
// convention generalized from its Pascal-OOP node set down to this
// language's small statement/expression vocabulary: nodes own
// their children directly, since nothing here needs shared ownership.
package ast

import "github.com/nmscript/nms/internal/diag"

// Node is the base interface implemented by every AST node.
type Node interface {
	Span() diag.Span
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of the tree: the declared characters, the declared
// scenes, and any statements that appear outside of a scene body.
type Program struct {
	Characters []*CharacterDecl
	Scenes     []*SceneDecl
	Globals    []Statement
}

func (p *Program) Span() diag.Span {
	switch {
	case len(p.Characters) > 0:
		return p.Characters[0].Span()
	case len(p.Scenes) > 0:
		return p.Scenes[0].Span()
	case len(p.Globals) > 0:
		return p.Globals[0].Span()
	default:
		return diag.Span{}
	}
}
