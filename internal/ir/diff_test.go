package ir_test

import (
	"testing"

	"github.com/nmscript/nms/internal/ir"
	"github.com/stretchr/testify/require"
)

func TestDiffApplyInvertRoundTrips(t *testing.T) {
	prog := mustParseProgram(t, `scene a { say "hello" say "world" }`)
	base := ir.FromAST(prog)

	modified := ir.FromAST(prog)
	var dialogueId ir.NodeId
	for id, n := range modified.Nodes {
		if n.Type == ir.Dialogue {
			dialogueId = id
			break
		}
	}
	modified.Nodes[dialogueId].SetProp("text", ir.StringProp("changed"))
	modified.Nodes[dialogueId].Pos.X = 123

	extra := modified.NewNode(ir.Comment)
	extra.SetProp("text", ir.StringProp("note"))

	d := ir.Diff(base, modified)
	require.NotEmpty(t, d.Entries)

	applied := ir.Apply(base, d)
	require.Equal(t, "changed", applied.Nodes[dialogueId].Prop("text").String)
	require.Equal(t, 123.0, applied.Nodes[dialogueId].Pos.X)
	require.Contains(t, applied.Nodes, extra.Id)

	undone := ir.Apply(applied, ir.Invert(d))
	reDiff := ir.Diff(base, undone)
	require.Empty(t, reDiff.Entries)
}

func TestMergeDetectsConflictOnSharedNode(t *testing.T) {
	prog := mustParseProgram(t, `scene a { say "hello" }`)
	base := ir.FromAST(prog)

	var dialogueId ir.NodeId
	for id, n := range base.Nodes {
		if n.Type == ir.Dialogue {
			dialogueId = id
		}
	}

	a := ir.FromAST(prog)
	a.Nodes[dialogueId].SetProp("text", ir.StringProp("from a"))
	diffA := ir.Diff(base, a)

	b := ir.FromAST(prog)
	b.Nodes[dialogueId].SetProp("text", ir.StringProp("from b"))
	diffB := ir.Diff(base, b)

	_, conflicts := ir.Merge(diffA, diffB)
	require.NotEmpty(t, conflicts)
}

func TestMergeSucceedsOnDisjointChanges(t *testing.T) {
	prog := mustParseProgram(t, `scene a { say "hello" say "world" }`)
	base := ir.FromAST(prog)

	var ids []ir.NodeId
	for id, n := range base.Nodes {
		if n.Type == ir.Dialogue {
			ids = append(ids, id)
		}
	}
	require.Len(t, ids, 2)

	a := ir.FromAST(prog)
	a.Nodes[ids[0]].SetProp("text", ir.StringProp("a changed"))
	diffA := ir.Diff(base, a)

	b := ir.FromAST(prog)
	b.Nodes[ids[1]].SetProp("text", ir.StringProp("b changed"))
	diffB := ir.Diff(base, b)

	merged, conflicts := ir.Merge(diffA, diffB)
	require.Empty(t, conflicts)
	require.NotNil(t, merged)

	result := ir.Apply(base, merged)
	require.Equal(t, "a changed", result.Nodes[ids[0]].Prop("text").String)
	require.Equal(t, "b changed", result.Nodes[ids[1]].Prop("text").String)
}
