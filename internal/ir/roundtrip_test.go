package ir_test

import (
	"testing"

	"github.com/nmscript/nms/internal/ir"
	"github.com/stretchr/testify/require"
)

func TestRunTextRoundTripIsIdenticalForCanonicalSource(t *testing.T) {
	result, diags := ir.RunTextRoundTrip(`scene a {
	say "hello"
}
`)
	require.False(t, diags.HasErrors())
	require.NotNil(t, result)
	require.True(t, result.Identical, "expected identical text, got:\n%s", result.Generated)
}

func TestRunGraphRoundTripIsEquivalentModuloIds(t *testing.T) {
	prog := mustParseProgram(t, `
		scene a {
			set x = 1
			if (x == 1) {
				say "one"
			} else {
				say "other"
			}
			say "after"
		}
	`)
	g := ir.FromAST(prog)

	result := ir.RunGraphRoundTrip(g)
	require.True(t, result.Equivalent, "expected equivalent graphs, diff:\n%s", result.Diff)
}

func TestNormalizeIsStableUnderIdPermutation(t *testing.T) {
	prog := mustParseProgram(t, `scene a { say "hello" say "world" }`)
	g1 := ir.FromAST(prog)
	g2 := ir.FromAST(prog)

	n1 := ir.Normalize(g1)
	n2 := ir.Normalize(g2)

	require.Equal(t, len(n1.Nodes), len(n2.Nodes))
	for id, node := range n1.Nodes {
		other, ok := n2.Nodes[id]
		require.True(t, ok)
		require.Equal(t, node.Type, other.Type)
	}
}

func TestValidateReportsOkForRoundTrippableSource(t *testing.T) {
	report, ok := ir.Validate(`scene a {
	say "hello"
}
`)
	require.True(t, ok, "report: %s", report)
}

func TestValidateReportsParseErrors(t *testing.T) {
	_, ok := ir.Validate(`scene a { say `)
	require.False(t, ok)
}
