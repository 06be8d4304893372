package ir

import (
	"fmt"
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nmscript/nms/internal/ast"
	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/parser"
)

// TextRoundTrip runs source text through text -> IR -> AST -> text' and
// reports whether the regenerated text is byte-identical, along with the
// regenerated text itself for callers that want to show a diff either way.
type TextRoundTrip struct {
	Original  string
	Generated string
	Identical bool
}

// RunTextRoundTrip parses src, converts to IR and back, and pretty-prints
// the result.
func RunTextRoundTrip(src string) (*TextRoundTrip, *diag.Collection) {
	p := parser.New(src)
	prog := p.ParseProgram()
	diags := p.Diagnostics()
	if diags.HasErrors() {
		return nil, diags
	}

	graph := FromAST(prog)
	roundTripped, convDiags := ToAST(graph)
	diags.Merge(convDiags)

	generated := ProgramToText(roundTripped)
	return &TextRoundTrip{
		Original:  src,
		Generated: generated,
		Identical: src == generated,
	}, diags
}

// GraphRoundTrip result for IR → VisualGraph → IR'.
type GraphRoundTrip struct {
	Equivalent bool
	Diff       string
}

// RunGraphRoundTrip runs g through ToVisual/FromVisual and compares the
// result to g modulo node-id normalization: both graphs are renumbered by
// a canonical traversal order before comparing structurally with go-cmp, so
// two graphs that differ only in which arbitrary integers were assigned
// to equivalent nodes still compare equal. Node source spans are left out
// of the comparison, since the visual mirror does not carry them.
func RunGraphRoundTrip(g *IRGraph) *GraphRoundTrip {
	mirrored := FromVisual(ToVisual(g))

	normA := Normalize(g)
	normB := Normalize(mirrored)

	diffText := cmp.Diff(normA, normB, cmpopts.EquateEmpty(), cmpopts.IgnoreFields(IRGraph{}, "nextId"),
		cmpopts.IgnoreFields(IRNode{}, "Span"))
	return &GraphRoundTrip{
		Equivalent: diffText == "",
		Diff:       diffText,
	}
}

// Normalize renumbers a graph's node ids by a deterministic canonical
// order (scene name, then a stable pre-order flow walk, then any
// otherwise-unreached node sorted by original id) so two structurally
// equivalent graphs compare equal under go-cmp regardless of allocation
// order.
func Normalize(g *IRGraph) *IRGraph {
	order := canonicalOrder(g)
	remap := make(map[NodeId]NodeId, len(order))
	for i, id := range order {
		remap[id] = NodeId(i + 1)
	}

	out := NewIRGraph()
	out.Characters = append([]CharacterDecl(nil), g.Characters...)
	for name, id := range g.SceneEntry {
		out.SceneEntry[name] = remap[id]
	}
	for _, id := range order {
		n := cloneNode(g.Nodes[id])
		n.Id = remap[id]
		out.Nodes[n.Id] = n
	}
	out.nextId = NodeId(len(order))

	for _, c := range g.Connections {
		out.Connections = append(out.Connections, Connection{
			Source: PortId{Node: remap[c.Source.Node], Port: c.Source.Port, IsOutput: true},
			Target: PortId{Node: remap[c.Target.Node], Port: c.Target.Port},
			Label:  c.Label, HasLabel: c.HasLabel,
		})
	}
	sort.Slice(out.Connections, func(i, j int) bool {
		return connectionLess(out.Connections[i], out.Connections[j])
	})

	return out
}

func connectionLess(a, b Connection) bool {
	if a.Source.Node != b.Source.Node {
		return a.Source.Node < b.Source.Node
	}
	if a.Source.Port != b.Source.Port {
		return a.Source.Port < b.Source.Port
	}
	if a.Target.Node != b.Target.Node {
		return a.Target.Node < b.Target.Node
	}
	return a.Target.Port < b.Target.Port
}

// canonicalOrder lists every node id in a deterministic traversal order:
// scene-by-scene (scenes sorted by name), each scene walked depth-first in
// pre-order over its outgoing edges, then any node no scene walk reached (sorted by
// original id, for graphs built or edited outside FromAST).
func canonicalOrder(g *IRGraph) []NodeId {
	var sceneNames []string
	for name := range g.SceneEntry {
		sceneNames = append(sceneNames, name)
	}
	sort.Strings(sceneNames)

	outgoing := make(map[NodeId][]Connection)
	for _, c := range g.Connections {
		outgoing[c.Source.Node] = append(outgoing[c.Source.Node], c)
	}
	for id := range outgoing {
		sort.Slice(outgoing[id], func(i, j int) bool {
			return connectionLess(outgoing[id][i], outgoing[id][j])
		})
	}

	visited := make(map[NodeId]bool)
	var order []NodeId

	var visit func(id NodeId)
	visit = func(id NodeId) {
		if visited[id] {
			return
		}
		visited[id] = true
		order = append(order, id)
		for _, c := range outgoing[id] {
			visit(c.Target.Node)
		}
	}

	for _, name := range sceneNames {
		visit(g.SceneEntry[name])
	}

	var rest []NodeId
	for id := range g.Nodes {
		if !visited[id] {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, id := range rest {
		visit(id)
	}

	return order
}

// Validate runs both round trips and returns a combined human-readable
// report, used by the editor/CLI to surface a single pass/fail signal.
func Validate(src string) (string, bool) {
	textResult, diags := RunTextRoundTrip(src)
	if diags.HasErrors() {
		return fmt.Sprintf("parse errors: %v", diags.Errors()), false
	}

	prog := mustParse(src)
	graph := FromAST(prog)
	graphResult := RunGraphRoundTrip(graph)

	if textResult.Identical && graphResult.Equivalent {
		return "round trip OK", true
	}

	report := ""
	if !textResult.Identical {
		report += "text round trip diverged (semantically equivalent text may still differ byte-for-byte)\n"
	}
	if !graphResult.Equivalent {
		report += "graph round trip diverged:\n" + graphResult.Diff
	}
	return report, false
}

func mustParse(src string) *ast.Program {
	p := parser.New(src)
	return p.ParseProgram()
}
