// Package ir implements the round-trip intermediate representation that
// bridges textual .nms source and a visual node graph for editor tooling:
// a node/port/edge graph converted to and from the AST, a mirror
// conversion to an editor-facing VisualGraph, a text pretty-printer, and a
// diff type usable for both undo/redo and conflict-detecting merges. None of
// this is consumed by the VM; it exists purely for editor round-tripping,
// mirroring CWBudde-go-dws's own separation between its AST (compiler
// input) and its pretty-printer (internal/ast's String methods),
// generalized here into a full bidirectional graph rather than a one-way
// dump.
package ir

import "github.com/nmscript/nms/internal/diag"

// NodeId is an opaque identifier, unique within a single IRGraph.
type NodeId uint64

// PortId names one connection point of a node: a port name plus a
// direction bit, since a node may have a same-named input and output
// (e.g. a Sequence node's "in" and "out").
type PortId struct {
	Node     NodeId
	Port     string
	IsOutput bool
}

// NodeType is the fixed enumeration of IR node kinds.
type NodeType int

const (
	SceneStart NodeType = iota
	SceneEnd
	Sequence
	Branch
	Switch
	Loop
	Goto
	Label
	ShowCharacter
	HideCharacter
	ShowBackground
	Dialogue
	Choice
	ChoiceOption
	PlayMusic
	StopMusic
	PlaySound
	Transition
	Wait
	SetVariable
	GetVariable
	ExpressionNode
	FunctionCall
	Comment
	Custom
)

func (t NodeType) String() string {
	switch t {
	case SceneStart:
		return "SceneStart"
	case SceneEnd:
		return "SceneEnd"
	case Sequence:
		return "Sequence"
	case Branch:
		return "Branch"
	case Switch:
		return "Switch"
	case Loop:
		return "Loop"
	case Goto:
		return "Goto"
	case Label:
		return "Label"
	case ShowCharacter:
		return "ShowCharacter"
	case HideCharacter:
		return "HideCharacter"
	case ShowBackground:
		return "ShowBackground"
	case Dialogue:
		return "Dialogue"
	case Choice:
		return "Choice"
	case ChoiceOption:
		return "ChoiceOption"
	case PlayMusic:
		return "PlayMusic"
	case StopMusic:
		return "StopMusic"
	case PlaySound:
		return "PlaySound"
	case Transition:
		return "Transition"
	case Wait:
		return "Wait"
	case SetVariable:
		return "SetVariable"
	case GetVariable:
		return "GetVariable"
	case ExpressionNode:
		return "Expression"
	case FunctionCall:
		return "FunctionCall"
	case Comment:
		return "Comment"
	case Custom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// PropKind tags which field of a Prop is meaningful: a closed tagged
// union instead of an untyped map, so every IR node property has exactly
// one well-typed representation.
type PropKind int

const (
	PropNull PropKind = iota
	PropBool
	PropInt
	PropFloat
	PropString
	PropStringList
)

// Prop is one property value attached to an IRNode.
type Prop struct {
	Kind       PropKind
	Bool       bool
	Int        int64
	Float      float64
	String     string
	StringList []string
}

func NullProp() Prop                   { return Prop{Kind: PropNull} }
func BoolProp(v bool) Prop             { return Prop{Kind: PropBool, Bool: v} }
func IntProp(v int64) Prop             { return Prop{Kind: PropInt, Int: v} }
func FloatProp(v float64) Prop         { return Prop{Kind: PropFloat, Float: v} }
func StringProp(v string) Prop         { return Prop{Kind: PropString, String: v} }
func StringListProp(v []string) Prop   { return Prop{Kind: PropStringList, StringList: v} }

// Position is a node's visual layout coordinate in editor space.
type Position struct {
	X, Y float64
}

// IRNode is one node of the graph: its type, its properties, the source
// span it was converted from (if any), and its visual position.
type IRNode struct {
	Id         NodeId
	Type       NodeType
	Properties map[string]Prop
	Span       diag.Span
	Pos        Position
}

// Prop looks up a property by name, returning PropNull if absent.
func (n *IRNode) Prop(name string) Prop {
	if n.Properties == nil {
		return NullProp()
	}
	if p, ok := n.Properties[name]; ok {
		return p
	}
	return NullProp()
}

func (n *IRNode) SetProp(name string, p Prop) {
	if n.Properties == nil {
		n.Properties = make(map[string]Prop)
	}
	n.Properties[name] = p
}

// Connection is a directed edge between two ports, with an optional label
// (used for Branch/Choice edges: "true"/"false", option text).
type Connection struct {
	Source PortId
	Target PortId
	Label  string
	HasLabel bool
}

// CharacterDecl mirrors ast.CharacterDecl's fields for the graph's
// character table, which isn't itself a node: character declarations live
// in a sidecar map, not as flow nodes.
type CharacterDecl struct {
	ID, DisplayName, Color, DefaultSprite string
	HasDefaultSprite                      bool
}

// IRGraph owns its nodes; connections and the scene-entry map reference
// nodes by id.
type IRGraph struct {
	Nodes       map[NodeId]*IRNode
	Connections []Connection
	// SceneEntry maps a scene name to its SceneStart node id.
	SceneEntry map[string]NodeId
	Characters []CharacterDecl
	nextId     NodeId
}

// NewIRGraph returns an empty graph ready for node allocation.
func NewIRGraph() *IRGraph {
	return &IRGraph{
		Nodes:      make(map[NodeId]*IRNode),
		SceneEntry: make(map[string]NodeId),
	}
}

// NewNode allocates and inserts a fresh node of the given type.
func (g *IRGraph) NewNode(t NodeType) *IRNode {
	g.nextId++
	n := &IRNode{Id: g.nextId, Type: t, Properties: make(map[string]Prop)}
	g.Nodes[n.Id] = n
	return n
}

// Connect appends an edge between two ports.
func (g *IRGraph) Connect(source, target PortId) {
	g.Connections = append(g.Connections, Connection{Source: source, Target: target})
}

// ConnectLabeled appends a labeled edge (branch arms, choice options).
func (g *IRGraph) ConnectLabeled(source, target PortId, label string) {
	g.Connections = append(g.Connections, Connection{Source: source, Target: target, Label: label, HasLabel: true})
}

// VisualGraph is the editor-facing mirror of an IRGraph: node geometry,
// edge selection state, and properties flattened to a flat
// string-to-string map.
type VisualGraph struct {
	Nodes       map[NodeId]*VisualNode
	Edges       []VisualEdge
	SceneEntry  map[string]NodeId
	Characters  []CharacterDecl
}

// VisualNode is one node as the editor sees it: type name, position, and
// string-flattened properties (canonical formatting, reversible via the
// node type's known property kinds).
type VisualNode struct {
	Id         NodeId
	Type       string
	Pos        Position
	Properties map[string]string
}

// VisualEdge is one edge as the editor sees it, plus a Selected bit the IR
// has no use for but the editor persists across sessions.
type VisualEdge struct {
	SourceNode NodeId
	SourcePort string
	TargetNode NodeId
	TargetPort string
	Label      string
	Selected   bool
}
