package ir

import (
	"strconv"
	"strings"
)

// ToVisual mirrors an IRGraph into an editor-facing VisualGraph: node
// properties flatten to strings with canonical formatting, positions and
// edges carry over verbatim.
func ToVisual(g *IRGraph) *VisualGraph {
	v := &VisualGraph{
		Nodes:      make(map[NodeId]*VisualNode, len(g.Nodes)),
		SceneEntry: make(map[string]NodeId, len(g.SceneEntry)),
		Characters: append([]CharacterDecl(nil), g.Characters...),
	}
	for name, id := range g.SceneEntry {
		v.SceneEntry[name] = id
	}
	for id, n := range g.Nodes {
		vn := &VisualNode{Id: id, Type: n.Type.String(), Pos: n.Pos, Properties: make(map[string]string, len(n.Properties))}
		for name, p := range n.Properties {
			vn.Properties[name] = propToString(p)
		}
		v.Nodes[id] = vn
	}
	for _, c := range g.Connections {
		v.Edges = append(v.Edges, VisualEdge{
			SourceNode: c.Source.Node, SourcePort: c.Source.Port,
			TargetNode: c.Target.Node, TargetPort: c.Target.Port,
			Label: c.Label,
		})
	}
	return v
}

// FromVisual rebuilds an IRGraph from its editor mirror. Property strings
// are parsed back into the typed Prop union using each node type's known
// property kinds (propKindsFor), since VisualGraph itself only ever carries
// flat strings.
func FromVisual(v *VisualGraph) *IRGraph {
	g := NewIRGraph()
	for name, id := range v.SceneEntry {
		g.SceneEntry[name] = id
	}
	g.Characters = append([]CharacterDecl(nil), v.Characters...)

	var maxId NodeId
	for id, vn := range v.Nodes {
		t := nodeTypeFromString(vn.Type)
		n := &IRNode{Id: id, Type: t, Pos: vn.Pos, Properties: make(map[string]Prop, len(vn.Properties))}
		kinds := propKindsFor(t)
		for name, s := range vn.Properties {
			n.Properties[name] = stringToProp(s, kinds[name])
		}
		g.Nodes[id] = n
		if id > maxId {
			maxId = id
		}
	}
	g.nextId = maxId

	for _, e := range v.Edges {
		c := Connection{
			Source: PortId{Node: e.SourceNode, Port: e.SourcePort, IsOutput: true},
			Target: PortId{Node: e.TargetNode, Port: e.TargetPort},
		}
		if e.Label != "" {
			c.Label, c.HasLabel = e.Label, true
		}
		g.Connections = append(g.Connections, c)
	}
	return g
}

func propToString(p Prop) string {
	switch p.Kind {
	case PropNull:
		return ""
	case PropBool:
		return strconv.FormatBool(p.Bool)
	case PropInt:
		return strconv.FormatInt(p.Int, 10)
	case PropFloat:
		return strconv.FormatFloat(p.Float, 'g', -1, 64)
	case PropString:
		return p.String
	case PropStringList:
		return strings.Join(p.StringList, "\x1f")
	default:
		return ""
	}
}

func stringToProp(s string, kind PropKind) Prop {
	switch kind {
	case PropBool:
		b, _ := strconv.ParseBool(s)
		return BoolProp(b)
	case PropInt:
		i, _ := strconv.ParseInt(s, 10, 64)
		return IntProp(i)
	case PropFloat:
		f, _ := strconv.ParseFloat(s, 64)
		return FloatProp(f)
	case PropStringList:
		if s == "" {
			return StringListProp(nil)
		}
		return StringListProp(strings.Split(s, "\x1f"))
	case PropNull:
		return NullProp()
	default:
		return StringProp(s)
	}
}

// propKindsFor documents, per node type, which Go field of Prop each of
// its property names round-trips through — a fixed, documented property
// schema per node type.
func propKindsFor(t NodeType) map[string]PropKind {
	switch t {
	case SceneStart:
		return map[string]PropKind{"name": PropString}
	case ShowBackground:
		return map[string]PropKind{"resource": PropString, "position": PropInt, "transitionType": PropString, "transitionDuration": PropString}
	case ShowCharacter:
		return map[string]PropKind{"identifier": PropString, "isSprite": PropBool, "resource": PropString, "position": PropInt, "transitionType": PropString, "transitionDuration": PropString}
	case HideCharacter:
		return map[string]PropKind{"identifier": PropString}
	case Dialogue:
		return map[string]PropKind{"text": PropString, "speaker": PropString}
	case Choice:
		return map[string]PropKind{}
	case ChoiceOption:
		return map[string]PropKind{"text": PropString, "index": PropInt, "condition": PropString}
	case Branch:
		return map[string]PropKind{"condition": PropString, "hasElse": PropBool}
	case Sequence:
		return map[string]PropKind{"join": PropBool}
	case Goto:
		return map[string]PropKind{"target": PropString}
	case Wait:
		return map[string]PropKind{"duration": PropString}
	case PlayMusic, PlaySound:
		return map[string]PropKind{"resource": PropString, "volume": PropString}
	case StopMusic:
		return map[string]PropKind{"kind": PropString, "fade": PropString}
	case SetVariable:
		return map[string]PropKind{"name": PropString, "isFlag": PropBool, "value": PropString}
	case Transition:
		return map[string]PropKind{"type": PropString, "duration": PropString}
	case FunctionCall:
		return map[string]PropKind{"callee": PropString, "args": PropStringList}
	case ExpressionNode:
		return map[string]PropKind{"expr": PropString}
	default:
		return map[string]PropKind{}
	}
}

func nodeTypeFromString(s string) NodeType {
	for t := SceneStart; t <= Custom; t++ {
		if t.String() == s {
			return t
		}
	}
	return Custom
}
