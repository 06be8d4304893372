package bytecode

import "math"

// Instruction is one bytecode unit: a single-byte opcode plus a u32
// operand whose interpretation is opcode-specific: a string-table index,
// an absolute instruction index (jump target), the raw bit pattern of an
// f32, or a small integer literal.
type Instruction struct {
	Opcode  Opcode
	Operand uint32
}

// Float32Bits and BitsToFloat32 perform a bytewise f32<->u32
// reinterpretation with no implementation-defined behavior;
// math.Float32bits and math.Float32frombits do exactly that, applied
// directly rather than through a hand-rolled union/unsafe-pointer cast.
func Float32Bits(v float32) uint32 {
	return math.Float32bits(v)
}

func BitsToFloat32(bits uint32) float32 {
	return math.Float32frombits(bits)
}

// CompiledScript is the immutable artifact the compiler produces: the
// instruction stream, the deduplicated string table, the scene entry-point
// map, the character table, and optional declared variable types.
type CompiledScript struct {
	Instructions     []Instruction
	StringTable      []string
	SceneEntryPoints map[string]uint32
	SceneOrder       []string
	Characters       map[string]CharacterInfo
	CharacterOrder   []string
	VariableTypes    map[string]string
}

// CharacterInfo is the compiled projection of an ast.CharacterDecl: just
// enough for the runtime to render a speaker without holding the AST.
type CharacterInfo struct {
	ID          string
	DisplayName string
	Color       string
}

// NewCompiledScript returns an empty, ready-to-populate script.
func NewCompiledScript() *CompiledScript {
	return &CompiledScript{
		SceneEntryPoints: make(map[string]uint32),
		Characters:       make(map[string]CharacterInfo),
		VariableTypes:    make(map[string]string),
	}
}
