package bytecode

import (
	"testing"

	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/parser"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *CompiledScript {
	t.Helper()
	p := parser.New(src)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors(), "parse errors: %v", p.Diagnostics().All())
	script, diags := New().Compile(prog)
	require.False(t, diags.HasErrors(), "compile errors: %v", diags.All())
	return script
}

func opcodes(script *CompiledScript) []Opcode {
	ops := make([]Opcode, len(script.Instructions))
	for i, instr := range script.Instructions {
		ops[i] = instr.Opcode
	}
	return ops
}

// sceneOps isolates one scene's instructions: from its entry point up to
// and including the HALT the compiler always appends after a scene body.
// HALT is never emitted mid-body, so this boundary is unambiguous.
func sceneOps(script *CompiledScript, name string) []Instruction {
	entry := int(script.SceneEntryPoints[name])
	for i := entry; i < len(script.Instructions); i++ {
		if script.Instructions[i].Opcode == HALT {
			return script.Instructions[entry : i+1]
		}
	}
	return script.Instructions[entry:]
}

func sceneOpcodes(script *CompiledScript, name string) []Opcode {
	instrs := sceneOps(script, name)
	ops := make([]Opcode, len(instrs))
	for i, instr := range instrs {
		ops[i] = instr.Opcode
	}
	return ops
}

func TestCompileAlwaysEmitsGlobalPreambleHalt(t *testing.T) {
	script := compile(t, `scene a { say "hi" }`)
	require.Equal(t, HALT, script.Instructions[0].Opcode)
	require.EqualValues(t, 1, script.SceneEntryPoints["a"])
}

func TestCompileSayWithoutSpeaker(t *testing.T) {
	script := compile(t, `scene intro { say "hello" }`)
	ops := sceneOps(script, "intro")
	require.Equal(t, []Opcode{PUSH_NULL, SAY, HALT}, opcodesOf(ops))
	require.Equal(t, "hello", script.StringTable[ops[1].Operand])
}

func TestCompileSayWithSpeaker(t *testing.T) {
	script := compile(t, `
		character Hero(name="Alex")
		scene intro { Hero "hi there" }
	`)
	ops := sceneOps(script, "intro")
	require.Equal(t, []Opcode{PUSH_STRING, SAY, HALT}, opcodesOf(ops))
}

func TestCompileGotoResolvesForwardReference(t *testing.T) {
	script := compile(t, `
		scene a { goto b }
		scene b { say "there" }
	`)
	ops := sceneOps(script, "a")
	require.Equal(t, []Opcode{GOTO_SCENE, HALT}, opcodesOf(ops))
	require.Equal(t, script.SceneEntryPoints["b"], ops[0].Operand)
}

func TestCompileUnresolvedGotoReportsDiagnostic(t *testing.T) {
	p := parser.New(`scene a { goto nowhere }`)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors())
	_, diags := New().Compile(prog)
	require.True(t, diags.HasErrors())
	require.Equal(t, diag.CodeUnresolvedJumpTarget, diags.Errors()[0].Code)
}

func TestCompileIfElse(t *testing.T) {
	script := compile(t, `
		scene a {
			if (flag_set) {
				say "yes"
			} else {
				say "no"
			}
		}
	`)
	instrs := sceneOps(script, "a")
	entry := int(script.SceneEntryPoints["a"])
	require.Equal(t, []Opcode{LOAD_GLOBAL, JUMP_IF_NOT, PUSH_NULL, SAY, JUMP, PUSH_NULL, SAY, HALT}, opcodesOf(instrs))

	elseJump := instrs[1]
	require.EqualValues(t, entry+5, elseJump.Operand) // first instruction of else branch

	endJump := instrs[4]
	require.EqualValues(t, entry+7, endJump.Operand) // the trailing HALT
}

func TestCompileChoiceDispatchTable(t *testing.T) {
	script := compile(t, `
		scene a {
			choice {
				"go left" -> goto left
				"go right" -> goto right
			}
		}
		scene left { say "left" }
		scene right { say "right" }
	`)
	instrs := sceneOps(script, "a")
	require.Equal(t, []Opcode{
		PUSH_INT, PUSH_STRING, PUSH_STRING, CHOICE,
		DUP, PUSH_INT, EQ, JUMP_IF_NOT, POP, GOTO_SCENE, JUMP, // option 0
		DUP, PUSH_INT, EQ, JUMP_IF_NOT, POP, GOTO_SCENE, JUMP, // option 1
		POP,
		HALT,
	}, opcodesOf(instrs))

	require.EqualValues(t, 2, instrs[0].Operand) // option count
	require.EqualValues(t, 2, instrs[3].Operand) // CHOICE operand

	leftGoto := instrs[9]
	require.Equal(t, script.SceneEntryPoints["left"], leftGoto.Operand)
	rightGoto := instrs[16]
	require.Equal(t, script.SceneEntryPoints["right"], rightGoto.Operand)
}

func TestCompileChoiceOptionWithCondition(t *testing.T) {
	script := compile(t, `
		scene a {
			choice {
				"maybe" if has_key -> goto b
			}
		}
		scene b { say "opened" }
	`)
	instrs := sceneOps(script, "a")
	require.Equal(t, []Opcode{
		PUSH_INT, PUSH_STRING, CHOICE,
		DUP, PUSH_INT, EQ, JUMP_IF_NOT, POP,
		LOAD_GLOBAL, JUMP_IF_NOT,
		GOTO_SCENE,
		JUMP,
		POP,
		HALT,
	}, opcodesOf(instrs))
}

func TestCompileAndShortCircuits(t *testing.T) {
	script := compile(t, `set result = a and b`)
	ops := opcodes(script)
	require.Equal(t, []Opcode{
		LOAD_GLOBAL, DUP, JUMP_IF_NOT, POP, LOAD_GLOBAL, STORE_GLOBAL, HALT,
	}, ops)
}

func TestCompileOrShortCircuits(t *testing.T) {
	script := compile(t, `set result = a or b`)
	ops := opcodes(script)
	require.Equal(t, []Opcode{
		LOAD_GLOBAL, DUP, JUMP_IF, POP, LOAD_GLOBAL, STORE_GLOBAL, HALT,
	}, ops)
}

func TestConstantFoldingOfLiteralArithmetic(t *testing.T) {
	script := compile(t, `set total = 2 + 3 * 4`)
	ops := opcodes(script)
	require.Equal(t, []Opcode{PUSH_INT, STORE_GLOBAL, HALT}, ops)
	require.EqualValues(t, 14, int32(script.Instructions[0].Operand))
}

func TestConstantFoldingDoesNotTouchIdentifiers(t *testing.T) {
	script := compile(t, `set total = 2 + n`)
	ops := opcodes(script)
	require.Equal(t, []Opcode{PUSH_INT, LOAD_GLOBAL, ADD, STORE_GLOBAL, HALT}, ops)
}

func TestConstantFoldingLeavesDivisionByZeroUnfolded(t *testing.T) {
	script := compile(t, `set total = 1 / 0`)
	ops := opcodes(script)
	require.Equal(t, []Opcode{PUSH_INT, PUSH_INT, DIV, STORE_GLOBAL, HALT}, ops)
}

func TestCompileWaitEncodesFloatOperand(t *testing.T) {
	script := compile(t, `scene a { wait 1.5 }`)
	instrs := sceneOps(script, "a")
	require.Equal(t, []Opcode{WAIT, HALT}, opcodesOf(instrs))
	require.InDelta(t, 1.5, float64(BitsToFloat32(instrs[0].Operand)), 0.0001)
}

func TestCompileShowCharacterWithPosition(t *testing.T) {
	script := compile(t, `
		character Hero(name="Alex")
		scene a { show character Hero at left }
	`)
	instrs := sceneOps(script, "a")
	require.Equal(t, []Opcode{PUSH_STRING, PUSH_INT, SHOW_CHARACTER, HALT}, opcodesOf(instrs))
	require.EqualValues(t, 0, instrs[1].Operand) // Left
}

func TestCompileStopWithoutFadeEmitsNoPushAndZeroOperand(t *testing.T) {
	script := compile(t, `scene a { stop music }`)
	instrs := sceneOps(script, "a")
	require.Equal(t, []Opcode{STOP_MUSIC, HALT}, opcodesOf(instrs))
	require.EqualValues(t, 0, instrs[0].Operand)
}

func TestCompileStopWithFadePushesDurationAndSetsOperand(t *testing.T) {
	script := compile(t, `scene a { stop music fade 0.25 }`)
	instrs := sceneOps(script, "a")
	require.Equal(t, []Opcode{PUSH_FLOAT, STOP_MUSIC, HALT}, opcodesOf(instrs))
	require.EqualValues(t, 1, instrs[1].Operand)
	require.InDelta(t, 0.25, float64(BitsToFloat32(instrs[0].Operand)), 0.0001)
}

func TestCompileCallPushesExplicitArgCount(t *testing.T) {
	script := compile(t, `set result = greet("a", "b")`)
	ops := opcodes(script)
	require.Equal(t, []Opcode{
		PUSH_STRING, PUSH_STRING, PUSH_INT, CALL, STORE_GLOBAL, HALT,
	}, ops)
	require.EqualValues(t, 2, script.Instructions[2].Operand)
}

func opcodesOf(instrs []Instruction) []Opcode {
	ops := make([]Opcode, len(instrs))
	for i, instr := range instrs {
		ops[i] = instr.Opcode
	}
	return ops
}
