package bytecode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// Disassemble renders a CompiledScript as a human-readable instruction
// listing, annotating scene entry points and resolving string-table/jump
// operands inline. Used by `cmd/nmsc --verbose` and by go-snaps golden
// tests over known inputs.
func Disassemble(script *CompiledScript) string {
	var sb strings.Builder

	sceneAtIndex := make(map[uint32]string, len(script.SceneEntryPoints))
	for name, idx := range script.SceneEntryPoints {
		sceneAtIndex[idx] = name
	}

	for i, instr := range script.Instructions {
		if name, ok := sceneAtIndex[uint32(i)]; ok {
			fmt.Fprintf(&sb, "; scene %s\n", name)
		}
		fmt.Fprintf(&sb, "%04d  %-16s %s\n", i, instr.Opcode, operandRepr(script, instr))
	}

	return sb.String()
}

func operandRepr(script *CompiledScript, instr Instruction) string {
	switch instr.Opcode {
	case PUSH_STRING, SHOW_BACKGROUND, SHOW_CHARACTER, HIDE_CHARACTER, SAY, TRANSITION,
		LOAD_VAR, STORE_VAR, LOAD_GLOBAL, STORE_GLOBAL, SET_FLAG, CHECK_FLAG,
		PLAY_SOUND, PLAY_MUSIC, CALL:
		if int(instr.Operand) < len(script.StringTable) {
			return fmt.Sprintf("%d ; %q", instr.Operand, script.StringTable[instr.Operand])
		}
		return fmt.Sprintf("%d ; <out of range>", instr.Operand)
	case PUSH_FLOAT, WAIT:
		return fmt.Sprintf("%d ; %g", instr.Operand, BitsToFloat32(instr.Operand))
	case PUSH_BOOL:
		return fmt.Sprintf("%d ; %t", instr.Operand, instr.Operand != 0)
	case JUMP, JUMP_IF, JUMP_IF_NOT, GOTO_SCENE:
		return fmt.Sprintf("-> %d", instr.Operand)
	default:
		return fmt.Sprintf("%d", instr.Operand)
	}
}

// SortedSceneNames returns the script's scene names in natural order
// (`scene2` before `scene10`) rather than lexical order.
func SortedSceneNames(script *CompiledScript) []string {
	names := append([]string(nil), script.SceneOrder...)
	sort.Sort(natural.StringSlice(names))
	return names
}
