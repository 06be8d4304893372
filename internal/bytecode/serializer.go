package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/nmscript/nms/internal/diag"
)

// Artifact format version: (MAJOR<<16)|(MINOR<<8)|PATCH.
const (
	artifactMagic        = "NMC1"
	artifactVersionMajor = 1
	artifactVersionMinor = 0
	artifactVersionPatch = 0
)

func artifactVersion() uint32 {
	return uint32(artifactVersionMajor)<<16 | uint32(artifactVersionMinor)<<8 | uint32(artifactVersionPatch)
}

// Serialize encodes a CompiledScript into the binary artifact layout: a
// 4-byte magic, a u32 version, then length-prefixed instruction, string,
// scene, and character sections, all little-endian. Scene and
// character sections are written in declaration order (SceneOrder /
// CharacterOrder) so that write(read(bytes)) reproduces bytes exactly,
// given an artifact that was itself produced by this encoder.
func Serialize(script *CompiledScript) []byte {
	var buf bytes.Buffer
	buf.WriteString(artifactMagic)
	writeU32(&buf, artifactVersion())

	writeU32(&buf, uint32(len(script.Instructions)))
	for _, instr := range script.Instructions {
		buf.WriteByte(byte(instr.Opcode))
		writeU32(&buf, instr.Operand)
	}

	writeU32(&buf, uint32(len(script.StringTable)))
	for _, s := range script.StringTable {
		writeString(&buf, s)
	}

	writeU32(&buf, uint32(len(script.SceneOrder)))
	for _, name := range script.SceneOrder {
		writeString(&buf, name)
		writeU32(&buf, script.SceneEntryPoints[name])
	}

	writeU32(&buf, uint32(len(script.CharacterOrder)))
	for _, id := range script.CharacterOrder {
		info := script.Characters[id]
		writeString(&buf, info.ID)
		writeString(&buf, info.DisplayName)
		writeString(&buf, info.Color)
	}

	return buf.Bytes()
}

// Deserialize decodes an artifact produced by Serialize back into a
// CompiledScript. It does not reconstruct VariableTypes: declared variable
// types are a compiler-internal aid and are not part of the wire format.
func Deserialize(data []byte) (*CompiledScript, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, 4)
	if _, err := r.Read(magic); err != nil || string(magic) != artifactMagic {
		return nil, fmt.Errorf("bytecode: bad magic %q", magic)
	}

	version, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("bytecode: reading version: %w", err)
	}
	if version != artifactVersion() {
		return nil, fmt.Errorf("bytecode: unsupported artifact version %#x", version)
	}

	script := NewCompiledScript()

	instrCount, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("bytecode: reading instruction count: %w", err)
	}
	script.Instructions = make([]Instruction, instrCount)
	for i := range script.Instructions {
		op, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("bytecode: reading opcode %d: %w", i, err)
		}
		if op >= byte(opcodeCount) {
			return nil, fmt.Errorf("bytecode: %s: byte %d at instruction %d is not a known opcode",
				diag.CodeInvalidOpcode.Label(), op, i)
		}
		operand, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("bytecode: reading operand %d: %w", i, err)
		}
		script.Instructions[i] = Instruction{Opcode: Opcode(op), Operand: operand}
	}

	strCount, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("bytecode: reading string count: %w", err)
	}
	script.StringTable = make([]string, strCount)
	for i := range script.StringTable {
		s, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("bytecode: reading string %d: %w", i, err)
		}
		script.StringTable[i] = s
	}

	sceneCount, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("bytecode: reading scene count: %w", err)
	}
	script.SceneOrder = make([]string, sceneCount)
	for i := uint32(0); i < sceneCount; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("bytecode: reading scene name %d: %w", i, err)
		}
		entry, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("bytecode: reading scene entry %d: %w", i, err)
		}
		script.SceneOrder[i] = name
		script.SceneEntryPoints[name] = entry
	}

	charCount, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("bytecode: reading character count: %w", err)
	}
	script.CharacterOrder = make([]string, charCount)
	for i := uint32(0); i < charCount; i++ {
		id, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("bytecode: reading character id %d: %w", i, err)
		}
		name, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("bytecode: reading character name %d: %w", i, err)
		}
		color, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("bytecode: reading character color %d: %w", i, err)
		}
		script.CharacterOrder[i] = id
		script.Characters[id] = CharacterInfo{ID: id, DisplayName: name, Color: color}
	}

	return script, nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readU32(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := r.Read(tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(buf); err != nil {
			return "", err
		}
	}
	return string(buf), nil
}
