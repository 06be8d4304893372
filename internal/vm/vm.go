package vm

import (
	"fmt"

	"github.com/nmscript/nms/internal/bytecode"
	"github.com/nmscript/nms/internal/diag"
)

// State is the VM's coarse execution state: Idle transitions to Running,
// which in turn settles into Halted, Paused, or Waiting.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateHalted
	StatePaused
	StateWaiting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StatePaused:
		return "paused"
	case StateWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// DefaultStackCapacity is the default stack depth cap; exceeding the
// configured cap halts the VM.
const DefaultStackCapacity = 1024

// Callback is a native handler invoked synchronously from step() when the
// VM executes a VN opcode. args is the fixed, opcode-specific argument
// vector popped from the stack.
type Callback func(args []Value)

// VM is a single-threaded, stack-based interpreter for a CompiledScript. It
// borrows its program immutably; it never mutates the script.
type VM struct {
	program *bytecode.CompiledScript

	stack        []Value
	stackCap     int
	variables    map[string]Value
	flags        map[string]bool
	ip           uint32
	state        State
	pausedState  State
	lastSuspend  bytecode.Opcode
	callbacks    map[bytecode.Opcode]Callback
	diags        *diag.Collection
}

// New returns a VM bound to program, Idle until Start is called.
func New(program *bytecode.CompiledScript) *VM {
	return &VM{
		program:   program,
		stackCap:  DefaultStackCapacity,
		variables: make(map[string]Value),
		flags:     make(map[string]bool),
		callbacks: make(map[bytecode.Opcode]Callback),
		diags:     diag.NewCollection(),
		state:     StateIdle,
	}
}

// SetStackCapacity overrides the default stack depth cap. Intended for
// tests exercising overflow behavior without 1024 pushes.
func (m *VM) SetStackCapacity(n int) { m.stackCap = n }

// RegisterCallback binds a native handler for op. Registering a second
// handler for the same opcode replaces the first.
func (m *VM) RegisterCallback(op bytecode.Opcode, cb Callback) {
	m.callbacks[op] = cb
}

// Diagnostics returns the runtime diagnostics accumulated so far (soft
// faults: stack underflow, division by zero, unknown-variable reads).
func (m *VM) Diagnostics() *diag.Collection { return m.diags }

// State reports the VM's current execution state.
func (m *VM) State() State { return m.state }

// IP returns the current instruction pointer.
func (m *VM) IP() uint32 { return m.ip }

// IsWaiting reports whether the VM is suspended on a VN opcode.
func (m *VM) IsWaiting() bool { return m.state == StateWaiting }

// IsHalted reports whether the VM has stopped executing.
func (m *VM) IsHalted() bool { return m.state == StateHalted }

// SetIP jumps execution to an arbitrary instruction index, for
// `goto_scene` entry and save/load restore.
func (m *VM) SetIP(ip uint32) {
	m.ip = ip
}

// Start begins execution at ip with a clean stack, entering Running.
func (m *VM) Start(ip uint32) {
	m.stack = m.stack[:0]
	m.ip = ip
	m.state = StateRunning
}

// Pause transitions Running → Paused, remembering the state to resume
// into. Resume reverses it.
func (m *VM) Pause() {
	if m.state == StatePaused {
		return
	}
	m.pausedState = m.state
	m.state = StatePaused
}

func (m *VM) Resume() {
	if m.state != StatePaused {
		return
	}
	m.state = m.pausedState
}

// Stop halts the VM immediately, transitioning to Halted and resetting its
// mutable state.
func (m *VM) Stop() {
	m.state = StateHalted
	m.stack = m.stack[:0]
	m.variables = make(map[string]Value)
	m.flags = make(map[string]bool)
	m.ip = 0
}

// SignalContinue resumes a VM waiting on SAY, WAIT, TRANSITION, or
// GOTO_SCENE. It is a no-op if the VM isn't waiting.
func (m *VM) SignalContinue() {
	if m.state != StateWaiting {
		return
	}
	m.state = StateRunning
}

// SignalChoice resumes a VM waiting on CHOICE, pushing the selected index
// onto the stack before clearing the waiting bit so the compiler's jump
// table (DUP/PUSH_INT/EQ per option) finds it.
func (m *VM) SignalChoice(i int) {
	if m.state != StateWaiting || m.lastSuspend != bytecode.CHOICE {
		return
	}
	m.push(IntValue(int32(i)))
	m.state = StateRunning
}

// GetVariable reads a declared variable, defaulting to null when
// LOAD_GLOBAL targets an absent name, consulting the flags map as a
// fallback for names only ever written through SET_FLAG.
func (m *VM) GetVariable(name string) Value {
	if v, ok := m.variables[name]; ok {
		return v
	}
	if b, ok := m.flags[name]; ok {
		return BoolValue(b)
	}
	return Null()
}

// SetVariable writes a general variable (STORE_GLOBAL).
func (m *VM) SetVariable(name string, v Value) {
	m.variables[name] = v
}

// GetFlag reads a declared flag, defaulting to false: CHECK_FLAG pushes
// the current flag value, or false if absent.
func (m *VM) GetFlag(name string) bool {
	return m.flags[name]
}

// SetFlag writes a flag, coercing the value to bool: SET_FLAG coerces
// top-of-stack to bool before storing.
func (m *VM) SetFlag(name string, v Value) {
	m.flags[name] = v.AsBool()
}

// Variables returns a snapshot of the variable map for save/load.
func (m *VM) Variables() map[string]Value {
	out := make(map[string]Value, len(m.variables))
	for k, v := range m.variables {
		out[k] = v
	}
	return out
}

// Flags returns a snapshot of the flag map for save/load.
func (m *VM) Flags() map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// RestoreVariables bulk-replaces the variable map (save/load restore).
func (m *VM) RestoreVariables(vars map[string]Value) {
	m.variables = make(map[string]Value, len(vars))
	for k, v := range vars {
		m.variables[k] = v
	}
}

// RestoreFlags bulk-replaces the flag map (save/load restore).
func (m *VM) RestoreFlags(flags map[string]bool) {
	m.flags = make(map[string]bool, len(flags))
	for k, v := range flags {
		m.flags[k] = v
	}
}

func (m *VM) push(v Value) {
	if len(m.stack) >= m.stackCap {
		m.diags.Addf(diag.CodeStackOverflow, diag.Warning, diag.Span{},
			fmt.Sprintf("stack overflow at ip=%d (cap=%d)", m.ip, m.stackCap))
		m.state = StateHalted
		return
	}
	m.stack = append(m.stack, v)
}

// pop removes and returns the top-of-stack value. On underflow it emits a
// diagnostic and yields null without halting.
func (m *VM) pop() Value {
	if len(m.stack) == 0 {
		m.diags.Addf(diag.CodeStackUnderflow, diag.Warning, diag.Span{},
			fmt.Sprintf("stack underflow at ip=%d", m.ip))
		return Null()
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *VM) string(index uint32) string {
	if int(index) < len(m.program.StringTable) {
		return m.program.StringTable[index]
	}
	return ""
}
