package vm

import (
	"fmt"

	"github.com/nmscript/nms/internal/bytecode"
	"github.com/nmscript/nms/internal/diag"
)

// Step executes exactly one instruction. The caller is responsible for not
// calling Step while the VM is Waiting, Paused, or Halted; Step is a no-op
// in those states.
func (m *VM) Step() {
	if m.state != StateRunning {
		return
	}
	if int(m.ip) >= len(m.program.Instructions) {
		m.state = StateHalted
		return
	}

	instr := m.program.Instructions[m.ip]
	m.ip++

	switch instr.Opcode {
	case bytecode.NOP:
		// no-op

	case bytecode.HALT:
		m.state = StateHalted

	case bytecode.JUMP:
		m.jumpTo(instr.Operand)
	case bytecode.JUMP_IF:
		if m.pop().AsBool() {
			m.jumpTo(instr.Operand)
		}
	case bytecode.JUMP_IF_NOT:
		if !m.pop().AsBool() {
			m.jumpTo(instr.Operand)
		}

	case bytecode.CALL:
		// No user-defined function facility: a CALL reclaims its pushed
		// arguments (count pushed by the compiler immediately before CALL)
		// and yields null.
		argCount := int(m.pop().AsInt())
		for i := 0; i < argCount; i++ {
			m.pop()
		}
		m.push(Null())
	case bytecode.RETURN:
		m.state = StateHalted

	case bytecode.PUSH_INT:
		m.push(IntValue(int32(instr.Operand)))
	case bytecode.PUSH_FLOAT:
		m.push(FloatValue(bytecode.BitsToFloat32(instr.Operand)))
	case bytecode.PUSH_STRING:
		m.push(StringValue(m.string(instr.Operand)))
	case bytecode.PUSH_BOOL:
		m.push(BoolValue(instr.Operand != 0))
	case bytecode.PUSH_NULL:
		m.push(Null())
	case bytecode.POP:
		m.pop()
	case bytecode.DUP:
		if len(m.stack) == 0 {
			m.push(Null())
		} else {
			m.push(m.stack[len(m.stack)-1])
		}

	case bytecode.LOAD_VAR, bytecode.LOAD_GLOBAL:
		name := m.string(instr.Operand)
		_, isVar := m.variables[name]
		_, isFlag := m.flags[name]
		if !isVar && !isFlag {
			m.diags.Addf(diag.CodeUnknownVariable, diag.Warning, diag.Span{},
				fmt.Sprintf("read of unknown variable %q at ip=%d", name, m.ip-1))
		}
		m.push(m.GetVariable(name))
	case bytecode.STORE_VAR, bytecode.STORE_GLOBAL:
		name := m.string(instr.Operand)
		val := m.pop()
		m.SetVariable(name, val)
		m.invoke(instr.Opcode, []Value{StringValue(name), val})

	case bytecode.ADD:
		m.binaryArith(addValues)
	case bytecode.SUB:
		m.binaryNumeric(func(l, r float64) float64 { return l - r })
	case bytecode.MUL:
		m.binaryNumeric(func(l, r float64) float64 { return l * r })
	case bytecode.DIV:
		m.divOrMod(false)
	case bytecode.MOD:
		m.divOrMod(true)
	case bytecode.NEG:
		v := m.pop()
		if v.Kind == KindFloat {
			m.push(FloatValue(-v.Float))
		} else {
			m.push(IntValue(-v.AsInt()))
		}

	case bytecode.EQ:
		r, l := m.pop(), m.pop()
		m.push(BoolValue(l.Equals(r)))
	case bytecode.NE:
		r, l := m.pop(), m.pop()
		m.push(BoolValue(!l.Equals(r)))
	case bytecode.LT:
		m.compare(func(l, r float64) bool { return l < r })
	case bytecode.LE:
		m.compare(func(l, r float64) bool { return l <= r })
	case bytecode.GT:
		m.compare(func(l, r float64) bool { return l > r })
	case bytecode.GE:
		m.compare(func(l, r float64) bool { return l >= r })

	case bytecode.AND:
		r, l := m.pop(), m.pop()
		m.push(BoolValue(l.AsBool() && r.AsBool()))
	case bytecode.OR:
		r, l := m.pop(), m.pop()
		m.push(BoolValue(l.AsBool() || r.AsBool()))
	case bytecode.NOT:
		m.push(BoolValue(!m.pop().AsBool()))

	case bytecode.SHOW_BACKGROUND:
		m.invoke(instr.Opcode, []Value{StringValue(m.string(instr.Operand))})
	case bytecode.SHOW_CHARACTER:
		position := m.pop()
		id := m.pop()
		m.invoke(instr.Opcode, []Value{id, position})
	case bytecode.HIDE_CHARACTER:
		m.invoke(instr.Opcode, []Value{StringValue(m.string(instr.Operand))})

	case bytecode.SAY:
		speaker := m.pop()
		// Arg order is [text, speaker] per the native callback contract,
		// not stack-pop order.
		m.invokeSuspending(instr.Opcode, []Value{StringValue(m.string(instr.Operand)), speaker})

	case bytecode.CHOICE:
		count := int(instr.Operand)
		texts := make([]Value, count+1)
		texts[0] = IntValue(int32(count))
		for i := count; i >= 1; i-- {
			texts[i] = m.pop()
		}
		m.pop() // the option count the compiler pushes beneath the texts
		m.lastSuspend = bytecode.CHOICE
		m.invokeSuspending(instr.Opcode, texts)

	case bytecode.SET_FLAG:
		name := m.string(instr.Operand)
		val := m.pop()
		m.SetFlag(name, val)
		m.invoke(instr.Opcode, []Value{StringValue(name), val})
	case bytecode.CHECK_FLAG:
		m.push(BoolValue(m.GetFlag(m.string(instr.Operand))))

	case bytecode.PLAY_SOUND, bytecode.PLAY_MUSIC:
		m.invoke(instr.Opcode, []Value{StringValue(m.string(instr.Operand))})
	case bytecode.STOP_MUSIC:
		// Fade arg is omitted entirely when absent, not passed as a
		// placeholder null.
		var args []Value
		if instr.Operand != 0 {
			args = []Value{m.pop()}
		}
		m.invoke(instr.Opcode, args)

	case bytecode.WAIT:
		duration := bytecode.BitsToFloat32(instr.Operand)
		m.lastSuspend = bytecode.WAIT
		m.invokeSuspending(instr.Opcode, []Value{FloatValue(duration)})

	case bytecode.TRANSITION:
		duration := m.pop()
		m.lastSuspend = bytecode.TRANSITION
		m.invokeSuspending(instr.Opcode, []Value{StringValue(m.string(instr.Operand)), duration})

	case bytecode.GOTO_SCENE:
		m.jumpTo(instr.Operand)
		m.lastSuspend = bytecode.GOTO_SCENE
		m.invokeSuspending(instr.Opcode, []Value{IntValue(int32(instr.Operand))})

	default:
		m.diags.Addf(diag.CodeUnknownOpcode, diag.Warning, diag.Span{},
			fmt.Sprintf("unknown opcode %d at ip=%d", instr.Opcode, m.ip-1))
	}
}

// Run executes steps until the VM leaves Running (suspends, halts, or is
// paused), up to maxSteps. It returns the number of steps actually taken.
func (m *VM) Run(maxSteps int) int {
	n := 0
	for n < maxSteps && m.state == StateRunning {
		m.Step()
		n++
	}
	return n
}

func (m *VM) jumpTo(target uint32) {
	// Step has already advanced ip past the jump instruction, so storing
	// the target as is makes it the next instruction executed.
	m.ip = target
}

func (m *VM) invoke(op bytecode.Opcode, args []Value) {
	if cb, ok := m.callbacks[op]; ok {
		cb(args)
	}
}

func (m *VM) invokeSuspending(op bytecode.Opcode, args []Value) {
	// Waiting is set before the callback runs so a handler that resumes
	// synchronously (GOTO_SCENE's runtime-level auto-continue) observes a
	// VM that is actually waiting and not a no-op SignalContinue.
	m.state = StateWaiting
	m.invoke(op, args)
}

func (m *VM) binaryArith(f func(l, r Value) Value) {
	r, l := m.pop(), m.pop()
	m.push(f(l, r))
}

// binaryNumeric implements the language's numeric widening rule: int op int
// stays in the representation the opcode implies (ADD/SUB/MUL always widen
// through float64 then narrow back to int when both operands were int).
func (m *VM) binaryNumeric(f func(l, r float64) float64) {
	r, l := m.pop(), m.pop()
	result := f(l.AsFloat64(), r.AsFloat64())
	if l.Kind == KindInt && r.Kind == KindInt {
		m.push(IntValue(int32(result)))
		return
	}
	m.push(FloatValue(float32(result)))
}

func (m *VM) compare(f func(l, r float64) bool) {
	r, l := m.pop(), m.pop()
	m.push(BoolValue(f(l.AsFloat64(), r.AsFloat64())))
}

// divOrMod implements / and %: integer-only when both operands are int,
// else widened to float. Division/modulo by zero yields 0 and continues
// with a warning rather than halting.
func (m *VM) divOrMod(modulo bool) {
	r, l := m.pop(), m.pop()
	bothInt := l.Kind == KindInt && r.Kind == KindInt

	if bothInt {
		ri := r.AsInt()
		if ri == 0 {
			m.diags.Addf(diag.CodeDivisionByZero, diag.Warning, diag.Span{}, "division by zero")
			m.push(IntValue(0))
			return
		}
		if modulo {
			m.push(IntValue(l.AsInt() % ri))
		} else {
			m.push(IntValue(l.AsInt() / ri))
		}
		return
	}

	rf := r.AsFloat64()
	if rf == 0 {
		m.diags.Addf(diag.CodeDivisionByZero, diag.Warning, diag.Span{}, "division by zero")
		m.push(FloatValue(0))
		return
	}
	if modulo {
		m.push(FloatValue(float32(float64(int64(l.AsFloat64()) % int64(rf)))))
	} else {
		m.push(FloatValue(float32(l.AsFloat64() / rf)))
	}
}

// addValues implements the language's overloaded '+': string-involving
// operands concatenate after stringifying; otherwise arithmetic addition
// with the usual int/float widening.
func addValues(l, r Value) Value {
	if l.Kind == KindString || r.Kind == KindString {
		return StringValue(l.AsString() + r.AsString())
	}
	if l.Kind == KindInt && r.Kind == KindInt {
		return IntValue(l.Int + r.Int)
	}
	return FloatValue(l.AsFloat() + r.AsFloat())
}
