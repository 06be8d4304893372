// Package vm implements the stack-based virtual machine that executes a
// compiled script: instruction dispatch, variable/flag storage,
// native callback suspension, and the runtime Value tagged union. Modeled
// on CWBudde-go-dws's bytecode VM (internal/bytecode/vm*.go) scaled down
// from a general closures-and-exceptions machine to a flat, single-frame
// narrative interpreter — no call stack, no upvalues.
package vm

import "strconv"

// Kind tags which field of a Value is meaningful.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is the VM's runtime value: a tagged union of null, a signed 32-bit
// int, a 32-bit float, a bool, or a string.
type Value struct {
	Kind   Kind
	Int    int32
	Float  float32
	Bool   bool
	String string
}

func Null() Value                 { return Value{Kind: KindNull} }
func IntValue(v int32) Value      { return Value{Kind: KindInt, Int: v} }
func FloatValue(v float32) Value  { return Value{Kind: KindFloat, Float: v} }
func BoolValue(v bool) Value      { return Value{Kind: KindBool, Bool: v} }
func StringValue(v string) Value  { return Value{Kind: KindString, String: v} }

// AsBool converts v to a boolean: null is false, numbers are nonzero,
// strings are non-empty.
func (v Value) AsBool() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindBool:
		return v.Bool
	case KindString:
		return v.String != ""
	default:
		return false
	}
}

// AsInt converts v to a signed int: bools are 0/1, floats truncate toward
// zero, strings and null are 0.
func (v Value) AsInt() int32 {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return int32(v.Float)
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AsFloat converts v to a float: bools are 0/1, ints widen, strings and
// null are 0.
func (v Value) AsFloat() float32 {
	switch v.Kind {
	case KindFloat:
		return v.Float
	case KindInt:
		return float32(v.Int)
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AsFloat64 is AsFloat widened to float64, used internally for arithmetic
// so intermediate results don't lose precision before narrowing back.
func (v Value) AsFloat64() float64 {
	return float64(v.AsFloat())
}

// AsString renders v's canonical textual form.
func (v Value) AsString() string {
	switch v.Kind {
	case KindString:
		return v.String
	case KindNull:
		return "null"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(v.Float), 'g', -1, 32)
	default:
		return ""
	}
}

// Equals implements the language's typed equality: null equals only null;
// if either side is a string, both sides compare by textual form; if
// either side is a bool, they're equal only when both are bool and match;
// otherwise both sides widen to float and compare numerically.
func (v Value) Equals(other Value) bool {
	if v.Kind == KindNull || other.Kind == KindNull {
		return v.Kind == KindNull && other.Kind == KindNull
	}
	if v.Kind == KindString || other.Kind == KindString {
		return v.AsString() == other.AsString()
	}
	if v.Kind == KindBool || other.Kind == KindBool {
		return v.Kind == KindBool && other.Kind == KindBool && v.Bool == other.Bool
	}
	return v.AsFloat() == other.AsFloat()
}
