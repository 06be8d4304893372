package vm

import (
	"testing"

	"github.com/nmscript/nms/internal/bytecode"
	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/parser"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *bytecode.CompiledScript {
	t.Helper()
	p := parser.New(src)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors(), "parse errors: %v", p.Diagnostics().All())
	script, diags := bytecode.New().Compile(prog)
	require.False(t, diags.HasErrors(), "compile errors: %v", diags.All())
	return script
}

// runToCompletion steps m until it leaves Running, bailing out after a
// generous step budget so a VM bug can never hang the test suite.
func runToCompletion(t *testing.T, m *VM) {
	t.Helper()
	for i := 0; i < 10_000 && m.State() == StateRunning; i++ {
		m.Step()
	}
	require.NotEqual(t, StateRunning, m.State(), "VM still running after step budget")
}

func TestStateTransitionsIdleToHalted(t *testing.T) {
	script := compile(t, `scene a { say "hi" }`)
	m := New(script)
	require.Equal(t, StateIdle, m.State())

	m.Start(script.SceneEntryPoints["a"])
	require.Equal(t, StateRunning, m.State())

	m.RegisterCallback(bytecode.SAY, func(args []Value) {})
	m.Step() // PUSH_NULL
	require.Equal(t, StateRunning, m.State())
	m.Step() // SAY suspends
	require.True(t, m.IsWaiting())

	m.SignalContinue()
	require.Equal(t, StateRunning, m.State())
	m.Step() // HALT
	require.True(t, m.IsHalted())
}

func TestPauseResumePreservesUnderlyingState(t *testing.T) {
	script := compile(t, `scene a { say "hi" }`)
	m := New(script)
	m.Start(script.SceneEntryPoints["a"])

	m.Pause()
	require.Equal(t, StatePaused, m.State())
	m.Step() // no-op while paused
	require.Equal(t, StatePaused, m.State())

	m.Resume()
	require.Equal(t, StateRunning, m.State())
}

func TestStopResetsVMState(t *testing.T) {
	script := compile(t, `scene a { set x = 1 }`)
	m := New(script)
	m.Start(0)
	m.SetVariable("x", IntValue(42))

	m.Stop()
	require.True(t, m.IsHalted())
	require.Equal(t, Null(), m.GetVariable("x"))
	require.EqualValues(t, 0, m.IP())
}

func TestStackOverflowHaltsAndEmitsDiagnostic(t *testing.T) {
	script := compile(t, `set x = a + (b + c)`)
	m := New(script)
	m.SetStackCapacity(2)
	m.Start(0)

	for i := 0; i < 5 && m.State() == StateRunning; i++ {
		m.Step()
	}

	require.True(t, m.IsHalted())
	require.True(t, m.Diagnostics().HasWarnings())
	found := false
	for _, d := range m.Diagnostics().Warnings() {
		if d.Code == diag.CodeStackOverflow {
			found = true
		}
	}
	require.True(t, found)
}

func TestStackUnderflowYieldsNullAndContinues(t *testing.T) {
	script := bytecode.NewCompiledScript()
	script.Instructions = []bytecode.Instruction{
		{Opcode: bytecode.POP},
		{Opcode: bytecode.PUSH_INT, Operand: 7},
		{Opcode: bytecode.HALT},
	}
	m := New(script)
	m.Start(0)

	m.Step() // POP on empty stack
	require.Equal(t, StateRunning, m.State())
	require.True(t, m.Diagnostics().HasWarnings())
	require.Equal(t, diag.CodeStackUnderflow, m.Diagnostics().Warnings()[0].Code)

	runToCompletion(t, m)
	require.True(t, m.IsHalted())
}

func TestDivisionByZeroSoftFaultsToZero(t *testing.T) {
	script := compile(t, `set total = 1 / 0`)
	m := New(script)
	m.Start(0)
	runToCompletion(t, m)

	require.True(t, m.IsHalted())
	require.Equal(t, IntValue(0), m.GetVariable("total"))
	found := false
	for _, d := range m.Diagnostics().Warnings() {
		if d.Code == diag.CodeDivisionByZero {
			found = true
		}
	}
	require.True(t, found)
}

func TestModuloByZeroSoftFaultsToZero(t *testing.T) {
	script := compile(t, `set total = 5 % 0`)
	m := New(script)
	m.Start(0)
	runToCompletion(t, m)

	require.Equal(t, IntValue(0), m.GetVariable("total"))
}

func TestSaySuspendsAndResumesWithSpeakerAndText(t *testing.T) {
	script := compile(t, `
		character Hero(name="Alex")
		scene a { Hero "hi there" }
	`)
	m := New(script)
	var captured []Value
	m.RegisterCallback(bytecode.SAY, func(args []Value) {
		captured = append([]Value{}, args...)
	})

	m.Start(script.SceneEntryPoints["a"])
	for m.State() == StateRunning {
		m.Step()
	}
	require.True(t, m.IsWaiting())
	require.Len(t, captured, 2)
	require.Equal(t, "hi there", captured[0].AsString())

	m.SignalContinue()
	runToCompletion(t, m)
	require.True(t, m.IsHalted())
}

func TestChoiceSuspendsAndRoutesSelectedOption(t *testing.T) {
	script := compile(t, `
		scene a {
			choice {
				"go left" -> goto left
				"go right" -> goto right
			}
		}
		scene left { say "went left" }
		scene right { say "went right" }
	`)
	var sayArgs []Value
	m := New(script)
	m.RegisterCallback(bytecode.SAY, func(args []Value) { sayArgs = args })
	// resume past the goto's own suspension, as the runtime coordinator does
	m.RegisterCallback(bytecode.GOTO_SCENE, func(args []Value) { m.SignalContinue() })

	var choiceTexts []Value
	m.RegisterCallback(bytecode.CHOICE, func(args []Value) {
		choiceTexts = append([]Value{}, args...)
	})

	m.Start(script.SceneEntryPoints["a"])
	for m.State() == StateRunning {
		m.Step()
	}
	require.True(t, m.IsWaiting())
	require.Equal(t, []Value{IntValue(2), StringValue("go left"), StringValue("go right")}, choiceTexts)

	m.SignalChoice(1) // pick "go right"
	for m.State() == StateRunning {
		m.Step()
	}
	require.True(t, m.IsWaiting()) // suspended again on the say in scene "right"
	require.Equal(t, "went right", sayArgs[0].AsString())
}

func TestWaitSuspendsWithDurationAndResumes(t *testing.T) {
	script := compile(t, `scene a { wait 1.5 }`)
	var duration float32
	m := New(script)
	m.RegisterCallback(bytecode.WAIT, func(args []Value) {
		duration = args[0].Float
	})

	m.Start(script.SceneEntryPoints["a"])
	for m.State() == StateRunning {
		m.Step()
	}
	require.True(t, m.IsWaiting())
	require.InDelta(t, 1.5, float64(duration), 0.0001)

	m.SignalContinue()
	runToCompletion(t, m)
	require.True(t, m.IsHalted())
}

func TestTransitionSuspendsWithTypeAndDuration(t *testing.T) {
	script := compile(t, `scene a { transition fade 0.5 }`)
	var args []Value
	m := New(script)
	m.RegisterCallback(bytecode.TRANSITION, func(a []Value) { args = a })

	m.Start(script.SceneEntryPoints["a"])
	for m.State() == StateRunning {
		m.Step()
	}
	require.True(t, m.IsWaiting())
	require.Equal(t, "fade", args[0].AsString())
	require.InDelta(t, 0.5, float64(args[1].Float), 0.0001)

	m.SignalContinue()
	runToCompletion(t, m)
	require.True(t, m.IsHalted())
}

func TestGotoSceneJumpsThenSuspends(t *testing.T) {
	script := compile(t, `
		scene a { goto b }
		scene b { say "there" }
	`)
	var target int32
	m := New(script)
	m.RegisterCallback(bytecode.GOTO_SCENE, func(args []Value) { target = args[0].Int })
	m.RegisterCallback(bytecode.SAY, func(args []Value) {})

	m.Start(script.SceneEntryPoints["a"])
	for m.State() == StateRunning {
		m.Step()
	}
	require.True(t, m.IsWaiting())
	require.EqualValues(t, script.SceneEntryPoints["b"], target)
	require.Equal(t, script.SceneEntryPoints["b"], m.IP())

	m.SignalContinue()
	for m.State() == StateRunning {
		m.Step()
	}
	require.True(t, m.IsWaiting()) // now suspended on the say in scene b
}

func TestSetFlagThenReadThroughLoadGlobalFallback(t *testing.T) {
	script := compile(t, `
		scene a {
			set flag seen_intro = true
			set result = seen_intro
		}
	`)
	m := New(script)
	m.Start(script.SceneEntryPoints["a"])
	runToCompletion(t, m)

	require.True(t, m.GetFlag("seen_intro"))
	require.Equal(t, BoolValue(true), m.GetVariable("result"))
}

func TestCallReclaimsPushedArgumentsAndYieldsNull(t *testing.T) {
	script := compile(t, `set result = greet("a", "b")`)
	m := New(script)
	m.Start(0)
	runToCompletion(t, m)

	require.True(t, m.IsHalted())
	require.Equal(t, Null(), m.GetVariable("result"))
	require.Empty(t, m.Diagnostics().Warnings(), "args should be fully reclaimed, no underflow")
}

func TestVariablesAndFlagsSnapshotRoundTrip(t *testing.T) {
	script := compile(t, `scene a { set x = 1 }`)
	m := New(script)
	m.Start(0)
	m.SetVariable("x", IntValue(9))
	m.SetFlag("done", BoolValue(true))

	vars := m.Variables()
	flags := m.Flags()

	restored := New(script)
	restored.RestoreVariables(vars)
	restored.RestoreFlags(flags)

	require.Equal(t, IntValue(9), restored.GetVariable("x"))
	require.True(t, restored.GetFlag("done"))

	vars["x"] = IntValue(100)
	require.Equal(t, IntValue(9), restored.GetVariable("x"), "snapshot must be a copy")
}

func TestConstantFoldedArithmeticExecutesToExpectedValue(t *testing.T) {
	script := compile(t, `set total = 2 + 3 * 4`)
	m := New(script)
	m.Start(0)
	runToCompletion(t, m)

	require.Equal(t, IntValue(14), m.GetVariable("total"))
}

func TestStringConcatenationWidensNonStringOperand(t *testing.T) {
	script := compile(t, `set label = "count: " + 3`)
	m := New(script)
	m.Start(0)
	runToCompletion(t, m)

	require.Equal(t, StringValue("count: 3"), m.GetVariable("label"))
}
