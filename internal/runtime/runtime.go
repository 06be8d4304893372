package runtime

import (
	"fmt"

	"github.com/nmscript/nms/internal/bytecode"
	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/vm"
)

// TypewriterSpeedDefault is the default dialogue reveal rate in characters
// per second, overridable via internal/runtimecfg or the --speed CLI flag.
const TypewriterSpeedDefault = 30.0

// SkipMultiplierDefault is the default typewriter speed-up applied while
// skip mode is on, overridable via internal/runtimecfg.
const SkipMultiplierDefault = 4.0

// Runtime coordinates a vm.VM against a coarse, embedder-facing state
// machine. It owns the VM outright; callers never touch the VM directly
// once a Runtime is constructed.
type Runtime struct {
	script *bytecode.CompiledScript
	vm     *vm.VM
	diags  *diag.Collection

	entryToScene map[uint32]string

	state       State
	pausedState State

	currentScene      string
	background        string
	visibleCharacters []string
	speaker           string
	dialogue          string
	choices           []string
	selectedChoice    int
	inDialogue        bool

	skipMode bool

	waitTimer float32

	transitionType     string
	transitionDuration float32
	transitionElapsed  float32

	typewriterSpeed    float64
	skipMultiplier     float64
	typewriterRevealed float64
	typewriterDone     bool

	stackCap int

	listener Listener
}

// New returns a Runtime bound to script, in Idle state, with every VN
// opcode callback wired to its own VM.
func New(script *bytecode.CompiledScript) *Runtime {
	r := &Runtime{
		script:          script,
		diags:           diag.NewCollection(),
		state:           StateIdle,
		typewriterSpeed: TypewriterSpeedDefault,
		skipMultiplier:  SkipMultiplierDefault,
	}
	r.load(script)
	return r
}

// Load rebinds the coordinator to a new compiled script, discarding all
// transient state and returning to Idle.
func (r *Runtime) Load(script *bytecode.CompiledScript) {
	r.load(script)
}

func (r *Runtime) load(script *bytecode.CompiledScript) {
	r.script = script
	r.vm = vm.New(script)
	r.entryToScene = make(map[uint32]string, len(script.SceneEntryPoints))
	for name, entry := range script.SceneEntryPoints {
		r.entryToScene[entry] = name
	}
	r.registerCallbacks()
	if r.stackCap > 0 {
		r.vm.SetStackCapacity(r.stackCap)
	}

	r.state = StateIdle
	r.currentScene = ""
	r.background = ""
	r.visibleCharacters = nil
	r.speaker = ""
	r.dialogue = ""
	r.choices = nil
	r.selectedChoice = -1
	r.inDialogue = false
	r.skipMode = false
	r.waitTimer = 0
	r.transitionType = ""
	r.transitionDuration = 0
	r.transitionElapsed = 0
	r.typewriterRevealed = 0
	r.typewriterDone = true
}

// SetListener installs the single optional event listener. A nil listener
// silently disables event delivery.
func (r *Runtime) SetListener(l Listener) { r.listener = l }

// SetSkipMode toggles the global typewriter-speed multiplier and
// multi-step-per-tick execution.
func (r *Runtime) SetSkipMode(on bool) { r.skipMode = on }

// SetTypewriterSpeed overrides the dialogue reveal rate in characters per
// second.
func (r *Runtime) SetTypewriterSpeed(cps float64) { r.typewriterSpeed = cps }

// SetSkipMultiplier overrides the typewriter speed-up factor applied while
// skip mode is on.
func (r *Runtime) SetSkipMultiplier(m float64) { r.skipMultiplier = m }

// SetStackCapacity overrides the VM stack depth cap. Takes effect on the
// next Load (including the one backing this Runtime today, if called
// before Start).
func (r *Runtime) SetStackCapacity(n int) {
	r.stackCap = n
	if n > 0 && r.vm != nil {
		r.vm.SetStackCapacity(n)
	}
}

// State reports the coordinator's current coarse state.
func (r *Runtime) State() State { return r.state }

// Diagnostics returns runtime-level diagnostics (e.g. a GotoScene naming an
// undefined scene).
func (r *Runtime) Diagnostics() *diag.Collection { return r.diags }

// CurrentScene, Background, VisibleCharacters, Speaker, Dialogue, Choices,
// SelectedChoice mirror the runtime coordinator's cached display state,
// updated as opcode callbacks fire during execution.
func (r *Runtime) CurrentScene() string        { return r.currentScene }
func (r *Runtime) Background() string          { return r.background }
func (r *Runtime) Speaker() string             { return r.speaker }
func (r *Runtime) Dialogue() string            { return r.dialogue }
func (r *Runtime) SelectedChoice() int         { return r.selectedChoice }
func (r *Runtime) SkipMode() bool              { return r.skipMode }

func (r *Runtime) VisibleCharacters() []string { return append([]string(nil), r.visibleCharacters...) }
func (r *Runtime) Choices() []string           { return append([]string(nil), r.choices...) }

// DisplayedDialogue returns the dialogue text truncated to what the
// typewriter has revealed so far.
func (r *Runtime) DisplayedDialogue() string {
	n := int(r.typewriterRevealed)
	if n >= len(r.dialogue) {
		return r.dialogue
	}
	if n < 0 {
		return ""
	}
	return r.dialogue[:n]
}

// Start begins execution at the first declared scene, setting the VM's
// instruction pointer to that scene's entry point. It is a no-op if the
// script declares no scenes.
func (r *Runtime) Start() {
	if len(r.script.SceneOrder) == 0 {
		return
	}
	r.enterScene(r.script.SceneOrder[0])
}

// GotoScene jumps directly to a named scene, as an embedder-level command
// distinct from the VM's own GOTO_SCENE opcode.
func (r *Runtime) GotoScene(name string) {
	if _, ok := r.script.SceneEntryPoints[name]; !ok {
		r.diags.Addf(diag.CodeUndefinedScene, diag.Error, diag.Span{}, fmt.Sprintf("goto_scene: undefined scene %q", name))
		return
	}
	r.enterScene(name)
}

func (r *Runtime) enterScene(name string) {
	r.currentScene = name
	r.visibleCharacters = nil
	r.speaker = ""
	r.dialogue = ""
	r.choices = nil
	r.selectedChoice = -1
	r.inDialogue = false
	r.typewriterRevealed = 0
	r.typewriterDone = true

	entry := r.script.SceneEntryPoints[name]
	r.vm.Start(entry)
	r.state = StateRunning
	r.emit(Event{Kind: EventSceneChange, Scene: name})
}

// ContinueExecution resumes a runtime waiting on dialogue, moving it from
// WaitingInput back to Running.
func (r *Runtime) ContinueExecution() {
	if r.state != StateWaitingInput {
		return
	}
	r.vm.SignalContinue()
	r.state = StateRunning
}

// SelectChoice resumes a runtime waiting on a choice, moving it from
// WaitingChoice back to Running. An out-of-range index is ignored.
func (r *Runtime) SelectChoice(i int) {
	if r.state != StateWaitingChoice {
		return
	}
	if i < 0 || i >= len(r.choices) {
		return
	}
	r.selectedChoice = i
	r.vm.SignalChoice(i)
	r.state = StateRunning
	r.emit(Event{Kind: EventChoiceSelected, SelectedIndex: i})
}

// CompleteAnimation clears a WaitingAnimation suspension. Nothing in this
// spec's opcode set drives WaitingAnimation automatically; it exists for an
// embedder that wants to suspend narrative playback around a
// collaborator-owned animation and resume it explicitly.
func (r *Runtime) CompleteAnimation() {
	if r.state != StateWaitingAnimation {
		return
	}
	r.state = StateRunning
}

// Pause transitions Running (or any Waiting* state) to Paused, remembering
// the state to resume into.
func (r *Runtime) Pause() {
	if r.state == StatePaused || r.state == StateIdle || r.state == StateHalted {
		return
	}
	r.pausedState = r.state
	r.state = StatePaused
}

// Resume reverses Pause.
func (r *Runtime) Resume() {
	if r.state != StatePaused {
		return
	}
	r.state = r.pausedState
}

// Stop halts the runtime immediately, transitioning to Halted and resetting
// the VM.
func (r *Runtime) Stop() {
	r.vm.Stop()
	r.state = StateHalted
	r.visibleCharacters = nil
	r.choices = nil
	r.selectedChoice = -1
	r.waitTimer = 0
	r.transitionElapsed = 0
}

// Update advances the runtime by dt seconds: timers and transitions count
// down, and while Running the VM steps up to the per-tick cap.
func (r *Runtime) Update(dt float64) {
	switch r.state {
	case StateWaitingTimer:
		r.waitTimer -= float32(dt)
		if r.waitTimer <= 0 {
			r.vm.SignalContinue()
			r.state = StateRunning
		}
	case StateWaitingTransition:
		r.transitionElapsed += float32(dt)
		if r.transitionElapsed >= r.transitionDuration {
			r.emit(Event{Kind: EventTransitionComplete, TransitionType: r.transitionType})
			r.vm.SignalContinue()
			r.state = StateRunning
		}
	}

	if r.state == StateRunning {
		maxSteps := MaxStepsPerTick
		if r.skipMode {
			maxSteps = MaxSkipStepsPerTick
		}
		for i := 0; i < maxSteps && r.state == StateRunning && r.vm.State() == vm.StateRunning; i++ {
			r.vm.Step()
		}
		if r.vm.IsHalted() {
			r.state = StateHalted
		}
	}

	r.updateTypewriter(dt)
}

func (r *Runtime) updateTypewriter(dt float64) {
	if !r.inDialogue || r.typewriterDone {
		return
	}
	speed := r.typewriterSpeed
	if r.skipMode {
		speed *= r.skipMultiplier
	}
	r.typewriterRevealed += speed * dt
	if r.typewriterRevealed >= float64(len(r.dialogue)) {
		r.typewriterRevealed = float64(len(r.dialogue))
		r.typewriterDone = true
		r.emit(Event{Kind: EventDialogueComplete, Speaker: r.speaker, Text: r.dialogue})
	}
}

func (r *Runtime) emit(e Event) {
	if r.listener != nil {
		r.listener(e)
	}
}
