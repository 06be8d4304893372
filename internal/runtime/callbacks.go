package runtime

import (
	"github.com/nmscript/nms/internal/bytecode"
	"github.com/nmscript/nms/internal/vm"
)

// registerCallbacks binds every VN opcode to a coordinator method, turning
// raw VM callback invocations into cached display state plus emitted events.
func (r *Runtime) registerCallbacks() {
	r.vm.RegisterCallback(bytecode.SHOW_BACKGROUND, r.onShowBackground)
	r.vm.RegisterCallback(bytecode.SHOW_CHARACTER, r.onShowCharacter)
	r.vm.RegisterCallback(bytecode.HIDE_CHARACTER, r.onHideCharacter)
	r.vm.RegisterCallback(bytecode.SAY, r.onSay)
	r.vm.RegisterCallback(bytecode.CHOICE, r.onChoice)
	r.vm.RegisterCallback(bytecode.PLAY_SOUND, r.onPlaySound)
	r.vm.RegisterCallback(bytecode.PLAY_MUSIC, r.onPlayMusic)
	r.vm.RegisterCallback(bytecode.STOP_MUSIC, r.onStopMusic)
	r.vm.RegisterCallback(bytecode.WAIT, r.onWait)
	r.vm.RegisterCallback(bytecode.TRANSITION, r.onTransition)
	r.vm.RegisterCallback(bytecode.GOTO_SCENE, r.onGotoScene)
	r.vm.RegisterCallback(bytecode.STORE_VAR, r.onVariableChanged)
	r.vm.RegisterCallback(bytecode.STORE_GLOBAL, r.onVariableChanged)
	r.vm.RegisterCallback(bytecode.SET_FLAG, r.onFlagChanged)
}

func (r *Runtime) onShowBackground(args []vm.Value) {
	r.background = args[0].AsString()
	r.emit(Event{Kind: EventBackgroundChanged, Background: r.background})
}

func (r *Runtime) onShowCharacter(args []vm.Value) {
	id := args[0].AsString()
	position := args[1].AsInt()
	if !containsString(r.visibleCharacters, id) {
		r.visibleCharacters = append(r.visibleCharacters, id)
	}
	r.emit(Event{Kind: EventCharacterShow, CharacterID: id, Position: position})
}

func (r *Runtime) onHideCharacter(args []vm.Value) {
	id := args[0].AsString()
	r.visibleCharacters = removeString(r.visibleCharacters, id)
	r.emit(Event{Kind: EventCharacterHide, CharacterID: id})
}

func (r *Runtime) onSay(args []vm.Value) {
	text, speaker := args[0].AsString(), args[1].AsString()
	r.dialogue = text
	r.speaker = speaker
	r.inDialogue = true
	r.typewriterRevealed = 0
	r.typewriterDone = r.typewriterSpeed <= 0
	r.state = StateWaitingInput
	r.emit(Event{Kind: EventDialogueStart, Speaker: speaker, Text: text})
}

func (r *Runtime) onChoice(args []vm.Value) {
	count := int(args[0].AsInt())
	options := make([]string, count)
	for i := 0; i < count; i++ {
		options[i] = args[i+1].AsString()
	}
	r.choices = options
	r.selectedChoice = -1
	r.state = StateWaitingChoice
	r.emit(Event{Kind: EventChoiceStart, Choices: append([]string(nil), options...)})
}

func (r *Runtime) onPlaySound(args []vm.Value) {
	r.emit(Event{Kind: EventSoundPlay, Resource: args[0].AsString()})
}

func (r *Runtime) onPlayMusic(args []vm.Value) {
	r.emit(Event{Kind: EventMusicPlay, Resource: args[0].AsString()})
}

func (r *Runtime) onStopMusic(args []vm.Value) {
	e := Event{Kind: EventMusicStop}
	if len(args) > 0 {
		e.Duration = args[0].AsFloat()
	}
	r.emit(e)
}

func (r *Runtime) onWait(args []vm.Value) {
	r.waitTimer = args[0].AsFloat()
	r.state = StateWaitingTimer
}

func (r *Runtime) onTransition(args []vm.Value) {
	r.transitionType = args[0].AsString()
	r.transitionDuration = args[1].AsFloat()
	r.transitionElapsed = 0
	r.state = StateWaitingTransition
	r.emit(Event{Kind: EventTransitionStart, TransitionType: r.transitionType, Duration: r.transitionDuration})
}

// onGotoScene handles the VM's own GOTO_SCENE opcode (triggered by a
// `goto` statement mid-script), distinct from the embedder-level GotoScene
// method: it re-enters cleanly and resumes immediately rather than
// surfacing a Waiting* state to the embedder: a mid-script goto lets the
// runtime re-enter cleanly rather than suspending execution.
func (r *Runtime) onGotoScene(args []vm.Value) {
	entry := uint32(args[0].AsInt())
	name, ok := r.entryToScene[entry]
	if !ok {
		// A goto to an entry point with no owning scene name can't happen
		// from compiler-emitted code; guard it defensively rather than
		// panic on a malformed artifact.
		r.state = StateHalted
		return
	}
	r.currentScene = name
	r.visibleCharacters = nil
	r.speaker = ""
	r.dialogue = ""
	r.choices = nil
	r.selectedChoice = -1
	r.inDialogue = false
	r.typewriterRevealed = 0
	r.typewriterDone = true

	r.emit(Event{Kind: EventSceneChange, Scene: name})
	r.vm.SignalContinue()
}

func (r *Runtime) onVariableChanged(args []vm.Value) {
	r.emit(Event{Kind: EventVariableChanged, Name: args[0].AsString(), Value: args[1]})
}

func (r *Runtime) onFlagChanged(args []vm.Value) {
	r.emit(Event{Kind: EventFlagChanged, Name: args[0].AsString(), Flag: args[1].AsBool()})
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(ss []string, s string) []string {
	out := ss[:0]
	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
