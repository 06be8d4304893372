package runtime

import "github.com/nmscript/nms/internal/vm"

// SaveRecord is the abstract save-file layout: enough to reconstruct a
// Runtime's resumable state without replaying the script.
// Resuming at a suspension point is sound because every suspending opcode
// (SAY, CHOICE, WAIT, TRANSITION) fully drains its own stack arguments
// before suspending, so the VM's operand stack is always empty at a save
// boundary and need not be captured.
type SaveRecord struct {
	Scene     string
	IP        uint32
	Variables map[string]vm.Value
	Flags     map[string]bool

	VisibleCharacters []string
	Background        string
	Speaker           string
	Dialogue          string
	Choices           []string
	SelectedChoice    int
	InDialogue        bool
	SkipMode          bool
}

// Save captures the runtime's current resumable state.
func (r *Runtime) Save() SaveRecord {
	return SaveRecord{
		Scene:             r.currentScene,
		IP:                r.vm.IP(),
		Variables:         r.vm.Variables(),
		Flags:             r.vm.Flags(),
		VisibleCharacters: append([]string(nil), r.visibleCharacters...),
		Background:        r.background,
		Speaker:           r.speaker,
		Dialogue:          r.dialogue,
		Choices:           append([]string(nil), r.choices...),
		SelectedChoice:    r.selectedChoice,
		InDialogue:        r.inDialogue,
		SkipMode:          r.skipMode,
	}
}

// Restore reconstructs a runtime from a SaveRecord: VM state is restored
// via set-ip plus a bulk variable/flag restore, then the cached display
// state is set from the record. The Runtime must already be Load()ed with
// the same script the record was captured from.
func (r *Runtime) Restore(rec SaveRecord) {
	r.vm.RestoreVariables(rec.Variables)
	r.vm.RestoreFlags(rec.Flags)
	r.vm.Start(rec.IP)

	r.currentScene = rec.Scene
	r.background = rec.Background
	r.visibleCharacters = append([]string(nil), rec.VisibleCharacters...)
	r.speaker = rec.Speaker
	r.dialogue = rec.Dialogue
	r.choices = append([]string(nil), rec.Choices...)
	r.selectedChoice = rec.SelectedChoice
	r.inDialogue = rec.InDialogue
	r.skipMode = rec.SkipMode
	r.typewriterRevealed = float64(len(rec.Dialogue))
	r.typewriterDone = true

	switch {
	case len(r.choices) > 0:
		r.state = StateWaitingChoice
	case r.inDialogue:
		r.state = StateWaitingInput
	default:
		r.state = StateRunning
	}
}
