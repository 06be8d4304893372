package runtime

import "github.com/nmscript/nms/internal/vm"

// EventKind discriminates the typed event union the coordinator emits to
// its listener on every VN-visible state change.
type EventKind int

const (
	EventSceneChange EventKind = iota
	EventBackgroundChanged
	EventCharacterShow
	EventCharacterHide
	EventDialogueStart
	EventDialogueComplete
	EventChoiceStart
	EventChoiceSelected
	EventTransitionStart
	EventTransitionComplete
	EventMusicPlay
	EventMusicStop
	EventSoundPlay
	EventVariableChanged
	EventFlagChanged
)

func (k EventKind) String() string {
	switch k {
	case EventSceneChange:
		return "scene_change"
	case EventBackgroundChanged:
		return "background_changed"
	case EventCharacterShow:
		return "character_show"
	case EventCharacterHide:
		return "character_hide"
	case EventDialogueStart:
		return "dialogue_start"
	case EventDialogueComplete:
		return "dialogue_complete"
	case EventChoiceStart:
		return "choice_start"
	case EventChoiceSelected:
		return "choice_selected"
	case EventTransitionStart:
		return "transition_start"
	case EventTransitionComplete:
		return "transition_complete"
	case EventMusicPlay:
		return "music_play"
	case EventMusicStop:
		return "music_stop"
	case EventSoundPlay:
		return "sound_play"
	case EventVariableChanged:
		return "variable_changed"
	case EventFlagChanged:
		return "flag_changed"
	default:
		return "unknown"
	}
}

// Event is the single struct shape carrying every event kind's payload; a
// given kind only populates the fields relevant to it (mirrors Value's
// tagged-union shape in internal/vm, kept flat rather than split into N
// event types since the listener is one switch over Kind either way).
type Event struct {
	Kind EventKind

	Scene       string
	Background  string
	CharacterID string
	Position    int32

	Speaker string
	Text    string

	Choices       []string
	SelectedIndex int

	TransitionType string
	Duration       float32

	Resource string

	Name  string
	Value vm.Value
	Flag  bool
}

// Listener receives every event the coordinator emits, synchronously and in
// order. Reentrancy into the Runtime from inside a Listener call is not
// permitted.
type Listener func(Event)
