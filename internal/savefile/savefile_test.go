package savefile_test

import (
	"testing"

	"github.com/nmscript/nms/internal/runtime"
	"github.com/nmscript/nms/internal/savefile"
	"github.com/nmscript/nms/internal/vm"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rec := runtime.SaveRecord{
		Scene: "chapter2",
		IP:    42,
		Variables: map[string]vm.Value{
			"affection": vm.IntValue(7),
			"ratio":     vm.FloatValue(0.5),
			"label":     vm.StringValue("friend"),
		},
		Flags: map[string]bool{
			"met_hero":    true,
			"saw_ending1": false,
		},
		VisibleCharacters: []string{"hero", "villain"},
		Background:        "forest",
		Speaker:           "Hero",
		Dialogue:          "We meet again.",
		Choices:           []string{"fight", "flee"},
		SelectedChoice:    -1,
		InDialogue:        true,
		SkipMode:          false,
	}

	data, err := savefile.Encode(rec)
	require.NoError(t, err)

	decoded, err := savefile.Decode(data)
	require.NoError(t, err)

	require.Equal(t, rec.Scene, decoded.Scene)
	require.Equal(t, rec.IP, decoded.IP)
	require.Equal(t, rec.Background, decoded.Background)
	require.Equal(t, rec.Speaker, decoded.Speaker)
	require.Equal(t, rec.Dialogue, decoded.Dialogue)
	require.Equal(t, rec.SelectedChoice, decoded.SelectedChoice)
	require.Equal(t, rec.InDialogue, decoded.InDialogue)
	require.Equal(t, rec.SkipMode, decoded.SkipMode)
	require.Equal(t, rec.VisibleCharacters, decoded.VisibleCharacters)
	require.Equal(t, rec.Choices, decoded.Choices)

	require.Equal(t, vm.IntValue(7), decoded.Variables["affection"])
	require.Equal(t, vm.FloatValue(0.5), decoded.Variables["ratio"])
	require.Equal(t, vm.StringValue("friend"), decoded.Variables["label"])
	require.Equal(t, true, decoded.Flags["met_hero"])
	require.Equal(t, false, decoded.Flags["saw_ending1"])
}

func TestPatchEditsSingleFieldInPlace(t *testing.T) {
	rec := runtime.SaveRecord{Scene: "chapter1", Variables: map[string]vm.Value{}, Flags: map[string]bool{}}
	data, err := savefile.Encode(rec)
	require.NoError(t, err)

	patched, err := savefile.Patch(data, "scene", "chapter2")
	require.NoError(t, err)

	decoded, err := savefile.Decode(patched)
	require.NoError(t, err)
	require.Equal(t, "chapter2", decoded.Scene)
}

func TestDecodeEmptyBlobYieldsZeroValueRecord(t *testing.T) {
	decoded, err := savefile.Decode([]byte("{}"))
	require.NoError(t, err)
	require.Equal(t, "", decoded.Scene)
	require.Empty(t, decoded.Variables)
	require.Empty(t, decoded.Flags)
}
