package semantic

import (
	"testing"

	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/parser"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string, opts ...Option) (*Result, *diag.Collection) {
	t.Helper()
	p := parser.New(src)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors(), "parse errors: %v", p.Diagnostics().All())
	return New(opts...).Analyze(prog)
}

func TestEmptyProgramIsValid(t *testing.T) {
	_, diags := analyze(t, "")
	require.True(t, diags.Empty())
}

func TestDuplicateCharacterDefinition(t *testing.T) {
	_, diags := analyze(t, `
		character Hero(name="Alex")
		character Hero(name="Alex Again")
	`)
	require.True(t, diags.HasErrors())
	require.Equal(t, diag.CodeDuplicateCharacterDefinition, diags.Errors()[0].Code)
	require.Len(t, diags.Errors()[0].Related, 1)
}

func TestDuplicateSceneDefinition(t *testing.T) {
	_, diags := analyze(t, `
		scene intro { say "a" }
		scene intro { say "b" }
	`)
	require.True(t, diags.HasErrors())
	require.Equal(t, diag.CodeDuplicateSceneDefinition, diags.Errors()[0].Code)
}

func TestUndefinedCharacterReference(t *testing.T) {
	_, diags := analyze(t, `scene s { Hero "hi" }`)
	require.True(t, diags.HasErrors())
	require.Equal(t, diag.CodeUndefinedCharacter, diags.Errors()[0].Code)
}

func TestUndefinedCharacterSuggestsNearestName(t *testing.T) {
	_, diags := analyze(t, `
		character Hero(name="Alex")
		scene s { Hreo "hi" }
	`)
	require.True(t, diags.HasErrors())
	require.NotEmpty(t, diags.Errors()[0].Suggestions)
}

func TestUndefinedGotoTarget(t *testing.T) {
	_, diags := analyze(t, `scene s { goto nowhere }`)
	require.True(t, diags.HasErrors())
	require.Equal(t, diag.CodeUndefinedScene, diags.Errors()[0].Code)
}

func TestUnreachableSceneWarning(t *testing.T) {
	result, diags := analyze(t, `
		scene a { goto a }
		scene b { say "unused" }
	`)
	require.False(t, diags.HasErrors())
	require.Equal(t, "a", result.EntryScene)

	found := false
	for _, w := range diags.Warnings() {
		if w.Code == diag.CodeUnreachableScene {
			found = true
		}
	}
	require.True(t, found)
}

func TestUnusedCharacterWarning(t *testing.T) {
	_, diags := analyze(t, `
		character Hero(name="Alex")
		scene s { say "no one speaks" }
	`)
	found := false
	for _, w := range diags.Warnings() {
		if w.Code == diag.CodeUnusedCharacter {
			found = true
		}
	}
	require.True(t, found)
}

func TestUnusedReportingCanBeDisabled(t *testing.T) {
	_, diags := analyze(t, `
		character Hero(name="Alex")
		scene s { say "no one speaks" }
	`, WithReportUnused(false))

	for _, w := range diags.Warnings() {
		require.NotEqual(t, diag.CodeUnusedCharacter, w.Code)
	}
}

func TestEmptyChoiceBlockIsAnError(t *testing.T) {
	_, diags := analyze(t, `scene s { choice {} }`)
	require.True(t, diags.HasErrors())
	require.Equal(t, diag.CodeEmptyChoiceBlock, diags.Errors()[0].Code)
}

func TestDuplicateChoiceTextWarns(t *testing.T) {
	_, diags := analyze(t, `
		scene start {
			choice {
				"Go" -> goto a
				"Go" -> goto b
			}
		}
		scene a { say "a" }
		scene b { say "b" }
	`)
	found := false
	for _, w := range diags.Warnings() {
		if w.Code == diag.CodeDuplicateChoiceText {
			found = true
		}
	}
	require.True(t, found)
}

func TestUnreachableCodeAfterGoto(t *testing.T) {
	_, diags := analyze(t, `
		scene a { goto a say "dead" }
	`)
	found := false
	for _, w := range diags.Warnings() {
		if w.Code == diag.CodeUnreachableCode {
			found = true
		}
	}
	require.True(t, found)
}

func TestInvalidVolumeRange(t *testing.T) {
	_, diags := analyze(t, `scene s { play sound "boom.wav" volume 2.0 }`)
	require.True(t, diags.HasErrors())
	require.Equal(t, diag.CodeInvalidVolume, diags.Errors()[0].Code)
}

func TestNegativeWaitDuration(t *testing.T) {
	_, diags := analyze(t, `scene s { wait -1 }`)
	require.True(t, diags.HasErrors())
	require.Equal(t, diag.CodeInvalidDuration, diags.Errors()[0].Code)
}

func TestUnrecognizedTransitionTypeWarns(t *testing.T) {
	_, diags := analyze(t, `scene s { transition swirl 1.0 }`)
	found := false
	for _, w := range diags.Warnings() {
		if w.Code == diag.CodeInvalidTransitionType {
			found = true
		}
	}
	require.True(t, found)
}

func TestEmptySceneWarns(t *testing.T) {
	_, diags := analyze(t, `scene s {}`)
	found := false
	for _, w := range diags.Warnings() {
		if w.Code == diag.CodeEmptyScene {
			found = true
		}
	}
	require.True(t, found)
}
