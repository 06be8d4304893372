package nms_test

import (
	"testing"

	"github.com/nmscript/nms/internal/runtime"
	"github.com/nmscript/nms/internal/runtimecfg"
	"github.com/nmscript/nms/pkg/nms"
	"github.com/stretchr/testify/require"
)

func TestCompileAndRunHelloScene(t *testing.T) {
	e := nms.New()
	script, diags := e.Compile(`
		character hero(name="Hero")
		scene intro { hero "hello" }
	`)
	require.False(t, diags.HasErrors(), "diags: %v", diags.All())
	require.NotNil(t, script)

	r := e.NewRuntime(script)
	r.Start()
	for i := 0; i < 1000 && r.State() == runtime.StateRunning; i++ {
		r.Update(0)
	}
	require.Equal(t, runtime.StateWaitingInput, r.State())
	require.Equal(t, "hello", r.Dialogue())
}

func TestCompileReportsParseErrorsWithoutPanicking(t *testing.T) {
	e := nms.New()
	script, diags := e.Compile(`scene a { say `)
	require.True(t, diags.HasErrors())
	require.Nil(t, script)
}

func TestCompileReportsSemanticErrorsForUndefinedScene(t *testing.T) {
	e := nms.New()
	script, diags := e.Compile(`scene a { choice { "go" -> goto nowhere } }`)
	require.True(t, diags.HasErrors())
	require.Nil(t, script)
}

func TestWithSemanticCheckDisabledSkipsValidation(t *testing.T) {
	e := nms.New(nms.WithSemanticCheck(false))
	script, diags := e.Compile(`scene a { Hero "hi" }`)
	require.False(t, diags.HasErrors())
	require.NotNil(t, script)
}

func TestWithRuntimeConfigAppliesTypewriterSpeed(t *testing.T) {
	cfg := runtimecfg.Default()
	cfg.TypewriterSpeed = 5
	e := nms.New(nms.WithRuntimeConfig(cfg))

	script, diags := e.Compile(`scene a { say "hello" }`)
	require.False(t, diags.HasErrors())

	r := e.NewRuntime(script)
	r.Start()
	for i := 0; i < 1000 && r.State() == runtime.StateRunning; i++ {
		r.Update(0)
	}
	require.Equal(t, runtime.StateWaitingInput, r.State())

	r.Update(0.2) // 5 * 0.2 = 1 char
	require.Equal(t, "h", r.DisplayedDialogue())
}

func TestParseReturnsASTWithoutCompiling(t *testing.T) {
	e := nms.New()
	prog, diags := e.Parse(`scene a { say "hi" }`)
	require.False(t, diags.HasErrors())
	require.Len(t, prog.Scenes, 1)
	require.Equal(t, "a", prog.Scenes[0].Name)
}
