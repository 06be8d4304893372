package parser

import (
	"testing"

	"github.com/nmscript/nms/internal/ast"
	"github.com/nmscript/nms/internal/diag"
	"github.com/stretchr/testify/require"
)

func TestParseCharacterDecl(t *testing.T) {
	p := New(`character Hero(name="Alex", color="#FFCC00", sprite="hero.png")`)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors(), "%v", p.Diagnostics().All())
	require.Len(t, prog.Characters, 1)

	c := prog.Characters[0]
	require.Equal(t, "Hero", c.ID)
	require.Equal(t, "Alex", c.DisplayName)
	require.Equal(t, "#FFCC00", c.Color)
	require.True(t, c.HasDefaultSpr)
	require.Equal(t, "hero.png", c.DefaultSprite)
}

func TestParseCharacterDeclDefaultsDisplayName(t *testing.T) {
	p := New(`character Hero()`)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors())
	require.Equal(t, "Hero", prog.Characters[0].DisplayName)
}

func TestParseSceneWithDialogueShorthand(t *testing.T) {
	p := New(`scene intro { Hero "Hello there." }`)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors(), "%v", p.Diagnostics().All())
	require.Len(t, prog.Scenes, 1)

	scene := prog.Scenes[0]
	require.Equal(t, "intro", scene.Name)
	require.Len(t, scene.Body, 1)

	say, ok := scene.Body[0].(*ast.Say)
	require.True(t, ok)
	require.True(t, say.HasSpeaker)
	require.Equal(t, "Hero", say.Speaker)
	require.Equal(t, "Hello there.", say.Text)
}

func TestParseShowForms(t *testing.T) {
	src := `scene s {
		show background "bg.png"
		show character Hero at left
		show sprite Hero "pose.png" at (10, 20) transition fade 0.5
	}`
	p := New(src)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors(), "%v", p.Diagnostics().All())

	body := prog.Scenes[0].Body
	require.Len(t, body, 3)

	bg := body[0].(*ast.Show)
	require.Equal(t, ast.ShowBackground, bg.Target)
	require.Equal(t, "bg.png", bg.Resource)

	char := body[1].(*ast.Show)
	require.Equal(t, ast.ShowCharacter, char.Target)
	require.Equal(t, "Hero", char.Identifier)
	require.Equal(t, ast.PosLeft, char.Position.Kind)

	sprite := body[2].(*ast.Show)
	require.Equal(t, ast.ShowSprite, sprite.Target)
	require.Equal(t, ast.PosCustom, sprite.Position.Kind)
	require.True(t, sprite.HasTransition)
	require.Equal(t, "fade", sprite.TransitionType)
}

func TestParseChoiceWithGotoAndBlock(t *testing.T) {
	src := `scene s {
		choice {
			"Go left" -> goto left_path
			"Go right" if flag_set -> { say "You went right." }
		}
	}`
	p := New(src)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors(), "%v", p.Diagnostics().All())

	choice := prog.Scenes[0].Body[0].(*ast.Choice)
	require.Len(t, choice.Options, 2)

	first := choice.Options[0]
	require.Equal(t, "Go left", first.Text)
	require.True(t, first.HasGoto)
	require.Equal(t, "left_path", first.GotoTarget)

	second := choice.Options[1]
	require.True(t, second.HasCondition)
	require.False(t, second.HasGoto)
	require.Len(t, second.Body, 1)
}

func TestParseIfElseIf(t *testing.T) {
	src := `scene s {
		if (x > 1) {
			say "big"
		} else if (x > 0) {
			say "small"
		} else {
			say "zero"
		}
	}`
	p := New(src)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors(), "%v", p.Diagnostics().All())

	ifStmt := prog.Scenes[0].Body[0].(*ast.If)
	require.True(t, ifStmt.HasElse)
	require.Len(t, ifStmt.Else.Statements, 1)

	nested, ok := ifStmt.Else.Statements[0].(*ast.If)
	require.True(t, ok)
	require.True(t, nested.HasElse)
}

func TestParseSetFlagAndVariable(t *testing.T) {
	src := `scene s {
		set flag met_hero = true
		set score = 1 + 2 * 3
	}`
	p := New(src)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors(), "%v", p.Diagnostics().All())

	flagSet := prog.Scenes[0].Body[0].(*ast.Set)
	require.True(t, flagSet.IsFlag)
	require.Equal(t, "met_hero", flagSet.Name)

	varSet := prog.Scenes[0].Body[1].(*ast.Set)
	require.False(t, varSet.IsFlag)
	bin := varSet.Value.(*ast.BinaryExpr)
	require.Equal(t, "+", bin.Operator)
}

func TestParseExpressionPrecedence(t *testing.T) {
	src := `scene s { set r = 1 + 2 * 3 == 7 and not false }`
	p := New(src)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors(), "%v", p.Diagnostics().All())

	set := prog.Scenes[0].Body[0].(*ast.Set)
	top, ok := set.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "and", top.Operator)

	eq, ok := top.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "==", eq.Operator)

	sum, ok := eq.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "+", sum.Operator)

	product, ok := sum.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "*", product.Operator)
}

func TestParseCallAndPropertyAccess(t *testing.T) {
	src := `scene s { set r = some_fn(1, 2).field }`
	p := New(src)
	prog := p.ParseProgram()
	require.False(t, p.Diagnostics().HasErrors(), "%v", p.Diagnostics().All())

	set := prog.Scenes[0].Body[0].(*ast.Set)
	prop, ok := set.Value.(*ast.PropertyExpr)
	require.True(t, ok)
	require.Equal(t, "field", prop.Name)

	call, ok := prop.Object.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
}

// TestParserRecoversAfterSyntaxError exercises the panic-mode recovery
// invariant: an isolated syntax error must not prevent later statements in
// the same scene from being parsed.
func TestParserRecoversAfterSyntaxError(t *testing.T) {
	src := `scene s {
		set = broken
		say "still parsed"
	}`
	p := New(src)
	prog := p.ParseProgram()
	require.True(t, p.Diagnostics().HasErrors())
	require.Len(t, prog.Scenes, 1)

	found := false
	for _, stmt := range prog.Scenes[0].Body {
		if say, ok := stmt.(*ast.Say); ok && say.Text == "still parsed" {
			found = true
		}
	}
	require.True(t, found, "expected parser to recover and still parse the trailing statement: %+v", prog.Scenes[0].Body)
}

func TestExpectMissingIdentifierReportsDedicatedCode(t *testing.T) {
	p := New(`scene s { goto 123 }`)
	p.ParseProgram()
	require.True(t, p.Diagnostics().HasErrors())

	codes := diagCodes(p.Diagnostics().All())
	require.Contains(t, codes, diag.CodeExpectedIdentifier)
}

func TestExpectMissingParenReportsDedicatedCode(t *testing.T) {
	p := New(`scene s { if }`)
	p.ParseProgram()
	require.True(t, p.Diagnostics().HasErrors())

	codes := diagCodes(p.Diagnostics().All())
	require.Contains(t, codes, diag.CodeExpectedLeftParen)
}

func TestChoiceOptionMissingTextReportsInvalidChoiceEntry(t *testing.T) {
	p := New(`scene s { choice { 123 } }`)
	p.ParseProgram()
	require.True(t, p.Diagnostics().HasErrors())

	codes := diagCodes(p.Diagnostics().All())
	require.Contains(t, codes, diag.CodeInvalidChoiceEntry)
}

func diagCodes(diags []diag.Diagnostic) []diag.Code {
	codes := make([]diag.Code, len(diags))
	for i, d := range diags {
		codes[i] = d.Code
	}
	return codes
}

func TestParserSynchronizesAtTopLevelAfterMalformedScene(t *testing.T) {
	src := `scene broken {
		@@@
	}
	scene intro { say "hi" }`
	p := New(src)
	prog := p.ParseProgram()
	require.True(t, p.Diagnostics().HasErrors())

	found := false
	for _, scene := range prog.Scenes {
		if scene.Name == "intro" {
			found = true
		}
	}
	require.True(t, found, "expected the second scene to still be parsed: %+v", prog.Scenes)
}
