package ir_test

import (
	"testing"

	"github.com/nmscript/nms/internal/ast"
	"github.com/nmscript/nms/internal/ir"
	"github.com/stretchr/testify/require"
)

func TestProgramToTextReproducesStatementForms(t *testing.T) {
	src := `scene a {
	show background "bg.png"
	show character alice at left
	say "hello"
	alice "hi there"
	choice {
		"go left" -> goto b
		"stay" if flag == true -> {
			say "staying"
		}
	}
}
scene b {
	hide alice
	wait 2
	play music "theme.ogg" volume 0.5
	stop sound fade 1
	set flag seen = true
	transition fade 1.5
}
`
	prog := mustParseProgram(t, src)
	out := ir.ProgramToText(prog)

	reparsed := mustParseProgram(t, out)
	require.Len(t, reparsed.Scenes, 2)
	require.Len(t, reparsed.Scenes[0].Body, 5)
	require.Len(t, reparsed.Scenes[1].Body, 6)
}

func TestExprToTextRendersOperatorsAndLiterals(t *testing.T) {
	prog := mustParseProgram(t, `
		scene a {
			if (x == 1 and not y) {
				say "yes"
			}
		}
	`)
	ifStmt, ok := findScene(prog, "a").Body[0].(*ast.If)
	require.True(t, ok)

	text := ir.ExprToText(ifStmt.Condition)
	require.Contains(t, text, "x")
	require.Contains(t, text, "==")
	require.Contains(t, text, "not")
	require.Contains(t, text, "and")
}

func TestExprToTextQuotesStringLiteralsAndFormatsNumbers(t *testing.T) {
	prog := mustParseProgram(t, `
		scene a {
			set name = "ada"
			set count = 3
			set ratio = 1.5
			set active = true
		}
	`)
	body := findScene(prog, "a").Body
	require.Equal(t, `"ada"`, ir.ExprToText(body[0].(*ast.Set).Value))
	require.Equal(t, "3", ir.ExprToText(body[1].(*ast.Set).Value))
	require.Equal(t, "1.5", ir.ExprToText(body[2].(*ast.Set).Value))
	require.Equal(t, "true", ir.ExprToText(body[3].(*ast.Set).Value))
}

func TestProgramToTextRendersCharacterDecl(t *testing.T) {
	prog := mustParseProgram(t, `
		character alice(name="Alice", color="#ff0000")
		scene a { say "hi" }
	`)
	out := ir.ProgramToText(prog)
	reparsed := mustParseProgram(t, out)
	require.Len(t, reparsed.Characters, 1)
	require.Equal(t, "Alice", reparsed.Characters[0].DisplayName)
}
