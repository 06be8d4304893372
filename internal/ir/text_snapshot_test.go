package ir_test

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/nmscript/nms/internal/ir"
)

// Golden generated-.nms-text dumps for representative scripts, using
// go-snaps the same way the rest of the suite does.
func TestProgramToTextSnapshots(t *testing.T) {
	cases := map[string]string{
		"branching": `
			character hero(name="Hero", color="#ff0000")
			scene a {
				set x = 1
				if (x == 1) {
					hero "one"
				} else {
					say "other"
				}
				choice {
					"go" -> goto b
					"stay" -> { say "staying" }
				}
			}
			scene b { say "arrived" }
		`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			prog := mustParseProgram(t, src)
			snaps.MatchSnapshot(t, ir.ProgramToText(prog))
		})
	}
}
