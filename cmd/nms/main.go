// Command nms plays back a compiled or source NMS script from a terminal,
// the reference embedder for internal/runtime and internal/savefile.
package main

import (
	"os"

	"github.com/nmscript/nms/cmd/nms/cmd"
)

func main() {
	os.Exit(Main())
}

// Main runs the command and returns its exit code. Split out from main so
// testscript can register it as a subprocess-like command (main_test.go).
func Main() int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}
