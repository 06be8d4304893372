// Command nmsc compiles NMS scripts to bytecode artifacts.
package main

import (
	"os"

	"github.com/nmscript/nms/cmd/nmsc/cmd"
)

func main() {
	os.Exit(Main())
}

// Main runs the command and returns its exit code. Split out from main so
// testscript can register it as a subprocess-like command (main_test.go),
// the shape rogpeppe/go-internal's testscript expects for CLI entry points.
func Main() int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}
