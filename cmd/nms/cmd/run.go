package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/runtime"
	"github.com/nmscript/nms/internal/runtimecfg"
	"github.com/nmscript/nms/internal/savefile"
	"github.com/nmscript/nms/pkg/nms"
	"github.com/spf13/cobra"
)

func runPlay(_ *cobra.Command, args []string) error {
	if len(patchSavePairs) > 0 {
		return patchSave()
	}

	src, name, err := loadSource(args)
	if err != nil {
		return err
	}

	cfg := runtimecfg.Default()
	if noTypewriter {
		cfg.TypewriterSpeed = 1e9
	} else if speedFlag > 0 {
		cfg.TypewriterSpeed = speedFlag
	}

	engine := nms.New(nms.WithRuntimeConfig(cfg))
	script, diags := engine.Compile(src)
	printRunDiags(name, diags)
	if diags.HasErrors() {
		return fmt.Errorf("compiling %s failed", name)
	}

	r := engine.NewRuntime(script)
	r.SetListener(func(e runtime.Event) { logEvent(e) })

	if savePath != "" {
		if rec, ok := loadSaveRecord(savePath); ok {
			r.Restore(rec)
		}
	}

	if r.State() == runtime.StateIdle {
		if sceneFlag != "" {
			r.GotoScene(sceneFlag)
		} else {
			r.Start()
		}
	}

	runLoop(r)

	if savePath != "" && r.State() != runtime.StateHalted {
		if err := writeSaveRecord(savePath, r.Save()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write save file: %v\n", err)
		}
	}

	return nil
}

func loadSource(args []string) (src, name string, err error) {
	if demo {
		return demoScript, "<demo>", nil
	}
	if len(args) == 0 {
		return "", "", fmt.Errorf("provide a file, or use --demo")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}

func runLoop(r *runtime.Runtime) {
	scanner := bufio.NewScanner(os.Stdin)
	for r.State() != runtime.StateHalted {
		for i := 0; i < 10_000 && r.State() == runtime.StateRunning; i++ {
			r.Update(0)
		}

		switch r.State() {
		case runtime.StateWaitingInput:
			fmt.Printf("%s: %s\n", r.Speaker(), r.Dialogue())
			fmt.Print("(press Enter) > ")
			if !scanner.Scan() {
				return
			}
			r.ContinueExecution()

		case runtime.StateWaitingChoice:
			for i, c := range r.Choices() {
				fmt.Printf("  %d) %s\n", i+1, c)
			}
			fmt.Print("choice > ")
			if !scanner.Scan() {
				return
			}
			n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
			if err != nil || n < 1 || n > len(r.Choices()) {
				fmt.Println("invalid choice")
				continue
			}
			r.SelectChoice(n - 1)

		case runtime.StateWaitingTimer, runtime.StateWaitingTransition:
			r.Update(1.0 / 60.0)

		case runtime.StateHalted:
			return
		}
	}
}

func logEvent(e runtime.Event) {
	if !verbose {
		return
	}
	fmt.Fprintf(os.Stderr, "[%s]\n", e.Kind)
}

func patchSave() error {
	if savePath == "" {
		return fmt.Errorf("--patch-save requires --save")
	}
	data, err := os.ReadFile(savePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", savePath, err)
	}
	for _, pair := range patchSavePairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("--patch-save %q: expected key=value", pair)
		}
		data, err = savefile.Patch(data, k, v)
		if err != nil {
			return fmt.Errorf("patch %s: %w", k, err)
		}
	}
	return os.WriteFile(savePath, data, 0644)
}

func loadSaveRecord(path string) (runtime.SaveRecord, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runtime.SaveRecord{}, false
	}
	rec, err := savefile.Decode(data)
	if err != nil {
		return runtime.SaveRecord{}, false
	}
	return rec, true
}

func writeSaveRecord(path string, rec runtime.SaveRecord) error {
	data, err := savefile.Encode(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printRunDiags(name string, diags *diag.Collection) {
	if diags == nil || diags.Empty() {
		return
	}
	fmt.Fprintf(os.Stderr, "-- %s --\n", name)
	fmt.Fprint(os.Stderr, diag.FormatAll(diags, !noColor))
}
