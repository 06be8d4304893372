package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kr/pretty"
	"github.com/maruel/natural"
	"github.com/nmscript/nms/internal/bytecode"
	"github.com/nmscript/nms/internal/diag"
	"github.com/nmscript/nms/internal/ir"
	"github.com/nmscript/nms/internal/lexer"
	"github.com/nmscript/nms/pkg/nms"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	outputFile   string
	showTokens   bool
	showAST      bool
	showIR       bool
	validateOnly bool
)

func runCompile(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return compileOne("<stdin>", readStdin)
	}

	if len(args) == 1 {
		path := args[0]
		return compileOne(path, func() (string, error) { return readFile(path) })
	}

	// Batch mode: compile every input concurrently, one goroutine per
	// file, reporting a combined failure if any fail.
	g, _ := errgroup.WithContext(context.Background())
	failed := make([]bool, len(args))
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			if err := compileOne(path, func() (string, error) { return readFile(path) }); err != nil {
				failed[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range failed {
		if f {
			return fmt.Errorf("compilation failed for one or more files")
		}
	}
	return nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func compileOne(name string, read func() (string, error)) error {
	src, err := read()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	engine := nms.New()

	if showTokens {
		return printTokens(src)
	}

	if showAST {
		prog, diags := engine.Parse(src)
		printDiags(name, diags)
		if diags.HasErrors() {
			return fmt.Errorf("parsing %s failed", name)
		}
		pretty.Println(prog)
		return nil
	}

	if showIR {
		prog, diags := engine.Parse(src)
		printDiags(name, diags)
		if diags.HasErrors() {
			return fmt.Errorf("parsing %s failed", name)
		}
		graph := ir.FromAST(prog)
		dumpIR(graph)
		return nil
	}

	if validateOnly {
		diags := engine.Validate(src)
		printDiags(name, diags)
		if diags.HasErrors() {
			return fmt.Errorf("validation of %s failed", name)
		}
		fmt.Printf("%s: ok\n", name)
		return nil
	}

	script, diags := engine.Compile(src)
	printDiags(name, diags)
	if diags.HasErrors() {
		return fmt.Errorf("compilation of %s failed", name)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "%s: %d instructions, %d scenes, %d characters\n",
			name, len(script.Instructions), len(script.SceneOrder), len(script.CharacterOrder))
		fmt.Fprint(os.Stderr, bytecode.Disassemble(script))
	}

	out := outputPath(name)
	if out == "" {
		data := bytecode.Serialize(script)
		_, err := os.Stdout.Write(data)
		return err
	}

	data := bytecode.Serialize(script)
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("%s -> %s\n", name, out)
	return nil
}

func printTokens(src string) error {
	toks, diags := lexer.Tokenize(src)
	for _, t := range toks {
		fmt.Printf("%-14s %q @%s\n", t.Kind, t.Lexeme, t.Span.Start)
	}
	printDiags("<tokens>", diags)
	if diags.HasErrors() {
		return fmt.Errorf("tokenizing failed")
	}
	return nil
}

func outputPath(name string) string {
	if outputFile != "" {
		return outputFile
	}
	if name == "<stdin>" {
		return "" // write to stdout
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + ".nmc"
}

func printDiags(name string, diags *diag.Collection) {
	if diags == nil || diags.Empty() {
		return
	}
	fmt.Fprintf(os.Stderr, "-- %s --\n", name)
	fmt.Fprint(os.Stderr, diag.FormatAll(diags, !noColor))
}

// dumpIR prints a scene index (scene names in natural order, so "scene2"
// sorts before "scene10") followed by every node, sorted by id, via
// kr/pretty.
func dumpIR(g *ir.IRGraph) {
	sceneNames := make([]string, 0, len(g.SceneEntry))
	for name := range g.SceneEntry {
		sceneNames = append(sceneNames, name)
	}
	sort.Slice(sceneNames, func(i, j int) bool { return natural.Less(sceneNames[i], sceneNames[j]) })

	fmt.Println("-- scenes --")
	for _, name := range sceneNames {
		fmt.Printf("%s -> node %d\n", name, g.SceneEntry[name])
	}

	ids := make([]uint64, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, uint64(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fmt.Println("-- nodes --")
	for _, id := range ids {
		pretty.Println(g.Nodes[ir.NodeId(id)])
	}
}
