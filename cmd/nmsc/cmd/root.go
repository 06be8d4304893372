package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is set by release build flags; left as a dev placeholder
	// otherwise, the same convention CWBudde-go-dws's cmd/dwscript/cmd/root.go uses.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var (
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:     "nmsc [files...]",
	Short:   "Compile NMS visual-novel scripts to bytecode",
	Version: Version,
	Long: `nmsc compiles .nms source files to .nmc bytecode artifacts.

Given more than one file, it compiles all of them concurrently and
reports a combined exit status. Given zero files, it reads from stdin
and writes the compiled artifact to stdout.`,
	Args: cobra.ArbitraryArgs,
	RunE: runCompile,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("nmsc version %s (%s)\n", Version, GitCommit))

	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: <input> with its extension replaced by .nmc)")
	rootCmd.Flags().BoolVar(&showTokens, "tokens", false, "print the token stream instead of compiling")
	rootCmd.Flags().BoolVar(&showAST, "ast", false, "pretty-print the parsed AST instead of compiling")
	rootCmd.Flags().BoolVar(&showIR, "ir", false, "pretty-print the IR graph instead of compiling")
	rootCmd.Flags().BoolVar(&validateOnly, "validate-only", false, "parse and validate only; do not emit bytecode")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable ANSI-colored diagnostics")
}
