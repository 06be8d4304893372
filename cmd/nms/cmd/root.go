package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var (
	sceneFlag      string
	noTypewriter   bool
	speedFlag      float64
	verbose        bool
	noColor        bool
	demo           bool
	savePath       string
	patchSavePairs []string
)

var rootCmd = &cobra.Command{
	Use:     "nms [file]",
	Short:   "Play back a compiled or source NMS script",
	Version: Version,
	Long: `nms runs a .nms source file (compiling it on the fly) or a .nmc
bytecode artifact, driving internal/runtime from a terminal: Enter
advances dialogue, a number picks a choice.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("nms version %s (%s)\n", Version, GitCommit))

	rootCmd.Flags().StringVar(&sceneFlag, "scene", "", "start at this scene instead of the script's first declared scene")
	rootCmd.Flags().BoolVar(&noTypewriter, "no-typewriter", false, "reveal dialogue instantly instead of character-by-character")
	rootCmd.Flags().Float64Var(&speedFlag, "speed", 0, "typewriter speed in characters/second (0: use runtimecfg default)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose event log")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI-colored output")
	rootCmd.Flags().BoolVar(&demo, "demo", false, "run a built-in two-scene demo script instead of reading a file")
	rootCmd.Flags().StringVar(&savePath, "save", "", "path to a save file to load at start and write on exit (not written once the script has halted)")
	rootCmd.Flags().StringArrayVar(&patchSavePairs, "patch-save", nil, "key=value: patch an existing --save file in place and exit, without running the script")
}
