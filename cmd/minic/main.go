// Command minic compiles serialized C-subset syntax trees into register code.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"minic/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "minic",
	Short:         "Mini C middle and back end",
	Long:          `minic turns C-subset syntax trees into three-address code and accumulator register code`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		stopTracing, err := setupTracing(cmd)
		if err != nil {
			stopProfiling()
			return err
		}
		cleanup = func() {
			stopTracing()
			stopProfiling()
		}
		return nil
	},
}

// cleanup runs after the command, whether or not it failed.
var cleanup = func() {}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to minic.toml (default: search upward from the working directory)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show per-stage timing information")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")

	err := rootCmd.ExecuteContext(context.Background())
	cleanup()
	if err != nil {
		renderError(os.Stderr, err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
