package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"minic/internal/artifact"
	"minic/internal/buildpipeline"
)

var emitCmd = &cobra.Command{
	Use:   "emit [flags] <file>",
	Short: "Compile one unit and print the selected sections",
	Args:  cobra.ExactArgs(1),
	RunE:  emitExecution,
}

func init() {
	emitCmd.Flags().String("emit", "opt,lir", "sections to print (symbols,memory,hir,opt,lir or all)")
	emitCmd.Flags().String("format", "text", "output format (text|json|msgpack)")
}

func emitExecution(cmd *cobra.Command, args []string) error {
	emit, err := cmd.Flags().GetString("emit")
	if err != nil {
		return err
	}
	sections, err := artifact.ParseSections(emit)
	if err != nil {
		return err
	}
	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := artifact.ParseFormat(formatValue)
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	pc, err := loadProject(cmd)
	if err != nil {
		return err
	}

	res, err := buildpipeline.CompileUnit(cmd.Context(), &buildpipeline.UnitRequest{
		Path:   args[0],
		Config: pc.Config,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == artifact.FormatText {
		styled := out == os.Stdout && isTerminal(os.Stdout)
		if err := artifact.WriteText(out, res.Artifact, artifact.TextOptions{Sections: sections, Styled: styled}); err != nil {
			return err
		}
	} else if err := artifact.Encode(out, res.Artifact, format, sections); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if timings {
		printStageTimings(cmd.ErrOrStderr(), res.Timings)
	}
	return nil
}
