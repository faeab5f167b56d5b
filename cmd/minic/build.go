package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"minic/internal/artifact"
	"minic/internal/buildpipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path...]",
	Short: "Compile every unit of a minic project",
	Long: `Compile syntax trees to HIR, optimized HIR and register code, writing one
artifact per unit under [build].out_dir. Paths may be files or directories;
without paths the sources listed in minic.toml are built.`,
	RunE: buildExecution,
}

func init() {
	buildCmd.Flags().String("emit", "all", "sections to write (symbols,memory,hir,opt,lir or all)")
	buildCmd.Flags().String("format", "", "artifact format (text|json|msgpack); default from [build].format")
	buildCmd.Flags().String("out", "", "output directory (\"-\" to skip writing); default from [build].out_dir")
	buildCmd.Flags().Int("jobs", 0, "parallel units (0 = [build].jobs or GOMAXPROCS)")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	buildCmd.Flags().Bool("no-cache", false, "ignore the artifact cache")
}

type buildFlags struct {
	sections artifact.Section
	format   artifact.Format
	out      string
	jobs     int
	ui       uiMode
	noCache  bool
	quiet    bool
	timings  bool
}

func readBuildFlags(cmd *cobra.Command) (buildFlags, error) {
	var bf buildFlags
	emit, err := cmd.Flags().GetString("emit")
	if err != nil {
		return bf, err
	}
	if bf.sections, err = artifact.ParseSections(emit); err != nil {
		return bf, err
	}
	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return bf, err
	}
	if formatValue != "" {
		if bf.format, err = artifact.ParseFormat(formatValue); err != nil {
			return bf, err
		}
	}
	if bf.out, err = cmd.Flags().GetString("out"); err != nil {
		return bf, err
	}
	if bf.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return bf, err
	}
	if bf.jobs < 0 {
		return bf, fmt.Errorf("--jobs must not be negative")
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return bf, err
	}
	if bf.ui, err = readUIMode(uiValue); err != nil {
		return bf, err
	}
	if bf.noCache, err = cmd.Flags().GetBool("no-cache"); err != nil {
		return bf, err
	}
	if bf.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return bf, err
	}
	if bf.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return bf, err
	}
	return bf, nil
}

func buildExecution(cmd *cobra.Command, args []string) error {
	bf, err := readBuildFlags(cmd)
	if err != nil {
		return err
	}
	pc, err := loadProject(cmd)
	if err != nil {
		return err
	}
	files, err := collectUnits(pc, args)
	if err != nil {
		return err
	}

	req := &buildpipeline.BuildRequest{
		Root:     pc.Root,
		Files:    files,
		Config:   pc.Config,
		Format:   bf.format,
		Sections: bf.sections,
		OutDir:   bf.out,
		Jobs:     bf.jobs,
		NoCache:  bf.noCache,
	}

	var res buildpipeline.BuildResult
	if shouldUseTUI(bf.ui) {
		res, err = runBuildWithUI(cmd.Context(), "building "+pc.Config.Package.Name, files, req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !bf.quiet {
		printBuildSummary(out, pc.Root, res)
	}
	if bf.timings {
		printStageTimings(out, res.Timings)
	}
	return nil
}

func printBuildSummary(out io.Writer, root string, res buildpipeline.BuildResult) {
	for _, path := range res.Outputs {
		fmt.Fprintf(out, "wrote %s\n", displayName(root, path))
	}
	fmt.Fprintf(out, "built %d unit(s), %d cached, in %.1f ms\n", len(res.Units), res.Cached(), toMillis(res.Elapsed))
}
