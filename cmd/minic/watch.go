package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"minic/internal/buildpipeline"
	"minic/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [path...]",
	Short: "Rebuild units whenever their files change",
	RunE:  watchExecution,
}

func init() {
	watchCmd.Flags().String("emit", "all", "sections to write (symbols,memory,hir,opt,lir or all)")
	watchCmd.Flags().String("format", "", "artifact format (text|json|msgpack); default from [build].format")
	watchCmd.Flags().String("out", "", "output directory; default from [build].out_dir")
	watchCmd.Flags().Int("jobs", 0, "parallel units (0 = [build].jobs or GOMAXPROCS)")
	watchCmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
	watchCmd.Flags().Bool("no-cache", false, "ignore the artifact cache")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "delay before rebuilding after a change")
}

func watchExecution(cmd *cobra.Command, args []string) error {
	bf, err := readBuildFlags(cmd)
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	rebuild := func(ctx context.Context, units []string) {
		res, err := buildpipeline.Build(ctx, &buildpipeline.BuildRequest{
			Root:     pc.Root,
			Files:    units,
			Config:   pc.Config,
			Format:   bf.format,
			Sections: bf.sections,
			OutDir:   bf.out,
			Jobs:     bf.jobs,
			NoCache:  bf.noCache,
		})
		stamp := time.Now().Format("15:04:05")
		if err != nil {
			fmt.Fprintf(errOut, "[%s] ", stamp)
			renderError(errOut, err)
			return
		}
		if !bf.quiet {
			fmt.Fprintf(out, "[%s] ", stamp)
			printBuildSummary(out, pc.Root, res)
		}
		if bf.timings {
			printStageTimings(out, res.Timings)
		}
	}
	rebuild(ctx, files)

	w, err := watch.New(debounce, watch.MatchPatterns(sourcePatterns(pc)...))
	if err != nil {
		return err
	}
	defer w.Close()
	var dirs []string
	for _, f := range files {
		dir := filepath.Dir(f)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}
	}
	if !bf.quiet {
		fmt.Fprintf(out, "watching %d director(ies), press Ctrl+C to stop\n", len(dirs))
	}

	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		rebuild(ctx, changed)
		return nil
	})
}

// sourcePatterns returns the base-name globs of [build].sources.
func sourcePatterns(pc projectContext) []string {
	out := make([]string, 0, len(pc.Config.Build.Sources))
	for _, p := range pc.Config.Build.Sources {
		out = append(out, filepath.Base(p))
	}
	return out
}
