package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"minic/internal/artifact"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build outputs and the artifact cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := loadProject(cmd)
		if err != nil {
			return err
		}
		cache, err := artifact.OpenDiskCache(rootPath(pc.Root, pc.Config.Build.CacheDir))
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("drop cache: %w", err)
		}
		outDir := rootPath(pc.Root, pc.Config.Build.OutDir)
		if err := os.RemoveAll(outDir); err != nil {
			return fmt.Errorf("remove %s: %w", outDir, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s and %s\n", displayName(pc.Root, outDir), displayName(pc.Root, cache.Dir()))
		return nil
	},
}

func rootPath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
