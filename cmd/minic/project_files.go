package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"minic/internal/project"
)

// projectContext is the configuration a command runs with.
type projectContext struct {
	Config project.Config
	Root   string
	// Manifest is empty when the defaults are in use.
	Manifest string
}

// loadProject reads --config, or the nearest minic.toml, or falls back to
// the defaults rooted at the working directory. MINIC_* variables apply last.
func loadProject(cmd *cobra.Command) (projectContext, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return projectContext{}, err
	}
	if path != "" {
		cfg, err := project.Load(path)
		if err != nil {
			return projectContext{}, err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return projectContext{}, err
		}
		if err := cfg.ApplyEnv(); err != nil {
			return projectContext{}, fmt.Errorf("environment: %w", err)
		}
		return projectContext{Config: cfg, Root: filepath.Dir(abs), Manifest: abs}, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return projectContext{}, err
	}
	manifest, found, err := project.LoadManifest(wd)
	if err != nil {
		return projectContext{}, err
	}
	pc := projectContext{Config: project.Default(), Root: wd}
	if found {
		pc = projectContext{Config: manifest.Config, Root: manifest.Root, Manifest: manifest.Path}
	}
	if err := pc.Config.ApplyEnv(); err != nil {
		return projectContext{}, fmt.Errorf("environment: %w", err)
	}
	return pc, nil
}

// collectUnits expands args into unit files. Directories are globbed with
// [build].sources; no args means the project root.
func collectUnits(pc projectContext, args []string) ([]string, error) {
	if len(args) == 0 {
		files, err := pc.Config.Sources(pc.Root)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no sources match [build].sources under %s", pc.Root)
		}
		return files, nil
	}
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		st, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			add(abs)
			continue
		}
		matches, err := pc.Config.Sources(abs)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			add(m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no sources found in %v", args)
	}
	return files, nil
}

// displayName shortens path relative to root for human output.
func displayName(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
