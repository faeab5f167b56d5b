package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"minic/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new minic project",
	Long: `Initialize a new minic project by creating a project manifest (minic.toml)
and a sample syntax tree (main.json). If [path|name] is omitted, initializes
the current directory. A non-existing name creates the directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const sampleTree = `{
  "kind": "file",
  "items": [
    {"kind": "decl", "name": "counter", "type": "int", "quals": ["volatile"]},
    {"kind": "decl", "name": "limit", "type": "char", "init": {"kind": "const", "value": 10}},
    {"kind": "func", "name": "main", "type": "int", "body": [
      {"kind": "decl", "name": "x", "type": "int", "init": {"kind": "const", "value": 5}},
      {"kind": "if",
       "cond": {"kind": "binary", "op": "<", "left": {"kind": "id", "name": "x"}, "right": {"kind": "id", "name": "limit"}},
       "then": [{"kind": "assign", "target": "counter", "expr": {"kind": "binary", "op": "+",
         "left": {"kind": "id", "name": "x"}, "right": {"kind": "const", "value": 1}}}],
       "else": [{"kind": "assign", "target": "counter", "expr": {"kind": "const", "value": 0}}]}
    ]}
  ]
}
`

func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		target = abs
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "minic-project"
	}

	manifestPath, err := project.WriteManifest(target, name)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "created %s\n", manifestPath)

	mainPath := filepath.Join(target, "main.json")
	if _, err := os.Stat(mainPath); err == nil {
		fmt.Fprintf(out, "kept existing %s\n", mainPath)
		return nil
	}
	if err := os.WriteFile(mainPath, []byte(sampleTree), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", mainPath, err)
	}
	fmt.Fprintf(out, "created %s\n", mainPath)
	return nil
}
