package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minic/internal/version"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, `
[package]
name = "demo"
minic = ">= 0.1.0"

[memory]
start = 16
end = 64

[target]
registers = ["R0", "R1", "R2"]
source_registers = ["R1"]

[optimize]
fold = false

[build]
jobs = 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Package.Name != "demo" || cfg.Memory.Start != 16 || cfg.Memory.End != 64 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Target.Accumulator() != "R1" || len(cfg.Target.Registers) != 3 {
		t.Fatalf("unexpected target %+v", cfg.Target)
	}
	if !cfg.Optimize.Propagate || !cfg.Optimize.Fuse || cfg.Optimize.Fold {
		t.Fatalf("unexpected optimize section %+v", cfg.Optimize)
	}
	if cfg.Build.Jobs != 2 || cfg.Build.Format != FormatText || !cfg.Build.Cache {
		t.Fatalf("unset build keys should keep defaults: %+v", cfg.Build)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":      "[memory]\nbase = 3\n",
		"missing name":     "[package]\nminic = \"*\"\n",
		"bad region":       "[memory]\nstart = 10\nend = 4\n",
		"bad source reg":   "[target]\nregisters = [\"A\"]\nsource_registers = [\"B\"]\n",
		"bad format":       "[build]\nformat = \"yaml\"\n",
		"negative jobs":    "[build]\njobs = -1\n",
		"version mismatch": "[package]\nname = \"x\"\nminic = \">= 99.0.0\"\n",
		"bad constraint":   "[package]\nname = \"x\"\nminic = \"not a version\"\n",
		"syntax":           "[memory\n",
	}
	for name, content := range tests {
		path := filepath.Join(t.TempDir(), ManifestName)
		writeFile(t, path, content)
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestCheckToolVersion(t *testing.T) {
	if err := CheckToolVersion("^0.1", "0.1.4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckToolVersion("~0.2.0", "0.1.0"); err == nil {
		t.Fatalf("expected mismatch")
	}
}

func TestLoadManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[package]\nname = \"walk\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	m, ok, err := LoadManifest(nested)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if m.Config.Package.Name != "walk" {
		t.Fatalf("unexpected name %q", m.Config.Package.Name)
	}
	wantRoot, _ := filepath.EvalSymlinks(root)
	gotRoot, _ := filepath.EvalSymlinks(m.Root)
	if gotRoot != wantRoot {
		t.Fatalf("root %q, want %q", gotRoot, wantRoot)
	}
}

func TestSources(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "c.mp", "notes.txt"} {
		writeFile(t, filepath.Join(root, name), "{}")
	}
	cfg := Default()
	cfg.Build.Sources = []string{"*.json", "*.mp", "a.json"}
	got, err := cfg.Sources(root)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	var names []string
	for _, p := range got {
		names = append(names, filepath.Base(p))
	}
	if strings.Join(names, ",") != "a.json,b.json,c.mp" {
		t.Fatalf("unexpected sources %v", names)
	}
}

func TestWriteManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteManifest(dir, "fresh")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load written manifest: %v", err)
	}
	if cfg.Package.Name != "fresh" || cfg.Package.Minic != "^"+version.Number {
		t.Fatalf("unexpected package %+v", cfg.Package)
	}
	if _, err := WriteManifest(dir, "again"); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
}

func TestFingerprintTracksOutputSettings(t *testing.T) {
	a := Default()
	b := Default()
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("equal configs differ")
	}
	b.Optimize.Fold = false
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("fold setting not part of fingerprint")
	}
	c := Default()
	c.Build.Jobs = 8
	if a.Fingerprint() != c.Fingerprint() {
		t.Fatalf("jobs must not affect the fingerprint")
	}
}
