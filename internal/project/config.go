package project

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"minic/internal/memory"
	"minic/internal/opt"
	"minic/internal/reg"
	"minic/internal/symbols"
	"minic/internal/version"
)

// Config is the decoded minic.toml. Sections left out keep their defaults.
type Config struct {
	Package  PackageConfig  `toml:"package"`
	Memory   MemoryConfig   `toml:"memory"`
	Target   reg.Target     `toml:"target"`
	Optimize OptimizeConfig `toml:"optimize"`
	Symbols  SymbolsConfig  `toml:"symbols"`
	Build    BuildConfig    `toml:"build"`
}

type PackageConfig struct {
	Name string `toml:"name"`
	// Minic is a semver constraint the running tool version must satisfy.
	Minic string `toml:"minic,omitempty"`
}

type MemoryConfig struct {
	Start int `toml:"start"`
	End   int `toml:"end"`
}

type OptimizeConfig struct {
	Propagate bool `toml:"propagate"`
	Fuse      bool `toml:"fuse"`
	Fold      bool `toml:"fold"`
}

type SymbolsConfig struct {
	Strict bool `toml:"strict"`
}

type BuildConfig struct {
	Sources  []string `toml:"sources"`
	Jobs     int      `toml:"jobs"`
	OutDir   string   `toml:"out_dir"`
	Format   string   `toml:"format"`
	Cache    bool     `toml:"cache"`
	CacheDir string   `toml:"cache_dir"`
}

// Output formats accepted by [build].format.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Default returns the configuration used when no manifest exists.
func Default() Config {
	return Config{
		Package: PackageConfig{Name: "minic-project"},
		Memory:  MemoryConfig{Start: memory.DefaultStart, End: memory.DefaultEnd},
		Target:  reg.DefaultTarget(),
		Optimize: OptimizeConfig{
			Propagate: true,
			Fuse:      true,
			Fold:      true,
		},
		Build: BuildConfig{
			Sources:  []string{"*.json", "*.mp"},
			OutDir:   "build",
			Format:   FormatText,
			Cache:    true,
			CacheDir: ".minic-cache",
		},
	}
}

// Manifest is a located and decoded minic.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("package") && (!meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "") {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadManifest finds and loads minic.toml starting at startDir. ok is false
// when there is none.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if err := c.Region().Validate(); err != nil {
		return fmt.Errorf("[memory]: %w", err)
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("[target]: %w", err)
	}
	if c.Build.Jobs < 0 {
		return fmt.Errorf("[build].jobs must not be negative")
	}
	switch c.Build.Format {
	case FormatText, FormatJSON, FormatMsgpack:
	default:
		return fmt.Errorf("[build].format %q must be text, json or msgpack", c.Build.Format)
	}
	if c.Package.Minic != "" {
		if err := CheckToolVersion(c.Package.Minic, version.Number); err != nil {
			return fmt.Errorf("[package].minic: %w", err)
		}
	}
	return nil
}

// CheckToolVersion reports whether tool satisfies constraint.
func CheckToolVersion(constraint, tool string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(tool)
	if err != nil {
		return fmt.Errorf("invalid tool version %q: %w", tool, err)
	}
	if ok, errs := c.Validate(v); !ok {
		if len(errs) > 0 {
			return fmt.Errorf("minic %s does not satisfy %q: %w", tool, constraint, errs[0])
		}
		return fmt.Errorf("minic %s does not satisfy %q", tool, constraint)
	}
	return nil
}

// Region is the configured static memory region.
func (c Config) Region() memory.Region {
	return memory.Region{Start: c.Memory.Start, End: c.Memory.End}
}

// OptimizeOptions maps [optimize] to optimizer passes.
func (c Config) OptimizeOptions() opt.Options {
	return opt.Options{Propagate: c.Optimize.Propagate, Fuse: c.Optimize.Fuse, Fold: c.Optimize.Fold}
}

// SymbolOptions maps [symbols] to table construction options.
func (c Config) SymbolOptions() symbols.BuildOptions {
	return symbols.BuildOptions{Strict: c.Symbols.Strict}
}

// Fingerprint hashes every setting that affects compilation output.
func (c Config) Fingerprint() Digest {
	var b strings.Builder
	fmt.Fprintf(&b, "memory=%d:%d;", c.Memory.Start, c.Memory.End)
	fmt.Fprintf(&b, "regs=%s;src=%s;", strings.Join(c.Target.Registers, ","), strings.Join(c.Target.SourceRegisters, ","))
	fmt.Fprintf(&b, "opt=%t:%t:%t;strict=%t;tool=%s", c.Optimize.Propagate, c.Optimize.Fuse, c.Optimize.Fold, c.Symbols.Strict, version.Number)
	return DigestOf([]byte(b.String()))
}

// Sources expands [build].sources relative to root, sorted and deduplicated.
func (c Config) Sources(root string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range c.Build.Sources {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, filepath.FromSlash(pattern))
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("[build].sources pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// WriteManifest creates dir/minic.toml with the defaults and the given name.
// It refuses to overwrite an existing manifest.
func WriteManifest(dir, name string) (string, error) {
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("project already initialized: %s exists", path)
	}
	cfg := Default()
	cfg.Package.Name = name
	cfg.Package.Minic = "^" + version.Number
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if err := cfg.Encode(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
