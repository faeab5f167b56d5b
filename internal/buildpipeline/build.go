package buildpipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"minic/internal/artifact"
	"minic/internal/project"
	"minic/internal/trace"
)

// BuildRequest configures a multi-unit build.
type BuildRequest struct {
	// Root anchors relative output and cache paths.
	Root   string
	Files  []string
	Config project.Config
	// Format overrides [build].format when set.
	Format   artifact.Format
	Sections artifact.Section
	// OutDir overrides [build].out_dir. "-" skips writing outputs.
	OutDir string
	// Jobs overrides [build].jobs; zero means GOMAXPROCS.
	Jobs     int
	NoCache  bool
	Progress ProgressSink
}

// BuildResult holds per-unit results in request order.
type BuildResult struct {
	Units   []UnitResult
	Outputs []string
	Timings Timings
	Elapsed time.Duration
}

// Cached counts units served from the artifact cache.
func (r BuildResult) Cached() int {
	n := 0
	for _, u := range r.Units {
		if u.Cached {
			n++
		}
	}
	return n
}

// Build compiles every file in parallel and writes one artifact per unit.
// The first failing unit cancels the rest.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if len(req.Files) == 0 {
		return result, fmt.Errorf("no source files to build")
	}

	format := req.Format
	if format == "" {
		f, err := artifact.ParseFormat(req.Config.Build.Format)
		if err != nil {
			return result, err
		}
		format = f
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = req.Config.Build.OutDir
	}
	if outDir != "-" {
		outDir = resolve(req.Root, outDir)
	}

	var cache *artifact.DiskCache
	if !req.NoCache && req.Config.Build.Cache {
		c, err := artifact.OpenDiskCache(resolve(req.Root, req.Config.Build.CacheDir))
		if err != nil {
			return result, fmt.Errorf("open artifact cache: %w", err)
		}
		cache = c
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = req.Config.Build.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	jobs = min(jobs, len(req.Files))

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "build", trace.CurrentSpan(ctx)).
		WithExtra("units", fmt.Sprint(len(req.Files))).
		WithExtra("jobs", fmt.Sprint(jobs))
	ctx = trace.WithSpan(ctx, span)
	start := time.Now()

	emitQueued(req.Progress, req.Files)
	units := make([]UnitResult, len(req.Files))
	outputs := make([]string, len(req.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range req.Files {
		g.Go(func() error {
			unit, err := CompileUnit(gctx, &UnitRequest{
				Path:     path,
				Config:   req.Config,
				Cache:    cache,
				Progress: req.Progress,
			})
			if err != nil {
				return err
			}
			if outDir != "-" {
				writeStart := time.Now()
				emit(req.Progress, path, StageWrite, StatusWorking, nil, 0)
				out, err := writeArtifact(outDir, relTo(req.Root, path), unit.Artifact, format, req.Sections)
				elapsed := time.Since(writeStart)
				unit.Timings.Set(StageWrite, elapsed)
				if err != nil {
					emit(req.Progress, path, StageWrite, StatusError, err, elapsed)
					return err
				}
				emit(req.Progress, path, StageWrite, StatusDone, nil, elapsed)
				outputs[i] = out
			}
			units[i] = unit
			return nil
		})
	}
	err := g.Wait()

	result.Units = units
	for _, u := range units {
		result.Timings.Merge(u.Timings)
	}
	for _, out := range outputs {
		if out != "" {
			result.Outputs = append(result.Outputs, out)
		}
	}
	result.Elapsed = time.Since(start)

	if err != nil {
		emit(req.Progress, "", StageWrite, StatusError, err, result.Elapsed)
		span.End("error")
		return result, err
	}
	emit(req.Progress, "", StageWrite, StatusDone, nil, result.Elapsed)
	span.End(fmt.Sprintf("%d units, %d cached", len(units), result.Cached()))
	return result, nil
}

// OutputPath maps a unit to its artifact file under outDir, keeping the
// unit's directory layout.
func OutputPath(outDir, rel string, format artifact.Format) string {
	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(outDir, stem+format.Ext())
}

func writeArtifact(outDir, rel string, a *artifact.Artifact, format artifact.Format, sections artifact.Section) (string, error) {
	path := OutputPath(outDir, rel, format)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to write build output %q: %w", path, err)
	}
	if err := artifact.Encode(f, a, format, sections); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}

// relTo returns path relative to root, or its base name when it lives
// outside root.
func relTo(root, path string) string {
	if root == "" {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(path)
	}
	return rel
}
