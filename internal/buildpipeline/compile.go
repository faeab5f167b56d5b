package buildpipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"minic/internal/artifact"
	"minic/internal/ast"
	"minic/internal/hir"
	"minic/internal/lir"
	"minic/internal/memory"
	"minic/internal/opt"
	"minic/internal/project"
	"minic/internal/reg"
	"minic/internal/symbols"
	"minic/internal/trace"
)

// UnitRequest configures the compilation of one syntax tree.
type UnitRequest struct {
	Path string
	// Source holds the encoded tree. When nil it is read from Path.
	Source   []byte
	Config   project.Config
	Cache    *artifact.DiskCache
	Progress ProgressSink
}

// UnitResult captures the artifact of one unit and its stage timings.
type UnitResult struct {
	Path     string
	Artifact *artifact.Artifact
	Timings  Timings
	Cached   bool
}

// unitState carries values between stages.
type unitState struct {
	file      *ast.File
	table     *symbols.Table
	mem       *memory.Manager
	hir       hir.Program
	optimized hir.Program
	report    opt.Report
	lir       lir.Result
}

// CompileUnit runs load, symbols, memory, hir, optimize and lir over one
// unit. Nothing is written to disk apart from the cache entry.
func CompileUnit(ctx context.Context, req *UnitRequest) (UnitResult, error) {
	var result UnitResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}
	if req.Path == "" {
		return result, fmt.Errorf("missing unit path")
	}
	result.Path = req.Path

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "unit", trace.CurrentSpan(ctx)).WithExtra("file", req.Path)
	ctx = trace.WithSpan(ctx, span)
	status := "ok"
	defer func() { span.End(status) }()

	data := req.Source
	if data == nil {
		var err error
		data, err = os.ReadFile(req.Path)
		if err != nil {
			emit(req.Progress, req.Path, StageLoad, StatusError, err, 0)
			status = "error"
			return result, err
		}
	}

	key := artifact.Key(data, req.Config.Fingerprint())
	if cached, ok, err := req.Cache.Get(key); err != nil {
		trace.Point(tracer, trace.ScopeUnit, "cache.corrupt", fmt.Sprintf("%s: %v", req.Path, err))
	} else if ok {
		cached.Unit = req.Path
		result.Artifact = cached
		result.Cached = true
		status = "cached"
		emit(req.Progress, req.Path, StageLIR, StatusCached, nil, 0)
		return result, nil
	}

	var st unitState
	stages := []struct {
		stage Stage
		run   func(context.Context) error
	}{
		{StageLoad, func(context.Context) error {
			f, err := ast.Decode(bytes.NewReader(data), ast.FormatFromPath(req.Path))
			if err != nil {
				return err
			}
			f.Name = req.Path
			st.file = f
			return nil
		}},
		{StageSymbols, func(ctx context.Context) (err error) {
			st.table, err = symbols.Build(ctx, st.file, req.Config.SymbolOptions())
			return err
		}},
		{StageMemory, func(ctx context.Context) (err error) {
			st.mem, err = memory.NewManager(req.Config.Region())
			if err != nil {
				return err
			}
			return st.mem.LoadSymbolTable(ctx, st.table)
		}},
		{StageHIR, func(ctx context.Context) (err error) {
			st.hir, err = hir.Generate(ctx, st.file, nil)
			return err
		}},
		{StageOptimize, func(ctx context.Context) (err error) {
			st.optimized, st.report, err = opt.Optimize(ctx, st.hir, st.table, req.Config.OptimizeOptions())
			return err
		}},
		{StageLIR, func(ctx context.Context) error {
			regs, err := reg.NewManager(req.Config.Target)
			if err != nil {
				return err
			}
			st.lir, err = lir.NewGenerator(regs).Lower(ctx, st.optimized)
			return err
		}},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			status = "canceled"
			return result, err
		}
		emit(req.Progress, req.Path, s.stage, StatusWorking, nil, 0)
		start := time.Now()
		err := s.run(ctx)
		elapsed := time.Since(start)
		result.Timings.Set(s.stage, elapsed)
		if err != nil {
			err = fmt.Errorf("%s: %s: %w", req.Path, s.stage, err)
			emit(req.Progress, req.Path, s.stage, StatusError, err, elapsed)
			trace.Fail(tracer, "unit", err)
			status = "error"
			return result, err
		}
		emit(req.Progress, req.Path, s.stage, StatusDone, nil, elapsed)
	}

	result.Artifact = st.artifact(req.Path, data)
	if err := req.Cache.Put(key, result.Artifact); err != nil {
		trace.Point(tracer, trace.ScopeUnit, "cache.write_failed", err.Error())
	}
	return result, nil
}

func (st *unitState) artifact(path string, source []byte) *artifact.Artifact {
	vars := st.mem.Variables()
	mem := make([]memory.Record, 0, len(vars))
	for _, v := range vars {
		mem = append(mem, v.Record())
	}
	return &artifact.Artifact{
		Schema:     artifact.SchemaVersion,
		Unit:       path,
		SourceHash: project.DigestOf(source).Hex(),
		Symbols:    st.table.Records(),
		Memory:     mem,
		MemStats:   st.mem.Stats(),
		HIR:        st.hir.Lines(),
		Optimized:  st.optimized.Lines(),
		Report:     st.report,
		LIR:        st.lir.Program.Lines(),
		Skipped:    st.lir.Skipped,
	}
}
