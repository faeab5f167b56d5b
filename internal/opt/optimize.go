// Package opt rewrites HIR programs.
//
// Passes run in a fixed order: propagation first, since it can turn operands
// into literals and change how often a temporary is referenced, then
// temporary fusion, then literal refolding.
package opt

import (
	"context"
	"fmt"

	"minic/internal/hir"
	"minic/internal/symbols"
	"minic/internal/trace"
)

// Options selects the passes to run.
type Options struct {
	Propagate bool
	Fuse      bool
	Fold      bool
}

// DefaultOptions enables every pass.
func DefaultOptions() Options {
	return Options{Propagate: true, Fuse: true, Fold: true}
}

// Report summarizes one Optimize run.
type Report struct {
	Before     int      `json:"before" msgpack:"before"`
	After      int      `json:"after" msgpack:"after"`
	Propagated []string `json:"propagated,omitempty" msgpack:"propagated,omitempty"`
	Fused      int      `json:"fused" msgpack:"fused"`
	Folded     int      `json:"folded" msgpack:"folded"`
}

// Optimize runs the enabled passes over prog. The input is not modified.
func Optimize(ctx context.Context, prog hir.Program, table *symbols.Table, opts Options) (hir.Program, Report, error) {
	tr := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)
	rep := Report{Before: len(prog)}
	out := prog.Clone()

	pass := func(name string, run func() error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		before := len(out)
		span := trace.Begin(tr, trace.ScopePass, name, parent)
		if err := run(); err != nil {
			span.End("error")
			return err
		}
		span.End(fmt.Sprintf("%d -> %d", before, len(out)))
		return nil
	}

	if opts.Propagate {
		err := pass("opt.propagate", func() error {
			next, names, err := Propagate(ctx, out, table)
			if err != nil {
				return err
			}
			out, rep.Propagated = next, names
			return nil
		})
		if err != nil {
			return nil, rep, err
		}
	}
	if opts.Fuse {
		err := pass("opt.fuse", func() error {
			out, rep.Fused = FuseTemporaries(ctx, out)
			return nil
		})
		if err != nil {
			return nil, rep, err
		}
	}
	if opts.Fold {
		err := pass("opt.fold", func() error {
			out, rep.Folded = Fold(ctx, out)
			return nil
		})
		if err != nil {
			return nil, rep, err
		}
	}
	rep.After = len(out)
	return out, rep, nil
}
