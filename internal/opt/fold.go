package opt

import (
	"context"

	"minic/internal/hir"
	"minic/internal/trace"
)

// Fold turns binary instructions over two literals into assignments.
// Operations the operator table leaves symbolic are kept.
func Fold(ctx context.Context, prog hir.Program) (hir.Program, int) {
	tr := trace.FromContext(ctx)
	out := make(hir.Program, 0, len(prog))
	folded := 0
	for _, in := range prog {
		if in.Kind == hir.InstrArith || in.Kind == hir.InstrCond {
			b := in.Binary
			if b.Left.IsLiteral() && b.Right.IsLiteral() {
				if v, ok := b.Op.Eval(b.Left.Value, b.Right.Value); ok {
					in = hir.Assign(b.Dst, hir.Lit(v))
					trace.Point(tr, trace.ScopeInstr, "opt.fold", in.String())
					folded++
				}
			}
		}
		out = append(out, in)
	}
	return out, folded
}
