package opt

import (
	"context"

	"minic/internal/hir"
	"minic/internal/trace"
)

// FuseTemporaries rewrites
//
//	.tN = a op b
//	x = .tN
//
// into "x = a op b" when .tN appears nowhere else. It makes one left-to-right
// pass; a fused instruction is not examined again. It returns the new
// program and the number of fused pairs.
func FuseTemporaries(ctx context.Context, prog hir.Program) (hir.Program, int) {
	tr := trace.FromContext(ctx)
	refs := make(map[string]int)
	var ops []hir.Operand
	for _, in := range prog {
		if dst, ok := in.Def(); ok && hir.IsTemp(dst) {
			refs[dst]++
		}
		ops = in.Uses(ops[:0])
		for _, o := range ops {
			if o.IsTemp() {
				refs[o.Name]++
			}
		}
	}

	out := make(hir.Program, 0, len(prog))
	fused := 0
	for i := 0; i < len(prog); i++ {
		in := prog[i]
		if in.Kind == hir.InstrArith && hir.IsTemp(in.Binary.Dst) && refs[in.Binary.Dst] == 2 && i+1 < len(prog) {
			next := prog[i+1]
			if next.Kind == hir.InstrAssign && next.Assign.Src == hir.Name(in.Binary.Dst) {
				b := in.Binary
				merged := hir.Arith(next.Assign.Dst, b.Left, b.Op, b.Right)
				trace.Point(tr, trace.ScopeInstr, "opt.fuse", merged.String())
				out = append(out, merged)
				fused++
				i++
				continue
			}
		}
		out = append(out, in)
	}
	return out, fused
}
