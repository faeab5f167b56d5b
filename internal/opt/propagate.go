package opt

import (
	"context"
	"fmt"

	"minic/internal/diag"
	"minic/internal/hir"
	"minic/internal/symbols"
	"minic/internal/trace"
)

// Propagate replaces uses of variables that hold a single static literal
// with the literal and drops the defining assignment. The input is not
// modified.
//
// "x = lit" qualifies when x is not volatile, it is the only definition of
// x, and no jump placed before it targets a label placed after it, so it
// runs before every later instruction. Uses are rewritten only after the
// definition. The rewrite repeats until nothing changes, which makes the
// pass idempotent. It returns the propagated names in the order found.
func Propagate(ctx context.Context, prog hir.Program, table *symbols.Table) (hir.Program, []string, error) {
	tr := trace.FromContext(ctx)
	out := prog.Clone()
	var names []string
	for {
		next, found, err := propagateOnce(out, table)
		if err != nil {
			return nil, nil, err
		}
		if len(found) == 0 {
			break
		}
		for _, f := range found {
			trace.Point(tr, trace.ScopeInstr, "opt.propagate", fmt.Sprintf("%s = %d", f.name, f.value))
			names = append(names, f.name)
		}
		out = next
	}
	return out, names, nil
}

type binding struct {
	name  string
	value int64
	at    int
}

func propagateOnce(prog hir.Program, table *symbols.Table) (hir.Program, []binding, error) {
	defs := make(map[string]int)
	labels := make(map[string]int)
	for i, in := range prog {
		if dst, ok := in.Def(); ok {
			defs[dst]++
		}
		if in.Kind == hir.InstrLabel {
			labels[in.Label.Name] = i
		}
	}

	static := make(map[string]binding)
	var found []binding
	for i, in := range prog {
		if in.Kind != hir.InstrAssign || !in.Assign.Src.IsLiteral() || hir.IsTemp(in.Assign.Dst) {
			continue
		}
		name := in.Assign.Dst
		sym, ok := table.Get(name)
		if !ok {
			return nil, nil, diag.Errorf(diag.UnknownSymbol, name, "assignment to %s has no symbol", name)
		}
		if sym.IsVolatile() || defs[name] != 1 || bypassed(prog, labels, i) {
			continue
		}
		b := binding{name: name, value: in.Assign.Src.Value, at: i}
		static[name] = b
		found = append(found, b)
	}
	if len(found) == 0 {
		return prog, nil, nil
	}

	subst := func(o hir.Operand, at int) hir.Operand {
		if !o.IsName() {
			return o
		}
		if b, ok := static[o.Name]; ok && at > b.at {
			return hir.Lit(b.value)
		}
		return o
	}
	out := make(hir.Program, 0, len(prog)-len(found))
	for i, in := range prog {
		if in.Kind == hir.InstrAssign {
			if b, ok := static[in.Assign.Dst]; ok && b.at == i {
				continue
			}
		}
		switch in.Kind {
		case hir.InstrAssign:
			in.Assign.Src = subst(in.Assign.Src, i)
		case hir.InstrArith, hir.InstrCond:
			in.Binary.Left = subst(in.Binary.Left, i)
			in.Binary.Right = subst(in.Binary.Right, i)
		case hir.InstrIfGoto:
			in.IfGoto.Cond = subst(in.IfGoto.Cond, i)
		}
		out = append(out, in)
	}
	return out, found, nil
}

// bypassed reports whether a jump before index at lands after it.
func bypassed(prog hir.Program, labels map[string]int, at int) bool {
	for j := 0; j < at; j++ {
		target, ok := prog[j].JumpTarget()
		if !ok {
			continue
		}
		if idx, known := labels[target]; known && idx > at {
			return true
		}
	}
	return false
}
