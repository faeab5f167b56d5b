package lir

import (
	"context"
	"fmt"

	"minic/internal/hir"
	"minic/internal/reg"
	"minic/internal/trace"
)

// Skipped is an HIR instruction left unlowered.
type Skipped struct {
	Index int       `json:"index" msgpack:"index"`
	Instr hir.Instr `json:"-" msgpack:"-"`
	Text  string    `json:"text" msgpack:"text"`
}

// Result is the output of one lowering run.
type Result struct {
	Program Program
	Skipped []Skipped
}

// Generator lowers constant assignments through the accumulator.
type Generator struct {
	regs *reg.Manager
}

// NewGenerator builds a generator over regs.
func NewGenerator(regs *reg.Manager) *Generator {
	return &Generator{regs: regs}
}

// Lower turns each "x = lit" into
//
//	LDI lit
//	MOV var:x <accumulator>
//
// holding the accumulator only while the pair is emitted. Assignments to
// temporaries, non-literal sources and every other variant are reported in
// Result.Skipped.
func (g *Generator) Lower(ctx context.Context, prog hir.Program) (Result, error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopePass, "lir.lower", trace.CurrentSpan(ctx))
	var res Result
	for i, in := range prog {
		if in.Kind != hir.InstrAssign || !in.Assign.Src.IsLiteral() || hir.IsTemp(in.Assign.Dst) {
			res.Skipped = append(res.Skipped, Skipped{Index: i, Instr: in, Text: in.String()})
			trace.Point(tr, trace.ScopeInstr, "lir.skip", in.String())
			continue
		}
		pair, err := g.lowerConst(in.Assign.Dst, in.Assign.Src.Value)
		if err != nil {
			span.End("error")
			return Result{}, fmt.Errorf("lowering %q: %w", in.String(), err)
		}
		res.Program = append(res.Program, pair...)
	}
	span.End(fmt.Sprintf("%d lowered, %d skipped", len(prog)-len(res.Skipped), len(res.Skipped)))
	return res, nil
}

func (g *Generator) lowerConst(name string, v int64) ([]Instr, error) {
	ldi := LoadImmediate(v)
	target := g.regs.Target()
	acc := target.Accumulator()
	mov, err := Move(ToVariable(name), acc, target)
	if err != nil {
		return nil, err
	}
	content, err := accumulatorContent(v)
	if err != nil {
		return nil, err
	}
	if err := g.regs.Allocate(acc, content); err != nil {
		return nil, err
	}
	if err := g.regs.Free(acc); err != nil {
		return nil, err
	}
	return []Instr{ldi, mov}, nil
}

// accumulatorContent is what the accumulator is recorded as holding after
// "LDI v". Values a Constant cannot describe are tracked as Empty.
func accumulatorContent(v int64) (reg.Content, error) {
	if v <= 0 || v > reg.MaxValue {
		return reg.Empty(), nil
	}
	return reg.Constant(v)
}
