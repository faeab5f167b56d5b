package lir

import (
	"context"
	"errors"
	"strings"
	"testing"

	"minic/internal/diag"
	"minic/internal/hir"
	"minic/internal/reg"
)

func newGenerator(t *testing.T) (*Generator, *reg.Manager) {
	t.Helper()
	regs, err := reg.NewManager(reg.DefaultTarget())
	if err != nil {
		t.Fatalf("registers: %v", err)
	}
	return NewGenerator(regs), regs
}

func TestLowerConstantAssignment(t *testing.T) {
	g, regs := newGenerator(t)
	res, err := g.Lower(context.Background(), parseProgram(t, "x = 5"))
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if got := strings.Join(res.Program.Lines(), "; "); got != "LDI 5; MOV var:x A" {
		t.Fatalf("unexpected program %q", got)
	}
	if regs.Allocated() != 0 {
		t.Fatalf("accumulator left allocated")
	}
}

func TestLowerAnyImmediate(t *testing.T) {
	cases := map[string]string{
		"x = 0":    "LDI 0; MOV var:x A",
		"x = 255":  "LDI 255; MOV var:x A",
		"x = 256":  "LDI 256; MOV var:x A",
		"x = -1":   "LDI -1; MOV var:x A",
		"x = 1000": "LDI 1000; MOV var:x A",
		"x = -5":   "LDI -5; MOV var:x A",
	}
	for line, want := range cases {
		g, regs := newGenerator(t)
		res, err := g.Lower(context.Background(), parseProgram(t, line))
		if err != nil {
			t.Fatalf("%s: lower: %v", line, err)
		}
		if got := strings.Join(res.Program.Lines(), "; "); got != want {
			t.Errorf("%s: got %q, want %q", line, got, want)
		}
		if regs.Allocated() != 0 {
			t.Errorf("%s: accumulator left allocated", line)
		}
	}
}

func TestAccumulatorContent(t *testing.T) {
	for _, v := range []int64{0, -1, 256, 1000} {
		c, err := accumulatorContent(v)
		if err != nil || c.Kind != reg.ContentEmpty {
			t.Errorf("%d: expected empty content, got %v (%v)", v, c.Kind, err)
		}
	}
	for _, v := range []int64{1, 255} {
		c, err := accumulatorContent(v)
		if err != nil || c.Kind != reg.ContentConstant || *c.Value != v {
			t.Errorf("%d: expected constant content, got %+v (%v)", v, c, err)
		}
	}
}

func TestLowerReportsSkipped(t *testing.T) {
	g, _ := newGenerator(t)
	res, err := g.Lower(context.Background(), parseProgram(t,
		"a = 1",
		"b = a",
		".t0 = 0",
		"c = a + 1",
		"IF .t0 GOTO .L0",
		".L0:",
	))
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if len(res.Program) != 2 {
		t.Fatalf("expected one lowered pair, got %v", res.Program.Lines())
	}
	if len(res.Skipped) != 5 || res.Skipped[0].Index != 1 || res.Skipped[0].Text != "b = a" {
		t.Fatalf("unexpected skipped %+v", res.Skipped)
	}
}

func TestLowerBusyAccumulator(t *testing.T) {
	g, regs := newGenerator(t)
	v, _ := reg.Variable("held")
	if err := regs.Allocate("A", v); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if _, err := g.Lower(context.Background(), parseProgram(t, "x = 3")); !errors.Is(err, diag.RegisterBusy) {
		t.Fatalf("expected RegisterBusy, got %v", err)
	}
}

func TestParseLIR(t *testing.T) {
	target := reg.DefaultTarget()
	good := []string{"LDI 0", "LDI 255", "MOV var:x A", "MOV C B"}
	for _, line := range good {
		in, err := Parse(line, target)
		if err != nil {
			t.Fatalf("%q: %v", line, err)
		}
		if in.String() != line {
			t.Errorf("round trip %q -> %q", line, in)
		}
	}
	invalid := []string{"MOV var:x C", "MOV Z A", "MOV var: A", "LDI", "LDI x", "NOP", "MOV x"}
	for _, line := range invalid {
		if _, err := Parse(line, target); !errors.Is(err, diag.InvalidInstructionForm) {
			t.Errorf("%q: expected InvalidInstructionForm, got %v", line, err)
		}
	}
	if in, err := Parse("LDI -300", target); err != nil || in.Value != -300 {
		t.Errorf("wide immediates must parse: %+v, %v", in, err)
	}
}

func TestLowerCustomTarget(t *testing.T) {
	regs, err := reg.NewManager(reg.Target{Registers: []string{"R0", "R1"}, SourceRegisters: []string{"R1"}})
	if err != nil {
		t.Fatalf("registers: %v", err)
	}
	res, err := NewGenerator(regs).Lower(context.Background(), parseProgram(t, "x = 9"))
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if got := strings.Join(res.Program.Lines(), "; "); got != "LDI 9; MOV var:x R1" {
		t.Fatalf("unexpected program %q", got)
	}
}

func parseProgram(t testing.TB, lines ...string) hir.Program {
	t.Helper()
	prog, err := hir.ParseLines(lines)
	if err != nil {
		t.Fatalf("parse %q: %v", lines, err)
	}
	return prog
}
