package hir

import (
	"bytes"
	"errors"
	"testing"

	"minic/internal/diag"
)

func TestParseRoundTrip(t *testing.T) {
	lines := []string{
		"x = 5",
		"x = -5",
		".t0 = a + 1",
		".t1 = a <= .t0",
		"y = a && b",
		"IF .t1 GOTO .L0",
		"GOTO .L1",
		".L0:",
		"café = 1",
	}
	for _, line := range lines {
		in, err := Parse(line)
		if err != nil {
			t.Fatalf("%q: %v", line, err)
		}
		if got := in.String(); got != line {
			t.Errorf("round trip %q -> %q", line, got)
		}
	}
}

func TestParseClassifiesBinary(t *testing.T) {
	arith, _ := Parse("x = a << 2")
	cond, _ := Parse("x = a != 2")
	if arith.Kind != InstrArith || arith.Binary.Op != OpShl {
		t.Fatalf("expected arith shl, got %v %v", arith.Kind, arith.Binary.Op)
	}
	if cond.Kind != InstrCond || cond.Binary.Op != OpNe {
		t.Fatalf("expected cond ne, got %v %v", cond.Kind, cond.Binary.Op)
	}
}

func TestParseRejectsInvalidForms(t *testing.T) {
	bad := []string{
		"",
		"x",
		"x =",
		"x = a +",
		"x = a ** b",
		"5 = x",
		"x = a b c d",
		"IF x GOTO",
		"IF x JUMP .L0",
		"GOTO 12",
		".x0:",
		"x := 1",
	}
	for _, line := range bad {
		if _, err := Parse(line); !errors.Is(err, diag.InvalidInstructionForm) {
			t.Errorf("%q: expected InvalidInstructionForm, got %v", line, err)
		}
	}
}

func TestParseLines(t *testing.T) {
	prog, err := ParseLines([]string{"# header", "", "  x = 1  ", "y = x"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(prog) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(prog))
	}
	if _, err := ParseLines([]string{"x = 1", "oops"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDumpIndentsNonLabels(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, parseProgram(t, "x = 1", ".L0:", "GOTO .L0")); err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := "  x = 1\n.L0:\n  GOTO .L0\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestInvertIsInvolution(t *testing.T) {
	for _, op := range []Op{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe} {
		inv, ok := op.Invert()
		if !ok {
			t.Fatalf("%s has no inverse", op)
		}
		back, _ := inv.Invert()
		if back != op {
			t.Fatalf("%s inverts to %s and back to %s", op, inv, back)
		}
		for a := int64(-2); a <= 2; a++ {
			for b := int64(-2); b <= 2; b++ {
				x, _ := op.Eval(a, b)
				y, _ := inv.Eval(a, b)
				if x == y {
					t.Fatalf("%d %s %d and its inverse agree", a, op, b)
				}
			}
		}
	}
	if _, ok := OpAdd.Invert(); ok {
		t.Fatalf("arithmetic operators have no inverse")
	}
}

func TestEvalEdgeCases(t *testing.T) {
	tests := []struct {
		op   Op
		a, b int64
		want int64
		ok   bool
	}{
		{OpDiv, -7, 2, -3, true},
		{OpMod, -7, 2, -1, true},
		{OpDiv, 1, 0, 0, true},
		{OpMod, 1, 0, 0, true},
		{OpShl, 1, 4, 16, true},
		{OpShr, -16, 2, -4, true},
		{OpShl, 1, -1, 0, false},
		{OpLAnd, 2, 3, 1, true},
		{OpLOr, 0, 0, 0, true},
		{OpInvalid, 1, 1, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.op.Eval(tt.a, tt.b)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%d %s %d = %d, %v; want %d, %v", tt.a, tt.op, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func parseProgram(t testing.TB, lines ...string) Program {
	t.Helper()
	prog, err := ParseLines(lines)
	if err != nil {
		t.Fatalf("parse %q: %v", lines, err)
	}
	return prog
}
