package testkit

import (
	"strings"
	"testing"

	"minic/internal/hir"
	"minic/internal/memory"
)

func TestCheckProgram(t *testing.T) {
	ok := parseProgram(t,
		".t0 = a <= 1",
		"IF .t0 GOTO .L0",
		"b = 1",
		"GOTO .L1",
		".L0:",
		"b = 2",
		".L1:",
	)
	if err := CheckProgram(ok); err != nil {
		t.Fatalf("valid program rejected: %v", err)
	}

	cases := map[string]struct {
		prog hir.Program
		want string
	}{
		"undefined-label": {parseProgram(t, "GOTO .L3"), "undefined label"},
		"duplicate-label": {parseProgram(t, ".L0:", ".L0:"), "defined at"},
		"temp-before-def": {parseProgram(t, "x = .t0", ".t0 = 1"), "before it is written"},
	}
	for name, c := range cases {
		err := CheckProgram(c.prog)
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: expected %q, got %v", name, c.want, err)
		}
	}
}

func TestCheckLayout(t *testing.T) {
	region := memory.Region{Start: 0, End: 4}
	good := []memory.Record{{Name: "b", Address: 1, Size: 2}, {Name: "a", Address: 0, Size: 1}}
	if err := CheckLayout(good, region); err != nil {
		t.Fatalf("valid layout rejected: %v", err)
	}
	overlap := []memory.Record{{Name: "a", Address: 0, Size: 2}, {Name: "b", Address: 1, Size: 1}}
	if err := CheckLayout(overlap, region); err == nil || !strings.Contains(err.Error(), "overlaps") {
		t.Fatalf("expected overlap, got %v", err)
	}
	outside := []memory.Record{{Name: "a", Address: 3, Size: 2}}
	if err := CheckLayout(outside, region); err == nil || !strings.Contains(err.Error(), "outside") {
		t.Fatalf("expected outside, got %v", err)
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
