package opt_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"minic/internal/ast"
	"minic/internal/diag"
	"minic/internal/hir"
	"minic/internal/opt"
	"minic/internal/symbols"
	"minic/internal/testkit"
)

func table(names ...string) *symbols.Table {
	tab := symbols.NewTable()
	for _, n := range names {
		q := symbols.QualNone
		if strings.HasPrefix(n, "v_") {
			q = symbols.QualVolatile
		}
		tab.Add(symbols.Symbol{Name: n, Kind: symbols.SymbolVariable, Type: symbols.TypeInt, Qualifier: q})
	}
	return tab
}

func expect(t *testing.T, got hir.Program, want ...string) {
	t.Helper()
	if strings.Join(got.Lines(), "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected program\n got: %q\nwant: %q", got.Lines(), want)
	}
}

func TestFuseTemporaries(t *testing.T) {
	out, n := opt.FuseTemporaries(context.Background(), parseProgram(t, ".t0 = a + 1", "b = .t0"))
	expect(t, out, "b = a + 1")
	if n != 1 {
		t.Fatalf("expected 1 fusion, got %d", n)
	}
}

func TestFuseRequiresExactPattern(t *testing.T) {
	tests := [][]string{
		// temporary read twice
		{".t0 = a + 1", "b = .t0", "c = .t0 * 2"},
		// next instruction copies something else
		{".t0 = a + 1", "b = a"},
		// not adjacent
		{".t0 = a + 1", "c = 2", "b = .t0"},
		// conditional results are not fused
		{".t0 = a < 1", "b = .t0"},
		// target is not a temporary
		{"x = a + 1", "b = x"},
	}
	for _, lines := range tests {
		in := parseProgram(t, lines...)
		out, n := opt.FuseTemporaries(context.Background(), in)
		if n != 0 {
			t.Errorf("%q: unexpected fusion", lines)
		}
		expect(t, out, lines...)
	}
}

func TestFuseSinglePass(t *testing.T) {
	in := parseProgram(t,
		".t0 = a + 1",
		".t1 = .t0",
		".t2 = b * 2",
		"y = .t2",
	)
	out, n := opt.FuseTemporaries(context.Background(), in)
	expect(t, out, ".t1 = a + 1", "y = b * 2")
	if n != 2 {
		t.Fatalf("expected 2 fusions, got %d", n)
	}
}

func TestPropagateStatic(t *testing.T) {
	in := parseProgram(t, "x = 10", "y = x + 1")
	out, names, err := opt.Propagate(context.Background(), in, table("x", "y"))
	if err != nil {
		t.Fatalf("propagate: %v", err)
	}
	expect(t, out, "y = 10 + 1")
	if len(names) != 1 || names[0] != "x" {
		t.Fatalf("unexpected propagated names %v", names)
	}
	folded, n := opt.Fold(context.Background(), out)
	expect(t, folded, "y = 11")
	if n != 1 {
		t.Fatalf("expected 1 fold, got %d", n)
	}
}

func TestPropagateDoesNotMutateInput(t *testing.T) {
	in := parseProgram(t, "x = 10", "y = x + 1")
	before := in.String()
	if _, _, err := opt.Propagate(context.Background(), in, table("x", "y")); err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if in.String() != before {
		t.Fatalf("input changed:\n%s", in)
	}
}

func TestPropagateSkips(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"volatile", []string{"v_x = 10", "y = v_x + 1"}},
		{"redefined", []string{"x = 10", "y = x + 1", "x = 3"}},
		{"redefined by arith", []string{"x = 10", "x = x + 1"}},
		{"bypassed by jump", []string{"IF c GOTO .L0", "x = 10", ".L0:", "y = x + 1"}},
		{"temporary", []string{".t0 = 1", "y = .t0 + 1"}},
		{"not literal", []string{"x = c", "y = x + 1"}},
	}
	for _, tt := range tests {
		in := parseProgram(t, tt.lines...)
		out, names, err := opt.Propagate(context.Background(), in, table("x", "y", "c", "v_x"))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if len(names) != 0 {
			t.Errorf("%s: propagated %v", tt.name, names)
		}
		expect(t, out, tt.lines...)
	}
}

func TestPropagateInsideBranch(t *testing.T) {
	// The only jump comes after the definition, so every use below it
	// still sees the value.
	in := parseProgram(t,
		"x = 4",
		".t0 = a <= 1",
		"IF .t0 GOTO .L0",
		"b = x + 1",
		".L0:",
	)
	out, _, err := opt.Propagate(context.Background(), in, table("x", "a", "b"))
	if err != nil {
		t.Fatalf("propagate: %v", err)
	}
	expect(t, out, ".t0 = a <= 1", "IF .t0 GOTO .L0", "b = 4 + 1", ".L0:")
}

func TestPropagateChains(t *testing.T) {
	in := parseProgram(t, "x = 10", "y = x", "z = y * 2")
	out, names, err := opt.Propagate(context.Background(), in, table("x", "y", "z"))
	if err != nil {
		t.Fatalf("propagate: %v", err)
	}
	expect(t, out, "z = 10 * 2")
	if strings.Join(names, ",") != "x,y" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestPropagateIdempotent(t *testing.T) {
	programs := [][]string{
		{"x = 10", "y = x + 1"},
		{"x = 10", "y = x", "z = y * 2", "IF z GOTO .L0", "w = 1", ".L0:"},
		{"v_x = 1", "a = v_x + 2", "a = 3"},
		{"x = 1", "IF c GOTO .L0", "y = 2", ".L0:", "z = x + y"},
	}
	tab := table("x", "y", "z", "w", "a", "c", "v_x")
	for _, lines := range programs {
		once, _, err := opt.Propagate(context.Background(), parseProgram(t, lines...), tab)
		if err != nil {
			t.Fatalf("%q: %v", lines, err)
		}
		twice, names, err := opt.Propagate(context.Background(), once, tab)
		if err != nil {
			t.Fatalf("%q: %v", lines, err)
		}
		if once.String() != twice.String() || len(names) != 0 {
			t.Fatalf("%q: not idempotent\nonce:\n%s\ntwice:\n%s", lines, once, twice)
		}
	}
}

func TestPropagateUnknownSymbol(t *testing.T) {
	_, _, err := opt.Propagate(context.Background(), parseProgram(t, "ghost = 1"), table())
	if !errors.Is(err, diag.UnknownSymbol) {
		t.Fatalf("expected UnknownSymbol, got %v", err)
	}
}

func TestFoldKeepsSymbolic(t *testing.T) {
	out, n := opt.Fold(context.Background(), parseProgram(t, "x = 1 << -1", "y = a + 1", "z = 3 < 4"))
	expect(t, out, "x = 1 << -1", "y = a + 1", "z = 1")
	if n != 1 {
		t.Fatalf("expected 1 fold, got %d", n)
	}
}

func TestOptimizeFromTree(t *testing.T) {
	file := &ast.File{Items: []ast.Item{
		&ast.Decl{Name: "x", Type: "int", Init: ast.Int(10)},
		&ast.FuncDef{Name: "main", Type: "int", Body: []ast.Stmt{
			&ast.Decl{Name: "y", Type: "int"},
			&ast.Assign{Target: "y", Op: "=", Value: ast.Bin(ast.Id("x"), "+", ast.Id("a"))},
		}},
	}}
	ctx := context.Background()
	tab, err := symbols.Build(ctx, file, symbols.BuildOptions{})
	if err != nil {
		t.Fatalf("symbols: %v", err)
	}
	prog, err := hir.Generate(ctx, file, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	expect(t, prog, "x = 10", ".t0 = x + a", "y = .t0")

	out, rep, err := opt.Optimize(ctx, prog, tab, opt.DefaultOptions())
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	expect(t, out, "y = 10 + a")
	if rep.Before != 3 || rep.After != 1 || rep.Fused != 1 || rep.Folded != 0 || len(rep.Propagated) != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestOptimizeSelectedPasses(t *testing.T) {
	prog := parseProgram(t, "x = 10", "y = x + 1")
	out, rep, err := opt.Optimize(context.Background(), prog, table("x", "y"), opt.Options{Fold: true})
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	expect(t, out, "x = 10", "y = x + 1")
	if rep.Folded != 0 || rep.Propagated != nil {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestOptimizedBranchesStayWellFormed(t *testing.T) {
	file := &ast.File{Items: []ast.Item{
		&ast.FuncDef{Name: "main", Type: "int", Body: []ast.Stmt{
			&ast.Decl{Name: "a", Type: "int", Init: ast.Int(3)},
			&ast.Decl{Name: "b", Type: "int"},
			&ast.If{
				Cond:    ast.Bin(ast.Id("a"), "<", ast.Int(5)),
				Then:    []ast.Stmt{&ast.Assign{Target: "b", Op: "=", Value: ast.Bin(ast.Id("a"), "*", ast.Int(2))}},
				Else:    []ast.Stmt{&ast.Assign{Target: "b", Op: "+=", Value: ast.Int(1)}},
				HasElse: true,
			},
		}},
	}}
	ctx := context.Background()
	tab, err := symbols.Build(ctx, file, symbols.BuildOptions{})
	if err != nil {
		t.Fatalf("symbols: %v", err)
	}
	prog, err := hir.Generate(ctx, file, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := testkit.CheckProgram(prog); err != nil {
		t.Fatalf("generated program: %v", err)
	}
	out, _, err := opt.Optimize(ctx, prog, tab, opt.DefaultOptions())
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if err := testkit.CheckProgram(out); err != nil {
		t.Fatalf("optimized program: %v\n%s", err, out)
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
