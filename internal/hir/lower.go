package hir

import (
	"context"
	"fmt"
	"strings"

	"minic/internal/ast"
	"minic/internal/diag"
	"minic/internal/trace"
)

// EntryFunction is the only function whose body is lowered.
const EntryFunction = "main"

// Generate lowers the top-level declarations and the body of main into a
// flat program. Constant subexpressions fold as they are lowered. namer may
// be nil, in which case a fresh one is used.
func Generate(ctx context.Context, file *ast.File, namer *Namer) (Program, error) {
	if namer == nil {
		namer = NewNamer()
	}
	g := &generator{namer: namer, tr: trace.FromContext(ctx)}
	span := trace.Begin(g.tr, trace.ScopePass, "hir.generate", trace.CurrentSpan(ctx))
	for _, item := range file.Items {
		if err := ctx.Err(); err != nil {
			span.End("canceled")
			return nil, err
		}
		if err := g.item(item); err != nil {
			span.End("error")
			return nil, err
		}
	}
	temps, labels := namer.Counts()
	span.WithExtra("temps", fmt.Sprint(temps)).WithExtra("labels", fmt.Sprint(labels))
	span.End(fmt.Sprintf("%d instructions", len(g.out)))
	return g.out, nil
}

// generator holds the state of one lowering run.
type generator struct {
	namer *Namer
	tr    trace.Tracer
	out   Program
}

func (g *generator) emit(in Instr) {
	g.out = append(g.out, in)
	trace.Point(g.tr, trace.ScopeInstr, "hir.emit", in.String())
}

func unsupported(n ast.Node, format string, args ...any) error {
	kind := ast.KindOf(n)
	msg := fmt.Sprintf(format, args...)
	return diag.Errorf(diag.UnsupportedNode, kind, "%s at %s", msg, n.Position())
}

func (g *generator) item(item ast.Item) error {
	switch it := item.(type) {
	case *ast.Decl:
		return g.decl(it)
	case *ast.FuncDef:
		if it.Name != EntryFunction {
			trace.Point(g.tr, trace.ScopePass, "hir.skip_function", it.Name)
			return nil
		}
		return g.stmts(it.Body)
	}
	return unsupported(item, "no lowering for top-level %s", ast.KindOf(item))
}

func (g *generator) decl(d *ast.Decl) error {
	if d.Init == nil {
		return nil
	}
	v, err := g.expr(d.Init)
	if err != nil {
		return err
	}
	g.emit(Assign(d.Name, v))
	return nil
}

func (g *generator) stmts(items []ast.Stmt) error {
	for _, s := range items {
		if err := g.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) stmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.Decl:
		return g.decl(s)
	case *ast.Assign:
		return g.assign(s)
	case *ast.If:
		return g.ifStmt(s)
	case *ast.Block:
		return g.stmts(s.Items)
	case *ast.ExprStmt:
		_, err := g.expr(s.X)
		return err
	}
	return unsupported(s, "no lowering for statement %s", ast.KindOf(s))
}

func (g *generator) assign(a *ast.Assign) error {
	v, err := g.expr(a.Value)
	if err != nil {
		return err
	}
	if a.Op == "" || a.Op == "=" {
		g.emit(Assign(a.Target, v))
		return nil
	}
	op, ok := ParseOp(strings.TrimSuffix(a.Op, "="))
	if !strings.HasSuffix(a.Op, "=") || !ok || !op.IsArithmetic() {
		return unsupported(a, "no lowering for assignment operator %q", a.Op)
	}
	g.emit(Arith(a.Target, Name(a.Target), op, v))
	return nil
}

// ifStmt lowers
//
//	IF !cond GOTO else; then...; [GOTO end;] else:; [else...; end:]
func (g *generator) ifStmt(s *ast.If) error {
	test, err := g.negatedTest(s.Cond)
	if err != nil {
		return err
	}
	elseLabel := g.namer.Label()
	g.emit(IfGoto(test, elseLabel))
	if err := g.stmts(s.Then); err != nil {
		return err
	}
	if !s.HasElse {
		g.emit(Label(elseLabel))
		return nil
	}
	endLabel := g.namer.Label()
	g.emit(Goto(endLabel))
	g.emit(Label(elseLabel))
	if err := g.stmts(s.Else); err != nil {
		return err
	}
	g.emit(Label(endLabel))
	return nil
}

// negatedTest stores the negation of cond in a fresh temporary. Comparisons
// are inverted; any other condition c becomes c == 0.
func (g *generator) negatedTest(cond ast.Expr) (Operand, error) {
	var left, right Operand
	op := OpEq
	if bin, ok := cond.(*ast.Binary); ok {
		if cmp, known := ParseOp(bin.Op); known && cmp.IsComparison() {
			l, err := g.expr(bin.Left)
			if err != nil {
				return Operand{}, err
			}
			r, err := g.expr(bin.Right)
			if err != nil {
				return Operand{}, err
			}
			op, _ = cmp.Invert()
			left, right = l, r
		}
	}
	if left.Kind == OperandInvalid {
		c, err := g.expr(cond)
		if err != nil {
			return Operand{}, err
		}
		left, right = c, Lit(0)
	}
	t := g.namer.Temp()
	if left.IsLiteral() && right.IsLiteral() {
		v, _ := op.Eval(left.Value, right.Value)
		g.emit(Assign(t, Lit(v)))
	} else {
		g.emit(Cond(t, left, op, right))
	}
	return Name(t), nil
}

func (g *generator) expr(e ast.Expr) (Operand, error) {
	switch e := e.(type) {
	case *ast.Const:
		v, err := e.IntValue()
		if err != nil {
			return Operand{}, unsupported(e, "constant %s: %v", e.Value, err)
		}
		return Lit(v), nil
	case *ast.Ident:
		return Name(e.Name), nil
	case *ast.Binary:
		return g.binary(e)
	case *ast.Unary:
		return g.unary(e)
	case *ast.ExprList:
		if len(e.Exprs) == 0 {
			return Operand{}, unsupported(e, "empty expression list")
		}
		var last Operand
		for _, x := range e.Exprs {
			v, err := g.expr(x)
			if err != nil {
				return Operand{}, err
			}
			last = v
		}
		return last, nil
	case *ast.Call:
		return Operand{}, unsupported(e, "call to %s is not supported", e.Name)
	case nil:
		return Operand{}, diag.Errorf(diag.UnsupportedNode, "<nil>", "missing expression")
	}
	return Operand{}, unsupported(e, "no lowering for expression %s", ast.KindOf(e))
}

func (g *generator) binary(e *ast.Binary) (Operand, error) {
	op, ok := ParseOp(e.Op)
	if !ok {
		return Operand{}, unsupported(e, "unknown operator %q", e.Op)
	}
	l, err := g.expr(e.Left)
	if err != nil {
		return Operand{}, err
	}
	r, err := g.expr(e.Right)
	if err != nil {
		return Operand{}, err
	}
	if l.IsLiteral() && r.IsLiteral() {
		if v, ok := op.Eval(l.Value, r.Value); ok {
			return Lit(v), nil
		}
	}
	t := g.namer.Temp()
	g.emit(Binary(t, l, op, r))
	return Name(t), nil
}

func (g *generator) unary(e *ast.Unary) (Operand, error) {
	x, err := g.expr(e.X)
	if err != nil {
		return Operand{}, err
	}
	var in func(t string) Instr
	var fold func(v int64) int64
	switch e.Op {
	case "+":
		return x, nil
	case "-":
		in = func(t string) Instr { return Arith(t, Lit(0), OpSub, x) }
		fold = func(v int64) int64 { return -v }
	case "~":
		in = func(t string) Instr { return Arith(t, x, OpXor, Lit(-1)) }
		fold = func(v int64) int64 { return ^v }
	case "!":
		in = func(t string) Instr { return Cond(t, x, OpEq, Lit(0)) }
		fold = func(v int64) int64 { return boolInt(v == 0) }
	default:
		return Operand{}, unsupported(e, "unary operator %q is not supported", e.Op)
	}
	if x.IsLiteral() {
		return Lit(fold(x.Value)), nil
	}
	t := g.namer.Temp()
	g.emit(in(t))
	return Name(t), nil
}
