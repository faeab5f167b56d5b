package symbols

import (
	"context"
	"fmt"

	"minic/internal/ast"
	"minic/internal/trace"
)

// MainFunction is the entry point whose declarations live in global scope.
const MainFunction = "main"

// BuildOptions tunes table construction.
type BuildOptions struct {
	// Strict rejects a second declaration of a name with DuplicateSymbol
	// instead of letting the last declaration win.
	Strict bool
}

type builder struct {
	table *Table
	opts  BuildOptions
	tr    trace.Tracer
}

// Build walks the tree and registers every declaration:
// top-level declarations are global variables, declarations inside main are
// global, declarations inside any other function are local, and every
// function except main gets a function symbol typed by its return type.
func Build(ctx context.Context, file *ast.File, opts BuildOptions) (*Table, error) {
	b := &builder{table: NewTable(), opts: opts, tr: trace.FromContext(ctx)}
	for _, item := range file.Items {
		switch it := item.(type) {
		case *ast.Decl:
			if err := b.declare(it, ScopeGlobal); err != nil {
				return nil, err
			}
		case *ast.FuncDef:
			if err := b.function(it); err != nil {
				return nil, err
			}
		}
	}
	return b.table, nil
}

func (b *builder) function(fn *ast.FuncDef) error {
	scope := ScopeLocal
	if fn.Name == MainFunction {
		scope = ScopeGlobal
	}
	if err := b.body(fn.Body, scope); err != nil {
		return fmt.Errorf("function %s: %w", fn.Name, err)
	}
	if fn.Name == MainFunction {
		return nil
	}
	typ, err := ParseType(fn.Type)
	if err != nil {
		return fmt.Errorf("function %s at %s: %w", fn.Name, fn.Pos, err)
	}
	return b.add(Symbol{Name: fn.Name, Kind: SymbolFunction, Type: typ, Scope: ScopeGlobal})
}

func (b *builder) body(items []ast.Stmt, scope Scope) error {
	for _, item := range items {
		switch s := item.(type) {
		case *ast.Decl:
			if err := b.declare(s, scope); err != nil {
				return err
			}
		case *ast.Block:
			if err := b.body(s.Items, scope); err != nil {
				return err
			}
		case *ast.If:
			if err := b.body(s.Then, scope); err != nil {
				return err
			}
			if err := b.body(s.Else, scope); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) declare(d *ast.Decl, scope Scope) error {
	typ, err := ParseType(d.Type)
	if err != nil {
		return fmt.Errorf("declaration of %s at %s: %w", d.Name, d.Pos, err)
	}
	return b.add(Symbol{
		Name:      d.Name,
		Kind:      SymbolVariable,
		Type:      typ,
		Scope:     scope,
		Qualifier: QualifierOf(d.Quals),
	})
}

func (b *builder) add(sym Symbol) error {
	if b.opts.Strict {
		if err := b.table.Declare(sym); err != nil {
			return err
		}
	} else {
		if b.table.Exists(sym.Name) {
			trace.Point(b.tr, trace.ScopeInstr, "symbols.overwrite", sym.Name)
		}
		b.table.Add(sym)
	}
	trace.Point(b.tr, trace.ScopeInstr, "symbols.add", fmt.Sprintf("%s %s %s %s", sym.Scope, sym.Kind, sym.Type, sym.Name))
	return nil
}
