package symbols

import (
	"minic/internal/diag"
)

// Table is the name-keyed symbol registry of one compilation unit.
// Iteration follows first-insertion order so every consumer is deterministic.
type Table struct {
	byName map[string]*Symbol
	order  []string
}

// NewTable builds an empty table.
func NewTable() *Table {
	return &Table{byName: make(map[string]*Symbol)}
}

// Add inserts sym, replacing any symbol with the same name (last write wins).
// A replaced symbol keeps its original position in the iteration order.
func (t *Table) Add(sym Symbol) {
	if _, ok := t.byName[sym.Name]; !ok {
		t.order = append(t.order, sym.Name)
	}
	s := sym
	t.byName[sym.Name] = &s
}

// Declare inserts sym and fails with DuplicateSymbol when the name is taken.
func (t *Table) Declare(sym Symbol) error {
	if prev, ok := t.byName[sym.Name]; ok {
		return diag.Errorf(diag.DuplicateSymbol, sym.Name, "%s already declared as %s %s", sym.Name, prev.Scope, prev.Kind)
	}
	t.Add(sym)
	return nil
}

// Get looks up a symbol by name.
func (t *Table) Get(name string) (*Symbol, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// Exists reports whether name is registered.
func (t *Table) Exists(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Len returns the number of symbols.
func (t *Table) Len() int { return len(t.order) }

// Symbols returns the symbols in insertion order.
func (t *Table) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.byName[name])
	}
	return out
}

// Export returns a name-keyed copy of every symbol for diagnostics.
func (t *Table) Export() map[string]Record {
	out := make(map[string]Record, len(t.order))
	for _, name := range t.order {
		out[name] = t.byName[name].Record()
	}
	return out
}

// Records returns the exported view in insertion order.
func (t *Table) Records() []Record {
	out := make([]Record, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.byName[name].Record())
	}
	return out
}
