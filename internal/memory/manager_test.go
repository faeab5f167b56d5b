package memory

import (
	"context"
	"errors"
	"testing"

	"minic/internal/diag"
	"minic/internal/symbols"
)

func newManager(t *testing.T, region Region) *Manager {
	t.Helper()
	m, err := NewManager(region)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestCreateVariablePacksLowestAddress(t *testing.T) {
	m := newManager(t, DefaultRegion())
	g1, err := m.CreateVariable("g1", TypeChar)
	if err != nil {
		t.Fatalf("g1: %v", err)
	}
	g2, err := m.CreateVariable("g2", TypeInt)
	if err != nil {
		t.Fatalf("g2: %v", err)
	}
	if g1.Address.Value != 0x0000 || g2.Address.Value != 0x0001 {
		t.Fatalf("unexpected addresses %s %s", g1.Address, g2.Address)
	}
	if got, ok := m.VariableAt(0x0002); !ok || got != g2 {
		t.Fatalf("second byte of g2 should map to g2")
	}
	if st := m.Stats(); st.Used != 3 || st.Variables != 2 || st.Free != DefaultEnd-3 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestFreeVariableReusesHole(t *testing.T) {
	m := newManager(t, DefaultRegion())
	for _, name := range []string{"a", "b", "c"} {
		if _, err := m.CreateVariable(name, TypeInt); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if err := m.FreeVariable("b"); err != nil {
		t.Fatalf("free: %v", err)
	}
	if _, ok := m.VariableAt(0x0002); ok {
		t.Fatalf("freed bytes still mapped")
	}
	d, err := m.CreateVariable("d", TypeChar)
	if err != nil {
		t.Fatalf("d: %v", err)
	}
	if d.Address.Value != 0x0002 {
		t.Fatalf("expected d in the freed hole, got %s", d.Address)
	}
	e, err := m.CreateVariable("e", TypeInt)
	if err != nil {
		t.Fatalf("e: %v", err)
	}
	if e.Address.Value != 0x0006 {
		t.Fatalf("e does not fit the one-byte hole, expected 0x0006, got %s", e.Address)
	}
}

func TestVariablesAreDisjoint(t *testing.T) {
	m := newManager(t, Region{Start: 0x10, End: 0x40})
	types := []VariableType{TypeChar, TypeInt, TypeInt, TypeChar, TypeInt}
	for i := 0; i < 12; i++ {
		name := string(rune('a' + i))
		if _, err := m.CreateVariable(name, types[i%len(types)]); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if i%3 == 2 {
			if err := m.FreeVariable(string(rune('a' + i - 1))); err != nil {
				t.Fatalf("free: %v", err)
			}
		}
	}
	vars := m.Variables()
	for i := 1; i < len(vars); i++ {
		prev, cur := vars[i-1], vars[i]
		if prev.End() > int(cur.Address.Value) {
			t.Fatalf("%s [%s, %d) overlaps %s at %s", prev.Name, prev.Address, prev.End(), cur.Name, cur.Address)
		}
	}
	for _, v := range vars {
		if int(v.Address.Value) < 0x10 || v.End() > 0x40 {
			t.Fatalf("%s outside region", v.Name)
		}
	}
}

func TestOutOfMemory(t *testing.T) {
	m := newManager(t, Region{Start: 0, End: 3})
	if _, err := m.CreateVariable("a", TypeInt); err != nil {
		t.Fatalf("a: %v", err)
	}
	_, err := m.CreateVariable("b", TypeInt)
	if !errors.Is(err, diag.OutOfMemory) {
		t.Fatalf("expected OutOfMemory, got %v", err)
	}
	if st := m.Stats(); st.Used != 2 {
		t.Fatalf("failed allocation must not reserve bytes, used=%d", st.Used)
	}
	if addr, err := m.GetEmptyAddress(1); err != nil || addr != 2 {
		t.Fatalf("last byte should still be free: %d %v", addr, err)
	}
}

func TestGetEmptyAddressAtomic(t *testing.T) {
	m := newManager(t, Region{Start: 0, End: 8})
	if _, err := m.GetEmptyAddress(3); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	addr, err := m.GetEmptyAddress(5)
	if err != nil || addr != 3 {
		t.Fatalf("expected 3, got %d %v", addr, err)
	}
	if _, err := m.GetEmptyAddress(1); !errors.Is(err, diag.OutOfMemory) {
		t.Fatalf("expected OutOfMemory, got %v", err)
	}
	if _, err := m.GetEmptyAddress(0); !errors.Is(err, diag.InvalidSize) {
		t.Fatalf("expected InvalidSize, got %v", err)
	}
}

func TestDuplicateAndUnknownVariable(t *testing.T) {
	m := newManager(t, DefaultRegion())
	if _, err := m.CreateVariable("x", TypeChar); err != nil {
		t.Fatalf("x: %v", err)
	}
	if _, err := m.CreateVariable("x", TypeInt); !errors.Is(err, diag.DuplicateVariable) {
		t.Fatalf("expected DuplicateVariable, got %v", err)
	}
	if err := m.FreeVariable("y"); !errors.Is(err, diag.UnknownVariable) {
		t.Fatalf("expected UnknownVariable, got %v", err)
	}
}

func TestLoadSymbolTable(t *testing.T) {
	table := symbols.NewTable()
	table.Add(symbols.Symbol{Name: "g1", Kind: symbols.SymbolVariable, Type: symbols.TypeChar})
	table.Add(symbols.Symbol{Name: "f", Kind: symbols.SymbolFunction, Type: symbols.TypeInt})
	table.Add(symbols.Symbol{Name: "local", Kind: symbols.SymbolVariable, Type: symbols.TypeInt, Scope: symbols.ScopeLocal})
	table.Add(symbols.Symbol{Name: "g2", Kind: symbols.SymbolVariable, Type: symbols.TypeInt})

	m := newManager(t, DefaultRegion())
	if err := m.LoadSymbolTable(context.Background(), table); err != nil {
		t.Fatalf("load: %v", err)
	}
	vars := m.Variables()
	if len(vars) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(vars))
	}
	if vars[0].Name != "g1" || vars[0].Address.Value != 0 || vars[1].Name != "g2" || vars[1].Address.Value != 1 {
		t.Fatalf("unexpected layout %+v %+v", vars[0].Record(), vars[1].Record())
	}
	for _, v := range vars {
		if v.Scope != symbols.ScopeGlobal || v.Record().Scope != "global" {
			t.Fatalf("%s: unexpected scope %s", v.Name, v.Scope)
		}
	}
}

func TestCreateScopedVariable(t *testing.T) {
	m := newManager(t, DefaultRegion())
	v, err := m.CreateScopedVariable("tmp", TypeChar, symbols.ScopeLocal)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec := v.Record(); rec.Scope != "local" || rec.Address != 0 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestLoadSymbolTableUnsupportedType(t *testing.T) {
	table := symbols.NewTable()
	table.Add(symbols.Symbol{Name: "ratio", Kind: symbols.SymbolVariable, Type: symbols.TypeFloat})
	m := newManager(t, DefaultRegion())
	if err := m.LoadSymbolTable(context.Background(), table); !errors.Is(err, diag.UnsupportedType) {
		t.Fatalf("expected UnsupportedType, got %v", err)
	}
}

func TestRegionValidate(t *testing.T) {
	if _, err := NewManager(Region{Start: -1, End: 4}); err == nil {
		t.Fatalf("negative start accepted")
	}
	if _, err := NewManager(Region{Start: 8, End: 4}); err == nil {
		t.Fatalf("inverted region accepted")
	}
	if _, err := NewManager(Region{Start: 0, End: 1 << 17}); err == nil {
		t.Fatalf("oversized region accepted")
	}
}
