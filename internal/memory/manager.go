package memory

import (
	"context"
	"fmt"
	"sort"

	"fortio.org/safecast"

	"minic/internal/diag"
	"minic/internal/symbols"
	"minic/internal/trace"
)

const (
	DefaultStart = 0x0000
	DefaultEnd   = 0x00FF
)

// Region is the half-open static address range [Start, End).
type Region struct {
	Start int
	End   int
}

// DefaultRegion returns the default static region.
func DefaultRegion() Region {
	return Region{Start: DefaultStart, End: DefaultEnd}
}

// Size returns the region size in bytes.
func (r Region) Size() int { return r.End - r.Start }

// Validate checks the bounds fit the 16-bit address space.
func (r Region) Validate() error {
	if _, err := safecast.Conv[uint16](r.Start); err != nil {
		return fmt.Errorf("memory region start %d: %w", r.Start, err)
	}
	if r.End < r.Start || r.End > 1<<16 {
		return fmt.Errorf("memory region [%d, %d) is not a valid 16-bit range", r.Start, r.End)
	}
	return nil
}

// Stats summarizes region occupancy.
type Stats struct {
	Size      int `json:"size" msgpack:"size"`
	Used      int `json:"used" msgpack:"used"`
	Free      int `json:"free" msgpack:"free"`
	Variables int `json:"variables" msgpack:"variables"`
}

// Manager assigns static addresses to variables.
//
// Every reserved byte is tracked in used. Bytes owned by a variable point at
// it; bytes reserved with GetEmptyAddress map to nil.
type Manager struct {
	region Region
	byName map[string]*Variable
	used   map[uint16]*Variable
}

// NewManager builds a manager over region.
func NewManager(region Region) (*Manager, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		region: region,
		byName: make(map[string]*Variable),
		used:   make(map[uint16]*Variable),
	}, nil
}

// Region returns the managed range.
func (m *Manager) Region() Region { return m.region }

// GetEmptyAddress reserves size contiguous bytes at the lowest free address.
// The reservation is all-or-nothing.
func (m *Manager) GetEmptyAddress(size int) (uint16, error) {
	addr, err := m.find(size)
	if err != nil {
		return 0, err
	}
	m.reserve(addr, size, nil)
	return addr, nil
}

func (m *Manager) find(size int) (uint16, error) {
	if size <= 0 {
		return 0, diag.Errorf(diag.InvalidSize, "", "cannot reserve %d bytes", size)
	}
	for start := m.region.Start; start <= m.region.End-size; start++ {
		free, skip := m.runFree(start, size)
		if free {
			return safecast.Conv[uint16](start)
		}
		start += skip
	}
	return 0, diag.Errorf(diag.OutOfMemory, "", "no run of %d free bytes in [0x%04X, 0x%04X)", size, m.region.Start, m.region.End)
}

// runFree reports whether [start, start+size) is unreserved. When it is not,
// skip is the offset of the last reserved byte so the scan can jump past it.
func (m *Manager) runFree(start, size int) (bool, int) {
	for off := size - 1; off >= 0; off-- {
		if _, taken := m.used[uint16(start+off)]; taken {
			return false, off
		}
	}
	return true, 0
}

func (m *Manager) reserve(addr uint16, size int, owner *Variable) {
	for off := 0; off < size; off++ {
		m.used[addr+uint16(off)] = owner
	}
}

// CreateVariable places a new static variable in global scope.
func (m *Manager) CreateVariable(name string, typ VariableType) (*Variable, error) {
	return m.CreateScopedVariable(name, typ, symbols.ScopeGlobal)
}

// CreateScopedVariable places a new static variable tagged with scope.
func (m *Manager) CreateScopedVariable(name string, typ VariableType, scope symbols.Scope) (*Variable, error) {
	if _, ok := m.byName[name]; ok {
		return nil, diag.Errorf(diag.DuplicateVariable, name, "variable %s already has storage", name)
	}
	size := typ.Size()
	if size == 0 {
		return nil, diag.Errorf(diag.UnsupportedType, name, "variable %s has no storage type", name)
	}
	addr, err := m.find(size)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", name, err)
	}
	v := &Variable{Name: name, Type: typ, Address: Address{Value: addr, Kind: AddressStatic}, Scope: scope}
	m.reserve(addr, size, v)
	m.byName[name] = v
	return v, nil
}

// FreeVariable releases a variable and every byte it occupied.
func (m *Manager) FreeVariable(name string) error {
	v, ok := m.byName[name]
	if !ok {
		return diag.Errorf(diag.UnknownVariable, name, "variable %s has no storage", name)
	}
	for off := 0; off < v.Type.Size(); off++ {
		delete(m.used, v.Address.Value+uint16(off))
	}
	delete(m.byName, name)
	return nil
}

// Variable looks up a variable by name.
func (m *Manager) Variable(name string) (*Variable, bool) {
	v, ok := m.byName[name]
	return v, ok
}

// VariableAt returns the variable occupying addr, if any.
func (m *Manager) VariableAt(addr uint16) (*Variable, bool) {
	v := m.used[addr]
	return v, v != nil
}

// Variables returns every variable sorted by address.
func (m *Manager) Variables() []*Variable {
	out := make([]*Variable, 0, len(m.byName))
	for _, v := range m.byName {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address.Value < out[j].Address.Value
	})
	return out
}

// Stats reports region occupancy.
func (m *Manager) Stats() Stats {
	size := m.region.Size()
	return Stats{
		Size:      size,
		Used:      len(m.used),
		Free:      size - len(m.used),
		Variables: len(m.byName),
	}
}

// LoadSymbolTable places every global variable of table in insertion order.
func (m *Manager) LoadSymbolTable(ctx context.Context, table *symbols.Table) error {
	tr := trace.FromContext(ctx)
	for _, sym := range table.Symbols() {
		if sym.Kind != symbols.SymbolVariable || sym.Scope != symbols.ScopeGlobal {
			continue
		}
		typ, err := TypeOf(sym.Type)
		if err != nil {
			return fmt.Errorf("symbol %s: %w", sym.Name, err)
		}
		v, err := m.CreateScopedVariable(sym.Name, typ, sym.Scope)
		if err != nil {
			return err
		}
		trace.Point(tr, trace.ScopeInstr, "memory.place", fmt.Sprintf("%s %s @ %s", v.Type, v.Name, v.Address))
	}
	return nil
}
