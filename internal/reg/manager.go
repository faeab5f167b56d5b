package reg

import (
	"fmt"
	"slices"

	"minic/internal/diag"
)

// Target names the register file and the registers MOV may read from.
type Target struct {
	Registers       []string `toml:"registers" json:"registers"`
	SourceRegisters []string `toml:"source_registers" json:"source_registers"`
}

// DefaultTarget is A B C D with A and B as move sources.
func DefaultTarget() Target {
	return Target{
		Registers:       []string{"A", "B", "C", "D"},
		SourceRegisters: []string{"A", "B"},
	}
}

// Validate checks the source set is a non-empty subset of distinct registers.
func (t Target) Validate() error {
	if len(t.Registers) == 0 {
		return fmt.Errorf("target has no registers")
	}
	seen := make(map[string]bool, len(t.Registers))
	for _, r := range t.Registers {
		if r == "" {
			return fmt.Errorf("target has an unnamed register")
		}
		if seen[r] {
			return fmt.Errorf("register %s listed twice", r)
		}
		seen[r] = true
	}
	if len(t.SourceRegisters) == 0 {
		return fmt.Errorf("target has no source registers")
	}
	for _, r := range t.SourceRegisters {
		if !seen[r] {
			return diag.Errorf(diag.UnknownRegister, r, "source register %s is not in the register file", r)
		}
	}
	return nil
}

// Accumulator is the first source register.
func (t Target) Accumulator() string { return t.SourceRegisters[0] }

// IsRegister reports whether name is in the register file.
func (t Target) IsRegister(name string) bool { return slices.Contains(t.Registers, name) }

// IsSource reports whether name may be read by MOV.
func (t Target) IsSource(name string) bool { return slices.Contains(t.SourceRegisters, name) }

// Register is one slot of the register file.
type Register struct {
	Name      string
	Allocated bool
	Content   Content
}

func (r Register) String() string {
	if !r.Allocated {
		return r.Name + ": free"
	}
	return r.Name + ": " + r.Content.String()
}

// Manager tracks allocation state of the register file.
type Manager struct {
	target Target
	regs   []Register
	index  map[string]int
}

// NewManager builds a manager with every register free.
func NewManager(target Target) (*Manager, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		target: target,
		regs:   make([]Register, len(target.Registers)),
		index:  make(map[string]int, len(target.Registers)),
	}
	for i, name := range target.Registers {
		m.regs[i] = Register{Name: name, Content: Empty()}
		m.index[name] = i
	}
	return m, nil
}

// Target returns the register file description.
func (m *Manager) Target() Target { return m.target }

func (m *Manager) lookup(name string) (*Register, error) {
	i, ok := m.index[name]
	if !ok {
		return nil, diag.Errorf(diag.UnknownRegister, name, "no register named %s", name)
	}
	return &m.regs[i], nil
}

// Allocate marks name allocated with content. The content is validated first.
func (m *Manager) Allocate(name string, content Content) error {
	r, err := m.lookup(name)
	if err != nil {
		return err
	}
	if err := content.Validate(); err != nil {
		return err
	}
	if r.Allocated {
		return diag.Errorf(diag.RegisterBusy, name, "register %s already holds %s", name, r.Content)
	}
	r.Allocated = true
	r.Content = content
	return nil
}

// Free releases name and clears its content.
func (m *Manager) Free(name string) error {
	r, err := m.lookup(name)
	if err != nil {
		return err
	}
	r.Allocated = false
	r.Content = Empty()
	return nil
}

// FirstFree returns the first unallocated register in declaration order.
func (m *Manager) FirstFree() (Register, bool) {
	for _, r := range m.regs {
		if !r.Allocated {
			return r, true
		}
	}
	return Register{}, false
}

// Register returns a snapshot of the named register.
func (m *Manager) Register(name string) (Register, bool) {
	i, ok := m.index[name]
	if !ok {
		return Register{}, false
	}
	return m.regs[i], true
}

// Registers returns a snapshot of every register in declaration order.
func (m *Manager) Registers() []Register {
	return slices.Clone(m.regs)
}

// Allocated counts allocated registers.
func (m *Manager) Allocated() int {
	n := 0
	for _, r := range m.regs {
		if r.Allocated {
			n++
		}
	}
	return n
}
