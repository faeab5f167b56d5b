// Package lir is the register-level IR and the lowering from HIR.
package lir

import (
	"fmt"
	"strconv"
	"strings"

	"minic/internal/diag"
	"minic/internal/reg"
)

// VariablePrefix marks a memory-variable destination in MOV.
const VariablePrefix = "var:"

// InstrKind enumerates LIR instruction variants.
type InstrKind uint8

const (
	// InstrLoadImmediate is "LDI v": load v into the accumulator.
	InstrLoadImmediate InstrKind = iota
	// InstrMove is "MOV dest src".
	InstrMove
)

func (k InstrKind) String() string {
	switch k {
	case InstrLoadImmediate:
		return "LDI"
	case InstrMove:
		return "MOV"
	default:
		return "invalid"
	}
}

// DestKind tells register destinations from memory ones.
type DestKind uint8

const (
	DestRegister DestKind = iota
	DestVariable
)

// Dest is a MOV destination.
type Dest struct {
	Kind DestKind
	Name string
}

// ToVariable targets the storage of a variable.
func ToVariable(name string) Dest { return Dest{Kind: DestVariable, Name: name} }

// ToRegister targets a register.
func ToRegister(name string) Dest { return Dest{Kind: DestRegister, Name: name} }

func (d Dest) String() string {
	if d.Kind == DestVariable {
		return VariablePrefix + d.Name
	}
	return d.Name
}

// Instr is one LIR instruction.
type Instr struct {
	Kind  InstrKind
	Value int64  // LDI
	Dest  Dest   // MOV
	Src   string // MOV, always a source register
}

// LoadImmediate builds "LDI v". Any integer is accepted; only the register
// bookkeeping is limited to [1, reg.MaxValue].
func LoadImmediate(v int64) Instr {
	return Instr{Kind: InstrLoadImmediate, Value: v}
}

// Move builds "MOV dest src" for target.
func Move(dest Dest, src string, target reg.Target) (Instr, error) {
	in := Instr{Kind: InstrMove, Dest: dest, Src: src}
	if !target.IsSource(src) {
		return Instr{}, diag.Errorf(diag.InvalidInstructionForm, in.String(), "%s is not a source register", src)
	}
	switch dest.Kind {
	case DestRegister:
		if !target.IsRegister(dest.Name) {
			return Instr{}, diag.Errorf(diag.InvalidInstructionForm, in.String(), "%s is not a register", dest.Name)
		}
	case DestVariable:
		if dest.Name == "" {
			return Instr{}, diag.Errorf(diag.InvalidInstructionForm, in.String(), "variable destination has no name")
		}
	}
	return in, nil
}

func (in Instr) String() string {
	switch in.Kind {
	case InstrLoadImmediate:
		return "LDI " + strconv.FormatInt(in.Value, 10)
	case InstrMove:
		return fmt.Sprintf("MOV %s %s", in.Dest, in.Src)
	}
	return "<invalid>"
}

// Program is an LIR instruction sequence.
type Program []Instr

// Lines renders each instruction in its text form.
func (p Program) Lines() []string {
	out := make([]string, len(p))
	for i := range p {
		out[i] = p[i].String()
	}
	return out
}

func (p Program) String() string { return strings.Join(p.Lines(), "\n") }

// Parse reads "LDI v" or "MOV dest src" for target.
func Parse(line string, target reg.Target) (Instr, error) {
	f := strings.Fields(line)
	bad := func(why string) (Instr, error) {
		return Instr{}, diag.Errorf(diag.InvalidInstructionForm, strings.TrimSpace(line), "%s", why)
	}
	switch {
	case len(f) == 2 && f[0] == "LDI":
		v, err := strconv.ParseInt(f[1], 10, 64)
		if err != nil {
			return bad("immediate is not an integer")
		}
		return LoadImmediate(v), nil
	case len(f) == 3 && f[0] == "MOV":
		dest := ToRegister(f[1])
		if name, ok := strings.CutPrefix(f[1], VariablePrefix); ok {
			dest = ToVariable(name)
		}
		return Move(dest, f[2], target)
	}
	return bad("unrecognized instruction")
}

// ParseLines parses one instruction per non-blank line.
func ParseLines(lines []string, target reg.Target) (Program, error) {
	out := make(Program, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		in, err := Parse(line, target)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, in)
	}
	return out, nil
}
