package hir

import (
	"strconv"
	"strings"
)

// Reserved name prefixes. Both start with '.', which no C identifier can.
const (
	TempPrefix  = ".t"
	LabelPrefix = ".L"
)

// IsTemp reports whether name is a generator temporary.
func IsTemp(name string) bool { return strings.HasPrefix(name, TempPrefix) }

// IsLabel reports whether name is a generator label.
func IsLabel(name string) bool { return strings.HasPrefix(name, LabelPrefix) }

// OperandKind tells literal operands from named ones.
type OperandKind uint8

const (
	OperandInvalid OperandKind = iota
	OperandLiteral
	OperandName
)

// Operand is a literal integer or a variable/temporary name.
type Operand struct {
	Kind  OperandKind
	Value int64
	Name  string
}

// Lit builds a literal operand.
func Lit(v int64) Operand { return Operand{Kind: OperandLiteral, Value: v} }

// Name builds a named operand.
func Name(name string) Operand { return Operand{Kind: OperandName, Name: name} }

// IsLiteral reports whether o is a literal.
func (o Operand) IsLiteral() bool { return o.Kind == OperandLiteral }

// IsName reports whether o names a variable or temporary.
func (o Operand) IsName() bool { return o.Kind == OperandName }

// IsTemp reports whether o names a temporary.
func (o Operand) IsTemp() bool { return o.Kind == OperandName && IsTemp(o.Name) }

func (o Operand) String() string {
	switch o.Kind {
	case OperandLiteral:
		return strconv.FormatInt(o.Value, 10)
	case OperandName:
		return o.Name
	default:
		return "<invalid>"
	}
}

// ParseOperand reads one operand token.
func ParseOperand(tok string) (Operand, bool) {
	if v, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Lit(v), true
	}
	if validName(tok) {
		return Name(tok), true
	}
	return Operand{}, false
}

// validName accepts C identifiers and the reserved temporary/label forms.
func validName(s string) bool {
	if s == "" {
		return false
	}
	body := s
	if s[0] == '.' {
		if !IsTemp(s) && !IsLabel(s) {
			return false
		}
		body = s[2:]
		if body == "" {
			return false
		}
		for _, r := range body {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	for i, r := range body {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		case r > 0x7f:
		default:
			return false
		}
	}
	return true
}
