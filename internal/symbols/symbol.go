package symbols

import (
	"strings"

	"minic/internal/diag"
)

// SymbolKind classifies what a name denotes.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolVariable
	SymbolFunction
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolFunction:
		return "function"
	default:
		return "invalid"
	}
}

// Type is the declared base type of a symbol.
type Type uint8

const (
	TypeInvalid Type = iota
	TypeInt
	TypeFloat
	TypeChar
	TypeVoid
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeChar:
		return "char"
	case TypeVoid:
		return "void"
	default:
		return "invalid"
	}
}

// ParseType maps a type spelling from the tree to a Type.
func ParseType(name string) (Type, error) {
	switch strings.TrimSpace(name) {
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "char":
		return TypeChar, nil
	case "void":
		return TypeVoid, nil
	}
	return TypeInvalid, diag.Errorf(diag.UnsupportedType, name, "type %q has no symbol mapping", name)
}

// Scope is the storage scope of a symbol.
type Scope uint8

const (
	ScopeGlobal Scope = iota
	ScopeLocal
)

func (s Scope) String() string {
	if s == ScopeLocal {
		return "local"
	}
	return "global"
}

// Qualifier is an optional type qualifier.
type Qualifier uint8

const (
	QualNone Qualifier = iota
	QualConst
	QualVolatile
)

func (q Qualifier) String() string {
	switch q {
	case QualConst:
		return "const"
	case QualVolatile:
		return "volatile"
	default:
		return ""
	}
}

// QualifierOf reads a declaration's qualifier list. const wins over volatile.
func QualifierOf(quals []string) Qualifier {
	q := QualNone
	for _, s := range quals {
		switch strings.TrimSpace(s) {
		case "const":
			return QualConst
		case "volatile":
			q = QualVolatile
		}
	}
	return q
}

// Symbol is one named entity.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Type      Type
	Scope     Scope
	Qualifier Qualifier
}

// IsVolatile reports whether reads and writes of the symbol must be kept.
func (s *Symbol) IsVolatile() bool {
	return s != nil && s.Qualifier == QualVolatile
}

// Record is the exported, serialisable view of a Symbol.
type Record struct {
	Name      string `json:"name" msgpack:"name"`
	Kind      string `json:"kind" msgpack:"kind"`
	Type      string `json:"type" msgpack:"type"`
	Scope     string `json:"scope" msgpack:"scope"`
	Qualifier string `json:"qualifier,omitempty" msgpack:"qualifier,omitempty"`
}

// Record returns the exported view.
func (s *Symbol) Record() Record {
	return Record{
		Name:      s.Name,
		Kind:      s.Kind.String(),
		Type:      s.Type.String(),
		Scope:     s.Scope.String(),
		Qualifier: s.Qualifier.String(),
	}
}
