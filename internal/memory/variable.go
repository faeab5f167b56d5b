package memory

import (
	"fmt"

	"minic/internal/diag"
	"minic/internal/symbols"
)

// VariableType is a storage type with a fixed byte size.
type VariableType uint8

const (
	TypeInvalid VariableType = iota
	TypeChar                 // 1 byte, unsigned
	TypeInt                  // 2 bytes, signed
)

// Size returns the storage size in bytes.
func (t VariableType) Size() int {
	switch t {
	case TypeChar:
		return 1
	case TypeInt:
		return 2
	default:
		return 0
	}
}

// Signed reports whether values of the type are signed.
func (t VariableType) Signed() bool { return t == TypeInt }

func (t VariableType) String() string {
	switch t {
	case TypeChar:
		return "char"
	case TypeInt:
		return "int"
	default:
		return "invalid"
	}
}

// TypeOf maps a symbol type to its storage type.
func TypeOf(t symbols.Type) (VariableType, error) {
	switch t {
	case symbols.TypeChar:
		return TypeChar, nil
	case symbols.TypeInt:
		return TypeInt, nil
	}
	return TypeInvalid, diag.Errorf(diag.UnsupportedType, t.String(), "type %s has no storage mapping", t)
}

// AddressKind tells where a variable lives.
type AddressKind uint8

const (
	AddressStatic AddressKind = iota
	// AddressStack is reserved for frame-relative storage; nothing allocates it yet.
	AddressStack
)

func (k AddressKind) String() string {
	if k == AddressStack {
		return "stack"
	}
	return "static"
}

// Address is a variable location.
type Address struct {
	Value uint16
	Kind  AddressKind
}

func (a Address) String() string {
	return fmt.Sprintf("0x%04X", a.Value)
}

// Variable is a named piece of storage.
type Variable struct {
	Name    string
	Type    VariableType
	Address Address
	Scope   symbols.Scope
}

// End returns the first address past the variable.
func (v *Variable) End() int {
	return int(v.Address.Value) + v.Type.Size()
}

// Record is the exported view of a Variable.
type Record struct {
	Name    string `json:"name" msgpack:"name"`
	Type    string `json:"type" msgpack:"type"`
	Address uint16 `json:"address" msgpack:"address"`
	Size    int    `json:"size" msgpack:"size"`
	Kind    string `json:"kind" msgpack:"kind"`
	Scope   string `json:"scope" msgpack:"scope"`
}

// Record returns the exported view.
func (v *Variable) Record() Record {
	return Record{
		Name:    v.Name,
		Type:    v.Type.String(),
		Address: v.Address.Value,
		Size:    v.Type.Size(),
		Kind:    v.Address.Kind.String(),
		Scope:   v.Scope.String(),
	}
}
