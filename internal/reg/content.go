// Package reg models the target's fixed register file.
package reg

import (
	"fmt"
	"strconv"

	"minic/internal/diag"
)

// MaxValue is the largest value a register can hold.
const MaxValue = 255

// ContentKind tags what a register currently holds.
type ContentKind uint8

const (
	ContentEmpty ContentKind = iota
	ContentConstant
	ContentVariable
	ContentVariableAddress
)

func (k ContentKind) String() string {
	switch k {
	case ContentEmpty:
		return "empty"
	case ContentConstant:
		return "constant"
	case ContentVariable:
		return "variable"
	case ContentVariableAddress:
		return "address"
	default:
		return "invalid"
	}
}

// Content describes a register's value.
//
//	Empty            no value, no name
//	Constant         value in (0, MaxValue], no name
//	Variable         name, no value
//	VariableAddress  name, no value
type Content struct {
	Kind  ContentKind
	Value *int64
	Name  string
}

// NewContent builds a validated Content.
func NewContent(kind ContentKind, value *int64, name string) (Content, error) {
	c := Content{Kind: kind, Value: value, Name: name}
	if err := c.Validate(); err != nil {
		return Content{}, err
	}
	return c, nil
}

// Empty is the content of a free register.
func Empty() Content { return Content{Kind: ContentEmpty} }

// Constant builds Constant(v).
func Constant(v int64) (Content, error) { return NewContent(ContentConstant, &v, "") }

// Variable builds Variable(name).
func Variable(name string) (Content, error) { return NewContent(ContentVariable, nil, name) }

// AddressOf builds VariableAddress(name).
func AddressOf(name string) (Content, error) { return NewContent(ContentVariableAddress, nil, name) }

// Validate checks the tag invariants.
func (c Content) Validate() error {
	bad := func(format string, args ...any) error {
		return diag.Errorf(diag.InvalidRegisterContent, c.String(), format, args...)
	}
	switch c.Kind {
	case ContentEmpty:
		if c.Value != nil || c.Name != "" {
			return bad("empty content carries a value or name")
		}
	case ContentConstant:
		if c.Name != "" {
			return bad("constant content carries a name")
		}
		if c.Value == nil {
			return bad("constant content has no value")
		}
		if *c.Value <= 0 || *c.Value > MaxValue {
			return bad("constant %d outside (0, %d]", *c.Value, MaxValue)
		}
	case ContentVariable, ContentVariableAddress:
		if c.Value != nil {
			return bad("%s content carries a value", c.Kind)
		}
		if c.Name == "" {
			return bad("%s content has no name", c.Kind)
		}
	default:
		return bad("unknown content kind %d", c.Kind)
	}
	return nil
}

func (c Content) String() string {
	switch c.Kind {
	case ContentEmpty:
		return "empty"
	case ContentConstant:
		if c.Value == nil {
			return "const(?)"
		}
		return "const(" + strconv.FormatInt(*c.Value, 10) + ")"
	case ContentVariable:
		return "var(" + c.Name + ")"
	case ContentVariableAddress:
		return "addr(" + c.Name + ")"
	}
	return fmt.Sprintf("content(%d)", c.Kind)
}
