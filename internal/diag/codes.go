package diag

import (
	"fmt"
)

// Code identifies a class of fatal compilation error.
// Code implements error so callers can match with errors.Is(err, diag.OutOfMemory).
type Code uint16

const (
	UnknownCode Code = 0

	// Symbol table
	SymDuplicateSymbol Code = 1001
	SymUnknownSymbol   Code = 1002
	SymUnsupportedType Code = 1003

	// Static memory
	MemOutOfMemory       Code = 2001
	MemDuplicateVariable Code = 2002
	MemUnknownVariable   Code = 2003
	MemInvalidSize       Code = 2004

	// IR generation and text forms
	IRUnsupportedNode        Code = 3001
	IRInvalidInstructionForm Code = 3002
	IRUnsupportedInstruction Code = 3003

	// Register file
	RegInvalidContent Code = 4001
	RegUnknown        Code = 4002
	RegBusy           Code = 4003
)

// Short aliases used across the pipeline.
const (
	DuplicateSymbol        = SymDuplicateSymbol
	UnknownSymbol          = SymUnknownSymbol
	UnsupportedType        = SymUnsupportedType
	OutOfMemory            = MemOutOfMemory
	DuplicateVariable      = MemDuplicateVariable
	UnknownVariable        = MemUnknownVariable
	InvalidSize            = MemInvalidSize
	UnsupportedNode        = IRUnsupportedNode
	InvalidInstructionForm = IRInvalidInstructionForm
	UnsupportedInstruction = IRUnsupportedInstruction
	InvalidRegisterContent = RegInvalidContent
	UnknownRegister        = RegUnknown
	RegisterBusy           = RegBusy
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	SymDuplicateSymbol:       "duplicate symbol",
	SymUnknownSymbol:         "unknown symbol",
	SymUnsupportedType:       "unsupported type",
	MemOutOfMemory:           "out of static memory",
	MemDuplicateVariable:     "duplicate variable",
	MemUnknownVariable:       "unknown variable",
	MemInvalidSize:           "invalid allocation size",
	IRUnsupportedNode:        "unsupported syntax node",
	IRInvalidInstructionForm: "invalid instruction form",
	IRUnsupportedInstruction: "instruction cannot be lowered",
	RegInvalidContent:        "invalid register content",
	RegUnknown:               "unknown register",
	RegBusy:                  "register already allocated",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SYM%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("MEM%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("REG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Error makes a bare code usable as a sentinel.
func (c Code) Error() string {
	return c.Title()
}
