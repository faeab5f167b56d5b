package hir

// Op is a binary operator usable in an ArithmeticOp or ConditionalOp.
type Op uint8

const (
	OpInvalid Op = iota

	// Arithmetic and bitwise operators.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor

	// Relational and logical operators; results are 0 or 1.
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLAnd
	OpLOr
)

var opSpelling = [...]string{
	OpInvalid: "?",
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
	OpMod:     "%",
	OpShl:     "<<",
	OpShr:     ">>",
	OpAnd:     "&",
	OpOr:      "|",
	OpXor:     "^",
	OpEq:      "==",
	OpNe:      "!=",
	OpLt:      "<",
	OpLe:      "<=",
	OpGt:      ">",
	OpGe:      ">=",
	OpLAnd:    "&&",
	OpLOr:     "||",
}

var opBySpelling = func() map[string]Op {
	m := make(map[string]Op, len(opSpelling))
	for op, s := range opSpelling {
		if Op(op) != OpInvalid {
			m[s] = Op(op)
		}
	}
	return m
}()

// ParseOp looks up an operator by its spelling.
func ParseOp(s string) (Op, bool) {
	op, ok := opBySpelling[s]
	return op, ok
}

func (o Op) String() string {
	if int(o) < len(opSpelling) {
		return opSpelling[o]
	}
	return "?"
}

// IsArithmetic reports operators lowered to an ArithmeticOp.
func (o Op) IsArithmetic() bool { return o >= OpAdd && o <= OpXor }

// IsRelational reports operators lowered to a ConditionalOp.
func (o Op) IsRelational() bool { return o >= OpEq && o <= OpLOr }

// IsComparison reports the six comparison operators.
func (o Op) IsComparison() bool { return o >= OpEq && o <= OpGe }

// Invert returns the comparison that holds exactly when o does not.
func (o Op) Invert() (Op, bool) {
	switch o {
	case OpEq:
		return OpNe, true
	case OpNe:
		return OpEq, true
	case OpLt:
		return OpGe, true
	case OpGe:
		return OpLt, true
	case OpGt:
		return OpLe, true
	case OpLe:
		return OpGt, true
	}
	return OpInvalid, false
}

// Eval folds a op b. Division and modulo by zero yield 0. ok is false when
// the operator is invalid or a shift count is negative; such operations are
// left symbolic.
func (o Op) Eval(a, b int64) (v int64, ok bool) {
	switch o {
	case OpAdd:
		return a + b, true
	case OpSub:
		return a - b, true
	case OpMul:
		return a * b, true
	case OpDiv:
		if b == 0 {
			return 0, true
		}
		return a / b, true
	case OpMod:
		if b == 0 {
			return 0, true
		}
		return a % b, true
	case OpShl:
		if b < 0 {
			return 0, false
		}
		return a << uint64(b), true
	case OpShr:
		if b < 0 {
			return 0, false
		}
		return a >> uint64(b), true
	case OpAnd:
		return a & b, true
	case OpOr:
		return a | b, true
	case OpXor:
		return a ^ b, true
	case OpEq:
		return boolInt(a == b), true
	case OpNe:
		return boolInt(a != b), true
	case OpLt:
		return boolInt(a < b), true
	case OpLe:
		return boolInt(a <= b), true
	case OpGt:
		return boolInt(a > b), true
	case OpGe:
		return boolInt(a >= b), true
	case OpLAnd:
		return boolInt(a != 0 && b != 0), true
	case OpLOr:
		return boolInt(a != 0 || b != 0), true
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
