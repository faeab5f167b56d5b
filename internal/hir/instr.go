package hir

// InstrKind enumerates HIR instruction variants.
type InstrKind uint8

const (
	// InstrAssign is "dst = src".
	InstrAssign InstrKind = iota
	// InstrArith is "dst = left op right" with an arithmetic operator.
	InstrArith
	// InstrCond is "dst = left op right" with a relational operator.
	InstrCond
	// InstrIfGoto is "IF cond GOTO label"; the jump is taken when cond is non-zero.
	InstrIfGoto
	// InstrGoto is "GOTO label".
	InstrGoto
	// InstrLabel is "label:".
	InstrLabel
)

func (k InstrKind) String() string {
	switch k {
	case InstrAssign:
		return "assign"
	case InstrArith:
		return "arith"
	case InstrCond:
		return "cond"
	case InstrIfGoto:
		return "ifgoto"
	case InstrGoto:
		return "goto"
	case InstrLabel:
		return "label"
	default:
		return "invalid"
	}
}

// Instr is one HIR instruction. Only the payload selected by Kind is meaningful.
type Instr struct {
	Kind InstrKind

	Assign AssignInstr
	Binary BinaryInstr // InstrArith and InstrCond
	IfGoto IfGotoInstr
	Goto   GotoInstr
	Label  LabelInstr
}

// AssignInstr copies an operand into a name.
type AssignInstr struct {
	Dst string
	Src Operand
}

// BinaryInstr stores the result of a binary operation.
type BinaryInstr struct {
	Dst   string
	Left  Operand
	Op    Op
	Right Operand
}

// IfGotoInstr jumps to Target when Cond is non-zero.
type IfGotoInstr struct {
	Cond   Operand
	Target string
}

// GotoInstr jumps to Target.
type GotoInstr struct {
	Target string
}

// LabelInstr marks a jump target.
type LabelInstr struct {
	Name string
}

// Program is a flat instruction sequence.
type Program []Instr

// Assign builds "dst = src".
func Assign(dst string, src Operand) Instr {
	return Instr{Kind: InstrAssign, Assign: AssignInstr{Dst: dst, Src: src}}
}

// Arith builds "dst = left op right" for an arithmetic operator.
func Arith(dst string, left Operand, op Op, right Operand) Instr {
	return Instr{Kind: InstrArith, Binary: BinaryInstr{Dst: dst, Left: left, Op: op, Right: right}}
}

// Cond builds "dst = left op right" for a relational operator.
func Cond(dst string, left Operand, op Op, right Operand) Instr {
	return Instr{Kind: InstrCond, Binary: BinaryInstr{Dst: dst, Left: left, Op: op, Right: right}}
}

// Binary picks Arith or Cond by operator class.
func Binary(dst string, left Operand, op Op, right Operand) Instr {
	if op.IsRelational() {
		return Cond(dst, left, op, right)
	}
	return Arith(dst, left, op, right)
}

// IfGoto builds "IF cond GOTO target".
func IfGoto(cond Operand, target string) Instr {
	return Instr{Kind: InstrIfGoto, IfGoto: IfGotoInstr{Cond: cond, Target: target}}
}

// Goto builds "GOTO target".
func Goto(target string) Instr {
	return Instr{Kind: InstrGoto, Goto: GotoInstr{Target: target}}
}

// Label builds "name:".
func Label(name string) Instr {
	return Instr{Kind: InstrLabel, Label: LabelInstr{Name: name}}
}

// Def returns the name the instruction writes, if any.
func (in Instr) Def() (string, bool) {
	switch in.Kind {
	case InstrAssign:
		return in.Assign.Dst, true
	case InstrArith, InstrCond:
		return in.Binary.Dst, true
	}
	return "", false
}

// Uses appends the operands the instruction reads.
func (in Instr) Uses(dst []Operand) []Operand {
	switch in.Kind {
	case InstrAssign:
		return append(dst, in.Assign.Src)
	case InstrArith, InstrCond:
		return append(dst, in.Binary.Left, in.Binary.Right)
	case InstrIfGoto:
		return append(dst, in.IfGoto.Cond)
	}
	return dst
}

// JumpTarget returns the label a jump refers to.
func (in Instr) JumpTarget() (string, bool) {
	switch in.Kind {
	case InstrIfGoto:
		return in.IfGoto.Target, true
	case InstrGoto:
		return in.Goto.Target, true
	}
	return "", false
}

// Clone returns an independent copy of p.
func (p Program) Clone() Program {
	if p == nil {
		return nil
	}
	out := make(Program, len(p))
	copy(out, p)
	return out
}
