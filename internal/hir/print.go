package hir

import (
	"fmt"
	"io"
	"strings"
)

func (in Instr) String() string {
	switch in.Kind {
	case InstrAssign:
		return in.Assign.Dst + " = " + in.Assign.Src.String()
	case InstrArith, InstrCond:
		b := in.Binary
		return fmt.Sprintf("%s = %s %s %s", b.Dst, b.Left, b.Op, b.Right)
	case InstrIfGoto:
		return fmt.Sprintf("IF %s GOTO %s", in.IfGoto.Cond, in.IfGoto.Target)
	case InstrGoto:
		return "GOTO " + in.Goto.Target
	case InstrLabel:
		return in.Label.Name + ":"
	}
	return "<invalid>"
}

// Lines renders each instruction in its text form.
func (p Program) Lines() []string {
	out := make([]string, len(p))
	for i := range p {
		out[i] = p[i].String()
	}
	return out
}

func (p Program) String() string {
	return strings.Join(p.Lines(), "\n")
}

// Dump writes the program one instruction per line. Labels sit at the left
// margin and everything else is indented.
func Dump(w io.Writer, p Program) error {
	for i := range p {
		prefix := "  "
		if p[i].Kind == InstrLabel {
			prefix = ""
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, p[i]); err != nil {
			return err
		}
	}
	return nil
}
