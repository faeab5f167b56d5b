package hir

import (
	"fmt"
	"strings"

	"minic/internal/diag"
)

// Parse reads one instruction in its text form. Tokens are separated by
// whitespace; every other shape fails with InvalidInstructionForm.
func Parse(line string) (Instr, error) {
	f := strings.Fields(line)
	bad := func(why string) (Instr, error) {
		return Instr{}, diag.Errorf(diag.InvalidInstructionForm, strings.TrimSpace(line), "%s", why)
	}
	switch {
	case len(f) == 1 && strings.HasSuffix(f[0], ":"):
		name := strings.TrimSuffix(f[0], ":")
		if !validName(name) {
			return bad("invalid label name")
		}
		return Label(name), nil
	case len(f) == 2 && f[0] == "GOTO":
		if !validName(f[1]) {
			return bad("invalid jump target")
		}
		return Goto(f[1]), nil
	case len(f) == 4 && f[0] == "IF" && f[2] == "GOTO":
		cond, ok := ParseOperand(f[1])
		if !ok {
			return bad("invalid condition operand")
		}
		if !validName(f[3]) {
			return bad("invalid jump target")
		}
		return IfGoto(cond, f[3]), nil
	case len(f) == 3 && f[1] == "=":
		if !validName(f[0]) {
			return bad("invalid destination")
		}
		src, ok := ParseOperand(f[2])
		if !ok {
			return bad("invalid source operand")
		}
		return Assign(f[0], src), nil
	case len(f) == 5 && f[1] == "=":
		if !validName(f[0]) {
			return bad("invalid destination")
		}
		left, ok := ParseOperand(f[2])
		if !ok {
			return bad("invalid left operand")
		}
		op, ok := ParseOp(f[3])
		if !ok {
			return bad(fmt.Sprintf("unknown operator %q", f[3]))
		}
		right, ok := ParseOperand(f[4])
		if !ok {
			return bad("invalid right operand")
		}
		return Binary(f[0], left, op, right), nil
	}
	return bad("unrecognized instruction")
}

// ParseLines parses a program, skipping blank lines and '#' comments.
func ParseLines(lines []string) (Program, error) {
	out := make(Program, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		in, err := Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, in)
	}
	return out, nil
}
