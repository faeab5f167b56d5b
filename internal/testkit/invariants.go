// Package testkit holds structural checks shared by pipeline tests.
package testkit

import (
	"fmt"
	"sort"

	"minic/internal/hir"
	"minic/internal/memory"
)

// CheckProgram verifies that labels are unique, every jump lands on a
// label of prog, and no temporary is read before it is written.
func CheckProgram(prog hir.Program) error {
	labels := make(map[string]int)
	for i, in := range prog {
		if in.Kind != hir.InstrLabel {
			continue
		}
		if prev, dup := labels[in.Label.Name]; dup {
			return fmt.Errorf("label %s defined at %d and %d", in.Label.Name, prev, i)
		}
		labels[in.Label.Name] = i
	}

	written := make(map[string]bool)
	var uses []hir.Operand
	for i, in := range prog {
		if target, ok := in.JumpTarget(); ok {
			if _, ok := labels[target]; !ok {
				return fmt.Errorf("instruction %d (%s) jumps to undefined label %s", i, in, target)
			}
		}
		uses = in.Uses(uses[:0])
		for _, op := range uses {
			if op.IsTemp() && !written[op.Name] {
				return fmt.Errorf("instruction %d (%s) reads %s before it is written", i, in, op.Name)
			}
		}
		if dst, ok := in.Def(); ok && hir.IsTemp(dst) {
			written[dst] = true
		}
	}
	return nil
}

// CheckLayout verifies that every variable lies inside region and that no
// two variables share a byte.
func CheckLayout(vars []memory.Record, region memory.Region) error {
	sorted := make([]memory.Record, len(vars))
	copy(sorted, vars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })
	for i, v := range sorted {
		start, end := int(v.Address), int(v.Address)+v.Size
		if v.Size <= 0 {
			return fmt.Errorf("%s has size %d", v.Name, v.Size)
		}
		if start < region.Start || end > region.End {
			return fmt.Errorf("%s [0x%04X, 0x%04X) outside region [0x%04X, 0x%04X)", v.Name, start, end, region.Start, region.End)
		}
		if i > 0 {
			prev := sorted[i-1]
			if int(prev.Address)+prev.Size > start {
				return fmt.Errorf("%s overlaps %s at 0x%04X", prev.Name, v.Name, start)
			}
		}
	}
	return nil
}
