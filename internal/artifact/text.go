package artifact

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TextOptions configures WriteText.
type TextOptions struct {
	Sections Section
	// Styled renders section headers with lipgloss. Leave it off for files
	// and pipes.
	Styled bool
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// WriteText renders a human-readable dump of the selected sections.
func WriteText(w io.Writer, a *Artifact, opts TextOptions) error {
	sections := opts.Sections
	if sections == 0 {
		sections = SectionAll
	}
	var b strings.Builder
	header := func(title string) {
		line := "== " + title + " =="
		if opts.Styled {
			line = headerStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "unit %s\n", a.Unit)
	if sections.Has(SectionSymbols) {
		header("symbols")
		rows := make([][]string, 0, len(a.Symbols))
		for _, s := range a.Symbols {
			rows = append(rows, []string{s.Name, s.Kind, s.Type, s.Scope, s.Qualifier})
		}
		writeTable(&b, rows)
	}
	if sections.Has(SectionMemory) {
		header("memory")
		rows := make([][]string, 0, len(a.Memory))
		for _, v := range a.Memory {
			rows = append(rows, []string{fmt.Sprintf("0x%04X", v.Address), v.Name, v.Type, fmt.Sprintf("%dB", v.Size)})
		}
		writeTable(&b, rows)
		fmt.Fprintf(&b, "  used %d/%d bytes\n", a.MemStats.Used, a.MemStats.Size)
	}
	if sections.Has(SectionHIR) {
		header("hir")
		writeCode(&b, a.HIR)
	}
	if sections.Has(SectionOpt) {
		header("optimized")
		writeCode(&b, a.Optimized)
		r := a.Report
		fmt.Fprintf(&b, "  %d -> %d instructions, %d propagated, %d fused, %d folded\n",
			r.Before, r.After, len(r.Propagated), r.Fused, r.Folded)
	}
	if sections.Has(SectionLIR) {
		header("lir")
		writeCode(&b, a.LIR)
		if len(a.Skipped) > 0 {
			fmt.Fprintf(&b, "  %d instructions not lowered\n", len(a.Skipped))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCode(b *strings.Builder, lines []string) {
	for _, line := range lines {
		if strings.HasSuffix(line, ":") {
			b.WriteString(line)
		} else {
			b.WriteString("  ")
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
}

// writeTable left-aligns columns by display width.
func writeTable(b *strings.Builder, rows [][]string) {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		b.WriteString(" ")
		for i, cell := range row {
			b.WriteString(" ")
			if i == len(row)-1 {
				b.WriteString(cell)
				continue
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		b.WriteString("\n")
	}
}
