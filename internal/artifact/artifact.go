// Package artifact holds the serializable result of compiling one unit and
// the on-disk cache that stores it.
package artifact

import (
	"fmt"
	"strings"

	"minic/internal/lir"
	"minic/internal/memory"
	"minic/internal/opt"
	"minic/internal/symbols"
)

// SchemaVersion changes whenever the Artifact layout does.
const SchemaVersion uint16 = 1

// Artifact is everything a build produces for one unit.
type Artifact struct {
	Schema     uint16           `json:"schema" msgpack:"schema"`
	Unit       string           `json:"unit" msgpack:"unit"`
	SourceHash string           `json:"source_hash" msgpack:"source_hash"`
	Symbols    []symbols.Record `json:"symbols" msgpack:"symbols"`
	Memory     []memory.Record  `json:"memory" msgpack:"memory"`
	MemStats   memory.Stats     `json:"memory_stats" msgpack:"memory_stats"`
	HIR        []string         `json:"hir" msgpack:"hir"`
	Optimized  []string         `json:"optimized" msgpack:"optimized"`
	Report     opt.Report       `json:"optimizer" msgpack:"optimizer"`
	LIR        []string         `json:"lir" msgpack:"lir"`
	Skipped    []lir.Skipped    `json:"lir_skipped,omitempty" msgpack:"lir_skipped,omitempty"`
}

// Section is one optional part of an artifact dump.
type Section uint8

const (
	SectionSymbols Section = 1 << iota
	SectionMemory
	SectionHIR
	SectionOpt
	SectionLIR

	SectionAll = SectionSymbols | SectionMemory | SectionHIR | SectionOpt | SectionLIR
)

var sectionNames = []struct {
	name string
	sec  Section
}{
	{"symbols", SectionSymbols},
	{"memory", SectionMemory},
	{"hir", SectionHIR},
	{"opt", SectionOpt},
	{"lir", SectionLIR},
}

// ParseSections reads a comma-separated section list; "all" selects everything.
func ParseSections(s string) (Section, error) {
	var out Section
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if part == "all" {
			out |= SectionAll
			continue
		}
		found := false
		for _, sn := range sectionNames {
			if sn.name == part {
				out |= sn.sec
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown section %q (expected symbols, memory, hir, opt, lir or all)", part)
		}
	}
	if out == 0 {
		return SectionAll, nil
	}
	return out, nil
}

// Has reports whether s includes sec.
func (s Section) Has(sec Section) bool { return s&sec != 0 }

func (s Section) String() string {
	var parts []string
	for _, sn := range sectionNames {
		if s.Has(sn.sec) {
			parts = append(parts, sn.name)
		}
	}
	return strings.Join(parts, ",")
}

// Filter returns a copy of a with the unselected sections cleared. Zero
// selects everything.
func (a *Artifact) Filter(s Section) *Artifact {
	if s == 0 {
		s = SectionAll
	}
	out := *a
	if !s.Has(SectionSymbols) {
		out.Symbols = nil
	}
	if !s.Has(SectionMemory) {
		out.Memory = nil
		out.MemStats = memory.Stats{}
	}
	if !s.Has(SectionHIR) {
		out.HIR = nil
	}
	if !s.Has(SectionOpt) {
		out.Optimized = nil
		out.Report = opt.Report{}
	}
	if !s.Has(SectionLIR) {
		out.LIR = nil
		out.Skipped = nil
	}
	return &out
}
