package artifact

import (
	"bytes"
	"strings"
	"testing"

	"minic/internal/lir"
	"minic/internal/memory"
	"minic/internal/opt"
	"minic/internal/project"
	"minic/internal/symbols"
)

func sample() *Artifact {
	return &Artifact{
		Schema:     SchemaVersion,
		Unit:       "demo.json",
		SourceHash: "abc",
		Symbols: []symbols.Record{
			{Name: "g1", Kind: "variable", Type: "char", Scope: "global"},
			{Name: "counter", Kind: "variable", Type: "int", Scope: "global", Qualifier: "volatile"},
		},
		Memory: []memory.Record{
			{Name: "g1", Type: "char", Address: 0, Size: 1, Kind: "static"},
			{Name: "counter", Type: "int", Address: 1, Size: 2, Kind: "static"},
		},
		MemStats:  memory.Stats{Size: 255, Used: 3, Free: 252, Variables: 2},
		HIR:       []string{"g1 = 5", ".t0 = counter + 1", "counter = .t0"},
		Optimized: []string{"counter = counter + 1"},
		Report:    opt.Report{Before: 3, After: 1, Propagated: []string{"g1"}, Fused: 1},
		LIR:       []string{"LDI 5", "MOV var:g1 A"},
		Skipped:   []lir.Skipped{{Index: 0, Text: "counter = counter + 1"}},
	}
}

func TestParseSections(t *testing.T) {
	s, err := ParseSections("hir, lir")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !s.Has(SectionHIR) || !s.Has(SectionLIR) || s.Has(SectionMemory) {
		t.Fatalf("unexpected sections %s", s)
	}
	if all, _ := ParseSections(""); all != SectionAll {
		t.Fatalf("empty list should select all, got %s", all)
	}
	if _, err := ParseSections("hir,asm"); err == nil {
		t.Fatalf("expected error for unknown section")
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatMsgpack} {
		var buf bytes.Buffer
		if err := Encode(&buf, sample(), format, SectionAll); err != nil {
			t.Fatalf("%s encode: %v", format, err)
		}
		got, err := Decode(&buf, format)
		if err != nil {
			t.Fatalf("%s decode: %v", format, err)
		}
		if got.Unit != "demo.json" || len(got.Symbols) != 2 || got.Report.Fused != 1 || got.Skipped[0].Text != "counter = counter + 1" {
			t.Fatalf("%s: unexpected artifact %+v", format, got)
		}
	}
}

func TestEncodeFiltersSections(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sample(), FormatJSON, SectionLIR); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf, FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Symbols != nil || got.HIR != nil || len(got.LIR) != 2 {
		t.Fatalf("unexpected filtered artifact %+v", got)
	}
}

func TestWriteTextAligns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sample(), TextOptions{Sections: SectionSymbols | SectionMemory | SectionOpt}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"== symbols ==",
		"  g1      variable char global",
		"  counter variable int  global volatile",
		"  0x0001 counter int  2B",
		"  used 3/255 bytes",
		"  counter = counter + 1",
		"3 -> 1 instructions, 1 propagated, 1 fused, 0 folded",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "== lir ==") {
		t.Errorf("lir section should be omitted")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenDiskCache(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key([]byte(`{"kind":"file"}`), project.Default().Fingerprint())
	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("empty cache returned ok=%v err=%v", ok, err)
	}
	if err := c.Put(key, sample()); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if strings.Join(got.Optimized, ";") != "counter = counter + 1" {
		t.Fatalf("unexpected cached artifact %+v", got)
	}

	stale := sample()
	stale.Schema = SchemaVersion + 1
	other := Key([]byte("other"), project.Default().Fingerprint())
	if err := c.Put(other, stale); err != nil {
		t.Fatalf("put stale: %v", err)
	}
	if _, ok, _ := c.Get(other); ok {
		t.Fatalf("foreign schema should miss")
	}

	if err := c.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Fatalf("entry survived DropAll")
	}
	if err := c.Put(key, sample()); err != nil {
		t.Fatalf("put after drop: %v", err)
	}
}

func TestKeyDependsOnFingerprint(t *testing.T) {
	src := []byte("tree")
	a := project.Default()
	b := project.Default()
	b.Memory.End = 0x80
	if Key(src, a.Fingerprint()) == Key(src, b.Fingerprint()) {
		t.Fatalf("memory layout must change the key")
	}
}
