package pdx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMerger_Deep(t *testing.T) {
	base := mustParse(t, `a = 1 b = { x = 1 y = 2 } l = { 1 2 }`)
	overlay := mustParse(t, `b = { y = 3 z = 4 } c = 5 l = { 2 3 }`)

	merged := NewMerger().Merge(base, overlay)

	if got := strings.Join(merged.Keys(), ","); got != "a,b,l,c" {
		t.Errorf("Expected keys a,b,l,c, got %s", got)
	}
	b, _ := merged.Block("b")
	want := NewDocument(Node{"x", Integer(1)}, Node{"y", Integer(3)}, Node{"z", Integer(4)})
	if !Equal(b, want) {
		t.Errorf("Expected deep-merged b, got %#v", b)
	}
	l, _ := merged.List("l")
	if !Equal(l, List{Integer(1), Integer(2), Integer(2), Integer(3)}) {
		t.Errorf("Expected appended list, got %#v", l)
	}

	// Inputs stay untouched.
	if y, _ := base.Block("b"); !Equal(y, NewDocument(Node{"x", Integer(1)}, Node{"y", Integer(2)})) {
		t.Errorf("Merge modified its input: %#v", y)
	}
}

func TestMerger_ListStrategies(t *testing.T) {
	base := mustParse(t, `l = { 1 2 }`)
	overlay := mustParse(t, `l = { 2 3 }`)

	tests := []struct {
		strategy ListStrategy
		expected List
	}{
		{ListUnique, List{Integer(1), Integer(2), Integer(3)}},
		{ListReplace, List{Integer(2), Integer(3)}},
	}
	for _, test := range tests {
		m := NewMerger().WithOptions(MergeOptions{ListStrategy: test.strategy})
		l, _ := m.Merge(base, overlay).List("l")
		if !Equal(l, test.expected) {
			t.Errorf("%s: expected %#v, got %#v", test.strategy, test.expected, l)
		}
	}
}

func TestMerger_ShallowAndReplace(t *testing.T) {
	base := mustParse(t, `b = { x = 1 } k = 1`)
	overlay := mustParse(t, `b = { y = 2 }`)

	shallow := NewMerger().WithOptions(MergeOptions{Strategy: MergeShallow}).Merge(base, overlay)
	b, _ := shallow.Block("b")
	if b.Has("x") || !b.Has("y") || !shallow.Has("k") {
		t.Errorf("Expected shallow merge to replace b only, got %#v", shallow)
	}

	replaced := NewMerger().WithOptions(MergeOptions{Strategy: MergeReplace}).Merge(base, overlay)
	if replaced.Has("k") {
		t.Errorf("Expected replace to keep only the last document")
	}
}

func TestMerger_MergeFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "00_base.txt")
	second := filepath.Join(dir, "01_mod.txt")
	if err := os.WriteFile(first, []byte("trait_a = { diplomacy = 1 }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("trait_a = { diplomacy = 2 }\ntrait_b = { }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	merged, err := NewMerger().MergeFiles(first, second)
	if err != nil {
		t.Fatalf("MergeFiles() failed: %v", err)
	}
	a, _ := merged.Block("trait_a")
	if v, _ := a.Get("diplomacy"); v != Integer(2) {
		t.Errorf("Expected later file to win, got %#v", v)
	}
	if !merged.Has("trait_b") {
		t.Errorf("Expected trait_b from the second file")
	}

	if _, err := NewMerger().MergeFiles(filepath.Join(dir, "missing.txt")); err == nil {
		t.Errorf("Expected an error for a missing file")
	}
}
