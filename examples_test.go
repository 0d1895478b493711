package pdx

import (
	"path/filepath"
	"testing"
)

func TestParseExampleFiles(t *testing.T) {
	examples, err := filepath.Glob("testdata/*.txt")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(examples) == 0 {
		t.Fatal("no example files in testdata")
	}

	for _, path := range examples {
		t.Run(filepath.Base(path), func(t *testing.T) {
			doc, err := ParseFile(path)
			if err != nil {
				t.Fatalf("Failed to parse %s: %v", path, err)
			}
			if doc.Len() == 0 {
				t.Errorf("Parsed document is empty for %s", path)
			}
			t.Logf("Parsed %s with %d keys", path, doc.Len())
		})
	}
}

func TestParseLandedTitlesFixture(t *testing.T) {
	doc, err := ParseFile("testdata/landed_titles.txt")
	if err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}

	if got := doc.Keys(); len(got) != 2 || got[0] != "e_francia" || got[1] != "d_knights_templar" {
		t.Fatalf("Expected e_francia and d_knights_templar, got %v", got)
	}

	empire, _ := doc.Block("e_francia")
	if v, _ := empire.Get("capital"); v != Integer(112) {
		t.Errorf("Expected capital 112 with the comment stripped, got %#v", v)
	}

	kingdom, ok := empire.Block("k_france")
	if !ok {
		t.Fatal("Expected k_france block")
	}
	if v, _ := kingdom.Get("allow"); v != RawText("age >= 16 is_female = no") {
		t.Errorf("Expected allow kept as raw text, got %#v", v)
	}

	duchy, _ := kingdom.Block("d_ile_de_france")
	county, _ := duchy.Block("c_paris")
	barony, ok := county.Block("b_paris")
	if !ok || barony.Len() != 0 {
		t.Errorf("Expected empty b_paris block, got %#v", barony)
	}
}

func TestParseHistoryFixture(t *testing.T) {
	doc, err := ParseFile("testdata/history_province.txt")
	if err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}
	if v, _ := doc.Get("max_settlements"); v != Integer(4) {
		t.Errorf("Expected max_settlements 4, got %#v", v)
	}
	entry, ok := doc.Block("1066.1.1")
	if !ok {
		t.Fatalf("Expected dated block 1066.1.1, keys %v", doc.Keys())
	}
	if s, _ := entry.String("b_paris"); s != "city" {
		t.Errorf("Expected b_paris city, got %q", s)
	}
}
