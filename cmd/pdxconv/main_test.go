package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modconv/pdx"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"pdxconv", "--log-level", "error"}, args...))
	return stdout.String(), err
}

func TestParseCommand(t *testing.T) {
	out, err := run(t, "parse", "../../testdata/landed_titles.txt")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Expected JSON output: %v\n%s", err, out)
	}
	if _, ok := decoded["e_francia"]; !ok {
		t.Errorf("Expected e_francia in output, got %v", decoded)
	}

	if _, err := run(t, "parse"); err == nil {
		t.Errorf("Expected an error without a file")
	}
	if _, err := run(t, "parse", "missing.txt"); err == nil {
		t.Errorf("Expected an error for a missing file")
	}
}

func TestParseCommand_RawConditions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("potential = { age < 16 }"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "parse", path)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !strings.Contains(out, `"potential": "age < 16"`) {
		t.Errorf("Expected the condition printed as written, got\n%s", out)
	}
}

func TestFmtCommand(t *testing.T) {
	out, err := run(t, "fmt", "../../testdata/history_province.txt")
	if err != nil {
		t.Fatalf("fmt failed: %v", err)
	}
	formatted, err := pdx.ParseString(out)
	if err != nil {
		t.Fatalf("formatted output does not parse: %v\n%s", err, out)
	}
	original, err := pdx.ParseFile("../../testdata/history_province.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !pdx.Equal(formatted, original) {
		t.Errorf("Expected formatting to keep the document, got\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("a={1 2}  b = yes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "fmt", "-w", path); err != nil {
		t.Fatalf("fmt -w failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "a = { 1 2 }\nb = yes\n" {
		t.Errorf("Unexpected rewritten file:\n%s", data)
	}
}

func TestCheckCommand(t *testing.T) {
	out, err := run(t, "check", "../../testdata/ck2mod/history/provinces")
	if err == nil || !strings.Contains(err.Error(), "1 of 3") {
		t.Errorf("Expected one failing file, got %v", err)
	}
	if !strings.Contains(out, "FAIL") || !strings.Contains(out, "Orleans") {
		t.Errorf("Expected the broken file reported, got\n%s", out)
	}

	if _, err := run(t, "check", "--workers", "1", "../../testdata"); err != nil {
		t.Errorf("Expected testdata to pass, got %v", err)
	}
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "00.txt")
	b := filepath.Join(dir, "01.txt")
	os.WriteFile(a, []byte("t = { x = 1 } l = { 1 2 }"), 0o644)
	os.WriteFile(b, []byte("t = { y = 2 } l = { 2 3 }"), 0o644)

	out, err := run(t, "merge", "--lists", "unique", a, b)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	want := "t = {\n\tx = 1\n\ty = 2\n}\nl = { 1 2 3 }\n"
	if out != want {
		t.Errorf("Expected\n%s\ngot\n%s", want, out)
	}

	if _, err := run(t, "merge", "--strategy", "sideways", a); err == nil {
		t.Errorf("Expected an unknown strategy to fail")
	}
}

func TestInspectCommand(t *testing.T) {
	out, err := run(t, "inspect", "--source", "../../testdata/ck2mod", "--workers", "2")
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	var summary struct {
		Definitions int            `json:"definitions"`
		Titles      map[string]int `json:"titles"`
		Problems    []string       `json:"problems"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("Expected JSON summary: %v\n%s", err, out)
	}
	if summary.Definitions != 4 || summary.Titles["barony"] != 3 || len(summary.Problems) != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	if _, err := run(t, "inspect", "--source", "x", "--tone-curve", "0.5"); err == nil {
		t.Errorf("Expected a bad tone curve to fail")
	}
}

func TestConvertCommand(t *testing.T) {
	out := t.TempDir()
	if _, err := run(t, "convert", "--source", "../../testdata/ck2mod", "-o", out, "--name", "Test Mod"); err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	desc, err := pdx.ParseFile(filepath.Join(out, "test_mod", "descriptor.mod"))
	if err != nil {
		t.Fatalf("Expected descriptor.mod in the scaffolded mod: %v", err)
	}
	if name, _ := desc.String("name"); name != "Test Mod" {
		t.Errorf("Expected the display name in descriptor.mod, got %q", name)
	}
	if _, err := os.Stat(filepath.Join(out, "test_mod.mod")); err != nil {
		t.Errorf("Expected launcher descriptor: %v", err)
	}
}
