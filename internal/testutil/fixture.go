// Package testutil loads the golden end-to-end compiler fixtures used by
// internal/codegen's scenario tests: one txtar
// archive per spec.md §8.4 scenario, bundling a biron source file with its
// expected diagnostics. This mirrors funvibe-funxy's own fixture-heavy
// tests/ tree, packed one file per scenario with golang.org/x/tools/txtar
// rather than a loose testdata directory tree per case.
package testutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/tools/txtar"
)

// Fixture is one golden end-to-end scenario: a source file plus the
// substrings every expected diagnostic message must contain, in report
// order. A fixture with no "diagnostics" archive file expects a clean
// compile (zero diagnostics of severity >= error).
type Fixture struct {
	Name            string
	Source          string
	WantDiagnostics []string
}

// Load parses every *.txtar file in dir into a Fixture, one per file,
// named after the file's base name with the extension trimmed.
func Load(dir string) ([]Fixture, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.txtar"))
	if err != nil {
		return nil, fmt.Errorf("testutil: globbing %s: %w", dir, err)
	}
	fixtures := make([]Fixture, 0, len(matches))
	for _, path := range matches {
		f, err := loadOne(path)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

func loadOne(path string) (Fixture, error) {
	ar, err := txtar.ParseFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("testutil: parsing %s: %w", path, err)
	}
	f := Fixture{Name: strings.TrimSuffix(filepath.Base(path), ".txtar")}
	var haveSource bool
	for _, file := range ar.Files {
		switch file.Name {
		case "source.bn":
			f.Source = string(file.Data)
			haveSource = true
		case "diagnostics":
			f.WantDiagnostics = nonEmptyLines(string(file.Data))
		}
	}
	if !haveSource {
		return Fixture{}, fmt.Errorf("testutil: %s: missing source.bn archive file", path)
	}
	return f, nil
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
