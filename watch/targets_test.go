package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTargetsFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write targets file: %v", err)
	}
	return path
}

func TestLoadTargets_FullCatalog(t *testing.T) {
	// WHAT: A catalog with every per-target field round-trips from YAML.
	path := writeTargetsFile(t, `
targets:
  - name: iec
    url: https://example.com/iec
    relevance_keywords: ["2026", "quota"]
    urgent_phrases: ["apply now"]
    maintenance_markers: ["en maintenance"]
    dedup_urgent: true
  - name: jenza
    url: https://example.com/jenza
`)
	targets, err := LoadTargets(path)
	if err != nil {
		t.Fatalf("LoadTargets: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("got %d targets, want 2", len(targets))
	}
	first := targets[0]
	if first.Name != "iec" || first.URL != "https://example.com/iec" {
		t.Errorf("first = %+v", first)
	}
	if len(first.RelevanceKeywords) != 2 || first.RelevanceKeywords[1] != "quota" {
		t.Errorf("keywords = %v", first.RelevanceKeywords)
	}
	if !first.DedupUrgent {
		t.Error("dedup_urgent not parsed")
	}
	if targets[1].DedupUrgent {
		t.Error("dedup_urgent should default to false")
	}
}

func TestLoadTargets_MissingFile(t *testing.T) {
	// WHAT: A missing catalog path surfaces as an error, not a panic or
	// an empty catalog.
	if _, err := LoadTargets(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadTargets_MalformedYAML(t *testing.T) {
	// WHAT: Broken YAML is rejected with a parse error.
	path := writeTargetsFile(t, "targets: [unclosed")
	if _, err := LoadTargets(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateTargets_Rules(t *testing.T) {
	// WHAT: Validation rejects empty catalogs, missing names, duplicate
	// names and non-http(s) URLs.
	cases := []struct {
		name    string
		targets []Target
		wantErr error
	}{
		{"empty catalog", nil, ErrInvalidTarget},
		{"missing name", []Target{{URL: "https://example.com"}}, ErrInvalidTarget},
		{"duplicate name", []Target{
			{Name: "a", URL: "https://example.com/1"},
			{Name: "a", URL: "https://example.com/2"},
		}, ErrDuplicateTarget},
		{"bad scheme", []Target{{Name: "a", URL: "ftp://example.com"}}, ErrInvalidTarget},
		{"missing host", []Target{{Name: "a", URL: "https://"}}, ErrInvalidTarget},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateTargets(c.targets)
			if !errors.Is(err, c.wantErr) {
				t.Errorf("err = %v, want %v", err, c.wantErr)
			}
		})
	}
}

func TestValidateTargets_AcceptsHTTPAndHTTPS(t *testing.T) {
	// WHAT: Both plain and TLS URLs pass validation.
	err := ValidateTargets([]Target{
		{Name: "plain", URL: "http://example.com"},
		{Name: "tls", URL: "https://example.com"},
	})
	if err != nil {
		t.Fatalf("ValidateTargets: %v", err)
	}
}
