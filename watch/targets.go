package watch

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// targetsFile is the YAML catalog shape.
type targetsFile struct {
	Targets []Target `yaml:"targets"`
}

// LoadTargets reads and validates the YAML target catalog. The catalog is
// loaded once per invocation; targets are immutable afterwards.
func LoadTargets(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	var file targetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}
	if err := ValidateTargets(file.Targets); err != nil {
		return nil, err
	}
	return file.Targets, nil
}

// ValidateTargets checks names are present and unique and URLs are http(s).
func ValidateTargets(targets []Target) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: no targets configured", ErrInvalidTarget)
	}
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%w: missing name (url %q)", ErrInvalidTarget, t.URL)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateTarget, t.Name)
		}
		seen[t.Name] = true

		parsed, err := url.Parse(t.URL)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidTarget, t.Name, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%w: %q: URL must be http or https", ErrInvalidTarget, t.Name)
		}
		if parsed.Host == "" {
			return fmt.Errorf("%w: %q: URL missing host", ErrInvalidTarget, t.Name)
		}
	}
	return nil
}
