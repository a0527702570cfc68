// Package targets loads and validates the configured scrape targets from a
// YAML file.
package targets

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/plancrawl/internal/domain"
)

var (
	// ErrNoTargets indicates no targets were found in the configuration.
	ErrNoTargets = errors.New("no targets found in configuration")
	// ErrMissingRequiredField indicates a required target field is missing.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrDuplicateKey indicates two targets share a key.
	ErrDuplicateKey = errors.New("duplicate target key")
	// ErrInvalidURL indicates a target URL is not a valid absolute HTTP(S) URL.
	ErrInvalidURL = errors.New("invalid target URL")
)

// targetsFile is the on-disk structure of a targets YAML file.
type targetsFile struct {
	Targets []domain.Target `yaml:"targets"`
}

// Loader loads target configurations from a file.
type Loader struct {
	configPath string
}

// NewLoader creates a new Loader for the given path.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load reads, parses, and validates all targets from the configuration file.
func (l *Loader) Load() ([]domain.Target, error) {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}

	var file targetsFile
	if unmarshalErr := yaml.Unmarshal(data, &file); unmarshalErr != nil {
		return nil, fmt.Errorf("parse targets file: %w", unmarshalErr)
	}

	if len(file.Targets) == 0 {
		return nil, ErrNoTargets
	}

	seen := make(map[string]struct{}, len(file.Targets))
	for i := range file.Targets {
		t := &file.Targets[i]
		if validateErr := validate(t); validateErr != nil {
			return nil, fmt.Errorf("target %d (%s): %w", i, t.Key, validateErr)
		}
		if _, dup := seen[t.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, t.Key)
		}
		seen[t.Key] = struct{}{}
	}

	return file.Targets, nil
}

// Filter returns only the targets whose key is in keys. An empty keys slice
// returns all targets unchanged.
func Filter(all []domain.Target, keys []string) []domain.Target {
	if len(keys) == 0 {
		return all
	}

	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}

	out := make([]domain.Target, 0, len(keys))
	for _, t := range all {
		if _, ok := want[t.Key]; ok {
			out = append(out, t)
		}
	}
	return out
}

// validate checks required fields and URL shape for one target.
func validate(t *domain.Target) error {
	if t.Key == "" {
		return fmt.Errorf("%w: key", ErrMissingRequiredField)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingRequiredField)
	}
	if t.URL == "" {
		return fmt.Errorf("%w: url", ErrMissingRequiredField)
	}

	parsed, err := url.Parse(t.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidURL, t.URL)
	}

	return nil
}
