package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the only manifest version understood.
const CurrentVersion = 1

// Manifest is a parsed stamping manifest.
type Manifest struct {
	Version int      `yaml:"version"`
	BaseDir string   `yaml:"base_dir,omitempty"`
	Targets []Target `yaml:"targets"`

	// dir is the directory containing the manifest file
	dir string
}

// Target pairs one firmware file with the defaults to stamp into it.
type Target struct {
	Name     string `yaml:"name"`
	Firmware string `yaml:"firmware"`
	Defaults string `yaml:"defaults"`
	Output   string `yaml:"output,omitempty"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	return Parse(data, filepath.Dir(absPath))
}

// Parse decodes and validates a manifest. dir is the directory relative
// paths are resolved from.
func Parse(data []byte, dir string) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	m.dir = dir

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest for missing fields, duplicate names and
// targets that would overwrite each other's output.
func (m *Manifest) Validate() error {
	if m.Version != CurrentVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (expected %d)", m.Version, CurrentVersion),
		}
	}
	if len(m.Targets) == 0 {
		return &ValidationError{Field: "targets", Message: "no targets defined"}
	}

	names := make(map[string]int)
	outputs := make(map[string]string)

	for i, t := range m.Targets {
		field := fmt.Sprintf("targets[%d]", i)

		if t.Name == "" {
			return &ValidationError{Field: field + ".name", Message: "required"}
		}
		if t.Firmware == "" {
			return &ValidationError{Field: field + ".firmware", Message: "required"}
		}
		if t.Defaults == "" {
			return &ValidationError{Field: field + ".defaults", Message: "required"}
		}

		if prev, dup := names[t.Name]; dup {
			return &ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate target name %q (also targets[%d])", t.Name, prev),
			}
		}
		names[t.Name] = i

		out := filepath.Clean(m.OutputPath(t))
		if other, dup := outputs[out]; dup {
			return &ValidationError{
				Field:   field + ".output",
				Message: fmt.Sprintf("%s is also written by target %q", out, other),
			}
		}
		outputs[out] = t.Name
	}

	// A target may not write a file another target reads
	for i, t := range m.Targets {
		out := filepath.Clean(m.OutputPath(t))
		for _, other := range m.Targets {
			if other.Name != t.Name && filepath.Clean(m.FirmwarePath(other)) == out {
				return &ValidationError{
					Field:   fmt.Sprintf("targets[%d].output", i),
					Message: fmt.Sprintf("%s is the firmware input of target %q", out, other.Name),
				}
			}
		}
	}

	return nil
}

// Resolve makes path absolute relative to the manifest's base directory.
func (m *Manifest) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	base := m.BaseDir
	if !filepath.IsAbs(base) {
		base = filepath.Join(m.dir, base)
	}
	return filepath.Join(base, path)
}

// FirmwarePath returns the resolved input firmware path of t.
func (m *Manifest) FirmwarePath(t Target) string {
	return m.Resolve(t.Firmware)
}

// DefaultsPath returns the resolved defaults file path of t.
func (m *Manifest) DefaultsPath(t Target) string {
	return m.Resolve(t.Defaults)
}

// OutputPath returns where t is written: its output, or its firmware when
// no output is given.
func (m *Manifest) OutputPath(t Target) string {
	if t.Output == "" {
		return m.FirmwarePath(t)
	}
	return m.Resolve(t.Output)
}
