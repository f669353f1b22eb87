package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/akhildatla/intcode/pkg/vm"
)

// Manifest errors
var (
	ErrNoProgram    = errors.New("manifest has no program")
	ErrInvalidPatch = errors.New("invalid patch address")
)

// Manifest describes a complete run: which image to load, how to patch it
// and what to feed it.
//
//	program: day02.txt
//	patches:
//	  1: 12
//	  2: 2
//	inputs: [1]
//	ascii:
//	  - "NOT A J"
//	  - "WALK"
//	max_steps: 1000000
//	max_memory: 1048576
//	timeout: 5s
type Manifest struct {
	// Program is the image path, relative to the manifest's directory.
	Program string `yaml:"program"`

	// Column selects the column for tabular images.
	Column string `yaml:"column,omitempty"`

	Patches  map[int64]int64 `yaml:"patches,omitempty"`
	Inputs   []int64         `yaml:"inputs,omitempty"`
	ASCII    []string        `yaml:"ascii,omitempty"`
	MaxSteps int64           `yaml:"max_steps,omitempty"`
	Timeout  time.Duration   `yaml:"timeout,omitempty"`

	// MaxMemory caps memory growth in cells; zero means vm.DefaultMemoryLimit.
	MaxMemory int64 `yaml:"max_memory,omitempty"`
}

// LoadManifest reads and validates a YAML run manifest.
func LoadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var m Manifest
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if m.Program == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoProgram)
	}
	limit := m.MaxMemory
	if limit <= 0 {
		limit = vm.DefaultMemoryLimit
	}
	for addr := range m.Patches {
		if addr < 0 || addr >= limit {
			return nil, fmt.Errorf("%s: %w: %d", path, ErrInvalidPatch, addr)
		}
	}
	if !filepath.IsAbs(m.Program) {
		m.Program = filepath.Join(filepath.Dir(path), m.Program)
	}

	return &m, nil
}

// Image loads the manifest's program and applies its patches.
func (m *Manifest) Image() (vm.Memory, error) {
	mem, err := Load(m.Program, WithColumn(m.Column))
	if err != nil {
		return nil, err
	}

	for addr, value := range m.Patches {
		mem.Write(addr, value)
	}
	return mem, nil
}
