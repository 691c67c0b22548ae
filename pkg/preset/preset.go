// Package preset holds named line settings for common UART links.
package preset

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

//go:embed presets.yaml
var rawPresets []byte

var presets []Preset

// ErrNotFound is returned by Find for unknown names.
var ErrNotFound = errors.New("preset: not found")

// Preset is a named baud rate and frame format.
type Preset struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Baud        uint32 `yaml:"baud"`
	FormatName  string `yaml:"format"`

	Format frame.Format `yaml:"-"`
}

// All returns every preset sorted by name.
func All() []Preset {
	return slices.Clone(presets)
}

// Find looks a preset up by case-insensitive name.
func Find(name string) (Preset, error) {
	i := slices.IndexFunc(presets, func(p Preset) bool {
		return strings.EqualFold(p.Name, name)
	})
	if i < 0 {
		return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return presets[i], nil
}

// Config builds a core configuration for this preset on a clockHz reference.
func (p Preset) Config(clockHz uint32) (*uart.Config, error) {
	cfg := uart.DefaultConfig()
	cfg.ClockHz = clockHz
	cfg.BaudRate = p.Baud
	cfg.Format = p.Format
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	return cfg, nil
}

func load(raw []byte) ([]Preset, error) {
	var doc struct {
		Presets []Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for i := range doc.Presets {
		p := &doc.Presets[i]
		f, err := frame.ParseFormat(p.FormatName)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", p.Name, err)
		}
		if p.Baud == 0 {
			return nil, fmt.Errorf("preset %s: baud must be positive", p.Name)
		}
		p.Format = f
	}
	slices.SortFunc(doc.Presets, func(a, b Preset) int {
		return strings.Compare(a.Name, b.Name)
	})
	return doc.Presets, nil
}

func init() {
	p, err := load(rawPresets)
	if err != nil {
		panic(err)
	}
	presets = p
}
