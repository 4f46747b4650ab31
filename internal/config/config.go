// Package config loads irviewer settings from a YAML file and the environment.
package config

import (
	"bytes"
	"encoding"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/maleadt/IRViewer/internal/colwriter"
	"github.com/maleadt/IRViewer/internal/lineinfo"
)

// Environment variables overriding file settings.
const (
	EnvLoadPath = "JULIA_LOAD_PATH"
	EnvBaseDir  = "JULIA_BASE_DIR"
)

// Markers selects the set of characters annotations are drawn with.
type Markers int

const (
	_ Markers = iota
	MarkersBox
	MarkersASCII
)

func (m *Markers) String() string {
	v, err := m.MarshalText()
	if err != nil {
		return fmt.Sprintf("markers-invalid(%d)", *m)
	}

	return string(v)
}

var _ encoding.TextUnmarshaler = (*Markers)(nil)

func (m *Markers) UnmarshalText(b []byte) error {
	switch string(b) {
	case "box":
		*m = MarkersBox
		return nil
	case "ascii":
		*m = MarkersASCII
		return nil
	default:
		return errors.Newf("unknown markers %q", b)
	}
}

func (m *Markers) MarshalText() ([]byte, error) {
	switch *m {
	case MarkersBox:
		return []byte("box"), nil
	case MarkersASCII:
		return []byte("ascii"), nil
	default:
		return nil, errors.Newf("cannot marshal invalid Markers(%d)", *m)
	}
}

// Config is irviewer settings.
type Config struct {
	// LoadPath is the root source paths are shortened against.
	LoadPath string `yaml:"load_path"`

	// BaseDir is where sources are looked for when they are not found at
	// their recorded paths.
	BaseDir string `yaml:"base_dir"`

	// Markers is the base set of annotation markers, the fields below
	// override single pieces of it.
	Markers Markers `yaml:"markers"`

	SourceColumn       int    `yaml:"source_column"`
	IndentUnit         string `yaml:"indent_unit"`
	BlankUnit          string `yaml:"blank_unit"`
	HeaderMarker       string `yaml:"header_marker"`
	ContinuationMarker string `yaml:"continuation_marker"`
}

// Default returns settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Markers:      MarkersBox,
		SourceColumn: lineinfo.DefaultStyle().SourceColumn,
	}
}

// Load reads settings from a YAML file over the defaults. An empty path
// means defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	if err := cfg.decode(data); err != nil {
		return nil, errors.Wrapf(err, "decode config file %s", path)
	}

	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// ApplyEnv overrides settings with environment variables looked up with
// the given function, os.LookupEnv usually.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLoadPath); ok {
		c.LoadPath = v
	}
	if v, ok := lookup(EnvBaseDir); ok {
		c.BaseDir = v
	}
}

// Validate checks settings are usable.
func (c *Config) Validate() error {
	if c.SourceColumn <= 0 {
		return errors.Newf("source column must be positive, got %d", c.SourceColumn)
	}

	if _, err := c.Markers.MarshalText(); err != nil {
		return errors.Wrap(err, "check markers")
	}

	style := c.Style()
	if style.HeaderMarker == "" || style.ContinuationMarker == "" {
		return errors.New("markers must not be empty")
	}

	// Blank indentation replaces the indent unit of located instructions.
	indent, blank := colwriter.Width(style.IndentUnit), colwriter.Width(style.BlankUnit)
	if indent == 0 || indent != blank {
		return errors.Newf("indent unit %q and blank unit %q must have the same nonzero width", style.IndentUnit, style.BlankUnit)
	}

	return nil
}

// Style returns the annotation style the settings describe.
func (c *Config) Style() lineinfo.Style {
	style := lineinfo.DefaultStyle()
	if c.Markers == MarkersASCII {
		style.IndentUnit = "| "
		style.HeaderMarker = "/ "
		style.ContinuationMarker = "+ "
	}

	style.SourceColumn = c.SourceColumn
	override(&style.IndentUnit, c.IndentUnit)
	override(&style.BlankUnit, c.BlankUnit)
	override(&style.HeaderMarker, c.HeaderMarker)
	override(&style.ContinuationMarker, c.ContinuationMarker)
	return style
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
