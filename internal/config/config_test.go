package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maleadt/IRViewer/internal/lineinfo"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "irviewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, lineinfo.DefaultStyle(), cfg.Style())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
load_path: /opt/julia/share
base_dir: /build
markers: ascii
source_column: 60
continuation_marker: "> "
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "/opt/julia/share", cfg.LoadPath)
	require.Equal(t, "/build", cfg.BaseDir)
	require.Equal(t, MarkersASCII, cfg.Markers)
	require.Equal(t, lineinfo.Style{
		IndentUnit:         "| ",
		BlankUnit:          "  ",
		HeaderMarker:       "/ ",
		ContinuationMarker: "> ",
		SourceColumn:       60,
	}, cfg.Style())
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown field",
			content: "source_colum: 10\n",
		},
		{
			name:    "unknown markers",
			content: "markers: fancy\n",
		},
		{
			name:    "not a mapping",
			content: "- a\n- b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			require.Contains(t, err.Error(), "decode config file")
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read config file")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.LoadPath = "/from/file"
	cfg.BaseDir = "/from/file"

	env := map[string]string{EnvBaseDir: "/from/env"}
	cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	require.Equal(t, "/from/file", cfg.LoadPath)
	require.Equal(t, "/from/env", cfg.BaseDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		err    string
	}{
		{
			name:   "zero column",
			modify: func(c *Config) { c.SourceColumn = 0 },
			err:    "source column must be positive, got 0",
		},
		{
			name:   "invalid markers",
			modify: func(c *Config) { c.Markers = 0 },
			err:    "check markers: cannot marshal invalid Markers(0)",
		},
		{
			name:   "misaligned blank unit",
			modify: func(c *Config) { c.BlankUnit = "   " },
			err:    `indent unit "│ " and blank unit "   " must have the same nonzero width`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			require.EqualError(t, cfg.Validate(), tt.err)
		})
	}
}

func TestMarkersText(t *testing.T) {
	var m Markers
	require.NoError(t, m.UnmarshalText([]byte("ascii")))
	require.Equal(t, "ascii", m.String())
	require.Error(t, m.UnmarshalText([]byte("unicode")))

	m = 7
	require.Equal(t, "markers-invalid(7)", m.String())
}
