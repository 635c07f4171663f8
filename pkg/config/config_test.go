package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/planarize/pkg/classify"
	"github.com/chazu/planarize/pkg/units"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	assert.IsType(t, classify.BoundingBoxStrategy{}, Default().Strategy())
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "planarize.yaml", `
units: mm
tolerance: 2
containment: polygon
cache_size: 16
mesh_cells: 50
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, units.Millimetre, cfg.Units)
	assert.InDelta(t, 0.002, cfg.Tolerance, 1e-12)
	assert.Equal(t, ContainmentPolygon, cfg.Containment)
	assert.Equal(t, 16, cfg.CacheSize)
	assert.Equal(t, 50, cfg.MeshCells)

	opts := cfg.ConverterOptions()
	assert.IsType(t, classify.PolygonStrategy{}, opts.Strategy)
	assert.Equal(t, 16, opts.CacheSize)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "planarize.yaml", "cache_size: 3\n")
	t.Chdir(dir)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.CacheSize)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "planarize.yaml", "containment: polygon\ntolerance: 0.01\n")
	t.Setenv("PLANARIZE_CONTAINMENT", "bbox")
	t.Setenv("PLANARIZE_TOLERANCE", "0.005")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ContainmentBBox, cfg.Containment)
	assert.InDelta(t, 0.005, cfg.Tolerance, 1e-12)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"unknown units", "units: cubits\n"},
		{"bad containment", "containment: voronoi\n"},
		{"negative tolerance", "tolerance: -1\n"},
		{"zero cache", "cache_size: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "c.yaml", tt.body)
			_, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
