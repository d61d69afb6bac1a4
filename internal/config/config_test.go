package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/sitegraph/internal/cost"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, cost.BaselineRegionID, cfg.DefaultRegion)

	catalog, err := cfg.Catalog()
	require.NoError(t, err)
	_, err = catalog.Lookup(cost.BaselineRegionID)
	assert.NoError(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "regions.yaml", `regions:
  - id: calgary
    labor_multiplier: 1.2
    material_multiplier: 1.1
    permit_multiplier: 0.9
`)
	path := writeFile(t, dir, "sitegraph.yaml", `default_region: calgary
regions_file: regions.yaml
parallel_workers: 8
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "calgary", cfg.DefaultRegion)
	assert.Equal(t, 8, cfg.ParallelWorkers)
	assert.Equal(t, 500, cfg.ParallelThreshold, "unset keys keep defaults")
	assert.Equal(t, filepath.Join(dir, "regions.yaml"), cfg.RegionsFile)
	assert.Equal(t, "json", cfg.Log.Format)

	catalog, err := cfg.Catalog()
	require.NoError(t, err)
	calgary, err := catalog.Lookup("calgary")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, calgary.PermitMultiplier, 1e-9)
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":         "default_region: [",
		"negative workers": "parallel_workers: -1",
		"bad level":        "log:\n  level: shouty",
		"bad format":       "log:\n  format: xml",
		"empty region":     "default_region: \"\"",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "sitegraph.yaml", body)
			_, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_ShippedExample(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "sitegraph.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "calgary", cfg.DefaultRegion)

	catalog, err := cfg.Catalog()
	require.NoError(t, err)
	ids := make([]string, 0)
	for _, r := range catalog.Regions() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"baseline", "calgary", "rural-mb", "toronto"}, ids)
}
