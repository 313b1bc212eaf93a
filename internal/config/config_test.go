package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 3, cfg.Strain.Threshold)
	assert.Equal(t, 0.5, cfg.Saturation.StableRate)
	assert.Equal(t, 2, cfg.Saturation.RefinementStable)
	assert.Equal(t, 0.85, cfg.Saturation.RedundancyHigh)
	assert.Equal(t, 0.7, cfg.Saturation.CoverageAdequate)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging level"},
		{"bad format", func(c *Config) { c.Logging.Format = "text" }, "logging format"},
		{"zero threshold", func(c *Config) { c.Strain.Threshold = 0 }, "strain threshold"},
		{"negative stable rate", func(c *Config) { c.Saturation.StableRate = -1 }, "stable rate"},
		{"negative refinement", func(c *Config) { c.Saturation.RefinementStable = -1 }, "refinement"},
		{"redundancy over one", func(c *Config) { c.Saturation.RedundancyHigh = 1.1 }, "redundancy"},
		{"coverage zero", func(c *Config) { c.Saturation.CoverageAdequate = 0 }, "coverage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func writeConfigFile(t *testing.T, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "methodd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

// isolateUserConfig keeps Load("") away from any real user config file.
func isolateUserConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
}

func TestLoad_Defaults(t *testing.T) {
	isolateUserConfig(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_DefaultPathPickedUp(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("relies on XDG_CONFIG_HOME resolution")
	}
	isolateUserConfig(t)
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "methodd")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strain:\n  threshold: 6\n"), 0o600))
	require.NoError(t, os.Chmod(path, 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Strain.Threshold)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
strain:
  threshold: 5
saturation:
  redundancy_high: 0.9
`, 0o600)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Strain.Threshold)
	assert.Equal(t, 0.9, cfg.Saturation.RedundancyHigh)
	// Untouched fields keep their defaults.
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 0.5, cfg.Saturation.StableRate)
}

func TestLoad_RejectsWorldReadableFile(t *testing.T) {
	path := writeConfigFile(t, "strain:\n  threshold: 5\n", 0o644)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}

func TestLoad_AcceptsReadOnlyFile(t *testing.T) {
	path := writeConfigFile(t, "strain:\n  threshold: 4\n", 0o400)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Strain.Threshold)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "strain:\n  threshold: 5\n", 0o600)
	t.Setenv("METHODD_STRAIN_THRESHOLD", "7")
	t.Setenv("METHODD_LOGGING_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Strain.Threshold)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_EnvironmentNestedKeys(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("METHODD_SATURATION_STABLE_RATE", "0.25")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Saturation.StableRate)
}

func TestLoad_InvalidMergedConfigRejected(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("METHODD_LOGGING_LEVEL", "loud")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "strain: [unclosed", 0o600)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}
