package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	//** Arrange
	t.Chdir(t.TempDir())

	//** Act
	cfg, err := Load()

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Equal(t, ',', cfg.Input.Delimiter)
	assert.Equal(t, "out", cfg.Output.Directory)
	assert.Equal(t, model.DefaultCalendar(), cfg.Calendar)
	assert.Equal(t, model.DefaultPolicy(), cfg.Policy)
}

func TestLoadEnvironment(t *testing.T) {
	//** Arrange
	t.Chdir(t.TempDir())
	t.Setenv("TIMEGRID_SEED", "42")
	t.Setenv("TIMEGRID_LOG_FORMAT", "json")
	t.Setenv("TIMEGRID_CSV_DELIMITER", ";")
	t.Setenv("TIMEGRID_OUTPUT_PDF", "true")

	//** Act
	cfg, err := Load()

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ';', cfg.Input.Delimiter)
	assert.True(t, cfg.Output.PDF)
}

func TestLoadDotEnvFile(t *testing.T) {
	//** Arrange
	t.Chdir(t.TempDir())
	for _, key := range []string{"TIMEGRID_SEED", "TIMEGRID_OUTPUT_DIR"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("TIMEGRID_LOG_FORMAT", "json")
	content := "TIMEGRID_SEED=7\nTIMEGRID_OUTPUT_DIR=reports\nTIMEGRID_LOG_FORMAT=console\n"
	require.NoError(t, os.WriteFile(".env", []byte(content), 0o644))

	//** Act
	cfg, err := Load()

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, "reports", cfg.Output.Directory)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	//** Arrange
	t.Chdir(t.TempDir())
	t.Setenv("TIMEGRID_LOG_FORMAT", "xml")

	//** Act
	_, err := Load()

	//** Assert
	assert.Error(t, err)
}

func TestLoadPolicyFile(t *testing.T) {
	//** Arrange
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `
calendar:
  days: [MON, TUE, WED]
  minor_per_week: 1
policy:
  departments: [ME-A, ME-B]
  section_groups:
    ME: [ME-A, ME-B]
  lab_pools:
    ME-A: hardware_lab
  alternation:
    base: ME
    peers: []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg := Default()

	//** Act
	err := cfg.LoadPolicy(path)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, []model.Day{"MON", "TUE", "WED"}, cfg.Calendar.Days)
	assert.Equal(t, 1, cfg.Calendar.MinorPerWeek)
	assert.Equal(t, model.DefaultCalendar().Slots, cfg.Calendar.Slots)
	assert.Equal(t, map[string][]string{"ME": {"ME-A", "ME-B"}}, cfg.Policy.SectionGroups)
	assert.Equal(t, model.HardwareLab, cfg.Policy.LabPools["ME-A"])
	assert.Equal(t, "ME", cfg.Policy.Alternation.Base)
	assert.NoError(t, cfg.Validate())
}

func TestLoadPolicyFileRejectsUnknownKeys(t *testing.T) {
	//** Arrange
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"policy": {"departmentz": ["X"]}}`), 0o644))
	cfg := Default()

	//** Act
	err := cfg.LoadPolicy(path)

	//** Assert
	assert.Error(t, err)
}

func TestParseDelimiter(t *testing.T) {
	assert.Equal(t, ',', parseDelimiter("", ','))
	assert.Equal(t, '\t', parseDelimiter("tab", ','))
	assert.Equal(t, ';', parseDelimiter(";", ','))
}
