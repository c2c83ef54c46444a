package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, 100, c.XP.Base)
	assert.Equal(t, 115, c.XP.GrowthPct)
	assert.Equal(t, 3, c.Events.PrepHorizonDays)
	assert.Equal(t, 7, c.Events.BadgeHorizonDays)
	assert.InDelta(t, 0.3, c.Daily.EncounterChance, 1e-9)
	assert.Equal(t, 15, c.Autosave.IntervalSeconds)
}

func TestLoad_FileOverridesAndBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yml")
	require.NoError(t, os.WriteFile(path, []byte("xp:\n  base: 200\ndaily:\n  encounter_chance: 0.5\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200, c.XP.Base)
	assert.InDelta(t, 0.5, c.Daily.EncounterChance, 1e-9)
	assert.Equal(t, 115, c.XP.GrowthPct, "unset fields keep defaults")
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t-"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
