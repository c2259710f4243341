package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billing "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/billing/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Scenarios, cfg.Scenarios)
	assert.Equal(t, "CHF", cfg.Currency)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "default.json", `{
  "year": 2023,
  "seed": 11,
  "tariff": {"energy_price_chf_per_kwh": 0.2, "grid_usage_chf_per_kwh": 0.1, "feed_in_chf_per_kwh": 0.06},
  "profiles": {
    "base_load_a_kwh_per_day": 7, "base_load_b_kwh_per_day": 9, "base_load_c_kwh_per_day": 11,
    "flex_energy_b_kwh_per_day": 2, "flex_shift_share_to_midday": 0.5,
    "pv_kwp": 8, "pv_capacity_factor_target": 0.12
  },
  "scenarios": [
    {"name": "ZEV", "mode": "ZEV", "leg_discount": 0.0},
    {"name": "LEG_15", "mode": "leg", "leg_discount": 0.15}
  ]
}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2023, cfg.Year)
	assert.Equal(t, int64(11), cfg.Seed)
	assert.Equal(t, 0.06, cfg.Tariff.FeedIn)
	assert.Equal(t, 8.0, cfg.ProfileParams().PVKWp)

	scenarios := cfg.ScenarioValues()
	require.Len(t, scenarios, 2)
	assert.Equal(t, billing.ModeLEG, scenarios[1].Mode)
	assert.Equal(t, 0.15, scenarios[1].LEGDiscount)
}

func TestLoadYAMLKeepsDefaultsForMissingSections(t *testing.T) {
	path := writeFile(t, "run.yaml", "year: 2025\nscenarios:\n  - name: only\n    mode: ZEV\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2025, cfg.Year)
	assert.Equal(t, Default().Tariff, cfg.Tariff)
	assert.Len(t, cfg.Scenarios, 1)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ZEVLEG_YEAR", "2020")
	t.Setenv("ZEVLEG_SEED", "99")
	t.Setenv("ZEVLEG_OUT_DIR", "/tmp/zevleg")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2020, cfg.Year)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, "/tmp/zevleg", cfg.OutputDir)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative tariff": "tariff:\n  feed_in_chf_per_kwh: -1\n",
		"discount":        "scenarios:\n  - {name: x, mode: LEG, leg_discount: 2}\n",
		"duplicate":       "scenarios:\n  - {name: x, mode: ZEV}\n  - {name: x, mode: LEG}\n",
		"empty name":      "scenarios:\n  - {name: '', mode: ZEV}\n",
		"share":           "profiles:\n  flex_shift_share_to_midday: 3\n",
		"syntax":          "year: [\n",
		"nan share":       "profiles:\n  flex_shift_share_to_midday: .nan\n",
		"nan feed-in":     "tariff:\n  feed_in_chf_per_kwh: .nan\n",
		"inf energy":      "tariff:\n  energy_price_chf_per_kwh: .inf\n",
		"nan discount":    "scenarios:\n  - {name: x, mode: LEG, leg_discount: .nan}\n",
		"nan pv":          "profiles:\n  pv_kwp: .nan\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", body))
			assert.Error(t, err)
		})
	}
}

func TestUnknownModeIsNotAConfigError(t *testing.T) {
	path := writeFile(t, "modes.yaml", "scenarios:\n  - {name: a, mode: ZEV}\n  - {name: b, mode: P2P}\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, billing.Mode("P2P"), cfg.ScenarioValues()[1].Mode)
}
