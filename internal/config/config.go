package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	billing "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/billing/domain"
	profiles "github.com/romanandriymitsoda-coder/zev-leg-settlement-mvp/internal/profiles/domain"
)

// TariffConfig holds tariff prices per kWh.
type TariffConfig struct {
	EnergyPrice float64 `yaml:"energy_price_chf_per_kwh"`
	GridUsage   float64 `yaml:"grid_usage_chf_per_kwh"`
	FeedIn      float64 `yaml:"feed_in_chf_per_kwh"`
}

// ProfilesConfig holds the synthetic profile parameters.
type ProfilesConfig struct {
	BaseLoadA              float64 `yaml:"base_load_a_kwh_per_day"`
	BaseLoadB              float64 `yaml:"base_load_b_kwh_per_day"`
	BaseLoadC              float64 `yaml:"base_load_c_kwh_per_day"`
	FlexEnergyB            float64 `yaml:"flex_energy_b_kwh_per_day"`
	FlexShiftShareToMidday float64 `yaml:"flex_shift_share_to_midday"`
	PVKWp                  float64 `yaml:"pv_kwp"`
	PVCapacityFactorTarget float64 `yaml:"pv_capacity_factor_target"`
}

// ScenarioConfig is one entry of the ordered scenario list.
type ScenarioConfig struct {
	Name        string  `yaml:"name"`
	Mode        string  `yaml:"mode"`
	LEGDiscount float64 `yaml:"leg_discount"`
}

// Config is the run configuration. JSON documents are accepted as YAML.
type Config struct {
	Year      int              `yaml:"year"`
	Seed      int64            `yaml:"seed"`
	Currency  string           `yaml:"currency"`
	OutputDir string           `yaml:"output_dir"`
	Tariff    TariffConfig     `yaml:"tariff"`
	Profiles  ProfilesConfig   `yaml:"profiles"`
	Scenarios []ScenarioConfig `yaml:"scenarios"`
}

// Default returns the built-in configuration used when no file is given.
func Default() Config {
	return Config{
		Year:      2024,
		Seed:      7,
		Currency:  "CHF",
		OutputDir: filepath.FromSlash("outputs"),
		Tariff: TariffConfig{
			EnergyPrice: 0.13,
			GridUsage:   0.11,
			FeedIn:      0.08,
		},
		Profiles: ProfilesConfig{
			BaseLoadA:              8,
			BaseLoadB:              10,
			BaseLoadC:              12,
			FlexEnergyB:            3,
			FlexShiftShareToMidday: 0.6,
			PVKWp:                  12,
			PVCapacityFactorTarget: 0.11,
		},
		Scenarios: []ScenarioConfig{
			{Name: "ZEV", Mode: "ZEV"},
			{Name: "LEG_0", Mode: "LEG", LEGDiscount: 0},
			{Name: "LEG_20", Mode: "LEG", LEGDiscount: 0.2},
			{Name: "LEG_40", Mode: "LEG", LEGDiscount: 0.4},
		},
	}
}

// Load reads the config file at path (if any) over the defaults, then applies
// env overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("ZEVLEG_YEAR"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("config: ZEVLEG_YEAR: %w", err)
		}
		cfg.Year = year
	}
	if v := os.Getenv("ZEVLEG_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("config: ZEVLEG_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	cfg.OutputDir = getenvDefault("ZEVLEG_OUT_DIR", cfg.OutputDir)
	if cfg.Currency == "" {
		cfg.Currency = "CHF"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the parts of the config that must hold for any run. Scenario
// modes are checked per scenario at billing time so one bad entry does not
// block the others.
func (c Config) Validate() error {
	if _, err := c.TariffValue(); err != nil {
		return err
	}
	if err := c.ProfileParams().Validate(); err != nil {
		return err
	}
	if len(c.Scenarios) == 0 {
		return errors.New("config: at least one scenario required")
	}
	seen := make(map[string]bool, len(c.Scenarios))
	for _, s := range c.Scenarios {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return billing.ErrEmptyScenarioName
		}
		if seen[name] {
			return fmt.Errorf("config: duplicate scenario %q", name)
		}
		seen[name] = true
		if !billing.ValidDiscount(s.LEGDiscount) {
			return fmt.Errorf("%w: scenario %q: %v", billing.ErrInvalidDiscount, name, s.LEGDiscount)
		}
	}
	if c.OutputDir == "" {
		return errors.New("config: output dir required")
	}
	return nil
}

// TariffValue returns the validated tariff.
func (c Config) TariffValue() (billing.Tariff, error) {
	return billing.NewTariff(c.Tariff.EnergyPrice, c.Tariff.GridUsage, c.Tariff.FeedIn)
}

// ProfileParams maps the profile section to generator parameters.
func (c Config) ProfileParams() profiles.Params {
	return profiles.Params{
		Year:                   c.Year,
		Seed:                   c.Seed,
		BaseLoadAKWhPerDay:     c.Profiles.BaseLoadA,
		BaseLoadBKWhPerDay:     c.Profiles.BaseLoadB,
		BaseLoadCKWhPerDay:     c.Profiles.BaseLoadC,
		FlexEnergyBKWhPerDay:   c.Profiles.FlexEnergyB,
		FlexShiftShareToMidday: c.Profiles.FlexShiftShareToMidday,
		PVKWp:                  c.Profiles.PVKWp,
		PVCapacityFactorTarget: c.Profiles.PVCapacityFactorTarget,
	}
}

// ScenarioValues returns the scenarios in config order. Modes are upper-cased
// but not checked here.
func (c Config) ScenarioValues() []billing.Scenario {
	out := make([]billing.Scenario, 0, len(c.Scenarios))
	for _, s := range c.Scenarios {
		out = append(out, billing.Scenario{
			Name:        strings.TrimSpace(s.Name),
			Mode:        billing.Mode(strings.ToUpper(strings.TrimSpace(s.Mode))),
			LEGDiscount: s.LEGDiscount,
		})
	}
	return out
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
