package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the repo-root configuration file.
const FileName = "ledgerly.yaml"

// Config represents the top-level ledgerly.yaml configuration.
type Config struct {
	Accounts   []Account        `yaml:"accounts"`
	Projection ProjectionConfig `yaml:"projection"`
}

// Account describes one tracked bank account.
type Account struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	StartingBalance string `yaml:"starting_balance"` // decimal string, e.g. "1500.00"
}

// ProjectionConfig controls forward balance projection.
type ProjectionConfig struct {
	HorizonDays int `yaml:"horizon_days"`
}

// Load reads a ledgerly.yaml file from disk and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	for _, a := range cfg.Accounts {
		if a.ID == "" {
			return nil, fmt.Errorf("account %q: missing id", a.Name)
		}
		if _, err := a.Balance(); err != nil {
			return nil, fmt.Errorf("account %s: %w", a.ID, err)
		}
	}
	if cfg.Projection.HorizonDays <= 0 {
		cfg.Projection.HorizonDays = DefaultHorizonDays
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// DefaultHorizonDays is used when projection.horizon_days is unset.
const DefaultHorizonDays = 30

// Default returns a Config with one account and default projection
// settings, for a freshly initialized repo.
func Default(accountID, accountName string) *Config {
	return &Config{
		Accounts: []Account{
			{ID: accountID, Name: accountName, StartingBalance: "0.00"},
		},
		Projection: ProjectionConfig{HorizonDays: DefaultHorizonDays},
	}
}

// Account returns the account with the given ID.
func (c *Config) Account(id string) (Account, bool) {
	for _, a := range c.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// Balance parses the account's starting balance. Empty means zero.
func (a Account) Balance() (decimal.Decimal, error) {
	if a.StartingBalance == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(a.StartingBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing starting_balance %q: %w", a.StartingBalance, err)
	}
	return d, nil
}
