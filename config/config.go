// Package config reads the advisor configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/etnz/advisor"
	"gopkg.in/yaml.v2"
)

// Filename is the default configuration file name.
const Filename = "advisor.yaml"

// Config is the content of the configuration file.
type Config struct {
	Model struct {
		RiskFree     float64 `yaml:"risk_free"`
		BenchmarkVol float64 `yaml:"benchmark_vol"`
		MinHistory   int     `yaml:"min_history"`
	} `yaml:"model"`
	Optimizer struct {
		Lambda      float64 `yaml:"lambda"`
		LotNotional float64 `yaml:"lot_notional"`
		LookAhead   string  `yaml:"look_ahead"` // sharpe or utility
	} `yaml:"optimizer"`
	Projection struct {
		Paths        int     `yaml:"paths"`
		StepsPerYear int     `yaml:"steps_per_year"`
		HorizonYears float64 `yaml:"horizon_years"`
		Seed         *uint64 `yaml:"seed"`
	} `yaml:"projection"`
	Cache struct {
		TTL  time.Duration `yaml:"ttl"`
		Size int           `yaml:"size"`
	} `yaml:"cache"`
	Concurrency int    `yaml:"concurrency"`
	Currency    string `yaml:"currency"`
	Log         struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"` // rotated log file, stderr when empty
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
	Provider advisor.FieldPaths `yaml:"provider"`
}

// Default returns the default configuration.
func Default() *Config {
	c := new(Config)
	c.Model.RiskFree = 0.04
	c.Model.BenchmarkVol = 0.15
	c.Model.MinHistory = advisor.MinHistory
	c.Optimizer.Lambda = 1
	c.Optimizer.LotNotional = 100
	c.Optimizer.LookAhead = "sharpe"
	c.Projection.Paths = 1000
	c.Projection.StepsPerYear = 12
	c.Projection.HorizonYears = 10
	c.Cache.TTL = 15 * time.Minute
	c.Cache.Size = 256
	c.Concurrency = 4
	c.Currency = "USD"
	c.Log.Level = "info"
	c.Log.MaxSizeMB = 10
	c.Log.MaxBackups = 3
	c.Provider = advisor.DefaultFieldPaths
	return c
}

// Decode reads a configuration on top of the defaults.
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	if err := yaml.NewDecoder(r).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("cannot decode configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the configuration file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open configuration %q: %w", filename, err)
	}
	defer file.Close()
	c, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return c, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if _, err := advisor.ParseLookAhead(c.Optimizer.LookAhead); err != nil {
		return err
	}
	if c.Optimizer.Lambda < 0 {
		return fmt.Errorf("invalid configuration: negative lambda %v", c.Optimizer.Lambda)
	}
	if c.Projection.HorizonYears < 0 {
		return fmt.Errorf("invalid configuration: negative horizon %v", c.Projection.HorizonYears)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("invalid configuration: negative concurrency %d", c.Concurrency)
	}
	return nil
}

// Options returns the pipeline options of the configuration.
func (c *Config) Options() advisor.Options {
	look, _ := advisor.ParseLookAhead(c.Optimizer.LookAhead)
	return advisor.Options{
		Forecaster:  advisor.Forecaster{RiskFree: c.Model.RiskFree, BenchmarkVol: c.Model.BenchmarkVol},
		Lambda:      c.Optimizer.Lambda,
		LotNotional: c.Optimizer.LotNotional,
		LookAhead:   look,
		MinHistory:  c.Model.MinHistory,
		Projector: advisor.Projector{
			Paths:          c.Projection.Paths,
			StepsPerYear:   c.Projection.StepsPerYear,
			PeriodsPerYear: advisor.TradingDays,
			Seed:           c.Projection.Seed,
		},
		HorizonYears: c.Projection.HorizonYears,
	}
}
