// Package config loads feature definitions and target settings from YAML,
// with .env and environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gofreeze/chain"
	"gofreeze/feature"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvProcess = "GOFREEZE_PROCESS"
	EnvModule  = "GOFREEZE_MODULE"
	EnvPID     = "GOFREEZE_PID"
	EnvListen  = "GOFREEZE_LISTEN"
	EnvTraceDB = "GOFREEZE_TRACE_DB"
)

// Config is the whole configuration file.
type Config struct {
	Target   Target    `yaml:"target"`
	Listen   string    `yaml:"listen,omitempty"`
	TraceDB  string    `yaml:"trace_db,omitempty"`
	Features []Feature `yaml:"features"`
}

// Target selects the process and the module the chains start from.
// PID wins over Process when both are set.
type Target struct {
	Process string `yaml:"process,omitempty"`
	PID     int    `yaml:"pid,omitempty"`
	Module  string `yaml:"module"`
}

// Feature is one feature definition.
type Feature struct {
	Name           string     `yaml:"name"`
	Offsets        [][]Offset `yaml:"offsets"`
	Interval       Duration   `yaml:"interval"`
	Enabled        float64    `yaml:"enabled"`
	Disabled       float64    `yaml:"disabled"`
	Type           string     `yaml:"type,omitempty"`
	PersistAddress bool       `yaml:"persist_address"`
	Pairs          *Pairs     `yaml:"pairs,omitempty"`
}

// Pairs configures a feature's pair scanner. Omitted keys keep the defaults.
type Pairs struct {
	StartOffset    Offset   `yaml:"start_offset"`
	Stride         Offset   `yaml:"stride"`
	AdjacentOffset Offset   `yaml:"adjacent_offset"`
	MaxTries       int      `yaml:"max_tries"`
	Tick           Duration `yaml:"tick"`
	Primary        float64  `yaml:"primary"`
	Adjacent       float64  `yaml:"adjacent"`
	Tolerance      float64  `yaml:"tolerance"`
}

func defaultPairs() Pairs {
	d := feature.DefaultPairConfig()
	return Pairs{
		StartOffset:    Offset(d.StartOffset),
		Stride:         Offset(d.Stride),
		AdjacentOffset: Offset(d.AdjacentOffset),
		MaxTries:       d.MaxTries,
		Tick:           Duration(d.Tick),
		Primary:        d.Primary,
		Adjacent:       d.Adjacent,
		Tolerance:      d.Tolerance,
	}
}

func (p *Pairs) UnmarshalYAML(node *yaml.Node) error {
	type plain Pairs
	*p = defaultPairs()
	return node.Decode((*plain)(p))
}

// Load reads path, or starts from Default when path is empty, then applies
// .env and environment overrides and validates the result.
func Load(path string) (*Config, error) {
	var cfg *Config

	if path == "" {
		cfg = Default()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes YAML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// LoadDotEnv loads variables from the given files that exist. Variables
// already set in the environment are kept.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides target, listen, and trace settings from getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvProcess); v != "" {
		c.Target.Process = v
	}
	if v := getenv(EnvModule); v != "" {
		c.Target.Module = v
	}
	if v := getenv(EnvPID); v != "" {
		pid, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPID, err)
		}
		c.Target.PID = pid
	}
	if v := getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := getenv(EnvTraceDB); v != "" {
		c.TraceDB = v
	}
	return nil
}

// Validate checks the target and every feature definition.
func (c *Config) Validate() error {
	if c.Target.Module == "" {
		return errors.New("target.module is required")
	}
	if c.Target.PID < 0 {
		return errors.New("target.pid must not be negative")
	}

	if len(c.Features) == 0 {
		return errors.New("no features defined")
	}

	defs, err := c.Definitions()
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if seen[d.Name] {
			return fmt.Errorf("duplicate feature name %q", d.Name)
		}
		seen[d.Name] = true

		if err := d.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Definitions converts the file form into feature definitions.
func (c *Config) Definitions() ([]feature.Definition, error) {
	defs := make([]feature.Definition, 0, len(c.Features))

	for _, f := range c.Features {
		vt, err := feature.ParseValueType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", f.Name, err)
		}

		cands := make(chain.CandidateSet, len(f.Offsets))
		for i, offs := range f.Offsets {
			oc := make(chain.OffsetChain, len(offs))
			for j, o := range offs {
				oc[j] = int64(o)
			}
			cands[i] = oc
		}

		def := feature.Definition{
			Name:           f.Name,
			Candidates:     cands,
			Interval:       f.Interval.Std(),
			Enabled:        f.Enabled,
			Disabled:       f.Disabled,
			Type:           vt,
			PersistAddress: f.PersistAddress,
		}

		if f.Pairs != nil {
			def.Pairs = &feature.PairConfig{
				StartOffset:    int64(f.Pairs.StartOffset),
				Stride:         int64(f.Pairs.Stride),
				AdjacentOffset: int64(f.Pairs.AdjacentOffset),
				MaxTries:       f.Pairs.MaxTries,
				Tick:           f.Pairs.Tick.Std(),
				Primary:        f.Pairs.Primary,
				Adjacent:       f.Pairs.Adjacent,
				Tolerance:      f.Pairs.Tolerance,
			}
		}

		defs = append(defs, def)
	}

	return defs, nil
}
