package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokertable/internal/table"
)

// Config represents the complete server configuration
type Config struct {
	Server *ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TableConfig defines a poker table configuration
type TableConfig struct {
	Name           string `hcl:"name,label"`
	MaxPlayers     int    `hcl:"max_players,optional"`
	InitialChips   int    `hcl:"initial_chips,optional"`
	SmallBlind     int    `hcl:"small_blind,optional"`
	BigBlind       int    `hcl:"big_blind,optional"`
	AllowStraddle  bool   `hcl:"allow_straddle,optional"`
	AllInDealCount int    `hcl:"allin_deal_count,optional"`
	ActionTimeout  string `hcl:"action_timeout,optional"`
	NextHandDelay  string `hcl:"next_hand_delay,optional"`
}

// Addr returns the listen address.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: &ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Tables: []TableConfig{
			{Name: "main"},
		},
	}
}

// LoadConfig loads server configuration from an HCL file. A missing file
// yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server == nil {
		config.Server = &ServerSettings{}
	}
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if len(config.Tables) == 0 {
		config.Tables = DefaultConfig().Tables
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Server.LogLevel)
	}

	if len(c.Tables) == 0 {
		return errors.New("at least one table must be configured")
	}
	seen := make(map[string]bool)
	for _, t := range c.Tables {
		if t.Name == "" {
			return errors.New("table name cannot be empty")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate table name: %s", t.Name)
		}
		seen[t.Name] = true

		if _, err := t.Settings(); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
	}
	return nil
}

// Settings converts the block into validated table settings.
func (t TableConfig) Settings() (table.Settings, error) {
	s := table.Settings{
		MaxPlayers:     t.MaxPlayers,
		InitialChips:   t.InitialChips,
		SmallBlind:     t.SmallBlind,
		BigBlind:       t.BigBlind,
		AllowStraddle:  t.AllowStraddle,
		AllInDealCount: t.AllInDealCount,
		NextHandDelay:  table.DefaultNextHandDelay,
	}

	var err error
	if t.ActionTimeout != "" {
		if s.ActionTimeout, err = time.ParseDuration(t.ActionTimeout); err != nil {
			return table.Settings{}, fmt.Errorf("action_timeout: %w", err)
		}
	}
	if t.NextHandDelay != "" {
		if s.NextHandDelay, err = time.ParseDuration(t.NextHandDelay); err != nil {
			return table.Settings{}, fmt.Errorf("next_hand_delay: %w", err)
		}
	}

	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return table.Settings{}, err
	}
	return s, nil
}
