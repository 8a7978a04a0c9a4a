package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/salesboard-lab/salesboard/internal/core/schema"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Dataset DatasetConfig `koanf:"dataset"`
	Mapping MappingConfig `koanf:"mapping"`
	Filter  FilterConfig  `koanf:"filter"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type DatasetConfig struct {
	Path   string `koanf:"path"`
	Format string `koanf:"format"` // auto | csv | xlsx
	// MaxParseSeconds bounds the normalization pass; 0 disables the budget.
	MaxParseSeconds int `koanf:"max_parse_seconds"`
}

// MappingConfig optionally pins each semantic role to a source column.
// Either all six roles are set (explicit resolution) or none are
// (auto-resolution by header name).
type MappingConfig struct {
	Country     string `koanf:"country"`
	InvoiceDate string `koanf:"invoice_date"`
	Quantity    string `koanf:"quantity"`
	UnitPrice   string `koanf:"unit_price"`
	CustomerID  string `koanf:"customer_id"`
	InvoiceID   string `koanf:"invoice_id"`
}

type FilterConfig struct {
	// DefaultCountryLimit is the bounded-default hint exposed to UI clients
	// through the dataset metadata endpoint. The core's own default spec is
	// unbounded.
	DefaultCountryLimit int `koanf:"default_country_limit"`
}

// Overrides returns the explicit role mapping, or nil when auto-resolution
// should be used.
func (m MappingConfig) Overrides() map[schema.Role]string {
	if m.isEmpty() {
		return nil
	}
	return map[schema.Role]string{
		schema.RoleCountry:     m.Country,
		schema.RoleInvoiceDate: m.InvoiceDate,
		schema.RoleQuantity:    m.Quantity,
		schema.RoleUnitPrice:   m.UnitPrice,
		schema.RoleCustomerID:  m.CustomerID,
		schema.RoleInvoiceID:   m.InvoiceID,
	}
}

func (m MappingConfig) isEmpty() bool {
	return m.Country == "" && m.InvoiceDate == "" && m.Quantity == "" &&
		m.UnitPrice == "" && m.CustomerID == "" && m.InvoiceID == ""
}

func (m MappingConfig) isComplete() bool {
	return m.Country != "" && m.InvoiceDate != "" && m.Quantity != "" &&
		m.UnitPrice != "" && m.CustomerID != "" && m.InvoiceID != ""
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Dataset.Path) == "" {
		return fmt.Errorf("dataset.path is required")
	}
	switch c.Dataset.Format {
	case "", "auto", "csv", "xlsx":
	default:
		return fmt.Errorf("invalid dataset.format %q (must be auto, csv or xlsx)", c.Dataset.Format)
	}
	if c.Dataset.MaxParseSeconds < 0 {
		return fmt.Errorf("dataset.max_parse_seconds must be >= 0")
	}

	if !c.Mapping.isEmpty() && !c.Mapping.isComplete() {
		return fmt.Errorf("mapping must set all six roles or none")
	}

	if c.Filter.DefaultCountryLimit < 0 {
		return fmt.Errorf("filter.default_country_limit must be >= 0")
	}

	return nil
}

// Load parses config from file + env and validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                  8080,
		"server.host":                  "0.0.0.0",
		"server.mode":                  "release",
		"dataset.path":                 "./train.csv",
		"dataset.format":               "auto",
		"dataset.max_parse_seconds":    0,
		"filter.default_country_limit": 5,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("SALESBOARD_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SALESBOARD_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
