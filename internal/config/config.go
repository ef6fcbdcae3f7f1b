// Package config handles configuration loading for the EPCIS adapters.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax). This allows credentials of
// numbering systems and databases to be injected at runtime.
//
// # Configuration Sections
//
//   - logging: log level and format
//   - storage: master data and entry store (memory or MongoDB)
//   - masterData: trade items and companies loaded into a memory store
//   - templates: directory of vendor templates added to the built-ins
//   - numbering: default numbering system endpoint and credentials
//   - observability: Prometheus metrics
//   - rules: named step sequences with their parameters
//
// # Example Configuration
//
//	storage:
//	  type: mongodb
//	  mongodb:
//	    uri: ${MONGODB_URI}
//	    database: epcis
//
//	rules:
//	  optel-inbound:
//	    - step: consolidate
//	      parameters:
//	        Vendor: optel
//	        Aggregation Skew: 10s
//	    - step: render
//	      parameters:
//	        Envelope: epcis/document.xml
//
// See [Load] for loading configuration from a file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rmagee/quartet-integrations-sub000/internal/storage"
	"github.com/rmagee/quartet-integrations-sub000/pkg/steps"
)

// Storage types
const (
	StorageMemory  = "memory"
	StorageMongoDB = "mongodb"
)

// Config is the root configuration structure
type Config struct {
	Logging    LoggingConfig           `yaml:"logging"`
	Storage    StorageConfig           `yaml:"storage"`
	MasterData MasterDataConfig        `yaml:"masterData"`
	Templates  TemplatesConfig         `yaml:"templates"`
	Numbering  NumberingConfig         `yaml:"numbering"`
	Metrics    MetricsConfig           `yaml:"observability"`
	Rules      map[string][]StepConfig `yaml:"rules"`
}

// LoggingConfig selects the log level and handler format
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// StorageConfig holds database settings
type StorageConfig struct {
	Type    string        `yaml:"type"`
	MongoDB MongoDBConfig `yaml:"mongodb"`
}

// MongoDBConfig holds MongoDB connection settings
type MongoDBConfig struct {
	URI      string        `yaml:"uri"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MasterDataConfig seeds the memory store
type MasterDataConfig struct {
	TradeItems []storage.TradeItem `yaml:"tradeItems"`
	Companies  []storage.Company   `yaml:"companies"`
}

// TemplatesConfig holds vendor template settings
type TemplatesConfig struct {
	// Dir is loaded on top of the built-in templates; names are paths
	// relative to Dir
	Dir string `yaml:"dir"`
}

// NumberingConfig holds the numbering system connection. Steps fall back
// to Endpoint when they have no Endpoint parameter.
type NumberingConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	SOAPAction string        `yaml:"soapAction"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	Timeout    time.Duration `yaml:"timeout"`
}

// MetricsConfig holds observability settings
type MetricsConfig struct {
	Metrics struct {
		Enabled bool `yaml:"enabled"`
		// Textfile receives the collected metrics in the Prometheus text
		// format, for the node exporter textfile collector
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

// StepConfig names a step and its parameters
type StepConfig struct {
	Step       string            `yaml:"step"`
	Parameters map[string]string `yaml:"parameters"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse reads configuration from YAML data
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults
	cfg.applyDefaults()

	// Validate
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// RuleNames returns the configured rule names in sorted order
func (c *Config) RuleNames() []string {
	names := make([]string, 0, len(c.Rules))
	for name := range c.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Logger builds the configured logger writing to w
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(c.Logging.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Storage.Type == "" {
		c.Storage.Type = StorageMemory
	}
	if c.Storage.MongoDB.Database == "" {
		c.Storage.MongoDB.Database = "epcis"
	}
	if c.Storage.MongoDB.Timeout == 0 {
		c.Storage.MongoDB.Timeout = 10 * time.Second
	}
	if c.Numbering.Timeout == 0 {
		c.Numbering.Timeout = 30 * time.Second
	}
	if c.Metrics.Metrics.Enabled && c.Metrics.Metrics.Textfile == "" {
		c.Metrics.Metrics.Textfile = "epcis_adapter.prom"
	}
}

// Parameters returns the parameters of sc with numbering defaults filled
// in for number request steps
func (c *Config) Parameters(sc StepConfig) map[string]string {
	params := make(map[string]string, len(sc.Parameters)+2)
	for k, v := range sc.Parameters {
		params[k] = v
	}
	if sc.Step != steps.NameNumberRequest {
		return params
	}
	if params[steps.ParamEndpoint] == "" && c.Numbering.Endpoint != "" {
		params[steps.ParamEndpoint] = c.Numbering.Endpoint
	}
	if params[steps.ParamSOAPAction] == "" && c.Numbering.SOAPAction != "" {
		params[steps.ParamSOAPAction] = c.Numbering.SOAPAction
	}
	return params
}

func (c *Config) validate() error {
	switch c.Storage.Type {
	case StorageMemory:
	case StorageMongoDB:
		if c.Storage.MongoDB.URI == "" {
			return fmt.Errorf("storage.mongodb.uri is required when type is 'mongodb'")
		}
	default:
		return fmt.Errorf("storage.type must be 'memory' or 'mongodb', got '%s'", c.Storage.Type)
	}

	for i, item := range c.MasterData.TradeItems {
		if len(item.GTIN14) != 14 {
			return fmt.Errorf("masterData.tradeItems[%d]: gtin14 must have 14 digits, got %q", i, item.GTIN14)
		}
		if item.CompanyPrefix == "" {
			return fmt.Errorf("masterData.tradeItems[%d]: company_prefix is required", i)
		}
	}
	for i, company := range c.MasterData.Companies {
		if company.CompanyPrefix == "" {
			return fmt.Errorf("masterData.companies[%d]: company_prefix is required", i)
		}
	}

	for _, name := range c.RuleNames() {
		if len(c.Rules[name]) == 0 {
			return fmt.Errorf("rules.%s has no steps", name)
		}
		for i, step := range c.Rules[name] {
			if !knownStep(step.Step) {
				return fmt.Errorf("rules.%s[%d]: unknown step '%s'", name, i, step.Step)
			}
		}
	}

	return nil
}

func knownStep(name string) bool {
	switch name {
	case steps.NameConsolidate, steps.NameConvertEPCs, steps.NameAutoCommission,
		steps.NameTemplateOverride, steps.NameRender, steps.NameNumberRequest:
		return true
	}
	return false
}
