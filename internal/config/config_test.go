package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
logging:
  level: debug
  format: json
storage:
  type: mongodb
  mongodb:
    uri: ${TEST_MONGODB_URI}
masterData:
  tradeItems:
    - gtin14: "10312345000018"
      company_prefix: "0312345"
      name: Tablets
  companies:
    - name: Acme
      company_prefix: "0312345"
numbering:
  endpoint: https://serials.example.com/ws
  soapAction: urn:requestSerialNumbers
rules:
  optel-inbound:
    - step: consolidate
      parameters:
        Vendor: optel
        Aggregation Skew: 15s
    - step: render
  serials:
    - step: number-request
      parameters:
        Encoding: sscc
        Company Prefix: "0312345"
`

func TestParse(t *testing.T) {
	t.Setenv("TEST_MONGODB_URI", "mongodb://db.example.com:27017")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, StorageMongoDB, cfg.Storage.Type)
	assert.Equal(t, "mongodb://db.example.com:27017", cfg.Storage.MongoDB.URI)
	assert.Equal(t, "epcis", cfg.Storage.MongoDB.Database)
	assert.Equal(t, 10*time.Second, cfg.Storage.MongoDB.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Numbering.Timeout)
	assert.False(t, cfg.Metrics.Metrics.Enabled)
	assert.Empty(t, cfg.Metrics.Metrics.Textfile)

	require.Len(t, cfg.MasterData.TradeItems, 1)
	assert.Equal(t, "10312345000018", cfg.MasterData.TradeItems[0].GTIN14)
	assert.Equal(t, "0312345", cfg.MasterData.TradeItems[0].CompanyPrefix)
	require.Len(t, cfg.MasterData.Companies, 1)
	assert.Equal(t, "Acme", cfg.MasterData.Companies[0].Name)

	assert.Equal(t, []string{"optel-inbound", "serials"}, cfg.RuleNames())
	rule := cfg.Rules["optel-inbound"]
	require.Len(t, rule, 2)
	assert.Equal(t, "consolidate", rule[0].Step)
	assert.Equal(t, "15s", rule[0].Parameters["Aggregation Skew"])
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.RuleNames())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"storage type", "storage:\n  type: redis\n", "storage.type"},
		{"mongodb uri", "storage:\n  type: mongodb\n", "storage.mongodb.uri"},
		{"gtin length", "masterData:\n  tradeItems:\n    - gtin14: \"123\"\n      company_prefix: \"0312345\"\n", "gtin14"},
		{"trade item prefix", "masterData:\n  tradeItems:\n    - gtin14: \"10312345000018\"\n", "company_prefix"},
		{"company prefix", "masterData:\n  companies:\n    - name: Acme\n", "company_prefix"},
		{"empty rule", "rules:\n  broken: []\n", "has no steps"},
		{"unknown step", "rules:\n  broken:\n    - step: teleport\n", "unknown step"},
		{"bad yaml", "rules: [", "parsing config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adapter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates:\n  dir: /etc/epcis/templates\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/epcis/templates", cfg.Templates.Dir)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Parameters(t *testing.T) {
	t.Setenv("TEST_MONGODB_URI", "mongodb://localhost")
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	params := cfg.Parameters(cfg.Rules["serials"][0])
	assert.Equal(t, "https://serials.example.com/ws", params["Endpoint"])
	assert.Equal(t, "urn:requestSerialNumbers", params["SOAP Action"])
	assert.Equal(t, "sscc", params["Encoding"])

	params = cfg.Parameters(StepConfig{Step: "number-request", Parameters: map[string]string{"Endpoint": "https://other"}})
	assert.Equal(t, "https://other", params["Endpoint"])

	params = cfg.Parameters(cfg.Rules["optel-inbound"][0])
	assert.NotContains(t, params, "Endpoint")
	assert.Equal(t, "optel", params["Vendor"])
}

func TestConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Logging: LoggingConfig{Level: "warn", Format: "json"}}
	logger := cfg.Logger(&buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "expected JSON output, got %q", out)
	assert.Contains(t, out, `"msg":"shown"`)
}

func TestParse_MetricsTextfile(t *testing.T) {
	cfg, err := Parse([]byte("observability:\n  metrics:\n    enabled: true\n"))
	require.NoError(t, err)
	assert.Equal(t, "epcis_adapter.prom", cfg.Metrics.Metrics.Textfile)
}
