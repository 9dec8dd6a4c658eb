// Package config handles configuration loading for the dpiva client.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax), so credentials such as the
// PKCS#12 password or the MongoDB URI can be injected at runtime.
//
// # Configuration Sections
//
//   - webservice: server public key, credentials file and the test and
//     production targets with their client certificates
//   - storage: optional MongoDB store for submission results
//   - log: log level and format
//
// # Example Configuration
//
//	webservice:
//	  publicKeyFile: /etc/dpiva/at-public.pem
//	  credentialsFile: /etc/dpiva/credentials.yaml
//	  concurrency: 4
//	  timeout: 60s
//	  targets:
//	    test:
//	      endpoint: https://servicos.portaldasfinancas.gov.pt:700/dpivaws/DeclaracaoPeriodicaIVAWebService
//	      pfxFile: /etc/dpiva/client.pfx
//	      pfxPassword: ${DPIVA_PFX_PASSWORD}
//
//	storage:
//	  mongodb:
//	    uri: ${MONGODB_URI}
//	    database: dpiva
//
// See [Load] for loading configuration from a file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-dpiva/pkg/message"
	"github.com/sirosfoundation/go-dpiva/pkg/transport"
)

// Config is the root configuration structure
type Config struct {
	Webservice WebserviceConfig `yaml:"webservice"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// WebserviceConfig holds the declaration web service settings
type WebserviceConfig struct {
	PublicKeyFile      string        `yaml:"publicKeyFile"`
	CredentialsFile    string        `yaml:"credentialsFile"`
	DeclarationVersion string        `yaml:"declarationVersion"`
	Concurrency        int           `yaml:"concurrency"`
	Timeout            time.Duration `yaml:"timeout"`
	// MaxResponseSize bounds a decoded response body in bytes
	MaxResponseSize int64                   `yaml:"maxResponseSize"`
	Targets         map[string]TargetConfig `yaml:"targets"`
}

// TargetConfig holds the endpoint and client certificate of one target.
// The certificate is either a PEM pair (certFile, keyFile) or a PKCS#12
// bundle (pfxFile, pfxPassword).
type TargetConfig struct {
	Endpoint    string `yaml:"endpoint"`
	CertFile    string `yaml:"certFile"`
	KeyFile     string `yaml:"keyFile"`
	PFXFile     string `yaml:"pfxFile"`
	PFXPassword string `yaml:"pfxPassword"`
	// CAFile replaces the system roots when set
	CAFile string `yaml:"caFile"`
}

// StorageConfig holds result storage settings
type StorageConfig struct {
	MongoDB MongoDBConfig `yaml:"mongodb"`
}

// MongoDBConfig holds MongoDB connection settings. Results are kept in
// memory when URI is empty.
type MongoDBConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse reads configuration from YAML bytes
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Target returns the settings of a target.
func (c *Config) Target(t transport.Target) (TargetConfig, bool) {
	tc, ok := c.Webservice.Targets[t.String()]
	return tc, ok
}

// UsesMongoDB reports whether results are stored in MongoDB.
func (c *Config) UsesMongoDB() bool {
	return c.Storage.MongoDB.URI != ""
}

func (c *Config) applyDefaults() {
	if c.Webservice.DeclarationVersion == "" {
		c.Webservice.DeclarationVersion = message.DefaultDeclarationVersion
	}
	if c.Webservice.Concurrency == 0 {
		c.Webservice.Concurrency = 4
	}
	if c.Webservice.Timeout == 0 {
		c.Webservice.Timeout = 60 * time.Second
	}
	if c.Webservice.MaxResponseSize == 0 {
		c.Webservice.MaxResponseSize = transport.DefaultMaxResponseSize
	}
	if c.Storage.MongoDB.Database == "" {
		c.Storage.MongoDB.Database = "dpiva"
	}
	if c.Storage.MongoDB.Collection == "" {
		c.Storage.MongoDB.Collection = "submissions"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	if c.Webservice.PublicKeyFile == "" {
		return fmt.Errorf("webservice.publicKeyFile is required")
	}
	if c.Webservice.CredentialsFile == "" {
		return fmt.Errorf("webservice.credentialsFile is required")
	}
	if c.Webservice.Concurrency < 1 {
		return fmt.Errorf("webservice.concurrency must be positive, got %d", c.Webservice.Concurrency)
	}
	if len(c.Webservice.Targets) == 0 {
		return fmt.Errorf("webservice.targets must configure %s or %s", transport.TargetTest, transport.TargetProduction)
	}

	for name, tc := range c.Webservice.Targets {
		if _, err := transport.ParseTarget(name); err != nil {
			return fmt.Errorf("webservice.targets.%s: %w", name, err)
		}
		if tc.Endpoint == "" {
			return fmt.Errorf("webservice.targets.%s.endpoint is required", name)
		}
		if !strings.HasPrefix(tc.Endpoint, "https://") {
			return fmt.Errorf("webservice.targets.%s.endpoint must be https, got '%s'", name, tc.Endpoint)
		}
		if tc.PFXFile != "" && (tc.CertFile != "" || tc.KeyFile != "") {
			return fmt.Errorf("webservice.targets.%s: use either pfxFile or certFile/keyFile", name)
		}
		if (tc.CertFile == "") != (tc.KeyFile == "") {
			return fmt.Errorf("webservice.targets.%s: certFile and keyFile must be set together", name)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be 'debug', 'info', 'warn' or 'error', got '%s'", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json', got '%s'", c.Log.Format)
	}

	return nil
}
