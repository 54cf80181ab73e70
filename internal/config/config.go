package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the answerdex API configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Generation  GenerationConfig  `yaml:"generation"`
	Entitlement EntitlementConfig `yaml:"entitlement"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Context     ContextConfig     `yaml:"context"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the provider plus the two deployment classes. The
// legacy page collection embeds with the small model, everything else with
// the large one; either deployment may be absent.
type EmbeddingConfig struct {
	APIKey      string           `yaml:"api_key"`
	BaseURL     string           `yaml:"base_url"`
	Small       DeploymentConfig `yaml:"small"`
	Large       DeploymentConfig `yaml:"large"`
	CacheTTLSec int              `yaml:"cache_ttl_sec"` // 0 disables the query cache
}

// DeploymentConfig holds one embedding deployment.
type DeploymentConfig struct {
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// GenerationConfig holds the text-generation deployment. Optional: without a
// model, keyword extraction degrades and answer synthesis is unavailable.
type GenerationConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// EntitlementConfig holds the content-access service settings. An empty URL
// means every document is treated as accessible.
type EntitlementConfig struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RetrievalConfig holds the retrieval tuning knobs.
type RetrievalConfig struct {
	DefaultPageSize     int      `yaml:"default_page_size"`
	MaxPageSize         int      `yaml:"max_page_size"`
	CandidateMultiplier int      `yaml:"candidate_multiplier"`
	MaxCandidatePool    int      `yaml:"max_candidate_pool"`
	LexicalScoreCutoff  float64  `yaml:"lexical_score_cutoff"`
	VectorScoreCutoff   float64  `yaml:"vector_score_cutoff"`
	AllowedPlatforms    []string `yaml:"allowed_platforms"`
	AttendeeFilter      bool     `yaml:"attendee_filter"`
}

// ContextConfig holds the answer-context assembly quotas.
type ContextConfig struct {
	MaxChunks         int `yaml:"max_chunks"`
	MaxPerDocLegacy   int `yaml:"max_per_doc_legacy"`
	MaxPerDocStandard int `yaml:"max_per_doc_standard"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Generation calls dominate the response time.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Entitlement.TimeoutSec <= 0 {
		c.Entitlement.TimeoutSec = 3
	}
	if c.Retrieval.DefaultPageSize <= 0 {
		c.Retrieval.DefaultPageSize = 10
	}
	if c.Retrieval.MaxPageSize <= 0 {
		c.Retrieval.MaxPageSize = 50
	}
	if c.Retrieval.CandidateMultiplier <= 0 {
		c.Retrieval.CandidateMultiplier = 3
	}
	if c.Retrieval.MaxCandidatePool <= 0 {
		c.Retrieval.MaxCandidatePool = 120
	}
	if c.Context.MaxChunks <= 0 {
		c.Context.MaxChunks = 24
	}
	if c.Context.MaxPerDocLegacy <= 0 {
		c.Context.MaxPerDocLegacy = 3
	}
	if c.Context.MaxPerDocStandard <= 0 {
		c.Context.MaxPerDocStandard = 24
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Small.Model == "" && c.Embedding.Large.Model == "" {
		return fmt.Errorf("at least one embedding deployment is required")
	}
	if c.Retrieval.DefaultPageSize > c.Retrieval.MaxPageSize {
		return fmt.Errorf("retrieval.default_page_size %d exceeds max_page_size %d",
			c.Retrieval.DefaultPageSize, c.Retrieval.MaxPageSize)
	}
	if c.Retrieval.LexicalScoreCutoff < 0 || c.Retrieval.VectorScoreCutoff < 0 {
		return fmt.Errorf("score cutoffs must not be negative")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
