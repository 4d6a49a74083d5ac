// Package config provides configuration loading, validation, and secret
// handling for the interview simulator.
//
// Configuration is loaded once at startup and accessed by value; the core
// packages never read environment variables directly - they receive
// already-constructed capability ports. The only environment access happens
// here (API keys) and in logx (debug flags).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"interviewsim/pkg/logx"
)

// SchemaVersion guards against loading config files written by an
// incompatible release.
const SchemaVersion = 1

// Provider identifiers for LLM backends.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
)

// Default models per role. The interviewer favors latency, the judge favors
// instruction-following on structured output.
const (
	DefaultInterviewerModel = "gemini-2.5-flash"
	DefaultJudgeModel       = "gemini-2.5-pro"
	DefaultVisionModel      = "gemini-2.5-flash"
	DefaultOllamaHost       = "http://localhost:11434"
)

// Environment variable names for provider credentials.
const (
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvGoogleKey    = "GOOGLE_API_KEY"
	EnvTavilyKey    = "TAVILY_API_KEY"
)

// ModelConfig selects a provider and model for one of the two LLM roles.
type ModelConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// SearchConfig controls the optional web research capability.
type SearchConfig struct {
	Enabled    bool   `json:"enabled"`
	MaxResults int    `json:"max_results"`
	Endpoint   string `json:"endpoint,omitempty"` // Override for testing
}

// Config is the top-level configuration aggregate.
type Config struct {
	SchemaVersion int          `json:"schema_version"`
	Interviewer   ModelConfig  `json:"interviewer"` // Question generation, narrative report
	Judge         ModelConfig  `json:"judge"`       // Structured scoring (profile, evaluations)
	Vision        *ModelConfig `json:"vision,omitempty"`
	Search        SearchConfig `json:"search"`
	OllamaHost    string       `json:"ollama_host,omitempty"`
	DataDir       string       `json:"data_dir"` // Database, snapshots, metrics dumps
}

//nolint:gochecknoglobals // Intentional singleton, value-based access via GetConfig
var (
	loaded *Config
	mu     sync.RWMutex
	logger = logx.NewLogger("config")
)

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		SchemaVersion: SchemaVersion,
		Interviewer:   ModelConfig{Provider: ProviderGoogle, Model: DefaultInterviewerModel},
		Judge:         ModelConfig{Provider: ProviderGoogle, Model: DefaultJudgeModel},
		Vision:        &ModelConfig{Provider: ProviderGoogle, Model: DefaultVisionModel},
		Search:        SearchConfig{Enabled: true, MaxResults: 3},
		OllamaHost:    DefaultOllamaHost,
		DataDir:       ".interviewsim",
	}
}

// Load reads the config file at path (or defaults if it does not exist),
// validates it, and installs it as the process config.
func Load(path string) error {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			logger.Info("no config file at %s, using defaults", path)
		case err != nil:
			return fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			if cfg.SchemaVersion != SchemaVersion {
				return fmt.Errorf("config schema version %d not supported (want %d)", cfg.SchemaVersion, SchemaVersion)
			}
		}
	}

	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return err
	}

	mu.Lock()
	loaded = &cfg
	mu.Unlock()
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.OllamaHost == "" {
		cfg.OllamaHost = DefaultOllamaHost
	}
	if cfg.Search.MaxResults <= 0 {
		cfg.Search.MaxResults = 3
	}
	if cfg.DataDir == "" {
		cfg.DataDir = ".interviewsim"
	}
}

// GetConfig returns the loaded configuration by value.
func GetConfig() (Config, error) {
	mu.RLock()
	defer mu.RUnlock()
	if loaded == nil {
		return Config{}, fmt.Errorf("config not loaded: call config.Load first")
	}
	return *loaded, nil
}

// Validate checks structural validity of a config. Credential presence is
// checked separately by CheckProviderCredentials because it is a startup
// precondition, not a config-file property.
func Validate(cfg *Config) error {
	if err := validateModel("interviewer", &cfg.Interviewer); err != nil {
		return err
	}
	if err := validateModel("judge", &cfg.Judge); err != nil {
		return err
	}
	if cfg.Vision != nil {
		if cfg.Vision.Provider != ProviderGoogle {
			return fmt.Errorf("vision provider %q not supported: only %s offers multimodal judging here", cfg.Vision.Provider, ProviderGoogle)
		}
		if cfg.Vision.Model == "" {
			return fmt.Errorf("vision model must be set when vision is enabled")
		}
	}
	return nil
}

func validateModel(role string, mc *ModelConfig) error {
	switch mc.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderOllama:
	case "":
		return fmt.Errorf("%s provider must be set", role)
	default:
		return fmt.Errorf("unknown %s provider %q", role, mc.Provider)
	}
	if mc.Model == "" {
		return fmt.Errorf("%s model must be set", role)
	}
	return nil
}

// APIKeyFor returns the credential for a provider, preferring the decrypted
// secrets store over the environment. Ollama needs no key.
func APIKeyFor(provider string) string {
	var envVar string
	switch provider {
	case ProviderAnthropic:
		envVar = EnvAnthropicKey
	case ProviderOpenAI:
		envVar = EnvOpenAIKey
	case ProviderGoogle:
		envVar = EnvGoogleKey
	case ProviderOllama:
		return ""
	default:
		return ""
	}

	if v := GetSecret(envVar); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(envVar))
}

// TavilyAPIKey returns the web search credential, empty when unconfigured.
func TavilyAPIKey() string {
	if v := GetSecret(EnvTavilyKey); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(EnvTavilyKey))
}

// CheckProviderCredentials verifies the startup precondition that every
// configured generation provider has a credential. A missing key here must
// prevent the session from starting; it is an operator configuration error,
// never a mid-session runtime error.
func CheckProviderCredentials(cfg *Config) error {
	roles := map[string]ModelConfig{
		"interviewer": cfg.Interviewer,
		"judge":       cfg.Judge,
	}
	if cfg.Vision != nil {
		roles["vision"] = *cfg.Vision
	}

	var missing []string
	for role, mc := range roles {
		if mc.Provider == ProviderOllama {
			continue // Local runtime, no credential
		}
		if APIKeyFor(mc.Provider) == "" {
			missing = append(missing, fmt.Sprintf("%s (%s)", role, mc.Provider))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no API key configured for: %s - set the provider environment variable or store a secret before starting a session", strings.Join(missing, ", "))
	}
	return nil
}

// DatabasePath returns the sqlite file location under the data dir.
func DatabasePath(cfg *Config) string {
	return filepath.Join(cfg.DataDir, "interview_sessions.db")
}

// SnapshotDir returns where session snapshots are written.
func SnapshotDir(cfg *Config) string {
	return filepath.Join(cfg.DataDir, "snapshots")
}

// MetricsDir returns where end-of-session metrics dumps are written.
func MetricsDir(cfg *Config) string {
	return filepath.Join(cfg.DataDir, "metrics")
}

// ReportsDir returns the directory where final interview reports are saved.
func ReportsDir(cfg *Config) string {
	return filepath.Join(cfg.DataDir, "reports")
}
