// Package config holds the explicit configuration value used to build a
// model client and a ReAct program. Nothing here is process-global: load a
// Config once and pass it to client.New and the program options.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/retry"
	"gopkg.in/yaml.v3"
)

// Preset base URLs.
const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	OllamaBaseURL     = "http://localhost:11434"
)

// Defaults.
const (
	DefaultTemperature = 0.1
	DefaultMaxIters    = 5
)

// Config holds model and loop configuration.
type Config struct {
	// Provider selects the backend (openai, anthropic, google, openrouter, ollama).
	Provider ai.Provider `yaml:"provider"`

	// Model is the provider model name. Empty uses the provider default.
	Model string `yaml:"model"`

	// APIKey authenticates with the provider. Not needed for ollama.
	APIKey string `yaml:"api_key"`

	// APIBase overrides the provider base URL.
	APIBase string `yaml:"api_base"`

	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	// MaxIters is the default loop budget.
	MaxIters int `yaml:"max_iters"`

	// Debug logs full prompts and raw model responses.
	Debug bool `yaml:"debug"`

	// Retry configures transport-level retries of transient errors.
	Retry retry.Config `yaml:"retry"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Provider:    ai.ProviderOpenAI,
		Temperature: DefaultTemperature,
		MaxIters:    DefaultMaxIters,
		Retry:       retry.DefaultConfig(),
	}
}

// Load returns the default configuration overlaid with environment
// variables. A .env file in the working directory is loaded first if present.
func Load() (Config, error) {
	cfg := Default()
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file and overlays environment
// variables on top of it.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load .env: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto c. Unset variables leave
// the current value untouched.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.Provider = ai.Provider(strings.ToLower(v))
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.Model = v
	}
	if v := firstEnv("LLM_API_KEY"); v != "" {
		c.APIKey = v
	} else if c.APIKey == "" {
		c.APIKey = firstEnv(providerKeyEnv(c.Provider)...)
	}
	if v := firstEnv("LLM_API_BASE", "OPENAI_API_BASE"); v != "" {
		c.APIBase = v
	}

	var err error
	if c.Temperature, err = envFloat("LLM_TEMPERATURE", c.Temperature); err != nil {
		return err
	}
	if c.MaxTokens, err = envInt("LLM_MAX_TOKENS", c.MaxTokens); err != nil {
		return err
	}
	if c.MaxIters, err = envInt("LLM_MAX_ITERS", c.MaxIters); err != nil {
		return err
	}
	if c.Retry.MaxAttempts, err = envInt("LLM_RETRY_ATTEMPTS", c.Retry.MaxAttempts); err != nil {
		return err
	}
	if c.Retry.InitialDelay, err = envDuration("LLM_RETRY_DELAY", c.Retry.InitialDelay); err != nil {
		return err
	}
	if v := os.Getenv("LLM_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: LLM_DEBUG: %w", err)
		}
		c.Debug = b
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if !c.Provider.Valid() {
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	if c.APIKey == "" && c.Provider != ai.ProviderOllama {
		return fmt.Errorf("config: API key is required for %s (set %s)",
			c.Provider, strings.Join(append([]string{"LLM_API_KEY"}, providerKeyEnv(c.Provider)...), " or "))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config: temperature %v out of range [0, 2]", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("config: max_tokens must not be negative")
	}
	if c.MaxIters < 1 {
		return fmt.Errorf("config: max_iters must be at least 1")
	}
	return nil
}

// BaseURL returns the normalized API base, falling back to the provider
// preset. Empty means the SDK default.
func (c Config) BaseURL() string {
	if c.APIBase != "" {
		return NormalizeAPIBase(c.APIBase)
	}
	switch c.Provider {
	case ai.ProviderOpenRouter:
		return OpenRouterBaseURL
	case ai.ProviderOllama:
		return OllamaBaseURL
	}
	return ""
}

// NormalizeAPIBase trims whitespace and trailing slashes. A /v1 suffix is
// kept since the SDKs expect the full base.
func NormalizeAPIBase(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/")
}

func providerKeyEnv(p ai.Provider) []string {
	switch p {
	case ai.ProviderOpenAI:
		return []string{"OPENAI_API_KEY"}
	case ai.ProviderAnthropic:
		return []string{"ANTHROPIC_API_KEY"}
	case ai.ProviderGoogle:
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case ai.ProviderOpenRouter:
		return []string{"OPENROUTER_API_KEY", "OPENAI_API_KEY"}
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return i, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
