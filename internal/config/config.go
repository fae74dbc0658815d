package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Sandbox  SandboxConfig  `yaml:"sandbox"`
	Problems ProblemsConfig `yaml:"problems"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider,omitempty"`
	Providers       map[string]ProviderConfig `yaml:"providers,omitempty"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

type PipelineConfig struct {
	MaxTokens    int           `yaml:"max_tokens,omitempty"`
	Temperature  float64       `yaml:"temperature,omitempty"`
	StageTimeout time.Duration `yaml:"stage_timeout,omitempty"`
}

type SandboxConfig struct {
	Mode    string        `yaml:"mode,omitempty"` // "docker", "host" or "disabled"
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Image   string        `yaml:"image,omitempty"`
}

type ProblemsConfig struct {
	UnsolvedDir string `yaml:"unsolved_dir,omitempty"`
	SolvedDir   string `yaml:"solved_dir,omitempty"`
	ResultsDir  string `yaml:"results_dir,omitempty"`
}

type StorageConfig struct {
	Type string `yaml:"type,omitempty"` // "sqlite" or "memory"
	Path string `yaml:"path,omitempty"` // SQLite file path
}

type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	return &cfg, nil
}

// Default returns a usable configuration when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.Providers == nil {
		cfg.LLM.Providers = make(map[string]ProviderConfig)
	}
	if strings.TrimSpace(cfg.LLM.DefaultProvider) == "" {
		cfg.LLM.DefaultProvider = "claude"
	}
	if cfg.Pipeline.MaxTokens <= 0 {
		cfg.Pipeline.MaxTokens = 4096
	}
	if cfg.Pipeline.StageTimeout <= 0 {
		cfg.Pipeline.StageTimeout = 5 * time.Minute
	}
	if strings.TrimSpace(cfg.Sandbox.Mode) == "" {
		cfg.Sandbox.Mode = "docker"
	}
	if cfg.Sandbox.Timeout <= 0 {
		cfg.Sandbox.Timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.Problems.UnsolvedDir) == "" {
		cfg.Problems.UnsolvedDir = "problems/unsolved"
	}
	if strings.TrimSpace(cfg.Problems.SolvedDir) == "" {
		cfg.Problems.SolvedDir = "problems/solved"
	}
	if strings.TrimSpace(cfg.Problems.ResultsDir) == "" {
		cfg.Problems.ResultsDir = "results"
	}
	if strings.TrimSpace(cfg.Storage.Type) == "" {
		cfg.Storage.Type = "sqlite"
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		cfg.Storage.Path = "code-solver.db"
	}
	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = "info"
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
		p := cfg.LLM.Providers["claude"]
		p.APIKey = v
		cfg.LLM.Providers["claude"] = p
	} else if v := strings.TrimSpace(os.Getenv("ANTHROPIC_AUTH_TOKEN")); v != "" {
		p := cfg.LLM.Providers["claude"]
		p.APIKey = v
		cfg.LLM.Providers["claude"] = p
	}

	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		p := cfg.LLM.Providers["openai"]
		p.APIKey = v
		cfg.LLM.Providers["openai"] = p
	}
}
