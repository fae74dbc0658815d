package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stellarlinkco/code-solver/internal/config"
)

// NewRegistryFromConfig builds a registry from the llm.providers section.
// Provider keys map onto adapters: "claude" (or "anthropic") and "openai".
func NewRegistryFromConfig(cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}

	r := NewRegistry()
	for name, pcfg := range cfg.LLM.Providers {
		p, err := buildProvider(name, pcfg)
		if err != nil {
			return nil, err
		}
		r.Register(p)
	}
	return r, nil
}

func buildProvider(name string, pcfg config.ProviderConfig) (Provider, error) {
	switch normalizeName(name) {
	case "":
		return nil, nil
	case "claude", "anthropic":
		return NewClaudeProvider(pcfg.APIKey, pcfg.BaseURL, pcfg.Model), nil
	case "openai":
		return NewOpenAIProvider(pcfg.APIKey, pcfg.BaseURL, pcfg.Model), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", name)
	}
}

// DefaultProviderFromConfig resolves the provider the pipeline should use:
// the configured default, or the only provider when exactly one exists.
func DefaultProviderFromConfig(cfg *config.Config) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}
	reg, err := NewRegistryFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(cfg.LLM.DefaultProvider)
	if name == "" {
		name = "claude"
	}
	if p, ok := reg.Get(name); ok {
		return p, nil
	}

	names := reg.Names()
	if len(names) == 1 {
		p, _ := reg.Get(names[0])
		return p, nil
	}
	return nil, fmt.Errorf("llm: default provider %q not configured (available: %s)", name, strings.Join(names, ", "))
}
