package model

import (
	"strings"
)

// Provider enumerates the supported AI chat backends.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// ParseProvider normalizes a persisted provider name. The second return
// value is false for anything outside the enumeration; persisted configs
// are untrusted, so callers must check it.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderOpenAI:
		return ProviderOpenAI, true
	case ProviderGemini:
		return ProviderGemini, true
	default:
		return "", false
	}
}

// AIServiceConfig is one user-supplied provider configuration. The
// configured set holds exactly one config per provider.
type AIServiceConfig struct {
	Provider Provider `json:"provider"`
	APIKey   string   `json:"api_key"`
	Model    string   `json:"model"`
	Enabled  bool     `json:"enabled"`
}

// AIResponse is the transient result of a single chat dispatch. Callers
// re-wrap the relevant fields into a ChatMessage; it is never persisted
// verbatim.
type AIResponse struct {
	Content       string
	RelatedTopics []string // at most 5, each trimmed and longer than 2 chars
	Confidence    float64
}

// ValidateAPIKey format-checks a candidate key without any network call.
// Empty or all-whitespace keys are invalid for every provider. OpenAI keys
// must start with "sk-" and be longer than 20 characters; Gemini keys only
// need the length. Unknown providers are always invalid.
func ValidateAPIKey(provider Provider, key string) bool {
	if strings.TrimSpace(key) == "" {
		return false
	}
	switch provider {
	case ProviderOpenAI:
		return strings.HasPrefix(key, "sk-") && len(key) > 20
	case ProviderGemini:
		return len(key) > 20
	default:
		return false
	}
}
