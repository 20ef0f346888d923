package nlp

import "fmt"

// TaskCapability represents a specific task an oracle backend can perform.
type TaskCapability string

const (
	// TaskTextGeneration represents open-ended text generation (chat/completion).
	TaskTextGeneration TaskCapability = "text_generation"
	// TaskClassification represents yes/no or categorical judgments.
	TaskClassification TaskCapability = "classification"
	// TaskStructuredOutput represents JSON-constrained generation.
	TaskStructuredOutput TaskCapability = "structured_output"
)

// ProviderID represents a unique identifier for an oracle provider.
type ProviderID string

const (
	// ProviderOpenAI is the ID for OpenAI.
	ProviderOpenAI ProviderID = "openai"
	// ProviderAnthropic is the ID for Anthropic.
	ProviderAnthropic ProviderID = "anthropic"
	// ProviderGoogle is the ID for Google (Gemini).
	ProviderGoogle ProviderID = "google"
	// ProviderOpenAICompatible is the ID for generic OpenAI-compatible providers.
	ProviderOpenAICompatible ProviderID = "openai_compatible"
)

// Provider represents an oracle model provider.
type Provider struct {
	ID          ProviderID
	Name        string
	Description string
}

// BuiltInProviders contains the standard set of supported providers.
var BuiltInProviders = map[ProviderID]Provider{
	ProviderOpenAI: {
		ID:          ProviderOpenAI,
		Name:        "OpenAI",
		Description: "Cloud-based advanced LLMs (GPT-4, etc.)",
	},
	ProviderAnthropic: {
		ID:          ProviderAnthropic,
		Name:        "Anthropic",
		Description: "Cloud-based advanced LLMs (Claude, etc.)",
	},
	ProviderGoogle: {
		ID:          ProviderGoogle,
		Name:        "Google",
		Description: "Cloud-based advanced LLMs (Gemini)",
	},
	ProviderOpenAICompatible: {
		ID:          ProviderOpenAICompatible,
		Name:        "OpenAI Compatible",
		Description: "Generic provider compatible with OpenAI API (e.g. vLLM, Ollama)",
	},
}

// GetProvider returns the provider with the given ID.
func GetProvider(id ProviderID) (Provider, bool) {
	p, ok := BuiltInProviders[id]
	return p, ok
}

// NewClient constructs a base client for the configured provider. Wrapper
// clients (retry, circuit breaker, telemetry) are layered on top by callers.
func NewClient(config Config) (Client, error) {
	switch config.Provider {
	case ProviderOpenAI, ProviderOpenAICompatible, "":
		return NewOpenAIClient(config.APIKey, config)
	case ProviderAnthropic:
		return NewAnthropicClient(config.APIKey, config)
	case ProviderGoogle:
		return NewGeminiClient(config.APIKey, config)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidProvider, config.Provider)
	}
}
