// Package nlp provides the oracle client layer: chat-based access to large
// language model backends with retry, circuit breaking, telemetry, and
// schema-validated response parsing.
//
// The pipeline is agnostic to which backend answers a query. Backends are
// selected by provider (OpenAI, Anthropic, Gemini, or any OpenAI-compatible
// endpoint) and composed with wrapper clients:
//
//	base, _ := nlp.NewClient(nlp.Config{Provider: nlp.ProviderOpenAI, Model: "gpt-4o-mini", APIKey: key})
//	client := nlp.NewRetryClient(base, nil)
//
// Oracle output is treated as untrusted text: GenerateJSON and GenerateBoolean
// validate responses against an expected shape, retry once with a stricter
// reformatting instruction, and attempt mechanical JSON repair before giving
// up with a MalformedResponseError.
package nlp
