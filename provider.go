package reactor

// Provider identifies an AI provider.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenAI     Provider = "openai"
	ProviderGoogle     Provider = "google"
	ProviderOpenRouter Provider = "openrouter"
	ProviderOllama     Provider = "ollama"
)

// Providers lists every supported provider.
func Providers() []Provider {
	return []Provider{ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderOpenRouter, ProviderOllama}
}

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	for _, known := range Providers() {
		if p == known {
			return true
		}
	}
	return false
}
