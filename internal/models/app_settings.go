package models

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
)

// AppSettings is the single global configuration value. It has no history;
// updates replace the whole value.
type AppSettings struct {
	Provider          string  `json:"provider"` // "gemini" | "openai" | "claude"
	ModelName         string  `json:"modelName"`
	SystemInstruction string  `json:"systemInstruction"`
	Temperature       float64 `json:"temperature"` // [0, 2]
	UserName          string  `json:"userName"`
}

func DefaultAppSettings() AppSettings {
	return AppSettings{
		Provider:          ProviderGemini,
		ModelName:         "gemini-2.5-flash",
		SystemInstruction: "You are a helpful, intelligent assistant.",
		Temperature:       0.7,
		UserName:          "User",
	}
}

func ValidProvider(provider string) bool {
	switch provider {
	case ProviderGemini, ProviderOpenAI, ProviderClaude:
		return true
	}
	return false
}
