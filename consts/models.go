package consts

// ModelPreset is a model identifier offered to callers together with a display name.
type ModelPreset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var groqPresets = []ModelPreset{
	{ID: "llama-3.3-70b-specdec", Name: "Llama 3.3 70B SpecDec"},
	{ID: "llama3-groq-70b-8192-tool-use-preview", Name: "Llama 3 70B"},
}

var deepseekPresets = []ModelPreset{
	{ID: "deepseek-chat", Name: "DeepSeek Chat"},
	{ID: "deepseek-reasoner", Name: "DeepSeek Reasoner"},
}

// ModelPresets returns the presets for an llm provider, groq when the provider is unknown.
func ModelPresets(provider string) []ModelPreset {
	if provider == "deepseek" {
		return append([]ModelPreset(nil), deepseekPresets...)
	}
	return append([]ModelPreset(nil), groqPresets...)
}

func IsModelPreset(provider, id string) bool {
	for _, p := range ModelPresets(provider) {
		if p.ID == id {
			return true
		}
	}
	return false
}
