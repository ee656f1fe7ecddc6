package bedrock

import "vto/internal/domain"

const (
	Nova2ModelID       = "us.amazon.nova-2-omni-v1:0"
	TranslationModelID = "us.amazon.nova-micro-v1:0"
	EnhancerModelID    = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"
)

// ClassifierModelIDs are tried in order until one answers.
var ClassifierModelIDs = []string{
	"us.anthropic.claude-3-5-haiku-20241022-v1:0",
	"anthropic.claude-3-5-haiku-20241022-v1:0",
	"anthropic.claude-3-haiku-20240307-v1:0",
}

// Nova2Inference is the fixed inference configuration for Nova 2 Omni image generation.
var Nova2Inference = Inference{MaxTokens: 10000, Temperature: 0, TopP: 1}

// TranslationInference is used for prompt translation.
var TranslationInference = Inference{MaxTokens: 1000, Temperature: 0.1, TopP: 0.9}

// IsNova2 reports whether id selects the one-image-per-call model family.
func IsNova2(id string) bool {
	return id == domain.ModelNova2
}

// ResolveModelID maps API model ids to Bedrock model ids.
func ResolveModelID(id string) string {
	if IsNova2(id) {
		return Nova2ModelID
	}
	return id
}
