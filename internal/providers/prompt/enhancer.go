package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"vto/internal/providers/bedrock"
)

const systemPrompt = `You are an expert at creating detailed prompts for fashion model image generation.

Given a user's prompt, enhance it for professional fashion photography by preserving all provided details and adding missing elements:

Preserve (if provided):
- Model characteristics (age, ethnicity, hair, body type, etc.)
- Clothing details (type, color, style, material, etc.)
- Pose and expression
- Setting and background
- Lighting and atmosphere

Add (if missing):
- Model details: age range (20s-30s), pose (standing/sitting), expression (confident/natural)
- Clothing details: style, fit, material
- Photography setup: lighting type (studio/natural), background (neutral/contextual), camera angle
- Quality indicators: "professional photography", "high resolution", "fashion editorial style"

Rules:
- Output 2-4 sentences, concise but detailed
- NEVER change or remove user's specified details
- NEVER change the core subject (if "dress" → keep "dress", if "red" → keep "red")
- Only add details that are missing or implicit
- CRITICAL: Output in the SAME LANGUAGE as the input (if input is Japanese, output in Japanese; if English, output in English)
- Output only the enhanced prompt, no explanation or preamble

Examples:
Input: "woman"
Output: "A professional fashion model in her late 20s, standing confidently in a neutral pose, studio lighting with soft shadows, clean white background, high-resolution fashion photography"

Input: "woman in red dress"
Output: "A professional fashion model in her late 20s, wearing an elegant red dress, standing gracefully with natural pose, studio setting with soft diffused lighting, neutral gray background, high-resolution editorial photography"

Input: "赤いドレスを着た女性"
Output: "20代後半のプロフェッショナルなファッションモデルが、エレガントな赤いドレスを着て、優雅な自然なポーズで立っている。スタジオ設定でソフトな拡散照明、ニュートラルなグレーの背景、高解像度のエディトリアル写真撮影"
`

const (
	enhanceMaxTokens   = 500
	enhanceTemperature = 0.7
)

var ErrEmptyPrompt = errors.New("prompt is empty")

type EnhanceRequest struct {
	Prompt   string
	Language string
}

type EnhanceResponse struct {
	OriginalPrompt string `json:"original_prompt"`
	EnhancedPrompt string `json:"enhanced_prompt"`
}

type Enhancer interface {
	Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error)
}

// ClaudeModel is the slice of the Bedrock client the enhancer calls.
type ClaudeModel interface {
	InvokeClaude(ctx context.Context, modelID string, req bedrock.ClaudeRequest) (string, error)
}

type Options struct {
	Model   ClaudeModel
	ModelID string
	Logger  *zerolog.Logger
}

// BedrockEnhancer rewrites short prompts into fashion photography prompts.
type BedrockEnhancer struct {
	model   ClaudeModel
	modelID string
	logger  zerolog.Logger
}

func NewBedrockEnhancer(opts Options) (*BedrockEnhancer, error) {
	if opts.Model == nil {
		return nil, errors.New("prompt enhancer requires a model")
	}
	modelID := strings.TrimSpace(opts.ModelID)
	if modelID == "" {
		modelID = bedrock.EnhancerModelID
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &BedrockEnhancer{model: opts.Model, modelID: modelID, logger: logger}, nil
}

func (e *BedrockEnhancer) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error) {
	original := req.Prompt
	if strings.TrimSpace(original) == "" {
		return nil, ErrEmptyPrompt
	}
	temperature := enhanceTemperature
	text, err := e.model.InvokeClaude(ctx, e.modelID, bedrock.ClaudeRequest{
		MaxTokens:   enhanceMaxTokens,
		Temperature: &temperature,
		System:      systemPrompt,
		Messages: []bedrock.ClaudeMessage{{
			Role:    "user",
			Content: []bedrock.ClaudeContent{bedrock.ClaudeText("Enhance this prompt: " + original)},
		}},
	})
	if err != nil {
		e.logger.Error().Err(err).Str("model_id", e.modelID).Msg("prompt enhancement failed")
		return nil, fmt.Errorf("enhance prompt: %w", err)
	}
	enhanced := unquote(text)
	e.logger.Info().
		Int("original_length", len(original)).
		Int("enhanced_length", len(enhanced)).
		Str("language", req.Language).
		Msg("prompt enhanced")
	return &EnhanceResponse{OriginalPrompt: original, EnhancedPrompt: enhanced}, nil
}
