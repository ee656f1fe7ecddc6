// Package garment classifies garment photos into the try-on category ids.
package garment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"vto/internal/domain"
	"vto/internal/providers/bedrock"
	"vto/internal/providers/prompt"
)

const classifyMaxTokens = 1000

var ErrNoImage = errors.New("no image data provided")

// Result is the model's answer after validation.
type Result struct {
	CategoryID   int     `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

// Classification carries the validated result and the model id that produced it.
type Classification struct {
	Success   bool   `json:"success"`
	Result    Result `json:"result"`
	ModelUsed string `json:"model_used"`
}

type Classifier interface {
	Classify(ctx context.Context, image []byte) (*Classification, error)
}

type ClaudeModel interface {
	InvokeClaude(ctx context.Context, modelID string, req bedrock.ClaudeRequest) (string, error)
}

type Options struct {
	Model    ClaudeModel
	ModelIDs []string
	Logger   *zerolog.Logger
}

type BedrockClassifier struct {
	model    ClaudeModel
	modelIDs []string
	prompt   string
	logger   zerolog.Logger
}

func NewBedrockClassifier(opts Options) (*BedrockClassifier, error) {
	if opts.Model == nil {
		return nil, errors.New("garment classifier requires a model")
	}
	ids := opts.ModelIDs
	if len(ids) == 0 {
		ids = bedrock.ClassifierModelIDs
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &BedrockClassifier{model: opts.Model, modelIDs: ids, prompt: classificationPrompt(), logger: logger}, nil
}

// Classify tries each model id in order and returns the first valid answer.
func (c *BedrockClassifier) Classify(ctx context.Context, image []byte) (*Classification, error) {
	if len(image) == 0 {
		return nil, ErrNoImage
	}
	req := bedrock.ClaudeRequest{
		MaxTokens: classifyMaxTokens,
		Messages: []bedrock.ClaudeMessage{{
			Role: "user",
			Content: []bedrock.ClaudeContent{
				bedrock.ClaudeImage("image/png", base64.StdEncoding.EncodeToString(image)),
				bedrock.ClaudeText(c.prompt),
			},
		}},
	}

	var lastErr error
	for _, modelID := range c.modelIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.logger.Info().Str("model_id", modelID).Msg("classifying garment")
		text, err := c.model.InvokeClaude(ctx, modelID, req)
		if err == nil {
			var res Result
			res, err = parseResult(text)
			if err == nil {
				c.logger.Info().
					Str("model_id", modelID).
					Str("category", res.CategoryName).
					Float64("confidence", res.Confidence).
					Msg("garment classified")
				return &Classification{Success: true, Result: res, ModelUsed: modelID}, nil
			}
		}
		c.logger.Warn().Err(err).Str("model_id", modelID).Msg("garment classification attempt failed")
		lastErr = fmt.Errorf("model %s: %w", modelID, err)
	}
	return nil, fmt.Errorf("all models failed: %w", lastErr)
}

type rawResult struct {
	CategoryID   *int     `json:"category_id"`
	CategoryName *string  `json:"category_name"`
	Confidence   *float64 `json:"confidence"`
	Reasoning    *string  `json:"reasoning"`
}

func parseResult(text string) (Result, error) {
	raw, err := prompt.ParseModelJSON[rawResult](text)
	if err != nil {
		return Result{}, fmt.Errorf("parse classification: %w", err)
	}
	if raw.CategoryID == nil || raw.CategoryName == nil || raw.Confidence == nil || raw.Reasoning == nil {
		return Result{}, errors.New("classification is missing required keys")
	}
	if _, ok := domain.GarmentClasses[*raw.CategoryID]; !ok {
		return Result{}, fmt.Errorf("invalid category_id: %d", *raw.CategoryID)
	}
	return Result{
		CategoryID:   *raw.CategoryID,
		CategoryName: *raw.CategoryName,
		Confidence:   *raw.Confidence,
		Reasoning:    *raw.Reasoning,
	}, nil
}

var categoryHints = map[int]string{
	5:  "only a long sleeve shirt is visible; a garment that opens at the front with buttons",
	6:  "only a short sleeve shirt is visible; a garment that opens at the front with buttons",
	7:  "only a sleeveless shirt is visible",
	8:  "only some other upper body garment is visible",
	9:  "only long pants are visible",
	10: "only short pants are visible",
	11: "only some other lower body garment is visible",
	12: "only a long dress is visible",
	13: "only a short dress is visible",
	14: "a full body outfit; use this category when tops, bottoms and shoes are all visible",
	15: "some other full body garment",
	16: "only shoes are visible",
	17: "only boots are visible",
	18: "only some other footwear is visible",
}

func classificationPrompt() string {
	ids := make([]int, 0, len(domain.GarmentClasses))
	for id := range domain.GarmentClasses {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	sb := &strings.Builder{}
	sb.WriteString("You are an expert in garment classification.\n")
	sb.WriteString("Analyse the provided image and choose the single most appropriate category from the list below.\n\n")
	sb.WriteString("[Categories]\n")
	for _, id := range ids {
		fmt.Fprintf(sb, "%d. %s - %s\n", id, domain.GarmentClasses[id], categoryHints[id])
	}
	sb.WriteString("\nLook closely at the garment type, sleeve length, hem length and where it is worn.\n\n")
	sb.WriteString("Answer with JSON in exactly this shape:\n")
	sb.WriteString(`{"category_id": 5, "category_name": "LONG_SLEEVE_SHIRT", "confidence": 0.95, "reasoning": "a shirt with visible long sleeves"}`)
	sb.WriteString("\n\nDo not include any text other than the JSON.")
	return sb.String()
}
