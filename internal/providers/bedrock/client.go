// Package bedrock wraps the Bedrock runtime calls used by the API and the worker.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/rs/zerolog"
)

// Runtime is the subset of *bedrockruntime.Client the package calls.
type Runtime interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// ErrNoImage is returned when a Converse reply carries no image block.
var ErrNoImage = errors.New("bedrock: no image in response")

// ErrNoText is returned when a Converse reply carries no text block.
var ErrNoText = errors.New("bedrock: no text in response")

type Options struct {
	Runtime Runtime
	Logger  *zerolog.Logger
}

type Client struct {
	runtime Runtime
	logger  zerolog.Logger
}

func NewClient(opts Options) (*Client, error) {
	if opts.Runtime == nil {
		return nil, errors.New("bedrock runtime is required")
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{runtime: opts.Runtime, logger: logger}, nil
}

// Inference mirrors the Converse inference configuration.
type Inference struct {
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// ConverseRequest is a single-turn Converse call. Image, when set, is sent before the text.
type ConverseRequest struct {
	ModelID     string
	System      string
	Prompt      string
	Image       []byte
	ImageFormat types.ImageFormat
	Inference   Inference
}

// InvokeJSON marshals body, calls InvokeModel and decodes the reply into out.
func (c *Client) InvokeJSON(ctx context.Context, modelID string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("bedrock: encode request: %w", err)
	}
	start := time.Now()
	resp, err := c.runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        raw,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("bedrock: invoke %s: %w", modelID, err)
	}
	c.logger.Info().Str("model_id", modelID).Dur("took", time.Since(start)).Msg("invoke model completed")
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("bedrock: decode response: %w", err)
	}
	return nil
}

// ConverseText returns the concatenated text blocks of the reply.
func (c *Client) ConverseText(ctx context.Context, req ConverseRequest) (string, error) {
	content, err := c.converse(ctx, req)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	if sb.Len() == 0 {
		return "", ErrNoText
	}
	return sb.String(), nil
}

// ConverseImage returns the first image block of the reply.
func (c *Client) ConverseImage(ctx context.Context, req ConverseRequest) ([]byte, error) {
	content, err := c.converse(ctx, req)
	if err != nil {
		return nil, err
	}
	return FirstImage(content)
}

// FirstImage extracts the bytes of the first image block.
func FirstImage(content []types.ContentBlock) ([]byte, error) {
	for _, block := range content {
		img, ok := block.(*types.ContentBlockMemberImage)
		if !ok {
			continue
		}
		if src, ok := img.Value.Source.(*types.ImageSourceMemberBytes); ok && len(src.Value) > 0 {
			return src.Value, nil
		}
	}
	return nil, ErrNoImage
}

func (c *Client) converse(ctx context.Context, req ConverseRequest) ([]types.ContentBlock, error) {
	var blocks []types.ContentBlock
	if len(req.Image) > 0 {
		format := req.ImageFormat
		if format == "" {
			format = types.ImageFormatPng
		}
		blocks = append(blocks, &types.ContentBlockMemberImage{Value: types.ImageBlock{
			Format: format,
			Source: &types.ImageSourceMemberBytes{Value: req.Image},
		}})
	}
	blocks = append(blocks, &types.ContentBlockMemberText{Value: req.Prompt})

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(req.ModelID),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: blocks,
		}},
	}
	if req.System != "" {
		input.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: req.System}}
	}
	if req.Inference != (Inference{}) {
		input.InferenceConfig = &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(req.Inference.MaxTokens),
			Temperature: aws.Float32(req.Inference.Temperature),
			TopP:        aws.Float32(req.Inference.TopP),
		}
	}

	start := time.Now()
	out, err := c.runtime.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("bedrock: converse %s: %w", req.ModelID, err)
	}
	c.logger.Info().Str("model_id", req.ModelID).Dur("took", time.Since(start)).Msg("converse completed")

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("bedrock: converse %s: unexpected output %T", req.ModelID, out.Output)
	}
	return msg.Value.Content, nil
}
