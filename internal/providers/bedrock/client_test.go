package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type captureRuntime struct {
	invokeIn   *bedrockruntime.InvokeModelInput
	invokeBody []byte
	converseIn *bedrockruntime.ConverseInput
	converse   *bedrockruntime.ConverseOutput
	err        error
}

func (c *captureRuntime) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	c.invokeIn = in
	if c.err != nil {
		return nil, c.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: c.invokeBody}, nil
}

func (c *captureRuntime) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	c.converseIn = in
	if c.err != nil {
		return nil, c.err
	}
	return c.converse, nil
}

func replyWith(blocks ...types.ContentBlock) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{Output: &types.ConverseOutputMemberMessage{Value: types.Message{
		Role:    types.ConversationRoleAssistant,
		Content: blocks,
	}}}
}

func TestNewClientRequiresRuntime(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatalf("expected error without runtime")
	}
}

func TestModelMapping(t *testing.T) {
	if !IsNova2("nova2") || IsNova2("amazon.nova-canvas-v1:0") {
		t.Fatalf("IsNova2 mismatch")
	}
	if ResolveModelID("nova2") != Nova2ModelID {
		t.Fatalf("nova2 should map to %s", Nova2ModelID)
	}
	if ResolveModelID("amazon.titan-image-generator-v2:0") != "amazon.titan-image-generator-v2:0" {
		t.Fatalf("other ids pass through")
	}
}

func TestInvokeJSON(t *testing.T) {
	rt := &captureRuntime{invokeBody: []byte(`{"images":["aW1n"]}`)}
	c, _ := NewClient(Options{Runtime: rt})

	var out struct {
		Images []string `json:"images"`
	}
	if err := c.InvokeJSON(context.Background(), "amazon.nova-canvas-v1:0", map[string]string{"taskType": "TEXT_IMAGE"}, &out); err != nil {
		t.Fatalf("InvokeJSON: %v", err)
	}
	if len(out.Images) != 1 || out.Images[0] != "aW1n" {
		t.Fatalf("decoded %+v", out)
	}
	if aws.ToString(rt.invokeIn.ModelId) != "amazon.nova-canvas-v1:0" || aws.ToString(rt.invokeIn.ContentType) != "application/json" {
		t.Fatalf("unexpected input: %+v", rt.invokeIn)
	}
	var sent map[string]string
	if err := json.Unmarshal(rt.invokeIn.Body, &sent); err != nil || sent["taskType"] != "TEXT_IMAGE" {
		t.Fatalf("body = %s", rt.invokeIn.Body)
	}
}

func TestConverseImageSendsImageAndInference(t *testing.T) {
	rt := &captureRuntime{converse: replyWith(
		&types.ContentBlockMemberText{Value: "here you go"},
		&types.ContentBlockMemberImage{Value: types.ImageBlock{Format: types.ImageFormatPng, Source: &types.ImageSourceMemberBytes{Value: []byte("png")}}},
	)}
	c, _ := NewClient(Options{Runtime: rt})

	img, err := c.ConverseImage(context.Background(), ConverseRequest{
		ModelID:   Nova2ModelID,
		System:    "sys",
		Prompt:    "edit",
		Image:     []byte("src"),
		Inference: Nova2Inference,
	})
	if err != nil {
		t.Fatalf("ConverseImage: %v", err)
	}
	if string(img) != "png" {
		t.Fatalf("image = %q", img)
	}
	msg := rt.converseIn.Messages[0]
	if len(msg.Content) != 2 {
		t.Fatalf("content blocks = %d, want 2", len(msg.Content))
	}
	if _, ok := msg.Content[0].(*types.ContentBlockMemberImage); !ok {
		t.Fatalf("first block should be the image, got %T", msg.Content[0])
	}
	cfg := rt.converseIn.InferenceConfig
	if aws.ToInt32(cfg.MaxTokens) != 10000 || aws.ToFloat32(cfg.Temperature) != 0 || aws.ToFloat32(cfg.TopP) != 1 {
		t.Fatalf("inference = %+v", cfg)
	}
	if len(rt.converseIn.System) != 1 {
		t.Fatalf("system prompt missing")
	}
}

func TestConverseImageWithoutImage(t *testing.T) {
	rt := &captureRuntime{converse: replyWith(&types.ContentBlockMemberText{Value: "sorry"})}
	c, _ := NewClient(Options{Runtime: rt})
	if _, err := c.ConverseImage(context.Background(), ConverseRequest{ModelID: Nova2ModelID, Prompt: "x"}); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if rt.converseIn.InferenceConfig != nil || rt.converseIn.System != nil {
		t.Fatalf("empty inference and system should be omitted")
	}
}

func TestConverseText(t *testing.T) {
	rt := &captureRuntime{converse: replyWith(&types.ContentBlockMemberText{Value: "hello"})}
	c, _ := NewClient(Options{Runtime: rt})
	got, err := c.ConverseText(context.Background(), ConverseRequest{ModelID: TranslationModelID, Prompt: "こんにちは"})
	if err != nil || got != "hello" {
		t.Fatalf("ConverseText = %q, %v", got, err)
	}
}

func TestInvokeClaude(t *testing.T) {
	rt := &captureRuntime{invokeBody: []byte(`{"content":[{"type":"text","text":"  enhanced  "}]}`)}
	c, _ := NewClient(Options{Runtime: rt})

	got, err := c.InvokeClaude(context.Background(), EnhancerModelID, ClaudeRequest{
		MaxTokens: 500,
		Messages:  []ClaudeMessage{{Role: "user", Content: []ClaudeContent{ClaudeText("hi")}}},
	})
	if err != nil || got != "enhanced" {
		t.Fatalf("InvokeClaude = %q, %v", got, err)
	}
	var sent ClaudeRequest
	if err := json.Unmarshal(rt.invokeIn.Body, &sent); err != nil {
		t.Fatalf("body: %v", err)
	}
	if sent.AnthropicVersion != "bedrock-2023-05-31" {
		t.Fatalf("anthropic_version = %q", sent.AnthropicVersion)
	}
}

func TestInvokeClaudeEmpty(t *testing.T) {
	rt := &captureRuntime{invokeBody: []byte(`{"content":[]}`)}
	c, _ := NewClient(Options{Runtime: rt})
	if _, err := c.InvokeClaude(context.Background(), EnhancerModelID, ClaudeRequest{}); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}
