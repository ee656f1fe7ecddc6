package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vto/internal/providers/bedrock"
)

type stubClaude struct {
	modelID string
	req     bedrock.ClaudeRequest
	reply   string
	err     error
	calls   int
}

func (s *stubClaude) InvokeClaude(_ context.Context, modelID string, req bedrock.ClaudeRequest) (string, error) {
	s.calls++
	s.modelID = modelID
	s.req = req
	return s.reply, s.err
}

func TestNewBedrockEnhancerRequiresModel(t *testing.T) {
	if _, err := NewBedrockEnhancer(Options{}); err == nil {
		t.Fatalf("expected error without model")
	}
}

func TestEnhanceBuildsRequest(t *testing.T) {
	model := &stubClaude{reply: "A professional fashion model in her late 20s, wearing a red dress"}
	enh, err := NewBedrockEnhancer(Options{Model: model})
	if err != nil {
		t.Fatalf("NewBedrockEnhancer: %v", err)
	}

	res, err := enh.Enhance(context.Background(), EnhanceRequest{Prompt: "woman in red dress", Language: "en"})
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if res.OriginalPrompt != "woman in red dress" || !strings.Contains(res.EnhancedPrompt, "red dress") {
		t.Fatalf("unexpected response %+v", res)
	}
	if model.modelID != bedrock.EnhancerModelID {
		t.Fatalf("model id = %q", model.modelID)
	}
	if model.req.MaxTokens != 500 || model.req.Temperature == nil || *model.req.Temperature != 0.7 {
		t.Fatalf("inference = %d/%v", model.req.MaxTokens, model.req.Temperature)
	}
	if !strings.Contains(model.req.System, "fashion model image generation") {
		t.Fatalf("system prompt not sent")
	}
	if got := model.req.Messages[0].Content[0].Text; got != "Enhance this prompt: woman in red dress" {
		t.Fatalf("user message = %q", got)
	}
}

func TestEnhanceStripsQuotes(t *testing.T) {
	model := &stubClaude{reply: "\"A model in a studio\""}
	enh, _ := NewBedrockEnhancer(Options{Model: model})
	res, err := enh.Enhance(context.Background(), EnhanceRequest{Prompt: "woman"})
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if res.EnhancedPrompt != "A model in a studio" {
		t.Fatalf("enhanced = %q", res.EnhancedPrompt)
	}
}

func TestEnhanceErrors(t *testing.T) {
	model := &stubClaude{err: errors.New("throttled")}
	enh, _ := NewBedrockEnhancer(Options{Model: model})

	if _, err := enh.Enhance(context.Background(), EnhanceRequest{Prompt: "   "}); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if model.calls != 0 {
		t.Fatalf("blank prompt should not reach the model")
	}
	_, err := enh.Enhance(context.Background(), EnhanceRequest{Prompt: "woman"})
	if err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestParseModelJSON(t *testing.T) {
	type payload struct {
		ID int `json:"id"`
	}
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "plain", raw: `{"id":5}`, want: 5},
		{name: "fenced", raw: "```json\n{\"id\":7}\n```", want: 7},
		{name: "prose", raw: "Here is the answer: {\"id\":9} hope it helps", want: 9},
		{name: "empty", raw: "  ", wantErr: true},
		{name: "garbage", raw: "{not json}", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseModelJSON[payload](tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil || got.ID != tc.want {
				t.Fatalf("got %+v, %v", got, err)
			}
		})
	}
}
