package garment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vto/internal/providers/bedrock"
)

type scriptedModel struct {
	replies map[string]string
	errs    map[string]error
	tried   []string
	last    bedrock.ClaudeRequest
}

func (m *scriptedModel) InvokeClaude(_ context.Context, modelID string, req bedrock.ClaudeRequest) (string, error) {
	m.tried = append(m.tried, modelID)
	m.last = req
	if err := m.errs[modelID]; err != nil {
		return "", err
	}
	return m.replies[modelID], nil
}

const validReply = "```json\n{\"category_id\": 12, \"category_name\": \"LONG_DRESS\", \"confidence\": 0.9, \"reasoning\": \"ankle length dress\"}\n```"

func TestClassifyFirstModel(t *testing.T) {
	model := &scriptedModel{replies: map[string]string{bedrock.ClassifierModelIDs[0]: validReply}}
	c, err := NewBedrockClassifier(Options{Model: model})
	if err != nil {
		t.Fatalf("NewBedrockClassifier: %v", err)
	}

	got, err := c.Classify(context.Background(), []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !got.Success || got.Result.CategoryID != 12 || got.Result.CategoryName != "LONG_DRESS" || got.ModelUsed != bedrock.ClassifierModelIDs[0] {
		t.Fatalf("unexpected classification %+v", got)
	}
	if len(model.tried) != 1 {
		t.Fatalf("tried %v", model.tried)
	}
	content := model.last.Messages[0].Content
	if content[0].Type != "image" || content[0].Source.MediaType != "image/png" || content[0].Source.Data != "cG5nLWJ5dGVz" {
		t.Fatalf("image block = %+v", content[0])
	}
	if model.last.MaxTokens != 1000 || !strings.Contains(content[1].Text, "18. OTHER_FOOTWEAR") {
		t.Fatalf("prompt block wrong")
	}
}

func TestClassifyFallsBack(t *testing.T) {
	ids := bedrock.ClassifierModelIDs
	model := &scriptedModel{
		errs: map[string]error{ids[0]: errors.New("access denied")},
		replies: map[string]string{
			ids[1]: `{"category_id": 3, "category_name": "X", "confidence": 0.5, "reasoning": "?"}`,
			ids[2]: `{"category_id": 16, "category_name": "SHOES", "confidence": 0.8, "reasoning": "sneakers"}`,
		},
	}
	c, _ := NewBedrockClassifier(Options{Model: model})

	got, err := c.Classify(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.ModelUsed != ids[2] || got.Result.CategoryID != 16 {
		t.Fatalf("unexpected classification %+v", got)
	}
	if len(model.tried) != 3 {
		t.Fatalf("tried %v", model.tried)
	}
}

func TestClassifyAllFail(t *testing.T) {
	model := &scriptedModel{replies: map[string]string{}}
	c, _ := NewBedrockClassifier(Options{Model: model, ModelIDs: []string{"a", "b"}})

	_, err := c.Classify(context.Background(), []byte("img"))
	if err == nil || !strings.Contains(err.Error(), "model b") {
		t.Fatalf("expected aggregated failure, got %v", err)
	}
	if _, err := c.Classify(context.Background(), nil); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "valid", text: `{"category_id": 5, "category_name": "LONG_SLEEVE_SHIRT", "confidence": 0.95, "reasoning": "long sleeves"}`},
		{name: "missing reasoning", text: `{"category_id": 5, "category_name": "LONG_SLEEVE_SHIRT", "confidence": 0.95}`, wantErr: true},
		{name: "out of range", text: `{"category_id": 19, "category_name": "HAT", "confidence": 0.95, "reasoning": "hat"}`, wantErr: true},
		{name: "not json", text: "I think it is a shirt", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseResult(tc.text)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
