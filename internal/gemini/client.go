package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"github.com/oukeidos/percept/internal/apperrors"
	"github.com/oukeidos/percept/internal/httpclient"
	"github.com/oukeidos/percept/internal/vision"
	"google.golang.org/api/option"
)

// generator is the part of *genai.GenerativeModel the tagger uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Tagger labels images with a Gemini model.
type Tagger struct {
	client  *genai.Client
	model   generator
	modelID string
	opts    vision.Options
}

var _ vision.Tagger = (*Tagger)(nil)

// NewTagger creates a Gemini-backed tagger.
func NewTagger(ctx context.Context, apiKey, modelName string, opts vision.Options) (*Tagger, error) {
	// option.WithHTTPClient breaks the library's API key header injection (403),
	// so timeouts are enforced via context in Tag.
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = labelSchema
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(vision.Instruction)},
	}

	return &Tagger{
		client:  client,
		model:   model,
		modelID: modelName,
		opts:    opts.WithDefaults(),
	}, nil
}

var labelSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"labels": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"label":      {Type: genai.TypeString},
					"confidence": {Type: genai.TypeNumber},
				},
				Required: []string{"label", "confidence"},
			},
		},
	},
	Required: []string{"labels"},
}

// Close closes the underlying genai client.
func (t *Tagger) Close() error {
	if t.client == nil {
		return nil
	}
	return t.client.Close()
}

// ModelID returns the configured model identifier.
func (t *Tagger) ModelID() string {
	return t.modelID
}

// Tag implements vision.Tagger.
func (t *Tagger) Tag(ctx context.Context, img vision.Buffer) ([]string, error) {
	data, err := img.EncodePNG()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, httpclient.DefaultTimeout)
	defer cancel()

	prompt := fmt.Sprintf("List up to %d labels for this %dx%d image.", t.opts.MaxLabels, img.Width, img.Height)
	resp, err := t.model.GenerateContent(ctx, genai.Text(prompt), genai.ImageData("png", data))
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	text, err := extractResponseText(resp)
	if err != nil {
		return nil, apperrors.Validation(err)
	}
	cands, err := vision.ParseCandidates(text)
	if err != nil {
		return nil, apperrors.Validation(err)
	}

	if resp.UsageMetadata != nil {
		slog.Debug("Gemini usage",
			"model", t.modelID,
			"prompt_tokens", resp.UsageMetadata.PromptTokenCount,
			"candidate_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens", resp.UsageMetadata.TotalTokenCount,
		)
	}

	return vision.Rank(cands, t.opts.Threshold, t.opts.MaxLabels), nil
}

func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response received from Gemini")
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			continue
		}
		var combined string
		for _, part := range candidate.Content.Parts {
			text, ok := part.(genai.Text)
			if !ok {
				continue
			}
			combined += string(text)
		}
		if combined != "" {
			return combined, nil
		}
	}
	return "", fmt.Errorf("no text parts found in Gemini response")
}
