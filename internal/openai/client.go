package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oukeidos/percept/internal/apperrors"
	"github.com/oukeidos/percept/internal/httpclient"
	"github.com/oukeidos/percept/internal/vision"
)

// RequestData represents the request body for the Responses API.
type RequestData struct {
	Model           string       `json:"model"`
	Instructions    string       `json:"instructions,omitempty"`
	Input           []InputItem  `json:"input"`
	Text            *TextOptions `json:"text,omitempty"`
	MaxOutputTokens int          `json:"max_output_tokens,omitempty"`
}

type TextOptions struct {
	Format *ResponseFormat `json:"format,omitempty"`
}

type InputItem struct {
	Type    string         `json:"type,omitempty"`
	Role    string         `json:"role,omitempty"`
	Content []InputContent `json:"content"`
}

// InputContent is one part of a user message: text or an image.
type InputContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// ResponseData represents the simplified response body from the Responses API.
type ResponseData struct {
	ID                string             `json:"id"`
	Status            string             `json:"status"`
	IncompleteDetails *IncompleteDetails `json:"incomplete_details,omitempty"`
	Output            []OutputItem       `json:"output"`
	Usage             Usage              `json:"usage"`
}

type IncompleteDetails struct {
	Reason string `json:"reason"`
}

type OutputItem struct {
	Type    string            `json:"type"`
	Status  string            `json:"status,omitempty"`
	Role    string            `json:"role,omitempty"`
	Content []ResponseContent `json:"content,omitempty"`
}

type ResponseContent struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Refusal string `json:"refusal,omitempty"`
}

type ResponseFormat struct {
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	Strict bool   `json:"strict,omitempty"`
	Schema any    `json:"schema,omitempty"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type errorEnvelope struct {
	Error errorDetails `json:"error"`
}

type errorDetails struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func (e errorDetails) codeString() string {
	if e.Code == nil {
		return ""
	}
	return fmt.Sprint(e.Code)
}

var labelSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"labels": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"label":      map[string]any{"type": "string"},
					"confidence": map[string]any{"type": "number"},
				},
				"required":             []string{"label", "confidence"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"labels"},
	"additionalProperties": false,
}

const maxOutputTokens = 2048

// Tagger labels images with an OpenAI model through the Responses API.
type Tagger struct {
	apiKey  string
	model   string
	baseURL string
	opts    vision.Options
}

var _ vision.Tagger = (*Tagger)(nil)

func NewTagger(apiKey, model string, opts vision.Options) *Tagger {
	return &Tagger{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.openai.com/v1",
		opts:    opts.WithDefaults(),
	}
}

// ModelID returns the configured model identifier.
func (t *Tagger) ModelID() string {
	return t.model
}

// Tag implements vision.Tagger.
func (t *Tagger) Tag(ctx context.Context, img vision.Buffer) ([]string, error) {
	data, err := img.EncodePNG()
	if err != nil {
		return nil, err
	}

	req := RequestData{
		Instructions: vision.Instruction,
		Input: []InputItem{{
			Type: "message",
			Role: "user",
			Content: []InputContent{
				{Type: "input_text", Text: fmt.Sprintf("List up to %d labels for this %dx%d image.", t.opts.MaxLabels, img.Width, img.Height)},
				{Type: "input_image", ImageURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), Detail: "low"},
			},
		}},
		Text: &TextOptions{Format: &ResponseFormat{
			Type:   "json_schema",
			Name:   "image_labels",
			Strict: true,
			Schema: labelSchema,
		}},
		MaxOutputTokens: maxOutputTokens,
	}

	resp, err := t.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	text, err := outputText(resp)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "OpenAI response format was invalid.", err)
	}
	cands, err := vision.ParseCandidates(text)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "OpenAI response format was invalid.", err)
	}
	return vision.Rank(cands, t.opts.Threshold, t.opts.MaxLabels), nil
}

// Generate posts a request to /responses and decodes the reply.
func (t *Tagger) Generate(ctx context.Context, req RequestData) (*ResponseData, error) {
	req.Model = t.model

	header := http.Header{}
	header.Set("Authorization", "Bearer "+t.apiKey)

	body, resp, err := httpclient.PostJSON(ctx, httpclient.GetDefaultClient(), t.baseURL+"/responses", header, req)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return nil, err
		case errors.Is(err, httpclient.ErrRequestTooLarge):
			return nil, apperrors.InvalidInput("The image is too large to upload to OpenAI.", err)
		}
		return nil, apperrors.New(
			apperrors.KindTransient,
			"OpenAI request failed due to a temporary network/runtime error.",
			fmt.Errorf("request failed: %w", err),
		)
	}

	if resp.StatusCode != http.StatusOK {
		details := parseErrorDetails(body)
		return nil, classifyOpenAIError(resp.StatusCode, resp.Status, details)
	}

	var result ResponseData
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.New(
			apperrors.KindValidation,
			"OpenAI response format was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}

	slog.Debug("OpenAI API Response", "status", resp.Status, "usage_total", result.Usage.TotalTokens, "response_id", result.ID)
	return &result, nil
}

func outputText(resp *ResponseData) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response received from OpenAI")
	}
	if resp.Status == "incomplete" {
		reason := "unknown"
		if resp.IncompleteDetails != nil && resp.IncompleteDetails.Reason != "" {
			reason = resp.IncompleteDetails.Reason
		}
		return "", fmt.Errorf("response incomplete: %s", reason)
	}
	var b strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			switch c.Type {
			case "output_text":
				b.WriteString(c.Text)
			case "refusal":
				return "", fmt.Errorf("model refused the request")
			}
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no output text in OpenAI response")
	}
	return b.String(), nil
}

func parseErrorDetails(body []byte) errorDetails {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errorDetails{}
	}
	return envelope.Error
}

func classifyOpenAIError(statusCode int, status string, details errorDetails) error {
	code := details.codeString()
	cause := fmt.Errorf("openai status=%s type=%s code=%s message=%s", status, details.Type, code, details.Message)

	switch statusCode {
	case http.StatusTooManyRequests:
		return apperrors.New(
			apperrors.KindRateLimit,
			"OpenAI API rate limit exceeded (429): please try again later.",
			cause,
		)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.New(
			apperrors.KindAuth,
			fmt.Sprintf("OpenAI API authentication/authorization failed (%d): please verify your API key and permissions.", statusCode),
			cause,
		)
	case http.StatusRequestEntityTooLarge:
		return apperrors.InvalidInput("The image is too large for OpenAI (413).", cause)
	case http.StatusBadRequest:
		if isOpenAIImageRejected(details) {
			return apperrors.InvalidInput("OpenAI could not read the image.", cause)
		}
		return apperrors.New(apperrors.KindBadRequest, "OpenAI rejected the request (400).", cause)
	case http.StatusNotFound:
		if isOpenAIModelNotFound(details) {
			return apperrors.New(
				apperrors.KindBadRequest,
				"The model does not exist or you do not have access to it.",
				cause,
			)
		}
		return apperrors.New(
			apperrors.KindBadRequest,
			"OpenAI resource not found (404).",
			cause,
		)
	default:
		if statusCode >= 500 {
			return apperrors.New(
				apperrors.KindTransient,
				fmt.Sprintf("OpenAI server error (%d): please try again later.", statusCode),
				cause,
			)
		}
		return apperrors.New(
			apperrors.KindBadRequest,
			fmt.Sprintf("OpenAI API error (%d): %s", statusCode, status),
			cause,
		)
	}
}

func isOpenAIModelNotFound(details errorDetails) bool {
	needle := strings.ToLower(details.codeString() + " " + details.Type + " " + details.Message)
	if strings.Contains(needle, "model_not_found") {
		return true
	}
	return strings.Contains(needle, "does not exist or you do not have access to it")
}

func isOpenAIImageRejected(details errorDetails) bool {
	needle := strings.ToLower(details.codeString() + " " + details.Message)
	return strings.Contains(needle, "invalid_image") || strings.Contains(needle, "image_parse_error")
}
