package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/oukeidos/percept/internal/apperrors"
	"google.golang.org/api/googleapi"
)

func classifyGeminiError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	wrapped := fmt.Errorf("gemini generate content failed: %w", err)

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		// DNS, socket, and timeout failures carry no status code.
		return apperrors.New(apperrors.KindTransient, "Gemini request failed due to a temporary network/runtime error.", wrapped)
	}

	switch {
	case gerr.Code == http.StatusNotFound:
		return apperrors.New(apperrors.KindBadRequest, "Gemini model not found or no access (404).", wrapped)
	case gerr.Code == http.StatusRequestEntityTooLarge:
		return apperrors.InvalidInput("The image is too large for Gemini (413).", wrapped)
	case gerr.Code == http.StatusBadRequest:
		return apperrors.New(apperrors.KindBadRequest, "Gemini rejected the image request (400).", wrapped)
	case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden:
		return apperrors.New(apperrors.KindAuth, fmt.Sprintf("Gemini authentication/authorization failed (%d).", gerr.Code), wrapped)
	case gerr.Code == http.StatusTooManyRequests:
		return apperrors.New(apperrors.KindRateLimit, "Gemini rate limit exceeded (429). Please try again later.", wrapped)
	case gerr.Code >= 500:
		return apperrors.New(apperrors.KindTransient, fmt.Sprintf("Gemini service temporary error (%d). Please try again.", gerr.Code), wrapped)
	default:
		return apperrors.New(apperrors.KindBadRequest, fmt.Sprintf("Gemini API error (%d).", gerr.Code), wrapped)
	}
}
