package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/oukeidos/percept/internal/apperrors"
	"github.com/oukeidos/percept/internal/language"
	"github.com/oukeidos/percept/internal/version"
)

// ReportHeader is shared by every JSON report.
type ReportHeader struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Tool      string    `json:"tool"`
	Source    string    `json:"source,omitempty"`
}

func newHeader(source string, now time.Time) ReportHeader {
	id := uuid.NewString()
	if u, err := uuid.NewV7(); err == nil {
		id = u.String()
	}
	return ReportHeader{
		ID:        id,
		CreatedAt: now.UTC(),
		Tool:      version.UserAgent(),
		Source:    source,
	}
}

// TextReport is the JSON form of a language detection.
type TextReport struct {
	ReportHeader
	Locale   string          `json:"locale,omitempty"`
	Language language.Result `json:"language"`
}

// ImageReport is the JSON form of an image tagging.
type ImageReport struct {
	ReportHeader
	Backend string   `json:"backend"`
	Model   string   `json:"model"`
	Labels  []string `json:"labels"`
	Error   string   `json:"error,omitempty"`
}

// NewTextReport describes view. Source names where the text came from.
func NewTextReport(source string, view TextView) TextReport {
	return TextReport{
		ReportHeader: newHeader(source, time.Now()),
		Language:     view.Result,
	}
}

// NewImageReport describes view. Labels is never null in the output.
func NewImageReport(source string, cfg Config, view ImageView) ImageReport {
	labels := view.Labels
	if labels == nil {
		labels = []string{}
	}
	r := ImageReport{
		ReportHeader: newHeader(source, time.Now()),
		Backend:      string(cfg.Backend),
		Model:        cfg.Model,
		Labels:       labels,
	}
	if view.Err != nil {
		r.Error = apperrors.PublicMessage(view.Err)
		if _, ok := apperrors.KindOf(view.Err); !ok {
			r.Error = view.Message
		}
	}
	return r
}

// MarshalReport renders a report as indented JSON with a trailing newline.
func MarshalReport(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
