// Package session wires a language detector and an image tagger into the
// request/response operations the CLI and GUI expose.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oukeidos/percept/internal/apperrors"
	"github.com/oukeidos/percept/internal/imagefile"
	"github.com/oukeidos/percept/internal/language"
	"github.com/oukeidos/percept/internal/logger"
	"github.com/oukeidos/percept/internal/vision"
)

const (
	DetectedPrefix    = "Detected Language: "
	RecognizedHeading = "Recognized Objects:"
	NothingRecognized = "No objects recognized."
	canceledMessage   = "Image recognition was cancelled."
	unexpectedFailure = "Image recognition failed."
)

// Session holds the two operations. Each lane has its own Tracker so a newer
// request supersedes an older one without touching the other lane.
type Session struct {
	mu       sync.RWMutex
	detector language.Detector
	tagger   vision.Tagger

	TextRequests  Tracker
	ImageRequests Tracker
}

// New returns a Session over the given backends.
func New(detector language.Detector, tagger vision.Tagger) *Session {
	return &Session{detector: detector, tagger: tagger}
}

// SetDetector replaces the detector used by later DetectText calls.
func (s *Session) SetDetector(d language.Detector) {
	s.mu.Lock()
	s.detector = d
	s.mu.Unlock()
}

// SetTagger replaces the tagger used by later TagImage calls and returns the
// previous one so the caller can close it. Requests already running keep the
// tagger they started with.
func (s *Session) SetTagger(t vision.Tagger) vision.Tagger {
	s.mu.Lock()
	prev := s.tagger
	s.tagger = t
	s.mu.Unlock()
	return prev
}

func (s *Session) backends() (language.Detector, vision.Tagger) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detector, s.tagger
}

// TextView is what the text lane displays.
type TextView struct {
	Input   string
	Result  language.Result
	Message string
}

// DetectText runs language detection and formats the outcome for display.
// Without a detector the result is undetermined.
func (s *Session) DetectText(text string) TextView {
	detector, _ := s.backends()
	if detector == nil {
		logger.Warn("No language detector configured")
		result := language.UndeterminedResult()
		return TextView{Input: text, Result: result, Message: DetectedPrefix + result.DisplayName}
	}
	start := time.Now()
	result := detector.Detect(text)
	logger.Debug("Language detected",
		"request_id", uuid.NewString(),
		"code", result.Code,
		"confidence", result.Confidence,
		"elapsed", time.Since(start),
	)
	return TextView{
		Input:   text,
		Result:  result,
		Message: DetectedPrefix + result.DisplayName,
	}
}

// Selection is the outcome of image acquisition: a buffer, or an error.
// imagefile.ErrNoSelection means the user cancelled.
type Selection struct {
	Buffer *vision.Buffer
	Err    error
}

// SelectFile loads path into a Selection. An empty path is a cancelled pick.
func SelectFile(path string) Selection {
	buf, err := imagefile.Load(path)
	if err != nil {
		return Selection{Err: err}
	}
	return Selection{Buffer: &buf}
}

// ImageView is what the image lane displays.
type ImageView struct {
	Labels      []string
	Message     string
	NoSelection bool
	Err         error
}

// TagImage tags the selected image. Every outcome, failure included, is
// resolved into a view; nothing here is fatal.
func (s *Session) TagImage(ctx context.Context, sel Selection) ImageView {
	log := logger.With("request_id", requestIDOrNew(ctx))

	if errors.Is(sel.Err, imagefile.ErrNoSelection) || (sel.Err == nil && sel.Buffer == nil) {
		log.Debug("No image selected")
		return ImageView{NoSelection: true}
	}
	if sel.Err != nil {
		log.Warn("Image could not be loaded", "error", sel.Err)
		return failedView(sel.Err)
	}

	_, tagger := s.backends()
	start := time.Now()
	labels, err := tagger.Tag(ctx, *sel.Buffer)
	if err != nil {
		log.Warn("Image tagging failed", "error", err, "elapsed", time.Since(start))
		return failedView(err)
	}
	log.Info("Image tagged",
		"width", sel.Buffer.Width,
		"height", sel.Buffer.Height,
		"labels", len(labels),
		"elapsed", time.Since(start),
	)
	if len(labels) == 0 {
		return ImageView{Labels: []string{}, Message: NothingRecognized}
	}
	return ImageView{Labels: labels, Message: RecognizedHeading}
}

func failedView(err error) ImageView {
	var msg string
	switch _, classified := apperrors.KindOf(err); {
	case errors.Is(err, context.Canceled):
		msg = canceledMessage
	case classified:
		msg = apperrors.PublicMessage(err)
	default:
		msg = unexpectedFailure
	}
	return ImageView{Message: msg, Err: err}
}

func requestIDOrNew(ctx context.Context) string {
	if id := RequestID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
