package metadata

// Backend identifies an image tagging implementation.
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendGemini Backend = "gemini"
	BackendOpenAI Backend = "openai"
)

// Backends lists the selectable tagging backends, default first.
var Backends = []Backend{BackendLocal, BackendGemini, BackendOpenAI}

// Model is a remote vision model known to work with the tagger prompt.
type Model struct {
	ID    string
	Label string
}

var GeminiModels = []Model{
	{ID: "gemini-3-flash-preview", Label: "Gemini 3 Flash (preview)"},
	{ID: "gemini-3-pro-preview", Label: "Gemini 3 Pro (preview)"},
	{ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash"},
}

var OpenAIModels = []Model{
	{ID: "gpt-5.2", Label: "GPT-5.2"},
	{ID: "gpt-5-mini", Label: "GPT-5 mini"},
}

const (
	DefaultGeminiModel = "gemini-3-flash-preview"
	DefaultOpenAIModel = "gpt-5.2"
	// LocalModel is reported as the model ID of the built-in heuristic tagger.
	LocalModel = "heuristic"
)

// ParseBackend returns the backend named s, or false.
func ParseBackend(s string) (Backend, bool) {
	for _, b := range Backends {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

// Models returns the known models for a backend. The local backend has one.
func Models(b Backend) []Model {
	switch b {
	case BackendGemini:
		return GeminiModels
	case BackendOpenAI:
		return OpenAIModels
	case BackendLocal:
		return []Model{{ID: LocalModel, Label: "Built-in colour heuristics"}}
	default:
		return nil
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(b Backend) string {
	switch b {
	case BackendGemini:
		return DefaultGeminiModel
	case BackendOpenAI:
		return DefaultOpenAIModel
	default:
		return LocalModel
	}
}

// ModelIDs returns the IDs of Models(b).
func ModelIDs(b Backend) []string {
	models := Models(b)
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	return ids
}

// IsKnownModel reports whether id is listed for the backend. Unlisted remote
// models are still allowed; callers only warn.
func IsKnownModel(b Backend, id string) bool {
	for _, m := range Models(b) {
		if m.ID == id {
			return true
		}
	}
	return false
}
