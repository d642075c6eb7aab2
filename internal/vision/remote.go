package vision

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Instruction is the system prompt remote backends send with every image.
const Instruction = `You label photographs and other images.
List the distinct objects and scene elements you can see.
Answer with JSON only, in the form {"labels":[{"label":"dog","confidence":0.92}]}.
Each label is a short lowercase English noun phrase. Confidence is a number between 0 and 1.
If nothing is recognizable, answer {"labels":[]}.`

// LabelResponse is the JSON document remote backends are asked to return.
type LabelResponse struct {
	Labels []Candidate `json:"labels"`
}

// ParseCandidates decodes a backend reply. It accepts the LabelResponse object
// or, failing that, a bare array of candidates.
func ParseCandidates(text string) ([]Candidate, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var resp LabelResponse
	err := json.Unmarshal([]byte(text), &resp)
	if err == nil {
		return resp.Labels, nil
	}
	var arr []Candidate
	if err2 := json.Unmarshal([]byte(text), &arr); err2 == nil {
		return arr, nil
	}
	return nil, fmt.Errorf("failed to unmarshal labels: %w", err)
}
