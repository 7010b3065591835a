// Package analyzer defines the evidence-analysis boundary: binary file
// contents go in, a graph fragment comes out. The engine treats the
// model behind it as opaque.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/solaris-forensic/casegraph/internal/models"
)

// Content is one evidence file's bytes tagged with its media type.
type Content struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Analyzer extracts a knowledge-graph fragment from a set of evidence
// files in a single pass.
type Analyzer interface {
	Analyze(ctx context.Context, contents []Content) (*models.GraphFragment, error)
}

// ParseFragment decodes a model response into a graph fragment.
// Markdown code fences are stripped first; after that the payload must
// be valid JSON with the nodes/links schema or the whole batch fails —
// there is no partial acceptance of a malformed response.
func ParseFragment(raw string) (*models.GraphFragment, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("parse fragment: empty response")
	}
	var frag models.GraphFragment
	if err := json.Unmarshal([]byte(cleaned), &frag); err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	return &frag, nil
}

// StripFences removes ```json / ``` markers models sometimes wrap
// around payloads despite instructions, and trims whitespace.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
