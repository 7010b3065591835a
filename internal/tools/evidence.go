package tools

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/solaris-forensic/casegraph/internal/ingest"
	"github.com/solaris-forensic/casegraph/internal/session"
)

// EvidenceTools holds references needed by the evidence tool handlers.
type EvidenceTools struct {
	Session *session.Session
}

type AddEvidenceInput struct {
	Files []EvidenceUpload `json:"files" jsonschema:"Evidence files to ingest as one batch"`
}

type EvidenceUpload struct {
	Path string `json:"path,omitempty" jsonschema:"Path of a local file to read"`
	Name string `json:"name,omitempty" jsonschema:"File name when passing inline data"`
	Data string `json:"data,omitempty" jsonschema:"Base64-encoded file content (alternative to path)"`
}

// AddEvidence ingests one batch of files: they are registered,
// analyzed in a single pass, and the extracted fragment is merged into
// the case graph. A failed analysis marks every file of the batch as
// errored and commits nothing.
func (t *EvidenceTools) AddEvidence(ctx context.Context, _ *mcp.CallToolRequest, input AddEvidenceInput) (*mcp.CallToolResult, any, error) {
	if len(input.Files) == 0 {
		return toolError("At least one file is required"), nil, nil
	}

	uploads := make([]ingest.Upload, 0, len(input.Files))
	for _, f := range input.Files {
		switch {
		case f.Path != "":
			data, err := os.ReadFile(f.Path)
			if err != nil {
				return toolError("Failed to read %q: %v", f.Path, err), nil, nil
			}
			uploads = append(uploads, ingest.Upload{Name: filepath.Base(f.Path), Data: data})
		case f.Name != "" && f.Data != "":
			data, err := base64.StdEncoding.DecodeString(f.Data)
			if err != nil {
				return toolError("Invalid base64 data for %q: %v", f.Name, err), nil, nil
			}
			uploads = append(uploads, ingest.Upload{Name: f.Name, Data: data})
		default:
			return toolError("Each file needs either a path or a name plus data"), nil, nil
		}
	}

	files, err := t.Session.AddEvidence(ctx, uploads)
	if err != nil {
		// The registry already carries the error status on each file.
		return toolError("Failed to process evidence: %v", err), nil, nil
	}
	return toolJSON(files)
}

func (t *EvidenceTools) ListEvidence(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.Session.Registry().List())
}
