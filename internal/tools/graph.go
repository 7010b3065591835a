package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/solaris-forensic/casegraph/internal/assoc"
	"github.com/solaris-forensic/casegraph/internal/models"
	"github.com/solaris-forensic/casegraph/internal/session"
)

// GraphTools holds references needed by the graph tool handlers.
type GraphTools struct {
	Session *session.Session
}

// --- Input types ---

type CreateNodeInput struct {
	Label      string            `json:"label,omitempty" jsonschema:"Node label (defaults to 'New Node')"`
	Type       string            `json:"type,omitempty" jsonschema:"ENTITY, EVENT, CONFLICT or DISCREPANCY (defaults to ENTITY)"`
	Properties map[string]string `json:"properties,omitempty" jsonschema:"Additional node properties"`
}

type UpdateNodeInput struct {
	ID         string            `json:"id" jsonschema:"Id of the node to replace"`
	Label      string            `json:"label" jsonschema:"New label"`
	Type       string            `json:"type" jsonschema:"New type"`
	Properties map[string]string `json:"properties,omitempty" jsonschema:"Full replacement property set"`
}

type DeleteNodeInput struct {
	ID string `json:"id" jsonschema:"Id of the node to delete (links touching it are removed)"`
}

type AddLinkInput struct {
	Source string `json:"source" jsonschema:"Source node id"`
	Target string `json:"target" jsonschema:"Target node id"`
	Label  string `json:"label" jsonschema:"Link predicate, e.g. OWNS"`
}

type RemoveLinkInput struct {
	ID string `json:"id" jsonschema:"Id of the link to remove"`
}

type NodeEvidenceInput struct {
	ID string `json:"id" jsonschema:"Node id to resolve evidence associations for"`
}

type AttachEvidenceInput struct {
	NodeID string `json:"node_id" jsonschema:"Node id"`
	FileID string `json:"file_id" jsonschema:"Evidence file id"`
}

// --- Handlers ---

func (t *GraphTools) ReadGraph(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.Session.Store().Snapshot())
}

func (t *GraphTools) CreateNode(_ context.Context, _ *mcp.CallToolRequest, input CreateNodeInput) (*mcp.CallToolResult, any, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" {
		label = "New Node"
	}
	nodeType := models.NodeType(input.Type)
	if input.Type == "" {
		nodeType = models.NodeEntity
	} else if !nodeType.Valid() {
		return toolError("Unknown node type %q", input.Type), nil, nil
	}

	props := map[string]any{
		models.PropCreatedAt: time.Now().UTC().Format(time.RFC3339),
		models.PropNote:      "Manually created",
	}
	for k, v := range input.Properties {
		if strings.TrimSpace(k) == "" {
			continue
		}
		props[k] = v
	}

	node := models.GraphNode{
		ID:         fmt.Sprintf("manual-%d-%s", time.Now().UnixNano(), uuid.New().String()[:5]),
		Label:      label,
		Type:       nodeType,
		Properties: props,
	}
	if err := t.Session.Store().CreateNode(node); err != nil {
		return toolError("Failed to create node: %v", err), nil, nil
	}
	return toolJSON(node)
}

// UpdateNode replaces a node wholesale. Empty property keys are
// dropped at this boundary; they never reach the store.
func (t *GraphTools) UpdateNode(_ context.Context, _ *mcp.CallToolRequest, input UpdateNodeInput) (*mcp.CallToolResult, any, error) {
	if input.ID == "" {
		return toolError("Node id is required"), nil, nil
	}
	existing, ok := t.Session.Store().Node(input.ID)
	if !ok {
		return toolError("Node %q not found", input.ID), nil, nil
	}

	nodeType := models.NodeType(input.Type)
	if !nodeType.Valid() {
		return toolError("Unknown node type %q", input.Type), nil, nil
	}

	props := make(map[string]any, len(input.Properties))
	for k, v := range input.Properties {
		if strings.TrimSpace(k) == "" {
			continue
		}
		props[k] = v
	}
	// The attachment list is managed by attach/detach, not by the
	// property editor; carry it over.
	if attached := existing.AttachedFiles(); len(attached) > 0 {
		props[models.PropAttachedFiles] = attached
	}
	if src := existing.Property(models.PropSourceFile); src != "" {
		if _, set := props[models.PropSourceFile]; !set {
			props[models.PropSourceFile] = src
		}
	}

	node := models.GraphNode{
		ID:         input.ID,
		Label:      input.Label,
		Type:       nodeType,
		Position:   existing.Position,
		Properties: props,
	}
	t.Session.Store().UpdateNode(node)
	return toolJSON(node)
}

func (t *GraphTools) DeleteNode(_ context.Context, _ *mcp.CallToolRequest, input DeleteNodeInput) (*mcp.CallToolResult, any, error) {
	if input.ID == "" {
		return toolError("Node id is required"), nil, nil
	}
	t.Session.Store().DeleteNode(input.ID)
	return toolText(fmt.Sprintf("Node %q deleted with its links.", input.ID)), nil, nil
}

func (t *GraphTools) AddLink(_ context.Context, _ *mcp.CallToolRequest, input AddLinkInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(input.Label) == "" || strings.TrimSpace(input.Target) == "" || strings.TrimSpace(input.Source) == "" {
		return toolError("Source, target and label are required"), nil, nil
	}
	link, err := t.Session.Store().AddLink(input.Source, input.Target, input.Label)
	if err != nil {
		return toolError("Failed to add link: %v", err), nil, nil
	}
	return toolJSON(link)
}

func (t *GraphTools) RemoveLink(_ context.Context, _ *mcp.CallToolRequest, input RemoveLinkInput) (*mcp.CallToolResult, any, error) {
	if err := t.Session.Store().RemoveLink(input.ID); err != nil {
		return toolError("Failed to remove link: %v", err), nil, nil
	}
	return toolText("Link removed."), nil, nil
}

func (t *GraphTools) Timeline(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.Session.Store().Timeline())
}

// NodeEvidence resolves which evidence files a node is associated
// with: its explicit attachments plus at most one provenance match.
func (t *GraphTools) NodeEvidence(_ context.Context, _ *mcp.CallToolRequest, input NodeEvidenceInput) (*mcp.CallToolResult, any, error) {
	node, ok := t.Session.Store().Node(input.ID)
	if !ok {
		return toolError("Node %q not found", input.ID), nil, nil
	}
	ids := t.Session.Resolver().Resolve(&node)
	files := make([]models.EvidenceFile, 0, len(ids))
	for id := range ids {
		if f, ok := t.Session.Registry().Get(id); ok {
			files = append(files, f)
		}
	}
	return toolJSON(files)
}

func (t *GraphTools) AttachEvidence(_ context.Context, _ *mcp.CallToolRequest, input AttachEvidenceInput) (*mcp.CallToolResult, any, error) {
	node, ok := t.Session.Store().Node(input.NodeID)
	if !ok {
		return toolError("Node %q not found", input.NodeID), nil, nil
	}
	if _, ok := t.Session.Registry().Get(input.FileID); !ok {
		return toolError("Evidence file %q not found", input.FileID), nil, nil
	}
	assoc.Attach(&node, input.FileID)
	t.Session.Store().UpdateNode(node)
	return toolJSON(node)
}

func (t *GraphTools) DetachEvidence(_ context.Context, _ *mcp.CallToolRequest, input AttachEvidenceInput) (*mcp.CallToolResult, any, error) {
	node, ok := t.Session.Store().Node(input.NodeID)
	if !ok {
		return toolError("Node %q not found", input.NodeID), nil, nil
	}
	file, ok := t.Session.Registry().Get(input.FileID)
	if !ok {
		return toolError("Evidence file %q not found", input.FileID), nil, nil
	}
	assoc.Detach(&node, file)
	t.Session.Store().UpdateNode(node)
	return toolJSON(node)
}
