package models

// MediaKind classifies an uploaded evidence file.
type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaImage MediaKind = "image"
	MediaPDF   MediaKind = "pdf"
	MediaVideo MediaKind = "video"
)

// FileStatus tracks an evidence file through its processing lifecycle.
// Transitions: idle → processing → processed | error. Processed and
// error are terminal barring a re-upload.
type FileStatus string

const (
	FileIdle       FileStatus = "idle"
	FileProcessing FileStatus = "processing"
	FileProcessed  FileStatus = "processed"
	FileError      FileStatus = "error"
)

// EvidenceFile is an uploaded file tracked by the evidence registry.
// Graph nodes reference files through provenance text or attachment
// lists; they never own them.
type EvidenceFile struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Kind   MediaKind  `json:"kind"`
	Status FileStatus `json:"status"`
	Color  string     `json:"color"`
}

// NodeType is the category of a graph node.
type NodeType string

const (
	NodeEntity      NodeType = "ENTITY"
	NodeEvent       NodeType = "EVENT"
	NodeConflict    NodeType = "CONFLICT"
	NodeDiscrepancy NodeType = "DISCREPANCY"
)

// Valid reports whether t is one of the recognized node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeEntity, NodeEvent, NodeConflict, NodeDiscrepancy:
		return true
	}
	return false
}

// Recognized property keys on graph nodes. Properties is an open
// mapping; these are the keys the engine itself reads or writes.
const (
	PropDescription   = "description"
	PropTimestamp     = "timestamp"
	PropSourceFile    = "source_file"
	PropAttachedFiles = "attached_files"
	PropCustomColor   = "custom_color"
	PropConfidence    = "confidence"
	PropSource        = "source"
	PropCreatedAt     = "created_at"
	PropNote          = "note"
)

// Provenance markers stored under the "source" property. Three lineages
// feed the graph store: approved assistant tool-calls, confirmed smart
// suggestions, and manual creation (which carries a note instead).
const (
	SourceChatApproved = "AI_CHAT_APPROVED"
	SourceSmartCreate  = "SMART_CREATE"
)

// Position is a layout coordinate. The store only seeds it; the
// renderer's physics simulation owns it afterwards.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GraphNode is a node in the case knowledge graph.
type GraphNode struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Type       NodeType       `json:"type"`
	Position   *Position      `json:"position,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Property returns the string form of a node property, or "" when the
// property is absent or not a string.
func (n *GraphNode) Property(key string) string {
	if n.Properties == nil {
		return ""
	}
	if s, ok := n.Properties[key].(string); ok {
		return s
	}
	return ""
}

// AttachedFiles returns the node's explicit attachment list, tolerating
// the []any shape JSON decoding produces.
func (n *GraphNode) AttachedFiles() []string {
	if n.Properties == nil {
		return nil
	}
	switch v := n.Properties[PropAttachedFiles].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// GraphLink is a directed, labeled edge between two nodes. Endpoints
// are always node ids; the rendering layer resolves id→node at its own
// boundary and never writes the resolved form back. ID is assigned by
// the graph store when the link is accepted and identifies exactly one
// link instance for removal. Fragments carry no link ids.
type GraphLink struct {
	ID         string         `json:"id,omitempty"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// GraphFragment is a graph-shaped analysis result prior to merging.
type GraphFragment struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ToolStatus is the approval state of a tool-carrying chat message.
// Every tool-carrying message is born pending and transitions exactly
// once to success or rejected.
type ToolStatus string

const (
	ToolPending  ToolStatus = "pending"
	ToolSuccess  ToolStatus = "success"
	ToolRejected ToolStatus = "rejected"
)

// ToolCall is the agent's proposal to create a graph node. It is
// advisory; nothing mutates the graph until the user approves.
type ToolCall struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Args ToolCallArgs `json:"args"`
}

// ToolCallArgs carries the proposed node.
type ToolCallArgs struct {
	Label       string `json:"label"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// ChatMessage is one entry in the append-only session transcript.
type ChatMessage struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Text       string     `json:"text"`
	Timestamp  string     `json:"timestamp"`
	ToolCall   *ToolCall  `json:"tool_call,omitempty"`
	ToolStatus ToolStatus `json:"tool_status,omitempty"`
}

// NodeSuggestion is one candidate from a smart-create batch. It is
// ephemeral: nothing reaches the graph until the user confirms.
type NodeSuggestion struct {
	Label  string `json:"label"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// User is a locally signed-in investigator identity.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
