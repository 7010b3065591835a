package chat

import (
	"context"

	"github.com/solaris-forensic/casegraph/internal/models"
)

// ToolCreateNode is the single capability the agent may propose.
const ToolCreateNode = "create_node"

// Reply is one agent turn: optional free text plus zero or more
// create_node proposals. Proposals are advisory; the session turns them
// into pending messages and nothing else happens until the user acts.
type Reply struct {
	Text      string
	ToolCalls []models.ToolCall
}

// Agent is the conversational collaborator, a stateful session seeded
// with all evidence content. It never mutates any store itself.
type Agent interface {
	// SendText sends a free-text user turn.
	SendText(ctx context.Context, text string) (*Reply, error)
	// SendToolResult sends a structured function-result turn for an
	// earlier proposal, so the agent can continue reasoning with
	// knowledge of the user's decision.
	SendToolResult(ctx context.Context, callID, name, result string) (*Reply, error)
}
