package tools

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/solaris-forensic/casegraph/internal/chat"
	"github.com/solaris-forensic/casegraph/internal/session"
)

// AssistantTools holds references needed by the assistant tool
// handlers. Every graph mutation behind these tools is gated on an
// explicit user decision; the agent's proposals alone change nothing.
type AssistantTools struct {
	Session *session.Session
}

type AskInput struct {
	Text string `json:"text" jsonschema:"Question or instruction for the forensic assistant"`
}

type ReviewProposalInput struct {
	MessageID string `json:"message_id" jsonschema:"Id of the pending tool-call message"`
	Action    string `json:"action" jsonschema:"approve or reject"`
}

type ToggleSuggestionInput struct {
	Index int `json:"index" jsonschema:"Index of the suggestion to toggle"`
}

func (t *AssistantTools) requireChat() (*chat.Session, *mcp.CallToolResult) {
	c, err := t.Session.RequireChat()
	if err != nil {
		return nil, toolError("%v", err)
	}
	return c, nil
}

// Ask sends a user turn. Any create_node proposal in the reply becomes
// a pending message awaiting review_proposal.
func (t *AssistantTools) Ask(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, any, error) {
	c, errResult := t.requireChat()
	if errResult != nil {
		return errResult, nil, nil
	}
	t.Session.Lock()
	defer t.Session.Unlock()

	messages, err := c.Send(ctx, input.Text)
	if err != nil {
		// The transcript already carries the user-visible failure note.
		return toolError("Assistant error: %v", err), nil, nil
	}
	return toolJSON(messages)
}

func (t *AssistantTools) ListMessages(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	c, errResult := t.requireChat()
	if errResult != nil {
		return errResult, nil, nil
	}
	t.Session.Lock()
	defer t.Session.Unlock()
	return toolJSON(c.Messages())
}

// ReviewProposal resolves one pending proposal. Approval commits the
// node before the agent hears about it; rejection commits nothing.
// Either way the decision is final even if the agent round-trip fails.
func (t *AssistantTools) ReviewProposal(ctx context.Context, _ *mcp.CallToolRequest, input ReviewProposalInput) (*mcp.CallToolResult, any, error) {
	c, errResult := t.requireChat()
	if errResult != nil {
		return errResult, nil, nil
	}
	t.Session.Lock()
	defer t.Session.Unlock()

	switch input.Action {
	case "approve":
		node, err := c.Approve(ctx, input.MessageID)
		if err != nil {
			if errors.Is(err, chat.ErrNotPending) || errors.Is(err, chat.ErrMessageNotFound) {
				return toolError("%v", err), nil, nil
			}
			return toolError("Failed to approve proposal: %v", err), nil, nil
		}
		return toolJSON(node)
	case "reject":
		if err := c.Reject(ctx, input.MessageID); err != nil {
			return toolError("%v", err), nil, nil
		}
		return toolText("Proposal rejected."), nil, nil
	default:
		return toolError("Action must be approve or reject"), nil, nil
	}
}

// SuggestNodes runs a smart-create pass: the agent returns a small
// batch of candidate nodes as data, all pre-selected for review.
func (t *AssistantTools) SuggestNodes(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	c, errResult := t.requireChat()
	if errResult != nil {
		return errResult, nil, nil
	}
	t.Session.Lock()
	defer t.Session.Unlock()

	suggestions, err := c.RequestSuggestions(ctx)
	if err != nil {
		return toolError("Failed to get suggestions: %v", err), nil, nil
	}
	return toolJSON(suggestions)
}

func (t *AssistantTools) ToggleSuggestion(_ context.Context, _ *mcp.CallToolRequest, input ToggleSuggestionInput) (*mcp.CallToolResult, any, error) {
	c, errResult := t.requireChat()
	if errResult != nil {
		return errResult, nil, nil
	}
	t.Session.Lock()
	defer t.Session.Unlock()

	if err := c.ToggleSuggestion(input.Index); err != nil {
		return toolError("%v", err), nil, nil
	}
	return toolJSON(c.Selected())
}

// ConfirmSuggestions commits the selected subset as one transaction;
// everything unselected is discarded.
func (t *AssistantTools) ConfirmSuggestions(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	c, errResult := t.requireChat()
	if errResult != nil {
		return errResult, nil, nil
	}
	t.Session.Lock()
	defer t.Session.Unlock()

	created, err := c.ConfirmSuggestions()
	if err != nil {
		return toolError("Failed to confirm suggestions: %v", err), nil, nil
	}
	return toolJSON(created)
}

func (t *AssistantTools) CancelSuggestions(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	c, errResult := t.requireChat()
	if errResult != nil {
		return errResult, nil, nil
	}
	t.Session.Lock()
	defer t.Session.Unlock()

	c.CancelSuggestions()
	return toolText("Suggestion batch discarded."), nil, nil
}
