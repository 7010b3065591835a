// Package chat implements the assistant transcript and the two
// pathways by which agent output becomes graph mutations: the
// approval-gated tool-call protocol and the smart-create suggestion
// batch. Both terminate in the same graph store CRUD contract.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/solaris-forensic/casegraph/internal/graph"
	"github.com/solaris-forensic/casegraph/internal/logger"
	"github.com/solaris-forensic/casegraph/internal/models"
)

var (
	// ErrMessageNotFound is returned when a message id is unknown.
	ErrMessageNotFound = errors.New("message not found")
	// ErrNotPending is returned when approving or rejecting a message
	// that carries no proposal or was already resolved. Tool-carrying
	// messages transition out of pending exactly once.
	ErrNotPending = errors.New("message has no pending proposal")
)

// Session is one assistant conversation over a case. The transcript is
// append-only and session-scoped.
type Session struct {
	agent Agent
	store *graph.Store
	log   *logger.Logger

	messages []models.ChatMessage

	// Active smart-create batch, nil when none is under review.
	batch *suggestionBatch
}

// NewSession returns a session bound to an agent and the case graph.
func NewSession(agent Agent, store *graph.Store, log *logger.Logger) *Session {
	s := &Session{agent: agent, store: store, log: log}
	s.append(models.ChatMessage{
		ID:        "init",
		Role:      models.RoleModel,
		Text:      "Forensic Assistant Online. I have analyzed the evidence files. Ask me about contradictions, timelines, or entities.",
		Timestamp: now(),
	})
	return s
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []models.ChatMessage {
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send records a user turn, forwards it to the agent and appends the
// reply. Each create_node proposal in the reply becomes its own
// pending tool-call message; the proposal itself mutates nothing.
func (s *Session) Send(ctx context.Context, text string) ([]models.ChatMessage, error) {
	s.append(models.ChatMessage{
		ID:        newMessageID("user"),
		Role:      models.RoleUser,
		Text:      text,
		Timestamp: now(),
	})

	reply, err := s.agent.SendText(ctx, text)
	if err != nil {
		s.append(models.ChatMessage{
			ID:        newMessageID("err"),
			Role:      models.RoleModel,
			Text:      "Error communicating with AI service.",
			Timestamp: now(),
		})
		return s.Messages(), fmt.Errorf("agent turn: %w", err)
	}

	if reply.Text != "" {
		s.append(models.ChatMessage{
			ID:        newMessageID("bot"),
			Role:      models.RoleModel,
			Text:      reply.Text,
			Timestamp: now(),
		})
	}
	for _, call := range reply.ToolCalls {
		if call.Name != ToolCreateNode {
			continue
		}
		call := call
		s.append(models.ChatMessage{
			ID:         newMessageID("tool"),
			Role:       models.RoleModel,
			Text:       "I suggest adding this to the graph:",
			Timestamp:  now(),
			ToolCall:   &call,
			ToolStatus: models.ToolPending,
		})
	}
	return s.Messages(), nil
}

// Approve commits a pending proposal: the node is created, the message
// transitions to success, and the agent is told the outcome. The
// mutation happens-before the agent notification; a failed round-trip
// after the committed transition is logged and dropped, never rolled
// back.
func (s *Session) Approve(ctx context.Context, messageID string) (models.GraphNode, error) {
	msg, err := s.takePending(messageID)
	if err != nil {
		return models.GraphNode{}, err
	}

	args := msg.ToolCall.Args
	nodeType := models.NodeType(args.Type)
	if !nodeType.Valid() {
		nodeType = models.NodeEntity
	}
	node := models.GraphNode{
		ID:    newNodeID("ai"),
		Label: args.Label,
		Type:  nodeType,
		Properties: map[string]any{
			models.PropSource:      models.SourceChatApproved,
			models.PropCustomColor: models.ColorSelected,
		},
	}
	if args.Description != "" {
		node.Properties[models.PropDescription] = args.Description
	}
	if args.Timestamp != "" {
		node.Properties[models.PropTimestamp] = args.Timestamp
	}

	if err := s.store.CreateNode(node); err != nil {
		// Id collision on a fresh id should not happen; surface it and
		// leave the message pending so the user can retry.
		s.restorePending(messageID)
		return models.GraphNode{}, fmt.Errorf("commit approved node: %w", err)
	}
	s.setStatus(messageID, models.ToolSuccess)

	s.notifyAgent(ctx, msg.ToolCall, "User approved. Node created successfully.")
	return node, nil
}

// Reject resolves a pending proposal without touching the graph and
// tells the agent.
func (s *Session) Reject(ctx context.Context, messageID string) error {
	msg, err := s.takePending(messageID)
	if err != nil {
		return err
	}
	s.setStatus(messageID, models.ToolRejected)
	s.notifyAgent(ctx, msg.ToolCall, "User rejected the proposal.")
	return nil
}

// notifyAgent sends the function result and appends any follow-up
// reply. Errors are terminal for the follow-up only: the local
// approve/reject already committed.
func (s *Session) notifyAgent(ctx context.Context, call *models.ToolCall, result string) {
	reply, err := s.agent.SendToolResult(ctx, call.ID, call.Name, result)
	if err != nil {
		s.log.Warn("agent follow-up dropped", "tool_call_id", call.ID, "error", err)
		return
	}
	if reply != nil && reply.Text != "" {
		s.append(models.ChatMessage{
			ID:        newMessageID("followup"),
			Role:      models.RoleModel,
			Text:      reply.Text,
			Timestamp: now(),
		})
	}
}

// takePending locates a tool-carrying message still in pending state.
func (s *Session) takePending(messageID string) (models.ChatMessage, error) {
	for _, m := range s.messages {
		if m.ID != messageID {
			continue
		}
		if m.ToolCall == nil || m.ToolStatus != models.ToolPending {
			return models.ChatMessage{}, fmt.Errorf("message %q: %w", messageID, ErrNotPending)
		}
		return m, nil
	}
	return models.ChatMessage{}, fmt.Errorf("message %q: %w", messageID, ErrMessageNotFound)
}

func (s *Session) setStatus(messageID string, status models.ToolStatus) {
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			s.messages[i].ToolStatus = status
			return
		}
	}
}

func (s *Session) restorePending(messageID string) {
	s.setStatus(messageID, models.ToolPending)
}

// AppendNotice adds a model-authored informational message.
func (s *Session) AppendNotice(text string) {
	s.append(models.ChatMessage{
		ID:        newMessageID("notice"),
		Role:      models.RoleModel,
		Text:      text,
		Timestamp: now(),
	})
}

func (s *Session) append(m models.ChatMessage) {
	s.messages = append(s.messages, m)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// newMessageID builds a transcript id. Prefixes keep the lineage of a
// message readable in dumps.
func newMessageID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.New().String()[:8])
}

// newNodeID builds a graph node id: high-resolution timestamp plus
// random suffix, prefixed by provenance lineage.
func newNodeID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), uuid.New().String()[:5])
}
