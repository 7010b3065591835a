package gemini

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/solaris-forensic/casegraph/internal/analyzer"
	"github.com/solaris-forensic/casegraph/internal/chat"
	"github.com/solaris-forensic/casegraph/internal/models"
)

// ChatSession is a conversational agent session seeded with all
// evidence content. It satisfies chat.Agent. History lives on the
// client side and grows with every turn; the session never mutates any
// engine store.
type ChatSession struct {
	client  *Client
	history []content

	// Gemini function calls carry no wire id, so proposals get local
	// ids and we remember which declaration they referred to.
	callNames map[string]string
}

// NewChat opens an agent session, seeding it with the evidence files
// and the forensic assistant instruction set.
func (c *Client) NewChat(contents []analyzer.Content) *ChatSession {
	seed := append(evidenceParts(contents),
		part{Text: "Here is the collected evidence for this case. Please study it carefully."})
	return &ChatSession{
		client: c,
		history: []content{
			{Role: "user", Parts: seed},
			{Role: "model", Parts: []part{{Text: "I have analyzed the evidence files. I am ready to answer your questions with specific citations."}}},
		},
		callNames: make(map[string]string),
	}
}

// SendText sends a free-text user turn and returns the agent's reply,
// including any create_node proposals.
func (s *ChatSession) SendText(ctx context.Context, text string) (*chat.Reply, error) {
	return s.turn(ctx, content{Role: "user", Parts: []part{{Text: text}}})
}

// SendToolResult reports the user's decision on an earlier proposal as
// a structured function-result turn.
func (s *ChatSession) SendToolResult(ctx context.Context, callID, name, result string) (*chat.Reply, error) {
	if stored, ok := s.callNames[callID]; ok {
		name = stored
		delete(s.callNames, callID)
	}
	return s.turn(ctx, content{Role: "user", Parts: []part{{
		FunctionResponse: &functionResponse{
			Name:     name,
			Response: map[string]any{"result": result},
		},
	}}})
}

func (s *ChatSession) turn(ctx context.Context, userTurn content) (*chat.Reply, error) {
	req := genRequest{
		Contents:          append(append([]content{}, s.history...), userTurn),
		SystemInstruction: &content{Parts: []part{{Text: analyzer.AssistantInstruction}}},
		Tools:             []toolDecl{{FunctionDeclarations: []functionDeclaration{createNodeDeclaration}}},
	}
	replyContent, err := s.client.generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("agent turn: %w", err)
	}

	// Commit the exchange to history only after a successful round-trip
	// so a retried turn does not duplicate the user message.
	s.history = append(s.history, userTurn, *replyContent)

	reply := &chat.Reply{Text: textOf(replyContent)}
	for _, p := range replyContent.Parts {
		if p.FunctionCall == nil {
			continue
		}
		callID := uuid.New().String()
		s.callNames[callID] = p.FunctionCall.Name
		reply.ToolCalls = append(reply.ToolCalls, models.ToolCall{
			ID:   callID,
			Name: p.FunctionCall.Name,
			Args: toolArgs(p.FunctionCall.Args),
		})
	}
	return reply, nil
}

func toolArgs(args map[string]any) models.ToolCallArgs {
	str := func(key string) string {
		if s, ok := args[key].(string); ok {
			return s
		}
		return ""
	}
	return models.ToolCallArgs{
		Label:       str("label"),
		Type:        str("type"),
		Description: str("description"),
		Timestamp:   str("timestamp"),
	}
}
