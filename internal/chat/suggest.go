package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/solaris-forensic/casegraph/internal/analyzer"
	"github.com/solaris-forensic/casegraph/internal/models"
)

// ErrNoBatch is returned when no suggestion batch is under review.
var ErrNoBatch = errors.New("no suggestion batch under review")

// suggestionBatch holds candidate nodes plus the user's selection until
// confirmed or cancelled. Nothing here touches the graph.
type suggestionBatch struct {
	suggestions []models.NodeSuggestion
	selected    map[int]bool
}

// RequestSuggestions asks the agent for a small batch of candidate
// nodes as pure data. On success all suggestions start selected. A
// response that does not parse as a strict list is discarded whole: a
// user-visible message is appended and no partial suggestions survive.
func (s *Session) RequestSuggestions(ctx context.Context) ([]models.NodeSuggestion, error) {
	s.batch = nil

	reply, err := s.agent.SendText(ctx, analyzer.SuggestionPrompt)
	if err != nil {
		return nil, fmt.Errorf("request suggestions: %w", err)
	}

	text := analyzer.StripFences(reply.Text)
	var suggestions []models.NodeSuggestion
	if err := json.Unmarshal([]byte(text), &suggestions); err != nil {
		s.AppendNotice("I couldn't generate a structured list. Please try again.")
		return nil, fmt.Errorf("parse suggestions: %w", err)
	}

	selected := make(map[int]bool, len(suggestions))
	for i := range suggestions {
		selected[i] = true
	}
	s.batch = &suggestionBatch{suggestions: suggestions, selected: selected}
	return suggestions, nil
}

// ToggleSuggestion flips the selection state of one suggestion.
func (s *Session) ToggleSuggestion(index int) error {
	if s.batch == nil {
		return ErrNoBatch
	}
	if index < 0 || index >= len(s.batch.suggestions) {
		return fmt.Errorf("suggestion index %d out of range", index)
	}
	s.batch.selected[index] = !s.batch.selected[index]
	return nil
}

// Selected returns the indices currently selected, in batch order.
func (s *Session) Selected() []int {
	if s.batch == nil {
		return nil
	}
	var out []int
	for i := range s.batch.suggestions {
		if s.batch.selected[i] {
			out = append(out, i)
		}
	}
	return out
}

// ConfirmSuggestions commits every selected suggestion as a graph node
// tagged with the smart-create provenance and highlight color, appends
// one summary message, and drops the batch. Unselected suggestions are
// discarded entirely.
func (s *Session) ConfirmSuggestions() ([]models.GraphNode, error) {
	if s.batch == nil {
		return nil, ErrNoBatch
	}

	var created []models.GraphNode
	for i, sug := range s.batch.suggestions {
		if !s.batch.selected[i] {
			continue
		}
		nodeType := models.NodeType(sug.Type)
		if !nodeType.Valid() {
			nodeType = models.NodeEntity
		}
		node := models.GraphNode{
			ID:    fmt.Sprintf("smart-%d-%d", time.Now().UnixNano(), i),
			Label: sug.Label,
			Type:  nodeType,
			Properties: map[string]any{
				models.PropDescription: sug.Reason,
				models.PropSource:      models.SourceSmartCreate,
				models.PropCustomColor: models.ColorSuggestion,
				models.PropCreatedAt:   now(),
			},
		}
		if err := s.store.CreateNode(node); err != nil {
			return created, fmt.Errorf("commit suggestion %q: %w", sug.Label, err)
		}
		created = append(created, node)
	}

	s.AppendNotice(fmt.Sprintf("Added %d new nodes to the graph (Yellow). You can now manually connect them.", len(created)))
	s.batch = nil
	return created, nil
}

// CancelSuggestions discards the batch with no graph mutation.
func (s *Session) CancelSuggestions() {
	s.batch = nil
}
