package chat

import (
	"context"
	"testing"

	"github.com/solaris-forensic/casegraph/internal/graph"
	"github.com/solaris-forensic/casegraph/internal/logger"
	"github.com/solaris-forensic/casegraph/internal/models"
)

const suggestionJSON = "```json\n" + `[
  {"label": "Luna Holdings", "type": "ENTITY", "reason": "Named in the wire transfer"},
  {"label": "Dock Meeting", "type": "EVENT", "reason": "Mentioned in the interview"},
  {"label": "Burner Phone", "type": "ENTITY", "reason": "Seen in surveillance"},
  {"label": "Alibi Conflict", "type": "CONFLICT", "reason": "Statements disagree on location"}
]` + "\n```"

func suggestSession(t *testing.T, agentReply string) (*Session, *graph.Store) {
	t.Helper()
	agent := &fakeAgent{replies: []*Reply{{Text: agentReply}}}
	store := graph.New()
	return NewSession(agent, store, logger.Nop()), store
}

func TestRequestSuggestionsAllSelected(t *testing.T) {
	s, _ := suggestSession(t, suggestionJSON)

	got, err := s.RequestSuggestions(context.Background())
	if err != nil {
		t.Fatalf("RequestSuggestions: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Expected 4 suggestions, got %d", len(got))
	}
	if got[0].Label != "Luna Holdings" || got[0].Reason != "Named in the wire transfer" {
		t.Errorf("suggestions[0] = %+v", got[0])
	}
	if sel := s.Selected(); len(sel) != 4 {
		t.Errorf("All suggestions start selected, got %v", sel)
	}
}

func TestConfirmOnlySelected(t *testing.T) {
	s, store := suggestSession(t, suggestionJSON)
	if _, err := s.RequestSuggestions(context.Background()); err != nil {
		t.Fatalf("RequestSuggestions: %v", err)
	}
	if err := s.ToggleSuggestion(1); err != nil {
		t.Fatalf("ToggleSuggestion: %v", err)
	}

	created, err := s.ConfirmSuggestions()
	if err != nil {
		t.Fatalf("ConfirmSuggestions: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Expected 3 created nodes, got %d", len(created))
	}
	if nodes, _ := store.Counts(); nodes != 3 {
		t.Errorf("Store holds %d nodes, want 3", nodes)
	}
	for _, n := range created {
		if n.Label == "Dock Meeting" {
			t.Error("Deselected suggestion must not be created")
		}
		if n.Property(models.PropSource) != models.SourceSmartCreate {
			t.Errorf("Source = %q", n.Property(models.PropSource))
		}
		if n.Property(models.PropCustomColor) != models.ColorSuggestion {
			t.Errorf("CustomColor = %q", n.Property(models.PropCustomColor))
		}
	}

	msgs := s.Messages()
	if msgs[len(msgs)-1].Text != "Added 3 new nodes to the graph (Yellow). You can now manually connect them." {
		t.Errorf("Summary message = %q", msgs[len(msgs)-1].Text)
	}

	if _, err := s.ConfirmSuggestions(); err != ErrNoBatch {
		t.Errorf("Batch must be dropped after confirm, got %v", err)
	}
}

func TestToggleTwiceReselects(t *testing.T) {
	s, _ := suggestSession(t, suggestionJSON)
	s.RequestSuggestions(context.Background())

	s.ToggleSuggestion(2)
	s.ToggleSuggestion(2)

	if sel := s.Selected(); len(sel) != 4 {
		t.Errorf("Double toggle should restore selection, got %v", sel)
	}
}

func TestRequestSuggestionsMalformed(t *testing.T) {
	s, store := suggestSession(t, "Sure! Here are some ideas: Luna Holdings and a dock meeting.")

	if _, err := s.RequestSuggestions(context.Background()); err == nil {
		t.Fatal("Malformed response must be an error")
	}

	msgs := s.Messages()
	if msgs[len(msgs)-1].Text != "I couldn't generate a structured list. Please try again." {
		t.Errorf("Expected user-visible parse notice, got %q", msgs[len(msgs)-1].Text)
	}
	if nodes, _ := store.Counts(); nodes != 0 {
		t.Errorf("Nothing may be created from a discarded batch, got %d nodes", nodes)
	}
	if _, err := s.ConfirmSuggestions(); err != ErrNoBatch {
		t.Errorf("No batch may survive a parse failure, got %v", err)
	}
}

func TestCancelSuggestions(t *testing.T) {
	s, store := suggestSession(t, suggestionJSON)
	s.RequestSuggestions(context.Background())

	s.CancelSuggestions()

	if nodes, _ := store.Counts(); nodes != 0 {
		t.Errorf("Cancel must not create nodes, got %d", nodes)
	}
	if err := s.ToggleSuggestion(0); err != ErrNoBatch {
		t.Errorf("Expected ErrNoBatch after cancel, got %v", err)
	}
}

func TestSuggestionInvalidTypeFallsBack(t *testing.T) {
	s, store := suggestSession(t, `[{"label": "Oddity", "type": "PLANET", "reason": "test"}]`)
	if _, err := s.RequestSuggestions(context.Background()); err != nil {
		t.Fatalf("RequestSuggestions: %v", err)
	}
	created, err := s.ConfirmSuggestions()
	if err != nil {
		t.Fatalf("ConfirmSuggestions: %v", err)
	}
	if created[0].Type != models.NodeEntity {
		t.Errorf("Unknown type should fall back to ENTITY, got %q", created[0].Type)
	}
	if nodes, _ := store.Counts(); nodes != 1 {
		t.Errorf("Expected 1 node, got %d", nodes)
	}
}
