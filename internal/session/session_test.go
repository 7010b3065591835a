package session

import (
	"context"
	"errors"
	"testing"

	"github.com/solaris-forensic/casegraph/internal/analyzer"
	"github.com/solaris-forensic/casegraph/internal/chat"
	"github.com/solaris-forensic/casegraph/internal/ingest"
	"github.com/solaris-forensic/casegraph/internal/logger"
	"github.com/solaris-forensic/casegraph/internal/models"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(_ context.Context, _ []analyzer.Content) (*models.GraphFragment, error) {
	return &models.GraphFragment{}, nil
}

type stubAgent struct{}

func (stubAgent) SendText(_ context.Context, _ string) (*chat.Reply, error) {
	return &chat.Reply{Text: "ok"}, nil
}

func (stubAgent) SendToolResult(_ context.Context, _, _, _ string) (*chat.Reply, error) {
	return &chat.Reply{}, nil
}

// stubFactory records how much evidence each opened agent was seeded
// with.
type stubFactory struct {
	seededWith []int
}

func (f *stubFactory) NewAgent(contents []analyzer.Content) chat.Agent {
	f.seededWith = append(f.seededWith, len(contents))
	return stubAgent{}
}

func TestAddEvidenceWithoutAnalyzer(t *testing.T) {
	s := New(nil, nil, nil, logger.Nop())
	_, err := s.AddEvidence(context.Background(), []ingest.Upload{{Name: "a.pdf"}})
	if !errors.Is(err, ErrNoAnalyzer) {
		t.Fatalf("Expected ErrNoAnalyzer, got %v", err)
	}
}

func TestChatRequiresEvidence(t *testing.T) {
	s := New(nil, stubAnalyzer{}, &stubFactory{}, logger.Nop())
	if _, err := s.Chat(); !errors.Is(err, ErrNoEvidence) {
		t.Fatalf("Expected ErrNoEvidence, got %v", err)
	}
}

func TestChatWithoutAgentFactory(t *testing.T) {
	s := New(nil, stubAnalyzer{}, nil, logger.Nop())
	if _, err := s.Chat(); !errors.Is(err, ErrNoAnalyzer) {
		t.Fatalf("Expected ErrNoAnalyzer, got %v", err)
	}
}

func TestChatReseedsWhenEvidenceGrows(t *testing.T) {
	factory := &stubFactory{}
	s := New(nil, stubAnalyzer{}, factory, logger.Nop())

	if _, err := s.AddEvidence(context.Background(), []ingest.Upload{{Name: "a.pdf"}}); err != nil {
		t.Fatalf("AddEvidence: %v", err)
	}
	first, err := s.Chat()
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	again, err := s.Chat()
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if again != first {
		t.Error("Unchanged evidence set must reuse the chat session")
	}

	if _, err := s.AddEvidence(context.Background(), []ingest.Upload{{Name: "b.pdf"}}); err != nil {
		t.Fatalf("AddEvidence: %v", err)
	}
	fresh, err := s.Chat()
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if fresh == first {
		t.Error("Grown evidence set must reseed the chat session")
	}

	if len(factory.seededWith) != 2 || factory.seededWith[0] != 1 || factory.seededWith[1] != 2 {
		t.Errorf("Agent seeding = %v, want [1 2]", factory.seededWith)
	}
}
