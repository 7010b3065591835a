// Package session holds the per-connection case state: the signed-in
// investigator, the evidence registry, the graph store and the
// assistant conversation. Everything here is session-scoped; only the
// auth store persists.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/solaris-forensic/casegraph/internal/analyzer"
	"github.com/solaris-forensic/casegraph/internal/assoc"
	"github.com/solaris-forensic/casegraph/internal/auth"
	"github.com/solaris-forensic/casegraph/internal/chat"
	"github.com/solaris-forensic/casegraph/internal/evidence"
	"github.com/solaris-forensic/casegraph/internal/graph"
	"github.com/solaris-forensic/casegraph/internal/ingest"
	"github.com/solaris-forensic/casegraph/internal/logger"
	"github.com/solaris-forensic/casegraph/internal/models"
)

var (
	// ErrNoAnalyzer is returned when no model backend is configured.
	ErrNoAnalyzer = errors.New("no analyzer configured")
	// ErrNoEvidence is returned when the assistant is used before any
	// evidence has been ingested.
	ErrNoEvidence = errors.New("no evidence ingested yet")
)

// AgentFactory opens a conversational agent session seeded with the
// given evidence contents.
type AgentFactory interface {
	NewAgent(contents []analyzer.Content) chat.Agent
}

// Session is one case session. Mutations are serialized by the session
// lock; each engine operation runs to completion before another starts.
type Session struct {
	mu  sync.Mutex
	log *logger.Logger

	auth     *auth.Store
	analyzer analyzer.Analyzer
	agents   AgentFactory

	store    *graph.Store
	registry *evidence.Registry
	resolver *assoc.Resolver
	ingestor *ingest.Ingestor

	contents   []analyzer.Content
	chat       *chat.Session
	chatSeeded int
}

// New creates an empty case session. analyzer and agents may be nil
// when no model backend is configured; graph CRUD still works.
func New(authStore *auth.Store, an analyzer.Analyzer, agents AgentFactory, log *logger.Logger) *Session {
	store := graph.New()
	registry := evidence.NewRegistry()
	s := &Session{
		log:      log,
		auth:     authStore,
		analyzer: an,
		agents:   agents,
		store:    store,
		registry: registry,
		resolver: assoc.NewResolver(registry),
	}
	if an != nil {
		s.ingestor = &ingest.Ingestor{
			Registry: registry,
			Store:    store,
			Analyzer: an,
			Log:      log,
		}
	}
	return s
}

// Auth returns the persistent auth store.
func (s *Session) Auth() *auth.Store {
	return s.auth
}

// Store returns the case graph store.
func (s *Session) Store() *graph.Store {
	return s.store
}

// Registry returns the evidence registry.
func (s *Session) Registry() *evidence.Registry {
	return s.registry
}

// Resolver returns the caching file-association resolver.
func (s *Session) Resolver() *assoc.Resolver {
	return s.resolver
}

// Lock serializes an engine operation; callers pair it with Unlock.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// AddEvidence runs one ingestion batch and retains the raw contents so
// future assistant sessions can be seeded with the full evidence set.
func (s *Session) AddEvidence(ctx context.Context, uploads []ingest.Upload) ([]models.EvidenceFile, error) {
	if s.ingestor == nil {
		return nil, ErrNoAnalyzer
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range uploads {
		s.contents = append(s.contents, analyzer.Content{
			Name:     u.Name,
			MIMEType: evidence.MIMEType(evidence.KindForName(u.Name), u.Name),
			Data:     u.Data,
		})
	}
	return s.ingestor.Process(ctx, uploads)
}

// Chat returns the assistant session, opening a fresh one seeded with
// the current evidence set the first time and whenever the set has
// grown since the last seeding.
func (s *Session) Chat() (*chat.Session, error) {
	if s.agents == nil {
		return nil, ErrNoAnalyzer
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.registry.Len()
	if n == 0 {
		return nil, ErrNoEvidence
	}
	if s.chat == nil || n != s.chatSeeded {
		agent := s.agents.NewAgent(s.contents)
		s.chat = chat.NewSession(agent, s.store, s.log)
		s.chatSeeded = n
	}
	return s.chat, nil
}

// RequireChat is Chat with a friendlier error for tool surfaces.
func (s *Session) RequireChat() (*chat.Session, error) {
	c, err := s.Chat()
	if err != nil {
		return nil, fmt.Errorf("assistant unavailable: %w", err)
	}
	return c, nil
}
