// Package graph holds the authoritative in-memory case knowledge graph.
// The store is the single piece of shared mutable state in the engine;
// every mutation goes through one of its operations, each of which runs
// to completion under the store lock.
package graph

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/solaris-forensic/casegraph/internal/models"
)

var (
	// ErrNodeNotFound is returned when a link endpoint does not
	// reference an existing node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrDuplicateID is returned by CreateNode on an id collision.
	ErrDuplicateID = errors.New("duplicate node id")
	// ErrLinkNotFound is returned when a link id does not exist.
	ErrLinkNotFound = errors.New("link not found")
)

// jitterRadius is the fixed distance from the centroid at which new
// nodes are seeded, so the physics simulation does not have to
// re-settle a stack of exactly overlapping nodes.
const jitterRadius = 50

// Store is the in-memory graph of one case session.
type Store struct {
	mu    sync.Mutex
	nodes []models.GraphNode
	links []models.GraphLink

	nodeIndex map[string]int // id → position in nodes
}

// New returns an empty store.
func New() *Store {
	return &Store{nodeIndex: make(map[string]int)}
}

// IngestFragment merges an analysis fragment into the store.
//
// A fragment node is dropped when its id already exists; a fragment
// link is dropped when a link with the same (source, target) pair
// already existed before this call, regardless of label or properties —
// first writer wins. That makes re-running analysis on the same
// evidence idempotent, at the cost of collapsing legitimately different
// parallel relationships between the same two nodes into one. Known
// limitation, kept for compatibility with accumulated case data.
//
// Accepted nodes and links are appended in fragment order, so iteration
// is deterministic across merges.
func (s *Store) IngestFragment(frag *models.GraphFragment) {
	if frag == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range frag.Nodes {
		if _, exists := s.nodeIndex[n.ID]; exists {
			continue
		}
		s.nodeIndex[n.ID] = len(s.nodes)
		s.nodes = append(s.nodes, cloneNode(n))
	}

	existing := make(map[[2]string]bool, len(s.links))
	for _, l := range s.links {
		existing[[2]string{l.Source, l.Target}] = true
	}
	for _, l := range frag.Links {
		if existing[[2]string{l.Source, l.Target}] {
			continue
		}
		l.ID = uuid.New().String()
		s.links = append(s.links, cloneLink(l))
	}
}

// CreateNode appends a node. The caller is responsible for generating a
// collision-free id; a collision is reported as ErrDuplicateID.
//
// When the node carries no position it is seeded at the centroid of the
// existing layout plus a random offset at fixed radius, or at the
// origin when the store is empty.
func (s *Store) CreateNode(node models.GraphNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodeIndex[node.ID]; exists {
		return fmt.Errorf("create node %q: %w", node.ID, ErrDuplicateID)
	}
	if node.Position == nil {
		node.Position = s.seedPositionLocked()
	}
	s.nodeIndex[node.ID] = len(s.nodes)
	s.nodes = append(s.nodes, cloneNode(node))
	return nil
}

// seedPositionLocked computes the centroid-plus-jitter placement for a
// new node. Caller holds s.mu.
func (s *Store) seedPositionLocked() *models.Position {
	if len(s.nodes) == 0 {
		return &models.Position{}
	}
	var sumX, sumY float64
	for _, n := range s.nodes {
		if n.Position != nil {
			sumX += n.Position.X
			sumY += n.Position.Y
		}
	}
	cx := sumX / float64(len(s.nodes))
	cy := sumY / float64(len(s.nodes))
	angle := rand.Float64() * 2 * math.Pi
	return &models.Position{
		X: cx + math.Cos(angle)*jitterRadius,
		Y: cy + math.Sin(angle)*jitterRadius,
	}
}

// UpdateNode replaces the stored node with the same id. Unknown ids are
// a silent no-op: callers only update nodes they hold a live reference
// to, and a node deleted underneath them simply stays deleted.
func (s *Store) UpdateNode(node models.GraphNode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.nodeIndex[node.ID]
	if !ok {
		return
	}
	if node.Position == nil {
		node.Position = s.nodes[i].Position
	}
	s.nodes[i] = cloneNode(node)
}

// DeleteNode removes the node and cascades to every link touching it,
// re-establishing referential integrity in the same atomic step.
func (s *Store) DeleteNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.nodeIndex[id]
	if !ok {
		return
	}
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
	delete(s.nodeIndex, id)
	for j := i; j < len(s.nodes); j++ {
		s.nodeIndex[s.nodes[j].ID] = j
	}

	kept := s.links[:0]
	for _, l := range s.links {
		if l.Source == id || l.Target == id {
			continue
		}
		kept = append(kept, l)
	}
	s.links = kept
}

// AddLink inserts a manual directed link. Both endpoints must exist;
// a missing endpoint is reported as ErrNodeNotFound rather than
// inserting a dangling reference. Manual links may duplicate an
// existing (source, target) pair — only cross-batch merge dedupes.
func (s *Store) AddLink(source, target, label string) (models.GraphLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodeIndex[source]; !ok {
		return models.GraphLink{}, fmt.Errorf("add link: source %q: %w", source, ErrNodeNotFound)
	}
	if _, ok := s.nodeIndex[target]; !ok {
		return models.GraphLink{}, fmt.Errorf("add link: target %q: %w", target, ErrNodeNotFound)
	}
	link := models.GraphLink{
		ID:     uuid.New().String(),
		Source: source,
		Target: target,
		Label:  label,
	}
	s.links = append(s.links, link)
	return link, nil
}

// RemoveLink removes exactly one link, the one carrying the given id.
// Structurally identical siblings are untouched.
func (s *Store) RemoveLink(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.links {
		if l.ID == id {
			s.links = append(s.links[:i], s.links[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove link %q: %w", id, ErrLinkNotFound)
}

// cloneProperties copies a properties map, including the slice values
// the engine stores under attached_files. Read accessors hand out
// clones so stored state can only ever change through a store
// operation, never through a returned copy.
func cloneProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		switch s := v.(type) {
		case []string:
			out[k] = append([]string(nil), s...)
		case []any:
			out[k] = append([]any(nil), s...)
		default:
			out[k] = v
		}
	}
	return out
}

func cloneNode(n models.GraphNode) models.GraphNode {
	n.Properties = cloneProperties(n.Properties)
	return n
}

func cloneLink(l models.GraphLink) models.GraphLink {
	l.Properties = cloneProperties(l.Properties)
	return l
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (models.GraphNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.nodeIndex[id]
	if !ok {
		return models.GraphNode{}, false
	}
	return cloneNode(s.nodes[i]), true
}

// Nodes returns a copy of all nodes in insertion order.
func (s *Store) Nodes() []models.GraphNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.GraphNode, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = cloneNode(n)
	}
	return out
}

// Links returns a copy of all links in insertion order. Links referring
// to outgoing connections of a single node can be filtered by the
// caller; endpoints are always ids.
func (s *Store) Links() []models.GraphLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.GraphLink, len(s.links))
	for i, l := range s.links {
		out[i] = cloneLink(l)
	}
	return out
}

// Snapshot returns the whole graph as a fragment, for read_graph style
// consumers.
func (s *Store) Snapshot() *models.GraphFragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	frag := &models.GraphFragment{
		Nodes: make([]models.GraphNode, len(s.nodes)),
		Links: make([]models.GraphLink, len(s.links)),
	}
	for i, n := range s.nodes {
		frag.Nodes[i] = cloneNode(n)
	}
	for i, l := range s.links {
		frag.Links[i] = cloneLink(l)
	}
	return frag
}

// Counts returns the node and link totals.
func (s *Store) Counts() (nodes, links int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes), len(s.links)
}
