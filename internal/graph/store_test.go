package graph

import (
	"errors"
	"math"
	"testing"

	"github.com/solaris-forensic/casegraph/internal/models"
)

func fragment() *models.GraphFragment {
	return &models.GraphFragment{
		Nodes: []models.GraphNode{
			{ID: "a", Label: "Mark", Type: models.NodeEntity},
			{ID: "b", Label: "Solaris Corp", Type: models.NodeEntity},
		},
		Links: []models.GraphLink{
			{Source: "a", Target: "b", Label: "OWNS"},
		},
	}
}

func TestIngestFragmentIdempotent(t *testing.T) {
	s := New()

	s.IngestFragment(fragment())
	s.IngestFragment(fragment())

	nodes, links := s.Counts()
	if nodes != 2 {
		t.Fatalf("Expected 2 nodes after double ingest, got %d", nodes)
	}
	if links != 1 {
		t.Fatalf("Expected 1 link after double ingest, got %d", links)
	}
}

func TestIngestFragmentFirstWriterWins(t *testing.T) {
	s := New()
	s.IngestFragment(fragment())

	s.IngestFragment(&models.GraphFragment{
		Nodes: []models.GraphNode{{ID: "a", Label: "Mark Impostor", Type: models.NodeConflict}},
		Links: []models.GraphLink{{Source: "a", Target: "b", Label: "CONTROLS"}},
	})

	node, ok := s.Node("a")
	if !ok {
		t.Fatal("Node a missing")
	}
	if node.Label != "Mark" {
		t.Errorf("Label = %q, want original %q", node.Label, "Mark")
	}
	links := s.Links()
	if len(links) != 1 || links[0].Label != "OWNS" {
		t.Errorf("Expected single original OWNS link, got %+v", links)
	}
}

func TestIngestFragmentPreservesOrder(t *testing.T) {
	s := New()
	s.IngestFragment(fragment())
	s.IngestFragment(&models.GraphFragment{
		Nodes: []models.GraphNode{{ID: "c", Label: "Transfer $50k", Type: models.NodeEvent}},
	})

	nodes := s.Nodes()
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if nodes[i].ID != id {
			t.Fatalf("nodes[%d].ID = %q, want %q", i, nodes[i].ID, id)
		}
	}
}

func TestIngestAssignsLinkIDs(t *testing.T) {
	s := New()
	s.IngestFragment(fragment())
	links := s.Links()
	if links[0].ID == "" {
		t.Error("Merged link should carry a store-assigned id")
	}
}

func TestCreateNodeDuplicateID(t *testing.T) {
	s := New()
	if err := s.CreateNode(models.GraphNode{ID: "x", Label: "X", Type: models.NodeEntity}); err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	err := s.CreateNode(models.GraphNode{ID: "x", Label: "X2", Type: models.NodeEntity})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Expected ErrDuplicateID, got %v", err)
	}
}

func TestCreateNodePlacement(t *testing.T) {
	s := New()

	if err := s.CreateNode(models.GraphNode{ID: "first", Label: "First", Type: models.NodeEntity}); err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	first, _ := s.Node("first")
	if first.Position == nil || first.Position.X != 0 || first.Position.Y != 0 {
		t.Fatalf("First node in an empty store should sit at the origin, got %+v", first.Position)
	}

	// Seed a known layout and check the jitter radius from its centroid.
	s.UpdateNode(models.GraphNode{ID: "first", Label: "First", Type: models.NodeEntity,
		Position: &models.Position{X: 100, Y: 0}})
	if err := s.CreateNode(models.GraphNode{ID: "second", Label: "Second", Type: models.NodeEntity,
		Position: &models.Position{X: 300, Y: 0}}); err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	if err := s.CreateNode(models.GraphNode{ID: "third", Label: "Third", Type: models.NodeEntity}); err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	third, _ := s.Node("third")
	if third.Position == nil {
		t.Fatal("Placed node has no position")
	}
	dx := third.Position.X - 200
	dy := third.Position.Y - 0
	dist := math.Hypot(dx, dy)
	if math.Abs(dist-jitterRadius) > 1e-9 {
		t.Errorf("Distance from centroid = %v, want %v", dist, float64(jitterRadius))
	}
}

func TestUpdateNodeReplacesByID(t *testing.T) {
	s := New()
	s.CreateNode(models.GraphNode{ID: "x", Label: "Old", Type: models.NodeEntity})

	s.UpdateNode(models.GraphNode{ID: "x", Label: "New", Type: models.NodeEvent,
		Properties: map[string]any{models.PropDescription: "updated"}})

	node, _ := s.Node("x")
	if node.Label != "New" || node.Type != models.NodeEvent {
		t.Errorf("Node not replaced: %+v", node)
	}
	if node.Property(models.PropDescription) != "updated" {
		t.Errorf("Properties not replaced: %+v", node.Properties)
	}
}

func TestUpdateNodeUnknownIDIsNoop(t *testing.T) {
	s := New()
	s.UpdateNode(models.GraphNode{ID: "ghost", Label: "Ghost", Type: models.NodeEntity})
	if nodes, _ := s.Counts(); nodes != 0 {
		t.Errorf("Updating an unknown id must not insert, got %d nodes", nodes)
	}
}

func TestDeleteNodeCascades(t *testing.T) {
	s := New()
	s.CreateNode(models.GraphNode{ID: "x", Label: "X", Type: models.NodeEntity})
	s.CreateNode(models.GraphNode{ID: "y", Label: "Y", Type: models.NodeEntity})
	if _, err := s.AddLink("x", "y", "OWNS"); err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	s.DeleteNode("x")

	if _, ok := s.Node("x"); ok {
		t.Error("Node x should be gone")
	}
	if _, ok := s.Node("y"); !ok {
		t.Error("Node y should remain")
	}
	for _, l := range s.Links() {
		if l.Source == "x" || l.Target == "x" {
			t.Errorf("Dangling link after delete: %+v", l)
		}
	}
	if _, links := s.Counts(); links != 0 {
		t.Errorf("Expected 0 links after cascade, got %d", links)
	}
}

func TestDeleteNodeKeepsUnrelatedLinks(t *testing.T) {
	s := New()
	for _, id := range []string{"a", "b", "c"} {
		s.CreateNode(models.GraphNode{ID: id, Label: id, Type: models.NodeEntity})
	}
	s.AddLink("a", "b", "KNOWS")
	s.AddLink("b", "c", "KNOWS")

	s.DeleteNode("a")

	links := s.Links()
	if len(links) != 1 || links[0].Source != "b" || links[0].Target != "c" {
		t.Errorf("Unrelated link should survive, got %+v", links)
	}
}

func TestAddLinkValidatesEndpoints(t *testing.T) {
	s := New()
	s.CreateNode(models.GraphNode{ID: "x", Label: "X", Type: models.NodeEntity})

	if _, err := s.AddLink("x", "missing", "OWNS"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound for missing target, got %v", err)
	}
	if _, err := s.AddLink("missing", "x", "OWNS"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound for missing source, got %v", err)
	}
	if _, links := s.Counts(); links != 0 {
		t.Errorf("No link should be inserted on validation failure, got %d", links)
	}
}

func TestAddLinkAllowsManualDuplicates(t *testing.T) {
	s := New()
	s.CreateNode(models.GraphNode{ID: "x", Label: "X", Type: models.NodeEntity})
	s.CreateNode(models.GraphNode{ID: "y", Label: "Y", Type: models.NodeEntity})

	if _, err := s.AddLink("x", "y", "OWNS"); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if _, err := s.AddLink("x", "y", "OWNS"); err != nil {
		t.Fatalf("AddLink duplicate: %v", err)
	}
	if _, links := s.Counts(); links != 2 {
		t.Errorf("Manual links may duplicate, expected 2 got %d", links)
	}
}

func TestNodeCopyDoesNotAliasStoredState(t *testing.T) {
	s := New()
	s.CreateNode(models.GraphNode{ID: "x", Label: "X", Type: models.NodeEntity,
		Properties: map[string]any{
			models.PropSourceFile:    "ledger.pdf",
			models.PropAttachedFiles: []string{"f1"},
		}})

	copied, _ := s.Node("x")
	copied.Properties[models.PropSourceFile] = "tampered"
	copied.Properties[models.PropAttachedFiles].([]string)[0] = "f2"
	delete(copied.Properties, models.PropAttachedFiles)

	stored, _ := s.Node("x")
	if stored.Property(models.PropSourceFile) != "ledger.pdf" {
		t.Errorf("Stored provenance changed through a returned copy: %q",
			stored.Property(models.PropSourceFile))
	}
	if files := stored.AttachedFiles(); len(files) != 1 || files[0] != "f1" {
		t.Errorf("Stored attachment list changed through a returned copy: %v", files)
	}
}

func TestSnapshotDoesNotAliasStoredState(t *testing.T) {
	s := New()
	s.IngestFragment(&models.GraphFragment{
		Nodes: []models.GraphNode{{ID: "a", Label: "Mark", Type: models.NodeEntity,
			Properties: map[string]any{models.PropDescription: "original"}}},
		Links: []models.GraphLink{{Source: "a", Target: "a", Label: "SELF",
			Properties: map[string]any{models.PropConfidence: 0.9}}},
	})

	snap := s.Snapshot()
	snap.Nodes[0].Properties[models.PropDescription] = "tampered"
	snap.Links[0].Properties[models.PropConfidence] = 0.1

	fresh := s.Snapshot()
	if fresh.Nodes[0].Property(models.PropDescription) != "original" {
		t.Error("Node properties mutated through a snapshot")
	}
	if fresh.Links[0].Properties[models.PropConfidence] != 0.9 {
		t.Error("Link properties mutated through a snapshot")
	}
}

func TestCreateNodeDoesNotRetainCallerMap(t *testing.T) {
	s := New()
	props := map[string]any{models.PropDescription: "original"}
	s.CreateNode(models.GraphNode{ID: "x", Label: "X", Type: models.NodeEntity, Properties: props})

	props[models.PropDescription] = "tampered"

	stored, _ := s.Node("x")
	if stored.Property(models.PropDescription) != "original" {
		t.Errorf("Stored node changed through the caller's map: %q",
			stored.Property(models.PropDescription))
	}
}

func TestRemoveLinkRemovesExactlyOne(t *testing.T) {
	s := New()
	s.CreateNode(models.GraphNode{ID: "x", Label: "X", Type: models.NodeEntity})
	s.CreateNode(models.GraphNode{ID: "y", Label: "Y", Type: models.NodeEntity})
	first, _ := s.AddLink("x", "y", "OWNS")
	second, _ := s.AddLink("x", "y", "OWNS")

	if err := s.RemoveLink(first.ID); err != nil {
		t.Fatalf("RemoveLink: %v", err)
	}
	links := s.Links()
	if len(links) != 1 || links[0].ID != second.ID {
		t.Errorf("Exactly the identified link should go, got %+v", links)
	}

	if err := s.RemoveLink(first.ID); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound on second removal, got %v", err)
	}
}
