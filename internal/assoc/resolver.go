// Package assoc derives node-to-evidence associations. Association is
// always a recomputable view over the graph and the registry; it never
// becomes part of either store's identity.
package assoc

import (
	"strings"
	"sync"

	"github.com/solaris-forensic/casegraph/internal/evidence"
	"github.com/solaris-forensic/casegraph/internal/models"
)

// Resolve returns the ids of the evidence files associated with a node.
//
// The explicit attached_files list is authoritative and contributes
// every id it names. Additionally, when the node carries a source_file
// provenance string, the files are scanned in registry order and the
// first symmetric-containment match contributes its id: both sides are
// lowercased and trimmed, and a match means the provenance contains the
// file name or the file name contains the provenance. Containment
// rather than equality or edit distance, because analyzer provenance is
// sometimes abbreviated and sometimes padded with directory-like
// context. At most one file is inferred from provenance.
//
// The result has no ordering guarantee.
func Resolve(node *models.GraphNode, files []models.EvidenceFile) map[string]bool {
	ids := make(map[string]bool)
	for _, id := range node.AttachedFiles() {
		ids[id] = true
	}

	if src := normalize(node.Property(models.PropSourceFile)); src != "" {
		for _, f := range files {
			name := normalize(f.Name)
			if name == "" {
				continue
			}
			if strings.Contains(src, name) || strings.Contains(name, src) {
				ids[f.ID] = true
				break
			}
		}
	}
	return ids
}

// Matches reports whether the node is associated with the given file.
func Matches(node *models.GraphNode, file models.EvidenceFile) bool {
	for _, id := range node.AttachedFiles() {
		if id == file.ID {
			return true
		}
	}
	src := normalize(node.Property(models.PropSourceFile))
	name := normalize(file.Name)
	if src == "" || name == "" {
		return false
	}
	return strings.Contains(src, name) || strings.Contains(name, src)
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// Attach records an explicit association on the node's attachment
// list. Adding a file twice is a no-op.
func Attach(node *models.GraphNode, fileID string) {
	current := node.AttachedFiles()
	for _, id := range current {
		if id == fileID {
			return
		}
	}
	if node.Properties == nil {
		node.Properties = make(map[string]any)
	}
	node.Properties[models.PropAttachedFiles] = append(current, fileID)
}

// Detach removes an association from the node: the file id leaves the
// attachment list, and when the provenance string's containment match
// points at this file the source_file property is cleared as well, so
// the association does not silently reappear through inference.
func Detach(node *models.GraphNode, file models.EvidenceFile) {
	if node.Properties == nil {
		return
	}
	src := normalize(node.Property(models.PropSourceFile))
	name := normalize(file.Name)
	if src != "" && name != "" && (strings.Contains(src, name) || strings.Contains(name, src)) {
		delete(node.Properties, models.PropSourceFile)
	}
	current := node.AttachedFiles()
	if len(current) == 0 {
		return
	}
	kept := current[:0]
	for _, id := range current {
		if id != file.ID {
			kept = append(kept, id)
		}
	}
	node.Properties[models.PropAttachedFiles] = kept
}

// Resolver memoizes Resolve per node against one registry. Entries are
// invalidated whenever the registry version moves; node-side provenance
// changes are covered by keying on the provenance inputs themselves.
type Resolver struct {
	registry *evidence.Registry

	mu      sync.Mutex
	version uint64
	cache   map[string]map[string]bool // cache key → file id set
}

// NewResolver returns a caching resolver bound to a registry.
func NewResolver(registry *evidence.Registry) *Resolver {
	return &Resolver{registry: registry, cache: make(map[string]map[string]bool)}
}

// Resolve returns the association set for the node, from cache when the
// registry has not changed since the entry was computed. The result is
// the caller's to mutate; cached entries are copied on the way out.
func (r *Resolver) Resolve(node *models.GraphNode) map[string]bool {
	key := node.ID + "\x00" + node.Property(models.PropSourceFile) + "\x00" + strings.Join(node.AttachedFiles(), ",")

	r.mu.Lock()
	if v := r.registry.Version(); v != r.version {
		r.cache = make(map[string]map[string]bool)
		r.version = v
	}
	if ids, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return copyIDs(ids)
	}
	r.mu.Unlock()

	ids := Resolve(node, r.registry.List())

	r.mu.Lock()
	r.cache[key] = ids
	r.mu.Unlock()
	return copyIDs(ids)
}

func copyIDs(ids map[string]bool) map[string]bool {
	out := make(map[string]bool, len(ids))
	for id := range ids {
		out[id] = true
	}
	return out
}
