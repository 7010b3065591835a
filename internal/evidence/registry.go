// Package evidence tracks uploaded case files, their processing status
// and their assigned visualization colors.
package evidence

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/solaris-forensic/casegraph/internal/models"
)

// Registry owns the evidence files of one case session. It is written
// only by upload registration and post-analysis status updates.
type Registry struct {
	mu      sync.Mutex
	files   []models.EvidenceFile
	version uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a batch of uploads. Each file gets a fresh id, a media
// kind derived from its name, the given initial status, and the next
// palette color — colors are assigned by upload position and cycle when
// the palette is exhausted.
func (r *Registry) Add(names []string, status models.FileStatus) []models.EvidenceFile {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := make([]models.EvidenceFile, 0, len(names))
	for i, name := range names {
		f := models.EvidenceFile{
			ID:     uuid.New().String(),
			Name:   name,
			Kind:   KindForName(name),
			Status: status,
			Color:  models.FileColors[(len(r.files)+i)%len(models.FileColors)],
		}
		added = append(added, f)
	}
	r.files = append(r.files, added...)
	r.version++
	return added
}

// SetStatus moves the given files to a new status.
func (r *Registry) SetStatus(ids []string, status models.FileStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for i := range r.files {
		if want[r.files[i].ID] {
			r.files[i].Status = status
		}
	}
	r.version++
}

// Get returns the file with the given id.
func (r *Registry) Get(id string) (models.EvidenceFile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.ID == id {
			return f, true
		}
	}
	return models.EvidenceFile{}, false
}

// List returns all files in upload order.
func (r *Registry) List() []models.EvidenceFile {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.EvidenceFile, len(r.files))
	copy(out, r.files)
	return out
}

// Len returns the number of registered files.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}

// Version is a monotonic counter bumped on every registry write.
// Association caches key on it to invalidate on any change.
func (r *Registry) Version() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// KindForName derives the media kind from a file name's extension.
// Unknown extensions fall through to video, matching the upload surface
// this engine was built against.
func KindForName(name string) models.MediaKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tiff":
		return models.MediaImage
	case ".mp3", ".wav", ".m4a", ".ogg", ".flac", ".aac":
		return models.MediaAudio
	case ".pdf":
		return models.MediaPDF
	default:
		return models.MediaVideo
	}
}

// MIMEType returns the request content type for a media kind and file
// name, used when handing file bytes to the analyzer.
func MIMEType(kind models.MediaKind, name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch kind {
	case models.MediaImage:
		if ext == "jpg" {
			ext = "jpeg"
		}
		return "image/" + ext
	case models.MediaAudio:
		switch ext {
		case "mp3":
			ext = "mpeg"
		case "m4a":
			ext = "mp4"
		}
		return "audio/" + ext
	case models.MediaPDF:
		return "application/pdf"
	default:
		return "video/" + ext
	}
}
