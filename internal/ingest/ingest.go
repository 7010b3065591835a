// Package ingest drives one evidence batch from upload to merged graph
// fragment: register files, run the analyzer, merge or mark the whole
// batch failed.
package ingest

import (
	"context"
	"fmt"

	"github.com/solaris-forensic/casegraph/internal/analyzer"
	"github.com/solaris-forensic/casegraph/internal/evidence"
	"github.com/solaris-forensic/casegraph/internal/graph"
	"github.com/solaris-forensic/casegraph/internal/logger"
	"github.com/solaris-forensic/casegraph/internal/models"
)

// Upload is one file handed to the pipeline.
type Upload struct {
	Name string
	Data []byte
}

// Ingestor ties the evidence registry, the analyzer and the graph
// store together for batch ingestion.
type Ingestor struct {
	Registry *evidence.Registry
	Store    *graph.Store
	Analyzer analyzer.Analyzer
	Log      *logger.Logger
}

// Process runs one ingestion batch. Files are registered as processing
// up front; on analyzer failure every file of the batch is marked
// error and no partial graph data is committed. On success the
// fragment is merged (nodes and links in analyzer-returned order,
// deduplicated against the store) and the files move to processed.
func (in *Ingestor) Process(ctx context.Context, uploads []Upload) ([]models.EvidenceFile, error) {
	names := make([]string, len(uploads))
	for i, u := range uploads {
		names[i] = u.Name
	}
	files := in.Registry.Add(names, models.FileProcessing)
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}

	contents := make([]analyzer.Content, len(uploads))
	for i, u := range uploads {
		contents[i] = analyzer.Content{
			Name:     u.Name,
			MIMEType: evidence.MIMEType(files[i].Kind, u.Name),
			Data:     u.Data,
		}
	}

	frag, err := in.Analyzer.Analyze(ctx, contents)
	if err != nil {
		in.Registry.SetStatus(ids, models.FileError)
		in.Log.Error("evidence analysis failed", "files", names, "error", err)
		return in.currentFiles(ids), fmt.Errorf("analyze evidence: %w", err)
	}

	in.Store.IngestFragment(frag)
	in.Registry.SetStatus(ids, models.FileProcessed)
	in.Log.Info("evidence batch merged",
		"files", len(files), "nodes", len(frag.Nodes), "links", len(frag.Links))
	return in.currentFiles(ids), nil
}

func (in *Ingestor) currentFiles(ids []string) []models.EvidenceFile {
	out := make([]models.EvidenceFile, 0, len(ids))
	for _, id := range ids {
		if f, ok := in.Registry.Get(id); ok {
			out = append(out, f)
		}
	}
	return out
}
