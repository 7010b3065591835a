package analyzer

import (
	"testing"

	"github.com/solaris-forensic/casegraph/internal/models"
)

func TestParseFragmentWithFences(t *testing.T) {
	raw := "```json\n" + `{
  "nodes": [{"id": "a", "label": "Mark", "type": "ENTITY", "properties": {"source_file": "interview.mp3"}}],
  "links": [{"source": "a", "target": "b", "label": "OWNS"}]
}` + "\n```"

	frag, err := ParseFragment(raw)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if len(frag.Nodes) != 1 || frag.Nodes[0].ID != "a" || frag.Nodes[0].Type != models.NodeEntity {
		t.Errorf("Nodes = %+v", frag.Nodes)
	}
	if frag.Nodes[0].Property(models.PropSourceFile) != "interview.mp3" {
		t.Errorf("source_file = %q", frag.Nodes[0].Property(models.PropSourceFile))
	}
	if len(frag.Links) != 1 || frag.Links[0].Label != "OWNS" {
		t.Errorf("Links = %+v", frag.Links)
	}
}

func TestParseFragmentBareJSON(t *testing.T) {
	frag, err := ParseFragment(`{"nodes": [], "links": []}`)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if len(frag.Nodes) != 0 || len(frag.Links) != 0 {
		t.Errorf("Fragment = %+v", frag)
	}
}

func TestParseFragmentMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"```json\n```",
		"The evidence shows Mark owns Luna Holdings.",
		`{"nodes": [{alf`,
	} {
		if _, err := ParseFragment(raw); err == nil {
			t.Errorf("ParseFragment(%q) should fail", raw)
		}
	}
}

func TestStripFences(t *testing.T) {
	got := StripFences("```json\n{\"nodes\":[]}\n```")
	if got != `{"nodes":[]}` {
		t.Errorf("StripFences = %q", got)
	}
	if got := StripFences("  plain  "); got != "plain" {
		t.Errorf("StripFences = %q", got)
	}
}
