package graph

import (
	"sort"
	"time"

	"github.com/solaris-forensic/casegraph/internal/models"
)

// TimelineEvent is a node that carries a parseable timestamp, projected
// for the temporal log view.
type TimelineEvent struct {
	Node models.GraphNode `json:"node"`
	When time.Time        `json:"when"`
}

// TimelineGroup is one month of timeline events.
type TimelineGroup struct {
	Month  string          `json:"month"` // e.g. "January 2024"
	Events []TimelineEvent `json:"events"`
}

// timestampLayouts are accepted timestamp forms, strict ISO-8601 dates
// first. The analyzer is instructed to emit YYYY-MM-DD.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Timeline projects the store's nodes onto a chronological view:
// nodes without a parseable timestamp property are skipped, the rest
// are sorted ascending and grouped by month. This is a derived,
// recomputable view; it never feeds back into the store.
func (s *Store) Timeline() []TimelineGroup {
	var events []TimelineEvent
	for _, n := range s.Nodes() {
		ts := n.Property(models.PropTimestamp)
		if ts == "" {
			continue
		}
		when, ok := parseTimestamp(ts)
		if !ok {
			continue
		}
		events = append(events, TimelineEvent{Node: n, When: when})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].When.Before(events[j].When)
	})

	var groups []TimelineGroup
	for _, ev := range events {
		month := ev.When.Format("January 2006")
		if len(groups) == 0 || groups[len(groups)-1].Month != month {
			groups = append(groups, TimelineGroup{Month: month})
		}
		g := &groups[len(groups)-1]
		g.Events = append(g.Events, ev)
	}
	return groups
}
