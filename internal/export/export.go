// Package export serializes the review session's conflict list into an
// audit document for download by the surrounding application.
package export

import (
	"encoding/json"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/todmy/doc-reconciler/pkg/models"
)

// AuditEntry is the per-conflict record in the export document
type AuditEntry struct {
	ID         string                `json:"id"`
	Title      string                `json:"title"`
	Type       models.ConflictType   `json:"type"`
	Status     models.ConflictStatus `json:"status"`
	ResolvedAt *time.Time            `json:"resolved_at,omitempty"`
}

// LatencyStats summarizes detection-to-resolution latency across resolved
// conflicts. StdDev is zero when fewer than two samples exist.
type LatencyStats struct {
	Samples       int     `json:"samples"`
	MeanSeconds   float64 `json:"mean_seconds"`
	StdDevSeconds float64 `json:"stddev_seconds"`
}

// Summary holds aggregate counts over the conflict list
type Summary struct {
	Total    int            `json:"total"`
	Resolved int            `json:"resolved"`
	Open     int            `json:"open"`
	ByType   map[string]int `json:"by_type"`
	Latency  *LatencyStats  `json:"resolution_latency,omitempty"`
}

// Document is the full export payload
type Document struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Summary     Summary      `json:"summary"`
	Conflicts   []AuditEntry `json:"conflicts"`
}

// Build assembles the export document for the given conflicts. Conflict
// order is preserved from the input.
func Build(conflicts []models.Conflict, now time.Time) Document {
	doc := Document{
		GeneratedAt: now,
		Summary: Summary{
			Total:  len(conflicts),
			ByType: make(map[string]int),
		},
		Conflicts: make([]AuditEntry, 0, len(conflicts)),
	}

	var latencies []float64
	for _, c := range conflicts {
		doc.Summary.ByType[string(c.Type)]++
		if c.Status == models.StatusResolved {
			doc.Summary.Resolved++
			if c.ResolvedAt != nil && !c.DetectedAt.IsZero() {
				latencies = append(latencies, c.ResolvedAt.Sub(c.DetectedAt).Seconds())
			}
		} else {
			doc.Summary.Open++
		}
		doc.Conflicts = append(doc.Conflicts, AuditEntry{
			ID:         c.ID,
			Title:      c.Title,
			Type:       c.Type,
			Status:     c.Status,
			ResolvedAt: c.ResolvedAt,
		})
	}

	if len(latencies) > 0 {
		ls := &LatencyStats{
			Samples:     len(latencies),
			MeanSeconds: stat.Mean(latencies, nil),
		}
		if len(latencies) > 1 {
			ls.StdDevSeconds = stat.StdDev(latencies, nil)
		}
		doc.Summary.Latency = ls
	}
	return doc
}

// Marshal renders the document as indented UTF-8 JSON
func Marshal(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
