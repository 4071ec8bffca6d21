package models

import (
	"time"
)

// ConflictType classifies a detected conflict
type ConflictType string

const (
	TypeTemporal      ConflictType = "TEMPORAL"
	TypeContradiction ConflictType = "CONTRADICTION"
	TypeIntraDoc      ConflictType = "INTRA_DOC"
)

// ConflictStatus represents the resolution status of a conflict
type ConflictStatus string

const (
	StatusOpen     ConflictStatus = "OPEN"
	StatusResolved ConflictStatus = "RESOLVED"
)

// Mention represents one occurrence of a statement in a source document
type Mention struct {
	ID           string `json:"id"`
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	Page         int    `json:"page"`
	Section      string `json:"section"`
	Text         string `json:"text"`
	Date         string `json:"date,omitempty"`
	SourceType   string `json:"source_type,omitempty"`
}

// Conflict represents a detected disagreement among mentions
type Conflict struct {
	ID             string         `json:"id"`
	Type           ConflictType   `json:"type"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Mentions       []Mention      `json:"mentions"`
	Status         ConflictStatus `json:"status"`
	Recommendation string         `json:"recommendation,omitempty"`
	DetectedAt     time.Time      `json:"detected_at"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`
}

// Open reports whether the conflict has not yet been resolved
func (c *Conflict) Open() bool {
	return c.Status == StatusOpen
}

// ValidType reports whether t belongs to the closed conflict type set
func ValidType(t ConflictType) bool {
	switch t {
	case TypeTemporal, TypeContradiction, TypeIntraDoc:
		return true
	}
	return false
}

// ValidStatus reports whether s belongs to the closed status set
func ValidStatus(s ConflictStatus) bool {
	switch s {
	case StatusOpen, StatusResolved:
		return true
	}
	return false
}
