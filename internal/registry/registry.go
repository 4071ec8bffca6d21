package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/todmy/doc-reconciler/pkg/models"
)

var (
	ErrDuplicateConflict = errors.New("duplicate conflict id")
	ErrDuplicateMention  = errors.New("duplicate mention id")
	ErrNoMentions        = errors.New("conflict has no mentions")
	ErrInvalidType       = errors.New("unknown conflict type")
	ErrInvalidStatus     = errors.New("unknown conflict status")
	ErrStatusMismatch    = errors.New("conflict status disagrees with resolution timestamp")
)

// Registry owns the conflict list for a review session. Conflicts are held
// in insertion order and that order is the contract for iteration and for
// selecting the next open conflict; it never changes after Load.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	byID     map[string]*models.Conflict
	mentions map[string]models.Mention
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		byID:     make(map[string]*models.Conflict),
		mentions: make(map[string]models.Mention),
	}
}

// Load ingests a batch snapshot of conflicts from the detection engine.
// The snapshot is validated as a whole; on error nothing is ingested.
func (r *Registry) Load(conflicts []models.Conflict) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(conflicts))
	seenMentions := make(map[string]bool)
	for _, c := range conflicts {
		if !models.ValidType(c.Type) {
			return fmt.Errorf("%w: %q (conflict %s)", ErrInvalidType, c.Type, c.ID)
		}
		if c.Status != "" && !models.ValidStatus(c.Status) {
			return fmt.Errorf("%w: %q (conflict %s)", ErrInvalidStatus, c.Status, c.ID)
		}
		// Empty status defaults to OPEN below, so it must not carry a
		// resolution timestamp either.
		if (c.Status == models.StatusResolved) != (c.ResolvedAt != nil) {
			return fmt.Errorf("%w: conflict %s", ErrStatusMismatch, c.ID)
		}
		if len(c.Mentions) == 0 {
			return fmt.Errorf("%w: conflict %s", ErrNoMentions, c.ID)
		}
		if seen[c.ID] || r.byID[c.ID] != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateConflict, c.ID)
		}
		seen[c.ID] = true
		for _, m := range c.Mentions {
			if seenMentions[m.ID] {
				return fmt.Errorf("%w: %s", ErrDuplicateMention, m.ID)
			}
			seenMentions[m.ID] = true
		}
	}

	for _, c := range conflicts {
		stored := c
		stored.Mentions = append([]models.Mention(nil), c.Mentions...)
		if stored.Status == "" {
			stored.Status = models.StatusOpen
		}
		r.order = append(r.order, stored.ID)
		r.byID[stored.ID] = &stored
		for _, m := range stored.Mentions {
			r.mentions[m.ID] = m
		}
	}
	return nil
}

// List returns all conflicts in insertion order
func (r *Registry) List() []models.Conflict {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Conflict, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.snapshot(id))
	}
	return out
}

// Get returns the conflict with the given id
func (r *Registry) Get(id string) (models.Conflict, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.byID[id] == nil {
		return models.Conflict{}, false
	}
	return r.snapshot(id), true
}

// Mention returns the mention with the given id, searching all conflicts
func (r *Registry) Mention(id string) (models.Mention, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.mentions[id]
	return m, ok
}

// MarkResolved transitions a conflict OPEN -> RESOLVED and stamps the
// resolution time. The transition is one-way; the call reports false and
// changes nothing for an unknown id or an already resolved conflict.
func (r *Registry) MarkResolved(id string, ts time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.byID[id]
	if c == nil || c.Status != models.StatusOpen {
		return false
	}
	c.Status = models.StatusResolved
	c.ResolvedAt = &ts
	return true
}

// NextOpen returns the first open conflict in registry order whose id
// differs from excludeID
func (r *Registry) NextOpen(excludeID string) (models.Conflict, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if id == excludeID {
			continue
		}
		if c := r.byID[id]; c != nil && c.Status == models.StatusOpen {
			return r.snapshot(id), true
		}
	}
	return models.Conflict{}, false
}

// OpenCount returns the number of unresolved conflicts
func (r *Registry) OpenCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, c := range r.byID {
		if c.Status == models.StatusOpen {
			n++
		}
	}
	return n
}

// snapshot copies a conflict so callers never alias registry state.
// Caller must hold at least the read lock.
func (r *Registry) snapshot(id string) models.Conflict {
	c := *r.byID[id]
	c.Mentions = append([]models.Mention(nil), c.Mentions...)
	if c.ResolvedAt != nil {
		ts := *c.ResolvedAt
		c.ResolvedAt = &ts
	}
	return c
}
