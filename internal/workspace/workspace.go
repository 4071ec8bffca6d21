// Package workspace drives the resolution workflow for one reviewer
// session: selecting a conflict, drafting a resolution, previewing,
// verifying, and committing the result to the registry.
package workspace

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/todmy/doc-reconciler/internal/draft"
	"github.com/todmy/doc-reconciler/internal/registry"
	"github.com/todmy/doc-reconciler/pkg/models"
)

// Mode is the current stage of resolving the selected conflict
type Mode string

const (
	ModeView       Mode = "view"
	ModeResolve    Mode = "resolve"
	ModePreview    Mode = "preview"
	ModeVerifying  Mode = "verifying"
	ModeResolved   Mode = "resolved"
	ModeAllCleared Mode = "all_cleared"
)

var (
	ErrNoSelection       = errors.New("no conflict selected")
	ErrUnknownConflict   = errors.New("unknown conflict")
	ErrAlreadyResolved   = errors.New("conflict already resolved")
	ErrVerifying         = errors.New("verification in progress")
	ErrInvalidTransition = errors.New("action not valid in current mode")
	ErrDraftIncomplete   = errors.New("draft does not meet its validation gate")
)

// Workspace is the single mutable surface of the review session. All state
// changes funnel through its action methods; nothing mutates the registry
// except the finalize step. One verification run can be in flight at a
// time, which is why selection is refused while mode is verifying.
type Workspace struct {
	mu       sync.Mutex
	registry *registry.Registry
	verifier *Verifier
	clock    func() time.Time
	logger   *slog.Logger

	mode       Mode
	selectedID string
	draft      *draft.Draft
	progress   []string
}

// Config holds workspace dependencies
type Config struct {
	Registry *registry.Registry
	Verifier *Verifier
	Clock    func() time.Time
	Logger   *slog.Logger
}

// New creates a workspace over the given registry. Clock and Logger
// default to time.Now and a discarding logger.
func New(cfg Config) *Workspace {
	if cfg.Verifier == nil {
		cfg.Verifier = NewVerifier(VerifierConfig{})
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	return &Workspace{
		registry: cfg.Registry,
		verifier: cfg.Verifier,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		mode:     ModeView,
	}
}

// Snapshot is a consistent read of workspace state for presentation
type Snapshot struct {
	Mode     Mode
	Conflict *models.Conflict
	Draft    *draft.Draft
	Progress []string
}

// Snapshot returns the current mode, selected conflict, draft, and
// verification progress log. Everything is copied; mutating the snapshot
// has no effect on the workspace.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		Mode:     w.mode,
		Draft:    w.draft.Clone(),
		Progress: append([]string(nil), w.progress...),
	}
	if w.selectedID != "" {
		if c, ok := w.registry.Get(w.selectedID); ok {
			s.Conflict = &c
		}
	}
	return s
}

// Select makes the given conflict current and resets the workflow to view.
// Any draft in progress is discarded; there is no partial save. Selection
// is refused while a verification run is in flight.
func (w *Workspace) Select(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode == ModeVerifying {
		return ErrVerifying
	}
	if _, ok := w.registry.Get(id); !ok {
		return ErrUnknownConflict
	}
	w.selectedID = id
	w.draft = nil
	w.progress = nil
	w.mode = ModeView
	w.logger.Info("conflict selected", "conflict_id", id)
	return nil
}

// StartResolution creates an empty quick-resolve draft for the selected
// conflict and enters resolve mode.
func (w *Workspace) StartResolution() error {
	return w.start(false)
}

// StartManual creates a pre-populated manual-override draft and enters
// resolve mode. Unlike StartResolution it is also allowed from resolve
// mode, replacing the quick-resolve draft when the reviewer switches to
// editing text directly.
func (w *Workspace) StartManual() error {
	return w.start(true)
}

func (w *Workspace) start(manual bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != ModeView && !(manual && w.mode == ModeResolve) {
		return ErrInvalidTransition
	}
	if w.selectedID == "" {
		return ErrNoSelection
	}
	c, ok := w.registry.Get(w.selectedID)
	if !ok {
		return ErrUnknownConflict
	}
	if !c.Open() {
		return ErrAlreadyResolved
	}
	if manual {
		w.draft = draft.NewManual(c)
	} else {
		w.draft = draft.New(c)
	}
	w.mode = ModeResolve
	w.logger.Info("resolution started", "conflict_id", c.ID, "kind", w.draft.Kind)
	return nil
}

// Cancel discards the draft and returns to view
func (w *Workspace) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != ModeResolve {
		return ErrInvalidTransition
	}
	w.draft = nil
	w.mode = ModeView
	return nil
}

// UpdateDraft shallow-merges a partial update into the active draft. With
// no draft active the call is a silent no-op.
func (w *Workspace) UpdateDraft(u draft.Update) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.draft.Apply(u)
}

// UpdateManualEdit replaces the manual edit for a mention, recomputing the
// dirty flag against the registry's original text. Silent no-op without an
// active manual draft.
func (w *Workspace) UpdateManualEdit(mentionID, text string, action draft.EditAction) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.draft.SetManualEdit(w.registry, mentionID, text, action)
}

// Preview advances resolve -> preview. The draft must pass its validation
// gate; an incomplete draft blocks the transition and stays editable.
func (w *Workspace) Preview() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != ModeResolve {
		return ErrInvalidTransition
	}
	if !w.draft.Complete() {
		return ErrDraftIncomplete
	}
	w.mode = ModePreview
	return nil
}

// ReturnToEdit goes back from preview to resolve with the draft unchanged
func (w *Workspace) ReturnToEdit() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != ModePreview {
		return ErrInvalidTransition
	}
	w.mode = ModeResolve
	return nil
}

// Submit enters verifying and starts the verification run. The returned
// channel closes after finalize commits the resolution; once submitted the
// run cannot be cancelled or altered.
func (w *Workspace) Submit() (<-chan struct{}, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != ModePreview {
		return nil, ErrInvalidTransition
	}
	id := w.selectedID
	w.mode = ModeVerifying
	w.progress = nil
	w.logger.Info("verification started", "conflict_id", id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.verifier.Run(func(msg string) {
			w.appendProgress(msg)
		})
		w.finalize(id)
	}()
	return done, nil
}

func (w *Workspace) appendProgress(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode == ModeVerifying {
		w.progress = append(w.progress, msg)
	}
}

// finalize commits the resolution for the conflict that was verifying.
// This is the only path that mutates the registry.
func (w *Workspace) finalize(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != ModeVerifying || w.selectedID != id {
		return
	}
	ts := w.clock()
	if !w.registry.MarkResolved(id, ts) {
		w.logger.Warn("finalize skipped, conflict not open", "conflict_id", id)
	}
	w.draft = nil
	w.mode = ModeResolved
	w.logger.Info("conflict resolved", "conflict_id", id, "resolved_at", ts)
}

// Advance moves on after a resolution: the first remaining open conflict
// in registry order becomes selected in view mode, or the session reaches
// all_cleared with no selection when none remains.
func (w *Workspace) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != ModeResolved {
		return ErrInvalidTransition
	}
	w.progress = nil
	next, ok := w.registry.NextOpen(w.selectedID)
	if !ok {
		w.selectedID = ""
		w.mode = ModeAllCleared
		w.logger.Info("all conflicts cleared")
		return nil
	}
	w.selectedID = next.ID
	w.draft = nil
	w.mode = ModeView
	w.logger.Info("advanced to next conflict", "conflict_id", next.ID)
	return nil
}
