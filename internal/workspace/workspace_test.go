package workspace

import (
	"testing"
	"time"

	"github.com/todmy/doc-reconciler/internal/draft"
	"github.com/todmy/doc-reconciler/internal/registry"
	"github.com/todmy/doc-reconciler/pkg/models"
)

var testClock = func() time.Time {
	return time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
}

func testConflicts() []models.Conflict {
	detected := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	return []models.Conflict{
		{
			ID:   "c-1",
			Type: models.TypeTemporal,
			Mentions: []models.Mention{
				{ID: "m-1", Text: "old address"},
				{ID: "m-2", Text: "new address"},
			},
			DetectedAt: detected,
		},
		{
			ID:   "c-2",
			Type: models.TypeContradiction,
			Mentions: []models.Mention{
				{ID: "m-3", Text: "214 staff"},
				{ID: "m-4", Text: "198 staff"},
			},
			DetectedAt: detected,
		},
		{
			ID:   "c-3",
			Type: models.TypeIntraDoc,
			Mentions: []models.Mention{
				{ID: "m-5", Text: "due March 31"},
				{ID: "m-6", Text: "due April 30"},
			},
			DetectedAt: detected,
		},
	}
}

func newTestWorkspace(t *testing.T, conflicts []models.Conflict) (*registry.Registry, *Workspace) {
	t.Helper()
	reg := registry.New()
	if err := reg.Load(conflicts); err != nil {
		t.Fatalf("load registry: %v", err)
	}
	ws := New(Config{
		Registry: reg,
		Verifier: NewVerifier(VerifierConfig{
			Steps: []string{"step one", "step two", "step three"},
			Delay: func() time.Duration { return 0 },
		}),
		Clock: testClock,
	})
	return reg, ws
}

// checkInvariant verifies resolvedAt is present iff status is RESOLVED,
// for every conflict, after every transition.
func checkInvariant(t *testing.T, reg *registry.Registry) {
	t.Helper()
	for _, c := range reg.List() {
		resolved := c.Status == models.StatusResolved
		if resolved != (c.ResolvedAt != nil) {
			t.Errorf("conflict %s: status %s but resolvedAt = %v", c.ID, c.Status, c.ResolvedAt)
		}
	}
}

func strPtr(s string) *string { return &s }

func TestSelect(t *testing.T) {
	reg, ws := newTestWorkspace(t, testConflicts())

	if err := ws.Select("c-1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	snap := ws.Snapshot()
	if snap.Mode != ModeView {
		t.Errorf("mode = %s, want view", snap.Mode)
	}
	if snap.Conflict == nil || snap.Conflict.ID != "c-1" {
		t.Errorf("unexpected selection %+v", snap.Conflict)
	}
	checkInvariant(t, reg)

	if err := ws.Select("ghost"); err != ErrUnknownConflict {
		t.Errorf("expected ErrUnknownConflict, got %v", err)
	}
}

func TestSelect_ClearsDraft(t *testing.T) {
	_, ws := newTestWorkspace(t, testConflicts())

	if err := ws.Select("c-1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := ws.StartResolution(); err != nil {
		t.Fatalf("start: %v", err)
	}
	ws.UpdateDraft(draft.Update{SelectedMentionID: strPtr("m-2")})
	if ws.Snapshot().Draft == nil {
		t.Fatal("expected an active draft")
	}

	// Selecting another conflict discards the draft; there is no autosave.
	if err := ws.Select("c-2"); err != nil {
		t.Fatalf("re-select: %v", err)
	}
	snap := ws.Snapshot()
	if snap.Draft != nil {
		t.Error("expected draft to be discarded on selection")
	}
	if snap.Mode != ModeView {
		t.Errorf("mode = %s, want view", snap.Mode)
	}

	// Re-selecting the first conflict starts fresh, the old draft is gone.
	if err := ws.Select("c-1"); err != nil {
		t.Fatalf("re-select: %v", err)
	}
	if ws.Snapshot().Draft != nil {
		t.Error("expected no draft after re-selection")
	}
}

func TestInvalidTransitions(t *testing.T) {
	_, ws := newTestWorkspace(t, testConflicts())

	// Nothing selected yet.
	if err := ws.StartResolution(); err != ErrNoSelection {
		t.Errorf("start without selection: got %v", err)
	}
	if err := ws.Preview(); err != ErrInvalidTransition {
		t.Errorf("preview from view: got %v", err)
	}
	if err := ws.Cancel(); err != ErrInvalidTransition {
		t.Errorf("cancel from view: got %v", err)
	}
	if err := ws.ReturnToEdit(); err != ErrInvalidTransition {
		t.Errorf("return-to-edit from view: got %v", err)
	}
	if _, err := ws.Submit(); err != ErrInvalidTransition {
		t.Errorf("submit from view: got %v", err)
	}
	if err := ws.Advance(); err != ErrInvalidTransition {
		t.Errorf("advance from view: got %v", err)
	}
}

func TestCancel_DiscardsDraft(t *testing.T) {
	_, ws := newTestWorkspace(t, testConflicts())

	ws.Select("c-1")
	ws.StartResolution()
	ws.UpdateDraft(draft.Update{SelectedMentionID: strPtr("m-2")})

	if err := ws.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	snap := ws.Snapshot()
	if snap.Mode != ModeView || snap.Draft != nil {
		t.Errorf("expected view with no draft, got mode=%s draft=%v", snap.Mode, snap.Draft)
	}
}

func TestPreviewGate(t *testing.T) {
	_, ws := newTestWorkspace(t, testConflicts())

	ws.Select("c-2")
	ws.StartResolution()

	ws.UpdateDraft(draft.Update{SelectedMentionID: strPtr("m-3"), Reasoning: strPtr("ok")})
	if err := ws.Preview(); err != ErrDraftIncomplete {
		t.Fatalf("short reasoning: expected ErrDraftIncomplete, got %v", err)
	}
	if ws.Snapshot().Mode != ModeResolve {
		t.Error("failed gate must leave the workspace in resolve")
	}

	ws.UpdateDraft(draft.Update{Reasoning: strPtr("Confirmed via compliance audit")})
	if err := ws.Preview(); err != nil {
		t.Fatalf("complete draft: %v", err)
	}
	if ws.Snapshot().Mode != ModePreview {
		t.Error("expected preview mode")
	}
}

func TestReturnToEdit_RetainsDraft(t *testing.T) {
	_, ws := newTestWorkspace(t, testConflicts())

	ws.Select("c-1")
	ws.StartResolution()
	ws.UpdateDraft(draft.Update{SelectedMentionID: strPtr("m-2")})
	if err := ws.Preview(); err != nil {
		t.Fatalf("preview: %v", err)
	}

	if err := ws.ReturnToEdit(); err != nil {
		t.Fatalf("return to edit: %v", err)
	}
	snap := ws.Snapshot()
	if snap.Mode != ModeResolve {
		t.Errorf("mode = %s, want resolve", snap.Mode)
	}
	if snap.Draft == nil || snap.Draft.Temporal.SelectedMentionID != "m-2" {
		t.Error("draft must be retained unchanged across preview round-trips")
	}
}

func TestFullResolutionFlow(t *testing.T) {
	reg, ws := newTestWorkspace(t, testConflicts())

	if err := ws.Select("c-1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	checkInvariant(t, reg)
	if err := ws.StartResolution(); err != nil {
		t.Fatalf("start: %v", err)
	}
	checkInvariant(t, reg)

	ws.UpdateDraft(draft.Update{SelectedMentionID: strPtr("m-2")})
	if err := ws.Preview(); err != nil {
		t.Fatalf("preview: %v", err)
	}
	checkInvariant(t, reg)

	done, err := ws.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-done
	checkInvariant(t, reg)

	snap := ws.Snapshot()
	if snap.Mode != ModeResolved {
		t.Fatalf("mode = %s, want resolved", snap.Mode)
	}
	if snap.Draft != nil {
		t.Error("draft must be discarded after finalize")
	}
	wantProgress := []string{"step one", "step two", "step three"}
	if len(snap.Progress) != len(wantProgress) {
		t.Fatalf("progress = %v, want %v", snap.Progress, wantProgress)
	}
	for i, msg := range wantProgress {
		if snap.Progress[i] != msg {
			t.Errorf("progress[%d] = %q, want %q", i, snap.Progress[i], msg)
		}
	}

	c, _ := reg.Get("c-1")
	if c.Status != models.StatusResolved {
		t.Errorf("status = %s, want RESOLVED", c.Status)
	}
	if c.ResolvedAt == nil || !c.ResolvedAt.Equal(testClock()) {
		t.Errorf("resolvedAt = %v, want %v", c.ResolvedAt, testClock())
	}
}

func TestSelectDuringVerifying(t *testing.T) {
	release := make(chan struct{})
	reg := registry.New()
	if err := reg.Load(testConflicts()); err != nil {
		t.Fatalf("load: %v", err)
	}
	ws := New(Config{
		Registry: reg,
		Verifier: NewVerifier(VerifierConfig{
			Steps: []string{"only step"},
			Delay: func() time.Duration {
				<-release
				return 0
			},
		}),
		Clock: testClock,
	})

	ws.Select("c-1")
	ws.StartResolution()
	ws.UpdateDraft(draft.Update{SelectedMentionID: strPtr("m-2")})
	if err := ws.Preview(); err != nil {
		t.Fatalf("preview: %v", err)
	}
	done, err := ws.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The run is blocked in its first delay; the workspace is verifying
	// and selection must be refused until the run completes.
	if ws.Snapshot().Mode != ModeVerifying {
		t.Fatal("expected verifying mode")
	}
	if err := ws.Select("c-2"); err != ErrVerifying {
		t.Errorf("expected ErrVerifying, got %v", err)
	}
	if _, err := ws.Submit(); err != ErrInvalidTransition {
		t.Errorf("double submit: expected ErrInvalidTransition, got %v", err)
	}

	close(release)
	<-done
	if ws.Snapshot().Mode != ModeResolved {
		t.Error("expected resolved after the run completes")
	}
	checkInvariant(t, reg)
}

func resolveSelected(t *testing.T, ws *Workspace, mentionID string) {
	t.Helper()
	if err := ws.StartResolution(); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := ws.Snapshot()
	switch snap.Draft.Kind {
	case draft.KindTemporal:
		ws.UpdateDraft(draft.Update{SelectedMentionID: strPtr(mentionID)})
	case draft.KindContradiction:
		ws.UpdateDraft(draft.Update{
			SelectedMentionID: strPtr(mentionID),
			Reasoning:         strPtr("Confirmed via compliance audit"),
		})
	case draft.KindManual:
		ws.UpdateManualEdit(mentionID, "reconciled wording", draft.ActionUpdate)
	}
	if err := ws.Preview(); err != nil {
		t.Fatalf("preview: %v", err)
	}
	done, err := ws.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-done
}

func TestAdvance_NextOpenConflict(t *testing.T) {
	// Three conflicts, two open: resolving the first open one must advance
	// to the remaining open conflict, not all_cleared.
	reg, ws := newTestWorkspace(t, testConflicts())
	reg.MarkResolved("c-2", testClock())

	ws.Select("c-1")
	resolveSelected(t, ws, "m-2")
	checkInvariant(t, reg)

	if err := ws.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	snap := ws.Snapshot()
	if snap.Mode != ModeView {
		t.Errorf("mode = %s, want view", snap.Mode)
	}
	if snap.Conflict == nil || snap.Conflict.ID != "c-3" {
		t.Errorf("expected c-3 selected, got %+v", snap.Conflict)
	}
}

func TestAdvance_AllCleared(t *testing.T) {
	// A single open conflict: resolving it and advancing reaches
	// all_cleared with no selection.
	conflicts := testConflicts()[:1]
	reg, ws := newTestWorkspace(t, conflicts)

	ws.Select("c-1")
	resolveSelected(t, ws, "m-2")

	if err := ws.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	snap := ws.Snapshot()
	if snap.Mode != ModeAllCleared {
		t.Errorf("mode = %s, want all_cleared", snap.Mode)
	}
	if snap.Conflict != nil {
		t.Errorf("expected no selection, got %+v", snap.Conflict)
	}
	checkInvariant(t, reg)
	if reg.OpenCount() != 0 {
		t.Error("expected no open conflicts")
	}
}

func TestStartManual_FromResolve(t *testing.T) {
	_, ws := newTestWorkspace(t, testConflicts())

	ws.Select("c-1")
	ws.StartResolution()
	if ws.Snapshot().Draft.Kind != draft.KindTemporal {
		t.Fatal("expected a temporal quick-resolve draft")
	}

	// Switching to the manual-override path replaces the draft.
	if err := ws.StartManual(); err != nil {
		t.Fatalf("start manual: %v", err)
	}
	snap := ws.Snapshot()
	if snap.Draft.Kind != draft.KindManual {
		t.Errorf("kind = %s, want manual", snap.Draft.Kind)
	}
	if len(snap.Draft.Manual.Edits) != 2 {
		t.Errorf("expected 2 pre-populated edits, got %d", len(snap.Draft.Manual.Edits))
	}
}

func TestStart_AlreadyResolved(t *testing.T) {
	reg, ws := newTestWorkspace(t, testConflicts())
	reg.MarkResolved("c-1", testClock())

	if err := ws.Select("c-1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := ws.StartResolution(); err != ErrAlreadyResolved {
		t.Errorf("expected ErrAlreadyResolved, got %v", err)
	}
}

func TestUpdateDraft_NoActiveDraft(t *testing.T) {
	_, ws := newTestWorkspace(t, testConflicts())

	ws.Select("c-1")
	// Silent no-ops: no draft exists yet.
	ws.UpdateDraft(draft.Update{SelectedMentionID: strPtr("m-2")})
	ws.UpdateManualEdit("m-1", "text", draft.ActionUpdate)

	if ws.Snapshot().Draft != nil {
		t.Error("updates without an active draft must not create one")
	}
}

func TestManualFlow_IntraDoc(t *testing.T) {
	reg, ws := newTestWorkspace(t, testConflicts())

	ws.Select("c-3")
	if err := ws.StartManual(); err != nil {
		t.Fatalf("start manual: %v", err)
	}

	// Zero modifications: the gate must reject.
	if err := ws.Preview(); err != ErrDraftIncomplete {
		t.Fatalf("expected ErrDraftIncomplete, got %v", err)
	}

	ws.UpdateManualEdit("m-6", "due March 31, per Schedule of Work", draft.ActionUpdate)
	if err := ws.Preview(); err != nil {
		t.Fatalf("preview: %v", err)
	}
	done, err := ws.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-done

	c, _ := reg.Get("c-3")
	if c.Status != models.StatusResolved {
		t.Errorf("status = %s, want RESOLVED", c.Status)
	}
	checkInvariant(t, reg)
}
