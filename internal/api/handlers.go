package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/todmy/doc-reconciler/internal/diff"
	"github.com/todmy/doc-reconciler/internal/draft"
	"github.com/todmy/doc-reconciler/internal/export"
	"github.com/todmy/doc-reconciler/internal/workspace"
	"github.com/todmy/doc-reconciler/pkg/models"
)

// WorkspaceResponse is the read model of the current session state
type WorkspaceResponse struct {
	Mode      workspace.Mode   `json:"mode"`
	Conflict  *models.Conflict `json:"conflict,omitempty"`
	Draft     *draft.Draft     `json:"draft,omitempty"`
	Progress  []string         `json:"progress,omitempty"`
	OpenCount int              `json:"open_count"`
}

// MentionChange pairs a mention with the diff of its manual edit
type MentionChange struct {
	MentionID string           `json:"mention_id"`
	Action    draft.EditAction `json:"action"`
	Diff      diff.Result      `json:"diff"`
}

// PreviewResponse renders the effect of the active draft
type PreviewResponse struct {
	Conflict *models.Conflict `json:"conflict"`
	Draft    *draft.Draft     `json:"draft"`
	Changes  []MentionChange  `json:"changes"`
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListConflicts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleGetConflict(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conflictID")
	c, ok := s.registry.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "conflict not found")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.workspaceResponse(s.workspace.Snapshot()))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConflictID string `json:"conflict_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ConflictID == "" {
		respondError(w, http.StatusBadRequest, "conflict_id is required")
		return
	}

	if err := s.workspace.Select(req.ConflictID); err != nil {
		s.respondWorkspaceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.workspaceResponse(s.workspace.Snapshot()))
}

func (s *Server) handleStartResolution(w http.ResponseWriter, r *http.Request) {
	if err := s.workspace.StartResolution(); err != nil {
		s.respondWorkspaceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.workspaceResponse(s.workspace.Snapshot()))
}

func (s *Server) handleStartManual(w http.ResponseWriter, r *http.Request) {
	if err := s.workspace.StartManual(); err != nil {
		s.respondWorkspaceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.workspaceResponse(s.workspace.Snapshot()))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.workspace.Cancel(); err != nil {
		s.respondWorkspaceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.workspaceResponse(s.workspace.Snapshot()))
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var u draft.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.workspace.UpdateDraft(u)
	respondJSON(w, http.StatusOK, s.workspaceResponse(s.workspace.Snapshot()))
}

func (s *Server) handleUpdateManualEdit(w http.ResponseWriter, r *http.Request) {
	mentionID := chi.URLParam(r, "mentionID")

	var req struct {
		Text   string           `json:"text"`
		Action draft.EditAction `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !draft.ValidAction(req.Action) {
		respondError(w, http.StatusBadRequest, "invalid edit action")
		return
	}

	s.workspace.UpdateManualEdit(mentionID, req.Text, req.Action)
	respondJSON(w, http.StatusOK, s.workspaceResponse(s.workspace.Snapshot()))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if err := s.workspace.Preview(); err != nil {
		s.respondWorkspaceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.workspaceResponse(s.workspace.Snapshot()))
}

func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	snap := s.workspace.Snapshot()
	if snap.Mode != workspace.ModePreview {
		respondError(w, http.StatusConflict, "workspace is not in preview")
		return
	}

	resp := PreviewResponse{
		Conflict: snap.Conflict,
		Draft:    snap.Draft,
		Changes:  []MentionChange{},
	}
	// Diff dirty manual edits against registry text, in mention display
	// order so rendering is stable.
	dirty := make(map[string]draft.ManualEdit)
	for _, e := range snap.Draft.DirtyEdits() {
		dirty[e.MentionID] = e
	}
	if snap.Conflict != nil {
		for _, m := range snap.Conflict.Mentions {
			e, ok := dirty[m.ID]
			if !ok {
				continue
			}
			original := e.Text
			if orig, found := s.registry.Mention(m.ID); found {
				original = orig.Text
			}
			resp.Changes = append(resp.Changes, MentionChange{
				MentionID: m.ID,
				Action:    e.Action,
				Diff:      diff.Compute(original, e.Text),
			})
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReturnToEdit(w http.ResponseWriter, r *http.Request) {
	if err := s.workspace.ReturnToEdit(); err != nil {
		s.respondWorkspaceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.workspaceResponse(s.workspace.Snapshot()))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if _, err := s.workspace.Submit(); err != nil {
		s.respondWorkspaceError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, s.workspaceResponse(s.workspace.Snapshot()))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if err := s.workspace.Advance(); err != nil {
		s.respondWorkspaceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.workspaceResponse(s.workspace.Snapshot()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc := export.Build(s.registry.List(), time.Now())
	data, err := export.Marshal(doc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="conflict-audit.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) workspaceResponse(snap workspace.Snapshot) WorkspaceResponse {
	return WorkspaceResponse{
		Mode:      snap.Mode,
		Conflict:  snap.Conflict,
		Draft:     snap.Draft,
		Progress:  snap.Progress,
		OpenCount: s.registry.OpenCount(),
	}
}

func (s *Server) respondWorkspaceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workspace.ErrUnknownConflict):
		respondError(w, http.StatusNotFound, "conflict not found")
	case errors.Is(err, workspace.ErrNoSelection):
		respondError(w, http.StatusBadRequest, "no conflict selected")
	case errors.Is(err, workspace.ErrDraftIncomplete):
		respondError(w, http.StatusUnprocessableEntity, "draft is incomplete")
	case errors.Is(err, workspace.ErrVerifying),
		errors.Is(err, workspace.ErrInvalidTransition),
		errors.Is(err, workspace.ErrAlreadyResolved):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
