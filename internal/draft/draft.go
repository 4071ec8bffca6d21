// Package draft models the reviewer's in-progress resolution decision for
// a single conflict. A draft is unsaved working state: it is discarded when
// the reviewer selects another conflict and it never outlives its
// conflict's resolution.
package draft

import (
	"github.com/todmy/doc-reconciler/pkg/models"
)

// SelectionNeither is the sentinel for a contradiction where the reviewer
// judges neither mention correct.
const SelectionNeither = "NEITHER"

// MaxEditLength bounds the revised text of a manual edit, in runes.
const MaxEditLength = 1000

// EditAction tags the intent behind a manual edit
type EditAction string

const (
	ActionUpdate  EditAction = "UPDATE"
	ActionClarify EditAction = "CLARIFY"
	ActionError   EditAction = "ERROR"
	ActionKeep    EditAction = "KEEP"
)

// ValidAction reports whether a belongs to the closed edit action set
func ValidAction(a EditAction) bool {
	switch a {
	case ActionUpdate, ActionClarify, ActionError, ActionKeep:
		return true
	}
	return false
}

// Kind discriminates the decision variant a draft carries. Quick-resolve
// drafts take the kind of their conflict type; the manual-override path
// uses KindManual regardless of conflict type.
type Kind string

const (
	KindTemporal      Kind = "temporal"
	KindContradiction Kind = "contradiction"
	KindManual        Kind = "manual"
)

// MentionLookup resolves mention ids to their registry records. Dirty
// state is always recomputed against the registry's original text, never
// against text cached in the draft.
type MentionLookup interface {
	Mention(id string) (models.Mention, bool)
}

// ManualEdit is a per-mention override of the verbatim text
type ManualEdit struct {
	MentionID string     `json:"mention_id"`
	Text      string     `json:"text"`
	Action    EditAction `json:"action"`
	IsDirty   bool       `json:"is_dirty"`
}

// TemporalDecision selects which mention reflects the current state of the
// world and whether superseded mentions stay visible downstream.
type TemporalDecision struct {
	SelectedMentionID string `json:"selected_mention_id"`
	KeepHistory       bool   `json:"keep_history"`
}

// ContradictionDecision picks the correct mention (or SelectionNeither)
// with a written justification.
type ContradictionDecision struct {
	SelectedMentionID string `json:"selected_mention_id"`
	Reasoning         string `json:"reasoning"`
}

// ManualDecision carries per-mention text overrides
type ManualDecision struct {
	Edits map[string]ManualEdit `json:"edits"`
}

// Draft is the in-progress decision for exactly one conflict. Exactly one
// decision variant is non-nil, matching Kind; the split keeps temporal,
// contradiction, and manual fields from bleeding into each other.
type Draft struct {
	ConflictID    string                 `json:"conflict_id"`
	Kind          Kind                   `json:"kind"`
	Temporal      *TemporalDecision      `json:"temporal,omitempty"`
	Contradiction *ContradictionDecision `json:"contradiction,omitempty"`
	Manual        *ManualDecision        `json:"manual,omitempty"`
}

// Update carries a partial draft mutation. Nil fields are left untouched;
// fields that do not apply to the draft's variant are ignored.
type Update struct {
	SelectedMentionID *string `json:"selected_mention_id,omitempty"`
	KeepHistory       *bool   `json:"keep_history,omitempty"`
	Reasoning         *string `json:"reasoning,omitempty"`
}

// New creates an empty quick-resolve draft for the conflict: no selections
// made, no edits present.
func New(c models.Conflict) *Draft {
	d := &Draft{ConflictID: c.ID}
	switch c.Type {
	case models.TypeTemporal:
		d.Kind = KindTemporal
		d.Temporal = &TemporalDecision{}
	case models.TypeContradiction:
		d.Kind = KindContradiction
		d.Contradiction = &ContradictionDecision{}
	default:
		d.Kind = KindManual
		d.Manual = &ManualDecision{Edits: make(map[string]ManualEdit)}
	}
	return d
}

// NewManual creates a manual-override draft pre-populated with one clean
// edit per mention: text equal to the original, action UPDATE. This is the
// entry point for INTRA_DOC conflicts and for manually overriding a
// temporal or contradiction conflict.
func NewManual(c models.Conflict) *Draft {
	edits := make(map[string]ManualEdit, len(c.Mentions))
	for _, m := range c.Mentions {
		edits[m.ID] = ManualEdit{
			MentionID: m.ID,
			Text:      m.Text,
			Action:    ActionUpdate,
			IsDirty:   false,
		}
	}
	return &Draft{
		ConflictID: c.ID,
		Kind:       KindManual,
		Manual:     &ManualDecision{Edits: edits},
	}
}

// Apply shallow-merges the non-nil fields of u into the draft's decision
// variant. Inapplicable fields and a nil draft are silent no-ops; actions
// arriving outside their mode are normal in a UI-driven model and must not
// corrupt state.
func (d *Draft) Apply(u Update) {
	if d == nil {
		return
	}
	switch d.Kind {
	case KindTemporal:
		if u.SelectedMentionID != nil {
			d.Temporal.SelectedMentionID = *u.SelectedMentionID
		}
		if u.KeepHistory != nil {
			d.Temporal.KeepHistory = *u.KeepHistory
		}
	case KindContradiction:
		if u.SelectedMentionID != nil {
			d.Contradiction.SelectedMentionID = *u.SelectedMentionID
		}
		if u.Reasoning != nil {
			d.Contradiction.Reasoning = *u.Reasoning
		}
	}
}

// SetManualEdit replaces the manual edit for a mention. The dirty flag is
// recomputed from the registry's original text on every call. A nil draft,
// a non-manual draft, or an unknown mention degrades to a no-op or a clean
// edit rather than failing.
func (d *Draft) SetManualEdit(lookup MentionLookup, mentionID, text string, action EditAction) {
	if d == nil || d.Manual == nil {
		return
	}
	if runes := []rune(text); len(runes) > MaxEditLength {
		text = string(runes[:MaxEditLength])
	}
	dirty := false
	if m, ok := lookup.Mention(mentionID); ok {
		dirty = text != m.Text
	}
	d.Manual.Edits[mentionID] = ManualEdit{
		MentionID: mentionID,
		Text:      text,
		Action:    action,
		IsDirty:   dirty,
	}
}

// Complete reports whether the draft meets its variant's validation gate
// and may proceed to preview: a temporal selection made, a contradiction
// selection with at least 20 characters of reasoning, or at least one
// dirty manual edit.
func (d *Draft) Complete() bool {
	if d == nil {
		return false
	}
	switch d.Kind {
	case KindTemporal:
		return d.Temporal.SelectedMentionID != ""
	case KindContradiction:
		return d.Contradiction.SelectedMentionID != "" &&
			len([]rune(d.Contradiction.Reasoning)) >= 20
	case KindManual:
		for _, e := range d.Manual.Edits {
			if e.IsDirty {
				return true
			}
		}
	}
	return false
}

// DirtyEdits returns the manual edits whose text differs from the
// original, in no particular order. Nil for non-manual drafts.
func (d *Draft) DirtyEdits() []ManualEdit {
	if d == nil || d.Manual == nil {
		return nil
	}
	var out []ManualEdit
	for _, e := range d.Manual.Edits {
		if e.IsDirty {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy so callers can hand out draft state without
// exposing internal maps.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	out := &Draft{ConflictID: d.ConflictID, Kind: d.Kind}
	if d.Temporal != nil {
		t := *d.Temporal
		out.Temporal = &t
	}
	if d.Contradiction != nil {
		c := *d.Contradiction
		out.Contradiction = &c
	}
	if d.Manual != nil {
		edits := make(map[string]ManualEdit, len(d.Manual.Edits))
		for k, v := range d.Manual.Edits {
			edits[k] = v
		}
		out.Manual = &ManualDecision{Edits: edits}
	}
	return out
}
