package cli

import (
	"time"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/engine"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

// JSON views of engine results. Errors become strings.

type itemView struct {
	RelPath         string            `json:"relpath"`
	Name            string            `json:"name"`
	Extension       string            `json:"extension"`
	Size            int64             `json:"size"`
	ModifiedTime    time.Time         `json:"modifiedTime"`
	Status          state.Status      `json:"status"`
	Approved        bool              `json:"approved"`
	Suggestion      *state.Suggestion `json:"suggestion,omitempty"`
	EditedName      string            `json:"editedName,omitempty"`
	EditedFolder    string            `json:"editedFolder,omitempty"`
	DoneDestination string            `json:"doneDestination,omitempty"`
	Preview         *state.Preview    `json:"preview,omitempty"`
}

func newItemView(item *state.FileItem, withPreview bool) itemView {
	v := itemView{
		RelPath:         item.RelPath,
		Name:            item.Name,
		Extension:       item.Extension,
		Size:            item.Size,
		ModifiedTime:    item.ModifiedTime,
		Status:          item.Status,
		Approved:        item.Approved,
		Suggestion:      item.Suggestion,
		EditedName:      item.EditedName,
		EditedFolder:    item.EditedFolder,
		DoneDestination: item.DoneDestination,
	}
	if withPreview {
		v.Preview = item.Preview
	}
	return v
}

func newItemViews(items []*state.FileItem) []itemView {
	out := make([]itemView, 0, len(items))
	for _, item := range items {
		out = append(out, newItemView(item, false))
	}
	return out
}

type suggestOutcomeView struct {
	RelPath    string            `json:"relpath"`
	Suggestion *state.Suggestion `json:"suggestion,omitempty"`
	Approved   bool              `json:"approved"`
	Error      string            `json:"error,omitempty"`
}

type suggestView struct {
	Outcomes  []suggestOutcomeView `json:"outcomes"`
	Failed    int                  `json:"failed"`
	Remaining int                  `json:"remaining"`
}

func newSuggestView(res *engine.SuggestResult) suggestView {
	v := suggestView{
		Outcomes:  make([]suggestOutcomeView, 0, len(res.Outcomes)),
		Failed:    res.Failed(),
		Remaining: res.Remaining,
	}
	for _, o := range res.Outcomes {
		v.Outcomes = append(v.Outcomes, suggestOutcomeView{
			RelPath:    o.RelPath,
			Suggestion: o.Suggestion,
			Approved:   o.Approved,
			Error:      errString(o.Err),
		})
	}
	return v
}

type operationView struct {
	Type     string `json:"type"`
	RelPath  string `json:"relpath"`
	DestRel  string `json:"dest"`
	Conflict string `json:"conflict,omitempty"`
}

type applyOutcomeView struct {
	RelPath string `json:"relpath"`
	DestRel string `json:"dest"`
	OK      bool   `json:"ok"`
	Refused bool   `json:"refused,omitempty"`
	Error   string `json:"error,omitempty"`
}

type applyView struct {
	DryRun     bool               `json:"dryRun"`
	Batch      string             `json:"batch,omitempty"`
	Mode       state.Mode         `json:"mode"`
	Operations []operationView    `json:"operations"`
	Outcomes   []applyOutcomeView `json:"outcomes"`
	Succeeded  int                `json:"succeeded"`
}

func newApplyView(res *engine.ApplyResult) applyView {
	v := applyView{
		DryRun:     res.DryRun,
		Batch:      res.Batch,
		Mode:       res.Plan.Mode,
		Operations: make([]operationView, 0, len(res.Plan.Operations)),
		Outcomes:   make([]applyOutcomeView, 0, len(res.Outcomes)),
		Succeeded:  res.Succeeded(),
	}
	for _, op := range res.Plan.Operations {
		ov := operationView{Type: op.Type, RelPath: op.RelPath, DestRel: op.DestRel}
		if c := res.Plan.ConflictFor(op.RelPath); c != nil {
			ov.Conflict = c.Reason
		}
		v.Operations = append(v.Operations, ov)
	}
	for _, o := range res.Outcomes {
		v.Outcomes = append(v.Outcomes, applyOutcomeView{
			RelPath: o.RelPath,
			DestRel: o.DestRel,
			OK:      o.OK,
			Refused: o.Refused,
			Error:   errString(o.Err),
		})
	}
	return v
}
