// Package listview holds the two scholarship lists shown next to the globe:
// the per-country search results and the user's saved collection.
//
// Each list is an explicit state machine (Kind plus per-row SaveState) and is
// rendered by pure functions of its View, so state transitions can be tested
// without any presentation layer.
package listview

import (
	"github.com/sakif/scholarship-globe/internal/model"
)

// Kind is the mutually exclusive state of a list container.
type Kind int

const (
	Hidden Kind = iota // no request issued yet; container not revealed
	Loading
	Empty
	Populated
	Failed
)

func (k Kind) String() string {
	switch k {
	case Hidden:
		return "hidden"
	case Loading:
		return "loading"
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// SaveState is the state of one row's Save button. SaveSaved is terminal.
type SaveState int

const (
	SaveUnsaved SaveState = iota
	SaveSaving
	SaveSaved
	SaveFailed
)

func (s SaveState) String() string {
	switch s {
	case SaveUnsaved:
		return "unsaved"
	case SaveSaving:
		return "saving"
	case SaveSaved:
		return "saved"
	case SaveFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Button labels.
const (
	LabelSave   = "Save"
	LabelSaving = "Saving..."
	LabelSaved  = "Saved ✓"
)

// Label is the button text for the state. A failed save reads "Save" again
// so the user can retry.
func (s SaveState) Label() string {
	switch s {
	case SaveSaving:
		return LabelSaving
	case SaveSaved:
		return LabelSaved
	default:
		return LabelSave
	}
}

// Disabled reports whether the button accepts clicks.
func (s SaveState) Disabled() bool {
	return s == SaveSaving || s == SaveSaved
}

// Row is one listing in a list.
type Row struct {
	Record model.Scholarship `json:"record"`
	Save   SaveState         `json:"save"`
}

// View is a snapshot of a list container.
type View struct {
	Seq     uint64 `json:"seq"`
	Kind    Kind   `json:"kind"`
	Query   string `json:"query"`
	Rows    []Row  `json:"rows,omitempty"`
	Message string `json:"message,omitempty"`
}

// Visible reports whether the container has been revealed.
func (v View) Visible() bool { return v.Kind != Hidden }

func (v View) IsLoading() bool { return v.Kind == Loading }
func (v View) IsEmpty() bool   { return v.Kind == Empty }
func (v View) IsError() bool   { return v.Kind == Failed }

// clone copies the rows so callers cannot mutate list state through a View.
func (v View) clone() View {
	if v.Rows != nil {
		v.Rows = append([]Row(nil), v.Rows...)
	}
	return v
}

func rowsFor(records []model.Scholarship) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{Record: r}
	}
	return rows
}
