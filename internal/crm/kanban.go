// Package crm maintains the WhatsApp lead pipeline as a fixed-stage
// kanban board with drag-and-drop moves. The board is an in-memory
// projection of the lead list; persistence of a stage change is the
// caller's job, and a failed persist is undone through the typed
// rollback move the board hands back.
package crm

import (
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

// Pipeline stage keys.
const (
	StageNew         = "new"
	StageNegotiation = "negotiation"
	StagePayment     = "payment"
	StageActive      = "active"
)

// Stage is one pipeline column definition.
type Stage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Stages returns the fixed pipeline in board order. The first stage
// doubles as the default bucket for unknown or missing stage keys.
func Stages() []Stage {
	return []Stage{
		{ID: StageNew, Title: "Novo Contato"},
		{ID: StageNegotiation, Title: "Em Negociação"},
		{ID: StagePayment, Title: "Aguardando Pagamento"},
		{ID: StageActive, Title: "Cliente Ativo"},
	}
}

// KnownStage reports whether the key names a pipeline stage.
func KnownStage(stage string) bool {
	for _, s := range Stages() {
		if s.ID == stage {
			return true
		}
	}
	return false
}

// Column is one rendered kanban column.
type Column struct {
	Stage Stage        `json:"stage"`
	Leads []model.Lead `json:"leads"`
}

// Columns buckets leads into the fixed stages. Leads with an
// unrecognized or empty stage land in the first column.
func Columns(leads []model.Lead) []Column {
	stages := Stages()
	columns := make([]Column, len(stages))
	index := make(map[string]int, len(stages))
	for i, stage := range stages {
		columns[i] = Column{Stage: stage, Leads: []model.Lead{}}
		index[stage.ID] = i
	}

	for _, lead := range leads {
		i, ok := index[lead.Stage]
		if !ok {
			i = 0
		}
		columns[i].Leads = append(columns[i].Leads, lead)
	}

	return columns
}

// Move describes a completed stage transition, kept around so a failed
// persistence call can be rolled back deterministically.
type Move struct {
	LeadID string
	From   string
	To     string
}

// Board tracks the local kanban state plus the active drag gesture.
type Board struct {
	columns    []Column
	dragLead   string
	dragSource string
	dropTarget string
}

// NewBoard buckets the leads and returns a fresh board.
func NewBoard(leads []model.Lead) *Board {
	return &Board{columns: Columns(leads)}
}

// Columns returns the current column state.
func (b *Board) Columns() []Column {
	return b.columns
}

// StartDrag records the dragged lead and its source column. Unknown
// lead ids leave the board untouched.
func (b *Board) StartDrag(leadID string) bool {
	for _, col := range b.columns {
		for _, lead := range col.Leads {
			if lead.ID == leadID {
				b.dragLead = leadID
				b.dragSource = col.Stage.ID
				return true
			}
		}
	}
	return false
}

// DragOver marks the single active drop target.
func (b *Board) DragOver(stageID string) {
	b.dropTarget = stageID
}

// DropTarget returns the currently highlighted column, if any.
func (b *Board) DropTarget() string {
	return b.dropTarget
}

// Drop completes the gesture. Dropping onto the source column is a
// no-op and returns ok=false: no local change, no persistence call.
// Otherwise the lead moves optimistically and the returned Move is what
// the caller must persist (exactly one call, destination stage key).
func (b *Board) Drop(stageID string) (Move, bool) {
	defer func() {
		b.dragLead = ""
		b.dragSource = ""
		b.dropTarget = ""
	}()

	if b.dragLead == "" || stageID == b.dragSource {
		return Move{}, false
	}

	move := Move{LeadID: b.dragLead, From: b.dragSource, To: stageID}
	if !b.apply(move.LeadID, move.From, move.To) {
		return Move{}, false
	}
	return move, true
}

// Rollback undoes a previously applied move after a failed persistence
// call, without refetching the lead list.
func (b *Board) Rollback(move Move) {
	b.apply(move.LeadID, move.To, move.From)
}

func (b *Board) apply(leadID, from, to string) bool {
	fromIdx, toIdx := -1, -1
	for i, col := range b.columns {
		if col.Stage.ID == from {
			fromIdx = i
		}
		if col.Stage.ID == to {
			toIdx = i
		}
	}
	if fromIdx < 0 || toIdx < 0 {
		return false
	}

	for i, lead := range b.columns[fromIdx].Leads {
		if lead.ID != leadID {
			continue
		}
		moved := lead
		moved.Stage = to
		b.columns[fromIdx].Leads = append(b.columns[fromIdx].Leads[:i], b.columns[fromIdx].Leads[i+1:]...)
		b.columns[toIdx].Leads = append(b.columns[toIdx].Leads, moved)
		return true
	}
	return false
}
