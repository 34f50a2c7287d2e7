package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

func leadFixture(id, stage string) model.Lead {
	return model.Lead{ID: id, Name: "Lead " + id, Stage: stage}
}

func TestColumns_Bucketing(t *testing.T) {
	leads := []model.Lead{
		leadFixture("5511999990001@c.us", StageNegotiation),
		leadFixture("5511999990002@c.us", StageNew),
		leadFixture("5511999990003@c.us", "archived"),
		leadFixture("5511999990004@c.us", ""),
		leadFixture("5511999990005@c.us", StageActive),
	}

	columns := Columns(leads)
	require.Len(t, columns, 4)

	assert.Equal(t, "Novo Contato", columns[0].Stage.Title)
	assert.Equal(t, "Em Negociação", columns[1].Stage.Title)
	assert.Equal(t, "Aguardando Pagamento", columns[2].Stage.Title)
	assert.Equal(t, "Cliente Ativo", columns[3].Stage.Title)

	// Unknown and empty stages fall into the first column.
	require.Len(t, columns[0].Leads, 3)
	assert.Equal(t, "5511999990002@c.us", columns[0].Leads[0].ID)
	assert.Equal(t, "5511999990003@c.us", columns[0].Leads[1].ID)
	assert.Equal(t, "5511999990004@c.us", columns[0].Leads[2].ID)

	require.Len(t, columns[1].Leads, 1)
	assert.Empty(t, columns[2].Leads)
	require.Len(t, columns[3].Leads, 1)
}

func TestColumns_EmptyInput(t *testing.T) {
	columns := Columns(nil)
	require.Len(t, columns, 4)
	for _, col := range columns {
		assert.NotNil(t, col.Leads)
		assert.Empty(t, col.Leads)
	}
}

func TestBoard_DropMovesLead(t *testing.T) {
	board := NewBoard([]model.Lead{
		leadFixture("a@c.us", StageNew),
		leadFixture("b@c.us", StageNew),
	})

	require.True(t, board.StartDrag("a@c.us"))
	board.DragOver(StagePayment)
	assert.Equal(t, StagePayment, board.DropTarget())

	move, ok := board.Drop(StagePayment)
	require.True(t, ok)
	assert.Equal(t, Move{LeadID: "a@c.us", From: StageNew, To: StagePayment}, move)

	columns := board.Columns()
	require.Len(t, columns[0].Leads, 1)
	assert.Equal(t, "b@c.us", columns[0].Leads[0].ID)
	require.Len(t, columns[2].Leads, 1)
	assert.Equal(t, StagePayment, columns[2].Leads[0].Stage)

	// The gesture is consumed.
	assert.Empty(t, board.DropTarget())
}

func TestBoard_DropOnSourceIsNoop(t *testing.T) {
	board := NewBoard([]model.Lead{leadFixture("a@c.us", StageNegotiation)})

	require.True(t, board.StartDrag("a@c.us"))
	move, ok := board.Drop(StageNegotiation)

	assert.False(t, ok)
	assert.Zero(t, move)
	require.Len(t, board.Columns()[1].Leads, 1)
}

func TestBoard_DropWithoutDrag(t *testing.T) {
	board := NewBoard([]model.Lead{leadFixture("a@c.us", StageNew)})

	_, ok := board.Drop(StageActive)
	assert.False(t, ok)
	require.Len(t, board.Columns()[0].Leads, 1)
}

func TestBoard_StartDragUnknownLead(t *testing.T) {
	board := NewBoard(nil)
	assert.False(t, board.StartDrag("missing@c.us"))
}

func TestBoard_RollbackRestoresStage(t *testing.T) {
	board := NewBoard([]model.Lead{leadFixture("a@c.us", StageNew)})

	require.True(t, board.StartDrag("a@c.us"))
	move, ok := board.Drop(StageActive)
	require.True(t, ok)
	require.Len(t, board.Columns()[3].Leads, 1)

	board.Rollback(move)

	columns := board.Columns()
	require.Len(t, columns[0].Leads, 1)
	assert.Equal(t, StageNew, columns[0].Leads[0].Stage)
	assert.Empty(t, columns[3].Leads)
}

func TestKnownStage(t *testing.T) {
	assert.True(t, KnownStage(StageNew))
	assert.True(t, KnownStage(StageActive))
	assert.False(t, KnownStage("done"))
	assert.False(t, KnownStage(""))
}
