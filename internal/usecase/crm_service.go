package usecase

import (
	"context"
	"fmt"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/crm"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/storage"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/jid"
)

// CrmService serves the kanban: lead listing and stage moves.
type CrmService struct {
	leads storage.LeadRepo
}

// NewCrmService creates a CRM service
func NewCrmService(leads storage.LeadRepo) *CrmService {
	return &CrmService{leads: leads}
}

// Leads returns all CRM cards.
func (s *CrmService) Leads(ctx context.Context) ([]model.Lead, error) {
	return s.leads.FindAll(ctx)
}

// Columns returns the leads bucketed into the fixed pipeline columns.
func (s *CrmService) Columns(ctx context.Context) ([]crm.Column, error) {
	leads, err := s.leads.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return crm.Columns(leads), nil
}

// MoveStage moves a card to another pipeline stage through the board:
// the move applies optimistically, persists exactly once, and a failed
// persist is undone so the returned columns always reflect what is
// actually stored. Moving a card onto its current stage is a no-op.
func (s *CrmService) MoveStage(ctx context.Context, leadID, stage string) ([]crm.Column, error) {
	if !crm.KnownStage(stage) {
		return nil, fmt.Errorf("%w: unknown CRM stage %q", apperrors.ErrBadRequest, stage)
	}
	id := jid.Normalize(leadID)
	if id == "" {
		return nil, fmt.Errorf("%w: lead id is required", apperrors.ErrBadRequest)
	}

	leads, err := s.leads.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	board := crm.NewBoard(leads)
	if !board.StartDrag(id) {
		return nil, fmt.Errorf("%w: no lead found for %s", apperrors.ErrNotFound, id)
	}
	move, ok := board.Drop(stage)
	if !ok {
		return board.Columns(), nil
	}

	if err := s.leads.UpdateStage(ctx, move.LeadID, move.To); err != nil {
		board.Rollback(move)
		return board.Columns(), err
	}
	return board.Columns(), nil
}
