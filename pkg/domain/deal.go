package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DealStage is the pipeline position of a deal.
type DealStage string

const (
	StageLead      DealStage = "lead"
	StageQualified DealStage = "qualified"
	StageProposal  DealStage = "proposal"
	StageWon       DealStage = "won"
	StageLost      DealStage = "lost"
)

// stageTransitions lists the allowed forward moves. Won and lost are
// terminal; a deal can be marked lost from any open stage.
var stageTransitions = map[DealStage][]DealStage{
	StageLead:      {StageQualified, StageLost},
	StageQualified: {StageProposal, StageLost},
	StageProposal:  {StageWon, StageLost},
}

// Valid reports whether s is a known stage.
func (s DealStage) Valid() bool {
	switch s {
	case StageLead, StageQualified, StageProposal, StageWon, StageLost:
		return true
	}
	return false
}

// Deal represents a sales opportunity moving through the pipeline.
// AmountCents avoids floating point for money.
type Deal struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Title       string
	AmountCents int64
	Stage       DealStage
	ContactID   *uuid.UUID
	CompanyID   *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// AdvanceTo moves the deal to the given stage, rejecting moves the
// pipeline does not allow.
func (d *Deal) AdvanceTo(next DealStage) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidStageTransition, next)
	}
	for _, allowed := range stageTransitions[d.Stage] {
		if next == allowed {
			d.Stage = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidStageTransition, d.Stage, next)
}

// Open reports whether the deal is still in play.
func (d *Deal) Open() bool {
	return d.Stage != StageWon && d.Stage != StageLost
}
