package statemachine

import (
	"context"
	"fmt"

	"github.com/allforone/afo-portal/internal/models"
	"github.com/looplab/fsm"
)

// AdhesionFSM wraps an adhesion request with its state machine
type AdhesionFSM struct {
	request *models.AdhesionRequest
	fsm     *fsm.FSM
}

// NewAdhesionFSM creates a new adhesion request state machine
func NewAdhesionFSM(request *models.AdhesionRequest) *AdhesionFSM {
	afsm := &AdhesionFSM{
		request: request,
	}

	status := request.Statut
	if status == "" {
		status = models.AdhesionPending
	}

	afsm.fsm = fsm.NewFSM(
		status,
		fsm.Events{
			// en_attente → approuvé
			{Name: "approve", Src: []string{models.AdhesionPending}, Dst: models.AdhesionApproved},

			// en_attente → refusé
			{Name: "reject", Src: []string{models.AdhesionPending}, Dst: models.AdhesionRejected},
		},
		fsm.Callbacks{},
	)

	return afsm
}

// Approve transitions the request to approved state
func (a *AdhesionFSM) Approve(ctx context.Context) error {
	if err := a.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("adhesion request cannot be approved in current state %s: %w", a.fsm.Current(), err)
	}

	a.request.Statut = a.fsm.Current()
	return nil
}

// Reject transitions the request to rejected state
func (a *AdhesionFSM) Reject(ctx context.Context) error {
	if err := a.fsm.Event(ctx, "reject"); err != nil {
		return fmt.Errorf("adhesion request cannot be rejected in current state %s: %w", a.fsm.Current(), err)
	}

	a.request.Statut = a.fsm.Current()
	return nil
}

// Current returns the current state
func (a *AdhesionFSM) Current() string {
	return a.fsm.Current()
}

// Can checks if a transition is possible
func (a *AdhesionFSM) Can(event string) bool {
	return a.fsm.Can(event)
}
