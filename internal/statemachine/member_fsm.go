package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/allforone/afo-portal/internal/models"
	"github.com/looplab/fsm"
)

// ErrUnknownStatus is returned when a target status has no transition.
var ErrUnknownStatus = errors.New("unknown member status")

// Member status events
const (
	EventSuspend  = "suspend"
	EventActivate = "activate"
	EventBan      = "ban"
)

// MemberFSM wraps a member with its status state machine
type MemberFSM struct {
	member *models.Member
	fsm    *fsm.FSM
}

// NewMemberFSM creates a new member status state machine
func NewMemberFSM(member *models.Member) *MemberFSM {
	mfsm := &MemberFSM{
		member: member,
	}

	mfsm.fsm = fsm.NewFSM(
		member.Statu,
		fsm.Events{
			// actif → suspendu
			{Name: EventSuspend, Src: []string{models.StatusActive}, Dst: models.StatusSuspended},

			// suspendu/bani → actif
			{Name: EventActivate, Src: []string{models.StatusSuspended, models.StatusBanned}, Dst: models.StatusActive},

			// actif/suspendu → bani
			{Name: EventBan, Src: []string{models.StatusActive, models.StatusSuspended}, Dst: models.StatusBanned},
		},
		fsm.Callbacks{},
	)

	return mfsm
}

// EventFor returns the event that leads to the target status.
func EventFor(target string) (string, error) {
	switch target {
	case models.StatusSuspended:
		return EventSuspend, nil
	case models.StatusActive:
		return EventActivate, nil
	case models.StatusBanned:
		return EventBan, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, target)
}

// Transition moves the member to the target status
func (m *MemberFSM) Transition(ctx context.Context, target string) error {
	event, err := EventFor(target)
	if err != nil {
		return err
	}

	if !m.fsm.Can(event) {
		return fmt.Errorf("member cannot move from %q to %q", m.member.Statu, target)
	}

	if err := m.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("failed to %s member: %w", event, err)
	}

	m.member.Statu = m.fsm.Current()
	return nil
}

// Current returns the current state
func (m *MemberFSM) Current() string {
	return m.fsm.Current()
}

// Can checks if a transition is possible
func (m *MemberFSM) Can(event string) bool {
	return m.fsm.Can(event)
}

// AvailableTargets lists the statuses reachable from the current one.
func (m *MemberFSM) AvailableTargets() []string {
	var targets []string
	for _, s := range []string{models.StatusActive, models.StatusSuspended, models.StatusBanned} {
		if event, _ := EventFor(s); m.fsm.Can(event) {
			targets = append(targets, s)
		}
	}
	return targets
}
