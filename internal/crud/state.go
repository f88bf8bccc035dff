// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crud

import "github.com/taibuivan/scholar/internal/platform/apperr"

// ErrBusy is returned when an operation starts while a submission is in flight.
var ErrBusy = apperr.Conflict("Another change is still being saved. Please wait.")

// Phase is the coarse state of a panel.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseListing
	PhaseEditing
	PhaseSubmitting
	PhaseError
)

func (phase Phase) String() string {
	switch phase {
	case PhaseIdle:
		return "idle"
	case PhaseListing:
		return "listing"
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// State is Idle, Listing, Editing(ID), Submitting or Error(Reason).
//
// ID survives Submitting and Error so that a failed edit can return to the
// record it was editing.
type State struct {
	Phase  Phase
	ID     string
	Reason string
}

// Idle is the state of a fresh panel.
func Idle() State { return State{Phase: PhaseIdle} }

func (state State) String() string {
	switch state.Phase {
	case PhaseEditing:
		return "editing(" + state.ID + ")"
	case PhaseError:
		return "error(" + state.Reason + ")"
	}
	return state.Phase.String()
}

// Busy reports whether a submission is in flight.
func (state State) Busy() bool {
	return state.Phase == PhaseSubmitting
}

// Begin enters Submitting, or fails with [ErrBusy] when already there.
func (state State) Begin() (State, error) {
	if state.Busy() {
		return state, ErrBusy
	}
	return State{Phase: PhaseSubmitting, ID: state.ID}, nil
}

// Listed is the state after a list refresh, a successful add or a delete.
func (state State) Listed() State {
	return State{Phase: PhaseListing}
}

// Edit is the state after selecting id or saving it.
func (state State) Edit(id string) State {
	return State{Phase: PhaseEditing, ID: id}
}

// Fail records reason, keeping the id being edited.
func (state State) Fail(reason string) State {
	return State{Phase: PhaseError, ID: state.ID, Reason: reason}
}

// Editing reports whether the panel holds a selected record.
func (state State) Editing() bool {
	return state.Phase == PhaseEditing
}
