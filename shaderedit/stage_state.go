package shaderedit

import (
	"slices"
)

// an edit moves a stage from clean to drafted-valid or drafted-invalid, depending
// on the check of the new draft. A save moves it back to clean.
type StageState string

const (
	StageStateClean          StageState = "clean"
	StageStateDraftedValid   StageState = "drafted-valid"
	StageStateDraftedInvalid StageState = "drafted-invalid"
)

func DeriveStageState(hasDraft bool, hasDiagnostics bool) StageState {
	switch {
	case !hasDraft:
		return StageStateClean
	case hasDiagnostics:
		return StageStateDraftedInvalid
	default:
		return StageStateDraftedValid
	}
}

func (self StageState) HasDraft() bool {
	return self != StageStateClean
}

// the warning indicator
func (self StageState) HasErrors() bool {
	return self == StageStateDraftedInvalid
}

func (self StageState) SaveEnabled() bool {
	return self != StageStateDraftedInvalid
}

// what the stage header, save button and error indicator render
type StageView struct {
	Stage       Stage
	State       StageState
	Diagnostics []Diagnostic
}

func (self StageView) SaveEnabled() bool {
	return self.State.SaveEnabled()
}

type stageStateMachine struct {
	stage       Stage
	program     *ShaderProgram
	diagnostics []Diagnostic
}

func newStageStateMachine(stage Stage, program *ShaderProgram) *stageStateMachine {
	return &stageStateMachine{
		stage:   stage,
		program: program,
	}
}

// records the result of a check of the current draft
func (self *stageStateMachine) checked(diagnostics []Diagnostic) {
	self.diagnostics = diagnostics
}

// the project service accepted the draft. No recompile.
func (self *stageStateMachine) saved() {
	self.program.CommittedText = self.program.DraftText
	self.diagnostics = nil
}

func (self *stageStateMachine) state() StageState {
	return DeriveStageState(self.program.HasDraft(), 0 < len(self.diagnostics))
}

func (self *stageStateMachine) view() StageView {
	state := self.state()
	view := StageView{
		Stage: self.stage,
		State: state,
	}
	if state.HasDraft() {
		view.Diagnostics = slices.Clone(self.diagnostics)
	}
	return view
}
