package phase

import (
	"fmt"

	"github.com/interpretivelabs/methodd/internal/state"
)

// FoundationMinimum is how many manually coded documents stage 1 requires
// before the collaboration stage opens.
const FoundationMinimum = 10

// TransitionResult reports an applied stage or sub-phase advance.
type TransitionResult struct {
	From  state.Phase `json:"from"`
	To    state.Phase `json:"to"`
	Stage state.Stage `json:"stage"`
}

// Advance moves the project forward to the named stage or stage-2 sub-phase.
// Stage order is strictly forward; entering stage 2 requires the manual
// coding foundation unless stage 1 was already marked complete.
func Advance(store *state.Store, target string) (*TransitionResult, error) {
	var result *TransitionResult
	_, err := store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		from := Current(st)
		switch state.Stage(target) {
		case state.StageCollaboration:
			if st.Progress.CurrentStage != state.StageFoundation {
				return state.JournalEntry{}, state.NewError(state.CodePrecondition,
					"cannot transition to %s from %s", target, st.Progress.CurrentStage)
			}
			if !st.Progress.Stage1Complete && st.Progress.DocumentsManuallyCoded < FoundationMinimum {
				return state.JournalEntry{}, state.NewError(state.CodePrecondition,
					"stage 2 requires %d manually coded documents, have %d",
					FoundationMinimum, st.Progress.DocumentsManuallyCoded)
			}
			st.Progress.Stage1Complete = true
			st.Progress.CurrentStage = state.StageCollaboration

		case state.StageSynthesis:
			if st.Progress.CurrentStage != state.StageCollaboration {
				return state.JournalEntry{}, state.NewError(state.CodePrecondition,
					"cannot transition to %s from %s", target, st.Progress.CurrentStage)
			}
			st.Progress.CurrentStage = state.StageSynthesis

		default:
			if err := advanceSubPhase(st, target); err != nil {
				return state.JournalEntry{}, err
			}
		}

		to := Current(st)
		result = &TransitionResult{From: from, To: to, Stage: st.Progress.CurrentStage}
		return state.JournalEntry{
			Title: "Phase Transition",
			Body:  fmt.Sprintf("Advanced from %s to %s.", from, to),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// advanceSubPhase marks a stage-2 sub-phase in progress. Sub-phases only
// exist inside the collaboration stage.
func advanceSubPhase(st *state.ProjectState, target string) error {
	if st.Progress.CurrentStage != state.StageCollaboration {
		return state.NewError(state.CodePrecondition,
			"sub-phase %s requires the collaboration stage, current stage is %s",
			target, st.Progress.CurrentStage)
	}
	p := &st.Progress.Stage2
	switch state.Phase(target) {
	case state.PhaseSynthesis:
		p.Phase2Synthesis = state.SubPhaseInProgress
	case state.PhasePatterns:
		if p.Phase2Synthesis.Started() {
			p.Phase2Synthesis = state.SubPhaseComplete
		}
		p.Phase3Patterns = state.SubPhaseInProgress
	case state.PhaseCrossWave:
		if p.Phase3Patterns.Started() {
			p.Phase3Patterns = state.SubPhaseComplete
		}
		p.CrossWaveAnalysis = state.SubPhaseInProgress
	default:
		return state.NewError(state.CodeInvalidArgument, "unknown transition target %q", target).
			WithField("target").
			WithAllowed(
				string(state.StageCollaboration), string(state.StageSynthesis),
				string(state.PhaseSynthesis), string(state.PhasePatterns), string(state.PhaseCrossWave),
			)
	}
	return nil
}
