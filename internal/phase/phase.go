// Package phase derives the totally ordered current phase from the
// document's progress fields and decides rule relaxation against it.
package phase

import "github.com/interpretivelabs/methodd/internal/state"

// Order is the fixed phase sequence. Relaxation is monotonic in it: once the
// current phase reaches a rule's relaxes_at the rule stays relaxed for every
// later phase.
var Order = []state.Phase{
	state.PhaseFoundation,
	state.PhaseParallelStreams,
	state.PhaseSynthesis,
	state.PhasePatterns,
	state.PhaseCrossWave,
	state.PhaseFinalSynthesis,
}

// Index returns the position of p in the ordered sequence, or false when p
// is not a known phase.
func Index(p state.Phase) (int, bool) {
	for i, candidate := range Order {
		if candidate == p {
			return i, true
		}
	}
	return 0, false
}

// Valid reports whether p is a member of the ordered sequence.
func Valid(p state.Phase) bool {
	_, ok := Index(p)
	return ok
}

// Current inspects stage and sub-phase markers with most-advanced-first
// precedence. Unrecognized or missing values resolve to the earliest phase;
// the derivation never over-advances.
func Current(st *state.ProjectState) state.Phase {
	if st == nil {
		return state.PhaseFoundation
	}
	switch st.Progress.CurrentStage {
	case state.StageFoundation:
		return state.PhaseFoundation
	case state.StageCollaboration:
		p := st.Progress.Stage2
		if p.CrossWaveAnalysis.Started() {
			return state.PhaseCrossWave
		}
		if p.Phase3Patterns.Started() {
			return state.PhasePatterns
		}
		if p.Phase2Synthesis.Started() {
			return state.PhaseSynthesis
		}
		return state.PhaseParallelStreams
	case state.StageSynthesis:
		return state.PhaseFinalSynthesis
	default:
		return state.PhaseFoundation
	}
}

// ShouldRelax reports whether a rule with the given relaxes_at is relaxed at
// the current phase. Values outside the ordered sequence never relax
// (closed-world, fail-safe-active).
func ShouldRelax(relaxesAt, current state.Phase) bool {
	ri, ok := Index(relaxesAt)
	if !ok {
		return false
	}
	ci, ok := Index(current)
	if !ok {
		return false
	}
	return ci >= ri
}
