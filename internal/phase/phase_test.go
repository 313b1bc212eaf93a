package phase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/interpretivelabs/methodd/internal/state"
)

func TestCurrent_MostAdvancedMarkerWins(t *testing.T) {
	tests := []struct {
		name  string
		stage state.Stage
		sub   state.Stage2Progress
		want  state.Phase
	}{
		{"foundation stage", state.StageFoundation, state.Stage2Progress{}, state.PhaseFoundation},
		{"stage2 no markers", state.StageCollaboration, state.Stage2Progress{}, state.PhaseParallelStreams},
		{"synthesis in progress", state.StageCollaboration,
			state.Stage2Progress{Phase2Synthesis: state.SubPhaseInProgress}, state.PhaseSynthesis},
		{"patterns beats synthesis", state.StageCollaboration,
			state.Stage2Progress{Phase2Synthesis: state.SubPhaseComplete, Phase3Patterns: state.SubPhaseInProgress},
			state.PhasePatterns},
		{"cross wave beats everything", state.StageCollaboration,
			state.Stage2Progress{Phase2Synthesis: state.SubPhaseComplete, Phase3Patterns: state.SubPhaseComplete,
				CrossWaveAnalysis: state.SubPhaseInProgress},
			state.PhaseCrossWave},
		{"pending markers ignored", state.StageCollaboration,
			state.Stage2Progress{Phase3Patterns: state.SubPhasePending}, state.PhaseParallelStreams},
		{"final stage", state.StageSynthesis, state.Stage2Progress{}, state.PhaseFinalSynthesis},
		{"unknown stage falls back", "stage0_pilot", state.Stage2Progress{}, state.PhaseFoundation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &state.ProjectState{}
			st.Progress.CurrentStage = tt.stage
			st.Progress.Stage2 = tt.sub
			assert.Equal(t, tt.want, Current(st))
		})
	}
}

func TestCurrent_NilDocument(t *testing.T) {
	assert.Equal(t, state.PhaseFoundation, Current(nil))
}

func TestShouldRelax_MonotonicOverOrder(t *testing.T) {
	for ri, relaxesAt := range Order {
		for ci, current := range Order {
			got := ShouldRelax(relaxesAt, current)
			assert.Equal(t, ci >= ri, got,
				"relaxesAt=%s current=%s", relaxesAt, current)
		}
	}
}

func TestShouldRelax_UnknownNeverRelaxes(t *testing.T) {
	assert.False(t, ShouldRelax("phase9_bonus", state.PhaseFinalSynthesis))
	assert.False(t, ShouldRelax(state.PhaseFoundation, "phase9_bonus"))
	assert.False(t, ShouldRelax("", state.PhaseFinalSynthesis))
}

func newTestStore(t *testing.T) *state.Store {
	t.Helper()
	store := state.NewStore(t.TempDir(), zap.NewNop())
	_, err := store.Init(state.InitOptions{
		ProjectName:     "Test Study",
		Cases:           []state.Case{{ID: "c1", Name: "Case 1"}},
		Waves:           []state.Wave{{ID: "w1", Name: "Wave 1"}},
		StrainThreshold: 3,
		Saturation: state.SaturationThresholds{
			StableRate: 0.5, RefinementStable: 2, RedundancyHigh: 0.85, CoverageAdequate: 0.7,
		},
	})
	require.NoError(t, err)
	return store
}

func setManuallyCoded(t *testing.T, store *state.Store, n int) {
	t.Helper()
	_, err := store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		st.Progress.DocumentsManuallyCoded = n
		return state.JournalEntry{Title: "Coding Progress"}, nil
	})
	require.NoError(t, err)
}

func TestAdvance_RequiresManualCodingFoundation(t *testing.T) {
	store := newTestStore(t)
	setManuallyCoded(t, store, FoundationMinimum-1)

	_, err := Advance(store, string(state.StageCollaboration))
	require.Error(t, err)
	assert.True(t, errors.Is(err, state.ErrPrecondition))

	setManuallyCoded(t, store, FoundationMinimum)
	result, err := Advance(store, string(state.StageCollaboration))
	require.NoError(t, err)
	assert.Equal(t, state.PhaseFoundation, result.From)
	assert.Equal(t, state.PhaseParallelStreams, result.To)

	st, err := store.Load()
	require.NoError(t, err)
	assert.True(t, st.Progress.Stage1Complete)
}

func TestAdvance_StageOrderIsStrict(t *testing.T) {
	store := newTestStore(t)

	_, err := Advance(store, string(state.StageSynthesis))
	require.Error(t, err)
	assert.True(t, errors.Is(err, state.ErrPrecondition))

	setManuallyCoded(t, store, FoundationMinimum)
	_, err = Advance(store, string(state.StageCollaboration))
	require.NoError(t, err)

	// Re-entering stage 2 is not a transition.
	_, err = Advance(store, string(state.StageCollaboration))
	require.Error(t, err)
	assert.True(t, errors.Is(err, state.ErrPrecondition))
}

func TestAdvance_SubPhasesRequireStage2(t *testing.T) {
	store := newTestStore(t)
	_, err := Advance(store, string(state.PhaseSynthesis))
	require.Error(t, err)
	assert.True(t, errors.Is(err, state.ErrPrecondition))
}

func TestAdvance_SubPhaseProgression(t *testing.T) {
	store := newTestStore(t)
	setManuallyCoded(t, store, FoundationMinimum)
	_, err := Advance(store, string(state.StageCollaboration))
	require.NoError(t, err)

	result, err := Advance(store, string(state.PhaseSynthesis))
	require.NoError(t, err)
	assert.Equal(t, state.PhaseSynthesis, result.To)

	result, err = Advance(store, string(state.PhasePatterns))
	require.NoError(t, err)
	assert.Equal(t, state.PhasePatterns, result.To)

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, state.SubPhaseComplete, st.Progress.Stage2.Phase2Synthesis)
	assert.Equal(t, state.SubPhaseInProgress, st.Progress.Stage2.Phase3Patterns)

	result, err = Advance(store, string(state.PhaseCrossWave))
	require.NoError(t, err)
	assert.Equal(t, state.PhaseCrossWave, result.To)

	result, err = Advance(store, string(state.StageSynthesis))
	require.NoError(t, err)
	assert.Equal(t, state.PhaseFinalSynthesis, result.To)
}

func TestAdvance_UnknownTarget(t *testing.T) {
	store := newTestStore(t)
	setManuallyCoded(t, store, FoundationMinimum)
	_, err := Advance(store, string(state.StageCollaboration))
	require.NoError(t, err)

	_, err = Advance(store, "phase9_bonus")
	require.Error(t, err)
	assert.True(t, errors.Is(err, state.ErrInvalidArgument))
	var coded *state.Error
	require.ErrorAs(t, err, &coded)
	assert.NotEmpty(t, coded.Allowed)
}
