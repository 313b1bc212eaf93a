package rules

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/interpretivelabs/methodd/internal/state"
)

func newTestEngine(t *testing.T) (*Engine, *state.Store) {
	t.Helper()
	store := state.NewStore(t.TempDir(), zap.NewNop())
	_, err := store.Init(state.InitOptions{
		ProjectName: "Test Study",
		Cases:       []state.Case{{ID: "c1", Name: "Case 1"}},
		Waves:       []state.Wave{{ID: "w1", Name: "Wave 1"}},
		Streams: state.Streams{
			Theoretical: &state.Stream{FolderPath: "literature"},
			Empirical:   &state.Stream{FolderPath: "data"},
		},
		StrainThreshold: 3,
		Saturation: state.SaturationThresholds{
			StableRate: 0.5, RefinementStable: 2, RedundancyHigh: 0.85, CoverageAdequate: 0.7,
		},
	})
	require.NoError(t, err)
	return NewEngine(store, zap.NewNop()), store
}

func TestRegenerate_WritesArtifact(t *testing.T) {
	engine, _ := newTestEngine(t)

	art, err := engine.Regenerate()
	require.NoError(t, err)
	assert.Len(t, art.Rules, 3)
	assert.Equal(t, state.PhaseFoundation, art.CurrentPhase)

	data, err := os.ReadFile(engine.ArtifactPath())
	require.NoError(t, err)
	var onDisk Artifact
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, art.Rules, onDisk.Rules)
}

func TestRegenerate_IsIdempotent(t *testing.T) {
	engine, _ := newTestEngine(t)

	first, err := engine.Regenerate()
	require.NoError(t, err)
	second, err := engine.Regenerate()
	require.NoError(t, err)
	assert.Equal(t, first.Rules, second.Rules)
}

func TestRegenerate_JournalsStatusTransitions(t *testing.T) {
	engine, store := newTestEngine(t)
	_, err := engine.Regenerate()
	require.NoError(t, err)

	// Move into stage 2 synthesis so stream separation relaxes.
	_, err = store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		st.Progress.CurrentStage = state.StageCollaboration
		st.Progress.Stage1Complete = true
		st.Progress.Stage2.Phase2Synthesis = state.SubPhaseInProgress
		return state.JournalEntry{Title: "Phase Transition"}, nil
	})
	require.NoError(t, err)

	_, err = engine.Regenerate()
	require.NoError(t, err)

	journal, err := os.ReadFile(store.Journal().Path())
	require.NoError(t, err)
	assert.Contains(t, string(journal), "Methodological Rules Update")
	assert.Contains(t, string(journal), "stream-separation")
	assert.Contains(t, string(journal), "active -> relaxed")
}

func TestRegenerate_NoNoticeWithoutChanges(t *testing.T) {
	engine, store := newTestEngine(t)
	_, err := engine.Regenerate()
	require.NoError(t, err)
	_, err = engine.Regenerate()
	require.NoError(t, err)

	journal, err := os.ReadFile(store.Journal().Path())
	require.NoError(t, err)
	assert.NotContains(t, string(journal), "Methodological Rules Update")
}

func TestRegenerate_MissingProject(t *testing.T) {
	engine := NewEngine(state.NewStore(t.TempDir(), zap.NewNop()), zap.NewNop())
	_, err := engine.Regenerate()
	require.Error(t, err)
	assert.ErrorIs(t, err, state.ErrConfigNotFound)
}
