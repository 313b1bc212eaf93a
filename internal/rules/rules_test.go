package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interpretivelabs/methodd/internal/state"
)

func designedState() *state.ProjectState {
	st := &state.ProjectState{}
	st.Progress.CurrentStage = state.StageFoundation
	st.Design = state.ResearchDesign{
		StudyType: "multi_case_longitudinal",
		Cases: []state.Case{
			{ID: "hospital_a", Name: "Hospital A", FolderPath: "data/hospital-a"},
			{ID: "hospital_b", Name: "Hospital B", FolderPath: "data/hospital-b"},
		},
		Waves: []state.Wave{
			{ID: "wave_1", Name: "Wave 1", FolderPath: "data/wave-1"},
		},
		Streams: state.Streams{
			Theoretical: &state.Stream{FolderPath: "literature"},
			Empirical:   &state.Stream{FolderPath: "data"},
		},
		Isolation: state.IsolationConfig{
			CaseIsolation:    state.IsolationRule{Enabled: true, FrictionLevel: state.FrictionChallenge, RelaxesAt: state.PhasePatterns},
			WaveIsolation:    state.IsolationRule{Enabled: true, FrictionLevel: state.FrictionChallenge, RelaxesAt: state.PhaseCrossWave},
			StreamSeparation: state.IsolationRule{Enabled: true, FrictionLevel: state.FrictionNudge, RelaxesAt: state.PhaseSynthesis},
		},
	}
	return st
}

func TestGenerate_AllThreeRulesForFullDesign(t *testing.T) {
	rules := Generate(designedState())
	require.Len(t, rules, 3)

	ids := []string{rules[0].RuleID, rules[1].RuleID, rules[2].RuleID}
	assert.Equal(t, []string{RuleCaseIsolation, RuleWaveIsolation, RuleStreamSeparation}, ids)
	for _, r := range rules {
		assert.Equal(t, StatusActive, r.Status, r.RuleID)
		assert.Equal(t, state.PhaseFoundation, r.CurrentPhase)
		assert.NotEmpty(t, r.Summary)
	}
}

func TestGenerate_OmitsRulesWithoutDesignElements(t *testing.T) {
	st := designedState()
	st.Design.Cases = nil
	st.Design.Streams = state.Streams{}

	rules := Generate(st)
	require.Len(t, rules, 1)
	assert.Equal(t, RuleWaveIsolation, rules[0].RuleID)
}

func TestGenerate_OmitsDisabledRules(t *testing.T) {
	st := designedState()
	st.Design.Isolation.WaveIsolation.Enabled = false

	var ids []string
	for _, r := range Generate(st) {
		ids = append(ids, r.RuleID)
	}
	assert.NotContains(t, ids, RuleWaveIsolation)
	assert.Contains(t, ids, RuleCaseIsolation)
}

func TestGenerate_StatusRecomputedFromPhase(t *testing.T) {
	st := designedState()
	st.Progress.CurrentStage = state.StageCollaboration
	st.Progress.Stage2.Phase2Synthesis = state.SubPhaseInProgress

	byID := map[string]Rule{}
	for _, r := range Generate(st) {
		byID[r.RuleID] = r
	}
	// phase2_synthesis: stream separation relaxes, the isolation rules hold.
	assert.Equal(t, StatusRelaxed, byID[RuleStreamSeparation].Status)
	assert.Equal(t, StatusActive, byID[RuleCaseIsolation].Status)
	assert.Equal(t, StatusActive, byID[RuleWaveIsolation].Status)

	st.Progress.Stage2.Phase3Patterns = state.SubPhaseInProgress
	byID = map[string]Rule{}
	for _, r := range Generate(st) {
		byID[r.RuleID] = r
	}
	assert.Equal(t, StatusRelaxed, byID[RuleCaseIsolation].Status)
	assert.Equal(t, StatusActive, byID[RuleWaveIsolation].Status)
}

func TestGenerate_IsDeterministic(t *testing.T) {
	st := designedState()
	assert.Equal(t, Generate(st), Generate(st))
}

func TestEffectiveFriction_SilentWhenRelaxed(t *testing.T) {
	r := Rule{Status: StatusActive, FrictionLevel: state.FrictionChallenge}
	assert.Equal(t, state.FrictionChallenge, r.EffectiveFriction())
	r.Status = StatusRelaxed
	assert.Equal(t, state.FrictionSilent, r.EffectiveFriction())
}

func TestGenerate_ScopeFromFolderPaths(t *testing.T) {
	rules := Generate(designedState())
	byID := map[string]Rule{}
	for _, r := range rules {
		byID[r.RuleID] = r
	}
	assert.Equal(t, []string{"data/hospital-a/**", "data/hospital-b/**"}, byID[RuleCaseIsolation].Scope)
	assert.Equal(t, []string{"literature/**", "data/**"}, byID[RuleStreamSeparation].Scope)
}

func TestFind(t *testing.T) {
	st := designedState()
	assert.NotNil(t, Find(st, RuleCaseIsolation))
	assert.Nil(t, Find(st, "made-up-rule"))
}
