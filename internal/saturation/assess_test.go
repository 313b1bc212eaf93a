package saturation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/interpretivelabs/methodd/internal/state"
)

func baseTracking() state.SaturationTracking {
	return state.SaturationTracking{
		Thresholds: state.SaturationThresholds{
			StableRate: 0.5, RefinementStable: 2, RedundancyHigh: 0.85, CoverageAdequate: 0.7,
		},
	}
}

func withDocs(tr state.SaturationTracking, rate float64, n int) state.SaturationTracking {
	for i := 0; i < n; i++ {
		tr.CodeGeneration.Documents = append(tr.CodeGeneration.Documents, state.DocumentRecord{
			DocumentID: "doc", Timestamp: time.Now(),
		})
	}
	tr.CodeGeneration.RollingRate = rate
	return tr
}

func TestCompute_GenerationSignalTiers(t *testing.T) {
	tests := []struct {
		name     string
		tracking state.SaturationTracking
		points   int
		evidence string
	}{
		{"no documents scores nothing", baseTracking(), 0, "NO DATA"},
		{"below stable rate", withDocs(baseTracking(), 0.4, 5), 25, "STABLE"},
		{"under twice stable rate", withDocs(baseTracking(), 0.9, 5), 12, "SLOWING"},
		{"at twice stable rate", withDocs(baseTracking(), 1.0, 5), 0, "ACTIVE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Compute(&tt.tracking)
			// Refinement contributes its stable 25 in every row; subtract it
			// to isolate the generation signal.
			assert.Equal(t, tt.points, a.Score-25)
			assert.Contains(t, a.Evidence["code_generation_signal"], tt.evidence)
		})
	}
}

func TestCompute_CoverageSignalTiers(t *testing.T) {
	adequate := baseTracking()
	adequate.Coverage.ByCode = map[string]state.CoverageEntry{
		"a": {CoveragePercent: 50},
		"b": {CoveragePercent: 25},
		"c": {CoveragePercent: 20},
		"d": {CoveragePercent: 5},
	}
	a := Compute(&adequate)
	assert.Contains(t, a.Evidence["coverage_signal"], "ADEQUATE")
	assert.Equal(t, 25, a.Score-25)

	developing := baseTracking()
	developing.Coverage.ByCode = map[string]state.CoverageEntry{
		"a": {CoveragePercent: 50},
		"b": {CoveragePercent: 5},
	}
	a = Compute(&developing)
	assert.Contains(t, a.Evidence["coverage_signal"], "DEVELOPING")
	assert.Equal(t, 8, a.Score-25) // round(0.5 * 15)

	a = Compute(&state.SaturationTracking{})
	assert.Contains(t, a.Evidence["coverage_signal"], "NO DATA")
}

func TestCompute_RefinementSignalTiers(t *testing.T) {
	stable := baseTracking()
	stable.Refinement.RecentCount = 2
	a := Compute(&stable)
	assert.Contains(t, a.Evidence["refinement_signal"], "STABLE")
	assert.Equal(t, 25, a.Score)

	churning := baseTracking()
	churning.Refinement.RecentCount = 3
	a = Compute(&churning)
	assert.Contains(t, a.Evidence["refinement_signal"], "ACTIVE")
	assert.Equal(t, 5, a.Score)
}

func TestCompute_RedundancySignalTiers(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		points   int
		evidence string
	}{
		{"at high cutoff", 0.85, 25, "HIGH"},
		{"emerging band", 0.60, 15, "EMERGING"},
		{"just under emerging band", 0.59, 0, "LOW"},
		{"unassessed", 0, 0, "LOW"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := baseTracking()
			tr.Redundancy.Score = tt.score
			a := Compute(&tr)
			assert.Equal(t, tt.points, a.Score-25)
			assert.Contains(t, a.Evidence["redundancy_signal"], tt.evidence)
		})
	}
}

func TestGrade_LevelBoundaries(t *testing.T) {
	tests := []struct {
		score int
		level state.SaturationLevel
	}{
		{100, state.SaturationSaturated},
		{90, state.SaturationSaturated},
		{89, state.SaturationHigh},
		{70, state.SaturationHigh},
		{69, state.SaturationApproaching},
		{50, state.SaturationApproaching},
		{49, state.SaturationEmerging},
		{25, state.SaturationEmerging},
		{24, state.SaturationLow},
		{0, state.SaturationLow},
	}
	for _, tt := range tests {
		level, recommendation := grade(tt.score)
		assert.Equal(t, tt.level, level, "score %d", tt.score)
		assert.NotEmpty(t, recommendation)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	tr := withDocs(baseTracking(), 0.3, 6)
	tr.Redundancy.Score = 0.9
	first := Compute(&tr)
	second := Compute(&tr)
	assert.Equal(t, first, second)
}

func TestCompute_ZeroThresholdsFallBackToDefaults(t *testing.T) {
	tr := withDocs(state.SaturationTracking{}, 0.45, 5)
	a := Compute(&tr)
	assert.Contains(t, a.Evidence["code_generation_signal"], "STABLE")
}
