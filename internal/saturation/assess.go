package saturation

import (
	"fmt"
	"math"

	"github.com/interpretivelabs/methodd/internal/state"
)

// Assessment is one composite saturation reading. Each of the four signals
// contributes up to 25 points of the 0-100 score.
type Assessment struct {
	Level          state.SaturationLevel `json:"saturation_level"`
	Score          int                   `json:"saturation_score"`
	Recommendation string                `json:"recommendation"`
	Evidence       map[string]string     `json:"evidence"`
}

// Compute derives the assessment from stored evidence alone. It never
// mutates its input, so repeated calls on the same document agree.
func Compute(tr *state.SaturationTracking) *Assessment {
	th := effectiveThresholds(tr.Thresholds)
	evidence := map[string]string{}
	score := 0

	// Code generation: a low rolling rate only counts once documents have
	// actually been recorded.
	rate := tr.CodeGeneration.RollingRate
	switch {
	case len(tr.CodeGeneration.Documents) == 0:
		evidence["code_generation_signal"] = "NO DATA: no documents recorded yet"
	case rate < th.StableRate:
		evidence["code_generation_signal"] = fmt.Sprintf(
			"STABLE: %.2f new codes/doc (threshold: %.2f)", rate, th.StableRate)
		score += 25
	case rate < th.StableRate*2:
		evidence["code_generation_signal"] = fmt.Sprintf("SLOWING: %.2f new codes/doc", rate)
		score += 12
	default:
		evidence["code_generation_signal"] = fmt.Sprintf(
			"ACTIVE: %.2f new codes/doc - still generating", rate)
	}

	// Coverage: share of codes appearing in at least 20% of documents.
	if n := len(tr.Coverage.ByCode); n > 0 {
		adequate := 0
		for _, entry := range tr.Coverage.ByCode {
			if entry.CoveragePercent >= 20 {
				adequate++
			}
		}
		ratio := float64(adequate) / float64(n)
		if ratio >= th.CoverageAdequate {
			evidence["coverage_signal"] = fmt.Sprintf(
				"ADEQUATE: %d%% of codes have >20%% coverage", int(math.Round(ratio*100)))
			score += 25
		} else {
			evidence["coverage_signal"] = fmt.Sprintf(
				"DEVELOPING: %d%% coverage ratio", int(math.Round(ratio*100)))
			score += int(math.Round(ratio * 15))
		}
	} else {
		evidence["coverage_signal"] = "NO DATA: Coverage not yet tracked"
	}

	// Refinement: recent definition churn means concepts are still moving.
	recent := tr.Refinement.RecentCount
	if recent <= th.RefinementStable {
		evidence["refinement_signal"] = fmt.Sprintf(
			"STABLE: %d changes recently (threshold: %d)", recent, th.RefinementStable)
		score += 25
	} else {
		evidence["refinement_signal"] = fmt.Sprintf(
			"ACTIVE: %d recent refinements - concepts still evolving", recent)
		score += 5
	}

	// Redundancy: the researcher's own judgment, thresholded.
	red := tr.Redundancy.Score
	switch {
	case red >= th.RedundancyHigh:
		evidence["redundancy_signal"] = fmt.Sprintf("HIGH: %d%% redundancy", int(math.Round(red*100)))
		score += 25
	case red >= th.RedundancyHigh*0.7:
		evidence["redundancy_signal"] = fmt.Sprintf("EMERGING: %d%% redundancy", int(math.Round(red*100)))
		score += 15
	default:
		evidence["redundancy_signal"] = fmt.Sprintf(
			"LOW: %d%% redundancy - still finding novelty", int(math.Round(red*100)))
	}

	level, recommendation := grade(score)
	return &Assessment{
		Level:          level,
		Score:          score,
		Recommendation: recommendation,
		Evidence:       evidence,
	}
}

// grade maps the composite score to a level and its standing advice. High
// scores still demand a negative-case check before claiming saturation.
func grade(score int) (state.SaturationLevel, string) {
	switch {
	case score >= 90:
		return state.SaturationSaturated,
			"Strong saturation signals. Consider: Are there negative cases you haven't explored? " +
				"If variation is understood, ready for theoretical integration."
	case score >= 70:
		return state.SaturationHigh,
			"Approaching saturation. Theoretical sampling: seek cases most different from your " +
				"current sample to test your codes."
	case score >= 50:
		return state.SaturationApproaching,
			"Emerging saturation patterns. Continue coding but watch for diminishing returns. " +
				"Write memos on variation."
	case score >= 25:
		return state.SaturationEmerging,
			"Early saturation signals. Still actively generating codes and refining concepts. " +
				"Stay open to new patterns."
	default:
		return state.SaturationLow,
			"Low saturation. Actively developing codes. Focus on open coding and memo writing."
	}
}

// effectiveThresholds fills zero values with the defaults so documents
// initialized before a threshold existed still assess sensibly.
func effectiveThresholds(th state.SaturationThresholds) state.SaturationThresholds {
	if th.StableRate <= 0 {
		th.StableRate = DefaultStableRate
	}
	if th.RefinementStable <= 0 {
		th.RefinementStable = DefaultRefinementStable
	}
	if th.RedundancyHigh <= 0 {
		th.RedundancyHigh = DefaultRedundancyHigh
	}
	if th.CoverageAdequate <= 0 {
		th.CoverageAdequate = DefaultCoverageAdequate
	}
	return th
}

func thresholds(st *state.ProjectState) state.SaturationThresholds {
	return effectiveThresholds(st.Saturation.Thresholds)
}
