// Package strain tracks repeated rule overrides. Overrides are never
// blocked; a rule overridden threshold-many times in one phase is flagged as
// strained and the researcher is handed a review prompt instead.
package strain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/interpretivelabs/methodd/internal/phase"
	"github.com/interpretivelabs/methodd/internal/rules"
	"github.com/interpretivelabs/methodd/internal/state"
)

// DefaultThreshold is the per-phase override count that flags strain.
const DefaultThreshold = 3

// OverrideResult reports one recorded override.
type OverrideResult struct {
	RuleID            string      `json:"rule_id"`
	OverrideCount     int         `json:"override_count"`
	Threshold         int         `json:"threshold"`
	Strained          bool        `json:"is_strained"`
	FirstTimeStrained bool        `json:"first_time_strained"`
	Phase             state.Phase `json:"phase"`
	ReviewPrompt      string      `json:"review_prompt,omitempty"`
}

// RuleStatus is the strain standing of one rule.
type RuleStatus struct {
	RuleID        string     `json:"rule_id"`
	OverrideCount int        `json:"override_count"`
	Threshold     int        `json:"threshold"`
	Strained      bool       `json:"is_strained"`
	LastOverride  *time.Time `json:"last_override,omitempty"`
}

// Report is the strain standing across all rules.
type Report struct {
	HasStrain bool         `json:"has_strain"`
	Threshold int          `json:"threshold"`
	Rules     []RuleStatus `json:"rules"`
}

// Tracker records overrides and review resolutions against the document.
type Tracker struct {
	store  *state.Store
	logger *zap.Logger
}

// NewTracker binds the tracker to a project store.
func NewTracker(store *state.Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, logger: logger}
}

// RecordOverride logs one override of ruleID. Counts accumulate per phase;
// an override recorded in a different phase than the previous one resets the
// count before incrementing. Reaching the threshold flags the rule and
// returns a review prompt exactly once per strain episode.
func (t *Tracker) RecordOverride(ruleID, justification string) (*OverrideResult, error) {
	var result *OverrideResult
	_, err := t.store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		if rules.Find(st, ruleID) == nil {
			return state.JournalEntry{}, unknownRule(st, ruleID)
		}

		current := phase.Current(st)
		now := time.Now()
		tracking := &st.Strain

		rec, ok := tracking.Counts[ruleID]
		if !ok {
			rec = &state.StrainRecord{PhaseWhenOverridden: current}
			if tracking.Counts == nil {
				tracking.Counts = map[string]*state.StrainRecord{}
			}
			tracking.Counts[ruleID] = rec
		}
		if rec.PhaseWhenOverridden != current {
			rec.Count = 0
			rec.PhaseWhenOverridden = current
		}
		rec.Count++
		rec.LastOverride = now

		tracking.Overrides = append(tracking.Overrides, state.Override{
			ID:            "ov_" + uuid.NewString()[:8],
			RuleID:        ruleID,
			Timestamp:     now,
			Justification: justification,
			Outcome:       "pending",
		})

		threshold := threshold(tracking)
		strained := rec.Count >= threshold
		firstTime := strained && rec.Count == threshold
		if strained && !contains(tracking.StrainedRules, ruleID) {
			tracking.StrainedRules = append(tracking.StrainedRules, ruleID)
		}

		result = &OverrideResult{
			RuleID:            ruleID,
			OverrideCount:     rec.Count,
			Threshold:         threshold,
			Strained:          strained,
			FirstTimeStrained: firstTime,
			Phase:             current,
		}
		if firstTime {
			result.ReviewPrompt = ReviewPrompt(ruleID, rec.Count)
		}

		title := "Rule Override Recorded"
		body := fmt.Sprintf("Rule **%s** overridden (%d of %d this phase).\n\n**Justification:** %s",
			ruleID, rec.Count, threshold, justification)
		if firstTime {
			title = "Methodological Strain Detected"
			body += fmt.Sprintf("\n\nStrain threshold reached in phase %s. Review requested.", current)
		}
		return state.JournalEntry{Title: title, Body: body}, nil
	})
	if err != nil {
		return nil, err
	}
	t.logger.Info("override recorded",
		zap.String("rule", ruleID),
		zap.Int("count", result.OverrideCount),
		zap.Bool("strained", result.Strained))
	return result, nil
}

// RecordResolution closes a strain review. phase_transition also resets the
// rule's per-phase count; adjust_rule and isolated_exception keep the count
// so the history stays legible.
func (t *Tracker) RecordResolution(ruleID string, resolution state.Resolution, notes string) (*state.StrainReview, error) {
	if !resolution.Valid() {
		return nil, state.NewError(state.CodeInvalidArgument, "unknown resolution %q", resolution).
			WithField("resolution").
			WithAllowed(
				string(state.ResolutionPhaseTransition),
				string(state.ResolutionAdjustRule),
				string(state.ResolutionIsolatedException),
			)
	}
	var review state.StrainReview
	_, err := t.store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		if rules.Find(st, ruleID) == nil {
			return state.JournalEntry{}, unknownRule(st, ruleID)
		}
		tracking := &st.Strain

		count := 0
		if rec, ok := tracking.Counts[ruleID]; ok {
			count = rec.Count
			if resolution == state.ResolutionPhaseTransition {
				rec.Count = 0
			}
		}
		review = state.StrainReview{
			RuleID:        ruleID,
			TriggeredAt:   time.Now(),
			OverrideCount: count,
			Resolution:    resolution,
			Notes:         notes,
		}
		tracking.Reviews = append(tracking.Reviews, review)
		tracking.StrainedRules = remove(tracking.StrainedRules, ruleID)

		return state.JournalEntry{
			Title: "Strain Review Resolved",
			Body: fmt.Sprintf("Rule **%s** reviewed after %d override(s).\n\n**Resolution:** %s\n\n%s",
				ruleID, count, resolution, notes),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	t.logger.Info("strain resolved",
		zap.String("rule", ruleID),
		zap.String("resolution", string(resolution)))
	return &review, nil
}

// Check reports strain standing. With a ruleID it reports that rule alone;
// with an empty ruleID it reports every rule with recorded overrides.
func (t *Tracker) Check(ruleID string) (*Report, error) {
	st, err := t.store.Load()
	if err != nil {
		return nil, err
	}
	tracking := st.Strain
	th := threshold(&tracking)
	report := &Report{Threshold: th, Rules: []RuleStatus{}}

	appendRule := func(id string, rec *state.StrainRecord) {
		rs := RuleStatus{RuleID: id, Threshold: th}
		if rec != nil {
			rs.OverrideCount = rec.Count
			rs.Strained = rec.Count >= th
			if !rec.LastOverride.IsZero() {
				last := rec.LastOverride
				rs.LastOverride = &last
			}
		}
		if rs.Strained {
			report.HasStrain = true
		}
		report.Rules = append(report.Rules, rs)
	}

	if ruleID != "" {
		if rules.Find(st, ruleID) == nil {
			return nil, unknownRule(st, ruleID)
		}
		appendRule(ruleID, tracking.Counts[ruleID])
		return report, nil
	}
	for _, r := range rules.Generate(st) {
		appendRule(r.RuleID, tracking.Counts[r.RuleID])
	}
	return report, nil
}

func threshold(tr *state.StrainTracking) int {
	if tr.Threshold > 0 {
		return tr.Threshold
	}
	return DefaultThreshold
}

func unknownRule(st *state.ProjectState, ruleID string) error {
	generated := rules.Generate(st)
	ids := make([]string, 0, len(generated))
	for _, r := range generated {
		ids = append(ids, r.RuleID)
	}
	return state.NewError(state.CodeNotFound, "rule %q is not part of this study design", ruleID).
		WithField("rule_id").
		WithAllowed(ids...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
