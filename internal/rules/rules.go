// Package rules projects the stored research design into the active
// methodological rule set. Rule status is never stored as ground truth; it
// is recomputed from the design and the current phase on every generation,
// so the artifact on disk is always safe to regenerate.
package rules

import (
	"fmt"
	"strings"

	"github.com/interpretivelabs/methodd/internal/phase"
	"github.com/interpretivelabs/methodd/internal/state"
)

// Status is the computed enforcement state of one rule.
type Status string

const (
	StatusActive  Status = "active"
	StatusRelaxed Status = "relaxed"
)

// Rule identifiers, stable across regenerations.
const (
	RuleCaseIsolation    = "case-isolation"
	RuleWaveIsolation    = "wave-isolation"
	RuleStreamSeparation = "stream-separation"
)

// Rule is one generated methodological rule.
type Rule struct {
	RuleID        string              `json:"rule_id"`
	RuleType      string              `json:"rule_type"`
	Status        Status              `json:"status"`
	FrictionLevel state.FrictionLevel `json:"friction_level"`
	RelaxesAt     state.Phase         `json:"relaxes_at_phase"`
	CurrentPhase  state.Phase         `json:"current_phase"`
	Scope         []string            `json:"scope,omitempty"`
	Summary       string              `json:"summary"`
}

// EffectiveFriction is the friction a consumer should apply right now. A
// relaxed rule surfaces silently regardless of its configured level.
func (r Rule) EffectiveFriction() state.FrictionLevel {
	if r.Status == StatusRelaxed {
		return state.FrictionSilent
	}
	return r.FrictionLevel
}

// Generate computes the full rule set for the document. It is a pure
// projection: same document in, same rules out. Rule types with no
// qualifying design elements, or disabled in the isolation config, are
// omitted entirely rather than emitted inactive.
func Generate(st *state.ProjectState) []Rule {
	current := phase.Current(st)
	var out []Rule
	if r := caseIsolation(st, current); r != nil {
		out = append(out, *r)
	}
	if r := waveIsolation(st, current); r != nil {
		out = append(out, *r)
	}
	if r := streamSeparation(st, current); r != nil {
		out = append(out, *r)
	}
	return out
}

// Find returns the generated rule with the given id, or nil when the design
// does not produce it.
func Find(st *state.ProjectState, ruleID string) *Rule {
	for _, r := range Generate(st) {
		if r.RuleID == ruleID {
			return &r
		}
	}
	return nil
}

func caseIsolation(st *state.ProjectState, current state.Phase) *Rule {
	design := st.Design
	cfg := design.Isolation.CaseIsolation
	if len(design.Cases) == 0 || !cfg.Enabled {
		return nil
	}
	r := newRule(RuleCaseIsolation, "case_isolation", cfg, current)

	names := make([]string, 0, len(design.Cases))
	for _, c := range design.Cases {
		names = append(names, c.Name)
		if c.FolderPath != "" {
			r.Scope = append(r.Scope, c.FolderPath+"/**")
		}
	}
	r.Summary = fmt.Sprintf(
		"Analyze each of the %d cases (%s) within its own boundary. "+
			"Cross-case comparison waits for %s so that within-case patterns form first.",
		len(design.Cases), strings.Join(names, ", "), cfg.RelaxesAt)
	return &r
}

func waveIsolation(st *state.ProjectState, current state.Phase) *Rule {
	design := st.Design
	cfg := design.Isolation.WaveIsolation
	if len(design.Waves) == 0 || !cfg.Enabled {
		return nil
	}
	r := newRule(RuleWaveIsolation, "wave_isolation", cfg, current)

	names := make([]string, 0, len(design.Waves))
	for _, w := range design.Waves {
		names = append(names, w.Name)
		if w.FolderPath != "" {
			r.Scope = append(r.Scope, w.FolderPath+"/**")
		}
	}
	r.Summary = fmt.Sprintf(
		"Code each collection wave (%s) on its own terms before looking across time. "+
			"Temporal comparison opens at %s.",
		strings.Join(names, ", "), cfg.RelaxesAt)
	return &r
}

func streamSeparation(st *state.ProjectState, current state.Phase) *Rule {
	design := st.Design
	cfg := design.Isolation.StreamSeparation
	if (design.Streams.Theoretical == nil && design.Streams.Empirical == nil) || !cfg.Enabled {
		return nil
	}
	r := newRule(RuleStreamSeparation, "stream_separation", cfg, current)

	if t := design.Streams.Theoretical; t != nil && t.FolderPath != "" {
		r.Scope = append(r.Scope, t.FolderPath+"/**")
	}
	if e := design.Streams.Empirical; e != nil && e.FolderPath != "" {
		r.Scope = append(r.Scope, e.FolderPath+"/**")
	}
	r.Summary = fmt.Sprintf(
		"Keep the theoretical and empirical streams separate so codes emerge from the data "+
			"rather than the literature. The streams converge at %s.",
		cfg.RelaxesAt)
	return &r
}

func newRule(id, ruleType string, cfg state.IsolationRule, current state.Phase) Rule {
	status := StatusActive
	if phase.ShouldRelax(cfg.RelaxesAt, current) {
		status = StatusRelaxed
	}
	return Rule{
		RuleID:        id,
		RuleType:      ruleType,
		Status:        status,
		FrictionLevel: cfg.FrictionLevel,
		RelaxesAt:     cfg.RelaxesAt,
		CurrentPhase:  current,
	}
}
