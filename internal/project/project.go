// Package project composes the engine packages into project-level
// operations: initialization from a study design and the aggregate status
// view consumed by the CLI and the MCP tools.
package project

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/interpretivelabs/methodd/internal/config"
	"github.com/interpretivelabs/methodd/internal/phase"
	"github.com/interpretivelabs/methodd/internal/rules"
	"github.com/interpretivelabs/methodd/internal/sanitize"
	"github.com/interpretivelabs/methodd/internal/state"
)

// Service wires a project store with the engine configuration.
type Service struct {
	store  *state.Store
	cfg    *config.Config
	logger *zap.Logger
}

// NewService builds the service for one project directory.
func NewService(store *state.Store, cfg *config.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Service{store: store, cfg: cfg, logger: logger}
}

// Store exposes the underlying document store.
func (s *Service) Store() *state.Store { return s.store }

// InitRequest describes a new study.
type InitRequest struct {
	ProjectName      string
	ResearchQuestion string
	CaseNames        []string
	WaveNames        []string
	TheoreticalPath  string
	EmpiricalPath    string
}

// Init creates the project document. Case and wave names are free-form;
// their identifiers are derived by sanitization so they stay stable as map
// keys and journal references.
func (s *Service) Init(req InitRequest) (*state.ProjectState, error) {
	if strings.TrimSpace(req.ProjectName) == "" {
		return nil, state.NewError(state.CodeInvalidArgument, "project name is required").WithField("project_name")
	}

	var cases []state.Case
	for _, name := range req.CaseNames {
		cases = append(cases, state.Case{
			ID:   sanitize.Identifier(name),
			Name: name,
		})
	}
	var waves []state.Wave
	for _, name := range req.WaveNames {
		waves = append(waves, state.Wave{
			ID:   sanitize.Identifier(name),
			Name: name,
		})
	}
	var streams state.Streams
	if req.TheoreticalPath != "" {
		streams.Theoretical = &state.Stream{FolderPath: req.TheoreticalPath}
	}
	if req.EmpiricalPath != "" {
		streams.Empirical = &state.Stream{FolderPath: req.EmpiricalPath}
	}

	return s.store.Init(state.InitOptions{
		ProjectName:      req.ProjectName,
		ResearchQuestion: req.ResearchQuestion,
		Cases:            cases,
		Waves:            waves,
		Streams:          streams,
		StrainThreshold:  s.cfg.Strain.Threshold,
		Saturation: state.SaturationThresholds{
			StableRate:       s.cfg.Saturation.StableRate,
			RefinementStable: s.cfg.Saturation.RefinementStable,
			RedundancyHigh:   s.cfg.Saturation.RedundancyHigh,
			CoverageAdequate: s.cfg.Saturation.CoverageAdequate,
		},
	})
}

// RuleStanding pairs a rule with when it stops applying.
type RuleStanding struct {
	RuleID    string      `json:"rule_id"`
	RelaxesAt state.Phase `json:"relaxes_at"`
}

// Status is the aggregate project picture.
type Status struct {
	ProjectName      string                `json:"project_name"`
	ResearchQuestion string                `json:"research_question,omitempty"`
	Version          int                   `json:"version"`
	CurrentStage     state.Stage           `json:"current_stage"`
	CurrentPhase     state.Phase           `json:"current_phase"`
	Stage1Complete   bool                  `json:"stage1_complete"`
	Stage2Progress   state.Stage2Progress  `json:"stage2_progress"`
	Progress         state.Progress        `json:"progress"`
	ProgressPercent  float64               `json:"progress_percent"`
	ActiveRules      []RuleStanding        `json:"rules_still_active"`
	RelaxedRules     []RuleStanding        `json:"rules_should_relax"`
	StrainedRules    []string              `json:"strained_rules"`
	SaturationLevel  state.SaturationLevel `json:"saturation_level"`
	SaturationScore  int                   `json:"saturation_score"`
	CurrentBranch    string                `json:"current_branch"`
	ActiveBranches   int                   `json:"active_branches"`
}

// Status loads the document and derives the aggregate view. Nothing is
// recomputed destructively; the stored saturation assessment is reported
// as-is.
func (s *Service) Status() (*Status, error) {
	st, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	status := &Status{
		ProjectName:      st.ProjectName,
		ResearchQuestion: st.ResearchQuestion,
		Version:          st.Version,
		CurrentStage:     st.Progress.CurrentStage,
		CurrentPhase:     phase.Current(st),
		Stage1Complete:   st.Progress.Stage1Complete,
		Stage2Progress:   st.Progress.Stage2,
		Progress:         st.Progress,
		ProgressPercent:  progressPercent(st.Progress),
		ActiveRules:      []RuleStanding{},
		RelaxedRules:     []RuleStanding{},
		StrainedRules:    st.Strain.StrainedRules,
		SaturationLevel:  st.Saturation.Overall.Level,
		SaturationScore:  st.Saturation.Overall.Score,
		CurrentBranch:    st.Branches.CurrentBranch,
	}
	if status.SaturationLevel == "" {
		status.SaturationLevel = state.SaturationLow
	}
	if status.StrainedRules == nil {
		status.StrainedRules = []string{}
	}

	for _, r := range rules.Generate(st) {
		standing := RuleStanding{RuleID: r.RuleID, RelaxesAt: r.RelaxesAt}
		if r.Status == rules.StatusRelaxed {
			status.RelaxedRules = append(status.RelaxedRules, standing)
		} else {
			status.ActiveRules = append(status.ActiveRules, standing)
		}
	}
	for _, br := range st.Branches.Branches {
		if br.Status == state.BranchActive {
			status.ActiveBranches++
		}
	}
	return status, nil
}

// progressPercent maps the stage counters onto a rough 0-100 scale: the
// foundation stage fills against its manual-coding minimum, the
// collaboration stage fills the upper half against corpus coverage, and the
// synthesis stage reports complete.
func progressPercent(p state.Progress) float64 {
	var percent float64
	switch p.CurrentStage {
	case state.StageFoundation:
		percent = math.Min(100, float64(p.DocumentsManuallyCoded)/float64(phase.FoundationMinimum)*100)
	case state.StageCollaboration:
		total := p.TotalDocuments
		if total < 1 {
			total = 1
		}
		percent = 50 + math.Min(50, float64(p.DocumentsCoded)/float64(total)*50)
	case state.StageSynthesis:
		percent = 100
	}
	return math.Round(percent*10) / 10
}
