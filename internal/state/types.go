package state

import "time"

// Stage is the coarse lifecycle stage of the project.
type Stage string

const (
	StageFoundation    Stage = "stage1_foundation"
	StageCollaboration Stage = "stage2_collaboration"
	StageSynthesis     Stage = "stage3_synthesis"
)

// Phase is one ordered step of the analytical lifecycle, used to gate rule
// relaxation. Ordering lives in the phase package.
type Phase string

const (
	PhaseFoundation      Phase = "stage1_foundation"
	PhaseParallelStreams Phase = "phase1_parallel_streams"
	PhaseSynthesis       Phase = "phase2_synthesis"
	PhasePatterns        Phase = "phase3_pattern_characterization"
	PhaseCrossWave       Phase = "cross_wave_analysis"
	PhaseFinalSynthesis  Phase = "stage3_synthesis"
)

// SubPhaseStatus marks progress of one stage-2 sub-phase.
type SubPhaseStatus string

const (
	SubPhasePending    SubPhaseStatus = "pending"
	SubPhaseInProgress SubPhaseStatus = "in_progress"
	SubPhaseComplete   SubPhaseStatus = "complete"
)

// Started reports whether work on the sub-phase has begun.
func (s SubPhaseStatus) Started() bool {
	return s == SubPhaseInProgress || s == SubPhaseComplete
}

// FrictionLevel is the intensity of the system's reaction to a rule
// override, from silent logging to hard blocking.
type FrictionLevel string

const (
	FrictionSilent    FrictionLevel = "silent"
	FrictionNudge     FrictionLevel = "nudge"
	FrictionChallenge FrictionLevel = "challenge"
	FrictionHardStop  FrictionLevel = "hard_stop"
)

// BranchFraming is the declared methodological purpose of a branch.
type BranchFraming string

const (
	FramingExploratory               BranchFraming = "exploratory"
	FramingConfirmatory              BranchFraming = "confirmatory"
	FramingNegativeCase              BranchFraming = "negative_case"
	FramingAlternativeInterpretation BranchFraming = "alternative_interpretation"
)

// Valid reports whether the framing is one of the four closed values.
func (f BranchFraming) Valid() bool {
	switch f {
	case FramingExploratory, FramingConfirmatory, FramingNegativeCase, FramingAlternativeInterpretation:
		return true
	}
	return false
}

// BranchStatus is the lifecycle state of a branch. Merged and abandoned are
// terminal; no transition leaves either.
type BranchStatus string

const (
	BranchActive    BranchStatus = "active"
	BranchMerged    BranchStatus = "merged"
	BranchAbandoned BranchStatus = "abandoned"
)

// IsTerminal reports whether the status permits no further transitions.
func (s BranchStatus) IsTerminal() bool {
	return s == BranchMerged || s == BranchAbandoned
}

// BranchAction identifies one entry of the branch decision log.
type BranchAction string

const (
	ActionFork    BranchAction = "fork"
	ActionSwitch  BranchAction = "switch"
	ActionMerge   BranchAction = "merge"
	ActionAbandon BranchAction = "abandon"
)

// Resolution is the recorded outcome of a strain review.
type Resolution string

const (
	ResolutionPhaseTransition   Resolution = "phase_transition"
	ResolutionAdjustRule        Resolution = "adjust_rule"
	ResolutionIsolatedException Resolution = "isolated_exception"
)

// Valid reports whether the resolution is one of the three closed values.
func (r Resolution) Valid() bool {
	switch r {
	case ResolutionPhaseTransition, ResolutionAdjustRule, ResolutionIsolatedException:
		return true
	}
	return false
}

// ChangeType classifies a code refinement event.
type ChangeType string

const (
	ChangeSplit        ChangeType = "split"
	ChangeMerge        ChangeType = "merge"
	ChangeRedefinition ChangeType = "redefinition"
)

// Valid reports whether the change type is one of the three closed values.
func (c ChangeType) Valid() bool {
	switch c {
	case ChangeSplit, ChangeMerge, ChangeRedefinition:
		return true
	}
	return false
}

// SaturationLevel is the ordinal band of the composite saturation score.
type SaturationLevel string

const (
	SaturationLow         SaturationLevel = "low"
	SaturationEmerging    SaturationLevel = "emerging"
	SaturationApproaching SaturationLevel = "approaching"
	SaturationHigh        SaturationLevel = "high"
	SaturationSaturated   SaturationLevel = "saturated"
)

// ProjectState is the root document. It is created once at initialization,
// never deleted during a project's life, and mutated only through the engine
// components.
type ProjectState struct {
	Version          int       `json:"version" validate:"min=1"`
	ProjectName      string    `json:"project_name"`
	ResearchQuestion string    `json:"research_question"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"last_updated"`

	Progress   Progress           `json:"progress"`
	Design     ResearchDesign     `json:"research_design"`
	Strain     StrainTracking     `json:"strain_tracking"`
	Saturation SaturationTracking `json:"saturation_tracking"`
	Branches   WorkspaceBranches  `json:"workspace_branches"`
}

// Progress holds the stage and counter fields the phase derivation reads.
type Progress struct {
	CurrentStage           Stage          `json:"current_stage" validate:"required,oneof=stage1_foundation stage2_collaboration stage3_synthesis"`
	Stage1Complete         bool           `json:"stage1_complete"`
	Stage2                 Stage2Progress `json:"stage2_progress"`
	TotalDocuments         int            `json:"total_documents" validate:"min=0"`
	DocumentsCoded         int            `json:"documents_coded" validate:"min=0"`
	DocumentsManuallyCoded int            `json:"documents_manually_coded" validate:"min=0"`
	MemosWritten           int            `json:"memos_written" validate:"min=0"`
	CodesCreated           int            `json:"codes_created" validate:"min=0"`
}

// Stage2Progress carries the sub-phase markers inspected by the phase
// tracker, most-advanced first.
type Stage2Progress struct {
	Phase2Synthesis   SubPhaseStatus `json:"phase2_synthesis" validate:"omitempty,oneof=pending in_progress complete"`
	Phase3Patterns    SubPhaseStatus `json:"phase3_pattern_characterization" validate:"omitempty,oneof=pending in_progress complete"`
	CrossWaveAnalysis SubPhaseStatus `json:"cross_wave_analysis" validate:"omitempty,oneof=pending in_progress complete"`
}

// Case is one analytically distinct unit of a multi-case study.
type Case struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name"`
	FolderPath string `json:"folder_path,omitempty"`
}

// Wave is one temporal collection round of a longitudinal study.
type Wave struct {
	ID               string `json:"id" validate:"required"`
	Name             string `json:"name"`
	CollectionPeriod string `json:"collection_period,omitempty"`
	FolderPath       string `json:"folder_path,omitempty"`
}

// Stream is one of the two parallel analytical streams.
type Stream struct {
	FolderPath string   `json:"folder_path,omitempty"`
	Sources    []string `json:"sources,omitempty"`
}

// Streams pairs the theoretical and empirical streams. Nil pointers mean
// the stream is not part of the study design.
type Streams struct {
	Theoretical *Stream `json:"theoretical,omitempty"`
	Empirical   *Stream `json:"empirical,omitempty"`
}

// IsolationRule is the stored configuration of one isolation rule. The
// ACTIVE/RELAXED status is never stored; it is recomputed from RelaxesAt and
// the current phase on every read.
type IsolationRule struct {
	Enabled       bool          `json:"enabled"`
	FrictionLevel FrictionLevel `json:"friction_level" validate:"omitempty,oneof=silent nudge challenge hard_stop"`
	RelaxesAt     Phase         `json:"relaxes_at" validate:"omitempty,oneof=stage1_foundation phase1_parallel_streams phase2_synthesis phase3_pattern_characterization cross_wave_analysis stage3_synthesis"`
}

// IsolationConfig holds the three rule configurations.
type IsolationConfig struct {
	CaseIsolation    IsolationRule `json:"case_isolation"`
	WaveIsolation    IsolationRule `json:"wave_isolation"`
	StreamSeparation IsolationRule `json:"stream_separation"`
}

// ResearchDesign is the static study structure read by the rule engine to
// decide which rule types apply.
type ResearchDesign struct {
	StudyType string          `json:"study_type,omitempty"`
	Cases     []Case          `json:"cases" validate:"dive"`
	Waves     []Wave          `json:"waves" validate:"dive"`
	Streams   Streams         `json:"streams"`
	Isolation IsolationConfig `json:"isolation_config"`
}

// StrainRecord counts overrides of one rule. Count accumulates only within
// a single phase; a phase change resets it lazily on the next override.
type StrainRecord struct {
	Count               int       `json:"count" validate:"min=0"`
	LastOverride        time.Time `json:"last_override"`
	PhaseWhenOverridden Phase     `json:"phase_when_overridden"`
}

// Override is one append-only override record. Never mutated or deleted.
type Override struct {
	ID            string    `json:"override_id"`
	RuleID        string    `json:"rule_id" validate:"required"`
	Timestamp     time.Time `json:"timestamp"`
	Justification string    `json:"justification"`
	Outcome       string    `json:"outcome"`
}

// StrainReview is one append-only record of a strain review resolution.
type StrainReview struct {
	RuleID        string     `json:"rule_id" validate:"required"`
	TriggeredAt   time.Time  `json:"triggered_at"`
	OverrideCount int        `json:"override_count"`
	Resolution    Resolution `json:"resolution" validate:"required,oneof=phase_transition adjust_rule isolated_exception"`
	Notes         string     `json:"notes"`
}

// StrainTracking aggregates per-rule strain accounting.
type StrainTracking struct {
	Threshold     int                      `json:"strain_threshold" validate:"min=0"`
	Counts        map[string]*StrainRecord `json:"override_counts"`
	StrainedRules []string                 `json:"strained_rules"`
	Overrides     []Override               `json:"rule_overrides" validate:"dive"`
	Reviews       []StrainReview           `json:"strain_reviews" validate:"dive"`
}

// DocumentRecord is one coded-document event in the code-generation signal.
type DocumentRecord struct {
	DocumentID   string    `json:"document_id" validate:"required"`
	DocumentName string    `json:"document_name"`
	NewCodes     int       `json:"new_codes_created" validate:"min=0"`
	Timestamp    time.Time `json:"timestamp"`
}

// CodeGeneration tracks the new-codes-per-document signal. StabilizedAt is
// recorded exactly once, the first time the rolling mean drops below the
// threshold with at least three data points.
type CodeGeneration struct {
	TotalCodes   int              `json:"total_codes" validate:"min=0"`
	Documents    []DocumentRecord `json:"codes_by_document" validate:"dive"`
	RollingRate  float64          `json:"rolling_rate" validate:"min=0"`
	StabilizedAt string           `json:"stabilized_at,omitempty"`
}

// CoverageEntry is the per-code coverage statistic.
type CoverageEntry struct {
	DocumentCount   int     `json:"document_count" validate:"min=0"`
	CaseCount       int     `json:"case_count" validate:"min=0"`
	CoveragePercent float64 `json:"coverage_percent" validate:"min=0,max=100"`
}

// CodeCoverage tracks how well codes cover the corpus. Codes under 10%
// coverage are rare, codes over 80% are universal; both boundaries are
// exclusive.
type CodeCoverage struct {
	ByCode         map[string]CoverageEntry `json:"coverage_by_code"`
	RareCodes      []string                 `json:"rare_codes"`
	UniversalCodes []string                 `json:"universal_codes"`
}

// RefinementEvent is one append-only split/merge/redefinition record.
// AtDocument stamps the number of documents recorded at the time of the
// event, which anchors the trailing-window recency computation.
type RefinementEvent struct {
	CodeID     string     `json:"code_id" validate:"required"`
	ChangeType ChangeType `json:"change_type" validate:"required,oneof=split merge redefinition"`
	OldState   string     `json:"old_state,omitempty"`
	NewState   string     `json:"new_state,omitempty"`
	Rationale  string     `json:"rationale,omitempty"`
	AtDocument int        `json:"at_document" validate:"min=0"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Refinement tracks definition-change activity. High recent activity works
// against saturation.
type Refinement struct {
	Events          []RefinementEvent `json:"definition_changes" validate:"dive"`
	RecentCount     int               `json:"recent_count" validate:"min=0"`
	SplitMergeCount int               `json:"split_merge_count" validate:"min=0"`
}

// Redundancy stores the asserted conceptual-redundancy score. The engine
// never computes it, only stores and thresholds it.
type Redundancy struct {
	Score          float64   `json:"score" validate:"min=0,max=1"`
	Notes          string    `json:"notes,omitempty"`
	LastAssessment time.Time `json:"last_assessment"`
}

// SaturationOverall is the derived composite, recomputed on demand and never
// incrementally patched.
type SaturationOverall struct {
	Level          SaturationLevel   `json:"level" validate:"omitempty,oneof=low emerging approaching high saturated"`
	Score          int               `json:"score" validate:"min=0,max=100"`
	Recommendation string            `json:"recommendation,omitempty"`
	Evidence       map[string]string `json:"evidence,omitempty"`
	LastAssessment time.Time         `json:"last_assessment"`
}

// SaturationThresholds are the tunable cutoffs, seeded from engine config at
// initialization so the document stays self-contained.
type SaturationThresholds struct {
	StableRate       float64 `json:"code_generation_stable" validate:"min=0"`
	RefinementStable int     `json:"refinement_stable" validate:"min=0"`
	RedundancyHigh   float64 `json:"redundancy_high" validate:"min=0,max=1"`
	CoverageAdequate float64 `json:"coverage_adequate" validate:"min=0,max=1"`
}

// SaturationTracking aggregates the four independent completion signals.
type SaturationTracking struct {
	CodeGeneration CodeGeneration       `json:"code_generation"`
	Coverage       CodeCoverage         `json:"code_coverage"`
	Refinement     Refinement           `json:"refinement"`
	Redundancy     Redundancy           `json:"redundancy"`
	Overall        SaturationOverall    `json:"overall"`
	Thresholds     SaturationThresholds `json:"thresholds"`
}

// Branch is one interpretive branch of the workspace forest.
type Branch struct {
	ID              string        `json:"id" validate:"required"`
	Name            string        `json:"name"`
	ParentBranch    string        `json:"parent_branch,omitempty"`
	ForkedAtVersion int           `json:"forked_at_version" validate:"min=0"`
	CreatedAt       time.Time     `json:"created_at"`
	Framing         BranchFraming `json:"framing,omitempty" validate:"omitempty,oneof=exploratory confirmatory negative_case alternative_interpretation"`
	Status          BranchStatus  `json:"status" validate:"required,oneof=active merged abandoned"`
	MergeMemo       string        `json:"merge_memo,omitempty"`
}

// BranchDecision is one append-only entry of the branch audit trail.
type BranchDecision struct {
	Action       BranchAction `json:"action" validate:"required,oneof=fork switch merge abandon"`
	BranchID     string       `json:"branch_id" validate:"required"`
	TargetBranch string       `json:"target_branch,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	Rationale    string       `json:"rationale,omitempty"`
}

// WorkspaceBranches is the branch forest plus the single current pointer.
// Abandoned and merged branches are retained forever.
type WorkspaceBranches struct {
	CurrentBranch string           `json:"current_branch" validate:"required"`
	Branches      []Branch         `json:"branches" validate:"required,min=1,dive"`
	Decisions     []BranchDecision `json:"branch_decisions" validate:"dive"`
}

// FindBranch returns the branch with the given id, or nil.
func (w *WorkspaceBranches) FindBranch(id string) *Branch {
	for i := range w.Branches {
		if w.Branches[i].ID == id {
			return &w.Branches[i]
		}
	}
	return nil
}
