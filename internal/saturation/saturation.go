// Package saturation tracks theoretical saturation across four signals:
// code generation rate, code coverage, refinement activity, and conceptual
// redundancy. Saturation is understood as grasping the full range of
// variation, not mere repetition, so no single signal decides the level.
package saturation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/interpretivelabs/methodd/internal/state"
)

// Default thresholds, overridable at init.
const (
	DefaultStableRate       = 0.5
	DefaultRefinementStable = 2
	DefaultRedundancyHigh   = 0.85
	DefaultCoverageAdequate = 0.7
)

// rollingWindow is the trailing document count over which the generation
// rate and refinement recency are computed.
const rollingWindow = 5

// Tracker records saturation evidence against the document.
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

// DocumentResult reports one recorded coding pass.
type DocumentResult struct {
	DocumentID   string  `json:"document_id"`
	NewCodes     int     `json:"new_codes"`
	TotalCodes   int     `json:"total_codes"`
	RollingRate  float64 `json:"generation_rate"`
	Stabilized   bool    `json:"stabilized"`
	StabilizedAt string  `json:"stabilized_at,omitempty"`
}

// RecordDocument logs one coded document and the new codes it produced. The
// rolling generation rate covers the trailing window; once the rate drops
// below the stable threshold with at least three documents recorded, the
// stabilization point is stamped and never moves again.
func (t *Tracker) RecordDocument(docID, docName string, newCodes int) (*DocumentResult, error) {
	if docID == "" {
		return nil, state.NewError(state.CodeInvalidArgument, "document id is required").WithField("document_id")
	}
	if newCodes < 0 {
		return nil, state.NewError(state.CodeInvalidArgument, "new code count cannot be negative").WithField("new_codes")
	}
	var result *DocumentResult
	_, err := t.store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		gen := &st.Saturation.CodeGeneration
		gen.Documents = append(gen.Documents, state.DocumentRecord{
			DocumentID:   docID,
			DocumentName: docName,
			NewCodes:     newCodes,
			Timestamp:    time.Now(),
		})
		gen.TotalCodes += newCodes
		gen.RollingRate = rollingRate(gen.Documents)

		stable := thresholds(st).StableRate
		if gen.StabilizedAt == "" && len(gen.Documents) >= 3 && gen.RollingRate < stable {
			gen.StabilizedAt = docID
		}

		st.Progress.DocumentsCoded++
		st.Progress.TotalDocuments = len(gen.Documents)
		st.Saturation.Refinement.RecentCount = recentRefinements(&st.Saturation)

		result = &DocumentResult{
			DocumentID:   docID,
			NewCodes:     newCodes,
			TotalCodes:   gen.TotalCodes,
			RollingRate:  gen.RollingRate,
			Stabilized:   gen.StabilizedAt != "",
			StabilizedAt: gen.StabilizedAt,
		}
		return state.JournalEntry{
			Title: "Saturation Tracking Update",
			Body: fmt.Sprintf("Document **%s** coded with %d new code(s). Rolling rate: %.2f new codes/doc.",
				docID, newCodes, gen.RollingRate),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	t.logger.Debug("document recorded",
		zap.String("doc", docID),
		zap.Float64("rate", result.RollingRate))
	return result, nil
}

// RefinementResult reports one recorded code refinement.
type RefinementResult struct {
	CodeID           string           `json:"code_id"`
	ChangeType       state.ChangeType `json:"change_type"`
	TotalRefinements int              `json:"total_refinements"`
	SplitMergeCount  int              `json:"split_merge_count"`
	RecentActivity   int              `json:"recent_activity"`
}

// RecordRefinement logs a split, merge, or redefinition of a code. Events
// are stamped with the document count at recording time; recency is then
// judged against that stamp, not against wall-clock time.
func (t *Tracker) RecordRefinement(codeID string, change state.ChangeType, oldState, newState, rationale string) (*RefinementResult, error) {
	if codeID == "" {
		return nil, state.NewError(state.CodeInvalidArgument, "code id is required").WithField("code_id")
	}
	if !change.Valid() {
		return nil, state.NewError(state.CodeInvalidArgument, "unknown change type %q", change).
			WithField("change_type").
			WithAllowed(string(state.ChangeSplit), string(state.ChangeMerge), string(state.ChangeRedefinition))
	}
	var result *RefinementResult
	_, err := t.store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		ref := &st.Saturation.Refinement
		ref.Events = append(ref.Events, state.RefinementEvent{
			CodeID:     codeID,
			ChangeType: change,
			OldState:   oldState,
			NewState:   newState,
			Rationale:  rationale,
			AtDocument: len(st.Saturation.CodeGeneration.Documents),
			Timestamp:  time.Now(),
		})
		if change == state.ChangeSplit || change == state.ChangeMerge {
			ref.SplitMergeCount++
		}
		ref.RecentCount = recentRefinements(&st.Saturation)

		result = &RefinementResult{
			CodeID:           codeID,
			ChangeType:       change,
			TotalRefinements: len(ref.Events),
			SplitMergeCount:  ref.SplitMergeCount,
			RecentActivity:   ref.RecentCount,
		}
		return state.JournalEntry{
			Title: "Code Refinement Recorded",
			Body: fmt.Sprintf("Code **%s** %s.\n\n**Rationale:** %s",
				codeID, change, rationale),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CoverageInput is the per-code raw counts supplied by the caller.
type CoverageInput struct {
	DocumentCount int `json:"document_count"`
	CaseCount     int `json:"case_count"`
}

// CoverageResult reports the recomputed coverage statistics.
type CoverageResult struct {
	TotalCodesTracked int      `json:"total_codes_tracked"`
	RareCodes         []string `json:"rare_codes"`
	UniversalCodes    []string `json:"universal_codes"`
}

// UpdateCoverage recomputes per-code coverage percentages against the
// number of documents coded so far. Codes under 10% coverage are rare and
// codes over 80% are universal; both boundaries are exclusive.
func (t *Tracker) UpdateCoverage(data map[string]CoverageInput) (*CoverageResult, error) {
	if len(data) == 0 {
		return nil, state.NewError(state.CodeInvalidArgument, "coverage data is required").WithField("coverage")
	}
	var result *CoverageResult
	_, err := t.store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		total := st.Progress.DocumentsCoded
		if total < 1 {
			total = 1
		}
		cov := &st.Saturation.Coverage
		if cov.ByCode == nil {
			cov.ByCode = map[string]state.CoverageEntry{}
		}
		for codeID, in := range data {
			if in.DocumentCount < 0 {
				return state.JournalEntry{}, state.NewError(state.CodeInvalidArgument,
					"document count for code %q cannot be negative", codeID).WithField("document_count")
			}
			percent := float64(in.DocumentCount) / float64(total) * 100
			cov.ByCode[codeID] = state.CoverageEntry{
				DocumentCount:   in.DocumentCount,
				CaseCount:       in.CaseCount,
				CoveragePercent: math.Round(percent*10) / 10,
			}
		}

		rare := []string{}
		universal := []string{}
		for codeID, entry := range cov.ByCode {
			switch {
			case entry.CoveragePercent < 10:
				rare = append(rare, codeID)
			case entry.CoveragePercent > 80:
				universal = append(universal, codeID)
			}
		}
		// Sorted so identical evidence commits byte-identical documents.
		sort.Strings(rare)
		sort.Strings(universal)
		cov.RareCodes = rare
		cov.UniversalCodes = universal

		result = &CoverageResult{
			TotalCodesTracked: len(cov.ByCode),
			RareCodes:         rare,
			UniversalCodes:    universal,
		}
		return state.JournalEntry{
			Title: "Saturation Tracking Update",
			Body: fmt.Sprintf("Coverage updated for %d code(s): %d rare, %d universal.",
				len(data), len(rare), len(universal)),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RedundancyResult reports the recorded redundancy assessment.
type RedundancyResult struct {
	Score          float64 `json:"redundancy_score"`
	Threshold      float64 `json:"threshold"`
	AboveThreshold bool    `json:"above_threshold"`
}

// UpdateRedundancy records the researcher's judgment of conceptual
// redundancy. The score is clamped to [0, 1].
func (t *Tracker) UpdateRedundancy(score float64, notes string) (*RedundancyResult, error) {
	var result *RedundancyResult
	_, err := t.store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		clamped := math.Max(0, math.Min(1, score))
		red := &st.Saturation.Redundancy
		red.Score = clamped
		red.Notes = notes
		red.LastAssessment = time.Now()

		high := thresholds(st).RedundancyHigh
		result = &RedundancyResult{
			Score:          clamped,
			Threshold:      high,
			AboveThreshold: clamped >= high,
		}
		return state.JournalEntry{
			Title: "Saturation Tracking Update",
			Body:  fmt.Sprintf("Redundancy assessed at %.2f.\n\n%s", clamped, notes),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Assess recomputes the composite saturation level from current evidence
// and stores the result. Same document, same assessment.
func (t *Tracker) Assess() (*Assessment, error) {
	var assessment *Assessment
	_, err := t.store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		st.Saturation.Refinement.RecentCount = recentRefinements(&st.Saturation)
		assessment = Compute(&st.Saturation)

		st.Saturation.Overall = state.SaturationOverall{
			Level:          assessment.Level,
			Score:          assessment.Score,
			Recommendation: assessment.Recommendation,
			Evidence:       assessment.Evidence,
			LastAssessment: time.Now(),
		}
		return state.JournalEntry{
			Title: "Saturation Assessment",
			Body: fmt.Sprintf("**Level:** %s (%d/100)\n\n%s",
				assessment.Level, assessment.Score, assessment.Recommendation),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	t.logger.Info("saturation assessed",
		zap.String("level", string(assessment.Level)),
		zap.Int("score", assessment.Score))
	return assessment, nil
}

// Status returns the stored saturation picture without reassessing.
func (t *Tracker) Status() (*state.SaturationTracking, error) {
	st, err := t.store.Load()
	if err != nil {
		return nil, err
	}
	st.Saturation.Refinement.RecentCount = recentRefinements(&st.Saturation)
	return &st.Saturation, nil
}

// rollingRate averages new codes per document over the trailing window.
func rollingRate(docs []state.DocumentRecord) float64 {
	if len(docs) == 0 {
		return 0
	}
	start := len(docs) - rollingWindow
	if start < 0 {
		start = 0
	}
	window := docs[start:]
	sum := 0
	for _, d := range window {
		sum += d.NewCodes
	}
	rate := float64(sum) / float64(len(window))
	return math.Round(rate*100) / 100
}

// recentRefinements counts events stamped within the trailing document
// window. An event recorded at document N stays recent until the corpus
// grows past N + window.
func recentRefinements(tr *state.SaturationTracking) int {
	floor := len(tr.CodeGeneration.Documents) - rollingWindow
	count := 0
	for _, e := range tr.Refinement.Events {
		if e.AtDocument > floor {
			count++
		}
	}
	return count
}
