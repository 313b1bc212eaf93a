package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validState() *ProjectState {
	now := time.Now()
	return &ProjectState{
		Version:     1,
		ProjectName: "Test Study",
		CreatedAt:   now,
		UpdatedAt:   now,
		Progress:    Progress{CurrentStage: StageFoundation},
		Strain: StrainTracking{
			Threshold: 3,
			Counts:    map[string]*StrainRecord{},
		},
		Branches: WorkspaceBranches{
			CurrentBranch: MainBranchID,
			Branches: []Branch{
				{ID: MainBranchID, Name: "Main Analysis", CreatedAt: now, Status: BranchActive},
			},
		},
	}
}

func TestValidateState_AcceptsMinimalDocument(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.ValidateState(validState()))
}

func TestValidateState_EnumViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProjectState)
	}{
		{"unknown stage", func(st *ProjectState) { st.Progress.CurrentStage = "stage4_bonus" }},
		{"unknown branch status", func(st *ProjectState) { st.Branches.Branches[0].Status = "archived" }},
		{"unknown framing", func(st *ProjectState) {
			st.Branches.Branches = append(st.Branches.Branches, Branch{
				ID: "br_x", ParentBranch: MainBranchID, Status: BranchActive, Framing: "hunch",
			})
		}},
		{"negative version", func(st *ProjectState) { st.Version = 0 }},
		{"redundancy above one", func(st *ProjectState) { st.Saturation.Redundancy.Score = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := validState()
			tt.mutate(st)
			err := NewValidator().ValidateState(st)
			require.Error(t, err)
			var coded *Error
			require.ErrorAs(t, err, &coded)
			assert.Equal(t, CodeSchemaValidation, coded.Code)
			assert.NotEmpty(t, coded.Field)
		})
	}
}

func TestValidateState_OneofReportsAllowedValues(t *testing.T) {
	st := validState()
	st.Progress.CurrentStage = "nope"
	err := NewValidator().ValidateState(st)
	require.Error(t, err)
	var coded *Error
	require.ErrorAs(t, err, &coded)
	assert.Contains(t, coded.Allowed, "stage1_foundation")
	assert.Contains(t, coded.Allowed, "stage3_synthesis")
}

func TestValidateState_StructuralInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProjectState)
	}{
		{"missing main root", func(st *ProjectState) {
			st.Branches.Branches[0].ID = "other"
			st.Branches.Branches[0].ParentBranch = "ghost"
			st.Branches.CurrentBranch = "other"
		}},
		{"main with parent", func(st *ProjectState) { st.Branches.Branches[0].ParentBranch = "x" }},
		{"dangling current pointer", func(st *ProjectState) { st.Branches.CurrentBranch = "br_ghost" }},
		{"current pointer on merged branch", func(st *ProjectState) {
			st.Branches.Branches = append(st.Branches.Branches, Branch{
				ID: "br_m", ParentBranch: MainBranchID, Status: BranchMerged, MergeMemo: "a memo long enough",
			})
			st.Branches.CurrentBranch = "br_m"
		}},
		{"duplicate branch id", func(st *ProjectState) {
			st.Branches.Branches = append(st.Branches.Branches,
				Branch{ID: "br_d", ParentBranch: MainBranchID, Status: BranchActive},
				Branch{ID: "br_d", ParentBranch: MainBranchID, Status: BranchActive})
		}},
		{"missing parent reference", func(st *ProjectState) {
			st.Branches.Branches = append(st.Branches.Branches,
				Branch{ID: "br_o", ParentBranch: "br_ghost", Status: BranchActive})
		}},
		{"merged branch without memo", func(st *ProjectState) {
			st.Branches.Branches = append(st.Branches.Branches,
				Branch{ID: "br_m", ParentBranch: MainBranchID, Status: BranchMerged, MergeMemo: "   "})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := validState()
			tt.mutate(st)
			err := NewValidator().ValidateState(st)
			require.Error(t, err)
			var coded *Error
			require.ErrorAs(t, err, &coded)
			assert.Equal(t, CodeSchemaValidation, coded.Code)
		})
	}
}

func TestErrorIs_MatchesByCode(t *testing.T) {
	err := NewError(CodePrecondition, "memo too short").WithField("memo")
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.NotErrorIs(t, err, ErrNotFound)
}
