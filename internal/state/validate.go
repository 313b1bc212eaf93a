package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks a candidate document against the fixed schema: required
// fields, enum membership, numeric ranges, and the structural invariants the
// tag grammar cannot express.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds the schema validator.
func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateState returns a SCHEMA_VALIDATION error describing the first
// offending field, or nil. It never mutates the document.
func (sv *Validator) ValidateState(st *ProjectState) error {
	if st == nil {
		return NewError(CodeSchemaValidation, "document is nil")
	}
	if err := sv.v.Struct(st); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			e := WrapError(CodeSchemaValidation, err,
				"field %s failed %q validation", fe.Namespace(), fe.Tag())
			e.Field = fe.Namespace()
			if fe.Tag() == "oneof" {
				e.Allowed = strings.Fields(fe.Param())
			}
			return e
		}
		return WrapError(CodeSchemaValidation, err, "document failed validation")
	}
	return sv.validateStructure(st)
}

// validateStructure enforces the cross-field invariants: the branch forest
// is rooted at an immutable main branch, the current pointer resolves, and
// parent references exist.
func (sv *Validator) validateStructure(st *ProjectState) error {
	wb := &st.Branches

	main := wb.FindBranch(MainBranchID)
	if main == nil {
		return NewError(CodeSchemaValidation, "branch forest has no %q root", MainBranchID).
			WithField("workspace_branches.branches")
	}
	if main.ParentBranch != "" {
		return NewError(CodeSchemaValidation, "root branch must have no parent").
			WithField("workspace_branches.branches")
	}
	if main.Status != BranchActive {
		return NewError(CodeSchemaValidation, "root branch must stay active, got %q", main.Status).
			WithField("workspace_branches.branches")
	}

	current := wb.FindBranch(wb.CurrentBranch)
	if current == nil {
		return NewError(CodeSchemaValidation, "current branch %q does not exist", wb.CurrentBranch).
			WithField("workspace_branches.current_branch")
	}
	if current.Status != BranchActive {
		return NewError(CodeSchemaValidation, "current branch %q is %s", wb.CurrentBranch, current.Status).
			WithField("workspace_branches.current_branch")
	}

	seen := make(map[string]bool, len(wb.Branches))
	for i := range wb.Branches {
		b := &wb.Branches[i]
		if seen[b.ID] {
			return NewError(CodeSchemaValidation, "duplicate branch id %q", b.ID).
				WithField("workspace_branches.branches")
		}
		seen[b.ID] = true
		if b.ID != MainBranchID {
			if b.ParentBranch == "" {
				return NewError(CodeSchemaValidation, "branch %q has no parent", b.ID).
					WithField("workspace_branches.branches")
			}
			if wb.FindBranch(b.ParentBranch) == nil {
				return NewError(CodeSchemaValidation,
					"branch %q references missing parent %q", b.ID, b.ParentBranch).
					WithField("workspace_branches.branches")
			}
			if b.Status == BranchMerged && len(strings.TrimSpace(b.MergeMemo)) == 0 {
				return NewError(CodeSchemaValidation, "merged branch %q has no synthesis memo", b.ID).
					WithField(fmt.Sprintf("workspace_branches.branches[%s].merge_memo", b.ID))
			}
		}
	}
	return nil
}
