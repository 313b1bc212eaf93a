// Package branch manages interpretive workspace branches. Branches let the
// researcher pursue an alternative reading without losing the main line;
// every branch is retained forever once created, merge and abandon only
// change its status.
package branch

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/interpretivelabs/methodd/internal/state"
)

// MergeMemoMinimum is the shortest acceptable merge memo. Merging an
// interpretive branch without saying what was learned defeats the point.
const MergeMemoMinimum = 50

// Manager applies branch operations to the document.
type Manager struct {
	store  *state.Store
	logger *zap.Logger
}

// NewManager binds the manager to a project store.
func NewManager(store *state.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, logger: logger}
}

// ForkResult reports a created branch.
type ForkResult struct {
	Branch        state.Branch `json:"branch"`
	CurrentBranch string       `json:"current_branch"`
}

// Fork creates a new active branch off the current one and switches to it.
// The framing names why the branch exists and must be one of the closed set.
func (m *Manager) Fork(name string, framing state.BranchFraming, rationale string) (*ForkResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, state.NewError(state.CodeInvalidArgument, "branch name is required").WithField("name")
	}
	if !framing.Valid() {
		return nil, state.NewError(state.CodeInvalidArgument, "unknown framing %q", framing).
			WithField("framing").
			WithAllowed(
				string(state.FramingExploratory),
				string(state.FramingConfirmatory),
				string(state.FramingNegativeCase),
				string(state.FramingAlternativeInterpretation),
			)
	}
	var result *ForkResult
	_, err := m.store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		ws := &st.Branches
		parent := ws.FindBranch(ws.CurrentBranch)
		if parent == nil || parent.Status != state.BranchActive {
			return state.JournalEntry{}, state.NewError(state.CodeInternal,
				"current branch %q is missing or not active", ws.CurrentBranch)
		}

		now := time.Now()
		br := state.Branch{
			ID:              "br_" + uuid.NewString()[:8],
			Name:            name,
			ParentBranch:    parent.ID,
			ForkedAtVersion: st.Version,
			CreatedAt:       now,
			Framing:         framing,
			Status:          state.BranchActive,
		}
		ws.Branches = append(ws.Branches, br)
		ws.Decisions = append(ws.Decisions,
			state.BranchDecision{
				Action:       state.ActionFork,
				BranchID:     br.ID,
				TargetBranch: parent.ID,
				Timestamp:    now,
				Rationale:    rationale,
			},
			state.BranchDecision{
				Action:    state.ActionSwitch,
				BranchID:  br.ID,
				Timestamp: now,
			},
		)
		ws.CurrentBranch = br.ID

		result = &ForkResult{Branch: br, CurrentBranch: br.ID}
		return state.JournalEntry{
			Title: "Branch Forked",
			Body: fmt.Sprintf("Branch **%s** (%s) forked from **%s** at version %d.\n\n**Framing:** %s\n\n%s",
				name, br.ID, parent.ID, br.ForkedAtVersion, framing, rationale),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("branch forked",
		zap.String("branch", result.Branch.ID),
		zap.String("parent", result.Branch.ParentBranch))
	return result, nil
}

// Switch moves the current pointer to an existing active branch.
func (m *Manager) Switch(branchID, rationale string) (*state.Branch, error) {
	var switched state.Branch
	_, err := m.store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		ws := &st.Branches
		br := ws.FindBranch(branchID)
		if br == nil {
			return state.JournalEntry{}, state.NewError(state.CodeNotFound, "branch %q not found", branchID).
				WithField("branch_id")
		}
		if br.Status != state.BranchActive {
			return state.JournalEntry{}, state.NewError(state.CodePrecondition,
				"cannot switch to %s branch %q", br.Status, branchID)
		}
		ws.CurrentBranch = br.ID
		ws.Decisions = append(ws.Decisions, state.BranchDecision{
			Action:    state.ActionSwitch,
			BranchID:  br.ID,
			Timestamp: time.Now(),
			Rationale: rationale,
		})
		switched = *br
		return state.JournalEntry{
			Title: "Branch Switched",
			Body:  fmt.Sprintf("Now working on branch **%s** (%s).", br.Name, br.ID),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &switched, nil
}

// Merge closes an active non-main branch back into its parent. The memo
// records what the branch taught and is required before anything mutates.
func (m *Manager) Merge(branchID, memo string) (*state.Branch, error) {
	if len(strings.TrimSpace(memo)) < MergeMemoMinimum {
		return nil, state.NewError(state.CodePrecondition,
			"merge memo must be at least %d characters; say what this branch taught you",
			MergeMemoMinimum).WithField("memo")
	}
	return m.close(branchID, state.BranchMerged, memo)
}

// Abandon closes an active non-main branch without merging. The branch and
// its decision trail are kept for the audit record.
func (m *Manager) Abandon(branchID, rationale string) (*state.Branch, error) {
	return m.close(branchID, state.BranchAbandoned, rationale)
}

// close applies the shared merge/abandon transition. The current pointer
// falls back to the parent when it pointed at the closing branch.
func (m *Manager) close(branchID string, target state.BranchStatus, note string) (*state.Branch, error) {
	var closed state.Branch
	_, err := m.store.Update(func(st *state.ProjectState) (state.JournalEntry, error) {
		ws := &st.Branches
		br := ws.FindBranch(branchID)
		if br == nil {
			return state.JournalEntry{}, state.NewError(state.CodeNotFound, "branch %q not found", branchID).
				WithField("branch_id")
		}
		if br.ID == state.MainBranchID {
			return state.JournalEntry{}, state.NewError(state.CodePrecondition,
				"the main branch cannot be %s", target)
		}
		if br.Status != state.BranchActive {
			return state.JournalEntry{}, state.NewError(state.CodePrecondition,
				"branch %q is already %s", branchID, br.Status)
		}

		action := state.ActionAbandon
		title := "Branch Abandoned"
		br.Status = target
		if target == state.BranchMerged {
			action = state.ActionMerge
			title = "Branch Merged"
			br.MergeMemo = note
		}
		if ws.CurrentBranch == br.ID {
			ws.CurrentBranch = br.ParentBranch
		}
		ws.Decisions = append(ws.Decisions, state.BranchDecision{
			Action:       action,
			BranchID:     br.ID,
			TargetBranch: br.ParentBranch,
			Timestamp:    time.Now(),
			Rationale:    note,
		})
		closed = *br
		return state.JournalEntry{
			Title: title,
			Body: fmt.Sprintf("Branch **%s** (%s) %s into **%s**.\n\n%s",
				br.Name, br.ID, target, br.ParentBranch, note),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("branch closed",
		zap.String("branch", closed.ID),
		zap.String("status", string(closed.Status)))
	return &closed, nil
}

// Listing is the full branch picture.
type Listing struct {
	CurrentBranch string                 `json:"current_branch"`
	Branches      []state.Branch         `json:"branches"`
	Decisions     []state.BranchDecision `json:"branch_decisions"`
}

// List returns every branch ever created plus the decision trail.
func (m *Manager) List() (*Listing, error) {
	st, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	return &Listing{
		CurrentBranch: st.Branches.CurrentBranch,
		Branches:      st.Branches.Branches,
		Decisions:     st.Branches.Decisions,
	}, nil
}

// Current returns the branch the pointer rests on.
func (m *Manager) Current() (*state.Branch, error) {
	st, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	br := st.Branches.FindBranch(st.Branches.CurrentBranch)
	if br == nil {
		return nil, state.NewError(state.CodeInternal,
			"current branch %q is missing from the branch list", st.Branches.CurrentBranch)
	}
	return br, nil
}
