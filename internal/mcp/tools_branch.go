package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/interpretivelabs/methodd/internal/branch"
	"github.com/interpretivelabs/methodd/internal/state"
)

type branchForkInput struct {
	ProjectPath string `json:"project_path" jsonschema:"required,Path to the project directory"`
	Name        string `json:"name" jsonschema:"required,Branch name"`
	Framing     string `json:"framing" jsonschema:"required,One of exploratory confirmatory negative_case alternative_interpretation"`
	Rationale   string `json:"rationale,omitempty" jsonschema:"Why this branch exists"`
}

type branchSwitchInput struct {
	ProjectPath string `json:"project_path" jsonschema:"required,Path to the project directory"`
	BranchID    string `json:"branch_id" jsonschema:"required,Branch to switch to"`
	Rationale   string `json:"rationale,omitempty" jsonschema:"Why switch now"`
}

type branchMergeInput struct {
	ProjectPath string `json:"project_path" jsonschema:"required,Path to the project directory"`
	BranchID    string `json:"branch_id" jsonschema:"required,Branch to merge"`
	Memo        string `json:"memo" jsonschema:"required,What this branch taught you (at least 50 characters)"`
}

type branchAbandonInput struct {
	ProjectPath string `json:"project_path" jsonschema:"required,Path to the project directory"`
	BranchID    string `json:"branch_id" jsonschema:"required,Branch to abandon"`
	Rationale   string `json:"rationale,omitempty" jsonschema:"Why the line of analysis was dropped"`
}

type branchListInput struct {
	ProjectPath string `json:"project_path" jsonschema:"required,Path to the project directory"`
}

func (s *Server) registerBranchTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "branch_fork",
		Description: "Fork a new interpretive branch off the current one and switch to it",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args branchForkInput) (*mcp.CallToolResult, branch.ForkResult, error) {
		mgr, err := s.branchManager(args.ProjectPath)
		if err != nil {
			return nil, branch.ForkResult{}, err
		}
		result, err := mgr.Fork(args.Name, state.BranchFraming(args.Framing), args.Rationale)
		if err != nil {
			return nil, branch.ForkResult{}, err
		}
		return nil, *result, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "branch_switch",
		Description: "Move the working pointer to another active branch",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args branchSwitchInput) (*mcp.CallToolResult, state.Branch, error) {
		mgr, err := s.branchManager(args.ProjectPath)
		if err != nil {
			return nil, state.Branch{}, err
		}
		br, err := mgr.Switch(args.BranchID, args.Rationale)
		if err != nil {
			return nil, state.Branch{}, err
		}
		return nil, *br, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "branch_merge",
		Description: "Merge a branch back into its parent with a memo of what was learned",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args branchMergeInput) (*mcp.CallToolResult, state.Branch, error) {
		mgr, err := s.branchManager(args.ProjectPath)
		if err != nil {
			return nil, state.Branch{}, err
		}
		br, err := mgr.Merge(args.BranchID, args.Memo)
		if err != nil {
			return nil, state.Branch{}, err
		}
		return nil, *br, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "branch_abandon",
		Description: "Abandon a branch while keeping its record for the audit trail",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args branchAbandonInput) (*mcp.CallToolResult, state.Branch, error) {
		mgr, err := s.branchManager(args.ProjectPath)
		if err != nil {
			return nil, state.Branch{}, err
		}
		br, err := mgr.Abandon(args.BranchID, args.Rationale)
		if err != nil {
			return nil, state.Branch{}, err
		}
		return nil, *br, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "branch_list",
		Description: "List every branch ever created plus the decision trail",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args branchListInput) (*mcp.CallToolResult, branch.Listing, error) {
		mgr, err := s.branchManager(args.ProjectPath)
		if err != nil {
			return nil, branch.Listing{}, err
		}
		listing, err := mgr.List()
		if err != nil {
			return nil, branch.Listing{}, err
		}
		return nil, *listing, nil
	})
}
