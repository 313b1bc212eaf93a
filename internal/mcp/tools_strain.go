package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/interpretivelabs/methodd/internal/state"
	"github.com/interpretivelabs/methodd/internal/strain"
)

type recordOverrideInput struct {
	ProjectPath   string `json:"project_path" jsonschema:"required,Path to the project directory"`
	RuleID        string `json:"rule_id" jsonschema:"required,Rule being overridden"`
	Justification string `json:"justification,omitempty" jsonschema:"Why the rule was overridden"`
}

type recordResolutionInput struct {
	ProjectPath string `json:"project_path" jsonschema:"required,Path to the project directory"`
	RuleID      string `json:"rule_id" jsonschema:"required,Rule whose strain review is being resolved"`
	Resolution  string `json:"resolution" jsonschema:"required,One of phase_transition adjust_rule isolated_exception"`
	Notes       string `json:"notes,omitempty" jsonschema:"Review notes"`
}

type strainCheckInput struct {
	ProjectPath string `json:"project_path" jsonschema:"required,Path to the project directory"`
	RuleID      string `json:"rule_id,omitempty" jsonschema:"Check a single rule; empty checks all"`
}

func (s *Server) registerStrainTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "strain_record_override",
		Description: "Record a rule override and report whether the rule is now strained",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args recordOverrideInput) (*mcp.CallToolResult, strain.OverrideResult, error) {
		tracker, err := s.strainTracker(args.ProjectPath)
		if err != nil {
			return nil, strain.OverrideResult{}, err
		}
		result, err := tracker.RecordOverride(args.RuleID, args.Justification)
		if err != nil {
			return nil, strain.OverrideResult{}, err
		}
		return nil, *result, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "strain_record_resolution",
		Description: "Record the outcome of a methodological strain review",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args recordResolutionInput) (*mcp.CallToolResult, state.StrainReview, error) {
		tracker, err := s.strainTracker(args.ProjectPath)
		if err != nil {
			return nil, state.StrainReview{}, err
		}
		review, err := tracker.RecordResolution(args.RuleID, state.Resolution(args.Resolution), args.Notes)
		if err != nil {
			return nil, state.StrainReview{}, err
		}
		return nil, *review, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "strain_check",
		Description: "Report override counts and strain standing for one rule or all rules",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args strainCheckInput) (*mcp.CallToolResult, strain.Report, error) {
		tracker, err := s.strainTracker(args.ProjectPath)
		if err != nil {
			return nil, strain.Report{}, err
		}
		report, err := tracker.Check(args.RuleID)
		if err != nil {
			return nil, strain.Report{}, err
		}
		return nil, *report, nil
	})
}
