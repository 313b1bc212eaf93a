package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/interpretivelabs/methodd/internal/saturation"
	"github.com/interpretivelabs/methodd/internal/state"
)

type recordDocumentInput struct {
	ProjectPath  string `json:"project_path" jsonschema:"required,Path to the project directory"`
	DocumentID   string `json:"document_id" jsonschema:"required,Document identifier"`
	DocumentName string `json:"document_name,omitempty" jsonschema:"Human-readable document name"`
	NewCodes     int    `json:"new_codes" jsonschema:"Number of new codes this document produced"`
}

type recordRefinementInput struct {
	ProjectPath string `json:"project_path" jsonschema:"required,Path to the project directory"`
	CodeID      string `json:"code_id" jsonschema:"required,Code being refined"`
	ChangeType  string `json:"change_type" jsonschema:"required,One of split merge redefinition"`
	OldState    string `json:"old_state,omitempty" jsonschema:"Previous definition"`
	NewState    string `json:"new_state,omitempty" jsonschema:"New definition"`
	Rationale   string `json:"rationale,omitempty" jsonschema:"Why the code changed"`
}

type updateCoverageInput struct {
	ProjectPath string                              `json:"project_path" jsonschema:"required,Path to the project directory"`
	Coverage    map[string]saturation.CoverageInput `json:"coverage" jsonschema:"required,Per-code document and case counts"`
}

type updateRedundancyInput struct {
	ProjectPath string  `json:"project_path" jsonschema:"required,Path to the project directory"`
	Score       float64 `json:"score" jsonschema:"required,Redundancy judgment between 0 and 1"`
	Notes       string  `json:"notes,omitempty" jsonschema:"Assessment notes"`
}

type saturationProjectInput struct {
	ProjectPath string `json:"project_path" jsonschema:"required,Path to the project directory"`
}

func (s *Server) registerSaturationTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "saturation_record_document",
		Description: "Record a coded document and update the code generation rate",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args recordDocumentInput) (*mcp.CallToolResult, saturation.DocumentResult, error) {
		tracker, err := s.saturationTracker(args.ProjectPath)
		if err != nil {
			return nil, saturation.DocumentResult{}, err
		}
		result, err := tracker.RecordDocument(args.DocumentID, args.DocumentName, args.NewCodes)
		if err != nil {
			return nil, saturation.DocumentResult{}, err
		}
		return nil, *result, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "saturation_record_refinement",
		Description: "Record a code split, merge, or redefinition",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args recordRefinementInput) (*mcp.CallToolResult, saturation.RefinementResult, error) {
		tracker, err := s.saturationTracker(args.ProjectPath)
		if err != nil {
			return nil, saturation.RefinementResult{}, err
		}
		result, err := tracker.RecordRefinement(args.CodeID, state.ChangeType(args.ChangeType),
			args.OldState, args.NewState, args.Rationale)
		if err != nil {
			return nil, saturation.RefinementResult{}, err
		}
		return nil, *result, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "saturation_update_coverage",
		Description: "Update per-code coverage statistics and the rare/universal code lists",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args updateCoverageInput) (*mcp.CallToolResult, saturation.CoverageResult, error) {
		tracker, err := s.saturationTracker(args.ProjectPath)
		if err != nil {
			return nil, saturation.CoverageResult{}, err
		}
		result, err := tracker.UpdateCoverage(args.Coverage)
		if err != nil {
			return nil, saturation.CoverageResult{}, err
		}
		return nil, *result, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "saturation_update_redundancy",
		Description: "Record the researcher's conceptual redundancy judgment",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args updateRedundancyInput) (*mcp.CallToolResult, saturation.RedundancyResult, error) {
		tracker, err := s.saturationTracker(args.ProjectPath)
		if err != nil {
			return nil, saturation.RedundancyResult{}, err
		}
		result, err := tracker.UpdateRedundancy(args.Score, args.Notes)
		if err != nil {
			return nil, saturation.RedundancyResult{}, err
		}
		return nil, *result, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "saturation_assess",
		Description: "Recompute the composite saturation level from all four signals",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args saturationProjectInput) (*mcp.CallToolResult, saturation.Assessment, error) {
		tracker, err := s.saturationTracker(args.ProjectPath)
		if err != nil {
			return nil, saturation.Assessment{}, err
		}
		assessment, err := tracker.Assess()
		if err != nil {
			return nil, saturation.Assessment{}, err
		}
		return nil, *assessment, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "saturation_status",
		Description: "Report the stored saturation evidence without reassessing",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args saturationProjectInput) (*mcp.CallToolResult, state.SaturationTracking, error) {
		tracker, err := s.saturationTracker(args.ProjectPath)
		if err != nil {
			return nil, state.SaturationTracking{}, err
		}
		tracking, err := tracker.Status()
		if err != nil {
			return nil, state.SaturationTracking{}, err
		}
		return nil, *tracking, nil
	})
}
