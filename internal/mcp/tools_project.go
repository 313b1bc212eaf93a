package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/interpretivelabs/methodd/internal/phase"
	"github.com/interpretivelabs/methodd/internal/project"
	"github.com/interpretivelabs/methodd/internal/rules"
)

type projectInitInput struct {
	ProjectPath      string   `json:"project_path" jsonschema:"required,Path to the project directory"`
	ProjectName      string   `json:"project_name" jsonschema:"required,Human-readable study name"`
	ResearchQuestion string   `json:"research_question,omitempty" jsonschema:"The guiding research question"`
	Cases            []string `json:"cases,omitempty" jsonschema:"Case names for a multi-case design"`
	Waves            []string `json:"waves,omitempty" jsonschema:"Wave names for a longitudinal design"`
	TheoreticalPath  string   `json:"theoretical_path,omitempty" jsonschema:"Folder of the theoretical stream"`
	EmpiricalPath    string   `json:"empirical_path,omitempty" jsonschema:"Folder of the empirical stream"`
}

type projectInitOutput struct {
	ProjectName string `json:"project_name"`
	StatePath   string `json:"state_path"`
	Version     int    `json:"version"`
}

type projectStatusInput struct {
	ProjectPath string `json:"project_path" jsonschema:"required,Path to the project directory"`
}

type transitionInput struct {
	ProjectPath string `json:"project_path" jsonschema:"required,Path to the project directory"`
	Target      string `json:"target" jsonschema:"required,Stage or sub-phase to advance to"`
}

type rulesGenerateInput struct {
	ProjectPath string `json:"project_path" jsonschema:"required,Path to the project directory"`
}

func (s *Server) registerProjectTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "project_init",
		Description: "Initialize methodology tracking for a qualitative research project",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args projectInitInput) (*mcp.CallToolResult, projectInitOutput, error) {
		svc, err := s.projectService(args.ProjectPath)
		if err != nil {
			return nil, projectInitOutput{}, err
		}
		st, err := svc.Init(project.InitRequest{
			ProjectName:      args.ProjectName,
			ResearchQuestion: args.ResearchQuestion,
			CaseNames:        args.Cases,
			WaveNames:        args.Waves,
			TheoreticalPath:  args.TheoreticalPath,
			EmpiricalPath:    args.EmpiricalPath,
		})
		if err != nil {
			return nil, projectInitOutput{}, err
		}
		return nil, projectInitOutput{
			ProjectName: st.ProjectName,
			StatePath:   svc.Store().StatePath(),
			Version:     st.Version,
		}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "project_status",
		Description: "Report the current phase, rule standings, strain, saturation, and branch picture",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args projectStatusInput) (*mcp.CallToolResult, project.Status, error) {
		svc, err := s.projectService(args.ProjectPath)
		if err != nil {
			return nil, project.Status{}, err
		}
		status, err := svc.Status()
		if err != nil {
			return nil, project.Status{}, err
		}
		return nil, *status, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "project_transition",
		Description: "Advance the project to the next stage or stage-2 sub-phase",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args transitionInput) (*mcp.CallToolResult, phase.TransitionResult, error) {
		store, err := s.openStore(args.ProjectPath)
		if err != nil {
			return nil, phase.TransitionResult{}, err
		}
		result, err := phase.Advance(store, args.Target)
		if err != nil {
			return nil, phase.TransitionResult{}, err
		}
		// The rule artifact goes stale on every phase change.
		if _, err := rules.NewEngine(store, s.logger).Regenerate(); err != nil {
			return nil, phase.TransitionResult{}, err
		}
		return nil, *result, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "rules_generate",
		Description: "Regenerate the methodological rules from the study design and current phase",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args rulesGenerateInput) (*mcp.CallToolResult, rules.Artifact, error) {
		engine, err := s.ruleEngine(args.ProjectPath)
		if err != nil {
			return nil, rules.Artifact{}, err
		}
		art, err := engine.Regenerate()
		if err != nil {
			return nil, rules.Artifact{}, err
		}
		return nil, *art, nil
	})
}
