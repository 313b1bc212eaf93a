// Package mcp exposes the methodology engine over the Model Context
// Protocol so an AI assistant can consult and update the project state
// during analysis sessions.
//
// Every tool takes a project_path and operates on that project's document;
// the server itself holds no per-project state between calls.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/interpretivelabs/methodd/internal/branch"
	"github.com/interpretivelabs/methodd/internal/config"
	"github.com/interpretivelabs/methodd/internal/project"
	"github.com/interpretivelabs/methodd/internal/rules"
	"github.com/interpretivelabs/methodd/internal/sanitize"
	"github.com/interpretivelabs/methodd/internal/saturation"
	"github.com/interpretivelabs/methodd/internal/state"
	"github.com/interpretivelabs/methodd/internal/strain"
)

// Server is the MCP front end of the engine.
type Server struct {
	mcp    *mcp.Server
	cfg    *config.Config
	logger *zap.Logger
}

// ServerConfig configures the MCP server identity.
type ServerConfig struct {
	Name    string
	Version string
	Logger  *zap.Logger
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Name:    "methodd",
		Version: "1.0.0",
		Logger:  zap.NewNop(),
	}
}

// NewServer creates the MCP server and registers all tools.
func NewServer(sc *ServerConfig, cfg *config.Config) (*Server, error) {
	if sc == nil {
		sc = DefaultServerConfig()
	}
	if sc.Logger == nil {
		sc.Logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		mcp: mcp.NewServer(
			&mcp.Implementation{Name: sc.Name, Version: sc.Version},
			nil,
		),
		cfg:    cfg,
		logger: sc.Logger,
	}
	s.registerProjectTools()
	s.registerStrainTools()
	s.registerSaturationTools()
	s.registerBranchTools()
	return s, nil
}

// Run serves on the stdio transport until the context ends.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

// openStore validates the project path and binds a store to it.
func (s *Server) openStore(path string) (*state.Store, error) {
	validPath, err := sanitize.ValidatePath(path)
	if err != nil {
		return nil, err
	}
	return state.NewStore(validPath, s.logger), nil
}

func (s *Server) projectService(path string) (*project.Service, error) {
	store, err := s.openStore(path)
	if err != nil {
		return nil, err
	}
	return project.NewService(store, s.cfg, s.logger), nil
}

func (s *Server) strainTracker(path string) (*strain.Tracker, error) {
	store, err := s.openStore(path)
	if err != nil {
		return nil, err
	}
	return strain.NewTracker(store, s.logger), nil
}

func (s *Server) saturationTracker(path string) (*saturation.Tracker, error) {
	store, err := s.openStore(path)
	if err != nil {
		return nil, err
	}
	return saturation.NewTracker(store, s.logger), nil
}

func (s *Server) branchManager(path string) (*branch.Manager, error) {
	store, err := s.openStore(path)
	if err != nil {
		return nil, err
	}
	return branch.NewManager(store, s.logger), nil
}

func (s *Server) ruleEngine(path string) (*rules.Engine, error) {
	store, err := s.openStore(path)
	if err != nil {
		return nil, err
	}
	return rules.NewEngine(store, s.logger), nil
}
