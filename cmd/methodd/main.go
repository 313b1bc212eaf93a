// Package main implements the methodd CLI: methodology enforcement for
// long-running qualitative research projects.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/interpretivelabs/methodd/internal/branch"
	"github.com/interpretivelabs/methodd/internal/config"
	"github.com/interpretivelabs/methodd/internal/logging"
	"github.com/interpretivelabs/methodd/internal/project"
	"github.com/interpretivelabs/methodd/internal/rules"
	"github.com/interpretivelabs/methodd/internal/sanitize"
	"github.com/interpretivelabs/methodd/internal/saturation"
	"github.com/interpretivelabs/methodd/internal/state"
	"github.com/interpretivelabs/methodd/internal/strain"
)

var version = "dev"

var (
	projectPath string
	configPath  string
	logLevel    string
	logFormat   string
)

var rootCmd = &cobra.Command{
	Use:   "methodd",
	Short: "Methodology enforcement for qualitative research projects",
	Long: `methodd keeps a long-running qualitative research project
methodologically honest: phase-sensitive isolation rules, strain detection
on repeated overrides, multi-signal saturation tracking, and an interpretive
branch model, all recorded in an append-only journal.

Command output is JSON on stdout; logs go to stderr.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectPath, "project-path", "p", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "engine config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")
}

// printError writes the failure as JSON on stderr so scripted callers get
// the same shape for success and failure.
func printError(err error) {
	out := map[string]any{
		"success": false,
		"error":   err.Error(),
	}
	var coded *state.Error
	if errors.As(err, &coded) {
		out["code"] = string(coded.Code)
		if coded.Field != "" {
			out["field"] = coded.Field
		}
		if len(coded.Allowed) > 0 {
			out["allowed"] = coded.Allowed
		}
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Fprintln(os.Stderr, string(data))
}

// emit prints the command result as JSON on stdout.
func emit(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// engine bundles everything a command needs against one project.
type engine struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *state.Store
}

// newEngine loads config, builds the logger, and binds the store to the
// validated project path.
func newEngine() (*engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	format := cfg.Logging.Format
	if logFormat != "" {
		format = logFormat
	}
	logger, err := logging.New(level, format)
	if err != nil {
		return nil, err
	}
	path, err := sanitize.ValidatePath(projectPath)
	if err != nil {
		return nil, err
	}
	return &engine{
		cfg:    cfg,
		logger: logger,
		store:  state.NewStore(path, logger),
	}, nil
}

func (e *engine) project() *project.Service {
	return project.NewService(e.store, e.cfg, e.logger)
}

func (e *engine) rules() *rules.Engine {
	return rules.NewEngine(e.store, e.logger)
}

func (e *engine) strain() *strain.Tracker {
	return strain.NewTracker(e.store, e.logger)
}

func (e *engine) saturation() *saturation.Tracker {
	return saturation.NewTracker(e.store, e.logger)
}

func (e *engine) branches() *branch.Manager {
	return branch.NewManager(e.store, e.logger)
}
