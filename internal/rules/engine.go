package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/interpretivelabs/methodd/internal/phase"
	"github.com/interpretivelabs/methodd/internal/state"
)

// ArtifactFileName is the regenerated rule artifact alongside the document.
const ArtifactFileName = "rules.json"

const artifactFileMode = 0o600

// Artifact is the on-disk rule file. It is derived output, never an input;
// deleting it loses nothing.
type Artifact struct {
	GeneratedAt  time.Time   `json:"generated_at"`
	CurrentPhase state.Phase `json:"current_phase"`
	Rules        []Rule      `json:"rules"`
}

// Engine regenerates the artifact and journals status transitions.
type Engine struct {
	store  *state.Store
	logger *zap.Logger
}

// NewEngine binds the engine to a project store.
func NewEngine(store *state.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, logger: logger}
}

// ArtifactPath returns where the rule artifact lives.
func (e *Engine) ArtifactPath() string {
	return filepath.Join(e.store.Dir(), ArtifactFileName)
}

// Regenerate recomputes all rules from the current document and rewrites the
// artifact atomically. When a rule's status changed since the previous
// artifact, the transition is journaled; the diff affects only the notice,
// never the generated rules.
func (e *Engine) Regenerate() (*Artifact, error) {
	st, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	prev := e.readArtifact()
	art := &Artifact{
		GeneratedAt:  time.Now(),
		CurrentPhase: phase.Current(st),
		Rules:        Generate(st),
	}

	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return nil, state.WrapError(state.CodeInternal, err, "failed to encode rules")
	}
	if err := state.WriteFileAtomic(e.ArtifactPath(), append(data, '\n'), artifactFileMode); err != nil {
		return nil, err
	}

	if entry := transitionEntry(prev, art); entry != nil {
		if err := e.store.Journal().Append(*entry); err != nil {
			return nil, err
		}
	}
	e.logger.Info("rules regenerated",
		zap.Int("rules", len(art.Rules)),
		zap.String("phase", string(art.CurrentPhase)))
	return art, nil
}

// readArtifact loads the previous artifact for the status diff. A missing or
// unreadable artifact just means no transitions to report.
func (e *Engine) readArtifact() *Artifact {
	data, err := os.ReadFile(e.ArtifactPath())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			e.logger.Warn("failed to read previous rules artifact", zap.Error(err))
		}
		return nil
	}
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		e.logger.Warn("failed to decode previous rules artifact", zap.Error(err))
		return nil
	}
	return &art
}

// transitionEntry builds the journal notice for rules whose status changed
// between the previous and the new artifact. Nil when nothing changed.
func transitionEntry(prev, next *Artifact) *state.JournalEntry {
	if prev == nil {
		return nil
	}
	old := make(map[string]Status, len(prev.Rules))
	for _, r := range prev.Rules {
		old[r.RuleID] = r.Status
	}
	var lines []string
	for _, r := range next.Rules {
		before, ok := old[r.RuleID]
		if ok && before != r.Status {
			lines = append(lines, fmt.Sprintf("- **%s**: %s -> %s", r.RuleID, before, r.Status))
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return &state.JournalEntry{
		Title: "Methodological Rules Update",
		Body: fmt.Sprintf("**Current Phase:** %s\n\n**Status changes:**\n%s",
			next.CurrentPhase, strings.Join(lines, "\n")),
	}
}
