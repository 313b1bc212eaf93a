package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	// ConfigDirName is the dot-directory holding all durable state.
	ConfigDirName = ".methodd"

	// StateFileName is the structured system-of-record document.
	StateFileName = "state.json"

	// MainBranchID is the immutable root of the branch forest.
	MainBranchID = "main"

	stateFileMode = 0o600
	configDirMode = 0o700
)

// Store owns the project document on durable storage. All access goes
// through Load/Commit/Update; the raw document is never exposed for
// uncoordinated in-place mutation.
type Store struct {
	projectPath string
	dir         string
	statePath   string
	journal     *Journal
	validator   *Validator
	logger      *zap.Logger
}

// NewStore binds a store to a project directory. The directory itself is not
// created until Init.
func NewStore(projectPath string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := filepath.Join(projectPath, ConfigDirName)
	return &Store{
		projectPath: projectPath,
		dir:         dir,
		statePath:   filepath.Join(dir, StateFileName),
		journal:     NewJournal(filepath.Join(dir, JournalFileName)),
		validator:   NewValidator(),
		logger:      logger,
	}
}

// Dir returns the durable-state directory.
func (s *Store) Dir() string { return s.dir }

// StatePath returns the path of the document file.
func (s *Store) StatePath() string { return s.statePath }

// Journal returns the audit journal written alongside the document.
func (s *Store) Journal() *Journal { return s.journal }

// Exists reports whether the project has been initialized.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.statePath)
	return err == nil
}

// InitOptions seed the initial document.
type InitOptions struct {
	ProjectName      string
	ResearchQuestion string
	Cases            []Case
	Waves            []Wave
	Streams          Streams
	StrainThreshold  int
	Saturation       SaturationThresholds
}

// Init creates the document, the journal, and the main branch. It fails if
// the project is already initialized.
func (s *Store) Init(opts InitOptions) (*ProjectState, error) {
	if s.Exists() {
		return nil, NewError(CodePrecondition, "project already initialized at %s", s.statePath)
	}
	if err := os.MkdirAll(s.dir, configDirMode); err != nil {
		return nil, WrapError(CodeInternal, err, "failed to create %s", s.dir)
	}

	now := time.Now()
	st := &ProjectState{
		Version:          1,
		ProjectName:      opts.ProjectName,
		ResearchQuestion: opts.ResearchQuestion,
		CreatedAt:        now,
		UpdatedAt:        now,
		Progress: Progress{
			CurrentStage: StageFoundation,
		},
		Design: ResearchDesign{
			Cases:   opts.Cases,
			Waves:   opts.Waves,
			Streams: opts.Streams,
			Isolation: IsolationConfig{
				CaseIsolation:    IsolationRule{Enabled: true, FrictionLevel: FrictionChallenge, RelaxesAt: PhasePatterns},
				WaveIsolation:    IsolationRule{Enabled: true, FrictionLevel: FrictionChallenge, RelaxesAt: PhaseCrossWave},
				StreamSeparation: IsolationRule{Enabled: true, FrictionLevel: FrictionNudge, RelaxesAt: PhaseSynthesis},
			},
		},
		Strain: StrainTracking{
			Threshold:     opts.StrainThreshold,
			Counts:        map[string]*StrainRecord{},
			StrainedRules: []string{},
			Overrides:     []Override{},
			Reviews:       []StrainReview{},
		},
		Saturation: SaturationTracking{
			CodeGeneration: CodeGeneration{Documents: []DocumentRecord{}},
			Coverage:       CodeCoverage{ByCode: map[string]CoverageEntry{}, RareCodes: []string{}, UniversalCodes: []string{}},
			Refinement:     Refinement{Events: []RefinementEvent{}},
			Thresholds:     opts.Saturation,
		},
		Branches: WorkspaceBranches{
			CurrentBranch: MainBranchID,
			Branches: []Branch{{
				ID:        MainBranchID,
				Name:      "Main Analysis",
				CreatedAt: now,
				Status:    BranchActive,
			}},
			Decisions: []BranchDecision{},
		},
	}

	if err := s.write(st); err != nil {
		return nil, err
	}
	entry := JournalEntry{
		Title: "Project Initialized",
		Body: fmt.Sprintf("Project %q initialized with %d case(s), %d wave(s).",
			opts.ProjectName, len(opts.Cases), len(opts.Waves)),
	}
	if err := s.journal.Append(entry); err != nil {
		return nil, err
	}
	s.logger.Info("project initialized",
		zap.String("path", s.statePath),
		zap.Int("cases", len(opts.Cases)),
		zap.Int("waves", len(opts.Waves)))
	return st, nil
}

// Load reads, decodes, and validates the document. A document that was
// edited by hand into an invalid shape is rejected here rather than carried
// into the engines.
func (s *Store) Load() (*ProjectState, error) {
	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, WrapError(CodeConfigNotFound, err,
				"project state not found at %s; initialize the project first", s.statePath)
		}
		return nil, WrapError(CodeInternal, err, "failed to read %s", s.statePath)
	}
	var st ProjectState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, WrapError(CodeSchemaValidation, err, "failed to decode %s", s.statePath)
	}
	if err := s.validator.ValidateState(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Commit validates the replacement document, writes it atomically, and
// appends the journal entry. On validation failure the on-disk document is
// untouched. The version increments on every successful commit.
func (s *Store) Commit(st *ProjectState, entry JournalEntry) error {
	if err := s.validator.ValidateState(st); err != nil {
		return err
	}
	st.Version++
	st.UpdatedAt = time.Now()
	if err := s.write(st); err != nil {
		return err
	}
	if err := s.journal.Append(entry); err != nil {
		return err
	}
	s.logger.Debug("state committed",
		zap.Int("version", st.Version),
		zap.String("entry", entry.Title))
	return nil
}

// Update performs one read-modify-write cycle: load the full document, have
// fn compute the full new document and the journal entry describing the
// mutation, commit atomically. Any error from fn leaves the prior document
// completely unchanged.
func (s *Store) Update(fn func(st *ProjectState) (JournalEntry, error)) (*ProjectState, error) {
	st, err := s.Load()
	if err != nil {
		return nil, err
	}
	entry, err := fn(st)
	if err != nil {
		return nil, err
	}
	if err := s.Commit(st, entry); err != nil {
		return nil, err
	}
	return st, nil
}

// write performs the atomic temp-file-then-rename commit.
func (s *Store) write(st *ProjectState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return WrapError(CodeInternal, err, "failed to encode state")
	}
	return WriteFileAtomic(s.statePath, append(data, '\n'), stateFileMode)
}

// WriteFileAtomic writes data to a temporary file in the target directory
// and renames it over path, so a crash mid-write never yields a torn file.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return WrapError(CodeInternal, err, "failed to write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return WrapError(CodeInternal, err, "failed to replace %s", path)
	}
	return nil
}
