package state

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testInitOptions() InitOptions {
	return InitOptions{
		ProjectName:      "Hospital Adoption Study",
		ResearchQuestion: "How do care teams adopt clinical decision support?",
		Cases: []Case{
			{ID: "hospital_a", Name: "Hospital A"},
			{ID: "hospital_b", Name: "Hospital B"},
		},
		Waves: []Wave{
			{ID: "wave_1", Name: "Wave 1"},
			{ID: "wave_2", Name: "Wave 2"},
		},
		Streams: Streams{
			Theoretical: &Stream{FolderPath: "literature"},
			Empirical:   &Stream{FolderPath: "data"},
		},
		StrainThreshold: 3,
		Saturation: SaturationThresholds{
			StableRate:       0.5,
			RefinementStable: 2,
			RedundancyHigh:   0.85,
			CoverageAdequate: 0.7,
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(t.TempDir(), zap.NewNop())
	_, err := store.Init(testInitOptions())
	require.NoError(t, err)
	return store
}

func TestInit_CreatesDocumentAndJournal(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, zap.NewNop())

	st, err := store.Init(testInitOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, st.Version)
	assert.Equal(t, StageFoundation, st.Progress.CurrentStage)
	assert.Equal(t, MainBranchID, st.Branches.CurrentBranch)
	require.Len(t, st.Branches.Branches, 1)
	assert.Equal(t, BranchActive, st.Branches.Branches[0].Status)

	assert.FileExists(t, filepath.Join(dir, ConfigDirName, StateFileName))
	assert.FileExists(t, filepath.Join(dir, ConfigDirName, JournalFileName))
}

func TestInit_SeedsIsolationDefaults(t *testing.T) {
	store := newTestStore(t)
	st, err := store.Load()
	require.NoError(t, err)

	iso := st.Design.Isolation
	assert.True(t, iso.CaseIsolation.Enabled)
	assert.Equal(t, FrictionChallenge, iso.CaseIsolation.FrictionLevel)
	assert.Equal(t, PhasePatterns, iso.CaseIsolation.RelaxesAt)
	assert.Equal(t, PhaseCrossWave, iso.WaveIsolation.RelaxesAt)
	assert.Equal(t, FrictionNudge, iso.StreamSeparation.FrictionLevel)
	assert.Equal(t, PhaseSynthesis, iso.StreamSeparation.RelaxesAt)
}

func TestInit_FailsWhenAlreadyInitialized(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Init(testInitOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPrecondition))
}

func TestLoad_MissingDocument(t *testing.T) {
	store := NewStore(t.TempDir(), zap.NewNop())
	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_RejectsHandEditedInvalidDocument(t *testing.T) {
	store := newTestStore(t)

	st, err := store.Load()
	require.NoError(t, err)
	st.Progress.CurrentStage = "stage4_bonus"
	data, err := json.Marshal(st)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.StatePath(), data, 0o600))

	_, err = store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaValidation))
}

func TestUpdate_IncrementsVersionAndJournals(t *testing.T) {
	store := newTestStore(t)

	st, err := store.Update(func(st *ProjectState) (JournalEntry, error) {
		st.Progress.DocumentsCoded = 4
		return JournalEntry{Title: "Coding Progress", Body: "Four documents coded."}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, st.Version)

	reloaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Version)
	assert.Equal(t, 4, reloaded.Progress.DocumentsCoded)

	journal, err := os.ReadFile(store.Journal().Path())
	require.NoError(t, err)
	assert.Contains(t, string(journal), "### Coding Progress")
	assert.Contains(t, string(journal), "Four documents coded.")
}

func TestUpdate_ErrorLeavesDocumentUntouched(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update(func(st *ProjectState) (JournalEntry, error) {
		st.Progress.DocumentsCoded = 99
		return JournalEntry{}, NewError(CodeInvalidArgument, "rejected")
	})
	require.Error(t, err)

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Version)
	assert.Zero(t, st.Progress.DocumentsCoded)
}

func TestCommit_InvalidStateBlocksWrite(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update(func(st *ProjectState) (JournalEntry, error) {
		st.Progress.CurrentStage = "stage9_imaginary"
		return JournalEntry{Title: "Bad Transition"}, nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaValidation))

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, StageFoundation, st.Progress.CurrentStage)
}

func TestWriteFileAtomic_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, WriteFileAtomic(path, []byte(`{"ok":true}`), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
	assert.NoFileExists(t, path+".tmp")
}

func TestStateFile_RoundTripsOnDisk(t *testing.T) {
	store := newTestStore(t)
	data, err := os.ReadFile(store.StatePath())
	require.NoError(t, err)

	var st ProjectState
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, "Hospital Adoption Study", st.ProjectName)
	assert.Len(t, st.Design.Cases, 2)
	assert.Len(t, st.Design.Waves, 2)
}

func TestJournal_RequiresTitle(t *testing.T) {
	store := newTestStore(t)
	err := store.Journal().Append(JournalEntry{Body: "no title"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}
