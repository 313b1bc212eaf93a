package state

import (
	"fmt"
	"os"
	"time"
)

// JournalFileName is the append-only audit journal written alongside the
// document, in prose for a human reader doing retrospective review.
const JournalFileName = "journal.md"

// JournalEntry is one titled, timestamped journal section.
type JournalEntry struct {
	Title string
	Body  string
}

// Journal appends entries to the audit file. Entries are never rewritten.
type Journal struct {
	path string
}

// NewJournal binds a journal to its file path.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the journal file location.
func (j *Journal) Path() string { return j.path }

// Append writes one entry, creating the file on first use.
func (j *Journal) Append(e JournalEntry) error {
	if e.Title == "" {
		return NewError(CodeInvalidArgument, "journal entry needs a title").WithField("title")
	}
	now := time.Now()
	section := fmt.Sprintf("\n---\n\n### %s\n**Date:** %s\n**Time:** %s\n\n%s\n",
		e.Title, now.Format("2006-01-02"), now.Format("15:04:05"), e.Body)

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, stateFileMode)
	if err != nil {
		return WrapError(CodeInternal, err, "failed to open journal %s", j.path)
	}
	defer f.Close()
	if _, err := f.WriteString(section); err != nil {
		return WrapError(CodeInternal, err, "failed to append to journal")
	}
	return nil
}
