// Package state owns the project document that is the system of record for
// a methodd project. It provides schema-validated, atomic read-modify-write
// access to the document, the append-only audit journal written alongside
// it, and the coded error taxonomy shared by the engine packages.
//
// Every mutation is "load full document, compute full new document, commit
// full document". Commit validates the replacement document first and fails
// closed; on success it writes a temporary file and atomically renames it
// over the prior document, so a crash mid-write never yields a torn file.
// There is no partial-update API.
//
// The store guarantees that a reader never observes a half-written document.
// It does not provide isolation between concurrent invocations: two
// processes that read, compute, and write concurrently resolve as
// last-writer-wins. The version field increments on every commit for audit
// traceability, not conflict detection.
package state
