// Package database provides SQLite-based storage of the comparison history.
//
// Every successful comparison can be recorded with the names and BLAKE2b
// fingerprints of both documents, the threshold, the headline numbers, the
// archive location and the full report JSON. The history is read back by the
// `pdfdiff history` command.
//
// SQLite is accessed through modernc.org/sqlite, a CGO-free driver, so the
// history is a single file in the XDG data directory.
package database
