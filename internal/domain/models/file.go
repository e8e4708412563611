package models

import "time"

// Ledger statuses for a source file.
//
// A row is written with StatusInProgress before any table data is loaded,
// and promoted to StatusComplete only after every table in the file has
// committed. A row stuck at in_progress marks a partially loaded file that
// needs operator attention (reprocess with --force after cleanup).
const (
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

// IngestedFile is one row of the file_log ledger table.
// Presence of a row gates re-processing of the same source file.
type IngestedFile struct {
	UniqueID   int64
	Filename   string
	IngestedAt time.Time
	Status     string
}
