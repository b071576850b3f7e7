// internal/claude/history.go
package claude

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// SnapshotType is the record type carrying file-history checkpoints
const SnapshotType = "file-history-snapshot"

// initialBufferSize is the scanner's starting buffer; it grows up to the log size
const initialBufferSize = 64 * 1024

// FileBackup is one tracked file's state at a checkpoint.
// BackupFileName is nil when the file was tracked but never backed up.
type FileBackup struct {
	BackupFileName *string `json:"backupFileName"`
	Version        int     `json:"version"`
	BackupTime     string  `json:"backupTime"`
}

// HasBackup reports whether a physical backup was written for the file
func (f FileBackup) HasBackup() bool {
	return f.BackupFileName != nil && *f.BackupFileName != ""
}

// Snapshot is the nested payload of a file-history-snapshot record.
// TrackedFileBackups is nil when the field is absent and non-nil (possibly
// empty) when present.
type Snapshot struct {
	MessageID          string                `json:"messageId,omitempty"`
	Timestamp          string                `json:"timestamp,omitempty"`
	TrackedFileBackups map[string]FileBackup `json:"trackedFileBackups"`
}

// Record is one decoded line of a conversation log. Only the fields this
// service reads are modelled; everything else in the line is ignored.
type Record struct {
	Type      string    `json:"type"`
	Cwd       string    `json:"cwd,omitempty"`
	MessageID string    `json:"messageId,omitempty"`
	GitBranch string    `json:"gitBranch,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
}

// isCheckpoint reports whether the record is a snapshot with tracked backups
func (r *Record) isCheckpoint() bool {
	return r.Type == SnapshotType && r.Snapshot != nil && r.Snapshot.TrackedFileBackups != nil
}

// ParseLog decodes line-delimited JSON into records, in file order.
// Blank lines are skipped and lines that fail to decode are dropped.
func ParseLog(content []byte) []Record {
	records := []Record{}

	scanner := bufio.NewScanner(bytes.NewReader(content))

	// A single snapshot line can be arbitrarily large; allow the whole input
	maxCapacity := len(content) + 1
	if maxCapacity < initialBufferSize {
		maxCapacity = initialBufferSize
	}
	scanner.Buffer(make([]byte, 0, initialBufferSize), maxCapacity)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := DecodeLine(line, &rec); err != nil {
			// Skip malformed lines but continue processing
			continue
		}

		records = append(records, rec)
	}

	return records
}

var errNotObject = errors.New("log line is not a JSON object")

// DecodeLine unmarshals one log line into v. A field whose JSON type differs
// from v's is left zero and the rest of the line is still decoded. Only lines
// that are not JSON objects are rejected.
func DecodeLine(line []byte, v any) error {
	if len(line) == 0 || line[0] != '{' {
		return errNotObject
	}

	err := json.Unmarshal(line, v)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return err
}

// ReadLog reads and parses a conversation log file
func ReadLog(filePath string) ([]Record, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}

	return ParseLog(content), nil
}
