package claude

// Checkpoint is a snapshot of tracked file backups, keyed by message id
type Checkpoint struct {
	MessageID string                `json:"messageId"`
	Timestamp string                `json:"timestamp"`
	FileCount int                   `json:"fileCount"`
	Files     map[string]FileBackup `json:"files"`
}

// ConversationMetadata summarises a conversation log
type ConversationMetadata struct {
	GitBranch     string `json:"gitBranch,omitempty"`
	FilesModified int    `json:"filesModified"`
}

func newCheckpoint(rec *Record) Checkpoint {
	timestamp := rec.Snapshot.Timestamp
	if timestamp == "" {
		timestamp = rec.Timestamp
	}

	return Checkpoint{
		MessageID: rec.MessageID,
		Timestamp: timestamp,
		FileCount: len(rec.Snapshot.TrackedFileBackups),
		Files:     rec.Snapshot.TrackedFileBackups,
	}
}

// ExtractCwd returns the cwd of the first record that has one
func ExtractCwd(records []Record) string {
	for i := range records {
		if records[i].Cwd != "" {
			return records[i].Cwd
		}
	}
	return ""
}

// ExtractCheckpoints returns every snapshot record as a checkpoint, in log order
func ExtractCheckpoints(records []Record) []Checkpoint {
	checkpoints := []Checkpoint{}

	for i := range records {
		if records[i].isCheckpoint() {
			checkpoints = append(checkpoints, newCheckpoint(&records[i]))
		}
	}

	return checkpoints
}

// FindCheckpointByMessageID returns the first checkpoint whose record carries messageID
func FindCheckpointByMessageID(records []Record, messageID string) (*Checkpoint, bool) {
	for i := range records {
		rec := &records[i]
		if rec.isCheckpoint() && rec.MessageID == messageID {
			cp := newCheckpoint(rec)
			return &cp, true
		}
	}
	return nil, false
}

// ExtractConversationMetadata finds the first user git branch and counts the
// distinct file paths tracked across all snapshots
func ExtractConversationMetadata(records []Record) ConversationMetadata {
	var meta ConversationMetadata
	allFiles := make(map[string]struct{})

	for i := range records {
		rec := &records[i]

		if rec.Type == "user" && rec.GitBranch != "" && meta.GitBranch == "" {
			meta.GitBranch = rec.GitBranch
		}

		if rec.isCheckpoint() {
			for path := range rec.Snapshot.TrackedFileBackups {
				allFiles[path] = struct{}{}
			}
		}
	}

	meta.FilesModified = len(allFiles)
	return meta
}
