// internal/checkpoint/browse.go
package checkpoint

import (
	"unicode/utf8"

	"claude-restore/internal/claude"
	"claude-restore/internal/errs"
	"claude-restore/internal/session"
)

// Listing is the checkpoint timeline of one conversation
type Listing struct {
	Cwd         string              `json:"cwd"`
	Checkpoints []claude.Checkpoint `json:"checkpoints"`
}

// Blob is one backed-up file resolved from a checkpoint
type Blob struct {
	FilePath    string
	Version     int
	Content     []byte
	ContentType string
	Binary      bool
}

// Browser answers read-only checkpoint queries
type Browser struct {
	store *session.Store
	blobs *BlobStore
}

// NewBrowser creates a Browser
func NewBrowser(store *session.Store, blobs *BlobStore) *Browser {
	return &Browser{store: store, blobs: blobs}
}

// List returns the working directory and every checkpoint of a conversation
func (b *Browser) List(projectID, conversationID string) (*Listing, error) {
	records, err := b.store.LoadConversation(projectID, conversationID)
	if err != nil {
		return nil, err
	}

	return &Listing{
		Cwd:         claude.ExtractCwd(records),
		Checkpoints: claude.ExtractCheckpoints(records),
	}, nil
}

// Blob returns the backup content of filePath as recorded at a checkpoint
func (b *Browser) Blob(projectID, conversationID, messageID, filePath string) (*Blob, error) {
	if messageID == "" || filePath == "" {
		return nil, errs.New(errs.MissingParameter,
			"Missing required query parameters: projectId, conversationId, checkpointMessageId, filePath")
	}

	records, err := b.store.LoadConversation(projectID, conversationID)
	if err != nil {
		return nil, err
	}

	cp, ok := claude.FindCheckpointByMessageID(records, messageID)
	if !ok {
		return nil, errs.New(errs.NotFound, "Checkpoint not found")
	}

	backup, ok := cp.Files[filePath]
	if !ok {
		return nil, errs.New(errs.NotFound, "File not found in checkpoint")
	}
	if !backup.HasBackup() {
		return nil, errs.New(errs.NotFound,
			"No backup file available for this file (file was tracked but not yet backed up)")
	}

	src, err := b.blobs.Path(conversationID, *backup.BackupFileName)
	if err != nil {
		return nil, err
	}
	if !b.blobs.Exists(src) {
		return nil, errs.New(errs.NotFound, "Backup file not found on disk")
	}

	content, err := b.blobs.Read(src)
	if err != nil {
		return nil, err
	}

	blob := &Blob{
		FilePath:    filePath,
		Version:     backup.Version,
		Content:     content,
		ContentType: ContentType(filePath) + "; charset=utf-8",
	}
	if !utf8.Valid(content) {
		blob.Binary = true
		blob.ContentType = "application/octet-stream"
	}

	return blob, nil
}
