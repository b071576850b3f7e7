// internal/archive/bundle.go
package archive

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"claude-restore/internal/errs"
)

// Scope is the extent of a bundle
type Scope string

const (
	ScopeGlobal       Scope = "global"
	ScopeProject      Scope = "project"
	ScopeConversation Scope = "conversation"
	ScopeCheckpoint   Scope = "checkpoint"
)

// historyPrefix marks bundle entries that belong in the file-history root
const historyPrefix = "file-history/"

// File is one text file in a bundle
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Bundle is a portable, self-describing set of files
type Bundle struct {
	ExportedAt          string `json:"exportedAt"`
	Type                Scope  `json:"type"`
	ClaudeRoot          string `json:"claudeRoot,omitempty"`
	ProjectID           string `json:"projectId,omitempty"`
	ConversationID      string `json:"conversationId,omitempty"`
	CheckpointMessageID string `json:"checkpointMessageId,omitempty"`
	Files               []File `json:"files"`
}

// ImportResult reports what an import wrote
type ImportResult struct {
	Success       bool     `json:"success"`
	FilesImported int      `json:"filesImported"`
	Skipped       int      `json:"skipped"`
	Message       string   `json:"message"`
	Errors        []string `json:"errors,omitempty"`
}

// wireFile and wireBundle use pointers so absent fields can be told apart
// from empty ones
type wireFile struct {
	Path    *string `json:"path" validate:"required"`
	Content *string `json:"content" validate:"required"`
}

type wireBundle struct {
	ExportedAt          *string     `json:"exportedAt" validate:"required"`
	Type                *string     `json:"type" validate:"required,oneof=global project conversation checkpoint"`
	ClaudeRoot          string      `json:"claudeRoot"`
	ProjectID           string      `json:"projectId"`
	ConversationID      string      `json:"conversationId"`
	CheckpointMessageID string      `json:"checkpointMessageId"`
	Files               *[]wireFile `json:"files" validate:"required,dive"`
}

var validate = validator.New()

// Decode parses and structurally validates a bundle before anything touches disk
func Decode(raw []byte) (*Bundle, error) {
	var wire wireBundle
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, errs.Wrap(errs.InvalidFormat, err, "Invalid import data format")
	}
	if err := validate.Struct(&wire); err != nil {
		return nil, errs.Wrap(errs.InvalidFormat, err, "Invalid import data format")
	}

	b := &Bundle{
		ExportedAt:          *wire.ExportedAt,
		Type:                Scope(*wire.Type),
		ClaudeRoot:          wire.ClaudeRoot,
		ProjectID:           wire.ProjectID,
		ConversationID:      wire.ConversationID,
		CheckpointMessageID: wire.CheckpointMessageID,
		Files:               make([]File, 0, len(*wire.Files)),
	}
	for _, f := range *wire.Files {
		b.Files = append(b.Files, File{Path: *f.Path, Content: *f.Content})
	}
	return b, nil
}

// expect fails with TypeMismatch unless the bundle has the given scope
func (b *Bundle) expect(scope Scope) error {
	if b.Type != scope {
		return errs.New(errs.TypeMismatch, "Expected %s export type, got: %s", scope, b.Type)
	}
	return nil
}
