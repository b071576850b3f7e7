// internal/archive/import.go
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"claude-restore/internal/errs"
	"claude-restore/internal/paths"
)

// Strategy decides what a global import does with files that already exist
type Strategy string

const (
	Merge   Strategy = "merge"
	Replace Strategy = "replace"
)

// ParseStrategy defaults to Merge. Any value other than "merge" replaces.
func ParseStrategy(s string) Strategy {
	if s == "" || Strategy(s) == Merge {
		return Merge
	}
	return Replace
}

// Importer unpacks bundles onto disk
type Importer struct {
	claudeRoot   string
	projectsRoot string
	historyRoot  string
	guard        *paths.Guard
}

// NewImporter creates an Importer over the given roots
func NewImporter(claudeRoot, projectsRoot, historyRoot string, guard *paths.Guard) *Importer {
	return &Importer{
		claudeRoot:   claudeRoot,
		projectsRoot: projectsRoot,
		historyRoot:  historyRoot,
		guard:        guard,
	}
}

// Global writes a global bundle back under the Claude root
func (i *Importer) Global(b *Bundle, strategy Strategy) (*ImportResult, error) {
	if err := b.expect(ScopeGlobal); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, f := range b.Files {
		dst, err := paths.JoinWithin(i.claudeRoot, f.Path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Skipped %s: %s", f.Path, errs.Message(err)))
			continue
		}

		if strategy == Merge && exists(dst) {
			result.Skipped++
			continue
		}

		if err := writeFile(dst, f.Content); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to write %s: %v", f.Path, err))
			continue
		}
		result.FilesImported++
	}

	result.Message = fmt.Sprintf("Imported %d files (%s mode)", result.FilesImported, strategy)
	return i.finish(ScopeGlobal, result), nil
}

// Conversation writes a conversation bundle into a project. Entries under
// file-history/ go to the history root, all others to the project directory.
func (i *Importer) Conversation(projectID string, b *Bundle) (*ImportResult, error) {
	if err := paths.SafeName("projectId", projectID); err != nil {
		return nil, err
	}
	if err := b.expect(ScopeConversation); err != nil {
		return nil, err
	}

	projectDir := filepath.Join(i.projectsRoot, projectID)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}

	result := &ImportResult{}
	for _, f := range b.Files {
		var dst string
		var err error
		if strings.HasPrefix(f.Path, historyPrefix) {
			dst, err = paths.JoinWithin(i.historyRoot, strings.TrimPrefix(f.Path, historyPrefix))
		} else {
			dst, err = paths.JoinWithin(projectDir, f.Path)
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Skipped %s: %s", f.Path, errs.Message(err)))
			continue
		}

		if err := writeFile(dst, f.Content); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to write %s: %v", f.Path, err))
			continue
		}
		result.FilesImported++
	}

	result.Message = fmt.Sprintf("Imported conversation with %d files", result.FilesImported)
	return i.finish(ScopeConversation, result), nil
}

// Checkpoint writes the files of a checkpoint bundle under targetDir, which
// must pass the same validation as a restore target
func (i *Importer) Checkpoint(b *Bundle, targetDir string) (*ImportResult, error) {
	if err := b.expect(ScopeCheckpoint); err != nil {
		return nil, err
	}
	if strings.TrimSpace(targetDir) == "" {
		return nil, errs.New(errs.RequiredFieldMissing, "targetDir is required for checkpoint import")
	}

	target, err := i.guard.ValidateTarget(targetDir)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, f := range b.Files {
		if paths.HasTraversal(f.Path) {
			result.Errors = append(result.Errors, fmt.Sprintf("Skipped %s: Path traversal detected", f.Path))
			continue
		}

		dst := paths.ResolveRestorePath(f.Path, target, "")
		if i.guard.IsPrivate(dst) {
			result.Errors = append(result.Errors, fmt.Sprintf("Skipped %s: Cannot write to the Claude data directory", f.Path))
			continue
		}
		if !i.guard.Contains(target, dst) {
			result.Errors = append(result.Errors, fmt.Sprintf("Skipped %s: outside the target directory", f.Path))
			continue
		}

		if err := writeFile(dst, f.Content); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to write %s: %v", f.Path, err))
			continue
		}
		result.FilesImported++
	}

	result.Message = fmt.Sprintf("Restored %d files to %s", result.FilesImported, target)
	return i.finish(ScopeCheckpoint, result), nil
}

func (i *Importer) finish(scope Scope, result *ImportResult) *ImportResult {
	result.Success = len(result.Errors) == 0
	slog.Info("bundle imported",
		"scope", scope,
		"imported", result.FilesImported,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return result
}

func writeFile(dst, content string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(content), 0644)
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return !errors.Is(err, fs.ErrNotExist)
}
