// internal/checkpoint/restore.go
package checkpoint

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"

	"claude-restore/internal/claude"
	"claude-restore/internal/errs"
	"claude-restore/internal/git"
	"claude-restore/internal/paths"
	"claude-restore/internal/session"
)

var validate = validator.New()

// RestoreRequest selects a checkpoint and where to write it
type RestoreRequest struct {
	ProjectID           string   `json:"projectId" validate:"required"`
	ConversationID      string   `json:"conversationId" validate:"required"`
	CheckpointMessageID string   `json:"checkpointMessageId" validate:"required"`
	TargetDir           string   `json:"targetDir,omitempty"`
	Files               []string `json:"files,omitempty"`
}

// Validate checks required fields and that ids are single path components
func (r *RestoreRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errs.New(errs.MissingParameter,
			"Missing required fields: conversationId, projectId, checkpointMessageId")
	}
	if err := paths.SafeName("projectId", r.ProjectID); err != nil {
		return err
	}
	return paths.SafeName("conversationId", r.ConversationID)
}

// GitReport describes the repository a restore wrote into
type GitReport struct {
	Branch      string           `json:"branch"`
	Clean       bool             `json:"clean"`
	Overwritten []git.FileStatus `json:"overwritten"`
}

// RestoreResult reports what a restore wrote
type RestoreResult struct {
	Success  bool       `json:"success"`
	Count    int        `json:"count"`
	Files    []string   `json:"files"`
	Skipped  int        `json:"skipped"`
	Warnings []string   `json:"warnings,omitempty"`
	Git      *GitReport `json:"git,omitempty"`
}

// InspectFunc reports the git state of a directory
type InspectFunc func(dir string) (*git.RepoStatus, error)

// Restorer copies checkpoint blobs back onto disk
type Restorer struct {
	store   *session.Store
	blobs   *BlobStore
	guard   *paths.Guard
	inspect InspectFunc
}

// NewRestorer creates a Restorer. A nil inspect disables git reporting.
func NewRestorer(store *session.Store, blobs *BlobStore, guard *paths.Guard, inspect InspectFunc) *Restorer {
	return &Restorer{
		store:   store,
		blobs:   blobs,
		guard:   guard,
		inspect: inspect,
	}
}

// Restore writes the files of one checkpoint into the target directory.
// Validation failures abort before anything is written. Once copying starts,
// per-file problems are reported as skips or warnings.
func (r *Restorer) Restore(req RestoreRequest) (*RestoreResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := r.store.LoadConversation(req.ProjectID, req.ConversationID)
	if err != nil {
		return nil, err
	}
	if !r.blobs.HasHistory(req.ConversationID) {
		return nil, errs.New(errs.NotFound, "History not found for this conversation")
	}

	cwd := claude.ExtractCwd(records)
	cp, ok := claude.FindCheckpointByMessageID(records, req.CheckpointMessageID)
	if !ok {
		return nil, errs.New(errs.NotFound, "Checkpoint not found")
	}

	targetDir := cwd
	if req.TargetDir != "" {
		targetDir = req.TargetDir
	}
	if targetDir == "" {
		return nil, errs.New(errs.NoTargetDirectory,
			"No target directory specified and no CWD found in conversation")
	}

	targetDir, err = r.guard.ValidateTarget(targetDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("create target dir: %w", err)
	}

	repo := r.inspectTarget(targetDir)

	result := &RestoreResult{
		Success: true,
		Files:   []string{},
	}
	if repo != nil {
		result.Git = &GitReport{
			Branch:      repo.Branch,
			Clean:       repo.Clean,
			Overwritten: []git.FileStatus{},
		}
	}

	for _, filePath := range selectFiles(cp, req.Files) {
		backup := cp.Files[filePath]
		if !backup.HasBackup() {
			result.Skipped++
			continue
		}

		src, err := r.blobs.Path(req.ConversationID, *backup.BackupFileName)
		if err != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %s: %v", filePath, err))
			continue
		}
		if !r.blobs.Exists(src) {
			result.Skipped++
			continue
		}

		dst := paths.ResolveRestorePath(filePath, targetDir, cwd)
		if !r.guard.Contains(targetDir, dst) || r.guard.IsPrivate(dst) {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %s: destination %s is outside the target directory", filePath, dst))
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Failed to create dir for %s: %v", dst, err))
			continue
		}

		if err := r.blobs.Copy(src, dst); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Failed to restore %s: %v", dst, err))
			continue
		}

		result.Count++
		result.Files = append(result.Files, dst)
		if repo != nil {
			if fs, ok := repo.Lookup(dst); ok {
				result.Git.Overwritten = append(result.Git.Overwritten, fs)
			}
		}
	}

	sort.Strings(result.Files)
	if result.Git != nil {
		sort.Slice(result.Git.Overwritten, func(i, j int) bool {
			return result.Git.Overwritten[i].Path < result.Git.Overwritten[j].Path
		})
	}

	slog.Info("checkpoint restored",
		"conversation", req.ConversationID,
		"checkpoint", req.CheckpointMessageID,
		"target", targetDir,
		"restored", result.Count,
		"skipped", result.Skipped,
		"warnings", len(result.Warnings))

	return result, nil
}

func (r *Restorer) inspectTarget(dir string) *git.RepoStatus {
	if r.inspect == nil {
		return nil
	}
	status, err := r.inspect(dir)
	if err != nil {
		slog.Debug("target is not a git working tree", "dir", dir, "error", err)
		return nil
	}
	return status
}

// selectFiles returns the checkpoint paths to restore in sorted order,
// limited to only when it is non-empty. Results are reported by destination,
// which can order differently.
func selectFiles(cp *claude.Checkpoint, only []string) []string {
	var wanted map[string]bool
	if len(only) > 0 {
		wanted = make(map[string]bool, len(only))
		for _, f := range only {
			wanted[f] = true
		}
	}

	selected := make([]string, 0, len(cp.Files))
	for filePath := range cp.Files {
		if wanted == nil || wanted[filePath] {
			selected = append(selected, filePath)
		}
	}
	sort.Strings(selected)
	return selected
}
