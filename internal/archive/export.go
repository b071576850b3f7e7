// internal/archive/export.go
package archive

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"claude-restore/internal/claude"
	"claude-restore/internal/errs"
	"claude-restore/internal/paths"
)

const isoMillis = "2006-01-02T15:04:05.000Z"

// Exporter packages parts of the Claude data root into bundles
type Exporter struct {
	claudeRoot   string
	projectsRoot string
	historyRoot  string
	now          func() time.Time
}

// NewExporter creates an Exporter over the given roots
func NewExporter(claudeRoot, projectsRoot, historyRoot string) *Exporter {
	return &Exporter{
		claudeRoot:   claudeRoot,
		projectsRoot: projectsRoot,
		historyRoot:  historyRoot,
		now:          time.Now,
	}
}

func (e *Exporter) newBundle(scope Scope, files []File) *Bundle {
	return &Bundle{
		ExportedAt: e.now().UTC().Format(isoMillis),
		Type:       scope,
		Files:      files,
	}
}

// Global packages every text file under the Claude root
func (e *Exporter) Global() (*Bundle, error) {
	files, err := collectFiles(e.claudeRoot, "")
	if err != nil {
		return nil, err
	}

	b := e.newBundle(ScopeGlobal, files)
	b.ClaudeRoot = e.claudeRoot
	return b, nil
}

// Project packages a project directory and the file history of each of its conversations
func (e *Exporter) Project(projectID string) (*Bundle, error) {
	if err := paths.SafeName("projectId", projectID); err != nil {
		return nil, err
	}

	projectDir := filepath.Join(e.projectsRoot, projectID)
	if !isDir(projectDir) {
		return nil, errs.New(errs.NotFound, "Project not found")
	}

	files, err := collectFiles(projectDir, "")
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("read project directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		convID := strings.TrimSuffix(entry.Name(), ".jsonl")
		history, err := collectFiles(filepath.Join(e.historyRoot, convID), historyPrefix+convID)
		if err != nil {
			return nil, err
		}
		files = append(files, history...)
	}

	b := e.newBundle(ScopeProject, files)
	b.ProjectID = projectID
	return b, nil
}

// Conversation packages one conversation log and its file history
func (e *Exporter) Conversation(projectID, conversationID string) (*Bundle, error) {
	if err := paths.SafeName("projectId", projectID); err != nil {
		return nil, err
	}
	if err := paths.SafeName("conversationId", conversationID); err != nil {
		return nil, err
	}

	logName := conversationID + ".jsonl"
	content, err := os.ReadFile(filepath.Join(e.projectsRoot, projectID, logName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.New(errs.NotFound, "Conversation not found")
		}
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	files := []File{{Path: logName, Content: strings.ToValidUTF8(string(content), "\uFFFD")}}

	history, err := collectFiles(filepath.Join(e.historyRoot, conversationID), historyPrefix+conversationID)
	if err != nil {
		return nil, err
	}
	files = append(files, history...)

	b := e.newBundle(ScopeConversation, files)
	b.ProjectID = projectID
	b.ConversationID = conversationID
	return b, nil
}

// snapshotLine is the part of a log line a checkpoint export needs
type snapshotLine struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
	Snapshot  *struct {
		TrackedFileBackups map[string]struct {
			BackupFileName *string `json:"backupFileName"`
		} `json:"trackedFileBackups"`
	} `json:"snapshot"`
}

// Checkpoint packages the backed-up files of one checkpoint under their
// original paths. The log is scanned directly rather than through the
// record parser so the export depends only on the raw log content.
func (e *Exporter) Checkpoint(projectID, conversationID, messageID string) (*Bundle, error) {
	if projectID == "" || conversationID == "" || messageID == "" {
		return nil, errs.New(errs.MissingParameter,
			"Missing required parameters: projectId, conversationId, checkpointMessageId")
	}
	if err := paths.SafeName("projectId", projectID); err != nil {
		return nil, err
	}
	if err := paths.SafeName("conversationId", conversationID); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filepath.Join(e.projectsRoot, projectID, conversationID+".jsonl"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.New(errs.NotFound, "Conversation not found")
		}
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	snapshot, ok := findSnapshotLine(content, messageID)
	if !ok {
		return nil, errs.New(errs.NotFound, "Checkpoint not found")
	}

	historyDir := filepath.Join(e.historyRoot, conversationID)
	files := []File{}
	for filePath, backup := range snapshot.Snapshot.TrackedFileBackups {
		if backup.BackupFileName == nil || *backup.BackupFileName == "" {
			continue
		}
		src, err := paths.JoinWithin(historyDir, *backup.BackupFileName)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(src)
		if err != nil || !utf8.Valid(data) {
			continue
		}
		files = append(files, File{Path: filePath, Content: string(data)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	b := e.newBundle(ScopeCheckpoint, files)
	b.ProjectID = projectID
	b.ConversationID = conversationID
	b.CheckpointMessageID = messageID
	return b, nil
}

func findSnapshotLine(content []byte, messageID string) (*snapshotLine, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry snapshotLine
		if err := claude.DecodeLine(line, &entry); err != nil {
			continue
		}
		if entry.Type == claude.SnapshotType && entry.MessageID == messageID &&
			entry.Snapshot != nil && entry.Snapshot.TrackedFileBackups != nil {
			return &entry, true
		}
	}
	return nil, false
}

// collectFiles walks dir and returns every regular UTF-8 file with a
// "/"-separated path relative to dir, prefixed by base. Unreadable and
// binary files are left out. A missing dir yields no files.
func collectFiles(dir, base string) ([]File, error) {
	files := []File{}
	if !isDir(dir) {
		return files, nil
	}

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil || !utf8.Valid(data) {
			return nil
		}

		files = append(files, File{
			Path:    path.Join(base, filepath.ToSlash(rel)),
			Content: string(data),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect files from %s: %w", dir, err)
	}
	return files, nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
