// internal/session/store.go
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"claude-restore/internal/claude"
	"claude-restore/internal/errs"
	"claude-restore/internal/paths"
)

const logExt = ".jsonl"

// Project is one directory under the projects root
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Path        string `json:"path"`
}

// Conversation is one event log inside a project
type Conversation struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	Mtime         time.Time `json:"mtime"`
	Size          int64     `json:"size"`
	SizeHuman     string    `json:"sizeHuman"`
	GitBranch     string    `json:"gitBranch,omitempty"`
	FilesModified int       `json:"filesModified"`
}

// Store reads projects and conversation logs from the Claude data root
type Store struct {
	projectsRoot string
}

// NewStore creates a Store over the projects root
func NewStore(projectsRoot string) *Store {
	return &Store{projectsRoot: projectsRoot}
}

// ListProjects returns every project directory. A missing root yields an empty list.
func (s *Store) ListProjects() ([]Project, error) {
	projects := []Project{}

	entries, err := os.ReadDir(s.projectsRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return projects, nil
		}
		return nil, fmt.Errorf("failed to read projects directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := claude.DecodeProjectName(entry.Name())
		projects = append(projects, Project{
			ID:          entry.Name(),
			Name:        name,
			DisplayName: claude.ProjectDisplayName(name),
			Path:        filepath.Join(s.projectsRoot, entry.Name()),
		})
	}

	return projects, nil
}

// ListConversations returns the conversation logs of a project, newest first.
// Sub-agent logs are skipped. A log that cannot be read still appears, without metadata.
func (s *Store) ListConversations(projectID string) ([]Conversation, error) {
	if err := paths.SafeName("projectId", projectID); err != nil {
		return nil, err
	}

	conversations := []Conversation{}
	projectDir := filepath.Join(s.projectsRoot, projectID)

	entries, err := os.ReadDir(projectDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return conversations, nil
		}
		return nil, fmt.Errorf("failed to read project directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "agent-") || !strings.HasSuffix(name, logExt) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		conv := Conversation{
			ID:        strings.TrimSuffix(name, logExt),
			Filename:  name,
			Mtime:     info.ModTime(),
			Size:      info.Size(),
			SizeHuman: humanize.Bytes(uint64(info.Size())),
		}

		records, err := claude.ReadLog(filepath.Join(projectDir, name))
		if err != nil {
			slog.Debug("skipping conversation metadata", "file", name, "error", err)
		} else {
			meta := claude.ExtractConversationMetadata(records)
			conv.GitBranch = meta.GitBranch
			conv.FilesModified = meta.FilesModified
		}

		conversations = append(conversations, conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].Mtime.After(conversations[j].Mtime)
	})

	return conversations, nil
}

// LogPath returns the path of a conversation's event log
func (s *Store) LogPath(projectID, conversationID string) string {
	return filepath.Join(s.projectsRoot, projectID, conversationID+logExt)
}

// LoadConversation parses a conversation log
func (s *Store) LoadConversation(projectID, conversationID string) ([]claude.Record, error) {
	if err := paths.SafeName("projectId", projectID); err != nil {
		return nil, err
	}
	if err := paths.SafeName("conversationId", conversationID); err != nil {
		return nil, err
	}

	logPath := s.LogPath(projectID, conversationID)
	info, err := os.Stat(logPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.New(errs.NotFound, "Conversation not found")
		}
		return nil, fmt.Errorf("failed to stat conversation: %w", err)
	}

	records, err := claude.ReadLog(logPath)
	if err != nil {
		return nil, err
	}

	slog.Debug("loaded conversation",
		"project", projectID,
		"conversation", conversationID,
		"size", humanize.Bytes(uint64(info.Size())),
		"records", len(records))

	return records, nil
}
