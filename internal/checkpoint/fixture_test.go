package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"claude-restore/internal/paths"
	"claude-restore/internal/session"
)

const (
	testProject      = "-original-project"
	testConversation = "conv-123"
)

// fixture is a Claude data root with one conversation and its blobs
type fixture struct {
	home      string
	claudeDir string
	store     *session.Store
	blobs     *BlobStore
	guard     *paths.Guard
}

func checkpointLog(cwd string) string {
	return fmt.Sprintf(`{"type":"user","cwd":%q,"gitBranch":"main","timestamp":"2024-01-01T00:00:00Z"}
{"type":"file-history-snapshot","messageId":"msg-001","snapshot":{"messageId":"msg-001","timestamp":"2024-01-01T00:00:01Z","trackedFileBackups":{"src/index.ts":{"backupFileName":"index@v1","version":1,"backupTime":"2024-01-01T00:00:01Z"},"README.md":{"backupFileName":null,"version":0,"backupTime":"2024-01-01T00:00:01Z"}}}}
{"type":"file-history-snapshot","messageId":"msg-002","snapshot":{"messageId":"msg-002","timestamp":"2024-01-01T00:00:02Z","trackedFileBackups":{%q:{"backupFileName":"index@v2","version":2,"backupTime":"2024-01-01T00:00:02Z"},"README.md":{"backupFileName":"readme@v1","version":1,"backupTime":"2024-01-01T00:00:02Z"}}}}
{"type":"file-history-snapshot","messageId":"msg-003","snapshot":{"messageId":"msg-003","trackedFileBackups":{"gone.txt":{"backupFileName":"missing@v1","version":1,"backupTime":""},"../outside.txt":{"backupFileName":"index@v1","version":1,"backupTime":""},"sneaky.txt":{"backupFileName":"../../etc/passwd","version":1,"backupTime":""}}}}
`, cwd, cwd+"/src/index.ts")
}

func newFixture(t *testing.T, cwd string) *fixture {
	t.Helper()

	home := t.TempDir()
	claudeDir := filepath.Join(home, ".claude")
	projectsRoot := filepath.Join(claudeDir, "projects")
	historyRoot := filepath.Join(claudeDir, "file-history")

	writeTestFile(t, filepath.Join(projectsRoot, testProject, testConversation+".jsonl"), checkpointLog(cwd))

	historyDir := filepath.Join(historyRoot, testConversation)
	writeTestFile(t, filepath.Join(historyDir, "index@v1"), "export const v = 1;\n")
	writeTestFile(t, filepath.Join(historyDir, "index@v2"), "export const v = 2;\n")
	writeTestFile(t, filepath.Join(historyDir, "readme@v1"), "# Project\n")

	return &fixture{
		home:      home,
		claudeDir: claudeDir,
		store:     session.NewStore(projectsRoot),
		blobs:     NewBlobStore(historyRoot),
		guard:     paths.NewGuard(home, claudeDir),
	}
}

func (f *fixture) restorer(inspect InspectFunc) *Restorer {
	return NewRestorer(f.store, f.blobs, f.guard, inspect)
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}
