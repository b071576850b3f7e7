package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"claude-restore/internal/paths"
)

const (
	testProject      = "-home-user-project"
	testConversation = "0a1b2c3d-4e5f"
)

const testLog = `{"type":"user","cwd":"/home/user/project","timestamp":"2024-01-01T00:00:00Z"}
{"type":"file-history-snapshot","messageId":"msg-001","snapshot":{"messageId":"msg-001","trackedFileBackups":{"src/app.go":{"backupFileName":"app@v1","version":1,"backupTime":""},"logo.png":{"backupFileName":"logo@v1","version":1,"backupTime":""},"notes.md":{"backupFileName":null,"version":0,"backupTime":""}}}}
{"type":"file-history-snapshot","messageId":"msg-empty","snapshot":{"messageId":"msg-empty","trackedFileBackups":{}}}
`

// testRoot is a temp home with a populated .claude directory
type testRoot struct {
	home      string
	claudeDir string
	projects  string
	history   string
	guard     *paths.Guard
}

func newTestRoot(t *testing.T) *testRoot {
	t.Helper()
	home := t.TempDir()
	r := &testRoot{
		home:      home,
		claudeDir: filepath.Join(home, ".claude"),
	}
	r.projects = filepath.Join(r.claudeDir, "projects")
	r.history = filepath.Join(r.claudeDir, "file-history")
	r.guard = paths.NewGuard(home, r.claudeDir)

	writeTestFile(t, filepath.Join(r.claudeDir, "settings.json"), `{"theme":"dark"}`)
	writeTestFile(t, filepath.Join(r.projects, testProject, testConversation+".jsonl"), testLog)
	writeTestFile(t, filepath.Join(r.projects, "-other", "x.jsonl"), "{}\n")
	writeTestFile(t, filepath.Join(r.history, testConversation, "app@v1"), "package main\n")
	writeTestFile(t, filepath.Join(r.history, testConversation, "logo@v1"), "\x89PNG\r\n\x1a\n\xff")
	return r
}

func (r *testRoot) exporter() *Exporter {
	e := NewExporter(r.claudeDir, r.projects, r.history)
	e.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func (r *testRoot) importer() *Importer {
	return NewImporter(r.claudeDir, r.projects, r.history, r.guard)
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

func filePaths(b *Bundle) map[string]string {
	m := make(map[string]string, len(b.Files))
	for _, f := range b.Files {
		m[f.Path] = f.Content
	}
	return m
}
