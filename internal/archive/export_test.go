package archive

import (
	"testing"

	"claude-restore/internal/errs"
)

func TestExporter_Global(t *testing.T) {
	r := newTestRoot(t)

	b, err := r.exporter().Global()
	if err != nil {
		t.Fatalf("Global failed: %v", err)
	}

	if b.Type != ScopeGlobal || b.ClaudeRoot != r.claudeDir {
		t.Errorf("Unexpected bundle header: %+v", b)
	}
	if b.ExportedAt != "2024-05-01T12:00:00.000Z" {
		t.Errorf("Unexpected exportedAt: %s", b.ExportedAt)
	}

	files := filePaths(b)
	for _, want := range []string{
		"settings.json",
		"projects/" + testProject + "/" + testConversation + ".jsonl",
		"file-history/" + testConversation + "/app@v1",
	} {
		if _, ok := files[want]; !ok {
			t.Errorf("Expected %s in bundle", want)
		}
	}
	if _, ok := files["file-history/"+testConversation+"/logo@v1"]; ok {
		t.Error("Expected binary file to be left out")
	}
}

func TestExporter_GlobalMissingRoot(t *testing.T) {
	e := NewExporter(t.TempDir()+"/missing", "", "")
	b, err := e.Global()
	if err != nil {
		t.Fatalf("Global failed: %v", err)
	}
	if b.Files == nil || len(b.Files) != 0 {
		t.Errorf("Expected empty file list, got %v", b.Files)
	}
}

func TestExporter_Project(t *testing.T) {
	r := newTestRoot(t)

	b, err := r.exporter().Project(testProject)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	if b.Type != ScopeProject || b.ProjectID != testProject {
		t.Errorf("Unexpected bundle header: %+v", b)
	}
	files := filePaths(b)
	if len(files) != 2 {
		t.Errorf("Expected log and one history blob, got %v", b.Files)
	}
	if files[testConversation+".jsonl"] != testLog {
		t.Error("Expected conversation log content")
	}
	if files["file-history/"+testConversation+"/app@v1"] != "package main\n" {
		t.Error("Expected history blob content")
	}

	if _, err := r.exporter().Project("missing"); !errs.Is(err, errs.NotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}
	if _, err := r.exporter().Project("../etc"); !errs.Is(err, errs.PathTraversal) {
		t.Errorf("Expected PathTraversal, got %v", err)
	}
}

func TestExporter_Conversation(t *testing.T) {
	r := newTestRoot(t)

	b, err := r.exporter().Conversation(testProject, testConversation)
	if err != nil {
		t.Fatalf("Conversation failed: %v", err)
	}

	if b.Type != ScopeConversation || b.ConversationID != testConversation || b.ProjectID != testProject {
		t.Errorf("Unexpected bundle header: %+v", b)
	}
	if len(b.Files) != 2 || b.Files[0].Path != testConversation+".jsonl" {
		t.Errorf("Expected log first then history, got %v", b.Files)
	}

	if _, err := r.exporter().Conversation(testProject, "missing"); !errs.Is(err, errs.NotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestExporter_Checkpoint(t *testing.T) {
	r := newTestRoot(t)

	b, err := r.exporter().Checkpoint(testProject, testConversation, "msg-001")
	if err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}

	if b.Type != ScopeCheckpoint || b.CheckpointMessageID != "msg-001" {
		t.Errorf("Unexpected bundle header: %+v", b)
	}
	// null backup and binary blob are both left out
	if len(b.Files) != 1 || b.Files[0].Path != "src/app.go" || b.Files[0].Content != "package main\n" {
		t.Errorf("Unexpected files: %v", b.Files)
	}

	t.Run("empty checkpoint", func(t *testing.T) {
		b, err := r.exporter().Checkpoint(testProject, testConversation, "msg-empty")
		if err != nil {
			t.Fatalf("Checkpoint failed: %v", err)
		}
		if len(b.Files) != 0 {
			t.Errorf("Expected no files, got %v", b.Files)
		}
	})

	tests := []struct {
		name      string
		project   string
		conv      string
		messageID string
		kind      errs.Kind
	}{
		{"missing parameter", testProject, testConversation, "", errs.MissingParameter},
		{"unknown conversation", testProject, "nope", "msg-001", errs.NotFound},
		{"unknown checkpoint", testProject, testConversation, "msg-404", errs.NotFound},
		{"unsafe conversation", testProject, "../x", "msg-001", errs.PathTraversal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.exporter().Checkpoint(tt.project, tt.conv, tt.messageID)
			if errs.KindOf(err) != tt.kind {
				t.Errorf("Expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestFindSnapshotLine(t *testing.T) {
	content := []byte("garbage\n\n" +
		`{"type":"file-history-snapshot","messageId":"m1","snapshot":{}}` + "\n" +
		`{"type":"file-history-snapshot","messageId":"m1","snapshot":{"trackedFileBackups":{"a":{"backupFileName":"a@v1"}}}}` + "\n")

	entry, ok := findSnapshotLine(content, "m1")
	if !ok {
		t.Fatal("Expected snapshot to be found")
	}
	if len(entry.Snapshot.TrackedFileBackups) != 1 {
		t.Errorf("Expected the line with tracked backups, got %+v", entry.Snapshot)
	}

	if _, ok := findSnapshotLine(nil, "m1"); ok {
		t.Error("Expected no snapshot in empty content")
	}

	t.Run("mistyped entry keeps the line", func(t *testing.T) {
		content := []byte(`{"type":"file-history-snapshot","messageId":"m2","snapshot":{"trackedFileBackups":{"a":{"backupFileName":"a@v1"},"b":{"backupFileName":7}}}}` + "\n")

		entry, ok := findSnapshotLine(content, "m2")
		if !ok {
			t.Fatal("Expected snapshot with a mistyped entry to be found")
		}
		a := entry.Snapshot.TrackedFileBackups["a"].BackupFileName
		if a == nil || *a != "a@v1" {
			t.Errorf("Expected well-typed entry to survive, got %+v", entry.Snapshot.TrackedFileBackups)
		}
		if b := entry.Snapshot.TrackedFileBackups["b"].BackupFileName; b != nil {
			t.Errorf("Expected mistyped backup name to decode as nil, got %q", *b)
		}
	})
}
