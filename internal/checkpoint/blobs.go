// internal/checkpoint/blobs.go
package checkpoint

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"claude-restore/internal/paths"
)

// BlobStore reads backup blobs from the file-history root. Each conversation
// has its own directory and blobs are referenced by backupFileName.
type BlobStore struct {
	historyRoot string
}

// NewBlobStore creates a BlobStore over historyRoot
func NewBlobStore(historyRoot string) *BlobStore {
	return &BlobStore{historyRoot: historyRoot}
}

// HistoryDir returns the blob directory of a conversation
func (b *BlobStore) HistoryDir(conversationID string) string {
	return filepath.Join(b.historyRoot, conversationID)
}

// HasHistory reports whether the conversation has a blob directory
func (b *BlobStore) HasHistory(conversationID string) bool {
	info, err := os.Stat(b.HistoryDir(conversationID))
	return err == nil && info.IsDir()
}

// Path returns the location of a blob, refusing names that leave the
// conversation directory
func (b *BlobStore) Path(conversationID, backupFileName string) (string, error) {
	return paths.JoinWithin(b.HistoryDir(conversationID), backupFileName)
}

// Exists reports whether a regular file exists at path
func (b *BlobStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Read returns a blob's content
func (b *BlobStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Copy writes src verbatim to dst, replacing dst if it exists
func (b *BlobStore) Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open blob: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return out.Close()
}

var contentTypes = map[string]string{
	"ts":   "text/typescript",
	"tsx":  "text/typescript",
	"js":   "text/javascript",
	"jsx":  "text/javascript",
	"json": "application/json",
	"md":   "text/markdown",
	"html": "text/html",
	"css":  "text/css",
	"py":   "text/x-python",
	"rs":   "text/x-rust",
	"go":   "text/x-go",
	"java": "text/x-java",
	"c":    "text/x-c",
	"cpp":  "text/x-c++",
	"h":    "text/x-c",
	"hpp":  "text/x-c++",
	"sh":   "text/x-shellscript",
	"yml":  "text/yaml",
	"yaml": "text/yaml",
	"toml": "text/toml",
	"xml":  "text/xml",
	"sql":  "text/x-sql",
}

// ContentType guesses a text media type from the file extension
func ContentType(filePath string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(toSlash(filePath)), "."))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "text/plain"
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
