// internal/archive/codec.go
package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"claude-restore/internal/errs"
)

const maxDecodedSize = 1 << 30

// zstdMagic is the frame header every zstd stream starts with
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
)

// Marshal renders a bundle as indented JSON, zstd-compressed when compress is set
func Marshal(b *Bundle, compress bool) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}
	if !compress {
		return data, nil
	}
	return encoder.EncodeAll(data, nil), nil
}

// IsCompressed reports whether data is a zstd stream
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// Unwrap returns body decompressed if it is a zstd stream, otherwise unchanged
func Unwrap(body []byte) ([]byte, error) {
	if !IsCompressed(body) {
		return body, nil
	}
	data, err := decoder.DecodeAll(body, nil)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidFormat, err, "Invalid compressed import data")
	}
	return data, nil
}

// Filename returns the download name of a bundle
func Filename(b *Bundle, compress bool, now time.Time) string {
	ms := now.UnixMilli()

	var name string
	switch b.Type {
	case ScopeProject:
		name = fmt.Sprintf("claude-project-%s-%d.json", truncate(b.ProjectID, 20), ms)
	case ScopeConversation:
		name = fmt.Sprintf("claude-conversation-%s-%d.json", truncate(b.ConversationID, 8), ms)
	case ScopeCheckpoint:
		name = fmt.Sprintf("claude-checkpoint-%s-%d.json", truncate(b.CheckpointMessageID, 8), ms)
	default:
		name = fmt.Sprintf("claude-backup-%d.json", ms)
	}

	if compress {
		name += ".zst"
	}
	return name
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
