package claude

import "strings"

// DecodeProjectName turns a project directory name back into the path it was
// derived from. "--" marks a separator followed by an underscore-prefixed
// segment, every other "-" was a separator. The encoding is lossy: a literal
// "-" or "_" inside a segment decodes as a separator.
func DecodeProjectName(encoded string) string {
	if !strings.HasPrefix(encoded, "-") {
		return encoded
	}

	decoded := strings.ReplaceAll(encoded, "--", "/_")
	return strings.ReplaceAll(decoded, "-", "/")
}

// EncodeProjectName is the inverse of DecodeProjectName
func EncodeProjectName(path string) string {
	encoded := strings.ReplaceAll(path, "/_", "--")
	return strings.ReplaceAll(encoded, "/", "-")
}

// ProjectDisplayName returns the last element of a decoded project path
func ProjectDisplayName(decodedPath string) string {
	parts := strings.FieldsFunc(decodedPath, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return decodedPath
	}
	return parts[len(parts)-1]
}
