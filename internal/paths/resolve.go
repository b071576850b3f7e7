package paths

import (
	"path/filepath"
	"strings"
)

// ResolveRestorePath maps a backed-up file's original path onto targetDir.
//
// Paths under referenceCwd keep their structure relative to it. Other absolute
// paths, including Windows drive-letter and UNC paths, lose their root and are
// joined onto targetDir. Relative paths are joined directly. targetDir is not
// validated here.
func ResolveRestorePath(filePath, targetDir, referenceCwd string) string {
	p := toSlash(filePath)

	if !isAbs(p) {
		return filepath.Join(targetDir, filepath.FromSlash(p))
	}

	cwd := strings.TrimRight(toSlash(referenceCwd), "/")
	if cwd != "" {
		if rel, ok := trimPathPrefix(p, cwd); ok {
			return filepath.Join(targetDir, filepath.FromSlash(rel))
		}
	}

	return filepath.Join(targetDir, filepath.FromSlash(stripRoot(p)))
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAbs(p string) bool {
	return strings.HasPrefix(p, "/") || hasDriveLetter(p)
}

// stripRoot removes a drive letter and any leading separators
func stripRoot(p string) string {
	if hasDriveLetter(p) {
		p = p[2:]
	}
	return strings.TrimLeft(p, "/")
}

// trimPathPrefix removes prefix from p on a segment boundary. Drive-letter
// paths compare case-insensitively.
func trimPathPrefix(p, prefix string) (string, bool) {
	if len(p) < len(prefix) {
		return "", false
	}

	head := p[:len(prefix)]
	if hasDriveLetter(p) || hasDriveLetter(prefix) {
		if !strings.EqualFold(head, prefix) {
			return "", false
		}
	} else if head != prefix {
		return "", false
	}

	rest := p[len(prefix):]
	if rest == "" {
		return "", true
	}
	if rest[0] != '/' {
		return "", false
	}
	return strings.TrimLeft(rest, "/"), true
}
