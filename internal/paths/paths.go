// internal/paths/paths.go
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"claude-restore/internal/errs"
)

// ExpandHome rewrites a leading "~" to home
func ExpandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		return filepath.Join(home, p[2:])
	}
	return p
}

// HasTraversal reports whether the literal path text contains a parent
// directory reference anywhere
func HasTraversal(p string) bool {
	return strings.Contains(p, "..")
}

// Guard decides whether a path may be written to. It is built once from the
// configuration and holds the canonical form of every private root.
type Guard struct {
	home  string
	roots []string
}

// NewGuard creates a Guard that protects the given private roots
func NewGuard(home string, privateRoots ...string) *Guard {
	g := &Guard{home: home}
	seen := make(map[string]bool)
	for _, root := range privateRoots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		c := g.canonical(root)
		if !seen[c] {
			seen[c] = true
			g.roots = append(g.roots, c)
		}
	}
	return g
}

// Expand rewrites a leading "~" to the guard's home directory
func (g *Guard) Expand(p string) string {
	return ExpandHome(p, g.home)
}

// IsPrivate reports whether p resolves to a private root or anything below it
func (g *Guard) IsPrivate(p string) bool {
	c := g.canonical(p)
	for _, root := range g.roots {
		if isUnder(c, root) {
			return true
		}
	}
	return false
}

// Contains reports whether p resolves to dir or a path below it
func (g *Guard) Contains(dir, p string) bool {
	return isUnder(g.canonical(p), g.canonical(dir))
}

// ValidateTarget checks a restore or import target directory and returns its
// home-expanded form. Nothing is created or written.
func (g *Guard) ValidateTarget(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errs.New(errs.RequiredFieldMissing, "targetDir is required")
	}

	expanded := g.Expand(p)

	// Never write into the assistant's own store
	if g.IsPrivate(expanded) {
		return "", errs.New(errs.UnsafeTarget, "Restore target cannot be inside the Claude data directory - this is not allowed for safety")
	}

	if HasTraversal(p) || HasTraversal(expanded) {
		return "", errs.New(errs.PathTraversal, "Path traversal detected - '..' is not allowed in paths")
	}

	return expanded, nil
}

// canonical returns an absolute, cleaned, symlink-resolved and case-folded path
func (g *Guard) canonical(p string) string {
	abs, err := filepath.Abs(g.Expand(p))
	if err != nil {
		abs = filepath.Clean(p)
	}
	return strings.ToLower(resolveSymlinks(abs))
}

// resolveSymlinks resolves the longest existing ancestor of p and re-appends
// the part that does not exist yet
func resolveSymlinks(p string) string {
	rest := ""
	cur := p
	for {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(resolved, rest)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p
		}
		rest = filepath.Join(filepath.Base(cur), rest)
		cur = parent
	}
}

func isUnder(p, root string) bool {
	if p == root {
		return true
	}
	if !strings.HasSuffix(root, string(os.PathSeparator)) {
		root += string(os.PathSeparator)
	}
	return strings.HasPrefix(p, root)
}

// SafeName validates an identifier that is used as a single path element
func SafeName(field, value string) error {
	if value == "" {
		return errs.New(errs.MissingParameter, "Missing required parameter: %s", field)
	}
	if HasTraversal(value) || strings.ContainsAny(value, `/\`) {
		return errs.New(errs.PathTraversal, "Invalid %s: path separators and '..' are not allowed", field)
	}
	return nil
}

// JoinWithin joins a bundle-relative path onto root, refusing entries that
// reference a parent directory
func JoinWithin(root, rel string) (string, error) {
	if HasTraversal(rel) {
		return "", errs.New(errs.PathTraversal, "Path traversal detected in %q", rel)
	}
	cleaned := strings.TrimLeft(toSlash(rel), "/")
	if cleaned == "" {
		return "", errs.New(errs.InvalidFormat, "Empty file path")
	}
	return filepath.Join(root, filepath.FromSlash(cleaned)), nil
}
