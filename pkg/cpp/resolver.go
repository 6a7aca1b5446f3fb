package cpp

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// FileResolver implements IncludeCallback against the local
// filesystem: a local #include searches the parent file's own
// directory, then LocalPaths, then SystemPaths; a system #include
// searches only SystemPaths. Any search-path entry containing glob
// metacharacters is expanded to its matching concrete directories via
// doublestar, so "-I vendor/**/include" stands in for a flat
// directory list.
type FileResolver struct {
	LocalPaths  []string
	SystemPaths []string

	onceSeen map[string]bool
}

// NewFileResolver builds a resolver over the given search paths.
func NewFileResolver(localPaths, systemPaths []string) *FileResolver {
	return &FileResolver{
		LocalPaths:  localPaths,
		SystemPaths: systemPaths,
		onceSeen:    make(map[string]bool),
	}
}

// MarkOnce records filename as covered by a #pragma once. A later
// Open of the same filename spelling succeeds with empty content
// instead of re-reading the file, so it contributes nothing the
// second time through.
func (r *FileResolver) MarkOnce(filename string) {
	r.onceSeen[filename] = true
}

// Open implements IncludeCallback.
func (r *FileResolver) Open(kind IncludeKind, filename string, parentFile string) (string, func(), bool) {
	if r.onceSeen[filename] {
		return "", nil, true
	}
	for _, dir := range expandDirs(r.searchDirs(kind, parentFile)) {
		candidate := filepath.Join(dir, filename)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		return string(data), nil, true
	}
	return "", nil, false
}

func (r *FileResolver) searchDirs(kind IncludeKind, parentFile string) []string {
	if kind == IncludeSystem {
		return r.SystemPaths
	}
	dirs := make([]string, 0, len(r.LocalPaths)+len(r.SystemPaths)+1)
	if parentFile != "" {
		dirs = append(dirs, filepath.Dir(parentFile))
	}
	dirs = append(dirs, r.LocalPaths...)
	dirs = append(dirs, r.SystemPaths...)
	return dirs
}

// expandDirs resolves any glob-pattern entry to its matching concrete
// directories, leaving plain paths untouched.
func expandDirs(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if !hasGlobMeta(d) {
			out = append(out, d)
			continue
		}
		matches, err := doublestar.FilepathGlob(d)
		if err != nil || len(matches) == 0 {
			out = append(out, d)
			continue
		}
		out = append(out, matches...)
	}
	return out
}

func hasGlobMeta(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[':
			return true
		}
	}
	return false
}
