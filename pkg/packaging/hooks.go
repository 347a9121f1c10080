package packaging

import (
	"bufio"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gomlx/ipexbuild/pkg/native"
	"github.com/gomlx/ipexbuild/pkg/support/fsutil"
	"github.com/gomlx/ipexbuild/pkg/support/sets"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// NotCleanMarker starts the section of the ignore file listing entries that are never cleaned.
// It is followed by a space or by the end of the line.
const NotCleanMarker = "# BEGIN NOT-CLEAN-FILES"

func isNotCleanMarker(line string) bool {
	return line == NotCleanMarker || strings.HasPrefix(line, NotCleanMarker+" ")
}

// CleanPatterns reads an ignore file (in .gitignore format) and returns the patterns to clean:
// every non-empty, non-comment line up to the NotCleanMarker line.
// Negated patterns ("!pattern") are skipped.
func CleanPatterns(r io.Reader) ([]string, error) {
	var patterns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if isNotCleanMarker(line) {
				break
			}
			continue
		}
		if strings.HasPrefix(line, "!") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, errors.Wrap(scanner.Err(), "failed to read ignore file")
}

// CleanHook removes the files and directories matching the patterns of an ignore file.
type CleanHook struct {
	// Dir is the directory patterns are relative to.
	Dir string

	// IgnoreFile is the path of the ignore file, usually Dir/.gitignore.
	IgnoreFile string
}

var _ Hook = (*CleanHook)(nil)

// Run implements Hook.
func (h *CleanHook) Run() error {
	_, err := h.Clean()
	return err
}

// Clean removes matching paths and returns them.
//
// Failure to remove one path is logged and doesn't stop the cleaning: only failing to read the
// ignore file is an error.
func (h *CleanHook) Clean() (removed []string, err error) {
	f, err := os.Open(h.IgnoreFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open ignore file")
	}
	defer func() { _ = f.Close() }()
	patterns, err := CleanPatterns(f)
	if err != nil {
		return nil, err
	}
	seen := sets.Make[string]()
	for _, pattern := range patterns {
		dirOnly := strings.HasSuffix(pattern, "/")
		glob := filepath.Join(h.Dir, filepath.FromSlash(strings.TrimPrefix(pattern, "/")))
		matches, err := filepath.Glob(glob)
		if err != nil {
			klog.Warningf("clean: skipping malformed pattern %q: %v", pattern, err)
			continue
		}
		for _, match := range matches {
			if seen.Has(match) || (dirOnly && !fsutil.IsDir(match)) || !matchesHidden(h.Dir, pattern, match) {
				continue
			}
			seen.Insert(match)
			if err := fsutil.Remove(match); err != nil {
				klog.Warningf("clean: %v", err)
				continue
			}
			klog.V(1).Infof("clean: removed %s", match)
			removed = append(removed, match)
		}
	}
	return removed, nil
}

// matchesHidden reports whether match may be cleaned: wildcards don't match hidden names (starting
// with "."), only pattern parts that start with "." themselves do.
func matchesHidden(dir, pattern, match string) bool {
	rel, err := filepath.Rel(dir, match)
	if err != nil {
		return false
	}
	patternParts := strings.Split(path.Clean(strings.Trim(pattern, "/")), "/")
	for ii, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if !strings.HasPrefix(part, ".") {
			continue
		}
		if ii >= len(patternParts) || !strings.HasPrefix(patternParts[ii], ".") {
			return false
		}
	}
	return true
}

// BuildHook runs the code generation and then builds every extension.
// Generation always completes before any extension is built.
type BuildHook struct {
	Generate   func() error
	Build      func(exts ...*native.Extension) error
	Extensions []*native.Extension
}

var _ Hook = (*BuildHook)(nil)

// Run implements Hook.
func (h *BuildHook) Run() error {
	if h.Generate != nil {
		if err := h.Generate(); err != nil {
			return err
		}
	}
	return h.Build(h.Extensions...)
}
