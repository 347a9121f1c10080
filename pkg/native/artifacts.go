package native

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gomlx/ipexbuild/pkg/support/fsutil"
	"github.com/pkg/errors"
)

// Artifact is a built shared library.
type Artifact struct {
	Path string
	Size int64
}

// Artifacts lists the shared libraries (".so", ".so.<version>" and ".dylib") directly under dir,
// sorted by path. A missing dir yields no artifacts and no error.
func Artifacts(dir string) ([]Artifact, error) {
	exists, err := fsutil.FileExists(dir)
	if err != nil || !exists {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list artifacts in %q", dir)
	}
	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() || !isSharedLibrary(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to stat artifact %q", entry.Name())
		}
		artifacts = append(artifacts, Artifact{Path: filepath.Join(dir, entry.Name()), Size: info.Size()})
	}
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Path < artifacts[j].Path })
	return artifacts, nil
}

func isSharedLibrary(name string) bool {
	return strings.HasSuffix(name, ".so") || strings.Contains(name, ".so.") || strings.HasSuffix(name, ".dylib")
}
