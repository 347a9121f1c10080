// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package version resolves the version of the extension being built, and emits it into the
// generated version files read by the Python package and compiled into the native library.
package version

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gomlx/ipexbuild/pkg/runner"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ShortHashLen is the number of characters of the revision hash appended to versioned builds.
const ShortHashLen = 7

// Revision is the result of querying the source control for the current revision: it is either
// resolved to a hash, or unavailable.
type Revision struct {
	hash   string
	reason error
}

// Resolved returns a resolved Revision. The hash may be empty, for a checkout known to be absent.
func Resolved(hash string) Revision {
	return Revision{hash: hash}
}

// Unavailable returns a Revision that couldn't be determined, for the given reason.
func Unavailable(reason error) Revision {
	if reason == nil {
		reason = errors.New("revision unavailable")
	}
	return Revision{reason: reason}
}

// Available returns whether the revision was resolved.
func (r Revision) Available() bool {
	return r.reason == nil
}

// Reason returns why the revision is unavailable, or nil if it was resolved.
func (r Revision) Reason() error {
	return r.reason
}

// Hash returns the full hash, or "" if unavailable.
func (r Revision) Hash() string {
	return r.hash
}

// Short returns the first ShortHashLen characters of the hash (or less, if the hash is shorter),
// and whether there is any hash at all.
func (r Revision) Short() (string, bool) {
	if !r.Available() || r.hash == "" {
		return "", false
	}
	if len(r.hash) <= ShortHashLen {
		return r.hash, true
	}
	return r.hash[:ShortHashLen], true
}

// Record is the version information of one build. It is created once by Resolve.
type Record struct {
	// Base is the version before the revision suffix.
	Base string

	// Version is the composed semantic version, e.g. "1.0.0+1a2b3c4".
	Version string

	// Revision is the revision hash of the extension's checkout.
	Revision string

	// FrameworkRevision is the revision hash of the parent (framework) checkout, if any.
	FrameworkRevision string
}

// Resolve composes the version: base, plus "+<short hash>" if versioned is true and the project
// revision is available. It never fails: an unavailable revision yields the base version.
func Resolve(base string, versioned bool, project, framework Revision) Record {
	rec := Record{
		Base:              base,
		Version:           base,
		Revision:          project.Hash(),
		FrameworkRevision: framework.Hash(),
	}
	if !versioned {
		return rec
	}
	short, ok := project.Short()
	if !ok {
		klog.V(1).Infof("versioned build without a revision, using %q: %v", base, project.Reason())
		return rec
	}
	rec.Version = base + "+" + short
	return rec
}

// GitRevisions queries git for the revision of the checkout in baseDir, and of the parent
// checkout (the framework source tree the extension may be nested in).
//
// Failures are not errors: they yield unavailable revisions. If there is no parent checkout,
// the framework revision is resolved to an empty hash.
func GitRevisions(r runner.Runner, baseDir string) (project, framework Revision) {
	project = gitHead(r, baseDir)
	parentDir := filepath.Join(baseDir, "..")
	fi, err := os.Stat(filepath.Join(parentDir, ".git"))
	if err != nil || !fi.IsDir() {
		return project, Resolved("")
	}
	return project, gitHead(r, parentDir)
}

func gitHead(r runner.Runner, dir string) Revision {
	output, err := r.Output(runner.New("git", "rev-parse", "HEAD").InDir(dir))
	if err != nil {
		err = runner.WithStderr(err)
		klog.V(1).Infof("no git revision for %s: %v", dir, err)
		return Unavailable(err)
	}
	return Resolved(strings.TrimSpace(string(output)))
}
