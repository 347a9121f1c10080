// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package codegen runs the operator code generators, that expand the framework's sparse and
// dense operator declarations into the native stubs compiled into the extension.
//
// Generation must complete before the native build starts: the build globs the generated files.
package codegen

import (
	"fmt"

	"github.com/gomlx/ipexbuild/pkg/runner"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Generator scripts, relative to Generator.ScriptsDir.
const (
	SparseScript = "./gen-sparse-cpu-ops.sh"
	DenseScript  = "./gen-dense-cpu-ops.sh"
)

// Generator configures the code generation.
type Generator struct {
	// ScriptsDir holds the generator scripts. They are run with it as working directory.
	ScriptsDir string

	// OpsDir is where the generated operator sources are written.
	OpsDir string

	// SparseDeclDir holds the framework header declarations used by the sparse generator.
	SparseDeclDir string

	// FrameworkDir is the installed framework directory.
	FrameworkDir string
}

// GeneratorError is returned when a generator script fails.
type GeneratorError struct {
	Command *runner.Command
	Err     error
}

// Error implements the error interface.
func (e *GeneratorError) Error() string {
	return fmt.Sprintf("Failed to run '%s': %v", e.Command, e.Err)
}

// Unwrap returns the underlying runner error.
func (e *GeneratorError) Unwrap() error {
	return e.Err
}

// Commands returns the generator invocations, in the order they must run: sparse first, then dense.
func (g *Generator) Commands() []*runner.Command {
	return []*runner.Command{
		runner.New(SparseScript, g.OpsDir, g.FrameworkDir, g.SparseDeclDir).InDir(g.ScriptsDir),
		runner.New(DenseScript, g.OpsDir, g.FrameworkDir).InDir(g.ScriptsDir),
	}
}

// Generate runs the generators in order, stopping at the first failure, which is returned as
// a *GeneratorError.
//
// The generators run in ScriptsDir, but the working directory of the calling process is
// never changed.
func (g *Generator) Generate(r runner.Runner) error {
	if g.ScriptsDir == "" || g.OpsDir == "" || g.FrameworkDir == "" {
		return errors.Errorf("incomplete code generator configuration: %+v", *g)
	}
	for _, cmd := range g.Commands() {
		klog.V(1).Infof("generating operators with %s", cmd.Name)
		if err := r.Run(cmd); err != nil {
			return &GeneratorError{Command: cmd, Err: err}
		}
	}
	return nil
}
