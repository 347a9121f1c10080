// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package native builds the native library of the extension with CMake.
//
// Each Extension goes through the stages prepare, configure and compile, in this order,
// stopping at the first failure:
//
//   - prepare: creates the build directory.
//   - configure: runs cmake (or cmake3) in the build directory, against the installed framework.
//   - compile: runs the build driver (make, or ninja if selected) with one job per processing unit.
//
// Before any extension is built, the host is checked: the CMake binary must be found, and the
// operating system must be supported.
package native

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gomlx/ipexbuild/pkg/buildenv"
	"github.com/gomlx/ipexbuild/pkg/runner"
	"github.com/gomlx/ipexbuild/pkg/support/sets"
	"github.com/gomlx/ipexbuild/pkg/support/xslices"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Extension describes one native module to build.
type Extension struct {
	// Name of the native module, e.g. "_torch_ipex".
	Name string

	// ProjectDir is the CMake source directory.
	ProjectDir string

	// BuildDir is the CMake build directory.
	BuildDir string
}

// NewExtension creates an Extension for the project in projectDir, built under projectDir/build.
func NewExtension(name, projectDir string) (*Extension, error) {
	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve project directory %q of extension %q", projectDir, name)
	}
	return &Extension{
		Name:       name,
		ProjectDir: absDir,
		BuildDir:   filepath.Join(absDir, "build"),
	}, nil
}

// Stage of the build of one Extension.
//
//go:generate go tool enumer -type=Stage -trimprefix=Stage -transform=snake -output=gen_stage_enumer.go native.go
type Stage int

const (
	StagePrepare Stage = iota
	StageConfigure
	StageCompile
)

// Observer is notified of the progress of a build.
type Observer interface {
	StageStarted(ext *Extension, stage Stage)
	StageFinished(ext *Extension, stage Stage, err error)
}

// CoordinatorNames are the CMake binaries searched for, in order of preference.
var CoordinatorNames = []string{"cmake3", "cmake"}

// UnsupportedOS lists the operating systems (in runtime.GOOS format) the extension can't be built on.
var UnsupportedOS = sets.MakeWith("windows")

// SYCLCompiler is the C++ compiler driver used when the SYCL toolchain is enabled.
const SYCLCompiler = "compute++"

var (
	// ErrCoordinatorNotFound is returned if none of CoordinatorNames is found.
	ErrCoordinatorNotFound = errors.New("CMake must be installed to build the following extensions")

	// ErrUnsupportedOS is returned when building on one of the UnsupportedOS.
	ErrUnsupportedOS = errors.New("unsupported operating system")
)

// StageError is returned when a stage of the build of an extension fails.
type StageError struct {
	Extension string
	Stage     Stage
	Err       error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("failed to %s extension %q: %v", e.Stage, e.Extension, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Builder builds native extensions.
type Builder struct {
	Config buildenv.Config
	Host   buildenv.Host
	Runner runner.Runner

	// LibDir is where extensions are installed.
	LibDir string

	// PrimaryExtension is the name of the extension that, when the SYCL toolchain is enabled,
	// is installed under ModuleDir, next to its Python wrapper package.
	PrimaryExtension string
	ModuleDir        string

	// Observer, if not nil, is notified of stage transitions.
	Observer Observer

	// ID identifies this build in logs.
	ID string

	coordinator string
}

// NewBuilder returns a Builder installing extensions under libDir.
func NewBuilder(cfg buildenv.Config, host buildenv.Host, r runner.Runner, libDir string) *Builder {
	return &Builder{
		Config: cfg,
		Host:   host,
		Runner: r,
		LibDir: libDir,
		ID:     uuid.NewString(),
	}
}

// Result of building one extension.
type Result struct {
	Extension  *Extension
	InstallDir string
	Artifacts  []Artifact
	Elapsed    time.Duration
}

// CheckHost verifies the operating system is supported and finds the CMake binary.
// It is called by Build, but can be called earlier to fail fast.
func (b *Builder) CheckHost(exts ...*Extension) error {
	if UnsupportedOS.Has(b.Host.GOOS) {
		return errors.Wrapf(ErrUnsupportedOS, "does not support %s", b.Host.GOOS)
	}
	for _, name := range CoordinatorNames {
		if p, err := b.Runner.LookPath(name); err == nil {
			b.coordinator = p
			return nil
		}
	}
	names := xslices.Map(exts, func(ext *Extension) string { return ext.Name })
	return errors.WithMessage(ErrCoordinatorNotFound, strings.Join(names, ", "))
}

// Build builds each extension in turn, stopping at the first failure.
func (b *Builder) Build(exts ...*Extension) ([]*Result, error) {
	if err := b.CheckHost(exts...); err != nil {
		return nil, err
	}
	results := make([]*Result, 0, len(exts))
	for _, ext := range exts {
		res, err := b.BuildExtension(ext)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// BuildExtension runs the stages of one extension. CheckHost must have been called before.
func (b *Builder) BuildExtension(ext *Extension) (*Result, error) {
	if b.coordinator == "" {
		return nil, errors.Errorf("build %s: CheckHost must be called before building %q", b.ID, ext.Name)
	}
	start := time.Now()
	klog.Infof("build %s: building extension %q in %s", b.ID, ext.Name, ext.BuildDir)
	installDir := b.InstallDir(ext)
	stages := []struct {
		stage Stage
		fn    func() error
	}{
		{StagePrepare, func() error { return b.prepare(ext) }},
		{StageConfigure, func() error { return b.Runner.Run(b.ConfigureCommand(ext)) }},
		{StageCompile, func() error { return b.Runner.Run(b.CompileCommand(ext)) }},
	}
	for _, s := range stages {
		if b.Observer != nil {
			b.Observer.StageStarted(ext, s.stage)
		}
		err := s.fn()
		if b.Observer != nil {
			b.Observer.StageFinished(ext, s.stage, err)
		}
		if err != nil {
			return nil, &StageError{Extension: ext.Name, Stage: s.stage, Err: err}
		}
	}
	artifacts, err := Artifacts(installDir)
	if err != nil {
		klog.Warningf("build %s: can't list artifacts of %q: %v", b.ID, ext.Name, err)
	}
	return &Result{Extension: ext, InstallDir: installDir, Artifacts: artifacts, Elapsed: time.Since(start)}, nil
}

func (b *Builder) prepare(ext *Extension) error {
	if err := os.MkdirAll(ext.BuildDir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create build directory %q", ext.BuildDir)
	}
	return nil
}

// InstallDir returns where the extension library is installed: LibDir, or LibDir/ModuleDir for
// the PrimaryExtension when the SYCL toolchain is enabled.
func (b *Builder) InstallDir(ext *Extension) string {
	if b.Config.UseSYCL && b.PrimaryExtension != "" && ext.Name == b.PrimaryExtension {
		return filepath.Join(b.LibDir, b.ModuleDir)
	}
	return b.LibDir
}

// ConfigureArgs returns the CMake arguments used to configure the extension.
func (b *Builder) ConfigureArgs(ext *Extension) []string {
	installDir := b.InstallDir(ext)
	args := []string{
		"-DCMAKE_BUILD_TYPE=" + b.Config.BuildType.String(),
		"-DPYTORCH_INSTALL_DIR=" + b.Host.FrameworkDir,
		"-DPYTHON_EXECUTABLE=" + b.Host.Interpreter,
		"-DCMAKE_INSTALL_PREFIX=" + installDir,
		"-DCMAKE_LIBRARY_OUTPUT_DIRECTORY=" + installDir,
		"-DPYTHON_INCLUDE_DIR=" + b.Host.InterpreterIncludeDir,
	}
	if b.Config.UseSYCL {
		args = append(args, "-DUSE_SYCL=1")
	}
	if b.Config.EnableProfiling {
		args = append(args, "-DDPCPP_ENABLE_PROFILING=1")
	}
	if b.Config.UseNinja {
		args = append(args, "-GNinja")
	}
	return args
}

// ConfigureCommand returns the cmake invocation for the extension. CheckHost must have been
// called before, to resolve the cmake binary.
func (b *Builder) ConfigureCommand(ext *Extension) *runner.Command {
	cmd := runner.New(b.coordinator, append([]string{ext.ProjectDir}, b.ConfigureArgs(ext)...)...).
		InDir(ext.BuildDir)
	if b.Config.UseSYCL {
		cmd.WithEnv("CXX=" + SYCLCompiler)
	}
	return cmd
}

// CompileCommand returns the build driver invocation for the extension.
func (b *Builder) CompileCommand(ext *Extension) *runner.Command {
	driver := "make"
	if b.Config.UseNinja {
		driver = "ninja"
	}
	jobs := b.Host.NumCPU
	if jobs < 1 {
		jobs = 1
	}
	return runner.New(driver, "-j", strconv.Itoa(jobs)).InDir(ext.BuildDir)
}
