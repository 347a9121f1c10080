// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package project declares the Intel PyTorch Extension project: where its files are, how its
// version is resolved, and the distribution with its "build_ext" and "clean" hooks.
package project

import (
	"path/filepath"

	"github.com/gomlx/ipexbuild/pkg/buildenv"
	"github.com/gomlx/ipexbuild/pkg/codegen"
	"github.com/gomlx/ipexbuild/pkg/native"
	"github.com/gomlx/ipexbuild/pkg/packaging"
	"github.com/gomlx/ipexbuild/pkg/runner"
	"github.com/gomlx/ipexbuild/pkg/version"
)

// Names used in the distribution.
const (
	Name          = "torch_ipex"
	ExtensionName = "_torch_ipex"

	// ModuleDir is where ExtensionName is installed, relative to the library directory, when
	// the SYCL toolchain is enabled: next to the torch_ipex Python package.
	ModuleDir = "torch_ipex"

	// PythonPackage is the user facing Python package, whose sources are in PythonPackageDir.
	PythonPackage    = "intel_pytorch_extension"
	PythonPackageDir = "intel_pytorch_extension_py"
)

// Packages lists the importable Python packages of the distribution.
var Packages = []string{
	"torch_ipex",
	PythonPackage,
	PythonPackage + ".optim",
	PythonPackage + ".ops",
}

// Layout locates the project files under BaseDir.
type Layout struct {
	BaseDir string
}

// PythonVersionFile is the generated version file of the Python package.
func (l Layout) PythonVersionFile() string {
	return filepath.Join(l.BaseDir, PythonPackageDir, "version.py")
}

// CppVersionFile is the generated version file compiled into the native library.
func (l Layout) CppVersionFile() string {
	return filepath.Join(l.BaseDir, "torch_ipex", "csrc", "version.cpp")
}

// ScriptsDir holds the operator code generators.
func (l Layout) ScriptsDir() string {
	return filepath.Join(l.BaseDir, "scripts", "cpu")
}

// OpsDir is where the generated operators are written.
func (l Layout) OpsDir() string {
	return filepath.Join(l.BaseDir, "torch_ipex", "csrc", "cpu")
}

// SparseDeclDir holds the framework headers declaring the sparse operators.
func (l Layout) SparseDeclDir() string {
	return filepath.Join(l.ScriptsDir(), "pytorch_headers")
}

// IgnoreFile lists the files removed by the "clean" stage.
func (l Layout) IgnoreFile() string {
	return filepath.Join(l.BaseDir, ".gitignore")
}

// DefaultLibDir is where extensions are installed if no library directory is given.
func (l Layout) DefaultLibDir() string {
	return filepath.Join(l.BaseDir, "build", "lib")
}

// Project ties the configuration, the layout and the runner together.
type Project struct {
	Layout
	Config buildenv.Config
	Runner runner.Runner

	// Interpreter to build for. If empty, it is searched in the PATH.
	Interpreter string

	// LibDir is where extensions are installed. If empty, Layout.DefaultLibDir is used.
	LibDir string

	// Observer is passed along to the native builder.
	Observer native.Observer

	// Results of the last "build_ext" stage.
	Results []*native.Result

	// BuildID of the last "build_ext" stage.
	BuildID string

	host *buildenv.Host
}

// New creates a Project rooted at baseDir.
func New(baseDir string, cfg buildenv.Config, r runner.Runner) *Project {
	if r == nil {
		r = runner.Default
	}
	return &Project{Layout: Layout{BaseDir: baseDir}, Config: cfg, Runner: r}
}

// Host probes the interpreter and the installed framework. It is done only once, and only by
// the stages that need it: cleaning works without a framework installed.
func (p *Project) Host() (buildenv.Host, error) {
	if p.host != nil {
		return *p.host, nil
	}
	host, err := buildenv.Probe(p.Runner, p.Interpreter)
	if err != nil {
		return buildenv.Host{}, err
	}
	p.host = &host
	return host, nil
}

// Version resolves the version record of the project from its git checkout.
func (p *Project) Version() version.Record {
	projectRev, frameworkRev := version.GitRevisions(p.Runner, p.BaseDir)
	return version.Resolve(p.Config.BaseVersion, p.Config.Versioned, projectRev, frameworkRev)
}

// WriteVersionFiles emits the generated version files.
func (p *Project) WriteVersionFiles(rec version.Record) error {
	return version.WriteFiles(p.PythonVersionFile(), p.CppVersionFile(), rec)
}

// Generator returns the code generator configured for the project and host.
func (p *Project) Generator(host buildenv.Host) *codegen.Generator {
	return &codegen.Generator{
		ScriptsDir:    p.ScriptsDir(),
		OpsDir:        p.OpsDir(),
		SparseDeclDir: p.SparseDeclDir(),
		FrameworkDir:  host.FrameworkDir,
	}
}

// Builder returns the native builder configured for the project and host.
func (p *Project) Builder(host buildenv.Host) *native.Builder {
	libDir := p.LibDir
	if libDir == "" {
		libDir = p.DefaultLibDir()
	}
	b := native.NewBuilder(p.Config, host, p.Runner, libDir)
	b.PrimaryExtension = ExtensionName
	b.ModuleDir = ModuleDir
	b.Observer = p.Observer
	return b
}

// Distribution declares the distributable unit for the given version record.
func (p *Project) Distribution(rec version.Record) (*packaging.Distribution, error) {
	ext, err := native.NewExtension(ExtensionName, p.BaseDir)
	if err != nil {
		return nil, err
	}
	d := &packaging.Distribution{
		Name:        Name,
		Version:     rec.Version,
		Description: "Intel PyTorch Extension",
		URL:         "https://github.com/intel/intel-extension-for-pytorch",
		Author:      "Intel/PyTorch Dev Team",
		Packages:    Packages,
		PackageDir:  map[string]string{PythonPackage: PythonPackageDir},
		ZipSafe:     false,
		Extensions:  []*native.Extension{ext},
	}
	d.SetHook(packaging.StageClean, &packaging.CleanHook{Dir: p.BaseDir, IgnoreFile: p.IgnoreFile()})
	d.SetHook(packaging.StageBuildExt, &packaging.BuildHook{
		Generate:   p.generate,
		Build:      p.build,
		Extensions: d.Extensions,
	})
	return d, nil
}

func (p *Project) generate() error {
	host, err := p.Host()
	if err != nil {
		return err
	}
	return p.Generator(host).Generate(p.Runner)
}

func (p *Project) build(exts ...*native.Extension) error {
	host, err := p.Host()
	if err != nil {
		return err
	}
	b := p.Builder(host)
	p.BuildID = b.ID
	p.Results, err = b.Build(exts...)
	return err
}
