package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/ipexbuild/pkg/buildenv"
	"github.com/gomlx/ipexbuild/pkg/codegen"
	"github.com/gomlx/ipexbuild/pkg/packaging"
	"github.com/gomlx/ipexbuild/pkg/runner"
	"github.com/gomlx/ipexbuild/pkg/runner/runnertest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "0123456789abcdef0123456789abcdef01234567"

func newTestRunner() *runnertest.Fake {
	r := runnertest.New("python3", "cmake")
	r.On("git", runnertest.Response{Stdout: testHash + "\n"})
	r.OnFunc(func(cmd *runner.Command) bool { return runnertest.HasArg(cmd.Args, "import os, torch") },
		runnertest.Response{Stdout: "/site-packages/torch\n"})
	r.OnFunc(func(cmd *runner.Command) bool { return runnertest.HasArg(cmd.Args, "import sysconfig") },
		runnertest.Response{Stdout: "/usr/include/python3.12\n"})
	return r
}

func newTestProject(t *testing.T, env map[string]string, r runner.Runner) *Project {
	baseDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, PythonPackageDir), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, "torch_ipex", "csrc"), 0755))
	cfg, err := buildenv.Load(buildenv.MapLookup(env))
	require.NoError(t, err)
	return New(baseDir, cfg, r)
}

func TestLayout(t *testing.T) {
	l := Layout{BaseDir: "/src/ipex"}
	assert.Equal(t, "/src/ipex/intel_pytorch_extension_py/version.py", l.PythonVersionFile())
	assert.Equal(t, "/src/ipex/torch_ipex/csrc/version.cpp", l.CppVersionFile())
	assert.Equal(t, "/src/ipex/scripts/cpu", l.ScriptsDir())
	assert.Equal(t, "/src/ipex/torch_ipex/csrc/cpu", l.OpsDir())
	assert.Equal(t, "/src/ipex/scripts/cpu/pytorch_headers", l.SparseDeclDir())
	assert.Equal(t, "/src/ipex/.gitignore", l.IgnoreFile())
}

func TestVersion(t *testing.T) {
	r := newTestRunner()
	p := newTestProject(t, map[string]string{buildenv.VersionedBuildEnv: "1", buildenv.VersionEnv: "1.2.0"}, r)
	rec := p.Version()
	assert.Equal(t, "1.2.0+0123456", rec.Version)
	require.NoError(t, p.WriteVersionFiles(rec))
	py, err := os.ReadFile(p.PythonVersionFile())
	require.NoError(t, err)
	assert.Contains(t, string(py), "__version__ = '1.2.0+0123456'")
	assert.FileExists(t, p.CppVersionFile())
}

func TestBuildExt(t *testing.T) {
	r := newTestRunner()
	p := newTestProject(t, map[string]string{buildenv.SYCLEnv: "on"}, r)
	d, err := p.Distribution(p.Version())
	require.NoError(t, err)
	assert.Equal(t, []string{packaging.StageBuildExt, packaging.StageClean}, d.Stages())
	assert.Equal(t, "1.0.0", d.Version)
	require.Len(t, d.Extensions, 1)
	assert.Equal(t, ExtensionName, d.Extensions[0].Name)

	r.Calls = nil
	require.NoError(t, d.Run(packaging.StageBuildExt))
	assert.Equal(t, []string{
		"/usr/bin/python3", "/usr/bin/python3",
		codegen.SparseScript, codegen.DenseScript,
		"/usr/bin/cmake", "make",
	}, r.Names())
	require.Len(t, p.Results, 1)
	assert.Equal(t, filepath.Join(p.DefaultLibDir(), ModuleDir), p.Results[0].InstallDir)
	assert.NotEmpty(t, p.BuildID)
}

func TestBuildExtGenerationFails(t *testing.T) {
	r := newTestRunner()
	r.On(codegen.DenseScript, runnertest.Response{Code: 1})
	p := newTestProject(t, nil, r)
	d, err := p.Distribution(p.Version())
	require.NoError(t, err)
	err = d.Run(packaging.StageBuildExt)
	require.Error(t, err)
	var genErr *codegen.GeneratorError
	assert.True(t, errors.As(err, &genErr))
	assert.Nil(t, r.Find("/usr/bin/cmake"), "nothing is compiled if generation fails")
}

func TestBuildExtWithoutFramework(t *testing.T) {
	r := runnertest.New("python3", "cmake")
	r.On("/usr/bin/python3", runnertest.Response{Code: 1, Stderr: "No module named 'torch'"})
	p := newTestProject(t, nil, r)
	d, err := p.Distribution(p.Version())
	require.NoError(t, err)
	err = d.Run(packaging.StageBuildExt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, buildenv.ErrFrameworkNotFound))
	assert.Nil(t, r.Find(codegen.SparseScript))
}

func TestClean(t *testing.T) {
	r := runnertest.New()
	p := newTestProject(t, nil, r)
	require.NoError(t, os.WriteFile(p.IgnoreFile(), []byte("build/\n# BEGIN NOT-CLEAN-FILES \n*.py\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(p.BaseDir, "build", "lib"), 0755))
	d, err := p.Distribution(p.Version())
	require.NoError(t, err)
	require.NoError(t, d.Run(packaging.StageClean))
	assert.NoDirExists(t, filepath.Join(p.BaseDir, "build"))

	// Cleaning doesn't need the interpreter.
	assert.Nil(t, r.Find("/usr/bin/python3"))
}
