package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/ipexbuild/pkg/buildenv"
	"github.com/gomlx/ipexbuild/pkg/project"
	"github.com/gomlx/ipexbuild/pkg/runner"
	"github.com/gomlx/ipexbuild/pkg/runner/runnertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestSetup(t *testing.T, env map[string]string) (options, buildenv.Config, *runnertest.Fake) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, project.PythonPackageDir), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "torch_ipex", "csrc"), 0755))
	cfg, err := buildenv.Load(buildenv.MapLookup(env))
	require.NoError(t, err)

	r := runnertest.New("python3", "cmake")
	r.On("git", runnertest.Response{Stdout: "fedcba9876543210fedcba9876543210fedcba98\n"})
	r.OnFunc(func(cmd *runner.Command) bool { return runnertest.HasArg(cmd.Args, "import os, torch") },
		runnertest.Response{Stdout: "/site-packages/torch\n"})
	r.OnFunc(func(cmd *runner.Command) bool { return runnertest.HasArg(cmd.Args, "import sysconfig") },
		runnertest.Response{Stdout: "/usr/include/python3.12\n"})
	return options{ProjectDir: dir}, cfg, r
}

func TestRunVersion(t *testing.T) {
	opts, cfg, r := newTestSetup(t, map[string]string{buildenv.VersionedBuildEnv: "yes"})
	var buf bytes.Buffer
	require.NoError(t, run(CommandVersion, opts, cfg, r, &buf))
	assert.Equal(t, "1.0.0+fedcba9\n", buf.String())

	// Only printing the version doesn't write the version files.
	assert.NoFileExists(t, filepath.Join(opts.ProjectDir, project.PythonPackageDir, "version.py"))
}

func TestRunManifest(t *testing.T) {
	opts, cfg, r := newTestSetup(t, nil)
	var buf bytes.Buffer
	require.NoError(t, run(CommandManifest, opts, cfg, r, &buf))
	var manifest map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &manifest))
	assert.Equal(t, project.Name, manifest["name"])
	assert.Equal(t, "1.0.0", manifest["version"])
	assert.FileExists(t, filepath.Join(opts.ProjectDir, project.PythonPackageDir, "version.py"))
	assert.FileExists(t, filepath.Join(opts.ProjectDir, "torch_ipex", "csrc", "version.cpp"))
}

func TestRunBuild(t *testing.T) {
	opts, cfg, r := newTestSetup(t, nil)
	opts.Progress = true
	var buf bytes.Buffer
	require.NoError(t, run(CommandBuild, opts, cfg, r, &buf))
	assert.NotNil(t, r.Find("/usr/bin/cmake"))
	assert.NotNil(t, r.Find("make"))
	assert.Contains(t, buf.String(), project.ExtensionName)
	assert.Contains(t, buf.String(), "1 extension(s) built")
}

func TestRunConfigWithoutFramework(t *testing.T) {
	opts, cfg, _ := newTestSetup(t, nil)
	r := runnertest.New("python3")
	r.On("/usr/bin/python3", runnertest.Response{Code: 1, Stderr: "No module named 'torch'"})
	var buf bytes.Buffer
	require.NoError(t, run(CommandConfig, opts, cfg, r, &buf))
	assert.Contains(t, buf.String(), buildenv.BackendEnv)
}

func TestRunUnknownCommand(t *testing.T) {
	opts, cfg, r := newTestSetup(t, nil)
	err := run("install", opts, cfg, r, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "install")
}
