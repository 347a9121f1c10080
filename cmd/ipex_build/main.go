// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// ipex_build builds the Intel PyTorch Extension native library and declares its distribution.
//
// Usage:
//
//	ipex_build [flags] [build|clean|version|config|manifest]
//
// The build is configured with the environment variables IPEX_BACKEND, VERSIONED_IPEX_BUILD,
// DEBUG, USE_SYCL, DPCPP_ENABLE_PROFILING, USE_NINJA and TORCH_IPEX_VERSION.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gomlx/ipexbuild/pkg/buildenv"
	"github.com/gomlx/ipexbuild/pkg/packaging"
	"github.com/gomlx/ipexbuild/pkg/project"
	"github.com/gomlx/ipexbuild/pkg/runner"
	"github.com/gomlx/ipexbuild/pkg/support/fsutil"
	"github.com/gomlx/ipexbuild/ui/commandline"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagProjectDir = flag.String("project_dir", ".", "Root directory of the extension project.")
	flagLibDir     = flag.String("lib_dir", "", "Directory where the extensions are installed. "+
		"Defaults to <project_dir>/build/lib.")
	flagPython   = flag.String("python", "", "Python interpreter to build for. If empty, python3 or python is searched in the PATH.")
	flagProgress = flag.Bool("progress", termenv.NewOutput(os.Stdout).Profile != termenv.Ascii,
		"Display a progress bar over the build stages.")
)

// Commands accepted as the only positional argument.
const (
	CommandBuild    = "build"
	CommandClean    = "clean"
	CommandVersion  = "version"
	CommandConfig   = "config"
	CommandManifest = "manifest"
)

// options are the parsed command-line settings.
type options struct {
	ProjectDir, LibDir, Python string
	Progress                   bool
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [%s|%s|%s|%s|%s]\n", filepath.Base(os.Args[0]),
			CommandBuild, CommandClean, CommandVersion, CommandConfig, CommandManifest)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) > 1 {
		klog.Errorf("Too many arguments. See '%s -help'.", filepath.Base(os.Args[0]))
		os.Exit(1)
	}
	command := CommandBuild
	if len(args) == 1 {
		command = args[0]
	}

	cfg, err := buildenv.FromOS()
	if err != nil {
		klog.Errorf("%v", err)
		os.Exit(1)
	}
	opts := options{
		ProjectDir: must.M1(fsutil.ResolveDir(*flagProjectDir)),
		LibDir:     *flagLibDir,
		Python:     *flagPython,
		Progress:   *flagProgress,
	}
	if opts.LibDir != "" {
		opts.LibDir = must.M1(fsutil.ResolveDir(opts.LibDir))
	}
	if err := run(command, opts, cfg, runner.Default, os.Stdout); err != nil {
		klog.Errorf("%s failed: %+v", command, err)
		os.Exit(1)
	}
}

// run executes command on the project described by opts.
func run(command string, opts options, cfg buildenv.Config, r runner.Runner, w io.Writer) error {
	p := project.New(opts.ProjectDir, cfg, r)
	p.Interpreter = opts.Python
	p.LibDir = opts.LibDir
	rec := p.Version()

	switch command {
	case CommandVersion:
		fmt.Fprintln(w, rec.Version)
		return nil

	case CommandConfig:
		host, err := p.Host()
		if err != nil {
			klog.Warningf("Host not probed: %v", err)
			commandline.WriteConfig(w, cfg, nil, rec)
			return nil
		}
		commandline.WriteConfig(w, cfg, &host, rec)
		return nil

	case CommandBuild, CommandClean, CommandManifest:
		// Handled below.

	default:
		return errors.Errorf("unknown command %q, valid commands are %q", command,
			[]string{CommandBuild, CommandClean, CommandVersion, CommandConfig, CommandManifest})
	}

	if err := p.WriteVersionFiles(rec); err != nil {
		return err
	}
	d, err := p.Distribution(rec)
	if err != nil {
		return err
	}
	switch command {
	case CommandManifest:
		return d.WriteManifest(w)
	case CommandClean:
		return d.Run(packaging.StageClean)
	}

	var progress *commandline.StageProgress
	if opts.Progress {
		progress = commandline.NewStageProgress(w, len(d.Extensions))
		p.Observer = progress
		if exec, ok := r.(*runner.Exec); ok {
			p.Runner = &runner.Exec{
				Stdout: progress.Writer(orDefault(exec.Stdout, os.Stdout)),
				Stderr: progress.Writer(orDefault(exec.Stderr, os.Stderr)),
			}
		}
	}
	err = d.Run(packaging.StageBuildExt)
	if progress != nil {
		progress.Done()
	}
	if err != nil {
		return err
	}
	commandline.WriteReport(w, p.BuildID, p.Results)
	return nil
}

func orDefault(w, defaultW io.Writer) io.Writer {
	if w == nil {
		return defaultW
	}
	return w
}
