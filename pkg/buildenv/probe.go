package buildenv

import (
	"runtime"
	"strings"

	"github.com/gomlx/ipexbuild/pkg/runner"
	"github.com/gomlx/ipexbuild/pkg/support/xslices"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Host describes the machine the extension is built on: the active interpreter and the
// installed framework the extension is compiled against.
type Host struct {
	// Interpreter is the path of the Python interpreter the extension is built for.
	Interpreter string

	// InterpreterIncludeDir holds Python.h for Interpreter.
	InterpreterIncludeDir string

	// FrameworkDir is the directory of the installed torch package.
	FrameworkDir string

	// GOOS is the host operating system, in runtime.GOOS format.
	GOOS string

	// NumCPU is the number of processing units used to size the build parallelism.
	NumCPU int
}

// InterpreterNames are tried in order when no interpreter is given to Probe.
var InterpreterNames = []string{"python3", "python"}

// ErrFrameworkNotFound is returned by Probe when the interpreter can't import torch.
var ErrFrameworkNotFound = errors.New("unable to import torch, you need to install pytorch first")

const (
	frameworkDirScript = "import os, torch; print(os.path.dirname(os.path.abspath(torch.__file__)))"
	includeDirScript   = "import sysconfig; print(sysconfig.get_paths()['include'])"
)

// Probe locates the interpreter and queries it for the installed framework and its include
// directory. If interpreter is empty, the first of InterpreterNames found in the PATH is used.
//
// It has no side effects other than running the interpreter.
func Probe(r runner.Runner, interpreter string) (Host, error) {
	host := Host{GOOS: runtime.GOOS, NumCPU: runtime.NumCPU()}
	var err error
	host.Interpreter, err = findInterpreter(r, interpreter)
	if err != nil {
		return Host{}, err
	}

	output, err := r.Output(runner.New(host.Interpreter, "-c", frameworkDirScript))
	if err != nil {
		return Host{}, errors.Wrapf(ErrFrameworkNotFound, "%s: %v", host.Interpreter, runner.WithStderr(err))
	}
	host.FrameworkDir = lastLine(output)
	if host.FrameworkDir == "" {
		return Host{}, errors.Wrapf(ErrFrameworkNotFound, "%s printed no torch location", host.Interpreter)
	}

	output, err = r.Output(runner.New(host.Interpreter, "-c", includeDirScript))
	if err != nil {
		return Host{}, errors.Wrapf(runner.WithStderr(err), "failed to query include directory of %s", host.Interpreter)
	}
	host.InterpreterIncludeDir = lastLine(output)
	klog.V(1).Infof("interpreter %s, torch in %s", host.Interpreter, host.FrameworkDir)
	return host, nil
}

func findInterpreter(r runner.Runner, interpreter string) (string, error) {
	if interpreter != "" {
		if strings.ContainsRune(interpreter, '/') {
			return interpreter, nil
		}
		p, err := r.LookPath(interpreter)
		if err != nil {
			return "", errors.Wrapf(err, "can't find interpreter %q", interpreter)
		}
		return p, nil
	}
	for _, name := range InterpreterNames {
		if p, err := r.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", errors.Errorf("can't find a Python interpreter in the PATH, tried %q", InterpreterNames)
}

// lastLine returns the last non-empty line of output, trimmed. Imports may print warnings
// before the value.
func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(xslices.Last(lines))
}
