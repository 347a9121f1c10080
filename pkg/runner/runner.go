// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package runner defines how the build orchestrator invokes external programs: git, the
// operator code generators, cmake and the build drivers.
//
// Every invocation is described by a Command (program, arguments, working directory and extra
// environment) and executed synchronously by a Runner. The default Runner is Exec, which uses
// os/exec. Tests use runnertest.Fake instead, so no real subprocess is spawned.
package runner

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Command describes one external program invocation.
type Command struct {
	// Name is the program to run. It may be a path (absolute or relative to Dir), or a name
	// to be looked up in the PATH.
	Name string

	// Args are the arguments passed to the program, not including Name.
	Args []string

	// Dir is the working directory of the program. If empty, it runs in the current directory.
	Dir string

	// Env holds extra "KEY=value" entries that override the current process environment for
	// this invocation only.
	Env []string
}

// New creates a Command for the given program and arguments.
func New(name string, args ...string) *Command {
	return &Command{Name: name, Args: args}
}

// InDir sets the working directory and returns the command itself, for chaining.
func (c *Command) InDir(dir string) *Command {
	c.Dir = dir
	return c
}

// WithEnv appends "KEY=value" environment overrides and returns the command itself, for chaining.
func (c *Command) WithEnv(env ...string) *Command {
	c.Env = append(c.Env, env...)
	return c
}

// Argv returns the program name followed by its arguments.
func (c *Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String returns a shell-like rendering of the command, used in logs and error messages.
func (c *Command) String() string {
	var sb strings.Builder
	for _, kv := range c.Env {
		sb.WriteString(kv)
		sb.WriteByte(' ')
	}
	sb.WriteString(strings.Join(c.Argv(), " "))
	if c.Dir != "" {
		fmt.Fprintf(&sb, " (in %s)", c.Dir)
	}
	return sb.String()
}

// Runner executes commands synchronously.
type Runner interface {
	// Run executes the command, forwarding its output to the orchestrator's own stdout/stderr.
	// A non-zero exit status is returned as an *ExitError.
	Run(cmd *Command) error

	// Output executes the command and returns its standard output.
	// A non-zero exit status is returned as an *ExitError, holding the captured stderr.
	Output(cmd *Command) ([]byte, error)

	// LookPath searches for an executable named file in the PATH.
	LookPath(file string) (string, error)
}

// ExitError is returned when a command ran but exited with a non-zero status.
type ExitError struct {
	Command *Command
	Code    int
	Stderr  []byte
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.Code)
}

// ExitCode returns the exit status of a command that failed with an *ExitError, and -1 for
// any other error (the command couldn't start at all, for instance). It returns 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

// Exec is the Runner backed by os/exec.
type Exec struct {
	// Stdout and Stderr receive the output of commands executed with Run.
	// If nil, os.Stdout and os.Stderr are used.
	Stdout, Stderr io.Writer
}

// Default is the Runner used when none is configured.
var Default Runner = &Exec{}

var _ Runner = (*Exec)(nil)

func (r *Exec) command(cmd *Command) *exec.Cmd {
	execCmd := exec.Command(cmd.Name, cmd.Args...)
	execCmd.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Env...)
	}
	klog.V(1).Infof("\t%s\n", cmd)
	return execCmd
}

// Run implements Runner.
func (r *Exec) Run(cmd *Command) error {
	execCmd := r.command(cmd)
	execCmd.Stdout, execCmd.Stderr = r.Stdout, r.Stderr
	if execCmd.Stdout == nil {
		execCmd.Stdout = os.Stdout
	}
	if execCmd.Stderr == nil {
		execCmd.Stderr = os.Stderr
	}
	return wrapExecError(cmd, execCmd.Run(), nil)
}

// Output implements Runner.
func (r *Exec) Output(cmd *Command) ([]byte, error) {
	execCmd := r.command(cmd)
	var stdoutBuf, stderrBuf bytes.Buffer
	execCmd.Stdout, execCmd.Stderr = &stdoutBuf, &stderrBuf
	err := wrapExecError(cmd, execCmd.Run(), stderrBuf.Bytes())
	return stdoutBuf.Bytes(), err
}

// LookPath implements Runner.
func (r *Exec) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func wrapExecError(cmd *Command, err error, stderr []byte) error {
	if err == nil {
		return nil
	}
	var execExitErr *exec.ExitError
	if errors.As(err, &execExitErr) {
		return &ExitError{Command: cmd, Code: execExitErr.ExitCode(), Stderr: stderr}
	}
	return errors.Wrapf(err, "failed to execute %q", cmd)
}

// WithStderr adds the captured stderr of a failed command, if any, to the error message.
func WithStderr(err error) error {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || len(exitErr.Stderr) == 0 {
		return err
	}
	return errors.WithMessagef(err, "STDERR captured:\n%s\n", string(exitErr.Stderr))
}
