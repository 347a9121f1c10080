// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package runnertest provides a fake runner.Runner for tests: it records every command and
// replies with scripted responses, without spawning subprocesses.
package runnertest

import (
	"os/exec"
	"strings"

	"github.com/gomlx/ipexbuild/pkg/runner"
	"github.com/pkg/errors"
)

// Response scripts the outcome of a command.
type Response struct {
	// Stdout is returned by runner.Runner.Output.
	Stdout string

	// Stderr is attached to the *runner.ExitError when Code is non-zero.
	Stderr string

	// Code is the exit status. Non-zero yields a *runner.ExitError.
	Code int

	// Err, if set, is returned as is: it simulates a command that couldn't be started.
	Err error
}

type rule struct {
	match    func(cmd *runner.Command) bool
	response Response
}

// Fake implements runner.Runner. The zero value is ready to use: every command succeeds with
// empty output and LookPath finds nothing.
type Fake struct {
	// Calls records every command executed with Run or Output, in order.
	Calls []*runner.Command

	// Paths maps executable names to the path LookPath returns for them.
	Paths map[string]string

	rules []rule
}

var _ runner.Runner = (*Fake)(nil)

// New returns a Fake where LookPath finds the given executables under /usr/bin.
func New(executables ...string) *Fake {
	f := &Fake{Paths: make(map[string]string)}
	for _, name := range executables {
		f.Paths[name] = "/usr/bin/" + name
	}
	return f
}

// On scripts the response to any command whose program name is name.
// Later rules take precedence over earlier ones.
func (f *Fake) On(name string, response Response) *Fake {
	return f.OnFunc(func(cmd *runner.Command) bool { return cmd.Name == name }, response)
}

// OnFunc scripts the response for commands selected by match.
// Later rules take precedence over earlier ones.
func (f *Fake) OnFunc(match func(cmd *runner.Command) bool, response Response) *Fake {
	f.rules = append(f.rules, rule{match: match, response: response})
	return f
}

func (f *Fake) respond(cmd *runner.Command) ([]byte, error) {
	recorded := *cmd
	recorded.Args = append([]string(nil), cmd.Args...)
	recorded.Env = append([]string(nil), cmd.Env...)
	f.Calls = append(f.Calls, &recorded)
	for ii := len(f.rules) - 1; ii >= 0; ii-- {
		if !f.rules[ii].match(cmd) {
			continue
		}
		response := f.rules[ii].response
		if response.Err != nil {
			return nil, response.Err
		}
		if response.Code != 0 {
			return []byte(response.Stdout), &runner.ExitError{
				Command: cmd, Code: response.Code, Stderr: []byte(response.Stderr)}
		}
		return []byte(response.Stdout), nil
	}
	return nil, nil
}

// Run implements runner.Runner.
func (f *Fake) Run(cmd *runner.Command) error {
	_, err := f.respond(cmd)
	return err
}

// Output implements runner.Runner.
func (f *Fake) Output(cmd *runner.Command) ([]byte, error) {
	return f.respond(cmd)
}

// LookPath implements runner.Runner.
func (f *Fake) LookPath(file string) (string, error) {
	if p, found := f.Paths[file]; found {
		return p, nil
	}
	return "", errors.Wrapf(exec.ErrNotFound, "exec: %q", file)
}

// Names returns the program names of the recorded calls, in order.
func (f *Fake) Names() []string {
	names := make([]string, len(f.Calls))
	for ii, cmd := range f.Calls {
		names[ii] = cmd.Name
	}
	return names
}

// Find returns the first recorded call whose program name is name, or nil.
func (f *Fake) Find(name string) *runner.Command {
	for _, cmd := range f.Calls {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

// HasArg reports whether args contains an element with the given prefix.
func HasArg(args []string, prefix string) bool {
	for _, arg := range args {
		if strings.HasPrefix(arg, prefix) {
			return true
		}
	}
	return false
}
