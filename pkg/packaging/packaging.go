// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package packaging declares the distributable unit of the extension: its Python packages,
// the native extension and the hooks run for each stage of the distribution ("build_ext" and
// "clean").
package packaging

import (
	"io"

	"github.com/gomlx/ipexbuild/pkg/native"
	"github.com/gomlx/ipexbuild/pkg/support/xslices"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// Stage names a hook can be registered for.
const (
	StageBuildExt = "build_ext"
	StageClean    = "clean"
)

// Hook is run for one stage of the distribution.
type Hook interface {
	Run() error
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func() error

// Run implements Hook.
func (fn HookFunc) Run() error {
	return fn()
}

// Distribution declares the installable unit.
type Distribution struct {
	Name        string
	Version     string
	Description string
	URL         string
	Author      string

	// Packages lists the importable Python packages.
	Packages []string

	// PackageDir maps a package name to the directory holding its sources, when it differs.
	PackageDir map[string]string

	ZipSafe bool

	// Extensions are the native modules.
	Extensions []*native.Extension

	// Hooks maps stage names to the hook run for them.
	Hooks map[string]Hook
}

// SetHook wires the hook to the stage.
func (d *Distribution) SetHook(stage string, hook Hook) {
	if d.Hooks == nil {
		d.Hooks = make(map[string]Hook)
	}
	d.Hooks[stage] = hook
}

// Stages returns the names of the stages with hooks, sorted.
func (d *Distribution) Stages() []string {
	return xslices.SortedKeys(d.Hooks)
}

// Run runs the hook wired to stage.
func (d *Distribution) Run(stage string) error {
	hook, found := d.Hooks[stage]
	if !found {
		return errors.Errorf("%s has no hook for stage %q, valid stages are %q", d.Name, stage, d.Stages())
	}
	klog.V(1).Infof("running %s of %s %s", stage, d.Name, d.Version)
	return errors.WithMessagef(hook.Run(), "%s", stage)
}

type manifestExtension struct {
	Name       string `yaml:"name"`
	ProjectDir string `yaml:"project_dir"`
	BuildDir   string `yaml:"build_dir"`
}

type manifest struct {
	Name        string              `yaml:"name"`
	Version     string              `yaml:"version"`
	Description string              `yaml:"description,omitempty"`
	URL         string              `yaml:"url,omitempty"`
	Author      string              `yaml:"author,omitempty"`
	Packages    []string            `yaml:"packages"`
	PackageDir  map[string]string   `yaml:"package_dir,omitempty"`
	ZipSafe     bool                `yaml:"zip_safe"`
	Extensions  []manifestExtension `yaml:"ext_modules"`
	Commands    []string            `yaml:"commands"`
}

// WriteManifest writes a YAML description of the distribution to w.
func (d *Distribution) WriteManifest(w io.Writer) error {
	m := manifest{
		Name:        d.Name,
		Version:     d.Version,
		Description: d.Description,
		URL:         d.URL,
		Author:      d.Author,
		Packages:    d.Packages,
		PackageDir:  d.PackageDir,
		ZipSafe:     d.ZipSafe,
		Commands:    d.Stages(),
	}
	m.Extensions = xslices.Map(d.Extensions, func(ext *native.Extension) manifestExtension {
		return manifestExtension{Name: ext.Name, ProjectDir: ext.ProjectDir, BuildDir: ext.BuildDir}
	})
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&m); err != nil {
		return errors.Wrapf(err, "failed to encode manifest of %s", d.Name)
	}
	return errors.Wrap(enc.Close(), "failed to flush manifest")
}
