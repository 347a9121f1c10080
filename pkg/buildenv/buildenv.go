// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package buildenv reads the build configuration of the extension from the environment.
//
// The configuration is read once, at process start, with Load, and then passed along to every
// other component: nothing else in the build reads the process environment directly.
//
// Boolean variables are considered set if their value is (case-insensitive) one of
// "on", "1", "yes" or "true". Anything else, including unset, is false.
package buildenv

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Environment variables read by Load.
const (
	// BackendEnv selects the Backend: "cpu" (default) or "gpu".
	BackendEnv = "IPEX_BACKEND"

	// VersionedBuildEnv, if set, appends the short git revision to the version.
	VersionedBuildEnv = "VERSIONED_IPEX_BUILD"

	// DebugEnv, if set, builds with BuildTypeDebug.
	DebugEnv = "DEBUG"

	// SYCLEnv, if set, enables the DPC++/SYCL accelerator toolchain.
	SYCLEnv = "USE_SYCL"

	// ProfilingEnv, if set, enables DPC++ profiling in the native build.
	ProfilingEnv = "DPCPP_ENABLE_PROFILING"

	// NinjaEnv, if set, generates and builds with Ninja instead of make.
	NinjaEnv = "USE_NINJA"

	// VersionEnv holds the base version string. Defaults to DefaultVersion.
	VersionEnv = "TORCH_IPEX_VERSION"
)

// DefaultVersion is the base version used if VersionEnv is not set.
const DefaultVersion = "1.0.0"

// ErrInvalidBackend is returned when BackendEnv holds a value other than the supported backends.
var ErrInvalidBackend = errors.New("Intel PyTorch Extension only supports CPU and GPU now.")

// LookupFunc retrieves the value of an environment variable and whether it was set.
// os.LookupEnv is the one used in production.
type LookupFunc func(key string) (string, bool)

// MapLookup returns a LookupFunc backed by a map, used to inject an environment in tests.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, found := env[key]
		return value, found
	}
}

var truthyValues = map[string]bool{"ON": true, "1": true, "YES": true, "TRUE": true}

// CheckFlag returns whether value represents a true boolean flag.
func CheckFlag(value string) bool {
	return truthyValues[strings.ToUpper(value)]
}

// Config holds the build configuration. It is created once by Load and never changed afterwards.
//
// Backend is validated and displayed, but not passed to CMake: the native build has no backend option.
type Config struct {
	Backend   Backend
	BuildType BuildType

	// Versioned appends the project's short revision to the version (VersionedBuildEnv).
	Versioned bool

	// UseSYCL enables the accelerator toolchain (SYCLEnv).
	UseSYCL bool

	// EnableProfiling enables DPC++ profiling (ProfilingEnv).
	EnableProfiling bool

	// UseNinja selects Ninja as generator and build driver (NinjaEnv).
	UseNinja bool

	// BaseVersion is the version before any revision suffix (VersionEnv).
	BaseVersion string
}

// Load reads the configuration using lookup. Use FromOS to read the process environment.
//
// It returns an error wrapping ErrInvalidBackend if BackendEnv is not a supported backend.
func Load(lookup LookupFunc) (Config, error) {
	flag := func(key string) bool {
		value, _ := lookup(key)
		return CheckFlag(value)
	}
	var cfg Config
	backendValue, _ := lookup(BackendEnv)
	var err error
	cfg.Backend, err = ParseBackend(backendValue)
	if err != nil {
		return Config{}, errors.WithMessagef(err, "$%s=%q", BackendEnv, backendValue)
	}
	cfg.BuildType = BuildTypeRelease
	if flag(DebugEnv) {
		cfg.BuildType = BuildTypeDebug
	}
	cfg.Versioned = flag(VersionedBuildEnv)
	cfg.UseSYCL = flag(SYCLEnv)
	cfg.EnableProfiling = flag(ProfilingEnv)
	cfg.UseNinja = flag(NinjaEnv)
	cfg.BaseVersion = DefaultVersion
	if version, found := lookup(VersionEnv); found {
		cfg.BaseVersion = version
	}
	return cfg, nil
}

// FromOS loads the configuration from the process environment.
func FromOS() (Config, error) {
	return Load(os.LookupEnv)
}

// Environ lists the configuration as "NAME=value" pairs of the variables it was read from,
// in a fixed order.
func (cfg Config) Environ() []string {
	onOff := func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	}
	return []string{
		fmt.Sprintf("%s=%s", BackendEnv, cfg.Backend),
		fmt.Sprintf("%s=%s", DebugEnv, onOff(cfg.BuildType == BuildTypeDebug)),
		fmt.Sprintf("%s=%s", VersionedBuildEnv, onOff(cfg.Versioned)),
		fmt.Sprintf("%s=%s", SYCLEnv, onOff(cfg.UseSYCL)),
		fmt.Sprintf("%s=%s", ProfilingEnv, onOff(cfg.EnableProfiling)),
		fmt.Sprintf("%s=%s", NinjaEnv, onOff(cfg.UseNinja)),
		fmt.Sprintf("%s=%s", VersionEnv, cfg.BaseVersion),
	}
}
