package buildenv

import (
	"strings"

	"github.com/pkg/errors"
)

// Backend is the accelerator family the native operators are compiled for.
//
//go:generate go tool enumer -type=Backend -trimprefix=Backend -transform=lower -output=gen_backend_enumer.go enums.go
type Backend int

const (
	BackendCPU Backend = iota
	BackendGPU
)

// ParseBackend converts the value of BackendEnv to a Backend.
// An empty (or blank) value defaults to BackendCPU. Only the exact lower-case names are accepted.
func ParseBackend(value string) (Backend, error) {
	if strings.TrimSpace(value) == "" {
		return BackendCPU, nil
	}
	backend, err := BackendString(value)
	if err != nil || backend.String() != value {
		return BackendCPU, errors.Wrapf(ErrInvalidBackend, "valid values are %q", BackendStrings())
	}
	return backend, nil
}

// BuildType is the CMake build type of the native library.
//
//go:generate go tool enumer -type=BuildType -trimprefix=BuildType -output=gen_buildtype_enumer.go enums.go
type BuildType int

const (
	BuildTypeRelease BuildType = iota
	BuildTypeDebug
)
