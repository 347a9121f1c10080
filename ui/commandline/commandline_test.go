package commandline

import (
	"bytes"
	"testing"
	"time"

	"github.com/gomlx/ipexbuild/pkg/buildenv"
	"github.com/gomlx/ipexbuild/pkg/native"
	"github.com/gomlx/ipexbuild/pkg/version"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteConfig(t *testing.T) {
	cfg, err := buildenv.Load(buildenv.MapLookup(map[string]string{buildenv.BackendEnv: "gpu"}))
	require.NoError(t, err)
	rec := version.Resolve("1.0.0", false, version.Unavailable(errors.New("no git")), version.Unavailable(errors.New("no git")))
	host := &buildenv.Host{Interpreter: "/usr/bin/python3", FrameworkDir: "/site-packages/torch", GOOS: "linux", NumCPU: 16}

	var buf bytes.Buffer
	WriteConfig(&buf, cfg, host, rec)
	out := buf.String()
	assert.Contains(t, out, buildenv.BackendEnv)
	assert.Contains(t, out, "gpu")
	assert.Contains(t, out, "1.0.0")
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "/site-packages/torch")

	buf.Reset()
	WriteConfig(&buf, cfg, nil, rec)
	assert.NotContains(t, buf.String(), "Host")
}

func TestWriteReport(t *testing.T) {
	results := []*native.Result{{
		Extension:  &native.Extension{Name: "_torch_ipex"},
		InstallDir: "/src/build/lib",
		Artifacts: []native.Artifact{
			{Path: "/src/build/lib/_torch_ipex.so", Size: 2_000_000},
			{Path: "/src/build/lib/libipex_utils.so", Size: 1_000},
		},
		Elapsed: 95 * time.Second,
	}}
	var buf bytes.Buffer
	WriteReport(&buf, "abc-123", results)
	out := buf.String()
	assert.Contains(t, out, "abc-123")
	assert.Contains(t, out, "_torch_ipex.so")
	assert.Contains(t, out, "libipex_utils.so")
	assert.Contains(t, out, "2.0 MB")
	assert.Contains(t, out, "1m35s")
	assert.Contains(t, out, "1 extension(s) built")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2m0s", FormatDuration(2*time.Minute+200*time.Millisecond))
	assert.Equal(t, "1.23s", FormatDuration(1234*time.Millisecond))
	assert.Equal(t, "12ms", FormatDuration(12345*time.Microsecond))
}

func TestStageProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewStageProgress(&buf, 1)
	ext := &native.Extension{Name: "_torch_ipex"}
	p.StageStarted(ext, native.StagePrepare)
	p.StageFinished(ext, native.StagePrepare, nil)
	p.StageStarted(ext, native.StageConfigure)
	p.StageFinished(ext, native.StageConfigure, errors.New("cmake failed"))
	p.Done()
	out := buf.String()
	assert.Contains(t, out, "_torch_ipex: prepare done")
	assert.Contains(t, out, "_torch_ipex: configure failed")
}

func TestStageProgressWriter(t *testing.T) {
	var bar, output bytes.Buffer
	p := NewStageProgress(&bar, 1)
	ext := &native.Extension{Name: "_torch_ipex"}
	p.StageStarted(ext, native.StageCompile)
	before := bar.Len()

	w := p.Writer(&output)
	n, err := w.Write([]byte("[ 50%] Building CXX object\n"))
	require.NoError(t, err)
	assert.Equal(t, 27, n)
	assert.Equal(t, "[ 50%] Building CXX object\n", output.String())

	// The bar was cleared with a carriage return before the command output was written.
	assert.Contains(t, bar.String()[before:], "\r")
	p.StageFinished(ext, native.StageCompile, nil)
	p.Done()
}
