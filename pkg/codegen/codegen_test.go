package codegen

import (
	"os"
	"testing"

	"github.com/gomlx/ipexbuild/pkg/runner"
	"github.com/gomlx/ipexbuild/pkg/runner/runnertest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator() *Generator {
	return &Generator{
		ScriptsDir:    "/src/ipex/scripts/cpu",
		OpsDir:        "/src/ipex/torch_ipex/csrc/cpu",
		SparseDeclDir: "/src/ipex/scripts/cpu/pytorch_headers",
		FrameworkDir:  "/site-packages/torch",
	}
}

func TestGenerate(t *testing.T) {
	r := runnertest.New()
	require.NoError(t, newTestGenerator().Generate(r))
	require.Equal(t, []string{SparseScript, DenseScript}, r.Names())

	sparse, dense := r.Calls[0], r.Calls[1]
	assert.Equal(t, []string{"/src/ipex/torch_ipex/csrc/cpu", "/site-packages/torch", "/src/ipex/scripts/cpu/pytorch_headers"}, sparse.Args)
	assert.Equal(t, []string{"/src/ipex/torch_ipex/csrc/cpu", "/site-packages/torch"}, dense.Args)
	assert.Equal(t, "/src/ipex/scripts/cpu", sparse.Dir)
	assert.Equal(t, "/src/ipex/scripts/cpu", dense.Dir)
}

func TestGenerateSparseFails(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	r := runnertest.New().On(SparseScript, runnertest.Response{Code: 2})
	err = newTestGenerator().Generate(r)
	require.Error(t, err)

	// Dense generator not invoked.
	assert.Equal(t, []string{SparseScript}, r.Names())

	var genErr *GeneratorError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, SparseScript, genErr.Command.Name)
	assert.Equal(t, 2, runner.ExitCode(err))
	assert.Contains(t, err.Error(), "Failed to run './gen-sparse-cpu-ops.sh")

	// Working directory unchanged.
	wdAfter, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, wdAfter)
}

func TestGenerateDenseFails(t *testing.T) {
	r := runnertest.New().On(DenseScript, runnertest.Response{Code: 1})
	err := newTestGenerator().Generate(r)
	require.Error(t, err)
	assert.Equal(t, []string{SparseScript, DenseScript}, r.Names())
	var genErr *GeneratorError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, DenseScript, genErr.Command.Name)
}

func TestGenerateIncomplete(t *testing.T) {
	r := runnertest.New()
	require.Error(t, (&Generator{ScriptsDir: "/x"}).Generate(r))
	assert.Empty(t, r.Calls)
}
