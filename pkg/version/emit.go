package version

import (
	"bufio"
	"fmt"
	"os"
	"text/template"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	pythonTemplate = template.Must(template.New("version.py").Parse(
		`# Autogenerated file, do not edit!
__version__ = '{{.Version}}'
__ipex_gitrev__ = '{{.Revision}}'
__torch_gitrev__ = '{{.FrameworkRevision}}'
`))

	cppTemplate = template.Must(template.New("version.cpp").Parse(
		`// Autogenerated file, do not edit!
#include "{{.Header}}"

namespace {{.Namespace}} {

const char IPEX_GITREV[] = {"{{.Revision}}"};
const char TORCH_GITREV[] = {"{{.FrameworkRevision}}"};

}  // namespace {{.Namespace}}
`))
)

// CppHeader and CppNamespace are used in the generated C++ version file.
const (
	CppHeader    = "torch_ipex/csrc/version.h"
	CppNamespace = "torch_ipex"
)

// WriteFiles overwrites the Python version file (pyPath) and the C++ version file (cppPath)
// with the contents of rec.
func WriteFiles(pyPath, cppPath string, rec Record) error {
	fmt.Printf("Building torch_ipex version: %s\n", rec.Version)
	if err := writeTemplate(pyPath, pythonTemplate, rec); err != nil {
		return err
	}
	cppData := struct {
		Record
		Header, Namespace string
	}{rec, CppHeader, CppNamespace}
	return writeTemplate(cppPath, cppTemplate, cppData)
}

func writeTemplate(filePath string, tmpl *template.Template, data any) error {
	return exceptions.TryCatch[error](func() {
		f, err := os.Create(filePath)
		if err != nil {
			panic(errors.Wrapf(err, "failed to create version file %q", filePath))
		}
		defer func() { _ = f.Close() }()
		w := bufio.NewWriter(f)
		if err := tmpl.Execute(w, data); err != nil {
			panic(errors.Wrapf(err, "failed to write version file %q", filePath))
		}
		if err := w.Flush(); err != nil {
			panic(errors.Wrapf(err, "failed to write version file %q", filePath))
		}
		if err := f.Close(); err != nil {
			panic(errors.Wrapf(err, "failed to close version file %q", filePath))
		}
		klog.V(1).Infof("wrote %s", filePath)
	})
}
