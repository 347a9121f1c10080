// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package commandline contains the command-line UI of the build: configuration tables,
// stage progress and the final build report.
package commandline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/ipexbuild/pkg/buildenv"
	"github.com/gomlx/ipexbuild/pkg/native"
	"github.com/gomlx/ipexbuild/pkg/version"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 0, 4)

	tableBorderColor = "#705090"
)

func newPlainTable(headers ...string) *lgtable.Table {
	t := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if row < 0 {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			if col == 0 {
				return s.Align(lipgloss.Right)
			}
			return s.Align(lipgloss.Left)
		})
	if len(headers) > 0 {
		t.Headers(headers...)
	}
	return t
}

// WriteConfig writes a table with the build configuration to w. host may be nil if it wasn't
// probed.
func WriteConfig(w io.Writer, cfg buildenv.Config, host *buildenv.Host, rec version.Record) {
	fmt.Fprintln(w, titleStyle.Render("Configuration"))
	table := newPlainTable("Variable", "Value")
	for _, kv := range cfg.Environ() {
		name, value, _ := strings.Cut(kv, "=")
		table.Row(name, value)
	}
	fmt.Fprintln(w, table.Render())

	fmt.Fprintln(w, titleStyle.Render("Version"))
	table = newPlainTable()
	table.Row("version", rec.Version)
	table.Row("revision", orNone(rec.Revision))
	table.Row("framework revision", orNone(rec.FrameworkRevision))
	fmt.Fprintln(w, table.Render())

	if host == nil {
		return
	}
	fmt.Fprintln(w, titleStyle.Render("Host"))
	table = newPlainTable()
	table.Row("os", host.GOOS)
	table.Row("processing units", humanize.Comma(int64(host.NumCPU)))
	table.Row("interpreter", host.Interpreter)
	table.Row("interpreter include", host.InterpreterIncludeDir)
	table.Row("torch", host.FrameworkDir)
	fmt.Fprintln(w, table.Render())
}

// WriteReport writes a summary of the built extensions and their artifacts to w.
func WriteReport(w io.Writer, buildID string, results []*native.Result) {
	fmt.Fprintln(w, titleStyle.Render("Build "+buildID))
	table := newPlainTable("Extension", "Installed in", "Artifact", "Size", "Elapsed")
	var total uint64
	for _, res := range results {
		elapsed := FormatDuration(res.Elapsed)
		if len(res.Artifacts) == 0 {
			table.Row(res.Extension.Name, res.InstallDir, "-", "-", elapsed)
			continue
		}
		for ii, artifact := range res.Artifacts {
			name := ""
			if ii == 0 {
				name = res.Extension.Name
			} else {
				elapsed = ""
			}
			table.Row(name, res.InstallDir, filepath.Base(artifact.Path), humanize.Bytes(uint64(artifact.Size)), elapsed)
			total += uint64(artifact.Size)
		}
	}
	fmt.Fprintln(w, table.Render())
	fmt.Fprintf(w, "%s extension(s) built, %s of artifacts.\n", humanize.Comma(int64(len(results))), humanize.Bytes(total))
}

// FormatDuration rounds the duration for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return d.Round(time.Second).String()
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
