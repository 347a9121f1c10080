package commandline

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/ipexbuild/pkg/native"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
)

// ProgressbarStyle to use. Defaults to the ASCII version.
// Consider "progressbar.ThemeUnicode" for a prettier version.
var ProgressbarStyle = progressbar.ThemeASCII

var (
	failedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	finishedStyle = lipgloss.NewStyle().Faint(true)
)

// StageProgress displays a progress bar over the stages of the native builds.
// It implements native.Observer.
type StageProgress struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	out     io.Writer
	termenv *termenv.Output
	rich    bool
	started map[string]time.Time
}

var _ native.Observer = (*StageProgress)(nil)

// NewStageProgress creates a progress bar for building numExtensions extensions, written to w.
// ANSI codes are only used if w is os.Stdout connected to a terminal with colors.
//
// Output of the build commands must go through Writer, so it isn't drawn over by the bar.
func NewStageProgress(w io.Writer, numExtensions int) *StageProgress {
	p := &StageProgress{out: w, started: make(map[string]time.Time)}
	if f, ok := w.(*os.File); ok && f == os.Stdout {
		p.termenv = termenv.NewOutput(os.Stdout)
		p.rich = p.termenv.Profile != termenv.Ascii
	}
	total := max(numExtensions, 1) * len(native.StageValues())
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Building"),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetTheme(ProgressbarStyle),
		progressbar.OptionUseANSICodes(p.rich),
		progressbar.OptionEnableColorCodes(p.rich),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	if p.rich {
		p.termenv.HideCursor()
	}
	return p
}

func stageKey(ext *native.Extension, stage native.Stage) string {
	return ext.Name + "/" + stage.String()
}

// StageStarted implements native.Observer.
func (p *StageProgress) StageStarted(ext *native.Extension, stage native.Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started[stageKey(ext, stage)] = time.Now()
	p.bar.Describe(fmt.Sprintf("%s: %s", ext.Name, stage))
}

// StageFinished implements native.Observer.
func (p *StageProgress) StageFinished(ext *native.Extension, stage native.Stage, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := stageKey(ext, stage)
	elapsed := time.Since(p.started[key])
	delete(p.started, key)
	if err != nil {
		_ = p.bar.Clear()
		fmt.Fprintln(p.out, p.render(failedStyle, fmt.Sprintf("%s: %s failed after %s", ext.Name, stage, FormatDuration(elapsed))))
		return
	}
	_ = p.bar.Clear()
	fmt.Fprintln(p.out, p.render(finishedStyle, fmt.Sprintf("%s: %s done in %s", ext.Name, stage, FormatDuration(elapsed))))
	_ = p.bar.Add(1)
}

// Writer returns a writer to w that clears the progress bar before each write.
// The bar is drawn again at the next stage transition.
func (p *StageProgress) Writer(w io.Writer) io.Writer {
	return &clearingWriter{progress: p, w: w}
}

type clearingWriter struct {
	progress *StageProgress
	w        io.Writer
}

// Write implements io.Writer.
func (cw *clearingWriter) Write(data []byte) (int, error) {
	cw.progress.mu.Lock()
	defer cw.progress.mu.Unlock()
	_ = cw.progress.bar.Clear()
	return cw.w.Write(data)
}

// Done finishes the progress bar and restores the cursor.
func (p *StageProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
	fmt.Fprintln(p.out)
	if p.rich {
		p.termenv.ShowCursor()
	}
}

func (p *StageProgress) render(style lipgloss.Style, msg string) string {
	if !p.rich {
		return msg
	}
	return style.Render(msg)
}
