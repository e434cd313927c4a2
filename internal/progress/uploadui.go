package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/ambercrest/portal-fm/internal/constants"
)

// BatchUI renders multi-bar progress for a batch of file uploads. On a
// terminal each file gets its own mpb bar; otherwise plain milestone lines
// are printed so log capture stays readable.
type BatchUI struct {
	progress   *mpb.Progress
	isTerminal bool
	totalFiles int
}

// FileBar tracks progress for a single file in the batch.
type FileBar struct {
	ui          *BatchUI
	bar         *mpb.Bar
	index       int
	name        string
	size        int64
	total       int64
	lastPercent int
	startTime   time.Time
}

// NewBatchUI creates a batch progress UI for the given number of files.
func NewBatchUI(totalFiles int) *BatchUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		// Enable ANSI escape sequences on Windows for proper bar rendering
		enableWindowsANSI(os.Stderr)

		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(constants.ProgressRefreshRate),
			mpb.WithWidth(100),
		)
	} else {
		// Non-TTY: no live bars, just text output
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	return &BatchUI{
		progress:   p,
		isTerminal: isTerminal,
		totalFiles: totalFiles,
	}
}

// AddFileBar creates a progress bar for a single file upload. Index is the
// zero-based position of the file within the batch.
func (u *BatchUI) AddFileBar(index int, name string, size int64) *FileBar {
	fb := &FileBar{
		ui:        u,
		index:     index + 1,
		name:      name,
		size:      size,
		total:     size,
		startTime: time.Now(),
	}
	// mpb treats a zero total as indeterminate; give empty files a unit
	// total so the bar can still reach completion.
	if fb.total == 0 {
		fb.total = 1
	}

	if u.isTerminal {
		label := fmt.Sprintf("[%d/%d] %s", fb.index, u.totalFiles, truncateName(name, 40))
		fb.bar = u.progress.New(fb.total,
			mpb.BarStyle().
				Lbound("[").
				Filler("█").
				Tip("█").
				Padding("░").
				Rbound("]"),
			mpb.PrependDecorators(
				decor.Name(label, decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
				decor.Name("  "),
				decor.Percentage(decor.WCSyncSpace),
			),
		)
	} else {
		fmt.Fprintf(os.Stderr, "Uploading [%d/%d]: %s (%.1f MiB)\n",
			fb.index, u.totalFiles, name, float64(size)/(1024*1024))
	}

	return fb
}

// Wait blocks until all bars have completed or aborted.
func (u *BatchUI) Wait() {
	u.progress.Wait()
}

// Writer returns a writer that prints above the active bars. Output written
// here does not corrupt in-place bar rendering.
func (u *BatchUI) Writer() io.Writer {
	if u.isTerminal {
		return u.progress
	}
	return os.Stderr
}

// IsTerminal reports whether live bars are being rendered.
func (u *BatchUI) IsTerminal() bool {
	return u.isTerminal
}

// SetPercent moves the bar to the given completion percentage. Regressions
// are ignored so the bar never moves backwards.
func (f *FileBar) SetPercent(percent int) {
	if percent < f.lastPercent {
		return
	}
	crossed := percent/25 > f.lastPercent/25
	f.lastPercent = percent

	if f.bar != nil {
		f.bar.SetCurrent(f.total * int64(percent) / 100)
		return
	}
	// Non-TTY: report quarter milestones only
	if crossed && percent < 100 {
		fmt.Fprintf(os.Stderr, "  %s: %d%%\n", f.name, percent)
	}
}

// Complete finishes the bar and prints a one-line summary above it.
func (f *FileBar) Complete(err error) {
	if err != nil {
		if f.bar != nil {
			f.bar.Abort(true)
		}
		fmt.Fprintf(f.ui.Writer(), "✗ [%d/%d] %s: %v\n", f.index, f.ui.totalFiles, f.name, err)
		return
	}

	if f.bar != nil {
		f.bar.SetCurrent(f.total)
	}
	elapsed := time.Since(f.startTime).Round(100 * time.Millisecond)
	fmt.Fprintf(f.ui.Writer(), "✓ [%d/%d] %s (%.1f MiB in %s)\n",
		f.index, f.ui.totalFiles, f.name, float64(f.size)/(1024*1024), elapsed)
}

// truncateName shortens long file names for bar labels, keeping the tail
// where the extension lives.
func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	return "…" + name[len(name)-max+1:]
}
