package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"FilmCatalog/internal/logging"
)

// progressReporter draws a bar on terminals and logs sampled percentages otherwise.
type progressReporter struct {
	bar     *progressbar.ProgressBar
	sampler *logging.ProgressSampler
	logger  *slog.Logger
	label   string
}

func newProgressReporter(w io.Writer, label string, logger *slog.Logger) *progressReporter {
	p := &progressReporter{label: label, logger: logger}
	if f, ok := w.(*os.File); ok && isTerminal(f.Fd()) {
		p.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(label),
			progressbar.OptionClearOnFinish(),
		)
		return p
	}
	p.sampler = logging.NewProgressSampler(25)
	return p
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *progressReporter) Report(percent float64) {
	if p.bar != nil {
		_ = p.bar.Set(int(percent))
		return
	}
	if p.sampler.ShouldLog(percent) {
		p.logger.Info(p.label, "progress", percent)
	}
}

func (p *progressReporter) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
