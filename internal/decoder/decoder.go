// Package decoder runs the external demo decoder that turns a binary demo
// into the text event log.
package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ThePyrotechnic/openscoreboard/internal/config"
)

// OutputName is the event log file written inside the scratch directory.
const OutputName = "output.txt"

// ErrDecoderFailed is returned when the decoder cannot be started or exits
// with a non-zero status.
var ErrDecoderFailed = errors.New("demo decoder failed")

// maxStderr bounds how much decoder stderr is kept for error messages.
const maxStderr = 4096

// Decoder invokes demoinfogo with game events and extra info enabled.
type Decoder struct {
	cfg    config.DecoderConfig
	logger *slog.Logger
}

// New creates a decoder for the given configuration.
func New(cfg config.DecoderConfig, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{cfg: cfg, logger: logger}
}

// OutputPath is where the event log is written.
func (d *Decoder) OutputPath() string {
	return filepath.Join(d.cfg.TmpDir, OutputName)
}

// Run decodes demoPath and returns the path of the event log. With skip
// set the decoder is not invoked and the log left by an earlier run is
// reused.
func (d *Decoder) Run(ctx context.Context, demoPath string, skip bool) (string, error) {
	if err := os.MkdirAll(d.cfg.TmpDir, 0755); err != nil {
		return "", fmt.Errorf("error creating tmp dir: %w", err)
	}
	output := d.OutputPath()

	if skip {
		if _, err := os.Stat(output); err != nil {
			return "", fmt.Errorf("error reusing decoder output: %w", err)
		}
		d.logger.Info("Skipping decoder, reusing output", "path", output)
		return output, nil
	}

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	f, err := os.Create(output)
	if err != nil {
		return "", fmt.Errorf("error creating decoder output: %w", err)
	}
	defer f.Close()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.cfg.Executable, demoPath, "-gameevents", "-extrainfo")
	cmd.Stdout = f
	cmd.Stderr = &limitedWriter{buf: &stderr, max: maxStderr}
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	d.logger.Info("Running decoder", "executable", d.cfg.Executable, "demo", demoPath, "output", output)
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%w: %s: %v: %s", ErrDecoderFailed, d.cfg.Executable, err, msg)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrDecoderFailed, d.cfg.Executable, err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("error flushing decoder output: %w", err)
	}

	d.logger.Info("Decoder finished", "duration", time.Since(start).Round(time.Millisecond))
	return output, nil
}

// limitedWriter keeps the first max bytes and discards the rest.
type limitedWriter struct {
	buf *bytes.Buffer
	max int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if room := w.max - w.buf.Len(); room > 0 {
		if len(p) > room {
			w.buf.Write(p[:room])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}
