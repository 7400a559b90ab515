// Package notify is the single place failures and confirmations reach the
// user. Pages and forms never print; they hand results to a Notifier.
package notify

import (
	"fmt"
	"io"
	"sync"

	"cinelume/internal/apperr"

	"github.com/sirupsen/logrus"
)

type Notifier interface {
	Success(message string)
	Failure(err error)
}

// Writer prints one line per notification and logs failures with their
// kind and status. Decode failures are absorbed: logged, never shown.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	logger *logrus.Logger
}

func NewWriter(out io.Writer, logger *logrus.Logger) *Writer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Writer{out: out, logger: logger}
}

func (w *Writer) Success(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "ok: %s\n", message)
}

func (w *Writer) Failure(err error) {
	if err == nil {
		return
	}

	kind := apperr.KindOf(err)
	entry := w.logger.WithFields(logrus.Fields{
		"kind":   kind.String(),
		"status": apperr.StatusOf(err),
	}).WithError(err)

	if kind == apperr.KindDecode {
		entry.Debug("Absorbed decode failure")
		return
	}
	entry.Warn("Operation failed")

	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "error: %s\n", apperr.UserMessage(err))
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu        sync.Mutex
	successes []string
	failures  []error
}

func (r *Recorder) Success(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, message)
}

func (r *Recorder) Failure(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
}

func (r *Recorder) Successes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.successes...)
}

func (r *Recorder) Failures() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.failures...)
}
