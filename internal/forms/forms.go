// Package forms issues the create, update and delete requests behind
// user actions and reconciles local state once the backend confirms.
// Every failure goes to the notifier and leaves prior state untouched.
package forms

import (
	"cinelume/internal/apperr"
	"cinelume/internal/notify"
	"cinelume/internal/session"

	"github.com/sirupsen/logrus"
)

// Viewer is the read side of the session service.
type Viewer interface {
	Current() (session.Identity, bool)
}

type base struct {
	viewer   Viewer
	notifier notify.Notifier
	logger   *logrus.Logger
}

func newBase(viewer Viewer, n notify.Notifier, logger *logrus.Logger) base {
	if logger == nil {
		logger = logrus.New()
	}
	return base{viewer: viewer, notifier: n, logger: logger}
}

func (b base) identity(op string) (session.Identity, error) {
	if b.viewer != nil {
		if id, ok := b.viewer.Current(); ok {
			return id, nil
		}
	}
	return session.Identity{}, apperr.New(apperr.KindUnauthenticated, op, "")
}

// fail reports err and hands it back so callers can return it directly.
func (b base) fail(err error) error {
	if b.notifier != nil {
		b.notifier.Failure(err)
	}
	return err
}

func (b base) ok(message string) {
	if b.notifier != nil {
		b.notifier.Success(message)
	}
}
