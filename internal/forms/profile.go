package forms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"cinelume/internal/apperr"
	"cinelume/internal/models"
	"cinelume/internal/notify"
	"cinelume/internal/session"
	"cinelume/internal/upload"

	"github.com/sirupsen/logrus"
)

const minPasswordLength = 8

type ProfileAPI interface {
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.ProfileUpdateResponse, error)
}

// SessionWriter is the part of the session service a profile change
// touches.
type SessionWriter interface {
	Viewer
	UpdateUser(ctx context.Context, upd session.UserUpdate)
	AdoptToken(ctx context.Context, token string) error
}

// ProfileChanges lists the fields to change. Nil fields keep their
// loaded value.
type ProfileChanges struct {
	Username    *string
	Email       *string
	Description *string
	AvatarURL   *string
}

type ProfileForm struct {
	base
	api     ProfileAPI
	session SessionWriter

	mu      sync.Mutex
	profile models.Profile
}

// NewProfileForm edits profile, which must be the signed-in user's own
// profile as returned by GET /users/profile.
func NewProfileForm(api ProfileAPI, sess SessionWriter, profile models.Profile, n notify.Notifier, logger *logrus.Logger) *ProfileForm {
	return &ProfileForm{
		base:    newBase(sess, n, logger),
		api:     api,
		session: sess,
		profile: profile,
	}
}

func (f *ProfileForm) Profile() models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile
}

// Save sends the merged profile. It reports whether the username
// changed, in which case the caller should move to the new profile route.
func (f *ProfileForm) Save(ctx context.Context, changes ProfileChanges) (bool, error) {
	const op = "save profile"

	if _, err := f.identity(op); err != nil {
		return false, f.fail(err)
	}

	f.mu.Lock()
	current := f.profile
	f.mu.Unlock()

	next := current
	if changes.Username != nil {
		next.Username = strings.TrimSpace(*changes.Username)
	}
	if changes.Email != nil {
		next.Email = strings.TrimSpace(*changes.Email)
	}
	if changes.Description != nil {
		desc := *changes.Description
		next.Description = &desc
	}
	if changes.AvatarURL != nil {
		avatar := *changes.AvatarURL
		next.ProfilePictureURL = &avatar
	}

	switch {
	case next.Username == "":
		return false, f.fail(apperr.Validation(op, "Username is required."))
	case !strings.Contains(next.Email, "@"):
		return false, f.fail(apperr.Validation(op, "A valid email is required."))
	}

	resp, err := f.api.UpdateProfile(ctx, models.ProfileUpdate{
		Username:          next.Username,
		Email:             next.Email,
		Description:       next.About(),
		ProfilePictureURL: next.Avatar(),
	})
	if err != nil {
		return false, f.fail(err)
	}

	f.mu.Lock()
	f.profile = next
	f.mu.Unlock()

	if resp.Token != "" {
		if err := f.session.AdoptToken(ctx, resp.Token); err != nil {
			f.logger.WithError(err).Warn("Ignoring token returned by profile update")
		}
	}

	username, avatar := next.Username, next.Avatar()
	f.session.UpdateUser(ctx, session.UserUpdate{Username: &username, AvatarURL: &avatar})

	changed := next.Username != current.Username
	f.logger.WithFields(logrus.Fields{
		"user_id":          next.ID,
		"username_changed": changed,
	}).Info("Profile updated")
	f.ok("Profile updated.")
	return changed, nil
}

type PasswordAPI interface {
	ChangePassword(ctx context.Context, change models.PasswordChange) error
}

type PasswordForm struct {
	base
	api PasswordAPI
}

func NewPasswordForm(api PasswordAPI, viewer Viewer, n notify.Notifier, logger *logrus.Logger) *PasswordForm {
	return &PasswordForm{base: newBase(viewer, n, logger), api: api}
}

func (f *PasswordForm) Save(ctx context.Context, current, next string) error {
	const op = "change password"

	if _, err := f.identity(op); err != nil {
		return f.fail(err)
	}
	switch {
	case current == "":
		return f.fail(apperr.Validation(op, "Current password is required."))
	case len(next) < minPasswordLength:
		return f.fail(apperr.Validation(op, fmt.Sprintf("New password must be at least %d characters.", minPasswordLength)))
	}

	err := f.api.ChangePassword(ctx, models.PasswordChange{CurrentPassword: current, NewPassword: next})
	if err != nil {
		if apperr.StatusOf(err) == http.StatusUnauthorized {
			err = &apperr.Error{Kind: apperr.KindRequest, Op: op, Status: http.StatusUnauthorized, Message: "Failed to update password. Check your current password.", Err: err}
		}
		return f.fail(err)
	}

	f.ok("Password updated successfully!")
	return nil
}

type SignatureAPI interface {
	UploadSignature(ctx context.Context) (*models.UploadSignature, error)
}

type ImageHost interface {
	Image(ctx context.Context, sig models.UploadSignature, filename string, r io.Reader) (*upload.Result, error)
}

// AvatarForm replaces the profile picture: it asks the backend for an
// upload signature, sends the image to the image host, then saves the
// hosted URL through the profile form.
type AvatarForm struct {
	base
	api     SignatureAPI
	host    ImageHost
	profile *ProfileForm
}

func NewAvatarForm(api SignatureAPI, host ImageHost, profile *ProfileForm, n notify.Notifier, logger *logrus.Logger) *AvatarForm {
	return &AvatarForm{
		base:    newBase(profile.session, n, logger),
		api:     api,
		host:    host,
		profile: profile,
	}
}

// Upload returns the new avatar URL.
func (f *AvatarForm) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	const op = "upload avatar"

	if _, err := f.identity(op); err != nil {
		return "", f.fail(err)
	}

	sig, err := f.api.UploadSignature(ctx)
	if err != nil {
		return "", f.fail(err)
	}

	res, err := f.host.Image(ctx, *sig, filename, r)
	if err != nil {
		return "", f.fail(err)
	}

	url := res.SecureURL
	if _, err := f.profile.Save(ctx, ProfileChanges{AvatarURL: &url}); err != nil {
		// Save has already notified.
		return "", err
	}
	return url, nil
}
