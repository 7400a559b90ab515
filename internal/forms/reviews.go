package forms

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cinelume/internal/apperr"
	"cinelume/internal/models"
	"cinelume/internal/notify"

	"github.com/sirupsen/logrus"
)

type ReviewsAPI interface {
	AddReview(ctx context.Context, payload models.ReviewPayload) error
	UpdateReview(ctx context.Context, id int, update models.ReviewUpdate) error
}

// Media identifies what a reviews section belongs to.
type Media struct {
	ID         int
	Kind       string
	Title      string
	PosterPath string
}

type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "viewing"
}

// ReviewsSection is the review list of one detail page. At most one
// review is in Editing mode at a time.
type ReviewsSection struct {
	base
	api   ReviewsAPI
	media Media
	now   func() time.Time

	mu         sync.Mutex
	reviews    []models.Review
	target     int
	draft      models.ReviewUpdate
	submitting bool
}

func NewReviewsSection(api ReviewsAPI, viewer Viewer, media Media, reviews []models.Review, n notify.Notifier, logger *logrus.Logger) *ReviewsSection {
	return &ReviewsSection{
		base:    newBase(viewer, n, logger),
		api:     api,
		media:   media,
		now:     time.Now,
		reviews: append([]models.Review(nil), reviews...),
	}
}

func (s *ReviewsSection) Reviews() []models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Review(nil), s.reviews...)
}

// CanSubmit is false without a session, while a submission is in flight,
// or once the signed-in user has a review in the loaded set.
func (s *ReviewsSection) CanSubmit() bool {
	id, err := s.identity("")
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked(id.Username)
}

func (s *ReviewsSection) canSubmitLocked(username string) bool {
	if s.submitting {
		return false
	}
	for _, r := range s.reviews {
		if r.Username == username {
			return false
		}
	}
	return true
}

// Submit posts a new review and prepends a local copy of it.
func (s *ReviewsSection) Submit(ctx context.Context, rating int, comment string) error {
	const op = "submit review"

	id, err := s.identity(op)
	if err != nil {
		return s.fail(err)
	}
	if err := validateRating(op, rating); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	if !s.canSubmitLocked(id.Username) {
		s.mu.Unlock()
		return s.fail(apperr.Validation(op, "You have already reviewed this title."))
	}
	s.submitting = true
	s.mu.Unlock()

	comment = strings.TrimSpace(comment)
	payload := models.ReviewPayload{
		MediaID:         s.media.ID,
		MediaType:       s.media.Kind,
		MediaTitle:      s.media.Title,
		MediaPosterPath: s.media.PosterPath,
		Rating:          rating,
		Comment:         comment,
	}
	if err := s.api.AddReview(ctx, payload); err != nil {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
		return s.fail(err)
	}

	review := models.Review{
		MediaID:           s.media.ID,
		MediaType:         s.media.Kind,
		MediaTitle:        s.media.Title,
		MediaPosterPath:   s.media.PosterPath,
		Rating:            rating,
		Comment:           comment,
		Username:          id.Username,
		ProfilePictureURL: id.AvatarURL,
		CreatedAt:         s.now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	s.reviews = append([]models.Review{review}, s.reviews...)
	s.submitting = false
	s.mu.Unlock()

	s.ok("Review submitted.")
	return nil
}

// Mode reports whether the review with id is being edited.
func (s *ReviewsSection) Mode(id int) Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target != 0 && s.target == id {
		return Editing
	}
	return Viewing
}

// StartEditing moves the review with id to Editing. Any other review
// being edited returns to Viewing. Only the author may edit.
func (s *ReviewsSection) StartEditing(id int) error {
	const op = "edit review"

	who, err := s.identity(op)
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	err = s.startEditingLocked(op, id, who.Username)
	s.mu.Unlock()

	if err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *ReviewsSection) startEditingLocked(op string, id int, username string) error {
	for _, r := range s.reviews {
		if r.ID != id || id == 0 {
			continue
		}
		if r.Username != username {
			return apperr.Validation(op, "You can only edit your own reviews.")
		}
		s.target = id
		s.draft = models.ReviewUpdate{Rating: r.Rating, Comment: r.Comment}
		return nil
	}
	return apperr.Validation(op, fmt.Sprintf("Review %d not found.", id))
}

// SetDraft replaces the pending rating and comment of the review being
// edited.
func (s *ReviewsSection) SetDraft(rating int, comment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = models.ReviewUpdate{Rating: rating, Comment: strings.TrimSpace(comment)}
}

// Save sends the draft and returns the review to Viewing once the
// backend accepts it. On failure the review stays in Editing.
func (s *ReviewsSection) Save(ctx context.Context) error {
	const op = "save review"

	s.mu.Lock()
	target, draft := s.target, s.draft
	s.mu.Unlock()

	if target == 0 {
		return s.fail(apperr.Validation(op, "No review is being edited."))
	}
	if err := validateRating(op, draft.Rating); err != nil {
		return s.fail(err)
	}

	if err := s.api.UpdateReview(ctx, target, draft); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	for i := range s.reviews {
		if s.reviews[i].ID == target {
			s.reviews[i].Rating = draft.Rating
			s.reviews[i].Comment = draft.Comment
		}
	}
	if s.target == target {
		s.target = 0
		s.draft = models.ReviewUpdate{}
	}
	s.mu.Unlock()

	s.ok("Review updated.")
	return nil
}

// Cancel drops the draft without a request.
func (s *ReviewsSection) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = 0
	s.draft = models.ReviewUpdate{}
}

func validateRating(op string, rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return apperr.Validation(op, fmt.Sprintf("Please select a rating between %d and %d.", models.MinRating, models.MaxRating))
	}
	return nil
}
