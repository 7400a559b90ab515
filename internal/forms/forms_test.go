package forms

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"cinelume/internal/api"
	"cinelume/internal/apperr"
	"cinelume/internal/logger"
	"cinelume/internal/models"
	"cinelume/internal/notify"
	"cinelume/internal/pages"
	"cinelume/internal/session"
	"cinelume/internal/testutil"
	"cinelume/internal/tokenstore"
	"cinelume/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend  *testutil.Backend
	store    *tokenstore.MemoryStore
	client   *api.Client
	session  *session.Service
	notifier *notify.Recorder
	userID   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend:  testutil.NewBackend(t),
		store:    tokenstore.NewMemoryStore(""),
		notifier: &notify.Recorder{},
	}
	f.client = api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: f.backend.URL(),
		Logger:  logger.Discard(),
		Tokens:  f.store,
	})
	f.session = session.New(f.store, f.client, nil, logger.Discard())
	return f
}

func (f *fixture) signIn(t *testing.T, username string) {
	t.Helper()
	f.userID = f.backend.AddUser(username, username+"@example.com", "password123")
	require.NoError(t, f.store.Set(context.Background(), f.backend.Token(t, f.userID)))
	f.session.Restore(context.Background())
	require.True(t, f.session.LoggedIn())
}

func (f *fixture) watchlist(t *testing.T) *pages.WatchlistPage {
	t.Helper()
	p := pages.NewWatchlistPage(f.client, f.session, nil, f.notifier)
	require.NoError(t, p.Load(context.Background()))
	return p
}

func strPtr(s string) *string { return &s }

func TestChangeStatusMovesEntryBetweenGroups(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	f.backend.AddWatchlistEntry(f.userID, models.WatchlistEntry{MediaID: 42, MediaType: "movie", Title: "Heat", Status: models.StatusPlanToWatch})

	list := f.watchlist(t)
	form := NewWatchlistForm(f.client, f.session, list, f.notifier, logger.Discard())

	require.NoError(t, form.ChangeStatus(context.Background(), 42, models.StatusWatching))

	groups := list.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, models.StatusWatching, groups[0].Status)
	require.Len(t, groups[0].Entries, 1)
	assert.Equal(t, 42, groups[0].Entries[0].MediaID)

	stored := f.backend.WatchlistOf(f.userID)
	require.Len(t, stored, 1)
	assert.Equal(t, models.StatusWatching, stored[0].Status)
	assert.Equal(t, 1, f.backend.RequestCount(http.MethodPost, "/watchlist"))
	assert.Len(t, f.notifier.Successes(), 1)
}

func TestChangeStatusFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	f.backend.AddWatchlistEntry(f.userID, models.WatchlistEntry{MediaID: 42, MediaType: "movie", Title: "Heat", Status: models.StatusPlanToWatch})

	list := f.watchlist(t)
	form := NewWatchlistForm(f.client, f.session, list, f.notifier, logger.Discard())
	f.backend.Fail(http.MethodPost, "/watchlist", http.StatusInternalServerError)

	err := form.ChangeStatus(context.Background(), 42, models.StatusWatching)
	require.Error(t, err)
	assert.Equal(t, apperr.KindRequest, apperr.KindOf(err))

	entry, ok := list.Entry(42)
	require.True(t, ok)
	assert.Equal(t, models.StatusPlanToWatch, entry.Status)
	require.Len(t, f.notifier.Failures(), 1)
}

func TestChangeStatusValidation(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	list := f.watchlist(t)
	form := NewWatchlistForm(f.client, f.session, list, f.notifier, logger.Discard())
	ctx := context.Background()

	assert.True(t, apperr.Is(form.ChangeStatus(ctx, 42, models.StatusWatching), apperr.KindValidation))
	assert.True(t, apperr.Is(form.ChangeStatus(ctx, 42, "Rewatching"), apperr.KindValidation))
	assert.Zero(t, f.backend.RequestCount(http.MethodPost, "/watchlist"))
}

func TestAddAndRemove(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	list := f.watchlist(t)
	form := NewWatchlistForm(f.client, f.session, list, f.notifier, logger.Discard())
	ctx := context.Background()

	item := models.WatchlistUpsert{MediaID: 7, MediaType: "tv", Title: "Lost", Status: models.StatusOnHold}
	require.NoError(t, form.Add(ctx, item))

	entry, ok := list.Entry(7)
	require.True(t, ok)
	assert.Equal(t, models.StatusOnHold, entry.Status)
	assert.Len(t, f.backend.WatchlistOf(f.userID), 1)

	require.NoError(t, form.Remove(ctx, 7))
	assert.True(t, list.Empty())
	assert.Empty(t, f.backend.WatchlistOf(f.userID))

	err := form.Remove(ctx, 7)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
	assert.Equal(t, "Item not found in watchlist", apperr.UserMessage(err))
}

func TestWatchlistMutationNeedsSession(t *testing.T) {
	f := newFixture(t)
	form := NewWatchlistForm(f.client, f.session, nil, f.notifier, logger.Discard())

	err := form.Add(context.Background(), models.WatchlistUpsert{MediaID: 7, MediaType: "tv", Title: "Lost", Status: models.StatusWatching})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	assert.Empty(t, f.backend.Requests())
	assert.Len(t, f.notifier.Failures(), 1)
}

func heat() Media {
	return Media{ID: 10, Kind: "movie", Title: "Heat", PosterPath: "/heat.jpg"}
}

func TestReviewSubmitGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	anon := NewReviewsSection(f.client, f.session, heat(), nil, f.notifier, logger.Discard())
	assert.False(t, anon.CanSubmit())

	f.signIn(t, "ana")
	section := NewReviewsSection(f.client, f.session, heat(), nil, f.notifier, logger.Discard())
	assert.True(t, section.CanSubmit())

	err := section.Submit(ctx, 0, "no rating")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, f.backend.RequestCount(http.MethodPost, "/reviews"))

	require.NoError(t, section.Submit(ctx, 8, "  tense  "))
	reviews := section.Reviews()
	require.Len(t, reviews, 1)
	assert.Equal(t, "ana", reviews[0].Username)
	assert.Equal(t, "tense", reviews[0].Comment)
	assert.Equal(t, 8, reviews[0].Rating)
	assert.NotEmpty(t, reviews[0].CreatedAt)

	assert.False(t, section.CanSubmit())
	err = section.Submit(ctx, 9, "again")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 1, f.backend.RequestCount(http.MethodPost, "/reviews"))
}

func TestReviewSubmitPrependsToLoaded(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	existing := []models.Review{{ID: 3, Username: "ben", Rating: 5}}

	section := NewReviewsSection(f.client, f.session, heat(), existing, f.notifier, logger.Discard())
	require.NoError(t, section.Submit(context.Background(), 7, ""))

	reviews := section.Reviews()
	require.Len(t, reviews, 2)
	assert.Equal(t, "ana", reviews[0].Username)
	assert.Equal(t, "ben", reviews[1].Username)
}

func TestReviewSubmitConcurrentOnlyOnce(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	ctx := context.Background()
	release := f.backend.Gate(http.MethodPost, "/reviews")
	defer release()

	section := NewReviewsSection(f.client, f.session, heat(), nil, f.notifier, logger.Discard())

	first := make(chan error, 1)
	go func() {
		first <- section.Submit(ctx, 7, "hi")
	}()

	require.Eventually(t, func() bool {
		return !section.CanSubmit()
	}, time.Second, 5*time.Millisecond)

	err := section.Submit(ctx, 7, "hi")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	release()
	require.NoError(t, <-first)

	assert.Equal(t, 1, f.backend.RequestCount(http.MethodPost, "/reviews"))
	reviews := section.Reviews()
	require.Len(t, reviews, 1)
	assert.Equal(t, "ana", reviews[0].Username)
}

func TestReviewSubmitFailureAllowsRetry(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	ctx := context.Background()
	f.backend.Fail(http.MethodPost, "/reviews", http.StatusInternalServerError)

	section := NewReviewsSection(f.client, f.session, heat(), nil, f.notifier, logger.Discard())
	require.Error(t, section.Submit(ctx, 7, "hi"))
	assert.Empty(t, section.Reviews())
	assert.True(t, section.CanSubmit())

	f.backend.Fail(http.MethodPost, "/reviews", 0)
	require.NoError(t, section.Submit(ctx, 7, "hi"))
	assert.Len(t, section.Reviews(), 1)
}

// readBack inspects the section from inside Failure, the way a renderer
// refreshing on error would.
type readBack struct {
	mu      sync.Mutex
	section *ReviewsSection
	modes   []Mode
}

func (r *readBack) Success(string) {}

func (r *readBack) Failure(error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes = append(r.modes, r.section.Mode(1))
	_ = r.section.Reviews()
}

func TestReviewStartEditingNotifiesOutsideLock(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	existing := []models.Review{{ID: 1, Username: "ben", Rating: 5}}

	n := &readBack{}
	section := NewReviewsSection(f.client, f.session, heat(), existing, n, logger.Discard())
	n.section = section

	done := make(chan error, 2)
	go func() {
		done <- section.StartEditing(1)
		done <- section.StartEditing(99)
	}()

	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		case <-time.After(time.Second):
			t.Fatal("StartEditing blocked while notifying")
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	assert.Equal(t, []Mode{Viewing, Viewing}, n.modes)
}

func TestReviewEditStateMachine(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	ctx := context.Background()

	other := f.backend.AddUser("ben", "ben@example.com", "password123")
	benID := f.backend.AddReview(other, models.Review{MediaID: 10, MediaType: "movie", MediaTitle: "Heat", Rating: 4})
	anaID := f.backend.AddReview(f.userID, models.Review{MediaID: 10, MediaType: "movie", MediaTitle: "Heat", Rating: 6, Comment: "ok"})
	ben, _ := f.backend.ReviewByID(benID)
	ana, _ := f.backend.ReviewByID(anaID)

	section := NewReviewsSection(f.client, f.session, heat(), []models.Review{ana, ben}, f.notifier, logger.Discard())

	assert.True(t, apperr.Is(section.StartEditing(benID), apperr.KindValidation))
	assert.Equal(t, Viewing, section.Mode(benID))

	require.NoError(t, section.StartEditing(anaID))
	assert.Equal(t, Editing, section.Mode(anaID))

	section.Cancel()
	assert.Equal(t, Viewing, section.Mode(anaID))
	assert.Zero(t, f.backend.RequestCount(http.MethodPut, "/reviews/2"))

	require.NoError(t, section.StartEditing(anaID))
	section.SetDraft(11, "too high")
	assert.True(t, apperr.Is(section.Save(ctx), apperr.KindValidation))
	assert.Equal(t, Editing, section.Mode(anaID))

	section.SetDraft(9, "better on rewatch")
	require.NoError(t, section.Save(ctx))
	assert.Equal(t, Viewing, section.Mode(anaID))

	stored, _ := f.backend.ReviewByID(anaID)
	assert.Equal(t, 9, stored.Rating)
	assert.Equal(t, "better on rewatch", stored.Comment)
	assert.Equal(t, 9, section.Reviews()[0].Rating)
}

func TestReviewSaveFailureStaysEditing(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	id := f.backend.AddReview(f.userID, models.Review{MediaID: 10, MediaType: "movie", MediaTitle: "Heat", Rating: 6})
	review, _ := f.backend.ReviewByID(id)
	f.backend.Fail(http.MethodPut, "/reviews/1", http.StatusInternalServerError)

	section := NewReviewsSection(f.client, f.session, heat(), []models.Review{review}, f.notifier, logger.Discard())
	require.NoError(t, section.StartEditing(id))
	section.SetDraft(2, "")

	require.Error(t, section.Save(context.Background()))
	assert.Equal(t, Editing, section.Mode(id))
	assert.Equal(t, 6, section.Reviews()[0].Rating)
}

func loadProfile(t *testing.T, f *fixture) models.Profile {
	t.Helper()
	p, err := f.client.Profile(context.Background())
	require.NoError(t, err)
	return *p
}

func TestProfileSaveRenames(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	form := NewProfileForm(f.client, f.session, loadProfile(t, f), f.notifier, logger.Discard())

	changed, err := form.Save(context.Background(), ProfileChanges{Username: strPtr("ana2"), Description: strPtr("films")})
	require.NoError(t, err)
	assert.True(t, changed)

	username, email, _ := f.backend.UserByID(f.userID)
	assert.Equal(t, "ana2", username)
	assert.Equal(t, "ana@example.com", email)
	assert.Equal(t, "films", form.Profile().About())

	id, ok := f.session.Current()
	require.True(t, ok)
	assert.Equal(t, "ana2", id.Username)
	assert.Equal(t, f.userID, id.ID)
}

func TestProfileSaveAdoptsReissuedToken(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	f.backend.ReissueTokenOnProfileUpdate = true
	form := NewProfileForm(f.client, f.session, loadProfile(t, f), f.notifier, logger.Discard())
	before := f.session.Token()

	changed, err := form.Save(context.Background(), ProfileChanges{AvatarURL: strPtr("https://img.test/a.png")})
	require.NoError(t, err)
	assert.False(t, changed)

	assert.NotEqual(t, before, f.session.Token())
	persisted, err := f.store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.session.Token(), persisted)

	id, _ := f.session.Current()
	assert.Equal(t, "https://img.test/a.png", id.AvatarURL)
}

func TestProfileSaveValidation(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	form := NewProfileForm(f.client, f.session, loadProfile(t, f), f.notifier, logger.Discard())

	_, err := form.Save(context.Background(), ProfileChanges{Email: strPtr("not-an-email")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = form.Save(context.Background(), ProfileChanges{Username: strPtr("  ")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, f.backend.RequestCount(http.MethodPut, "/users/profile"))
	assert.Equal(t, "ana", form.Profile().Username)
}

func TestPasswordForm(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	form := NewPasswordForm(f.client, f.session, f.notifier, logger.Discard())
	ctx := context.Background()

	assert.True(t, apperr.Is(form.Save(ctx, "", "longenough"), apperr.KindValidation))
	assert.True(t, apperr.Is(form.Save(ctx, "password123", "short"), apperr.KindValidation))
	assert.Zero(t, f.backend.RequestCount(http.MethodPut, "/users/password"))

	err := form.Save(ctx, "wrong-password", "longenough")
	require.Error(t, err)
	assert.Equal(t, "Failed to update password. Check your current password.", apperr.UserMessage(err))

	require.NoError(t, form.Save(ctx, "password123", "longenough"))
	assert.True(t, f.backend.CheckPassword(f.userID, "longenough"))
	assert.False(t, f.backend.CheckPassword(f.userID, "password123"))
	assert.Contains(t, f.notifier.Successes(), "Password updated successfully!")
}

func TestAvatarUpload(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	profile := NewProfileForm(f.client, f.session, loadProfile(t, f), f.notifier, logger.Discard())
	host := upload.NewClient(f.backend.UploadURL(), 0, logger.Discard())
	form := NewAvatarForm(f.client, host, profile, f.notifier, logger.Discard())

	url, err := form.Upload(context.Background(), "me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://res.example.test/"+testutil.UploadCloudName+"/image/upload/"))

	_, _, avatar := f.backend.UserByID(f.userID)
	assert.Equal(t, url, avatar)
	assert.Equal(t, url, profile.Profile().Avatar())

	id, _ := f.session.Current()
	assert.Equal(t, url, id.AvatarURL)
}

func TestAvatarUploadSignatureFailure(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "ana")
	f.backend.Fail(http.MethodGet, "/users/upload-signature", http.StatusInternalServerError)
	profile := NewProfileForm(f.client, f.session, loadProfile(t, f), f.notifier, logger.Discard())
	host := upload.NewClient(f.backend.UploadURL(), 0, logger.Discard())
	form := NewAvatarForm(f.client, host, profile, f.notifier, logger.Discard())

	_, err := form.Upload(context.Background(), "me.png", strings.NewReader("png-bytes"))
	require.Error(t, err)
	assert.Zero(t, f.backend.RequestCount(http.MethodPut, "/users/profile"))
	assert.Empty(t, profile.Profile().Avatar())
}
