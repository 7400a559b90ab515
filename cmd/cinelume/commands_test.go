package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"cinelume/internal/api"
	"cinelume/internal/container"
	"cinelume/internal/logger"
	"cinelume/internal/models"
	"cinelume/internal/notify"
	"cinelume/internal/session"
	"cinelume/internal/testutil"
	"cinelume/internal/tokenstore"
	"cinelume/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	backend *testutil.Backend
	store   *tokenstore.FileStore
	out     *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		backend: testutil.NewBackend(t),
		store:   tokenstore.NewFileStore(filepath.Join(t.TempDir(), "token")),
		out:     &bytes.Buffer{},
	}
}

// exec runs one command the way a fresh process would: a new container
// restored from the token file.
func (h *harness) exec(args ...string) int {
	log := logger.Discard()
	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: h.backend.URL(), Logger: log, Tokens: h.store})
	nav := &terminalNavigator{out: h.out}
	c := &container.Container{
		Logger:   log,
		Tokens:   h.store,
		API:      client,
		Uploads:  upload.NewClient(h.backend.UploadURL(), 0, log),
		Notifier: notify.NewWriter(h.out, log),
		Session:  session.New(h.store, client, nav, log),
	}
	c.Session.Restore(context.Background())

	h.out.Reset()
	return newApp(c, h.out).run(context.Background(), args)
}

func TestParseCommand(t *testing.T) {
	assert.Equal(t, command{Name: "help"}, parseCommand(nil))
	assert.Equal(t, command{Name: "search", Args: []string{"the", "wire"}}, parseCommand([]string{"SEARCH", "the", "wire"}))
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)
	h.backend.AddUser("ana", "ana@example.com", "password123")

	assert.Equal(t, 1, h.exec("login", "ana@example.com", "wrong"))
	assert.Equal(t, "error: Invalid email or password.\n", h.out.String())

	require.Equal(t, 0, h.exec("login", "ana@example.com", "password123"))
	assert.Equal(t, "ok: Logged in as ana.\n", h.out.String())

	require.Equal(t, 0, h.exec("whoami"))
	assert.Equal(t, "ana (id 1)\n", h.out.String())

	require.Equal(t, 0, h.exec("logout"))
	token, err := h.store.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)

	require.Equal(t, 0, h.exec("whoami"))
	assert.Equal(t, "not logged in\n", h.out.String())
}

func TestRegisterPointsToLogin(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.exec("register", "ana", "ana@example.com", "password123"))
	assert.Contains(t, h.out.String(), "next: cinelume login <email> <password>")
	assert.Contains(t, h.out.String(), "ok: Account created.")

	assert.Equal(t, 1, h.exec("register", "ana", "ana@example.com", "short"))
	assert.Contains(t, h.out.String(), "Password must be at least 8 characters.")
}

func TestWatchFlow(t *testing.T) {
	h := newHarness(t)
	h.backend.AddUser("ana", "ana@example.com", "password123")
	var heat models.MediaDetails
	heat.Details.ID = 42
	heat.Details.Title = "Heat"
	h.backend.SetDetails("movie", 42, heat)

	assert.Equal(t, 1, h.exec("watchlist"))
	assert.Contains(t, h.out.String(), "next: cinelume login")

	require.Equal(t, 0, h.exec("login", "ana@example.com", "password123"))
	require.Equal(t, 0, h.exec("watch", "add", "movie", "42", "plan-to-watch"))
	assert.Equal(t, "ok: Added Heat to your watchlist as Plan to Watch.\n", h.out.String())

	require.Equal(t, 0, h.exec("watch", "status", "42", "watching"))
	assert.Contains(t, h.out.String(), "== Watching (1) ==\n  Heat  [movie 42]\n")
	assert.NotContains(t, h.out.String(), "Plan to Watch (")

	require.Equal(t, 0, h.exec("watch", "rm", "42"))
	require.Equal(t, 0, h.exec("watchlist"))
	assert.Equal(t, "Your watchlist is empty.\n", h.out.String())
}

func TestReviewOnce(t *testing.T) {
	h := newHarness(t)
	h.backend.AddUser("ana", "ana@example.com", "password123")
	var heat models.MediaDetails
	heat.Details.ID = 42
	heat.Details.Title = "Heat"
	h.backend.SetDetails("movie", 42, heat)

	require.Equal(t, 0, h.exec("login", "ana@example.com", "password123"))
	require.Equal(t, 0, h.exec("review", "movie", "42", "9", "great", "heist"))
	assert.Contains(t, h.out.String(), "ana rated 9/10")
	assert.Contains(t, h.out.String(), "great heist")

	assert.Equal(t, 1, h.exec("review", "movie", "42", "7"))
	assert.Contains(t, h.out.String(), "already reviewed")

	require.Equal(t, 0, h.exec("review", "edit", "movie", "42", "1", "7", "still", "good"))
	stored, ok := h.backend.ReviewByID(1)
	require.True(t, ok)
	assert.Equal(t, 7, stored.Rating)
	assert.Equal(t, "still good", stored.Comment)
}

func TestProfileEditAndAvatar(t *testing.T) {
	h := newHarness(t)
	uid := h.backend.AddUser("ana", "ana@example.com", "password123")
	h.backend.ReissueTokenOnProfileUpdate = true

	assert.Equal(t, 1, h.exec("profile", "edit"))
	require.Equal(t, 0, h.exec("login", "ana@example.com", "password123"))

	require.Equal(t, 0, h.exec("profile", "edit", "--username", "ana2"))
	assert.Contains(t, h.out.String(), "next: cinelume profile ana2")

	image := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(image, []byte("png-bytes"), 0o600))
	require.Equal(t, 0, h.exec("avatar", image))
	assert.Contains(t, h.out.String(), "avatar: https://res.example.test/")

	username, _, avatar := h.backend.UserByID(uid)
	assert.Equal(t, "ana2", username)
	assert.NotEmpty(t, avatar)

	require.Equal(t, 0, h.exec("profile", "ana2"))
	assert.Contains(t, h.out.String(), "email: ana@example.com")
}

func TestGenres(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.exec("genres", "tv"))
	assert.Contains(t, h.out.String(), "Drama")

	assert.Equal(t, 1, h.exec("genres", "anime"))
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.exec("frobnicate"))
	assert.Contains(t, h.out.String(), `Unknown command "frobnicate"`)

	assert.Equal(t, 0, h.exec())
	assert.Contains(t, h.out.String(), "watch status <mediaId> <status>")
}
