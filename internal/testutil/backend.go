// Package testutil provides an in-memory stand-in for the cinelume REST
// backend and the image host, for use by package tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"cinelume/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultSecret     = "test-secret"
	UploadAPIKey      = "test-api-key"
	UploadCloudName   = "cinelume-test"
	uploadSignature   = "signed-by-backend"
	uploadTimestamp   = int64(1700000000)
	contextKeyUserID  = ctxKey("userID")
	defaultTokenValid = 7 * 24 * time.Hour
)

type ctxKey string

type user struct {
	ID          int
	Username    string
	Email       string
	Password    []byte
	Avatar      string
	Description string
	CreatedAt   time.Time
}

type storedReview struct {
	models.Review
	UserID int
}

// RecordedRequest is one request the backend saw.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
}

type Backend struct {
	Server *httptest.Server
	Secret []byte

	// ReissueTokenOnProfileUpdate makes PUT /users/profile answer with a
	// fresh token carrying the new username and avatar.
	ReissueTokenOnProfileUpdate bool

	mu           sync.Mutex
	users        map[int]*user
	watchlist    map[int][]*models.WatchlistEntry
	reviews      []*storedReview
	catalog      map[string]models.CatalogPage
	details      map[string]models.MediaDetails
	failures     map[string]int
	gates        map[string]chan struct{}
	requests     []RecordedRequest
	nextUserID   int
	nextReviewID int
	nextEntryID  int
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		Secret:       []byte(DefaultSecret),
		users:        make(map[int]*user),
		watchlist:    make(map[int][]*models.WatchlistEntry),
		catalog:      make(map[string]models.CatalogPage),
		details:      make(map[string]models.MediaDetails),
		failures:     make(map[string]int),
		gates:        make(map[string]chan struct{}),
		nextUserID:   1,
		nextReviewID: 1,
		nextEntryID:  1,
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API prefix clients should use as their base URL.
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

// UploadURL is the image host base URL.
func (b *Backend) UploadURL() string {
	return b.Server.URL + "/upload"
}

func (b *Backend) AddUser(username, email, password string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(username, email, password)
}

func (b *Backend) addUserLocked(username, email, password string) int {
	id := b.nextUserID
	b.nextUserID++
	b.users[id] = &user{ID: id, Username: username, Email: email, Password: hashPassword(password), CreatedAt: time.Now().UTC()}
	return id
}

func hashPassword(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("failed to hash password: %v", err))
	}
	return hash
}

func (u *user) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.Password, []byte(password)) == nil
}

func (b *Backend) SetAvatar(userID int, url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.users[userID]; ok {
		u.Avatar = url
	}
}

// Token signs a token for userID the way the backend does on login.
func (b *Backend) Token(t *testing.T, userID int) string {
	t.Helper()
	b.mu.Lock()
	u, ok := b.users[userID]
	b.mu.Unlock()
	if !ok {
		t.Fatalf("unknown user %d", userID)
	}
	token, err := b.sign(u)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func (b *Backend) sign(u *user) (string, error) {
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"exp":      time.Now().Add(defaultTokenValid).Unix(),
	}
	if u.Avatar != "" {
		claims["pfp"] = u.Avatar
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.Secret)
}

// SetCatalog stores the page served for a listing path such as
// "/movies/popular" or "/search".
func (b *Backend) SetCatalog(path string, page models.CatalogPage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalog[path] = page
}

// SetDetails stores the details payload for kind ("movie" or "tv") and id.
func (b *Backend) SetDetails(kind string, id int, details models.MediaDetails) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.details[fmt.Sprintf("%s/%d", kind, id)] = details
}

func (b *Backend) AddWatchlistEntry(userID int, entry models.WatchlistEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry.ID = b.nextEntryID
	b.nextEntryID++
	b.watchlist[userID] = append(b.watchlist[userID], &entry)
}

func (b *Backend) WatchlistOf(userID int) []models.WatchlistEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.WatchlistEntry, 0, len(b.watchlist[userID]))
	for _, e := range b.watchlist[userID] {
		out = append(out, *e)
	}
	return out
}

func (b *Backend) AddReview(userID int, review models.Review) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	review.ID = b.nextReviewID
	b.nextReviewID++
	if u, ok := b.users[userID]; ok {
		review.Username = u.Username
		review.ProfilePictureURL = u.Avatar
	}
	if review.CreatedAt == "" {
		review.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	b.reviews = append(b.reviews, &storedReview{Review: review, UserID: userID})
	return review.ID
}

func (b *Backend) ReviewByID(id int) (models.Review, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.reviews {
		if r.ID == id {
			return r.Review, true
		}
	}
	return models.Review{}, false
}

func (b *Backend) UserByID(id int) (username, email, avatar string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok {
		return "", "", ""
	}
	return u.Username, u.Email, u.Avatar
}

// CheckPassword reports whether password is the current password of the
// user with id.
func (b *Backend) CheckPassword(id int, password string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	return ok && u.checkPassword(password)
}

// Fail makes every request matching method and path (without the /api
// prefix) answer with status until cleared with Fail(method, path, 0).
func (b *Backend) Fail(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(b.failures, key)
		return
	}
	b.failures[key] = status
}

// Gate holds requests to method+path until the returned release func is
// called. Used to resolve responses out of order.
func (b *Backend) Gate(method, path string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.gates[method+" "+path] = ch
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.gates, method+" "+path)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// RequestCount counts recorded requests for method and path.
func (b *Backend) RequestCount(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Use(b.record)
		r.Use(b.faults)

		r.Post("/users/register", b.register)
		r.Post("/users/login", b.login)
		r.Get("/users/{username}/stats", b.stats)
		r.Get("/users/{username}/reviews", b.userReviews)

		r.Get("/movies/{param}", b.listOrDetails("movies", "movie"))
		r.Get("/tv/{param}", b.listOrDetails("tv", "tv"))
		r.Get("/trending/all/day", b.listing("/trending/all/day"))
		r.Get("/genres/{kind}", b.genres)
		r.Get("/search", b.search)

		r.Group(func(r chi.Router) {
			r.Use(b.authenticate)

			r.Get("/users/profile", b.profile)
			r.Put("/users/profile", b.updateProfile)
			r.Put("/users/password", b.updatePassword)
			r.Get("/users/upload-signature", b.uploadSignature)

			r.Get("/watchlist", b.getWatchlist)
			r.Post("/watchlist", b.upsertWatchlist)
			r.Put("/watchlist/{mediaID}", b.updateWatchlist)
			r.Delete("/watchlist/{mediaID}", b.removeWatchlist)

			r.Post("/reviews", b.addReview)
			r.Put("/reviews/{id}", b.updateReview)
		})
	})

	r.Post("/upload/{cloud}/image/upload", b.imageUpload)

	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, "/api"),
			Authorization: r.Header.Get("Authorization"),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) faults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")

		b.mu.Lock()
		gate := b.gates[key]
		status := b.failures[key]
		b.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			writeError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return b.Secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		sub, ok := claims["sub"].(float64)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid token subject")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, int(sub))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFrom(r *http.Request) int {
	id, _ := r.Context().Value(contextKeyUserID).(int)
	return id
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var payload models.Registration
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Username == "" || !strings.Contains(payload.Email, "@") || len(payload.Password) < 8 {
		writeError(w, http.StatusBadRequest, "invalid registration payload")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Email == payload.Email || u.Username == payload.Username {
			writeError(w, http.StatusInternalServerError, "Could not create user")
			return
		}
	}
	id := b.addUserLocked(payload.Username, payload.Email, payload.Password)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User created successfully", "userID": id})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var payload models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	var found *user
	for _, u := range b.users {
		if u.Email == payload.Email && u.checkPassword(payload.Password) {
			found = u
			break
		}
	}
	b.mu.Unlock()

	if found == nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := b.sign(found)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create token")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{Token: token})
}

func (b *Backend) userByName(name string) *user {
	for _, u := range b.users {
		if u.Username == name {
			return u
		}
	}
	return nil
}

func (b *Backend) stats(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.userByName(chi.URLParam(r, "username"))
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	stats := models.UserStats{WatchlistStats: make([]models.WatchlistStat, 0)}
	counts := make(map[models.WatchStatus]int)
	for _, e := range b.watchlist[u.ID] {
		counts[e.Status]++
	}
	for _, status := range models.StatusOrder {
		if counts[status] > 0 {
			stats.WatchlistStats = append(stats.WatchlistStats, models.WatchlistStat{Status: status, Count: counts[status]})
			stats.TotalEntries += counts[status]
		}
	}

	total := 0
	for _, rv := range b.reviews {
		if rv.UserID == u.ID {
			total += rv.Rating
			stats.ReviewsCount++
		}
	}
	if stats.ReviewsCount > 0 {
		stats.MeanScore = float64(total) / float64(stats.ReviewsCount)
	}

	writeJSON(w, http.StatusOK, stats)
}

func (b *Backend) userReviews(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.userByName(chi.URLParam(r, "username"))
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	out := make([]models.Review, 0)
	for i := len(b.reviews) - 1; i >= 0; i-- {
		if b.reviews[i].UserID == u.ID {
			out = append(out, b.reviews[i].Review)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) listOrDetails(prefix, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		param := chi.URLParam(r, "param")
		id, err := strconv.Atoi(param)
		if err != nil {
			b.listing("/"+prefix+"/"+param)(w, r)
			return
		}

		b.mu.Lock()
		details, ok := b.details[fmt.Sprintf("%s/%d", kind, id)]
		reviews := make([]models.Review, 0)
		for i := len(b.reviews) - 1; i >= 0; i-- {
			rv := b.reviews[i]
			if rv.MediaID == id && rv.MediaType == kind {
				reviews = append(reviews, rv.Review)
			}
		}
		b.mu.Unlock()

		if !ok {
			// the real backend relays TMDB's 404 body inside "details"
			writeJSON(w, http.StatusOK, map[string]any{"details": map[string]any{"status_code": 34}, "reviews": reviews})
			return
		}
		details.Reviews = reviews
		writeJSON(w, http.StatusOK, details)
	}
}

func (b *Backend) listing(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		page, ok := b.catalog[path]
		b.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, "Error from TMDB API")
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func (b *Backend) genres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.GenreList{Genres: []models.Genre{{ID: 18, Name: "Drama"}, {ID: 35, Name: "Comedy"}}})
}

func (b *Backend) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}

	b.mu.Lock()
	page := b.catalog["/search"]
	b.mu.Unlock()

	out := models.CatalogPage{Page: 1}
	for _, item := range page.Results {
		if strings.Contains(strings.ToLower(item.DisplayTitle()), strings.ToLower(query)) {
			out.Results = append(out.Results, item)
		}
	}
	out.TotalResults = len(out.Results)
	out.TotalPages = 1
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) profile(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[userIDFrom(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, profileOf(u))
}

func profileOf(u *user) models.Profile {
	p := models.Profile{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
	if u.Avatar != "" {
		avatar := u.Avatar
		p.ProfilePictureURL = &avatar
	}
	if u.Description != "" {
		desc := u.Description
		p.Description = &desc
	}
	return p
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request) {
	var payload models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Username == "" || !strings.Contains(payload.Email, "@") {
		writeError(w, http.StatusBadRequest, "username and email are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[userIDFrom(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	u.Username = payload.Username
	u.Email = payload.Email
	u.Description = payload.Description
	u.Avatar = payload.ProfilePictureURL

	resp := models.ProfileUpdateResponse{Message: "Profile updated successfully"}
	if b.ReissueTokenOnProfileUpdate {
		token, err := b.sign(u)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create token")
			return
		}
		resp.Token = token
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) updatePassword(w http.ResponseWriter, r *http.Request) {
	var payload models.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(payload.NewPassword) < 8 {
		writeError(w, http.StatusBadRequest, "new password too short")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[userIDFrom(r)]
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found")
		return
	}
	if !u.checkPassword(payload.CurrentPassword) {
		writeError(w, http.StatusUnauthorized, "Invalid current password")
		return
	}
	u.Password = hashPassword(payload.NewPassword)
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Password updated successfully"})
}

func (b *Backend) uploadSignature(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.UploadSignature{
		Signature: uploadSignature,
		Timestamp: uploadTimestamp,
		APIKey:    UploadAPIKey,
		CloudName: UploadCloudName,
		Folder:    "avatars",
	})
}

func (b *Backend) getWatchlist(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	uid := userIDFrom(r)
	out := make([]models.WatchlistEntry, 0)
	for i := len(b.watchlist[uid]) - 1; i >= 0; i-- {
		e := *b.watchlist[uid][i]
		for _, rv := range b.reviews {
			if rv.UserID == uid && rv.MediaID == e.MediaID && rv.MediaType == e.MediaType {
				e.Rating = rv.Rating
			}
		}
		out = append(out, e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) upsertWatchlist(w http.ResponseWriter, r *http.Request) {
	var payload models.WatchlistUpsert
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.MediaID == 0 || payload.MediaType == "" || payload.Title == "" || payload.Status == "" {
		writeError(w, http.StatusBadRequest, "missing required watchlist fields")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	uid := userIDFrom(r)
	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range b.watchlist[uid] {
		if e.MediaID == payload.MediaID && e.MediaType == payload.MediaType {
			e.Status = payload.Status
			e.AddedAt = now
			writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Item added to watchlist successfully"})
			return
		}
	}

	b.watchlist[uid] = append(b.watchlist[uid], &models.WatchlistEntry{
		ID:         b.nextEntryID,
		MediaID:    payload.MediaID,
		MediaType:  payload.MediaType,
		Title:      payload.Title,
		PosterPath: payload.PosterPath,
		Status:     payload.Status,
		AddedAt:    now,
	})
	b.nextEntryID++
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Item added to watchlist successfully"})
}

func (b *Backend) updateWatchlist(w http.ResponseWriter, r *http.Request) {
	mediaID, err := strconv.Atoi(chi.URLParam(r, "mediaID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid media ID")
		return
	}
	var payload struct {
		Status models.WatchStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.watchlist[userIDFrom(r)] {
		if e.MediaID == mediaID {
			e.Status = payload.Status
			writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Item updated successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Item not found in watchlist")
}

func (b *Backend) removeWatchlist(w http.ResponseWriter, r *http.Request) {
	mediaID, err := strconv.Atoi(chi.URLParam(r, "mediaID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid media ID")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	uid := userIDFrom(r)
	entries := b.watchlist[uid]
	for i, e := range entries {
		if e.MediaID == mediaID {
			b.watchlist[uid] = append(entries[:i], entries[i+1:]...)
			writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Item removed successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Item not found in watchlist")
}

func (b *Backend) addReview(w http.ResponseWriter, r *http.Request) {
	var payload models.ReviewPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.MediaID == 0 || payload.MediaType == "" || payload.MediaTitle == "" ||
		payload.Rating < models.MinRating || payload.Rating > models.MaxRating {
		writeError(w, http.StatusBadRequest, "invalid review payload")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	uid := userIDFrom(r)
	for _, rv := range b.reviews {
		if rv.UserID == uid && rv.MediaID == payload.MediaID && rv.MediaType == payload.MediaType {
			rv.Rating = payload.Rating
			rv.Comment = payload.Comment
			writeJSON(w, http.StatusCreated, models.MessageResponse{Message: "Review submitted successfully"})
			return
		}
	}

	u := b.users[uid]
	review := &storedReview{UserID: uid, Review: models.Review{
		ID:              b.nextReviewID,
		MediaID:         payload.MediaID,
		MediaType:       payload.MediaType,
		MediaTitle:      payload.MediaTitle,
		MediaPosterPath: payload.MediaPosterPath,
		Rating:          payload.Rating,
		Comment:         payload.Comment,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}}
	if u != nil {
		review.Username = u.Username
		review.ProfilePictureURL = u.Avatar
	}
	b.nextReviewID++
	b.reviews = append(b.reviews, review)
	writeJSON(w, http.StatusCreated, models.MessageResponse{Message: "Review submitted successfully"})
}

func (b *Backend) updateReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}
	var payload models.ReviewUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Rating < models.MinRating || payload.Rating > models.MaxRating {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 10")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rv := range b.reviews {
		if rv.ID == id && rv.UserID == userIDFrom(r) {
			rv.Rating = payload.Rating
			rv.Comment = payload.Comment
			writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Review updated successfully"})
			return
		}
	}
	writeError(w, http.StatusForbidden, "You can only edit your own reviews")
}

func (b *Backend) imageUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.FormValue("api_key") != UploadAPIKey ||
		r.FormValue("signature") != uploadSignature ||
		r.FormValue("timestamp") != strconv.FormatInt(uploadTimestamp, 10) {
		writeError(w, http.StatusUnauthorized, "Invalid Signature")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing required parameter - file")
		return
	}
	file.Close()

	publicID := r.FormValue("public_id")
	if publicID == "" {
		publicID = header.Filename
	}
	cloud := chi.URLParam(r, "cloud")
	writeJSON(w, http.StatusOK, map[string]any{
		"public_id":  publicID,
		"secure_url": fmt.Sprintf("https://res.example.test/%s/image/upload/%s", cloud, publicID),
		"bytes":      header.Size,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
