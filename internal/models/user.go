package models

import "time"

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type Profile struct {
	ID                int       `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	ProfilePictureURL *string   `json:"profilePictureUrl"`
	Description       *string   `json:"description"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (p Profile) Avatar() string {
	if p.ProfilePictureURL == nil {
		return ""
	}
	return *p.ProfilePictureURL
}

func (p Profile) About() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// ProfileUpdate is the body of PUT /users/profile. The backend requires
// username and email on every update.
type ProfileUpdate struct {
	Username          string `json:"username"`
	Email             string `json:"email"`
	Description       string `json:"description"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

// ProfileUpdateResponse may carry a freshly issued token when the
// backend re-signs identity claims after a profile change.
type ProfileUpdateResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type WatchlistStat struct {
	Status WatchStatus `json:"status"`
	Count  int         `json:"count"`
}

type UserStats struct {
	WatchlistStats []WatchlistStat `json:"watchlistStats"`
	MeanScore      float64         `json:"meanScore"`
	TotalEntries   int             `json:"totalEntries"`
	ReviewsCount   int             `json:"reviewsCount"`
}

func (s *UserStats) Count(status WatchStatus) int {
	if s == nil {
		return 0
	}
	for _, st := range s.WatchlistStats {
		if st.Status == status {
			return st.Count
		}
	}
	return 0
}

type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
	Folder    string `json:"folder,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
