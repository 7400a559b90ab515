package models

const (
	MinRating = 1
	MaxRating = 10
)

type Review struct {
	ID                int    `json:"id"`
	MediaID           int    `json:"mediaId,omitempty"`
	MediaType         string `json:"mediaType,omitempty"`
	MediaTitle        string `json:"mediaTitle,omitempty"`
	MediaPosterPath   string `json:"mediaPosterPath,omitempty"`
	Rating            int    `json:"rating"`
	Comment           string `json:"comment"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	CreatedAt         string `json:"createdAt"`
}

// ReviewPayload is the body of POST /reviews.
type ReviewPayload struct {
	MediaID         int    `json:"mediaId"`
	MediaType       string `json:"mediaType"`
	MediaTitle      string `json:"mediaTitle"`
	MediaPosterPath string `json:"mediaPosterPath"`
	Rating          int    `json:"rating"`
	Comment         string `json:"comment"`
}

type ReviewUpdate struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
