package api

import (
	"context"
	"net/http"
	"net/url"

	"cinelume/internal/apperr"
	"cinelume/internal/models"
)

// Login exchanges credentials for a signed token. Only a 200 with a
// non-empty token counts as success.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (string, error) {
	var resp models.TokenResponse
	status, err := c.do(ctx, http.MethodPost, "/users/login", creds, &resp)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || resp.Token == "" {
		return "", &apperr.Error{Kind: apperr.KindRequest, Op: "POST /users/login", Status: status, Message: "login response carried no token"}
	}
	return resp.Token, nil
}

// Register creates an account. The backend answers 201 on success.
func (c *Client) Register(ctx context.Context, reg models.Registration) error {
	status, err := c.do(ctx, http.MethodPost, "/users/register", reg, nil)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return &apperr.Error{Kind: apperr.KindRequest, Op: "POST /users/register", Status: status, Message: "unexpected registration response"}
	}
	return nil
}

func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if _, err := c.do(ctx, http.MethodGet, "/users/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.ProfileUpdateResponse, error) {
	var resp models.ProfileUpdateResponse
	if _, err := c.do(ctx, http.MethodPut, "/users/profile", update, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	_, err := c.do(ctx, http.MethodPut, "/users/password", change, nil)
	return err
}

func (c *Client) UserStats(ctx context.Context, username string) (*models.UserStats, error) {
	var stats models.UserStats
	if _, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) UserReviews(ctx context.Context, username string) ([]models.Review, error) {
	var reviews []models.Review
	if _, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/reviews", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *Client) UploadSignature(ctx context.Context) (*models.UploadSignature, error) {
	var sig models.UploadSignature
	if _, err := c.do(ctx, http.MethodGet, "/users/upload-signature", nil, &sig); err != nil {
		return nil, err
	}
	return &sig, nil
}
