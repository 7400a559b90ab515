package api

import (
	"context"
	"fmt"
	"net/http"

	"cinelume/internal/models"
)

func (c *Client) AddReview(ctx context.Context, payload models.ReviewPayload) error {
	_, err := c.do(ctx, http.MethodPost, "/reviews", payload, nil)
	return err
}

func (c *Client) UpdateReview(ctx context.Context, id int, update models.ReviewUpdate) error {
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/reviews/%d", id), update, nil)
	return err
}
