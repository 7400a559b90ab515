package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	base := &Error{Kind: KindRequest, Op: "GET /watchlist", Status: 500, Message: "boom"}
	wrapped := fmt.Errorf("loading watchlist: %w", base)

	assert.Equal(t, KindRequest, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindRequest))
	assert.False(t, Is(wrapped, KindValidation))
	assert.Equal(t, 500, StatusOf(wrapped))
	assert.Equal(t, "GET /watchlist: boom (status 500)", base.Error())
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("plain")
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.False(t, Is(nil, KindUnknown))
	assert.Equal(t, 0, StatusOf(err))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "backend message", err: &Error{Kind: KindRequest, Message: "Item not found in watchlist"}, want: "Item not found in watchlist"},
		{name: "request without message", err: Wrap(KindRequest, "GET /x", errors.New("dial tcp")), want: "The request could not be completed."},
		{name: "authentication", err: &Error{Kind: KindAuthentication}, want: "Invalid email or password."},
		{name: "validation", err: Validation("review", "Please select a rating."), want: "Please select a rating."},
		{name: "foreign", err: errors.New("raw"), want: "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
