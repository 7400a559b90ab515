package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cinelume/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSubject = errors.New("token has no subject")
	ErrTokenExpired   = errors.New("token expired")
)

// Identity is who the session belongs to, exactly as the token claims it.
type Identity struct {
	ID        int
	Username  string
	AvatarURL string
}

// Decode reads the identity claims of a signed token without verifying
// the signature; the backend verifies on every request. A token whose exp
// claim lies before now is rejected like a malformed one.
func Decode(token string, now time.Time) (Identity, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithJSONNumber())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Identity{}, apperr.Wrap(apperr.KindDecode, "decode token", err)
	}

	id, err := numericClaim(claims["sub"])
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.KindDecode, "decode token", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.KindDecode, "decode token", err)
	}
	if exp != nil && exp.Before(now) {
		return Identity{}, apperr.Wrap(apperr.KindDecode, "decode token", ErrTokenExpired)
	}

	username, _ := claims["username"].(string)
	avatar, _ := claims["pfp"].(string)

	return Identity{ID: id, Username: username, AvatarURL: avatar}, nil
}

func numericClaim(v any) (int, error) {
	switch sub := v.(type) {
	case nil:
		return 0, ErrMissingSubject
	case json.Number:
		n, err := sub.Int64()
		if err != nil {
			return 0, fmt.Errorf("invalid subject %q: %w", sub, err)
		}
		return int(n), nil
	case float64:
		return int(sub), nil
	case string:
		n, err := strconv.Atoi(sub)
		if err != nil {
			return 0, fmt.Errorf("invalid subject %q: %w", sub, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid subject type %T", v)
	}
}
