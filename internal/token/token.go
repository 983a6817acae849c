// Package token extracts and validates the expiry of bearer tokens without
// verifying their signature. The client never holds the signing key; it only
// needs to know whether re-login is required.
package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrMalformed = errors.New("token is not a three-segment jwt")
	ErrNoExpiry  = errors.New("token payload has no numeric exp claim")
)

// ExpiresAt reads the numeric exp claim (epoch seconds) from the token's
// payload segment.
func ExpiresAt(tok string) (time.Time, error) {
	payload, err := Payload(tok)
	if err != nil {
		return time.Time{}, err
	}
	exp, ok := payload["exp"].(float64)
	if !ok {
		return time.Time{}, ErrNoExpiry
	}
	return time.Unix(int64(exp), 0), nil
}

// Expired reports whether the token's lifetime has passed at the reference
// time. Fail-safe: a token whose expiry cannot be determined is expired.
func Expired(tok string, reference time.Time) bool {
	exp, err := ExpiresAt(tok)
	if err != nil {
		return true
	}
	return !reference.Before(exp)
}

// Payload decodes the middle segment of a three-segment dot-delimited token
// as a JSON object.
func Payload(tok string) (map[string]any, error) {
	segments := strings.Split(tok, ".")
	if len(segments) != 3 {
		return nil, ErrMalformed
	}
	raw, err := decodeSegment(segments[1])
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// decodeSegment pads the segment with '=' to a multiple of 4 and decodes it.
// A segment of length 4k+1 cannot be valid base64 of any length. Both the
// standard and URL alphabets are accepted since backends have emitted both.
func decodeSegment(seg string) ([]byte, error) {
	if rem := len(seg) % 4; rem > 0 {
		if rem == 1 {
			return nil, base64.CorruptInputError(len(seg))
		}
		seg += strings.Repeat("=", 4-rem)
	}
	if b, err := base64.StdEncoding.DecodeString(seg); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(seg)
}
