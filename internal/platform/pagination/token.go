package pagination

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

type tokenPayload struct {
	Offset int `json:"offset"`
}

// EncodeToken serialises the offset into an opaque URL-safe page token.
func EncodeToken(offset int) string {
	if offset <= 0 {
		return ""
	}
	data, err := json.Marshal(tokenPayload{Offset: offset})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeToken parses a page token produced by EncodeToken.
func DecodeToken(token string) (int, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, ErrInvalidPageToken
	}
	var payload tokenPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, ErrInvalidPageToken
	}
	if payload.Offset < 0 {
		return 0, ErrInvalidPageToken
	}
	return payload.Offset, nil
}
