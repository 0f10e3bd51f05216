package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// cursor is the keyset position after which the next page resumes. It
// carries both possible sort keys so the encoding is independent of the
// active sort column.
type cursor struct {
	CreatedAt time.Time `json:"c"`
	Name      string    `json:"n"`
	ID        string    `json:"i"`
}

// encodeCursor renders a cursor as an opaque URL-safe token.
func encodeCursor(c cursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// decodeCursor parses a token produced by encodeCursor.
func decodeCursor(token string) (cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return cursor{}, fmt.Errorf("malformed cursor: %w", err)
	}
	var c cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return cursor{}, fmt.Errorf("malformed cursor: %w", err)
	}
	return c, nil
}
