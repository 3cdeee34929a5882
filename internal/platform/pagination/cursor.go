package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
)

var (
	// ErrInvalidCursor indicates the cursor could not be decoded or belongs to
	// another resource type.
	ErrInvalidCursor = errors.New("invalid cursor format")
	// ErrCursorNotFound indicates the cursor points at an item that is no
	// longer part of the result set.
	ErrCursorNotFound = errors.New("cursor does not match any item")
)

// Cursor is an opaque pagination position: a resource type and the ID of the
// last item seen. An empty Value means "from the start".
type Cursor struct {
	Type  string
	Value string
}

// Encode returns a URL-safe base64 form of "type:value".
func (c Cursor) Encode() string {
	return base64.RawURLEncoding.EncodeToString([]byte(c.Type + ":" + c.Value))
}

// DecodeCursor parses s and checks that it was issued for cursorType.
// An empty string decodes to the zero cursor.
func DecodeCursor(s, cursorType string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	typ, value, ok := strings.Cut(string(b), ":")
	if !ok || typ != cursorType {
		return Cursor{}, ErrInvalidCursor
	}
	return Cursor{Type: typ, Value: value}, nil
}
