package tags

import (
	"github.com/janisto/todo-backend/internal/platform/timeutil"
	"github.com/janisto/todo-backend/internal/service/todo"
)

// Tag is the wire form of a tag.
type Tag struct {
	ID        string        `json:"id"         doc:"Unique identifier"             example:"3f2b8c1e-7d4a-4b9e-9c1a-2f6d8e0a5b7c"`
	Name      string        `json:"name"       doc:"Tag name, unique per user"     example:"work"`
	Color     *string       `json:"color"      doc:"Hex color or null"             example:"#3b82f6"`
	UserID    string        `json:"user_id"    doc:"Owner of the tag"              example:"user-123"`
	CreatedAt timeutil.Time `json:"created_at" doc:"Creation timestamp"            example:"2024-01-15T10:30:00.000Z"`
}

// FromService converts a service tag to its wire form.
func FromService(t todo.Tag) Tag {
	return Tag{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		UserID:    t.UserID,
		CreatedAt: timeutil.Time{Time: t.CreatedAt},
	}
}

// FromServiceList converts tags, never returning nil so lists encode as [].
func FromServiceList(in []todo.Tag) []Tag {
	out := make([]Tag, 0, len(in))
	for _, t := range in {
		out = append(out, FromService(t))
	}
	return out
}
