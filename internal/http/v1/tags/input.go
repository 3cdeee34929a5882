package tags

import "github.com/janisto/todo-backend/internal/platform/optional"

// TagListInput for GET /tags.
type TagListInput struct{}

// TagCreateInput for POST /tags.
type TagCreateInput struct {
	Body struct {
		Name  string                 `json:"name"            minLength:"1" maxLength:"50" required:"true" doc:"Tag name"               example:"work"`
		Color optional.Value[string] `json:"color,omitempty"                                              doc:"Hex color like #RRGGBB" example:"#3b82f6"`
	}
}

// TagUpdateInput for PUT /tags/{id}. Only provided fields change; null clears
// the color.
type TagUpdateInput struct {
	ID   string `path:"id" doc:"Tag ID"`
	Body struct {
		Name  *string                `json:"name,omitempty"  minLength:"1" maxLength:"50" doc:"Tag name"               example:"work"`
		Color optional.Value[string] `json:"color,omitempty"                              doc:"Hex color like #RRGGBB" example:"#3b82f6"`
	}
}

// TagDeleteInput for DELETE /tags/{id}.
type TagDeleteInput struct {
	ID string `path:"id" doc:"Tag ID"`
}
