package tags

// TagListData wraps the tag list.
type TagListData struct {
	Tags []Tag `json:"tags" doc:"Tags ordered by name"`
}

// TagData wraps a single tag.
type TagData struct {
	Tag Tag `json:"tag"`
}

// TagListOutput for GET /tags.
type TagListOutput struct {
	Body TagListData
}

// TagCreateOutput for POST /tags (201 Created).
type TagCreateOutput struct {
	Location string `header:"Location" doc:"URL of the created tag"`
	Body     TagData
}

// TagUpdateOutput for PUT /tags/{id}.
type TagUpdateOutput struct {
	Body TagData
}
