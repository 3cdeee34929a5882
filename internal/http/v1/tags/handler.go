package tags

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/todo-backend/internal/platform/middleware"
	"github.com/janisto/todo-backend/internal/service/todo"
)

// Register wires tag routes into api. prefix is the path the API is mounted
// under and is used for Location headers.
func Register(api huma.API, svc todo.Service, prefix string) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tags",
		Method:      http.MethodGet,
		Path:        "/tags",
		Summary:     "List tags",
		Description: "Returns all tags of the current user ordered by name.",
		Tags:        []string{"Tags"},
	}, func(ctx context.Context, _ *TagListInput) (*TagListOutput, error) {
		list, err := svc.ListTags(ctx, middleware.OwnerFromContext(ctx))
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &TagListOutput{Body: TagListData{Tags: FromServiceList(list)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-tag",
		Method:        http.MethodPost,
		Path:          "/tags",
		Summary:       "Create tag",
		Description:   "Creates a tag. Names are unique per user, ignoring case.",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *TagCreateInput) (*TagCreateOutput, error) {
		tag, err := svc.CreateTag(ctx, middleware.OwnerFromContext(ctx), todo.CreateTagParams{
			Name:  input.Body.Name,
			Color: input.Body.Color.Ptr(),
		})
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &TagCreateOutput{
			Location: prefix + "/tags/" + tag.ID,
			Body:     TagData{Tag: FromService(*tag)},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tag",
		Method:      http.MethodPut,
		Path:        "/tags/{id}",
		Summary:     "Update tag",
		Description: "Renames a tag or changes its color. Only provided fields are updated.",
		Tags:        []string{"Tags"},
	}, func(ctx context.Context, input *TagUpdateInput) (*TagUpdateOutput, error) {
		params := todo.UpdateTagParams{Name: input.Body.Name}
		if input.Body.Color.Sent {
			params.Color = todo.Optional[string]{Set: true, Value: input.Body.Color.Ptr()}
		}
		tag, err := svc.UpdateTag(ctx, middleware.OwnerFromContext(ctx), input.ID, params)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &TagUpdateOutput{Body: TagData{Tag: FromService(*tag)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-tag",
		Method:        http.MethodDelete,
		Path:          "/tags/{id}",
		Summary:       "Delete tag",
		Description:   "Deletes a tag and removes it from every task of the user.",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *TagDeleteInput) (*struct{}, error) {
		if err := svc.DeleteTag(ctx, middleware.OwnerFromContext(ctx), input.ID); err != nil {
			return nil, mapServiceError(err)
		}
		return nil, nil
	})
}

func mapServiceError(err error) error {
	var verr *todo.ValidationError
	switch {
	case errors.As(err, &verr):
		return validationProblem(verr)
	case errors.Is(err, todo.ErrTagNotFound), errors.Is(err, todo.ErrNotFound):
		return huma.Error404NotFound("tag not found")
	case errors.Is(err, todo.ErrTagExists):
		return huma.Error409Conflict("tag with this name already exists")
	default:
		return huma.Error500InternalServerError("internal error")
	}
}

// validationProblem renders a service validation error as a 422 pointing at
// the offending body field.
func validationProblem(verr *todo.ValidationError) error {
	location := "body"
	if verr.Field != "" && verr.Field != location {
		location += "." + verr.Field
	}
	return huma.Error422UnprocessableEntity("validation failed", &huma.ErrorDetail{
		Location: location,
		Message:  verr.Message,
		Value:    verr.Value,
	})
}
