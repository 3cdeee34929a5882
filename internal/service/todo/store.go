package todo

import "context"

// TaskMutation edits a stored task in place inside the store's transaction.
// It may return a new task that the store inserts in the same transaction.
type TaskMutation func(task *Task) (spawn *Task, err error)

// TagMutation edits a stored tag in place inside the store's transaction.
type TagMutation func(tag *Tag) error

// Store persists tags and tasks partitioned by user ID. Implementations must
// be safe for concurrent use, return copies, and report:
//   - ErrNotFound / ErrTagNotFound for unknown IDs or IDs owned by another user
//   - ErrTagExists when a tag name collides case-insensitively with another
//     tag of the same user
//
// Deleting a tag removes its ID from every task of the user.
type Store interface {
	ListTags(ctx context.Context, userID string) ([]Tag, error)
	CreateTag(ctx context.Context, tag Tag) error
	UpdateTag(ctx context.Context, userID, id string, mutate TagMutation) (*Tag, error)
	DeleteTag(ctx context.Context, userID, id string) error

	ListTasks(ctx context.Context, userID string) ([]Task, error)
	GetTask(ctx context.Context, userID, id string) (*Task, error)
	CreateTask(ctx context.Context, task Task) error
	UpdateTask(ctx context.Context, userID, id string, mutate TaskMutation) (updated, spawned *Task, err error)
	DeleteTask(ctx context.Context, userID, id string) error
}
