package todo

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	applog "github.com/janisto/todo-backend/internal/platform/logging"
)

// Service defines the todo operations exposed over HTTP. Every operation is
// scoped to userID; resources of other users behave as if they did not exist.
type Service interface {
	ListTags(ctx context.Context, userID string) ([]Tag, error)
	CreateTag(ctx context.Context, userID string, params CreateTagParams) (*Tag, error)
	UpdateTag(ctx context.Context, userID, id string, params UpdateTagParams) (*Tag, error)
	DeleteTag(ctx context.Context, userID, id string) error

	ListTasks(ctx context.Context, userID string, filter ListFilter) (*TaskList, error)
	GetTask(ctx context.Context, userID, id string) (*Task, error)
	CreateTask(ctx context.Context, userID string, params CreateTaskParams) (*Task, error)
	UpdateTask(ctx context.Context, userID, id string, params UpdateTaskParams) (*TaskUpdate, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

// TodoService implements Service on top of a Store. Validation, tag
// resolution, filtering and recurrence live here so all stores behave alike.
type TodoService struct {
	store Store
	now   func() time.Time
	newID func() string
}

// Option configures a TodoService.
type Option func(*TodoService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *TodoService) { s.now = now }
}

// WithIDGenerator overrides how task and tag IDs are generated.
func WithIDGenerator(newID func() string) Option {
	return func(s *TodoService) { s.newID = newID }
}

// NewService creates a TodoService backed by store.
func NewService(store Store, opts ...Option) *TodoService {
	s := &TodoService{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TodoService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *TodoService) audit(ctx context.Context, action, userID, resourceType, id string, err error) {
	ev := applog.AuditEvent{
		Action:       action,
		UserID:       userID,
		ResourceType: resourceType,
		ResourceID:   id,
		Result:       applog.AuditSuccess,
	}
	if err != nil {
		ev.Result = applog.AuditFailure
		ev.Details = map[string]any{"error": categorizeError(err)}
	}
	applog.LogAuditEvent(ctx, ev)
}

// ListTags returns the user's tags ordered by name.
func (s *TodoService) ListTags(ctx context.Context, userID string) ([]Tag, error) {
	tags, err := s.store.ListTags(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	slices.SortFunc(tags, func(a, b Tag) int {
		if c := cmp.Compare(tagNameKey(a.Name), tagNameKey(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return tags, nil
}

func (s *TodoService) CreateTag(ctx context.Context, userID string, params CreateTagParams) (*Tag, error) {
	tag, err := s.newTag(userID, params)
	if err == nil {
		err = s.store.CreateTag(ctx, tag)
	}
	s.audit(ctx, "create", userID, "tag", tag.ID, err)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *TodoService) newTag(userID string, params CreateTagParams) (Tag, error) {
	name, err := normalizeTagName(params.Name)
	if err != nil {
		return Tag{}, err
	}
	color, err := normalizeColor(params.Color)
	if err != nil {
		return Tag{}, err
	}
	return Tag{
		ID:        s.newID(),
		Name:      name,
		Color:     color,
		UserID:    userID,
		CreatedAt: s.timestamp(),
	}, nil
}

func (s *TodoService) UpdateTag(ctx context.Context, userID, id string, params UpdateTagParams) (*Tag, error) {
	tag, err := s.updateTag(ctx, userID, id, params)
	s.audit(ctx, "update", userID, "tag", id, err)
	return tag, err
}

func (s *TodoService) updateTag(ctx context.Context, userID, id string, params UpdateTagParams) (*Tag, error) {
	if params.empty() {
		return nil, invalid("body", "at least one field must be provided", nil)
	}
	var name string
	if params.Name != nil {
		n, err := normalizeTagName(*params.Name)
		if err != nil {
			return nil, err
		}
		name = n
	}
	color := params.Color
	if color.Set {
		c, err := normalizeColor(color.Value)
		if err != nil {
			return nil, err
		}
		color.Value = c
	}

	return s.store.UpdateTag(ctx, userID, id, func(tag *Tag) error {
		if params.Name != nil {
			tag.Name = name
		}
		color.apply(&tag.Color)
		return nil
	})
}

// DeleteTag removes the tag and detaches it from the user's tasks.
func (s *TodoService) DeleteTag(ctx context.Context, userID, id string) error {
	err := s.store.DeleteTag(ctx, userID, id)
	s.audit(ctx, "delete", userID, "tag", id, err)
	return err
}

// ListTasks returns the user's tasks matching filter, sorted as requested.
func (s *TodoService) ListTasks(ctx context.Context, userID string, filter ListFilter) (*TaskList, error) {
	filter = filter.withDefaults()
	if err := filter.validate(); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	byID, err := s.tagIndex(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		attachTags(&tasks[i], byID)
	}
	matched := filter.Apply(tasks)
	return &TaskList{Tasks: matched, Total: len(tasks), Filtered: len(matched)}, nil
}

func (s *TodoService) GetTask(ctx context.Context, userID, id string) (*Task, error) {
	task, err := s.store.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolveTags(ctx, userID, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TodoService) CreateTask(ctx context.Context, userID string, params CreateTaskParams) (*Task, error) {
	task, err := s.createTask(ctx, userID, params)
	id := ""
	if task != nil {
		id = task.ID
	}
	s.audit(ctx, "create", userID, "task", id, err)
	return task, err
}

func (s *TodoService) createTask(ctx context.Context, userID string, params CreateTaskParams) (*Task, error) {
	title, err := normalizeTitle(params.Title)
	if err != nil {
		return nil, err
	}
	desc, err := normalizeDescription(params.Description)
	if err != nil {
		return nil, err
	}
	priority := cmp.Or(params.Priority, PriorityMedium)
	if err := validatePriority(priority); err != nil {
		return nil, err
	}
	if err := validateRecurrence(params.Recurrence); err != nil {
		return nil, err
	}
	tagIDs := dedupeIDs(params.TagIDs)
	if err := s.checkTagIDs(ctx, userID, tagIDs); err != nil {
		return nil, err
	}
	if tagIDs == nil {
		tagIDs = []string{}
	}

	now := s.timestamp()
	task := &Task{
		ID:          s.newID(),
		Title:       title,
		Description: desc,
		Priority:    priority,
		DueDate:     normalizeTime(params.DueDate),
		Recurrence:  clonePtr(params.Recurrence),
		ReminderAt:  normalizeTime(params.ReminderAt),
		TagIDs:      tagIDs,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := checkSchedule(task); err != nil {
		return nil, err
	}
	if err := s.store.CreateTask(ctx, *task); err != nil {
		return nil, err
	}
	if err := s.resolveTags(ctx, userID, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies a partial update. Completing a pending recurring task
// creates its next occurrence atomically with the update.
func (s *TodoService) UpdateTask(ctx context.Context, userID, id string, params UpdateTaskParams) (*TaskUpdate, error) {
	res, err := s.updateTask(ctx, userID, id, params)
	s.audit(ctx, "update", userID, "task", id, err)
	if err == nil && res.NextOccurrence != nil {
		s.audit(ctx, "create", userID, "task", res.NextOccurrence.ID, nil)
	}
	return res, err
}

func (s *TodoService) updateTask(ctx context.Context, userID, id string, params UpdateTaskParams) (*TaskUpdate, error) {
	if params.empty() {
		return nil, invalid("body", "at least one field must be provided", nil)
	}

	var title string
	if params.Title != nil {
		t, err := normalizeTitle(*params.Title)
		if err != nil {
			return nil, err
		}
		title = t
	}
	desc := params.Description
	if desc.Set {
		d, err := normalizeDescription(desc.Value)
		if err != nil {
			return nil, err
		}
		desc.Value = d
	}
	if params.Priority != nil {
		if err := validatePriority(*params.Priority); err != nil {
			return nil, err
		}
	}
	if err := validateRecurrence(params.Recurrence.Value); err != nil {
		return nil, err
	}
	due, reminder := params.DueDate, params.ReminderAt
	due.Value = normalizeTime(due.Value)
	reminder.Value = normalizeTime(reminder.Value)

	tagIDs := dedupeIDs(params.TagIDs)
	if err := s.checkTagIDs(ctx, userID, tagIDs); err != nil {
		return nil, err
	}

	now := s.timestamp()
	updated, spawned, err := s.store.UpdateTask(ctx, userID, id, func(t *Task) (*Task, error) {
		wasCompleted := t.Completed
		if params.Title != nil {
			t.Title = title
		}
		desc.apply(&t.Description)
		if params.Completed != nil {
			t.Completed = *params.Completed
		}
		if params.Priority != nil {
			t.Priority = *params.Priority
		}
		due.apply(&t.DueDate)
		params.Recurrence.apply(&t.Recurrence)
		reminder.apply(&t.ReminderAt)
		if tagIDs != nil {
			t.TagIDs = tagIDs
		}
		if err := checkSchedule(t); err != nil {
			return nil, err
		}
		t.UpdatedAt = now

		if !wasCompleted && t.Completed {
			return nextOccurrence(*t, s.newID(), now), nil
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	res := &TaskUpdate{Task: updated, NextOccurrence: spawned}
	if spawned != nil {
		err = s.resolveTags(ctx, userID, updated, spawned)
	} else {
		err = s.resolveTags(ctx, userID, updated)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *TodoService) DeleteTask(ctx context.Context, userID, id string) error {
	err := s.store.DeleteTask(ctx, userID, id)
	s.audit(ctx, "delete", userID, "task", id, err)
	return err
}

// checkTagIDs verifies that every ID names a tag of the user.
func (s *TodoService) checkTagIDs(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	byID, err := s.tagIndex(ctx, userID)
	if err != nil {
		return err
	}
	var unknown []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return invalid("tag_ids", "unknown tag ids: "+strings.Join(unknown, ", "), unknown)
	}
	return nil
}

// resolveTags fills Task.Tags from TagIDs.
func (s *TodoService) resolveTags(ctx context.Context, userID string, tasks ...*Task) error {
	byID, err := s.tagIndex(ctx, userID)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		attachTags(task, byID)
	}
	return nil
}

func (s *TodoService) tagIndex(ctx context.Context, userID string) (map[string]Tag, error) {
	tags, err := s.store.ListTags(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	byID := make(map[string]Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}
	return byID, nil
}

// attachTags resolves TagIDs in order; IDs without a tag are skipped.
func attachTags(task *Task, byID map[string]Tag) {
	task.Tags = make([]Tag, 0, len(task.TagIDs))
	for _, id := range task.TagIDs {
		if tag, ok := byID[id]; ok {
			task.Tags = append(task.Tags, tag)
		}
	}
}

var _ Service = (*TodoService)(nil)
