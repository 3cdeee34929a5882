package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	applog "github.com/janisto/todo-backend/internal/platform/logging"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func sequentialIDs() func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func newTestService() *TodoService {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	return NewService(NewMemoryStore(), WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
}

func ptr[T any](v T) *T { return &v }

func mustCreateTag(t *testing.T, s *TodoService, user, name string) *Tag {
	t.Helper()
	tag, err := s.CreateTag(context.Background(), user, CreateTagParams{Name: name})
	if err != nil {
		t.Fatalf("create tag %q: %v", name, err)
	}
	return tag
}

func mustCreateTask(t *testing.T, s *TodoService, user string, params CreateTaskParams) *Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), user, params)
	if err != nil {
		t.Fatalf("create task %q: %v", params.Title, err)
	}
	return task
}

func assertInvalid(t *testing.T, err error, field string) {
	t.Helper()
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != field {
		t.Fatalf("expected validation error on %q, got %v", field, err)
	}
}

func TestCreateTagNormalizes(t *testing.T) {
	s := newTestService()
	tag, err := s.CreateTag(context.Background(), "u1", CreateTagParams{Name: "  Work  ", Color: ptr("#3B82F6")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag.Name != "Work" || *tag.Color != "#3b82f6" || tag.UserID != "u1" || tag.ID == "" {
		t.Fatalf("unexpected tag %+v", tag)
	}
	if tag.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt")
	}

	blank, err := s.CreateTag(context.Background(), "u1", CreateTagParams{Name: "Home", Color: ptr("")})
	if err != nil || blank.Color != nil {
		t.Fatalf("blank color should be nil, got %+v (%v)", blank, err)
	}
}

func TestCreateTagValidation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	_, err := s.CreateTag(ctx, "u1", CreateTagParams{Name: "   "})
	assertInvalid(t, err, "name")
	_, err = s.CreateTag(ctx, "u1", CreateTagParams{Name: strings.Repeat("x", 51)})
	assertInvalid(t, err, "name")
	_, err = s.CreateTag(ctx, "u1", CreateTagParams{Name: "ok", Color: ptr("blue")})
	assertInvalid(t, err, "color")

	mustCreateTag(t, s, "u1", "Urgent")
	if _, err := s.CreateTag(ctx, "u1", CreateTagParams{Name: "URGENT"}); !errors.Is(err, ErrTagExists) {
		t.Fatalf("expected ErrTagExists, got %v", err)
	}
}

func TestListTagsSortedByName(t *testing.T) {
	s := newTestService()
	for _, name := range []string{"beta", "Alpha", "gamma"} {
		mustCreateTag(t, s, "u1", name)
	}
	mustCreateTag(t, s, "u2", "aaa")

	tags, err := s.ListTags(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var names []string
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	if strings.Join(names, ",") != "Alpha,beta,gamma" {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestUpdateTag(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	tag := mustCreateTag(t, s, "u1", "Work")
	mustCreateTag(t, s, "u1", "Home")

	if _, err := s.UpdateTag(ctx, "u1", tag.ID, UpdateTagParams{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty update, got %v", err)
	}

	got, err := s.UpdateTag(ctx, "u1", tag.ID, UpdateTagParams{Color: Some("#FF0000")})
	if err != nil || got.Name != "Work" || *got.Color != "#ff0000" {
		t.Fatalf("unexpected result %+v (%v)", got, err)
	}
	got, err = s.UpdateTag(ctx, "u1", tag.ID, UpdateTagParams{Color: Null[string]()})
	if err != nil || got.Color != nil {
		t.Fatalf("expected color cleared, got %+v (%v)", got, err)
	}
	if _, err := s.UpdateTag(ctx, "u1", tag.ID, UpdateTagParams{Name: ptr("home")}); !errors.Is(err, ErrTagExists) {
		t.Fatalf("expected ErrTagExists, got %v", err)
	}
	if _, err := s.UpdateTag(ctx, "u2", tag.ID, UpdateTagParams{Name: ptr("x")}); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
}

func TestDeleteTagRemovesFromTasks(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	tag := mustCreateTag(t, s, "u1", "Work")
	task := mustCreateTask(t, s, "u1", CreateTaskParams{Title: "Report", TagIDs: []string{tag.ID}})
	if len(task.Tags) != 1 || task.Tags[0].Name != "Work" {
		t.Fatalf("expected resolved tag, got %+v", task.Tags)
	}

	if err := s.DeleteTag(ctx, "u1", tag.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := s.GetTask(ctx, "u1", task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Tags) != 0 || len(got.TagIDs) != 0 {
		t.Fatalf("expected tag removed, got %+v", got)
	}
	if err := s.DeleteTag(ctx, "u1", tag.ID); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	s := newTestService()
	task := mustCreateTask(t, s, "u1", CreateTaskParams{Title: "  Buy milk ", Description: ptr("   ")})

	if task.Title != "Buy milk" {
		t.Fatalf("expected trimmed title, got %q", task.Title)
	}
	if task.Description != nil {
		t.Fatalf("blank description should be nil, got %q", *task.Description)
	}
	if task.Priority != PriorityMedium || task.Completed {
		t.Fatalf("unexpected defaults %+v", task)
	}
	if task.Tags == nil || task.TagIDs == nil {
		t.Fatal("tags must be empty slices, not nil")
	}
	if !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Fatal("expected CreatedAt == UpdatedAt on create")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	s := newTestService()
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		params CreateTaskParams
		field  string
	}{
		{name: "empty title", params: CreateTaskParams{Title: " "}, field: "title"},
		{name: "long title", params: CreateTaskParams{Title: strings.Repeat("t", 201)}, field: "title"},
		{name: "long description", params: CreateTaskParams{Title: "x", Description: ptr(strings.Repeat("d", 2001))}, field: "description"},
		{name: "bad priority", params: CreateTaskParams{Title: "x", Priority: "urgent"}, field: "priority"},
		{name: "bad recurrence", params: CreateTaskParams{Title: "x", DueDate: &due, Recurrence: ptr(Recurrence("yearly"))}, field: "recurrence"},
		{name: "recurrence without due date", params: CreateTaskParams{Title: "x", Recurrence: ptr(RecurrenceDaily)}, field: "due_date"},
		{name: "unknown tag", params: CreateTaskParams{Title: "x", TagIDs: []string{"nope"}}, field: "tag_ids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateTask(context.Background(), "u1", tt.params)
			assertInvalid(t, err, tt.field)
		})
	}
}

func TestCreateTaskRejectsOtherUsersTags(t *testing.T) {
	s := newTestService()
	foreign := mustCreateTag(t, s, "u2", "theirs")
	_, err := s.CreateTask(context.Background(), "u1", CreateTaskParams{Title: "x", TagIDs: []string{foreign.ID}})
	assertInvalid(t, err, "tag_ids")
}

func TestCreateTaskDedupesTags(t *testing.T) {
	s := newTestService()
	a := mustCreateTag(t, s, "u1", "a")
	b := mustCreateTag(t, s, "u1", "b")
	task := mustCreateTask(t, s, "u1", CreateTaskParams{Title: "x", TagIDs: []string{b.ID, a.ID, b.ID}})
	if len(task.Tags) != 2 || task.Tags[0].ID != b.ID || task.Tags[1].ID != a.ID {
		t.Fatalf("unexpected tags %+v", task.Tags)
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	due := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tag := mustCreateTag(t, s, "u1", "Work")
	task := mustCreateTask(t, s, "u1", CreateTaskParams{
		Title: "Draft", Description: ptr("first"), DueDate: &due, TagIDs: []string{tag.ID},
	})

	res, err := s.UpdateTask(ctx, "u1", task.ID, UpdateTaskParams{Priority: ptr(PriorityHigh)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got := res.Task
	if got.Priority != PriorityHigh || got.Title != "Draft" || *got.Description != "first" || len(got.Tags) != 1 {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if !got.UpdatedAt.After(task.UpdatedAt) {
		t.Fatal("expected UpdatedAt to advance")
	}
	if res.NextOccurrence != nil {
		t.Fatal("did not expect next occurrence")
	}

	res, err = s.UpdateTask(ctx, "u1", task.ID, UpdateTaskParams{
		Description: Null[string](),
		DueDate:     Null[time.Time](),
		TagIDs:      []string{},
	})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if res.Task.Description != nil || res.Task.DueDate != nil || len(res.Task.Tags) != 0 {
		t.Fatalf("expected fields cleared: %+v", res.Task)
	}
}

func TestUpdateTaskErrors(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	due := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	task := mustCreateTask(t, s, "u1", CreateTaskParams{Title: "x", DueDate: &due, Recurrence: ptr(RecurrenceDaily)})

	_, err := s.UpdateTask(ctx, "u1", task.ID, UpdateTaskParams{})
	assertInvalid(t, err, "body")
	_, err = s.UpdateTask(ctx, "u1", task.ID, UpdateTaskParams{DueDate: Null[time.Time]()})
	assertInvalid(t, err, "due_date")
	_, err = s.UpdateTask(ctx, "u1", task.ID, UpdateTaskParams{Title: ptr("")})
	assertInvalid(t, err, "title")
	_, err = s.UpdateTask(ctx, "u1", task.ID, UpdateTaskParams{TagIDs: []string{"missing"}})
	assertInvalid(t, err, "tag_ids")

	if _, err := s.UpdateTask(ctx, "u2", task.ID, UpdateTaskParams{Title: ptr("y")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, _ := s.GetTask(ctx, "u1", task.ID)
	if got.DueDate == nil {
		t.Fatal("rejected update must not persist")
	}
}

func TestCompletingRecurringTaskSpawnsNext(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	due := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	reminder := due.Add(-30 * time.Minute)
	tag := mustCreateTag(t, s, "u1", "Bills")
	task := mustCreateTask(t, s, "u1", CreateTaskParams{
		Title: "Pay rent", Priority: PriorityHigh, DueDate: &due, ReminderAt: &reminder,
		Recurrence: ptr(RecurrenceMonthly), TagIDs: []string{tag.ID},
	})

	res, err := s.UpdateTask(ctx, "u1", task.ID, UpdateTaskParams{Completed: ptr(true)})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !res.Task.Completed {
		t.Fatal("expected task completed")
	}
	next := res.NextOccurrence
	if next == nil {
		t.Fatal("expected next occurrence")
	}
	wantDue := time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)
	if next.ID == task.ID || next.Completed || !next.DueDate.Equal(wantDue) {
		t.Fatalf("unexpected next occurrence %+v", next)
	}
	if !next.ReminderAt.Equal(wantDue.Add(-30 * time.Minute)) {
		t.Fatalf("reminder offset not kept: %v", next.ReminderAt)
	}
	if next.Title != "Pay rent" || next.Priority != PriorityHigh || *next.Recurrence != RecurrenceMonthly {
		t.Fatalf("fields not copied: %+v", next)
	}
	if len(next.Tags) != 1 || next.Tags[0].ID != tag.ID {
		t.Fatalf("tags not copied: %+v", next.Tags)
	}

	list, err := s.ListTasks(ctx, "u1", ListFilter{})
	if err != nil || list.Total != 2 {
		t.Fatalf("expected 2 tasks, got %+v (%v)", list, err)
	}

	// Already completed: updating again must not spawn another.
	res, err = s.UpdateTask(ctx, "u1", task.ID, UpdateTaskParams{Completed: ptr(true)})
	if err != nil || res.NextOccurrence != nil {
		t.Fatalf("expected no second spawn, got %+v (%v)", res, err)
	}
}

func TestCompletingPlainTaskDoesNotSpawn(t *testing.T) {
	s := newTestService()
	task := mustCreateTask(t, s, "u1", CreateTaskParams{Title: "once"})
	res, err := s.UpdateTask(context.Background(), "u1", task.ID, UpdateTaskParams{Completed: ptr(true)})
	if err != nil || res.NextOccurrence != nil {
		t.Fatalf("unexpected result %+v (%v)", res, err)
	}
}

func TestListTasksCountsAndFilter(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	mustCreateTask(t, s, "u1", CreateTaskParams{Title: "Write report", Priority: PriorityHigh})
	done := mustCreateTask(t, s, "u1", CreateTaskParams{Title: "Read book"})
	mustCreateTask(t, s, "u2", CreateTaskParams{Title: "Not mine"})
	if _, err := s.UpdateTask(ctx, "u1", done.ID, UpdateTaskParams{Completed: ptr(true)}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	list, err := s.ListTasks(ctx, "u1", ListFilter{Status: StatusPending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 2 || list.Filtered != 1 || list.Tasks[0].Title != "Write report" {
		t.Fatalf("unexpected list %+v", list)
	}

	_, err = s.ListTasks(ctx, "u1", ListFilter{SortBy: "title"})
	assertInvalid(t, err, "sort_by")
}

func TestDeleteTask(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	task := mustCreateTask(t, s, "u1", CreateTaskParams{Title: "x"})
	if err := s.DeleteTask(ctx, "u1", task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTask(ctx, "u1", task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentCreates(t *testing.T) {
	s := NewService(NewMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			if _, err := s.CreateTask(ctx, "u1", CreateTaskParams{Title: fmt.Sprintf("task %d", i)}); err != nil {
				t.Errorf("create: %v", err)
			}
		})
	}
	wg.Wait()

	list, err := s.ListTasks(ctx, "u1", ListFilter{})
	if err != nil || list.Total != 50 {
		t.Fatalf("expected 50 tasks, got %+v (%v)", list, err)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := map[error]string{
		ErrNotFound:                            "not_found",
		fmt.Errorf("wrap: %w", ErrTagNotFound): "not_found",
		ErrTagExists:                           "already_exists",
		invalid("title", "bad", nil):           "invalid_input",
		errors.New("db down"):                  "internal_error",
	}
	for err, want := range tests {
		if got := categorizeError(err); got != want {
			t.Errorf("categorizeError(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestMutationsAreAudited(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := applog.ContextWithLogger(context.Background(), zap.New(core))
	s := newTestService()

	tag, err := s.CreateTag(ctx, "u1", CreateTagParams{Name: "work"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if _, err := s.CreateTag(ctx, "u1", CreateTagParams{Name: "WORK"}); !errors.Is(err, ErrTagExists) {
		t.Fatalf("expected ErrTagExists, got %v", err)
	}
	if err := s.DeleteTask(ctx, "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	entries := recorded.FilterMessage("audit event").All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 audit events, got %d", len(entries))
	}
	tests := []struct {
		action, resource, id, result, category string
	}{
		{"create", "tag", tag.ID, applog.AuditSuccess, ""},
		{"create", "tag", "", applog.AuditFailure, "already_exists"},
		{"delete", "task", "missing", applog.AuditFailure, "not_found"},
	}
	for i, tt := range tests {
		fields := entries[i].ContextMap()
		if fields["audit.action"] != tt.action || fields["audit.resource_type"] != tt.resource ||
			fields["audit.result"] != tt.result || fields["audit.user_id"] != "u1" {
			t.Fatalf("event %d: unexpected fields %v", i, fields)
		}
		if tt.id != "" && fields["audit.resource_id"] != tt.id {
			t.Fatalf("event %d: expected resource id %q, got %v", i, tt.id, fields["audit.resource_id"])
		}
		if tt.category == "" {
			if _, ok := fields["audit.details"]; ok {
				t.Fatalf("event %d: unexpected details", i)
			}
			continue
		}
		details, _ := fields["audit.details"].(map[string]any)
		if details["error"] != tt.category {
			t.Fatalf("event %d: expected category %q, got %v", i, tt.category, fields["audit.details"])
		}
	}
}
