package todo

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps tags and tasks in process memory. It is the default
// backend and the one used by handler tests.
type MemoryStore struct {
	mu    sync.RWMutex
	tags  map[string]map[string]*Tag  // userID -> tagID -> tag
	tasks map[string]map[string]*Task // userID -> taskID -> task
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tags:  make(map[string]map[string]*Tag),
		tasks: make(map[string]map[string]*Task),
	}
}

func (m *MemoryStore) ListTags(_ context.Context, userID string) ([]Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Tag, 0, len(m.tags[userID]))
	for _, t := range m.tags[userID] {
		out = append(out, t.Clone())
	}
	return out, nil
}

// nameTaken reports whether another tag of the user has the same name key.
// Callers hold the lock.
func (m *MemoryStore) nameTaken(userID, name, exceptID string) bool {
	key := tagNameKey(name)
	for id, t := range m.tags[userID] {
		if id != exceptID && tagNameKey(t.Name) == key {
			return true
		}
	}
	return false
}

func (m *MemoryStore) CreateTag(_ context.Context, tag Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nameTaken(tag.UserID, tag.Name, "") {
		return ErrTagExists
	}
	if m.tags[tag.UserID] == nil {
		m.tags[tag.UserID] = make(map[string]*Tag)
	}
	stored := tag.Clone()
	m.tags[tag.UserID][tag.ID] = &stored
	return nil
}

func (m *MemoryStore) UpdateTag(_ context.Context, userID, id string, mutate TagMutation) (*Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.tags[userID][id]
	if !ok {
		return nil, ErrTagNotFound
	}
	next := current.Clone()
	if err := mutate(&next); err != nil {
		return nil, err
	}
	if m.nameTaken(userID, next.Name, id) {
		return nil, ErrTagExists
	}
	*current = next
	out := next.Clone()
	return &out, nil
}

func (m *MemoryStore) DeleteTag(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tags[userID][id]; !ok {
		return ErrTagNotFound
	}
	delete(m.tags[userID], id)
	for _, t := range m.tasks[userID] {
		t.TagIDs = slices.DeleteFunc(t.TagIDs, func(tagID string) bool { return tagID == id })
	}
	return nil
}

func (m *MemoryStore) ListTasks(_ context.Context, userID string) ([]Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Task, 0, len(m.tasks[userID]))
	for _, t := range m.tasks[userID] {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (m *MemoryStore) GetTask(_ context.Context, userID, id string) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[userID][id]
	if !ok {
		return nil, ErrNotFound
	}
	out := t.Clone()
	return &out, nil
}

func (m *MemoryStore) CreateTask(_ context.Context, task Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertTask(task)
	return nil
}

func (m *MemoryStore) insertTask(task Task) {
	if m.tasks[task.UserID] == nil {
		m.tasks[task.UserID] = make(map[string]*Task)
	}
	stored := task.Clone()
	stored.Tags = nil
	m.tasks[task.UserID][task.ID] = &stored
}

func (m *MemoryStore) UpdateTask(_ context.Context, userID, id string, mutate TaskMutation) (*Task, *Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.tasks[userID][id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	next := current.Clone()
	spawn, err := mutate(&next)
	if err != nil {
		return nil, nil, err
	}
	*current = next.Clone()
	if spawn != nil {
		m.insertTask(*spawn)
		out := spawn.Clone()
		spawn = &out
	}
	return &next, spawn, nil
}

func (m *MemoryStore) DeleteTask(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[userID][id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks[userID], id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
