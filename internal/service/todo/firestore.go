package todo

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection = "users"
	tagsCollection  = "tags"
	tasksCollection = "tasks"
)

// firestoreTag maps to the users/{uid}/tags/{id} document.
type firestoreTag struct {
	Name      string    `firestore:"name"`
	NameKey   string    `firestore:"name_key"`
	Color     *string   `firestore:"color"`
	CreatedAt time.Time `firestore:"created_at"`
}

// firestoreTask maps to the users/{uid}/tasks/{id} document.
type firestoreTask struct {
	Title       string     `firestore:"title"`
	Description *string    `firestore:"description"`
	Completed   bool       `firestore:"completed"`
	Priority    string     `firestore:"priority"`
	DueDate     *time.Time `firestore:"due_date"`
	Recurrence  *string    `firestore:"recurrence"`
	ReminderAt  *time.Time `firestore:"reminder_at"`
	TagIDs      []string   `firestore:"tag_ids"`
	CreatedAt   time.Time  `firestore:"created_at"`
	UpdatedAt   time.Time  `firestore:"updated_at"`
}

func toFirestoreTag(t Tag) firestoreTag {
	return firestoreTag{Name: t.Name, NameKey: tagNameKey(t.Name), Color: t.Color, CreatedAt: t.CreatedAt}
}

func (ft firestoreTag) toTag(userID, id string) Tag {
	return Tag{ID: id, Name: ft.Name, Color: ft.Color, UserID: userID, CreatedAt: ft.CreatedAt.UTC()}
}

func toFirestoreTask(t Task) firestoreTask {
	ft := firestoreTask{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		ReminderAt:  t.ReminderAt,
		TagIDs:      t.TagIDs,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if ft.TagIDs == nil {
		ft.TagIDs = []string{}
	}
	if t.Recurrence != nil {
		r := string(*t.Recurrence)
		ft.Recurrence = &r
	}
	return ft
}

func (ft firestoreTask) toTask(userID, id string) Task {
	t := Task{
		ID:          id,
		Title:       ft.Title,
		Description: ft.Description,
		Completed:   ft.Completed,
		Priority:    Priority(ft.Priority),
		DueDate:     utcPtr(ft.DueDate),
		ReminderAt:  utcPtr(ft.ReminderAt),
		TagIDs:      ft.TagIDs,
		UserID:      userID,
		CreatedAt:   ft.CreatedAt.UTC(),
		UpdatedAt:   ft.UpdatedAt.UTC(),
	}
	if t.TagIDs == nil {
		t.TagIDs = []string{}
	}
	if ft.Recurrence != nil {
		r := Recurrence(*ft.Recurrence)
		t.Recurrence = &r
	}
	return t
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// FirestoreStore implements Store with one subcollection pair per user.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) tags(userID string) *firestore.CollectionRef {
	return s.client.Collection(usersCollection).Doc(userID).Collection(tagsCollection)
}

func (s *FirestoreStore) tasks(userID string) *firestore.CollectionRef {
	return s.client.Collection(usersCollection).Doc(userID).Collection(tasksCollection)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (s *FirestoreStore) ListTags(ctx context.Context, userID string) ([]Tag, error) {
	docs, err := s.tags(userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	out := make([]Tag, 0, len(docs))
	for _, doc := range docs {
		var ft firestoreTag
		if err := doc.DataTo(&ft); err != nil {
			return nil, fmt.Errorf("decode tag %s: %w", doc.Ref.ID, err)
		}
		out = append(out, ft.toTag(userID, doc.Ref.ID))
	}
	return out, nil
}

// nameTaken runs the uniqueness query inside tx.
func (s *FirestoreStore) nameTaken(tx *firestore.Transaction, userID, name, exceptID string) (bool, error) {
	q := s.tags(userID).Where("name_key", "==", tagNameKey(name))
	docs, err := tx.Documents(q).GetAll()
	if err != nil {
		return false, fmt.Errorf("query tag names: %w", err)
	}
	for _, doc := range docs {
		if doc.Ref.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (s *FirestoreStore) CreateTag(ctx context.Context, tag Tag) error {
	ref := s.tags(tag.UserID).Doc(tag.ID)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := s.nameTaken(tx, tag.UserID, tag.Name, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrTagExists
		}
		return tx.Create(ref, toFirestoreTag(tag))
	})
}

func (s *FirestoreStore) UpdateTag(ctx context.Context, userID, id string, mutate TagMutation) (*Tag, error) {
	ref := s.tags(userID).Doc(id)
	var result *Tag

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return ErrTagNotFound
			}
			return err
		}
		var ft firestoreTag
		if err := doc.DataTo(&ft); err != nil {
			return err
		}
		tag := ft.toTag(userID, id)
		if err := mutate(&tag); err != nil {
			return err
		}
		taken, err := s.nameTaken(tx, userID, tag.Name, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrTagExists
		}
		if err := tx.Set(ref, toFirestoreTag(tag)); err != nil {
			return err
		}
		result = &tag
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTag deletes the tag and removes it from every task in one transaction.
func (s *FirestoreStore) DeleteTag(ctx context.Context, userID, id string) error {
	ref := s.tags(userID).Doc(id)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isNotFound(err) {
				return ErrTagNotFound
			}
			return err
		}
		tagged, err := tx.Documents(s.tasks(userID).Where("tag_ids", "array-contains", id)).GetAll()
		if err != nil {
			return fmt.Errorf("query tagged tasks: %w", err)
		}
		for _, doc := range tagged {
			if err := tx.Update(doc.Ref, []firestore.Update{
				{Path: "tag_ids", Value: firestore.ArrayRemove(id)},
			}); err != nil {
				return err
			}
		}
		return tx.Delete(ref)
	})
}

func (s *FirestoreStore) ListTasks(ctx context.Context, userID string) ([]Task, error) {
	docs, err := s.tasks(userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	out := make([]Task, 0, len(docs))
	for _, doc := range docs {
		var ft firestoreTask
		if err := doc.DataTo(&ft); err != nil {
			return nil, fmt.Errorf("decode task %s: %w", doc.Ref.ID, err)
		}
		out = append(out, ft.toTask(userID, doc.Ref.ID))
	}
	return out, nil
}

func (s *FirestoreStore) GetTask(ctx context.Context, userID, id string) (*Task, error) {
	doc, err := s.tasks(userID).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	var ft firestoreTask
	if err := doc.DataTo(&ft); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", id, err)
	}
	t := ft.toTask(userID, id)
	return &t, nil
}

func (s *FirestoreStore) CreateTask(ctx context.Context, task Task) error {
	if _, err := s.tasks(task.UserID).Doc(task.ID).Create(ctx, toFirestoreTask(task)); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *FirestoreStore) UpdateTask(ctx context.Context, userID, id string, mutate TaskMutation) (*Task, *Task, error) {
	ref := s.tasks(userID).Doc(id)
	var updated, spawned *Task

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		var ft firestoreTask
		if err := doc.DataTo(&ft); err != nil {
			return err
		}
		task := ft.toTask(userID, id)
		spawn, err := mutate(&task)
		if err != nil {
			return err
		}
		if err := tx.Set(ref, toFirestoreTask(task)); err != nil {
			return err
		}
		if spawn != nil {
			if err := tx.Create(s.tasks(userID).Doc(spawn.ID), toFirestoreTask(*spawn)); err != nil {
				return err
			}
		}
		updated, spawned = &task, spawn
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, spawned, nil
}

func (s *FirestoreStore) DeleteTask(ctx context.Context, userID, id string) error {
	ref := s.tasks(userID).Doc(id)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		return tx.Delete(ref)
	})
}

var _ Store = (*FirestoreStore)(nil)
