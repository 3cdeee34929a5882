package todo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on the tags, tasks and task_tags tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by PostgreSQL. The schema is
// created by database.Migrate.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

const tagColumns = `id, user_id, name, color, created_at`

func scanTag(row pgx.Row) (Tag, error) {
	var t Tag
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.CreatedAt)
	t.CreatedAt = t.CreatedAt.UTC()
	return t, err
}

func (s *PostgresStore) ListTags(ctx context.Context, userID string) ([]Tag, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+tagColumns+` FROM tags WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	tags, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Tag, error) { return scanTag(row) })
	if err != nil {
		return nil, fmt.Errorf("scan tags: %w", err)
	}
	return tags, nil
}

func (s *PostgresStore) CreateTag(ctx context.Context, tag Tag) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tags (id, user_id, name, color, created_at) VALUES ($1, $2, $3, $4, $5)`,
		tag.ID, tag.UserID, tag.Name, tag.Color, tag.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTagExists
		}
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateTag(ctx context.Context, userID, id string, mutate TagMutation) (*Tag, error) {
	var result *Tag
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := scanTag(tx.QueryRow(ctx,
			`SELECT `+tagColumns+` FROM tags WHERE user_id = $1 AND id = $2 FOR UPDATE`, userID, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTagNotFound
		}
		if err != nil {
			return fmt.Errorf("select tag: %w", err)
		}
		if err := mutate(&tag); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE tags SET name = $3, color = $4 WHERE user_id = $1 AND id = $2`,
			userID, id, tag.Name, tag.Color); err != nil {
			if isUniqueViolation(err) {
				return ErrTagExists
			}
			return fmt.Errorf("update tag: %w", err)
		}
		result = &tag
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTag relies on ON DELETE CASCADE to detach the tag from tasks.
func (s *PostgresStore) DeleteTag(ctx context.Context, userID, id string) error {
	res, err := s.pool.Exec(ctx, `DELETE FROM tags WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrTagNotFound
	}
	return nil
}

const taskColumns = `id, user_id, title, description, completed, priority, due_date, recurrence, reminder_at, created_at, updated_at`

func scanTask(row pgx.Row) (Task, error) {
	var (
		t          Task
		priority   string
		recurrence *string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &priority,
		&t.DueDate, &recurrence, &t.ReminderAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Task{}, err
	}
	t.Priority = Priority(priority)
	if recurrence != nil {
		r := Recurrence(*recurrence)
		t.Recurrence = &r
	}
	t.DueDate = utcPtr(t.DueDate)
	t.ReminderAt = utcPtr(t.ReminderAt)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	t.TagIDs = []string{}
	return t, nil
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// loadTagIDs fills TagIDs for the given tasks in their stored order.
func loadTagIDs(ctx context.Context, q querier, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]string, len(tasks))
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		index[t.ID] = i
	}
	rows, err := q.Query(ctx,
		`SELECT task_id, tag_id FROM task_tags WHERE task_id = ANY($1) ORDER BY task_id, position`, ids)
	if err != nil {
		return fmt.Errorf("query task tags: %w", err)
	}
	var taskID, tagID string
	_, err = pgx.ForEachRow(rows, []any{&taskID, &tagID}, func() error {
		i := index[taskID]
		tasks[i].TagIDs = append(tasks[i].TagIDs, tagID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan task tags: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTasks(ctx context.Context, userID string) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Task, error) { return scanTask(row) })
	if err != nil {
		return nil, fmt.Errorf("scan tasks: %w", err)
	}
	if err := loadTagIDs(ctx, s.pool, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *PostgresStore) GetTask(ctx context.Context, userID, id string) (*Task, error) {
	t, err := s.getTask(ctx, s.pool, userID, id, false)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) getTask(ctx context.Context, q querier, userID, id string, lock bool) (Task, error) {
	sql := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND id = $2`
	if lock {
		sql += ` FOR UPDATE`
	}
	rows, err := q.Query(ctx, sql, userID, id)
	if err != nil {
		return Task{}, fmt.Errorf("select task: %w", err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (Task, error) { return scanTask(row) })
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("scan task: %w", err)
	}
	tasks := []Task{t}
	if err := loadTagIDs(ctx, q, tasks); err != nil {
		return Task{}, err
	}
	return tasks[0], nil
}

func insertTask(ctx context.Context, q querier, t Task) error {
	var recurrence *string
	if t.Recurrence != nil {
		r := string(*t.Recurrence)
		recurrence = &r
	}
	_, err := q.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.UserID, t.Title, t.Description, t.Completed, string(t.Priority),
		t.DueDate, recurrence, t.ReminderAt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return writeTagIDs(ctx, q, t.ID, t.TagIDs)
}

// writeTagIDs replaces the task's tag links, keeping their order.
func writeTagIDs(ctx context.Context, q querier, taskID string, tagIDs []string) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM task_tags WHERE task_id = $1`, taskID)
	for pos, tagID := range tagIDs {
		batch.Queue(`INSERT INTO task_tags (task_id, tag_id, position) VALUES ($1, $2, $3)`, taskID, tagID, pos)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("write task tags: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateTask(ctx context.Context, task Task) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return insertTask(ctx, tx, task)
	})
}

func (s *PostgresStore) UpdateTask(ctx context.Context, userID, id string, mutate TaskMutation) (*Task, *Task, error) {
	var updated, spawned *Task
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		task, err := s.getTask(ctx, tx, userID, id, true)
		if err != nil {
			return err
		}
		spawn, err := mutate(&task)
		if err != nil {
			return err
		}
		var recurrence *string
		if task.Recurrence != nil {
			r := string(*task.Recurrence)
			recurrence = &r
		}
		if _, err := tx.Exec(ctx, `
			UPDATE tasks SET title = $3, description = $4, completed = $5, priority = $6,
				due_date = $7, recurrence = $8, reminder_at = $9, updated_at = $10
			WHERE user_id = $1 AND id = $2`,
			userID, id, task.Title, task.Description, task.Completed, string(task.Priority),
			task.DueDate, recurrence, task.ReminderAt, task.UpdatedAt); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if err := writeTagIDs(ctx, tx, id, task.TagIDs); err != nil {
			return err
		}
		if spawn != nil {
			if err := insertTask(ctx, tx, *spawn); err != nil {
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

func (s *PostgresStore) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
