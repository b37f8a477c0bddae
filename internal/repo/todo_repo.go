package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	dom "github.com/wl39/todo-sync/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrVersionConflict is returned when the caller's expected version does not
// match the stored one. The caller must reload and retry.
var ErrVersionConflict = errors.New("version conflict")

// TodoRepo provides todo persistence. Every mutation appends exactly one
// audit row in the same transaction as the todo write.
type TodoRepo interface {
	Create(ctx context.Context, t dom.Todo, editorID *int64) (dom.Todo, error)
	GetByID(ctx context.Context, userID, id int64) (dom.Todo, error)
	UpdateVersioned(ctx context.Context, userID, id int64, patch dom.TodoPatch, expectedVersion int, editorID *int64) (dom.Todo, error)
	Toggle(ctx context.Context, userID, id int64, editorID *int64) (dom.Todo, error)
	SoftDelete(ctx context.Context, userID, id int64, editorID *int64) error
	ListForDate(ctx context.Context, userID int64, date time.Time) ([]dom.Todo, error)
	MonthlySummary(ctx context.Context, userID int64, firstDay, lastDay time.Time) ([]dom.DaySummary, error)
	ListAudit(ctx context.Context, userID, todoID int64) ([]dom.TodoAudit, error)
}

const todoColumns = `id, user_id, title, description, todo_date, status, version, is_deleted, created_at, updated_at`

type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

func scanTodo(row pgx.Row) (dom.Todo, error) {
	var t dom.Todo
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.TodoDate,
		&t.Status, &t.Version, &t.IsDeleted, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo, editorID *int64) (dom.Todo, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dom.Todo{}, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO todos (user_id, title, description, todo_date)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + todoColumns
	out, err := scanTodo(tx.QueryRow(ctx, query, t.UserID, t.Title, t.Description, t.TodoDate))
	if err != nil {
		return dom.Todo{}, err
	}

	payload, _ := json.Marshal(map[string]any{
		"title":       out.Title,
		"description": out.Description,
		"todo_date":   out.TodoDate.Format("2006-01-02"),
	})
	if err := insertAudit(ctx, tx, out.ID, dom.AuditCreate, nil, nil, editorID, payload); err != nil {
		return dom.Todo{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return dom.Todo{}, err
	}
	return out, nil
}

func (r *PGTodoRepo) GetByID(ctx context.Context, userID, id int64) (dom.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE`
	return scanTodo(r.db.QueryRow(ctx, query, id, userID))
}

// getForUpdate row-locks the todo for the duration of the transaction.
// Owner mismatch, soft-deleted and absent all come back as pgx.ErrNoRows.
func getForUpdate(ctx context.Context, tx pgx.Tx, userID, id int64) (dom.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE
		FOR UPDATE`
	return scanTodo(tx.QueryRow(ctx, query, id, userID))
}

func (r *PGTodoRepo) UpdateVersioned(ctx context.Context, userID, id int64, patch dom.TodoPatch, expectedVersion int, editorID *int64) (dom.Todo, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dom.Todo{}, err
	}
	defer tx.Rollback(ctx)

	cur, err := getForUpdate(ctx, tx, userID, id)
	if err != nil {
		return dom.Todo{}, err
	}
	if cur.Version != expectedVersion {
		return dom.Todo{}, ErrVersionConflict
	}

	next := cur
	changed := map[string]any{}
	if patch.Title != nil {
		next.Title = *patch.Title
		changed["title"] = *patch.Title
	}
	if patch.SetDescription {
		next.Description = patch.Description
		changed["description"] = patch.Description
	}
	if patch.TodoDate != nil {
		next.TodoDate = *patch.TodoDate
		changed["todo_date"] = patch.TodoDate.Format("2006-01-02")
	}
	if patch.Status != nil {
		next.Status = *patch.Status
		changed["status"] = string(*patch.Status)
	}

	query := `
		UPDATE todos SET title = $3, description = $4, todo_date = $5, status = $6,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + todoColumns
	out, err := scanTodo(tx.QueryRow(ctx, query, id, userID,
		next.Title, next.Description, next.TodoDate, next.Status))
	if err != nil {
		return dom.Todo{}, err
	}

	var from, to *dom.Status
	if cur.Status != out.Status {
		from, to = &cur.Status, &out.Status
	}
	payload, _ := json.Marshal(changed)
	if err := insertAudit(ctx, tx, out.ID, dom.AuditUpdate, from, to, editorID, payload); err != nil {
		return dom.Todo{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return dom.Todo{}, err
	}
	return out, nil
}

func (r *PGTodoRepo) Toggle(ctx context.Context, userID, id int64, editorID *int64) (dom.Todo, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dom.Todo{}, err
	}
	defer tx.Rollback(ctx)

	cur, err := getForUpdate(ctx, tx, userID, id)
	if err != nil {
		return dom.Todo{}, err
	}
	next := cur.Status.Next()

	query := `
		UPDATE todos SET status = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + todoColumns
	out, err := scanTodo(tx.QueryRow(ctx, query, id, userID, next))
	if err != nil {
		return dom.Todo{}, err
	}

	if err := insertAudit(ctx, tx, out.ID, dom.AuditToggle, &cur.Status, &out.Status, editorID, nil); err != nil {
		return dom.Todo{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return dom.Todo{}, err
	}
	return out, nil
}

func (r *PGTodoRepo) SoftDelete(ctx context.Context, userID, id int64, editorID *int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cur, err := getForUpdate(ctx, tx, userID, id)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE todos SET is_deleted = TRUE, version = version + 1, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return err
	}
	if err := insertAudit(ctx, tx, cur.ID, dom.AuditDelete, &cur.Status, nil, editorID, nil); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGTodoRepo) ListForDate(ctx context.Context, userID int64, date time.Time) ([]dom.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos WHERE user_id = $1 AND todo_date = $2 AND is_deleted = FALSE
		ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTodoRepo) MonthlySummary(ctx context.Context, userID int64, firstDay, lastDay time.Time) ([]dom.DaySummary, error) {
	query := `
		SELECT todo_date, COUNT(*)
		FROM todos
		WHERE user_id = $1 AND todo_date >= $2 AND todo_date <= $3
			AND status IN ('pending', 'partial') AND is_deleted = FALSE
		GROUP BY todo_date
		ORDER BY todo_date ASC`
	rows, err := r.db.Query(ctx, query, userID, firstDay, lastDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dom.DaySummary
	for rows.Next() {
		var s dom.DaySummary
		if err := rows.Scan(&s.TodoDate, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListAudit returns the audit trail for one todo, oldest first. The owner
// check goes through the todos table so that foreign todos stay invisible.
func (r *PGTodoRepo) ListAudit(ctx context.Context, userID, todoID int64) ([]dom.TodoAudit, error) {
	query := `
		SELECT a.id, a.todo_id, a.action, a.from_status, a.to_status, a.editor_user_id, a.payload, a.created_at
		FROM todo_audit a
		JOIN todos t ON t.id = a.todo_id
		WHERE a.todo_id = $1 AND t.user_id = $2
		ORDER BY a.id ASC`
	rows, err := r.db.Query(ctx, query, todoID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dom.TodoAudit
	for rows.Next() {
		var a dom.TodoAudit
		if err := rows.Scan(&a.ID, &a.TodoID, &a.Action, &a.FromStatus, &a.ToStatus, &a.EditorUserID, &a.Payload, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func insertAudit(ctx context.Context, tx pgx.Tx, todoID int64, action dom.AuditAction, from, to *dom.Status, editorID *int64, payload []byte) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO todo_audit (todo_id, action, from_status, to_status, editor_user_id, payload)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		todoID, action, from, to, editorID, payload)
	return err
}
