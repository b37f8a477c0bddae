package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "github.com/wl39/todo-sync/internal/domain"
)

const dateLayout = "2006-01-02"

// Date parses todo_date from JSON as a calendar date ("2006-01-02"),
// stored as start of that day in UTC.
type Date struct{ t time.Time }

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("todo_date: use date (YYYY-MM-DD)")
	}
	d.t = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.t.Format(dateLayout))
}

// NewDate wraps a time.Time as a calendar date.
func NewDate(t time.Time) Date {
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// Time returns the parsed date as UTC midnight.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether no date was supplied.
func (d Date) IsZero() bool { return d.t.IsZero() }

// NullableString distinguishes "field not supplied" from "field set to null".
// Set is true once the key was present in the JSON body, even with a null
// value.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	return json.Unmarshal(data, &n.Value)
}

type CreateTodoRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	TodoDate    Date    `json:"todo_date" binding:"required"`
}

// UpdateTodoRequest is a version-checked partial update. Version is the
// caller's last known version of the todo (optimistic lock).
type UpdateTodoRequest struct {
	Title       *string        `json:"title" binding:"omitempty,min=1,max=200"`
	Description NullableString `json:"description"`
	TodoDate    *Date          `json:"todo_date"`
	Status      *string        `json:"status" binding:"omitempty,oneof=pending done partial"`
	Version     *int           `json:"version" binding:"required"`
}

// Patch converts the request body into a domain patch.
func (r UpdateTodoRequest) Patch() dom.TodoPatch {
	p := dom.TodoPatch{Title: r.Title}
	if r.Description.Set {
		p.SetDescription = true
		p.Description = r.Description.Value
	}
	if r.TodoDate != nil {
		t := r.TodoDate.Time()
		p.TodoDate = &t
	}
	if r.Status != nil {
		s := dom.Status(*r.Status)
		p.Status = &s
	}
	return p
}

type TodoResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	TodoDate    Date      `json:"todo_date"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTodoResponse maps the domain entity onto the wire shape.
func NewTodoResponse(t dom.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		TodoDate:    Date{t: t.TodoDate},
		Status:      string(t.Status),
		Version:     t.Version,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTodoResponses maps a list.
func NewTodoResponses(list []dom.Todo) []TodoResponse {
	out := make([]TodoResponse, len(list))
	for i := range list {
		out[i] = NewTodoResponse(list[i])
	}
	return out
}

type TodoSummaryResponse struct {
	TodoDate Date `json:"todo_date"`
	Count    int  `json:"count"`
}

// NewTodoSummaryResponses maps the monthly summary rows.
func NewTodoSummaryResponses(rows []dom.DaySummary) []TodoSummaryResponse {
	out := make([]TodoSummaryResponse, len(rows))
	for i, r := range rows {
		out[i] = TodoSummaryResponse{TodoDate: Date{t: r.TodoDate}, Count: r.Count}
	}
	return out
}
