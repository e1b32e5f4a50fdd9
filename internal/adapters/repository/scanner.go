package repository

import "github.com/okian/todos/internal/domain/model"

// Scanner is the common scanning behavior of *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Rows is the subset of *sql.Rows used when scanning result sets.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanTodo scans one id, title, completed row.
func scanTodo(s Scanner) (model.Todo, error) {
	var t model.Todo
	if err := s.Scan(&t.ID, &t.Title, &t.Completed); err != nil {
		return model.Todo{}, err
	}
	return t, nil
}

// scanTodos drains rows. An empty result yields an empty, non-nil slice.
func scanTodos(rows Rows) ([]model.Todo, error) {
	todos := []model.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return todos, nil
}
