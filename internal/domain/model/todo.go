// Package model contains the todo entity and its input payload.
package model

import (
	"errors"
	"strings"
)

// ErrInvalidTitle reports a missing or blank title.
var ErrInvalidTitle = errors.New("title must not be blank")

// Todo is the single persisted entity.
type Todo struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Input carries the caller-controlled fields for create and update.
// Completed defaults to false when omitted.
type Input struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Validate checks the invariants the store relies on.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrInvalidTitle
	}
	return nil
}

// Apply overwrites the mutable fields of t with in, keeping the id.
func (t Todo) Apply(in Input) Todo {
	t.Title = in.Title
	t.Completed = in.Completed
	return t
}
