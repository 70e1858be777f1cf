package models

import "github.com/meliosu/onyx-core-builders/pkg/optional"

// Worker is a blue-collar employee, optionally assigned to a brigade.
type Worker struct {
	Employee
	Profession  Profession `db:"profession"`
	UnionName   *string    `db:"union_name"`
	BrigadeID   *int64     `db:"brigade_id"`
	IsBrigadier bool       `db:"is_brigadier"`

	Fields ProfessionFields `db:"-"`
}

// WorkerListItem is a worker list row.
type WorkerListItem struct {
	ID          int64      `db:"id"`
	FirstName   string     `db:"first_name"`
	LastName    string     `db:"last_name"`
	Profession  Profession `db:"profession"`
	BrigadeID   *int64     `db:"brigade_id"`
	IsBrigadier bool       `db:"is_brigadier"`
}

// WorkerFilter narrows the worker list.
type WorkerFilter struct {
	Name        optional.Value[string]     `form:"name"`
	Profession  optional.Value[Profession] `form:"profession"`
	BrigadeID   optional.Value[int64]      `form:"brigade_id"`
	IsBrigadier optional.Value[bool]       `form:"is_brigadier"`
}
