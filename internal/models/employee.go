package models

import "strings"

// Employee is the shared base row of workers and technical personnel.
type Employee struct {
	ID          int64   `db:"id"`
	FirstName   string  `db:"first_name"`
	LastName    string  `db:"last_name"`
	MiddleName  *string `db:"middle_name"`
	Gender      Gender  `db:"gender"`
	Photo       *string `db:"photo"`
	PhoneNumber string  `db:"phone_number"`
	Salary      int     `db:"salary"`
}

// FullName joins last, first and middle names.
func (e Employee) FullName() string {
	parts := []string{e.LastName, e.FirstName}
	if e.MiddleName != nil && *e.MiddleName != "" {
		parts = append(parts, *e.MiddleName)
	}
	return strings.Join(parts, " ")
}

// Values returns the employee columns without the id.
func (e Employee) Values() map[string]any {
	return map[string]any{
		"first_name":   e.FirstName,
		"last_name":    e.LastName,
		"middle_name":  e.MiddleName,
		"gender":       e.Gender,
		"photo":        e.Photo,
		"phone_number": e.PhoneNumber,
		"salary":       e.Salary,
	}
}

// Tab is one entry of a details page tab bar.
type Tab struct {
	Key   string
	Label string
}

// PickTab returns key when it names one of tabs, otherwise the first tab.
func PickTab(tabs []Tab, key string) string {
	for _, t := range tabs {
		if t.Key == key {
			return key
		}
	}
	if len(tabs) == 0 {
		return ""
	}
	return tabs[0].Key
}
