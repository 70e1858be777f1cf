package service

import (
	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

// EmployeeRequest holds the form fields shared by workers and technical personnel.
type EmployeeRequest struct {
	FirstName   string                 `form:"first_name" validate:"required,max=100"`
	LastName    string                 `form:"last_name" validate:"required,max=100"`
	MiddleName  optional.Value[string] `form:"middle_name" validate:"omitempty,max=100"`
	Gender      models.Gender          `form:"gender" validate:"required"`
	Photo       optional.Value[string] `form:"photo" validate:"omitempty,url"`
	PhoneNumber string                 `form:"phone_number" validate:"required,max=20"`
	Salary      int                    `form:"salary" validate:"gte=0"`
}

func (req EmployeeRequest) employee(id int64) models.Employee {
	return models.Employee{
		ID:          id,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		MiddleName:  req.MiddleName.Ptr(),
		Gender:      req.Gender,
		Photo:       req.Photo.Ptr(),
		PhoneNumber: req.PhoneNumber,
		Salary:      req.Salary,
	}
}
