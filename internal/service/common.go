package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

type referenceChecker interface {
	Exists(ctx context.Context, table string, id int64) (bool, error)
}

// NewValidator returns a validator that reports form field names and looks
// inside optional values. Absent optional values validate as nil.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterCustomTypeFunc(optionalValue[string], optional.Value[string]{})
	v.RegisterCustomTypeFunc(optionalValue[int], optional.Value[int]{})
	v.RegisterCustomTypeFunc(optionalValue[int64], optional.Value[int64]{})
	v.RegisterCustomTypeFunc(optionalValue[bool], optional.Value[bool]{})
	v.RegisterCustomTypeFunc(optionalValue[time.Time], optional.Value[time.Time]{})
	v.RegisterCustomTypeFunc(optionalValue[models.Position], optional.Value[models.Position]{})
	v.RegisterCustomTypeFunc(optionalValue[models.FuelType], optional.Value[models.FuelType]{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if o, ok := field.Interface().(optional.Value[decimal.Decimal]); ok {
			if d, set := o.Get(); set {
				return d.InexactFloat64()
			}
		}
		return nil
	}, optional.Value[decimal.Decimal]{})
	// present accepts any set optional, zero included. Custom type funcs run
	// first, so an absent value never reaches it and fails on the tag itself.
	_ = v.RegisterValidation("present", func(fl validator.FieldLevel) bool {
		return fl.Field().IsValid()
	})
	return v
}

func optionalValue[T any](field reflect.Value) interface{} {
	if o, ok := field.Interface().(optional.Value[T]); ok {
		if v, set := o.Get(); set {
			return v
		}
	}
	return nil
}

func validate(v *validator.Validate, entity string, targets ...interface{}) error {
	for _, target := range targets {
		if target == nil || (reflect.ValueOf(target).Kind() == reflect.Ptr && reflect.ValueOf(target).IsNil()) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Invalid %s: type-specific fields are missing", entity))
		}
		if err := v.Struct(target); err != nil {
			return validationError(err, entity)
		}
	}
	return nil
}

func validationError(err error, entity string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Validation(err, "Invalid "+entity)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describeField(fe))
	}
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Invalid %s: %s", entity, strings.Join(parts, "; ")))
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "present":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return field + " must be an email address"
	case "url":
		return field + " must be a URL"
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

// storeError maps repository errors. Typed errors pass through, missing rows
// become not-found and anything else is an internal error carrying the
// driver message.
func storeError(err error, entity, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", capitalize(entity)))
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Internal(err, fmt.Sprintf("failed to %s %s", action, entity))
}

func requireRef(ctx context.Context, refs referenceChecker, table, label string, id int64) error {
	ok, err := refs.Exists(ctx, table, id)
	if err != nil {
		return appErrors.Internal(err, "failed to check "+label)
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrReferenceNotFound, fmt.Sprintf("%s %d does not exist", capitalize(label), id))
	}
	return nil
}

func requireOptionalRef(ctx context.Context, refs referenceChecker, table, label string, id optional.Value[int64]) error {
	if v, ok := id.Get(); ok {
		return requireRef(ctx, refs, table, label, v)
	}
	return nil
}

func listResult[T any](items []T, total int, params models.ListParams, err error, entity string) (models.ListResult[T], error) {
	if err != nil {
		return models.ListResult[T]{}, storeError(err, entity, "list")
	}
	return models.NewListResult(items, total, params.Pagination, params.Sort), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
