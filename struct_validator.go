package formz

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// StructValidator validates a form value by decoding it into T and checking
// T's `validate` struct tags. Issue paths use the json tag names, so they
// match the dotted keys of the form value.
//
// Example:
//
//	type Login struct {
//	    Email    string `json:"email" validate:"required,email"`
//	    Password string `json:"password" validate:"min=8"`
//	}
//
//	ctrl, err := formz.New(formz.NewStructValidator[Login]())
type StructValidator[T any] struct {
	validate *validator.Validate
}

// NewStructValidator creates a validator for T, which must be a struct type.
func NewStructValidator[T any]() *StructValidator[T] {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return &StructValidator[T]{validate: v}
}

// Validate implements Validator.
func (s *StructValidator[T]) Validate(ctx context.Context, value Value) Issues {
	var typed T
	if err := decodeInto(value, &typed); err != nil {
		return Issues{decodeIssue(err)}
	}

	err := s.validate.StructCtx(ctx, typed)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Issues{{Message: err.Error(), Code: "invalid"}}
	}

	issues := make(Issues, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Path:    namespacePath(fe.Namespace()),
			Message: messageFor(fe.Tag(), fe.Param()),
			Code:    fe.Tag(),
		})
	}
	return issues
}

// jsonFieldName names struct fields after their json tag.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	default:
		return name
	}
}

// namespacePath drops the root struct name from a validator namespace
// ("Login.address.street" -> [address street]).
func namespacePath(ns string) []string {
	_, rest, found := strings.Cut(ns, ".")
	if !found {
		return nil
	}
	return splitPath(rest)
}

// decodeIssue turns a decode failure into an invalid_type issue at the
// offending field when the decoder reports it.
func decodeIssue(err error) Issue {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		expected := ""
		if ute.Type != nil {
			expected = ute.Type.String()
		}
		return Issue{
			Path:    pathFromKey(ute.Field),
			Message: messageFor(CodeInvalidType, expected),
			Code:    CodeInvalidType,
		}
	}
	return Issue{Message: err.Error(), Code: CodeInvalidType}
}
