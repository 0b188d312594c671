// Package schema is the request validation step of the HTTP API.
// It decodes and checks request bodies, query strings and path parameters
// against their declared shapes before any handler logic runs.
// Every failure is reported as *Error.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/videocatalog/internal/models"
)

// Request parts an Error can point at.
const (
	LocationBody        = "body"
	LocationQuerystring = "querystring"
	LocationParams      = "params"
)

// ErrValidation is matched by every *Error.
var ErrValidation = errors.New("validation failed")

// Error describes the first violation found in a request part.
type Error struct {
	Location string
	Field    string
	Reason   string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s %s", e.Location, e.Reason)
	}

	return fmt.Sprintf("%s/%s %s", e.Location, e.Field, e.Reason)
}

func (e *Error) Is(target error) bool {
	return target == ErrValidation
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})

	return validate
}

// DecodeJSON reads a JSON object from body into dst. Unknown fields are ignored.
func DecodeJSON(body io.Reader, dst interface{}) error {
	if body == nil {
		return &Error{Location: LocationBody, Reason: "must be object"}
	}

	decoder := json.NewDecoder(body)
	err := decoder.Decode(dst)
	if errors.Is(err, io.EOF) {
		return &Error{Location: LocationBody, Reason: "must be object"}
	}
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if typeErr.Field == "" {
				return &Error{Location: LocationBody, Reason: "must be object"}
			}
			return &Error{Location: LocationBody, Field: typeErr.Field, Reason: fmt.Sprintf("must be %s", typeErr.Type.Kind())}
		}
		return &Error{Location: LocationBody, Reason: "is not valid JSON"}
	}

	return nil
}

// Validate runs the `validate` struct tags of v and reports the first violation
// as located in the given request part.
func Validate(location string, v interface{}) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return &Error{Location: location, Reason: err.Error()}
	}

	fe := fieldErrors[0]

	return &Error{
		Location: location,
		Field:    fe.Field(),
		Reason:   describe(fe),
	}
}

func describe(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be <= %s", fe.Param())
	}

	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}

// ParseListVideosQuery coerces and validates the GET /videos query string.
// Absent or empty limit/offset fall back to their defaults.
func ParseListVideosQuery(values url.Values) (models.ListVideosQuery, error) {
	query := models.ListVideosQuery{
		Limit:  models.DefaultVideosLimit,
		Offset: 0,
		UserID: values.Get("userId"),
	}

	var err error
	if query.Limit, err = intParam(values, "limit", query.Limit); err != nil {
		return models.ListVideosQuery{}, err
	}
	if query.Offset, err = intParam(values, "offset", query.Offset); err != nil {
		return models.ListVideosQuery{}, err
	}

	if err := Validate(LocationQuerystring, query); err != nil {
		return models.ListVideosQuery{}, err
	}

	return query, nil
}

func intParam(values url.Values, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &Error{Location: LocationQuerystring, Field: name, Reason: "must be an integer"}
	}

	return value, nil
}

type idParams struct {
	ID string `json:"id" validate:"required,uuid"`
}

// ParseID checks that a path id is a UUID.
func ParseID(id string) (string, error) {
	params := idParams{ID: id}
	if err := Validate(LocationParams, params); err != nil {
		return "", err
	}

	return params.ID, nil
}
