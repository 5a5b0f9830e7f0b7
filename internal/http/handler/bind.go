package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Server-managed keys. Clients commonly echo whole records back on edit, so these are dropped rather than rejected.
var readOnlyFields = []string{"id", "created_at", "updated_at"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names, not Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors is returned by bind when the body is well-formed JSON but some fields are wrong.
type fieldErrors map[string]string

func (f fieldErrors) Error() string {
	return fmt.Sprintf("%d invalid field(s)", len(f))
}

var errMalformedBody = errors.New("request body must be a JSON object")

// bind decodes a JSON object body into dst, rejecting unknown fields, trims surrounding
// whitespace from every string, and validates it. A whitespace-only value counts as blank.
// It returns errMalformedBody, fieldErrors, or nil.
func bind(body []byte, dst any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return errMalformedBody
	}
	for _, k := range readOnlyFields {
		delete(raw, k)
	}
	cleaned, err := json.Marshal(raw)
	if err != nil {
		return errMalformedBody
	}

	dec := json.NewDecoder(bytes.NewReader(cleaned))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeFieldErrors(err)
	}
	trimStrings(dst)

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		out := fieldErrors{}
		for _, fe := range verrs {
			out[fe.Field()] = fieldMessage(fe)
		}
		return out
	}
	return nil
}

// trimStrings trims string, *string and []string fields of the struct dst points to.
func trimStrings(dst any) {
	v := reflect.ValueOf(dst)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		trimValue(v.Field(i))
	}
}

func trimValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer:
		if !v.IsNil() {
			trimValue(v.Elem())
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			trimValue(v.Index(i))
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	}
}

func decodeFieldErrors(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			return errMalformedBody
		}
		return fieldErrors{field: "expected " + describeType(typeErr.Type)}
	}
	// encoding/json has no typed error for DisallowUnknownFields.
	if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field ") {
		field := strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`)
		return fieldErrors{field: "unknown field"}
	}
	return errMalformedBody
}

func describeType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "a list"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "a number"
	default:
		return t.String()
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "min":
		return "this field may not be blank"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
