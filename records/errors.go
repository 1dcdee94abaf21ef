package records

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrReadOnly is returned when a non-lecturer session tries to change records
	ErrReadOnly = errors.New("only lecturers can edit records")
	// ErrNoScope is returned when an operation needs a selected scope
	ErrNoScope = errors.New("no classroom and subject selected")
	// ErrInvalidEdit wraps the single message of a rejected stage operation
	ErrInvalidEdit = errors.New("invalid edit")
)

// Banner is a transient user-facing message
type Banner struct {
	Message      string        `json:"message"`
	IsError      bool          `json:"isError"`
	DismissAfter time.Duration `json:"-"`
}

// DismissAfterMillis is the auto-dismiss delay in milliseconds, for JSON clients
func (b Banner) DismissAfterMillis() int64 {
	return b.DismissAfter.Milliseconds()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// checkRequired runs the struct's validate tags and reduces any failure to one message
func checkRequired(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("%w: %s is required", ErrInvalidEdit, fieldErrs[0].Field())
	}
	return fmt.Errorf("%w: %v", ErrInvalidEdit, err)
}
