package devserver

import (
	"fmt"
	"net/http"

	"github.com/dimitrije/valtokens/pkg/dto"
)

// Error is a failure with the status and detail the API reports for it.
type Error struct {
	Status int
	Detail string
	Fields []dto.FieldError
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Detail)
}

func (e *Error) Response() dto.ErrorResponse {
	if len(e.Fields) > 0 {
		return dto.NewFieldErrorResponse(e.Fields...)
	}
	return dto.NewErrorResponse(e.Detail)
}

func badRequest(detail string) *Error {
	return &Error{Status: http.StatusBadRequest, Detail: detail}
}

func forbidden(detail string) *Error {
	return &Error{Status: http.StatusForbidden, Detail: detail}
}

func notFound(detail string) *Error {
	return &Error{Status: http.StatusNotFound, Detail: detail}
}

func unauthorized(detail string) *Error {
	return &Error{Status: http.StatusUnauthorized, Detail: detail}
}

// invalid builds the list-shaped 422 response used for request validation failures.
func invalid(fields ...dto.FieldError) *Error {
	msg := "validation error"
	if len(fields) > 0 {
		msg = fields[0].Msg
	}
	return &Error{Status: http.StatusUnprocessableEntity, Detail: msg, Fields: fields}
}

func fieldRequired(loc ...any) dto.FieldError {
	return dto.FieldError{Loc: loc, Msg: "field required", Type: "value_error.missing"}
}

func fieldEnum(permitted string, loc ...any) dto.FieldError {
	return dto.FieldError{
		Loc:  loc,
		Msg:  "value is not a valid enumeration member; permitted: " + permitted,
		Type: "type_error.enum",
	}
}
