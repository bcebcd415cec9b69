package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dimitrije/valtokens/pkg/dto"
	"golang.org/x/oauth2"
)

var ErrMissingAccessToken = errors.New("token response did not include an access token")

// APIError is a non-2xx response. Detail is the server's message, with list-shaped
// validation errors joined into one comma-separated string.
type APIError struct {
	StatusCode int
	Detail     string
	Fields     []dto.FieldError
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var envelope dto.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		apiErr.Detail = text
		return apiErr
	}

	var fields []dto.FieldError
	if err := json.Unmarshal(envelope.Detail, &fields); err == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, f.Msg)
		}
		apiErr.Fields = fields
		apiErr.Detail = strings.Join(msgs, ", ")
	}
	return apiErr
}

// AsAPIError unwraps err into an *APIError, also translating oauth2 token errors.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return newAPIError(retrieveErr.Response.StatusCode, retrieveErr.Body), true
	}
	return nil, false
}

// IsUnauthorized reports whether err is an HTTP 401 from the API.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Unauthorized()
}

// Message returns the server-provided detail for err, or fallback when there is none.
func Message(err error, fallback string) string {
	if apiErr, ok := AsAPIError(err); ok && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
