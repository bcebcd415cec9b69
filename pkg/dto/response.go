package dto

import "encoding/json"

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the API error envelope. Detail holds either a plain string or a
// list of FieldError values.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type FieldError struct {
	Loc  []any  `json:"loc,omitempty"`
	Msg  string `json:"msg"`
	Type string `json:"type,omitempty"`
}

func NewErrorResponse(detail string) ErrorResponse {
	raw, _ := json.Marshal(detail)
	return ErrorResponse{Detail: raw}
}

func NewFieldErrorResponse(fields ...FieldError) ErrorResponse {
	raw, _ := json.Marshal(fields)
	return ErrorResponse{Detail: raw}
}
