// Package response defines the JSON envelope shared by every API endpoint.
package response

import "github.com/dealerhub/dealer-admin/internal/core/domain"

// Envelope wraps every response body: {success, data, message}.
type Envelope struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data"`
	Message    string              `json:"message,omitempty"`
	Pagination *Pagination         `json:"pagination,omitempty"`
	Errors     []domain.FieldError `json:"errors,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func OK(data any, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message}
}

func Paged(data any, p Pagination) Envelope {
	return Envelope{Success: true, Data: data, Pagination: &p}
}

func Fail(message string, fields []domain.FieldError) Envelope {
	return Envelope{Success: false, Message: message, Errors: fields}
}
