// Package envelope is the {success, data, errors} wrapper carried by every
// task API response body.
package envelope

// Response wraps a payload. Errors is never null on the wire.
type Response[T any] struct {
	Success bool     `json:"success"`
	Data    T        `json:"data"`
	Errors  []string `json:"errors"`
}

// OK wraps a successful payload.
func OK[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data, Errors: []string{}}
}

// Fail builds a failed response with null data.
func Fail(errs ...string) Response[any] {
	if errs == nil {
		errs = []string{}
	}
	return Response[any]{Success: false, Errors: errs}
}

// First returns the first error message, or "" when there is none.
func (r Response[T]) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}
