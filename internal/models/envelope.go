package models

// Result is the uniform envelope returned by every gateway operation.
// Failures carry a human-readable Message; Data is optional and callers must
// tolerate a successful Result without it (e.g. re-liking an already liked
// post reports success with no row).
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    *T     `json:"data,omitempty"`
}

// OK returns a successful Result carrying data.
func OK[T any](data *T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// OKMsg returns a successful Result with a message. data may be nil.
func OKMsg[T any](data *T, message string) Result[T] {
	return Result[T]{Success: true, Message: message, Data: data}
}

// Fail returns a failed Result with a user-facing message.
func Fail[T any](message string) Result[T] {
	return Result[T]{Success: false, Message: message}
}
