package domain

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// InputError carries a message meant for the API caller.
type InputError struct {
	msg string
}

func (e *InputError) Error() string { return e.msg }
func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalid(msg string) error { return &InputError{msg: msg} }
