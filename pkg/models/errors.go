package models

import (
	"errors"
	"fmt"
)

// ErrModelNotFound marks a model source whose artifact does not exist. The
// loader moves on to the next source only for this error.
var ErrModelNotFound = errors.New("model not found")

var ErrBadRequest = errors.New("bad request")

type ModelNotFoundError struct {
	Path string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("no model found at %s", e.Path)
}

func (e *ModelNotFoundError) Unwrap() error {
	return ErrModelNotFound
}

func NewModelNotFoundError(path string) error {
	return &ModelNotFoundError{Path: path}
}

type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

func (e *BadRequestError) Unwrap() error {
	return ErrBadRequest
}

func NewBadRequestError(message string) error {
	return &BadRequestError{Message: message}
}
