package genai

import (
	"errors"
	"fmt"
)

// ErrGeneration is the sentinel wrapped by every GenerationError.
var ErrGeneration = errors.New("generation failed")

// GenerationError is returned when the primary content (game markup) could
// not be produced. Callers must not persist anything when they get one.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrGeneration, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGeneration, e.Err}
}
