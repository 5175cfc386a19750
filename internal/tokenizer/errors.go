package tokenizer

import (
	"errors"
	"fmt"
)

var (
	// ErrConstruction matches every *ConstructionError.
	ErrConstruction = errors.New("tokenizer construction failed")
	// ErrInputRejected is returned by TryTokenize and TryTokenizeToString
	// when the text cannot be processed. Tokenize and TokenizeToString turn
	// it into an empty result instead.
	ErrInputRejected = errors.New("input rejected")
	// ErrTagIndex matches every *IndexError.
	ErrTagIndex = errors.New("tag index out of range")
)

// ConstructionError reports why a session could not be built.
type ConstructionError struct {
	Op  string
	Err error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construct tokenizer: %s: %v", e.Op, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

func (e *ConstructionError) Is(target error) bool { return target == ErrConstruction }

// IndexError reports a tag index outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("tag index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrTagIndex }
