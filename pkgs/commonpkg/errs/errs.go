package errs

import (
	"errors"
	"fmt"
)

// Error classes shared by the ingestion, embedding and storage layers.
// Callers match them with errors.Is.
var (
	ErrConfiguration              = errors.New("configuration error")
	ErrEmbeddingDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrTransport                  = errors.New("transport failure")
	ErrDuplicateKey               = errors.New("duplicate key conflict")
	ErrNotFound                   = errors.New("not found")
	ErrInvalidArgument            = errors.New("invalid argument")
)

////////////////////////////////////////////////////////////////////////////////

// DimensionMismatchError reports a vector whose length differs from the
// configured dimension.
type DimensionMismatchError struct {
	Got  int
	Want int
}

func NewDimensionMismatch(got, want int) *DimensionMismatchError {
	return &DimensionMismatchError{Got: got, Want: want}
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension %d does not match VECTOR_DIM=%d", e.Got, e.Want)
}

func (e *DimensionMismatchError) Unwrap() error {
	return ErrEmbeddingDimensionMismatch
}
