package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid search request")
	ErrSizeTooSmall   = errors.New("board size too small")
	ErrSizeTooBig     = errors.New("board size too big")
)

// InvalidRequestError is a precondition violation by the caller of Search
type InvalidRequestError struct {
	Field      string
	Value      int
	Coordinate *Coordinate
	Reason     string
}

func (e *InvalidRequestError) Error() string {
	if e.Coordinate != nil {
		return fmt.Sprintf("%v: %s %s %s", ErrInvalidRequest, e.Field, e.Coordinate, e.Reason)
	}
	return fmt.Sprintf("%v: %s %d %s", ErrInvalidRequest, e.Field, e.Value, e.Reason)
}

func (e *InvalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

// SizeBound names which side of the allowed range a resize breached
type SizeBound string

const (
	BoundBottom SizeBound = "bottom"
	BoundUpper  SizeBound = "upper"
)

// SizeError is a user-correctable board resize failure
type SizeError struct {
	Size  int       `json:"size"`
	Bound SizeBound `json:"bound"`
	Limit int       `json:"limit"`
}

func (e *SizeError) Error() string {
	if e.Bound == BoundBottom {
		return fmt.Sprintf("Selected size of %d is too small. Chessboard size should be greater than or equal to %d", e.Size, e.Limit)
	}
	return fmt.Sprintf("Selected size of %d is too big. Chessboard size should be less than or equal to %d", e.Size, e.Limit)
}

func (e *SizeError) Unwrap() error {
	if e.Bound == BoundBottom {
		return ErrSizeTooSmall
	}
	return ErrSizeTooBig
}

// SizeRules is the inclusive range of allowed board sizes
type SizeRules struct {
	Bottom int `json:"bottom_rule"`
	Upper  int `json:"upper_rule"`
}

// DefaultSizeRules returns the 6..16 range
func DefaultSizeRules() SizeRules {
	return SizeRules{Bottom: DefaultBottomRule, Upper: DefaultUpperRule}
}

// Check validates a requested board size
func (r SizeRules) Check(size int) error {
	if size < r.Bottom {
		return &SizeError{Size: size, Bound: BoundBottom, Limit: r.Bottom}
	}
	if size > r.Upper {
		return &SizeError{Size: size, Bound: BoundUpper, Limit: r.Upper}
	}
	return nil
}
