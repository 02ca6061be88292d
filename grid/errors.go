package grid

import (
	"errors"
	"fmt"
)

// ErrOutOfRange matches every *OutOfRangeError via errors.Is.
var ErrOutOfRange = errors.New("value out of range")

// OutOfRangeError reports a brush argument outside its documented range.
type OutOfRangeError struct {
	Field    string
	Value    int
	Min, Max int // inclusive
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("grid: %s=%d out of range [%d,%d]", e.Field, e.Value, e.Min, e.Max)
}

// Is lets errors.Is(err, ErrOutOfRange) match.
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// CheckLevel returns an *OutOfRangeError unless level is in [MinLevel, MaxLevel].
func CheckLevel(level int) error {
	if level < MinLevel || level > MaxLevel {
		return &OutOfRangeError{Field: "level", Value: level, Min: MinLevel, Max: MaxLevel}
	}
	return nil
}

func checkCoord(field string, v int) error {
	if v < 0 || v >= Size {
		return &OutOfRangeError{Field: field, Value: v, Min: 0, Max: Size - 1}
	}
	return nil
}

// ValidLevel reports whether level is a usable brush intensity.
func ValidLevel(level int) bool {
	return CheckLevel(level) == nil
}
