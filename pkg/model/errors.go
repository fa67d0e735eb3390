package model

import "errors"

// Input validation failures. Every error returned by the parser or a task
// list operation wraps exactly one of these.
var (
	ErrCommandNotFound = errors.New("command not found")
	ErrBlankTask       = errors.New("blank task")
	ErrBlankDetails    = errors.New("blank details")
	ErrInvalidFlag     = errors.New("invalid flag")
	ErrDateTimeParse   = errors.New("invalid date time")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// IsInputError reports whether err is a user input failure rather than an
// I/O or programming error.
func IsInputError(err error) bool {
	for _, kind := range []error{
		ErrCommandNotFound, ErrBlankTask, ErrBlankDetails,
		ErrInvalidFlag, ErrDateTimeParse, ErrIndexOutOfRange,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// Flag selects which part of a deadline or event an update rewrites.
type Flag int

const (
	FlagNone Flag = iota
	FlagMessage
	FlagTime
)

func (f Flag) String() string {
	switch f {
	case FlagMessage:
		return "-m"
	case FlagTime:
		return "-t"
	default:
		return ""
	}
}
