package converter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a ParsingError
type ErrorKind int

const (
	UnsupportedConfiguration ErrorKind = iota + 1
	UnsupportedTimeSignature
	MalformedInput
)

func (k ErrorKind) String() string {
	switch k {
	case UnsupportedConfiguration:
		return "unsupported configuration"
	case UnsupportedTimeSignature:
		return "unsupported time signature"
	case MalformedInput:
		return "malformed input"
	default:
		return "parsing error"
	}
}

// ParsingError reports a chart that cannot be converted
type ParsingError struct {
	Kind ErrorKind
	Line int // 1-based input line, 0 if unknown
	Msg  string
	Err  error
}

func (e *ParsingError) Error() string {
	s := e.Kind.String()
	if e.Line > 0 {
		s = fmt.Sprintf("line %d: %s", e.Line, s)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ParsingError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a ParsingError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var pe *ParsingError
	return errors.As(err, &pe) && pe.Kind == kind
}

// ErrEmptyDifficulty is returned when a difficulty has no notes to emit
var ErrEmptyDifficulty = errors.New("empty difficulty")

// ErrUnexpectedEOF is returned when a section is not closed before the input ends
var ErrUnexpectedEOF = errors.New("unexpected end of input")

// ErrGridTooLarge is returned when a grid would exceed the converter's row limit
var ErrGridTooLarge = errors.New("grid too large")
