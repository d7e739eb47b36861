package notice

import "fmt"

// Kind classifies a ParseError.
type Kind string

const (
	KindDate      Kind = "date"
	KindCategory  Kind = "category"
	KindStructure Kind = "structure"
	KindRow       Kind = "row"
)

// ParseError is returned when a date, category code, page block or snapshot
// row does not have the expected shape. It is always fatal for the run.
type ParseError struct {
	Kind  Kind
	Input string
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	s := fmt.Sprintf("parse %s: %s", e.Kind, e.Msg)
	if e.Input != "" {
		s += fmt.Sprintf(" %q", e.Input)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
