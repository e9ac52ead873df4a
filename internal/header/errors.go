package header

import "fmt"

// Line is one line of a commit message; Number is 1-based.
type Line struct {
	Number int
	Text   string
}

// HeaderError is implemented by every validation failure.
type HeaderError interface {
	error
	FieldName() string
}

// DuplicateFieldError reports a field that appears more than once.
type DuplicateFieldError struct {
	Field  string
	First  Line
	Second Line
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("field %s repeated on line %d (%q); first given on line %d (%q)",
		e.Field, e.Second.Number, e.Second.Text, e.First.Number, e.First.Text)
}

func (e *DuplicateFieldError) FieldName() string { return e.Field }

// MalformedFieldError reports a value that does not match its field pattern.
type MalformedFieldError struct {
	Field   string
	Line    Line
	Value   string
	Pattern string
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("field %s on line %d has malformed value %q; expected %s",
		e.Field, e.Line.Number, e.Value, e.Pattern)
}

func (e *MalformedFieldError) FieldName() string { return e.Field }

// MissingFieldError reports a required field that never appeared.
type MissingFieldError struct {
	Field  string
	Prefix string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field %s (%q line) is missing", e.Field, e.Prefix)
}

func (e *MissingFieldError) FieldName() string { return e.Field }
