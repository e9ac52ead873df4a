package header

import (
	"errors"
	"slices"
	"strings"
)

// CommitHeader maps a field name to the single value captured for it.
type CommitHeader map[string]string

type state uint8

const (
	stateScanning state = iota
	stateDone
	stateRejected
)

// Validator classifies commit message lines against a field table.
type Validator struct {
	table Table
}

func NewValidator(t Table) (*Validator, error) {
	if len(t) == 0 {
		return nil, errors.New("empty field table")
	}
	seen := make(map[string]bool, len(t))
	for _, f := range t {
		if f.Pattern == nil {
			return nil, errors.New("field " + f.Name + " has no pattern")
		}
		if seen[f.Name] {
			return nil, errors.New("field " + f.Name + " declared twice")
		}
		seen[f.Name] = true
	}
	return &Validator{table: t}, nil
}

// Table returns a copy of the validator's field table.
func (v *Validator) Table() Table {
	return slices.Clone(v.table)
}

// scan holds the state of one Validate call.
type scan struct {
	state  state
	header CommitHeader
	lines  map[string]Line
	err    HeaderError
}

// Validate makes one pass over lines. Lines without a recognized prefix are
// ignored. The first duplicate or malformed field rejects the message; at end
// of input every required field must have been seen.
func (v *Validator) Validate(lines []string) (CommitHeader, error) {
	s := scan{
		state:  stateScanning,
		header: CommitHeader{},
		lines:  map[string]Line{},
	}
	for i, text := range lines {
		s.step(v.table, Line{Number: i + 1, Text: text})
		if s.state == stateRejected {
			return nil, s.err
		}
	}
	s.finish(v.table)
	if s.state == stateRejected {
		return nil, s.err
	}
	return s.header, nil
}

func (s *scan) step(t Table, line Line) {
	f, ok := t.match(line.Text)
	if !ok {
		return
	}
	if first, dup := s.lines[f.Name]; dup {
		s.reject(&DuplicateFieldError{Field: f.Name, First: first, Second: line})
		return
	}
	value := strings.TrimSpace(strings.TrimPrefix(line.Text, f.Prefix))
	if !f.Pattern.MatchString(value) {
		s.reject(&MalformedFieldError{Field: f.Name, Line: line, Value: value, Pattern: f.Pattern.String()})
		return
	}
	s.header[f.Name] = value
	s.lines[f.Name] = line
}

func (s *scan) finish(t Table) {
	for _, f := range t {
		if !f.Required {
			continue
		}
		if _, ok := s.header[f.Name]; !ok {
			s.reject(&MissingFieldError{Field: f.Name, Prefix: f.Prefix})
			return
		}
	}
	s.state = stateDone
}

func (s *scan) reject(err HeaderError) {
	s.state = stateRejected
	s.err = err
}
