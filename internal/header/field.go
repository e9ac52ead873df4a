// Package header validates the structured "Prefix: value" lines embedded in a
// commit message body.
package header

import (
	"fmt"
	"regexp"
	"strings"
)

// Field is a recognized header line prefix and the pattern its value must match
// in full.
type Field struct {
	Name     string
	Prefix   string
	Pattern  *regexp.Regexp
	Required bool
}

// NewField compiles pattern anchored at both ends.
func NewField(name, prefix, pattern string) (Field, error) {
	if name == "" || prefix == "" {
		return Field{}, fmt.Errorf("field needs a name and a prefix (name=%q prefix=%q)", name, prefix)
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return Field{}, fmt.Errorf("field %s: %w", name, err)
	}
	return Field{Name: name, Prefix: prefix, Pattern: re}, nil
}

// Thresholds are the tunable limits of the default field table.
type Thresholds struct {
	RefMinDigits      int `mapstructure:"ref_min_digits"`
	RefMaxDigits      int `mapstructure:"ref_max_digits"`
	SummaryMaxLen     int `mapstructure:"summary_max_len"`
	DescriptionMinLen int `mapstructure:"description_min_len"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		RefMinDigits:      2,
		RefMaxDigits:      6,
		SummaryMaxLen:     72,
		DescriptionMinLen: 72,
	}
}

func (t Thresholds) validate() error {
	switch {
	case t.RefMinDigits < 1 || t.RefMaxDigits < t.RefMinDigits:
		return fmt.Errorf("invalid reference digit range %d-%d", t.RefMinDigits, t.RefMaxDigits)
	case t.SummaryMaxLen < 1:
		return fmt.Errorf("invalid summary length %d", t.SummaryMaxLen)
	case t.DescriptionMinLen < 1:
		return fmt.Errorf("invalid description length %d", t.DescriptionMinLen)
	}
	return nil
}

// Default field names.
const (
	FieldSummary     = "summary"
	FieldRef         = "ref"
	FieldDescription = "description"
	FieldSignedOff   = "signed-off-by"
)

// signOffPattern: two words, then an email, bare or inside a pair of angle
// brackets, whose domain is exactly two segments.
const (
	signOffEmail   = `[^\s@<>]+@[a-z0-9-]+\.[a-z]{2,4}`
	signOffPattern = `\S+\s\S+\s(?:<` + signOffEmail + `>|` + signOffEmail + `)`
)

// Table is the ordered set of recognized fields.
type Table []Field

// DefaultTable builds the stock fields from t.
func DefaultTable(t Thresholds) (Table, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	specs := [][3]string{
		{FieldSummary, "Summary:", fmt.Sprintf(`.{0,%d}`, t.SummaryMaxLen)},
		{FieldRef, "REF:", fmt.Sprintf(`#[0-9]{%d,%d}`, t.RefMinDigits, t.RefMaxDigits)},
		{FieldDescription, "Description:", fmt.Sprintf(`.{%d,}`, t.DescriptionMinLen)},
		{FieldSignedOff, "Signed-off-by:", signOffPattern},
	}
	table := make(Table, 0, len(specs))
	for _, spec := range specs {
		f, err := NewField(spec[0], spec[1], spec[2])
		if err != nil {
			return nil, err
		}
		table = append(table, f)
	}
	return table, nil
}

// With returns a copy of the table where f replaces the field of the same name,
// or is appended when the name is new.
func (t Table) With(f Field) Table {
	out := make(Table, 0, len(t)+1)
	replaced := false
	for _, existing := range t {
		if existing.Name == f.Name {
			out = append(out, f)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, f)
	}
	return out
}

// Require marks the named fields as mandatory.
func (t Table) Require(names ...string) (Table, error) {
	out := append(Table(nil), t...)
	for _, name := range names {
		i := out.index(name)
		if i < 0 {
			return nil, fmt.Errorf("cannot require unknown field %q", name)
		}
		out[i].Required = true
	}
	return out, nil
}

func (t Table) index(name string) int {
	for i, f := range t {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// match returns the field whose prefix starts line, preferring the longest
// prefix.
func (t Table) match(line string) (Field, bool) {
	best := -1
	for i, f := range t {
		if !strings.HasPrefix(line, f.Prefix) {
			continue
		}
		if best < 0 || len(f.Prefix) > len(t[best].Prefix) {
			best = i
		}
	}
	if best < 0 {
		return Field{}, false
	}
	return t[best], true
}
