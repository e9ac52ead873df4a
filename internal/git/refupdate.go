package git

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ZeroID is the all-zero object name git passes to hooks for a ref that does
// not exist yet (old side) or is being deleted (new side).
const ZeroID = "0000000000000000000000000000000000000000"

var errNoRevisions = errors.New("ref update has neither an old nor a new revision")

// RefUpdate is one ref transition reported by git to a server-side hook.
// An absent revision is the empty string.
type RefUpdate struct {
	Old  string
	New  string
	Name string // full ref name: refs/heads/main
}

// NewRefUpdate normalizes the zero id to an absent revision.
func NewRefUpdate(old, new, name string) (RefUpdate, error) {
	u := RefUpdate{Old: normalizeID(old), New: normalizeID(new), Name: strings.TrimSpace(name)}
	if u.Old == "" && u.New == "" {
		return RefUpdate{}, fmt.Errorf("%s: %w", u.Name, errNoRevisions)
	}
	return u, nil
}

func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	if strings.Trim(id, "0") == "" {
		return ""
	}
	return id
}

func (u RefUpdate) IsCreate() bool {
	return u.Old == "" && u.New != ""
}

func (u RefUpdate) IsDelete() bool {
	return u.New == ""
}

func (u RefUpdate) IsBranch() bool {
	return strings.HasPrefix(u.Name, "refs/heads/")
}

func (u RefUpdate) IsTag() bool {
	return strings.HasPrefix(u.Name, "refs/tags/")
}

// ParseRefUpdates reads pre-receive input: one "<old> <new> <ref>" per line.
func ParseRefUpdates(r io.Reader) ([]RefUpdate, error) {
	var updates []RefUpdate
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		rawLine := scanner.Text()
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 3 {
			return nil, fmt.Errorf("unexpected ref update line: %q", rawLine)
		}
		u, err := NewRefUpdate(parts[0], parts[1], parts[2])
		if err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ref updates: %w", err)
	}
	return updates, nil
}

// RevisionEntry is one "<id> <subject>" line of enumeration output.
type RevisionEntry struct {
	ID      string
	Subject string
}

var revisionLineRe = regexp.MustCompile(`^([0-9a-f]+) (.*)$`)

// ParseError reports enumeration output that is not an "<id> <subject>" line.
type ParseError struct {
	Line string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected revision list line: %q", e.Line)
}

func ParseRevisionEntry(line string) (RevisionEntry, error) {
	m := revisionLineRe.FindStringSubmatch(line)
	if m == nil {
		return RevisionEntry{}, &ParseError{Line: line}
	}
	return RevisionEntry{ID: m[1], Subject: m[2]}, nil
}

// Short returns the abbreviated id used in log lines and reports.
func (e RevisionEntry) Short() string {
	if len(e.ID) > 12 {
		return e.ID[:12]
	}
	return e.ID
}
