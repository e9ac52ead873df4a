package git

import (
	"errors"
	"strings"
	"testing"
)

const (
	commitA = "1111111111111111111111111111111111111111"
	commitB = "2222222222222222222222222222222222222222"
)

func TestNewRefUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		old, new string
		want     RefUpdate
		create   bool
		delete   bool
	}{
		{name: "update", old: commitA, new: commitB, want: RefUpdate{Old: commitA, New: commitB, Name: "refs/heads/main"}},
		{name: "create", old: ZeroID, new: commitB, want: RefUpdate{New: commitB, Name: "refs/heads/main"}, create: true},
		{name: "delete", old: commitA, new: ZeroID, want: RefUpdate{Old: commitA, Name: "refs/heads/main"}, delete: true},
		{name: "empty_old", old: "", new: commitB, want: RefUpdate{New: commitB, Name: "refs/heads/main"}, create: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewRefUpdate(tt.old, tt.new, "refs/heads/main")
			if err != nil {
				t.Fatalf("NewRefUpdate() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("NewRefUpdate() = %+v, want %+v", got, tt.want)
			}
			if got.IsCreate() != tt.create || got.IsDelete() != tt.delete {
				t.Fatalf("IsCreate=%v IsDelete=%v, want %v %v", got.IsCreate(), got.IsDelete(), tt.create, tt.delete)
			}
			if !got.IsBranch() || got.IsTag() {
				t.Fatalf("expected branch ref")
			}
		})
	}
}

func TestNewRefUpdate_BothAbsent(t *testing.T) {
	t.Parallel()

	_, err := NewRefUpdate(ZeroID, ZeroID, "refs/heads/main")
	if !errors.Is(err, errNoRevisions) {
		t.Fatalf("expected errNoRevisions, got %v", err)
	}
}

func TestParseRefUpdates(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		ZeroID + " " + commitA + " refs/heads/feature",
		commitA + " " + commitB + " refs/heads/main\r",
		"",
		commitB + " " + ZeroID + " refs/tags/v1",
	}, "\n")

	got, err := ParseRefUpdates(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseRefUpdates() error = %v", err)
	}
	want := []RefUpdate{
		{New: commitA, Name: "refs/heads/feature"},
		{Old: commitA, New: commitB, Name: "refs/heads/main"},
		{Old: commitB, Name: "refs/tags/v1"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d updates, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("update %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseRefUpdates_InvalidLine(t *testing.T) {
	t.Parallel()

	if _, err := ParseRefUpdates(strings.NewReader(commitA + " refs/heads/main\n")); err == nil {
		t.Fatal("expected error")
	}
	if _, err := ParseRefUpdates(strings.NewReader(ZeroID + " " + ZeroID + " refs/heads/main\n")); err == nil {
		t.Fatal("expected error for update without revisions")
	}
}

func TestParseRevisionEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    RevisionEntry
		wantErr bool
	}{
		{name: "subject", line: commitA + " Add feature", want: RevisionEntry{ID: commitA, Subject: "Add feature"}},
		{name: "empty_subject", line: commitA + " ", want: RevisionEntry{ID: commitA}},
		{name: "subject_spaces_kept", line: "abc  two  spaces ", want: RevisionEntry{ID: "abc", Subject: " two  spaces "}},
		{name: "no_separator", line: commitA, wantErr: true},
		{name: "uppercase_hex", line: "ABCDEF subject", wantErr: true},
		{name: "commit_prefix", line: "commit " + commitA, wantErr: true},
		{name: "empty", line: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRevisionEntry(tt.line)
			if tt.wantErr {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected ParseError, got %+v, %v", got, err)
				}
				if parseErr.Line != tt.line {
					t.Fatalf("ParseError.Line = %q, want %q", parseErr.Line, tt.line)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRevisionEntry() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseRevisionEntry() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
