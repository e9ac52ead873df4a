package git

import (
	"errors"
	"iter"
	"log/slog"

	"github.com/thiagokokada/pushguard/internal/git/backend"
)

var (
	// ErrNoOldRevision is yielded by ListAdded for a ref that did not exist.
	ErrNoOldRevision = errors.New("ref update has no old revision; list created commits instead")
	// ErrSequenceConsumed is yielded when a revision sequence is ranged over twice.
	ErrSequenceConsumed = errors.New("revision sequence already consumed")
)

// revisionFormat prints one "<id> <subject>" line per commit.
const revisionFormat = "--format=%H %s"

// PipelineRunner runs a chain of external programs. *backend.Runner satisfies it.
type PipelineRunner interface {
	RunPipeline(stages []backend.Stage) ([]string, error)
}

// Enumerator lists the commits a ref update introduces.
type Enumerator struct {
	Pipeline PipelineRunner
}

func NewEnumerator(p PipelineRunner) *Enumerator {
	return &Enumerator{Pipeline: p}
}

// ListCreated yields, oldest first, the commits reachable from u.New that no
// existing branch head already reaches. The head equal to u.New is not used as
// an exclusion, so the pushed tip is never treated as already known.
func (e *Enumerator) ListCreated(u RefUpdate) iter.Seq2[RevisionEntry, error] {
	if u.New == "" {
		return failed(errors.New("ref update has no new revision"))
	}
	return e.list("created", u, []backend.Stage{
		{Argv: []string{"git", "rev-parse", "--not", "--branches"}},
		{Argv: []string{"grep", "-v", "-F", "-e", u.New}, TolerateNonZeroExit: true},
		{Argv: []string{"git", "log", "--no-color", revisionFormat, "--stdin", u.New}},
	})
}

// ListAdded yields, oldest first, the commits in the range (u.Old, u.New].
func (e *Enumerator) ListAdded(u RefUpdate) iter.Seq2[RevisionEntry, error] {
	if u.Old == "" {
		return failed(ErrNoOldRevision)
	}
	if u.New == "" {
		return failed(errors.New("ref update has no new revision"))
	}
	return e.list("added", u, []backend.Stage{
		{Argv: []string{"git", "log", "--no-color", revisionFormat, u.Old + ".." + u.New}},
	})
}

// list runs the pipeline on first use and walks its newest-first output
// backwards, parsing each line only when the consumer reaches it.
func (e *Enumerator) list(kind string, u RefUpdate, stages []backend.Stage) iter.Seq2[RevisionEntry, error] {
	consumed := false
	return func(yield func(RevisionEntry, error) bool) {
		if consumed {
			yield(RevisionEntry{}, ErrSequenceConsumed)
			return
		}
		consumed = true
		lines, err := e.Pipeline.RunPipeline(stages)
		if err != nil {
			yield(RevisionEntry{}, err)
			return
		}
		slog.Debug("revisions listed",
			slog.String("kind", kind),
			slog.String("ref", u.Name),
			slog.Int("count", len(lines)),
		)
		for i := len(lines) - 1; i >= 0; i-- {
			entry, err := ParseRevisionEntry(lines[i])
			if err != nil {
				yield(RevisionEntry{}, err)
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}

func failed(err error) iter.Seq2[RevisionEntry, error] {
	return func(yield func(RevisionEntry, error) bool) {
		yield(RevisionEntry{}, err)
	}
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq iter.Seq2[RevisionEntry, error]) ([]RevisionEntry, error) {
	var out []RevisionEntry
	for entry, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}
