package hook

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/thiagokokada/pushguard/internal/audit"
	"github.com/thiagokokada/pushguard/internal/config"
	"github.com/thiagokokada/pushguard/internal/git"
	"github.com/thiagokokada/pushguard/internal/header"
)

// Recorder stores one audit record per decision. *audit.Store and audit.Nop
// satisfy it.
type Recorder interface {
	Record(ctx context.Context, rec audit.Record) error
}

// RejectionError names the commit whose message failed validation.
type RejectionError struct {
	Ref    string
	Commit git.RevisionEntry
	Err    error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: commit %s (%s): %v", e.Ref, e.Commit.Short(), e.Commit.Subject, e.Err)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// Checker validates every commit a push introduces.
type Checker struct {
	Inspector  git.Inspector
	Enumerator *git.Enumerator
	Validator  *header.Validator
	// Mode is config.ModeCreated (also used when empty) or config.ModeAdded.
	Mode      string
	CheckTags bool
	Recorder  Recorder
	Identity  audit.Identity
	Logger    *slog.Logger
}

// Check stops at the first rejected commit, oldest first within each update,
// and returns a *RejectionError for it.
func (c *Checker) Check(ctx context.Context, updates []git.RefUpdate) error {
	for _, u := range updates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.checkUpdate(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkUpdate(ctx context.Context, u git.RefUpdate) error {
	log := c.logger().With(slog.String("ref", u.Name))
	if reason := c.skipReason(u); reason != "" {
		log.Debug("ref update skipped", slog.String("reason", reason))
		c.record(ctx, u, audit.Record{Status: audit.StatusSkipped, Reason: reason})
		return nil
	}
	typ, err := c.Inspector.RevisionType(u.New)
	if err != nil {
		return fmt.Errorf("%s: %w", u.Name, err)
	}
	if typ != "commit" {
		log.Debug("ref update skipped", slog.String("type", typ))
		c.record(ctx, u, audit.Record{Status: audit.StatusSkipped, Reason: "points at a " + typ})
		return nil
	}

	checked := 0
	for entry, err := range c.revisions(u) {
		if err != nil {
			return fmt.Errorf("%s: list revisions: %w", u.Name, err)
		}
		body, err := c.Inspector.MessageBody(entry.ID)
		if err != nil {
			return fmt.Errorf("%s: read message of %s: %w", u.Name, entry.Short(), err)
		}
		rec := audit.Record{Commit: entry.ID, Subject: entry.Subject}
		if _, err := c.Validator.Validate(body); err != nil {
			rec.Status = audit.StatusRejected
			rec.Reason = err.Error()
			var herr header.HeaderError
			if errors.As(err, &herr) {
				rec.Field = herr.FieldName()
			}
			c.record(ctx, u, rec)
			log.Info("commit rejected",
				slog.String("commit", entry.ID),
				slog.Any("error", err),
			)
			return &RejectionError{Ref: u.Name, Commit: entry, Err: err}
		}
		rec.Status = audit.StatusAccepted
		c.record(ctx, u, rec)
		checked++
	}
	log.Debug("ref update accepted", slog.Int("commits", checked))
	return nil
}

func (c *Checker) skipReason(u git.RefUpdate) string {
	switch {
	case u.IsDelete():
		return "deletion"
	case u.IsBranch():
		return ""
	case u.IsTag() && c.CheckTags:
		return ""
	default:
		return "not a branch"
	}
}

func (c *Checker) revisions(u git.RefUpdate) iter.Seq2[git.RevisionEntry, error] {
	if c.Mode == config.ModeAdded && !u.IsCreate() {
		return c.Enumerator.ListAdded(u)
	}
	return c.Enumerator.ListCreated(u)
}

// record never fails the push; audit problems are logged.
func (c *Checker) record(ctx context.Context, u git.RefUpdate, rec audit.Record) {
	if c.Recorder == nil {
		return
	}
	rec.Ref = u.Name
	rec.OldRev = u.Old
	rec.NewRev = u.New
	if err := c.Recorder.Record(ctx, rec.WithIdentity(c.Identity)); err != nil {
		c.logger().Warn("audit record failed", slog.String("ref", u.Name), slog.Any("error", err))
	}
}

func (c *Checker) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
