package hook

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/thiagokokada/pushguard/internal/header"
)

const reportPrefix = "*** "

// Report writes err the way the pusher sees it: every line is prefixed so it
// stands out among the remote's other output.
func Report(w io.Writer, err error) error {
	if err == nil {
		return nil
	}
	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(reportPrefix)
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	var rej *RejectionError
	if errors.As(err, &rej) {
		line("push rejected: commit %s on %s", rej.Commit.Short(), rej.Ref)
		line("  %s", rej.Commit.Subject)
		err = rej.Err
	}

	var (
		dup       *header.DuplicateFieldError
		malformed *header.MalformedFieldError
		missing   *header.MissingFieldError
	)
	switch {
	case errors.As(err, &dup):
		line("field %s appears twice:", dup.Field)
		line("  line %d: %s", dup.First.Number, dup.First.Text)
		line("  line %d: %s", dup.Second.Number, dup.Second.Text)
	case errors.As(err, &malformed):
		line("field %s is malformed on line %d:", malformed.Field, malformed.Line.Number)
		line("  %s", malformed.Line.Text)
		line("value must match %s", malformed.Pattern)
	case errors.As(err, &missing):
		line("required field %s is missing; add a %q line", missing.Field, missing.Prefix)
	default:
		line("%v", err)
	}

	_, werr := io.WriteString(w, b.String())
	return werr
}
