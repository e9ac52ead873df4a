package hook

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/pushguard/internal/audit"
	"github.com/thiagokokada/pushguard/internal/git/backend"
	"github.com/thiagokokada/pushguard/internal/header"
)

type fakeInspector struct {
	types  map[string]string
	bodies map[string][]string
}

func (f *fakeInspector) Config(string) (string, bool, error) {
	return "", false, nil
}

func (f *fakeInspector) RevisionType(id string) (string, error) {
	typ, ok := f.types[id]
	if !ok {
		return "commit", nil
	}
	return typ, nil
}

func (f *fakeInspector) MessageBody(id string) ([]string, error) {
	body, ok := f.bodies[id]
	if !ok {
		return nil, fmt.Errorf("no such commit %s", id)
	}
	return body, nil
}

// fakePipeline answers with the newest-first lines registered under the last
// argument of the last stage: the new revision for created listings, the
// "old..new" range for added listings.
type fakePipeline struct {
	mu    sync.Mutex
	lines map[string][]string
	calls []string
}

func (f *fakePipeline) RunPipeline(stages []backend.Stage) ([]string, error) {
	argv := stages[len(stages)-1].Argv
	key := argv[len(argv)-1]
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	lines, ok := f.lines[key]
	if !ok {
		return nil, &backend.PipelineError{Stage: len(stages) - 1, Argv: argv, ExitCode: 128, Stderr: "unknown revision"}
	}
	return lines, nil
}

type memRecorder struct {
	mu   sync.Mutex
	recs []audit.Record
	err  error
}

func (m *memRecorder) Record(_ context.Context, rec audit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return m.err
}

func (m *memRecorder) statuses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.recs))
	for _, r := range m.recs {
		out = append(out, r.Status+":"+r.Commit)
	}
	return out
}

func defaultValidator(t *testing.T) *header.Validator {
	t.Helper()
	table, err := header.DefaultTable(header.DefaultThresholds())
	require.NoError(t, err)
	v, err := header.NewValidator(table)
	require.NoError(t, err)
	return v
}

// commitLines renders entries newest first, as git log prints them.
func commitLines(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, ids[i]+" subject of "+ids[i])
	}
	return out
}

func hexID(c byte) string {
	return strings.Repeat(string(c), 40)
}
