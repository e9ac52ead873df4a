package hook

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/pushguard/internal/header"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeMessage(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestReadMessage(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "COMMIT_EDITMSG")
	writeMessage(t, path, "Subject\r\n\nREF: #42\n# Please enter the commit message\n#REF: #1\n\n")

	lines, err := ReadMessage(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Subject", "", "REF: #42"}, lines)

	writeMessage(t, path, "")
	lines, err = ReadMessage(path)
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = ReadMessage(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckMessage(t *testing.T) {
	t.Parallel()
	v := defaultValidator(t)
	path := filepath.Join(t.TempDir(), "msg")

	writeMessage(t, path, "Subject\n\nREF: #42\n")
	h, err := CheckMessage(path, v)
	require.NoError(t, err)
	assert.Equal(t, header.CommitHeader{header.FieldRef: "#42"}, h)

	writeMessage(t, path, "Subject\n\nREF: #42\nREF: #43\n")
	_, err = CheckMessage(path, v)
	var dup *header.DuplicateFieldError
	assert.ErrorAs(t, err, &dup)
}

func TestWatch(t *testing.T) {
	orig := watchDebounceDelay
	watchDebounceDelay = 10 * time.Millisecond
	t.Cleanup(func() { watchDebounceDelay = orig })

	path := filepath.Join(t.TempDir(), "COMMIT_EDITMSG")
	writeMessage(t, path, "Subject\n\nREF: #42\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v := defaultValidator(t)
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, v, out) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), path+": ok")
	}, 2*time.Second, 10*time.Millisecond, "initial check")

	writeMessage(t, path, "Subject\n\nREF: #4\n")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "field ref is malformed")
	}, 2*time.Second, 10*time.Millisecond, "check after write")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
