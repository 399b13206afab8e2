package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slmtnm/s3tui/internal/storage"
)

// chunkedReader hands out data in fixed-size pieces
type chunkedReader struct {
	data  []byte
	chunk int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func (r *chunkedReader) Size() int64 {
	return int64(len(r.data))
}

// recordingWriter collects writes and fails according to a script
type recordingWriter struct {
	buf    bytes.Buffer
	writes []int
	// failures is consumed one per Write call; nil entries succeed
	failures []func(p []byte) (int, error)
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	if len(w.failures) > 0 {
		fail := w.failures[0]
		w.failures = w.failures[1:]
		if fail != nil {
			n, err := fail(p)
			w.buf.Write(p[:n])
			return n, err
		}
	}
	w.writes = append(w.writes, len(p))
	return w.buf.Write(p)
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func fast() Option {
	return WithRetries(3, time.Millisecond)
}

func TestCopyKeepsSourceChunks(t *testing.T) {
	data := []byte(strings.Repeat("abcdefg", 10))
	w := &recordingWriter{}

	n, err := Copy(context.Background(), w, &chunkedReader{data: data, chunk: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.Equal(t, data, w.buf.Bytes())
	for _, size := range w.writes {
		assert.Equal(t, 7, size)
	}
}

func TestCopyEmptySource(t *testing.T) {
	w := &recordingWriter{}
	n, err := Copy(context.Background(), w, bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, w.writes)
}

func TestCopyRetriesTransientWrite(t *testing.T) {
	data := []byte("0123456789")
	w := &recordingWriter{failures: []func([]byte) (int, error){
		func([]byte) (int, error) { return 0, storage.ErrTransient },
		func([]byte) (int, error) { return 4, syscall.EINTR },
	}}

	n, err := Copy(context.Background(), w, bytes.NewReader(data), fast())
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, "0123456789", w.buf.String())
	assert.Equal(t, []int{6}, w.writes, "only the unwritten tail is retried")
}

func TestCopyStopsOnPermanentWriteError(t *testing.T) {
	boom := errors.New("disk full")
	w := &recordingWriter{failures: []func([]byte) (int, error){
		func([]byte) (int, error) { return 0, boom },
	}}

	_, err := Copy(context.Background(), w, bytes.NewReader([]byte("data")), fast())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, w.writes)
}

func TestCopyGivesUpAfterRetries(t *testing.T) {
	transient := func([]byte) (int, error) { return 0, storage.ErrTransient }
	w := &recordingWriter{failures: []func([]byte) (int, error){transient, transient, transient, transient, transient}}

	_, err := Copy(context.Background(), w, bytes.NewReader([]byte("data")), fast())
	assert.ErrorIs(t, err, storage.ErrTransient)
}

func TestCopyPropagatesReadError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := Copy(context.Background(), &recordingWriter{}, failingReader{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestCopyReportsProgress(t *testing.T) {
	data := make([]byte, 3*DefaultChunkSize+5)
	var seen []Progress

	_, err := Copy(context.Background(), io.Discard, &chunkedReader{data: data, chunk: DefaultChunkSize},
		WithProgress(func(p Progress) { seen = append(seen, p) }))
	require.NoError(t, err)

	require.Len(t, seen, 4)
	last := seen[len(seen)-1]
	assert.Equal(t, int64(len(data)), last.Transferred)
	assert.Equal(t, int64(len(data)), last.Total)
	assert.Equal(t, 1.0, last.Fraction())
}

func TestCopyHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Copy(ctx, io.Discard, bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgressFraction(t *testing.T) {
	assert.Zero(t, Progress{Transferred: 10, Total: -1}.Fraction())
	assert.Equal(t, 0.5, Progress{Transferred: 5, Total: 10}.Fraction())
	assert.Equal(t, 1.0, Progress{Transferred: 20, Total: 10}.Fraction())
}
