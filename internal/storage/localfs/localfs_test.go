package localfs

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slmtnm/s3tui/internal/storage"
	"github.com/slmtnm/s3tui/internal/transfer"
)

func newProvider(t *testing.T) (*Provider, string) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	dir := t.TempDir()
	p, err := New(dir, logger)
	require.NoError(t, err)
	return p, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListClassifiesChildren(t *testing.T) {
	p, dir := newProvider(t)
	writeFile(t, filepath.Join(dir, "b.txt"), "hello")
	writeFile(t, filepath.Join(dir, "a.txt"), "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	entries, err := p.List(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "sub/", entries[0].Name)
	assert.Equal(t, storage.Directory, entries[0].Kind)
	assert.Equal(t, "a.txt", entries[1].Name)
	assert.Equal(t, "b.txt", entries[2].Name)
	assert.Equal(t, storage.File, entries[2].Kind)
	require.NotNil(t, entries[2].Size)
	assert.Equal(t, int64(5), *entries[2].Size)
	assert.Nil(t, entries[2].Owner)
	for _, e := range entries {
		assert.Equal(t, dir, e.Location)
	}
}

func TestListDegradesBrokenChildToUnknown(t *testing.T) {
	p, dir := newProvider(t)
	writeFile(t, filepath.Join(dir, "ok.txt"), "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "dangling")))

	entries, err := p.List(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	kinds := make(map[string]storage.Kind)
	for _, e := range entries {
		kinds[e.Name] = e.Kind
	}
	assert.Equal(t, storage.Unknown, kinds["dangling"])
	assert.Equal(t, storage.File, kinds["ok.txt"])
	assert.Equal(t, storage.Directory, kinds["sub/"])
}

func TestListErrors(t *testing.T) {
	p, dir := newProvider(t)
	file := filepath.Join(dir, "plain")
	writeFile(t, file, "x")

	_, err := p.List(context.Background(), filepath.Join(dir, "nope"))
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	_, err = p.List(context.Background(), file)
	assert.True(t, errors.Is(err, storage.ErrUnsupported))
}

func TestOpenReportsSize(t *testing.T) {
	p, dir := newProvider(t)
	path := filepath.Join(dir, "data")
	writeFile(t, path, "0123456789")

	r, err := p.Open(context.Background(), path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, int64(10), r.Size())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))

	_, err = p.Open(context.Background(), filepath.Join(dir, "absent"))
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestCreateTruncates(t *testing.T) {
	p, dir := newProvider(t)
	path := filepath.Join(dir, "out")
	writeFile(t, path, "old content that is long")

	w, err := p.Create(context.Background(), path)
	require.NoError(t, err)
	_, err = w.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	_, err = p.Create(context.Background(), filepath.Join(dir, "missing", "out"))
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestDeleteRefusesDirectories(t *testing.T) {
	p, dir := newProvider(t)
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, filepath.Join(sub, "keep.txt"), "x")

	err := p.Delete(context.Background(), sub)
	assert.True(t, errors.Is(err, storage.ErrUnsupported))

	_, statErr := os.Stat(filepath.Join(sub, "keep.txt"))
	assert.NoError(t, statErr)
}

func TestDeleteFile(t *testing.T) {
	p, dir := newProvider(t)
	path := filepath.Join(dir, "gone.txt")
	writeFile(t, path, "x")

	require.NoError(t, p.Delete(context.Background(), path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// a second delete is not a no-op on this backend
	err = p.Delete(context.Background(), path)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestRoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 3*transfer.DefaultChunkSize + 17} {
		p, dir := newProvider(t)
		payload := make([]byte, size)
		_, err := rand.Read(payload)
		require.NoError(t, err)

		src := filepath.Join(dir, "src")
		require.NoError(t, os.WriteFile(src, payload, 0o644))

		r, err := p.Open(context.Background(), src)
		require.NoError(t, err)
		w, err := p.Create(context.Background(), filepath.Join(dir, "dst"))
		require.NoError(t, err)

		n, err := transfer.Copy(context.Background(), w, r)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		require.NoError(t, r.Close())
		assert.Equal(t, int64(size), n)

		got, err := os.ReadFile(filepath.Join(dir, "dst"))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(payload, got), "size %d", size)
	}
}

func TestParentAndJoin(t *testing.T) {
	p, dir := newProvider(t)
	assert.Equal(t, filepath.Join(dir, "sub"), p.Join(dir, "sub/"))
	assert.Equal(t, dir, p.Parent(filepath.Join(dir, "sub")))
	assert.Equal(t, "/", p.Parent("/"))
}
