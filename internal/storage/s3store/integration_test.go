package s3store

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"

	"github.com/slmtnm/s3tui/internal/storage"
	"github.com/slmtnm/s3tui/internal/transfer"
)

const (
	minioImage        = "minio/minio:RELEASE.2024-01-16T16-07-38Z"
	minioTerminateMsg = "failed to terminate MinIO container: %s"
	httpPrefix        = "http://"
)

func TestProviderAgainstMinIO(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MinIO integration test in short mode")
	}
	ctx := context.Background()

	minioContainer, err := minio.Run(ctx, minioImage)
	require.NoError(t, err)
	defer func() {
		if err := testcontainers.TerminateContainer(minioContainer); err != nil {
			t.Logf(minioTerminateMsg, err)
		}
	}()

	endpoint, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err)
	if !strings.HasPrefix(endpoint, httpPrefix) {
		endpoint = httpPrefix + endpoint
	}

	client, err := NewClient(ctx, ClientOptions{
		Region:    "us-east-1",
		Endpoint:  endpoint,
		AccessKey: minioContainer.Username,
		SecretKey: minioContainer.Password,
	})
	require.NoError(t, err)

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(testBucket)})
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	p := New(client, testBucket, logger)
	require.NoError(t, p.HeadBucket(ctx))

	for _, key := range []string{"docs/a.txt", "docs/sub/b.txt", "docs/sub/c.txt", "docs/readme.md"} {
		require.NoError(t, p.Put(ctx, key, strings.NewReader("content of "+key)))
	}

	entries, err := p.List(ctx, "docs/")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "sub/", entries[0].Name)
	assert.Equal(t, storage.Directory, entries[0].Kind)
	assert.Equal(t, "a.txt", entries[1].Name)
	assert.Equal(t, "readme.md", entries[2].Name)

	payload := bytes.Repeat([]byte("0123456789abcdef"), 4*transfer.DefaultChunkSize)
	w, err := p.Create(ctx, "big.bin")
	require.NoError(t, err)
	_, err = transfer.Copy(ctx, w, bytes.NewReader(payload))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := p.Open(ctx, "big.bin")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, payload, got)

	require.NoError(t, p.Delete(ctx, "big.bin"))
	require.NoError(t, p.Delete(ctx, "big.bin"))
}
