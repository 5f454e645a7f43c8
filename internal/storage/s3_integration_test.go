//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/linsalefe/pos-plataform/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(ctx context.Context, t *testing.T) *S3Client {
	rc := testutil.NewRustFSContainer(ctx, t)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "leadbot-documents",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))
	require.NoError(t, client.EnsureBucket(ctx), "second call must be a no-op")
	return client
}

func TestS3Client_PutObject(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)

	body := []byte("Preços\n\nA pós custa R$ 500 por mês.")
	key := "knowledge/2/Pre%C3%A7os/20260101T120000Z-precos.txt"
	require.NoError(t, client.PutObject(ctx, key, body, "text/plain; charset=utf-8"))

	meta, err := client.HeadObject(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), meta.ContentLength)
	assert.Equal(t, "text/plain; charset=utf-8", meta.ContentType)
	assert.NotEmpty(t, meta.ETag)

	_, err = client.HeadObject(ctx, "knowledge/2/missing.txt")
	assert.Error(t, err)
}

func TestS3Client_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)

	for _, key := range []string{
		"knowledge/2/Pre%C3%A7os/20260101T120000Z-precos.txt",
		"knowledge/2/Pre%C3%A7os/20260201T120000Z-precos.txt",
		"knowledge/2/Grade/20260101T120000Z-grade.txt",
	} {
		require.NoError(t, client.PutObject(ctx, key, []byte("x"), "text/plain"))
	}

	removed, err := client.DeletePrefix(ctx, "knowledge/2/Pre%C3%A7os/")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = client.HeadObject(ctx, "knowledge/2/Grade/20260101T120000Z-grade.txt")
	assert.NoError(t, err)

	removed, err = client.DeletePrefix(ctx, "knowledge/2/Pre%C3%A7os/")
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = client.DeletePrefix(ctx, "")
	assert.Error(t, err)
}
