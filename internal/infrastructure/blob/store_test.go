package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	info, err := s.Put(ctx, "unit/u-1/lease.pdf", strings.NewReader("hello"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "unit/u-1/lease.pdf", info.Key)
	assert.EqualValues(t, 5, info.Size)
	assert.NotEmpty(t, info.URL)

	_, err = s.Put(ctx, "unit/u-1/lease.pdf", strings.NewReader("again"), "application/pdf")
	assert.Error(t, err, "keys are create-only")

	got, rc, err := s.Get(ctx, "unit/u-1/lease.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(body))
	assert.EqualValues(t, 5, got.Size)

	require.NoError(t, s.Delete(ctx, "unit/u-1/lease.pdf"))
	_, _, err = s.Get(ctx, "unit/u-1/lease.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFilesystemStore(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestSanitizeKey(t *testing.T) {
	for _, key := range []string{"", "  ", "/etc/passwd", "../secret", "a/../../b"} {
		_, err := sanitizeKey(key)
		assert.Error(t, err, key)
	}
	k, err := sanitizeKey("tenant/t-1/./id.png")
	require.NoError(t, err)
	assert.Equal(t, "tenant/t-1/id.png", k)
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), &config.Config{BlobDriver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())

	s, err = Open(context.Background(), &config.Config{BlobDriver: "fs", BlobFSRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())

	_, err = Open(context.Background(), &config.Config{BlobDriver: "ftp"})
	assert.Error(t, err)

	_, err = Open(context.Background(), &config.Config{BlobDriver: "s3"})
	assert.Error(t, err, "bucket is required")
}
