package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/nanooptics/internal/storage"
	"github.com/RMahshie/nanooptics/internal/testutil"
)

func TestValidateContentType(t *testing.T) {
	for _, ct := range []string{"image/tiff", "image/png", "image/jpeg", "image/bmp"} {
		assert.NoError(t, storage.ValidateContentType(ct), ct)
	}

	err := storage.ValidateContentType("audio/wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid content type")
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".tif", storage.ExtensionFor("image/tiff"))
	assert.Equal(t, ".png", storage.ExtensionFor("image/png"))
	assert.Equal(t, ".img", storage.ExtensionFor("application/octet-stream"))
}

func TestNewS3Service_RequiresBucket(t *testing.T) {
	_, err := storage.NewS3Service(storage.S3Config{})
	assert.Error(t, err)
}

func TestS3Service_Integration(t *testing.T) {
	testutil.SkipIfShort(t)

	minio := testutil.StartMinIO(t)
	s3Service := minio.S3
	ctx := context.Background()

	key := "images/test.png"
	data := []byte("\x89PNG\r\n\x1a\nnot really an image")

	minio.Put(t, key, "image/png", data)

	got, err := s3Service.DownloadFile(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	uploadURL, err := s3Service.GenerateUploadURL(ctx, "images/next.tif", "image/tiff")
	require.NoError(t, err)
	assert.Contains(t, uploadURL, "images/next.tif")

	_, err = s3Service.GenerateUploadURL(ctx, "images/next.wav", "audio/wav")
	assert.Error(t, err)

	downloadURL, err := s3Service.GenerateDownloadURL(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, downloadURL, "X-Amz-Signature")

	require.NoError(t, s3Service.DeleteFile(ctx, key))
	assert.False(t, minio.Exists(t, key))
	_, err = s3Service.DownloadFile(ctx, key)
	assert.Error(t, err)
}
