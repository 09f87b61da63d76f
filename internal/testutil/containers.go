// Package testutil starts the PostgreSQL and MinIO containers used by
// integration tests.
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	miniogo "github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	pgContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/RMahshie/nanooptics/internal/storage"
	"github.com/RMahshie/nanooptics/migrations"
)

const (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

// SkipIfShort skips integration tests in short mode
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// StartPostgres runs a PostgreSQL container with the schema applied and
// returns an open connection. The container is terminated on cleanup.
func StartPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := pgContainer.Run(ctx,
		"postgres:15-alpine",
		pgContainer.WithDatabase("nanooptics_test"),
		pgContainer.WithUsername("testuser"),
		pgContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.Up(ctx, db))
	return db
}

// MinIO is a running MinIO container with a fresh bucket
type MinIO struct {
	// S3 is the service under test, bound to the bucket
	S3     storage.S3Service
	client *miniogo.Client
	bucket string
}

// StartMinIO runs a MinIO container with a fresh bucket. The container is
// terminated on cleanup.
func StartMinIO(t *testing.T) *MinIO {
	t.Helper()
	ctx := context.Background()

	container, err := minio.Run(ctx,
		"minio/minio:RELEASE.2024-10-29T16-01-48Z",
		minio.WithUsername(minioUser),
		minio.WithPassword(minioPassword),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	endpoint, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := miniogo.New(endpoint, &miniogo.Options{
		Creds:  miniocreds.NewStaticV4(minioUser, minioPassword, ""),
		Secure: false,
	})
	require.NoError(t, err)

	bucket := "nanooptics-test-" + uuid.New().String()[:8]
	require.NoError(t, client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{}))

	s3Service, err := storage.NewS3Service(storage.S3Config{
		Bucket:    bucket,
		Endpoint:  endpoint,
		AccessKey: minioUser,
		SecretKey: minioPassword,
	})
	require.NoError(t, err)

	return &MinIO{S3: s3Service, client: client, bucket: bucket}
}

// Put stores an object directly, standing in for a browser upload through a
// pre-signed URL
func (m *MinIO) Put(t *testing.T, key, contentType string, data []byte) {
	t.Helper()
	_, err := m.client.PutObject(context.Background(), m.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: contentType})
	require.NoError(t, err)
}

// Exists reports whether key is present in the bucket
func (m *MinIO) Exists(t *testing.T, key string) bool {
	t.Helper()
	_, err := m.client.StatObject(context.Background(), m.bucket, key, miniogo.StatObjectOptions{})
	if err == nil {
		return true
	}
	require.Equal(t, "NoSuchKey", miniogo.ToErrorResponse(err).Code)
	return false
}
