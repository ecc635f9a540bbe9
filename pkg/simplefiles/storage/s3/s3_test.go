package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-files/pkg/simplefiles"
)

func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("DefaultRegion", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", backend.config.Region)
	})

	t.Run("CustomEndpoint", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			Endpoint:        "http://localhost:9000",
			UsePathStyle:    true,
		})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000", backend.config.Endpoint)
		assert.True(t, backend.config.UsePathStyle)
	})
}

func TestApplySSE(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		algorithm types.ServerSideEncryption
		kmsKey    string
	}{
		{name: "disabled", config: Config{}},
		{name: "aes256", config: Config{EnableSSE: true, SSEAlgorithm: "AES256"}, algorithm: types.ServerSideEncryptionAes256},
		{name: "kms", config: Config{EnableSSE: true, SSEAlgorithm: "aws:kms", SSEKMSKeyID: "key-1"}, algorithm: types.ServerSideEncryptionAwsKms, kmsKey: "key-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Backend{config: tt.config}
			input := &s3.PutObjectInput{}
			b.applySSE(input)
			assert.Equal(t, tt.algorithm, input.ServerSideEncryption)
			if tt.kmsKey != "" {
				require.NotNil(t, input.SSEKMSKeyId)
				assert.Equal(t, tt.kmsKey, *input.SSEKMSKeyId)
			} else {
				assert.Nil(t, input.SSEKMSKeyId)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "NotFound"})))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(fmt.Errorf("boom")))
}

// TestS3Backend_Integration requires a running MinIO instance or S3 credentials
func TestS3Backend_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	endpoint := os.Getenv("AWS_S3_ENDPOINT")
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	bucket := os.Getenv("AWS_S3_BUCKET")

	if endpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		t.Skip("Skipping integration test: S3/MinIO environment variables not set")
	}

	backend, err := New(Config{
		Bucket:                 bucket,
		Region:                 "us-east-1",
		AccessKeyID:            accessKey,
		SecretAccessKey:        secretKey,
		Endpoint:               endpoint,
		UsePathStyle:           true,
		CreateBucketIfNotExist: true,
	})
	require.NoError(t, err)

	ctx := context.Background()
	objectKey := fmt.Sprintf("test/integration/%d", time.Now().UnixNano())
	testData := []byte("Hello from S3 integration test!")

	require.NoError(t, backend.UploadWithParams(ctx, bytes.NewReader(testData), simplefiles.UploadParams{
		ObjectKey: objectKey,
		MimeType:  "text/plain",
	}))

	reader, err := backend.Download(ctx, objectKey)
	require.NoError(t, err)
	got, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)
	assert.Equal(t, testData, got)

	ok, err := backend.Exists(ctx, objectKey)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = backend.Exists(ctx, objectKey+"_500")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = backend.Download(ctx, objectKey+"_100")
	assert.ErrorIs(t, err, simplefiles.ErrBlobNotFound)
}
