package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/compucar/backend/internal/domain/tuning"
	infraconfig "github.com/compucar/backend/internal/infrastructure/config"
)

func validStorageConfig() *infraconfig.StorageConfig {
	return &infraconfig.StorageConfig{
		Endpoint:        "localhost:9000",
		Region:          "us-east-1",
		Bucket:          "tuning-files",
		AccessKeyID:     "test-access",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*infraconfig.StorageConfig)
		nilCfg  bool
		wantErr string
	}{
		{name: "valid config", mutate: func(c *infraconfig.StorageConfig) {}},
		{name: "nil config", nilCfg: true, wantErr: "configuration is required"},
		{
			name:    "missing bucket",
			mutate:  func(c *infraconfig.StorageConfig) { c.Bucket = "" },
			wantErr: "bucket is required",
		},
		{
			name:    "missing access key",
			mutate:  func(c *infraconfig.StorageConfig) { c.AccessKeyID = "" },
			wantErr: "access key is required",
		},
		{
			name:    "missing secret key",
			mutate:  func(c *infraconfig.StorageConfig) { c.SecretAccessKey = "" },
			wantErr: "secret key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg *infraconfig.StorageConfig
			if !tt.nilCfg {
				cfg = validStorageConfig()
				tt.mutate(cfg)
			}

			store, err := NewS3ObjectStorage(cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "tuning-files", store.GetBucket())
		})
	}
}

func TestS3ObjectStorageOptions(t *testing.T) {
	store, err := NewS3ObjectStorage(validStorageConfig(),
		WithLogger(zap.NewNop()),
		WithPresignExpiration(time.Hour),
	)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, store.presignExpiration)
}

func TestS3ObjectStorage_DefaultPresignExpiration(t *testing.T) {
	store, err := NewS3ObjectStorage(validStorageConfig())
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, store.presignExpiration)
}

func TestS3ObjectStorage_Upload_ValidationOnly(t *testing.T) {
	store, err := NewS3ObjectStorage(validStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, store.Upload(ctx, "", []byte{1}, ""))
	assert.Error(t, store.Upload(ctx, "key", nil, ""))

	oversize := make([]byte, tuning.MaxTuningFileSize+1)
	err = store.Upload(ctx, "key", oversize, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum size")
}

func TestS3ObjectStorage_EmptyKeyRejected(t *testing.T) {
	store, err := NewS3ObjectStorage(validStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Download(ctx, "")
	assert.Error(t, err)
	assert.Error(t, store.DeleteObject(ctx, ""))
	_, err = store.ObjectExists(ctx, "")
	assert.Error(t, err)
	_, _, err = store.GenerateDownloadURL(ctx, "", time.Minute)
	assert.Error(t, err)
}
