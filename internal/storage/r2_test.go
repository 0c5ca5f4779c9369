package storage

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBucketRequiresEndpointAndBucket(t *testing.T) {
	_, err := NewBucket(context.Background(), Options{Bucket: "media"})
	assert.Error(t, err)

	_, err = NewBucket(context.Background(), Options{Endpoint: "https://r2.example.com"})
	assert.Error(t, err)
}

func TestPresignUpload(t *testing.T) {
	bucket, err := NewBucket(context.Background(), Options{
		Endpoint:        "https://account.r2.example.com",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Bucket:          "kidoova-media",
	})
	require.NoError(t, err)

	upload, err := bucket.PresignUpload(context.Background(), "uploads/user-1/abc.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "PUT", upload.Method)
	assert.Equal(t, "uploads/user-1/abc.png", upload.Key)

	u, err := url.Parse(upload.URL)
	require.NoError(t, err)
	assert.Equal(t, "account.r2.example.com", u.Host)
	assert.Equal(t, "/kidoova-media/uploads/user-1/abc.png", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Contains(t, u.Query().Get("X-Amz-Credential"), "AKIDEXAMPLE")
}
