package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeySenin/user-service/internal/metrics"
)

// Precondition failures must be detected before any network call, so a
// client with no transport behind it is enough to exercise them.
func preconditionClient() *S3Client {
	return &S3Client{bucket: "avatars-test"}
}

func TestPut_RejectsBlankKey(t *testing.T) {
	c := preconditionClient()

	err := c.Put(context.Background(), "   ", []byte("data"), "image/png")

	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "put", storageErr.Op)
	assert.ErrorIs(t, err, ErrBlankKey)
}

func TestPut_RejectsEmptyPayload(t *testing.T) {
	c := preconditionClient()

	err := c.Put(context.Background(), "avatars/1/x/original.png", nil, "image/png")

	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "avatars/1/x/original.png", storageErr.Key)
	assert.ErrorIs(t, err, ErrEmptyObject)
}

func TestDelete_RejectsBlankKey(t *testing.T) {
	c := preconditionClient()

	err := c.Delete(context.Background(), "")

	assert.ErrorIs(t, err, ErrBlankKey)
}

func TestPresignGet_RejectsBlankKey(t *testing.T) {
	c := preconditionClient()

	url, err := c.PresignGet(context.Background(), "")

	assert.Empty(t, url)
	assert.ErrorIs(t, err, ErrBlankKey)
}

func TestPut_CountsRejectedOperation(t *testing.T) {
	m := metrics.Initialize()
	c := preconditionClient()
	c.SetMetrics(m)

	counter := m.StorageOperationsTotal.WithLabelValues("put", "rejected")
	before := testutil.ToFloat64(counter)

	err := c.Put(context.Background(), "  ", []byte("data"), "image/png")

	require.ErrorIs(t, err, ErrBlankKey)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestDelete_CountsRejectedOperation(t *testing.T) {
	m := metrics.Initialize()
	c := preconditionClient()
	c.SetMetrics(m)

	counter := m.StorageOperationsTotal.WithLabelValues("delete", "rejected")
	before := testutil.ToFloat64(counter)

	err := c.Delete(context.Background(), "")

	require.ErrorIs(t, err, ErrBlankKey)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestStorageError_CarriesKey(t *testing.T) {
	cause := errors.New("connection refused")
	err := newStorageError("put", "avatars/7/x/profile.jpg", cause)

	assert.Contains(t, err.Error(), `avatars/7/x/profile.jpg`)
	assert.Contains(t, err.Error(), "put")
	assert.ErrorIs(t, err, cause)
}
