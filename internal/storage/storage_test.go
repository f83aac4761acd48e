package storage

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, true},
		{"wrapped not found", fmt.Errorf("remove: %w", minio.ErrorResponse{Code: "NotFound"}), true},
		{"bare 404", minio.ErrorResponse{StatusCode: http.StatusNotFound}, true},
		{"missing bucket", minio.ErrorResponse{Code: "NoSuchBucket", StatusCode: http.StatusNotFound}, false},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, false},
		{"plain error", errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsNotFound(tc.err))
		})
	}
}

func TestParseBucketLookup(t *testing.T) {
	for in, want := range map[string]minio.BucketLookupType{
		"":       minio.BucketLookupAuto,
		" Auto ": minio.BucketLookupAuto,
		"dns":    minio.BucketLookupDNS,
		"PATH":   minio.BucketLookupPath,
	} {
		got, err := parseBucketLookup(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseBucketLookup("virtual")
	assert.Error(t, err)
}
