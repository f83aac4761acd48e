package storage

import (
	"errors"
	"net/http"

	"github.com/minio/minio-go/v7"
)

// IsNotFound reports whether err means the object or its key is absent.
// A missing bucket is a configuration error and does not count.
func IsNotFound(err error) bool {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	switch resp.Code {
	case "NoSuchKey", "NotFound":
		return true
	case "NoSuchBucket":
		return false
	}
	return resp.StatusCode == http.StatusNotFound
}
