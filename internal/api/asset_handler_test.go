package api

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeScanner struct {
	err     error
	scanned int
}

func (s *fakeScanner) Scan(r io.Reader) error {
	s.scanned++
	_, _ = io.Copy(io.Discard, r)
	return s.err
}

func newMultipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func uploadAvatar(t *testing.T, h *AssetHandler, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	body, contentType := newMultipartUpload(t, "avatar.bin", content)
	req := httptest.NewRequest(http.MethodPost, "/api/assets/avatar", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("userID", uint(7))

	h.UploadAvatar(c)
	return w
}

func TestUploadAvatar_StoresUnderUserPrefix(t *testing.T) {
	storage := newFakeStorage()
	scanner := &fakeScanner{}
	h := &AssetHandler{Storage: storage, Scanner: scanner, MaxBytes: 1024, URLTTL: time.Minute}

	w := uploadAvatar(t, h, pngHeader)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	if scanner.scanned != 1 {
		t.Fatalf("expected one scan, got %d", scanner.scanned)
	}
	if len(storage.uploaded) != 1 {
		t.Fatalf("expected one upload, got %d", len(storage.uploaded))
	}
	for key := range storage.uploaded {
		if !strings.HasPrefix(key, "avatars/7/") || !strings.HasSuffix(key, ".png") {
			t.Fatalf("unexpected object key %q", key)
		}
		if !strings.Contains(w.Body.String(), key) {
			t.Fatalf("response does not mention key: %s", w.Body.String())
		}
	}
}

func TestUploadAvatar_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		content []byte
		scanErr error
		max     int64
	}{
		{name: "not an image", content: []byte("hello world, plain text"), max: 1024},
		{name: "too large", content: pngHeader, max: 4},
		{name: "malicious", content: pngHeader, scanErr: errMaliciousFile, max: 1024},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storage := newFakeStorage()
			h := &AssetHandler{Storage: storage, Scanner: &fakeScanner{err: tc.scanErr}, MaxBytes: tc.max, URLTTL: time.Minute}

			w := uploadAvatar(t, h, tc.content)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
			}
			if len(storage.uploaded) != 0 {
				t.Fatalf("nothing should be stored")
			}
		})
	}
}

func TestUploadAvatar_ScannerFailure(t *testing.T) {
	h := &AssetHandler{Storage: newFakeStorage(), Scanner: &fakeScanner{err: errors.New("clamd down")}, URLTTL: time.Minute}

	w := uploadAvatar(t, h, pngHeader)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
}

func TestGetAssetURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &AssetHandler{Storage: newFakeStorage(), URLTTL: time.Minute}

	cases := map[string]int{
		"":                     http.StatusBadRequest,
		"avatars/7/a.png":      http.StatusOK,
		"avatars/8/a.png":      http.StatusForbidden,
		"avatars/7/../8/a.png": http.StatusForbidden,
		"avatars/7/a.exe":      http.StatusForbidden,
		"avatars/70/a.png":     http.StatusForbidden,
	}
	for key, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/assets/view?key="+key, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = req
		c.Set("userID", uint(7))

		h.GetAssetURL(c)

		if w.Code != want {
			t.Fatalf("key %q: expected %d got %d", key, want, w.Code)
		}
	}
}
