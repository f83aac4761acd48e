package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

var errMaliciousFile = errors.New("malicious file detected")

// avatarTypes maps the sniffed content type to the stored extension.
var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// ObjectStore is the part of storage.Client used for avatars.
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

// Scanner checks an upload for malware.
type Scanner interface {
	Scan(r io.Reader) error
}

// ClamdScanner scans uploads through a clamd daemon.
type ClamdScanner struct {
	Addr string
}

// Scan streams r to clamd and fails on any non-OK verdict.
func (s ClamdScanner) Scan(r io.Reader) error {
	abort := make(chan bool)
	defer close(abort)

	results, err := clamd.NewClamd(s.Addr).ScanStream(r, abort)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}
	for result := range results {
		if result.Status != clamd.RES_OK {
			return errMaliciousFile
		}
	}
	return nil
}

// AssetHandler 负责头像上传与访问。
type AssetHandler struct {
	Storage  ObjectStore
	Scanner  Scanner
	Logger   *slog.Logger
	MaxBytes int64
	URLTTL   time.Duration
}

// NewAssetHandler 返回 AssetHandler 实例；clamdAddr 为空时跳过病毒扫描。
func NewAssetHandler(store ObjectStore, logger *slog.Logger, clamdAddr string, maxBytes int64, urlTTL time.Duration) *AssetHandler {
	h := &AssetHandler{
		Storage:  store,
		Logger:   logger,
		MaxBytes: maxBytes,
		URLTTL:   urlTTL,
	}
	if clamdAddr != "" {
		h.Scanner = ClamdScanner{Addr: clamdAddr}
	}
	return h
}

// UploadAvatar 上传头像图片，返回对象键与临时访问链接。
func (h *AssetHandler) UploadAvatar(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if h.MaxBytes > 0 && file.Size > h.MaxBytes {
		BadRequest(c, fmt.Sprintf("file exceeds %d bytes", h.MaxBytes))
		return
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		Internal(c, "failed to read file")
		return
	}

	contentType := http.DetectContentType(data)
	ext, allowed := avatarTypes[contentType]
	if !allowed {
		BadRequest(c, "only png, jpeg and webp images are allowed")
		return
	}

	logger := h.logger().With(slog.Uint64("user_id", uint64(userID)))
	if h.Scanner != nil {
		if err := h.Scanner.Scan(bytes.NewReader(data)); err != nil {
			if errors.Is(err, errMaliciousFile) {
				BadRequest(c, err.Error())
				return
			}
			logger.Error("scan avatar failed", slog.Any("error", err))
			Internal(c, "failed to scan file")
			return
		}
	}

	objectKey := fmt.Sprintf("%s%s%s", avatarPrefix(userID), uuid.NewString(), ext)
	ctx := c.Request.Context()
	if _, err := h.Storage.UploadFile(ctx, objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		logger.Error("upload avatar failed", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	signedURL, err := h.Storage.GeneratePresignedURL(ctx, objectKey, h.URLTTL)
	if err != nil {
		logger.Error("generate avatar url failed", slog.Any("error", err))
		Internal(c, "failed to generate url")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"objectKey": objectKey, "url": signedURL})
}

// GetAssetURL 返回头像的临时预签名 URL。
func (h *AssetHandler) GetAssetURL(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	objectKey := c.Query("key")
	if objectKey == "" {
		BadRequest(c, "missing key")
		return
	}
	if !isValidAvatarObjectKey(userID, objectKey) {
		Forbidden(c, "access denied")
		return
	}

	signedURL, err := h.Storage.GeneratePresignedURL(c.Request.Context(), objectKey, h.URLTTL)
	if err != nil {
		h.logger().Error("generate presigned url", slog.Any("error", err))
		Internal(c, "failed to generate url")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

func (h *AssetHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
