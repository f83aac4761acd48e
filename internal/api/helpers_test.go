package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MohdFaizan63/Resume-Builder/internal/auth"
	"github.com/MohdFaizan63/Resume-Builder/internal/config"
	"github.com/MohdFaizan63/Resume-Builder/internal/database"
	"github.com/MohdFaizan63/Resume-Builder/internal/service"
)

var (
	keyOnce       sync.Once
	privateKeyPEM []byte
	publicKeyPEM  []byte
	keyErr        error
)

func testKeys(t *testing.T) ([]byte, []byte) {
	t.Helper()
	keyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			keyErr = err
			return
		}
		pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			keyErr = err
			return
		}
		privateKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
		publicKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub})
	})
	require.NoError(t, keyErr)
	return privateKeyPEM, publicKeyPEM
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

type fakeStorage struct {
	mu              sync.Mutex
	uploaded        map[string][]byte
	deletedPrefixes []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded[objectName] = b
	return &minio.UploadInfo{Key: objectName, Size: int64(len(b))}, nil
}

func (s *fakeStorage) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://example.invalid/" + objectKey, nil
}

func (s *fakeStorage) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedPrefixes = append(s.deletedPrefixes, prefix)
	for key := range s.uploaded {
		if strings.HasPrefix(key, prefix) {
			delete(s.uploaded, key)
		}
	}
	return nil
}

type testServer struct {
	engine  *gin.Engine
	db      *gorm.DB
	auth    *auth.AuthService
	redis   *miniredis.Miniredis
	storage *fakeStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	private, public := testKeys(t)
	authService, err := auth.NewAuthService(private, public, 15*time.Minute, time.Hour)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	db := newTestDB(t)
	storage := newFakeStorage()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			AccessTokenTTL:        15 * time.Minute,
			RefreshTokenTTL:       time.Hour,
			LoginRateLimitPerHour: 10,
			LoginLockThreshold:    3,
			LoginLockTTL:          time.Minute,
		},
		Resume: config.ResumeConfig{
			PublicRateLimit:  100,
			PublicRateWindow: time.Minute,
			AvatarMaxBytes:   1 << 20,
			AvatarURLTTL:     time.Minute,
		},
	}

	engine := NewRouter(Dependencies{
		Config:   cfg,
		DB:       db,
		Redis:    redisClient,
		Auth:     authService,
		Storage:  storage,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Resumes:  service.NewResumeService(db),
		Accounts: service.NewAccountService(db),
	})

	return &testServer{engine: engine, db: db, auth: authService, redis: mr, storage: storage}
}

// seedUser stores an account and returns it with a valid access token.
func (s *testServer) seedUser(t *testing.T, email string) (database.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := database.User{
		Name:         "Ann Lee",
		Email:        email,
		PasswordHash: hash,
		Role:         database.RoleUser,
		Subscription: database.Subscription{Plan: database.PlanFree, IsActive: true},
	}
	require.NoError(t, s.db.Create(&user).Error)

	pair, err := s.auth.GenerateTokenPair(user.ID, user.Role)
	require.NoError(t, err)
	return user, pair.AccessToken
}

type requestOption func(*http.Request)

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func withCookie(cookie *http.Cookie) requestOption {
	return func(r *http.Request) { r.AddCookie(cookie) }
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func draftBody(title string) map[string]any {
	return map[string]any{
		"title":    title,
		"template": "classic",
		"personalInfo": map[string]any{
			"firstName": "Ann",
			"lastName":  "Lee",
			"email":     "a@b.com",
		},
	}
}
