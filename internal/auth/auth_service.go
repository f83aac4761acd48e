package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MohdFaizan63/Resume-Builder/internal/config"
)

// Token types carried in TokenClaims.TokenType.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const (
	tokenIssuer = "resume-builder"
	clockSkew   = 5 * time.Second
)

// ErrInvalidToken wraps every reason a token is refused.
var ErrInvalidToken = errors.New("invalid token")

// AuthService 签发并校验 RS256 令牌，同时提供口令哈希。
type AuthService struct {
	privateKey *rsa.PrivateKey
	parser     *jwt.Parser
	keyFunc    jwt.Keyfunc
	ttl        map[string]time.Duration
	now        func() time.Time
}

// TokenPair 封装访问令牌与刷新令牌。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenClaims 是令牌中的业务字段。ID (jti) 用于刷新令牌的吊销。
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// NewAuthService 解析 PEM 密钥并构造服务实例。
func NewAuthService(privateKeyPEM, publicKeyPEM []byte, accessTTL, refreshTTL time.Duration) (*AuthService, error) {
	if len(privateKeyPEM) == 0 || len(publicKeyPEM) == 0 {
		return nil, errors.New("both private and public key pem are required")
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa private key: %w", err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa public key: %w", err)
	}

	return &AuthService{
		privateKey: privateKey,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
		keyFunc: func(*jwt.Token) (any, error) { return publicKey, nil },
		ttl: map[string]time.Duration{
			TokenTypeAccess:  accessTTL,
			TokenTypeRefresh: refreshTTL,
		},
		now: time.Now,
	}, nil
}

// LoadAuthService reads the PEM files named in cfg.
func LoadAuthService(cfg config.AuthConfig) (*AuthService, error) {
	privateKeyPEM, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	publicKeyPEM, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	return NewAuthService(privateKeyPEM, publicKeyPEM, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
}

// HashPassword hashes an account password.
func (s *AuthService) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

// CheckPasswordHash reports whether password matches an account hash.
func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	return CheckPasswordHash(password, hash)
}

// GenerateTokenPair 为用户签发一对新令牌。两者都带独立的 jti。
func (s *AuthService) GenerateTokenPair(userID uint, role string) (TokenPair, error) {
	now := s.now()
	access, err := s.sign(userID, role, TokenTypeAccess, now)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(userID, role, TokenTypeRefresh, now)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) sign(userID uint, role, tokenType string, now time.Time) (string, error) {
	claims := TokenClaims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl[tokenType])),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// ValidateToken 校验签名、签发者与有效期，返回令牌中的声明。
// Callers still check TokenType.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	var claims TokenClaims
	token, err := s.parser.ParseWithClaims(tokenString, &claims, s.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	return &claims, nil
}

// AccessTokenTTL 返回访问令牌有效期。
func (s *AuthService) AccessTokenTTL() time.Duration {
	return s.ttl[TokenTypeAccess]
}

// RefreshTokenTTL 返回刷新令牌有效期。
func (s *AuthService) RefreshTokenTTL() time.Duration {
	return s.ttl[TokenTypeRefresh]
}
