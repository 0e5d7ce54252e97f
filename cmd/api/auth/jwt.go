package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleReader = "reader"
	RoleAdmin  = "admin"
)

const defaultIssuer = "cgm-ai-eval"

// JWTManager 는 HS256 단일 시크릿으로 JWT 를 발급/검증한다.
// Sign 은 테스트와 운영용 토큰 발급에 쓴다.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWTManagerFromEnv 는 JWT_SECRET(필수)으로 JWTManager 를 만든다.
// issuer 가 비어 있으면 JWT_ISSUER, 그것도 없으면 "cgm-ai-eval" 을 쓴다.
func NewJWTManagerFromEnv(issuer string) (*JWTManager, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if issuer == "" {
		issuer = os.Getenv("JWT_ISSUER")
	}
	if issuer == "" {
		issuer = defaultIssuer
	}
	return &JWTManager{secret: []byte(secret), issuer: issuer, ttl: 24 * time.Hour}, nil
}

func (m *JWTManager) Sign(subject, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iss":  m.issuer,
		"exp":  time.Now().Add(m.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse 는 서명, 만료, issuer 를 검증하고 (sub, role) 을 반환한다.
func (m *JWTManager) Parse(tokenString string) (string, string, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", "", fmt.Errorf("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return "", "", fmt.Errorf("token missing sub claim")
	}
	return sub, role, nil
}

// Allows 는 role 이 required 권한을 가지는지 판단한다. admin 은 모든 권한을 가진다.
func Allows(role, required string) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleReader:
		return required == RoleReader
	default:
		return false
	}
}
