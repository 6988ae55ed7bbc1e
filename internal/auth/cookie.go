package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// CookieManager signs the session ID into the cookie value so a tampered
// cookie fails before any store lookup happens.
type CookieManager struct {
	secret []byte
	ttl    time.Duration
	name   string
}

// NewCookieManager builds a new manager.
func NewCookieManager(secret, cookieName string, ttl time.Duration) *CookieManager {
	return &CookieManager{secret: []byte(secret), ttl: ttl, name: cookieName}
}

// CookieName returns the configured cookie name.
func (cm *CookieManager) CookieName() string {
	return cm.name
}

// TTL returns the session lifetime.
func (cm *CookieManager) TTL() time.Duration {
	return cm.ttl
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Issue signs a cookie value carrying the session ID.
func (cm *CookieManager) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cm.secret)
}

// Parse validates the cookie value and returns the session ID.
func (cm *CookieManager) Parse(value string) (string, error) {
	parsed, err := jwt.ParseWithClaims(value, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return cm.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return "", errors.New("invalid session cookie")
	}
	return claims.SessionID, nil
}
