// Package auth implements password hashing and cookie based sessions.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pocketguard/backend/internal/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("the session is invalid or has expired")
)

// Claims are the claims of a session token. The subject is the user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// Sessions issues and verifies signed session tokens stored in a cookie.
type Sessions struct {
	secret []byte
	issuer string
	ttl    time.Duration
	cookie string
	secure bool
}

func NewSessions(cfg config.SessionConfig) *Sessions {
	return &Sessions{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		cookie: cfg.CookieName,
		secure: cfg.Secure,
	}
}

// CookieName returns the name of the session cookie.
func (s *Sessions) CookieName() string {
	return s.cookie
}

// Issue creates a signed token for the user.
func (s *Sessions) Issue(userID uuid.UUID, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Parse verifies a token and returns the user ID it was issued for.
func (s *Sessions) Parse(token string) (uuid.UUID, error) {
	claims := &Claims{}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user ID", ErrInvalidSession)
	}

	return id, nil
}

// Start issues a token and sets it as session cookie.
func (s *Sessions) Start(c *gin.Context, userID uuid.UUID) error {
	token, expiresAt, err := s.Issue(userID, time.Now())
	if err != nil {
		return err
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.cookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// End removes the session cookie.
func (s *Sessions) End(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
