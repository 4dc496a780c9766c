// Package voter resolves a stable per-browser voter fingerprint.
//
// The fingerprint is a random UUID carried in a signed cookie. Clearing the
// cookie yields a new fingerprint; that is accepted, the fingerprint is a
// deduplication key and not an identity check.
package voter

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"carshow-backend/config"
)

const contextKey = "voter_fingerprint"

// ErrInvalidToken is returned for cookies that fail verification.
var ErrInvalidToken = errors.New("invalid voter token")

// Resolver issues and verifies voter cookies.
type Resolver struct {
	secret     []byte
	cookieName string
	maxAge     time.Duration
	secure     bool
}

// NewResolver creates a Resolver. Without a configured secret a random one is
// generated, so cookies issued before a restart stop verifying.
func NewResolver(cfg config.VotingConfig) *Resolver {
	secret := []byte(cfg.CookieSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(fmt.Sprintf("voter: generate cookie secret: %v", err))
		}
	}
	return &Resolver{
		secret:     secret,
		cookieName: cfg.CookieName,
		maxAge:     time.Duration(cfg.CookieMaxAgeDays) * 24 * time.Hour,
		secure:     cfg.CookieSecure,
	}
}

// Issue signs a token carrying the fingerprint.
func (r *Resolver) Issue(fingerprint string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  fingerprint,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	})
	return token.SignedString(r.secret)
}

// Parse verifies a token and returns its fingerprint.
func (r *Resolver) Parse(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Fingerprint returns the caller's fingerprint, minting one and setting the
// cookie when the request carries none or an invalid one.
func (r *Resolver) Fingerprint(c *gin.Context) string {
	if fp, ok := c.Get(contextKey); ok {
		return fp.(string)
	}

	if raw, err := c.Cookie(r.cookieName); err == nil && raw != "" {
		if fp, err := r.Parse(raw); err == nil {
			c.Set(contextKey, fp)
			return fp
		}
	}

	fp := uuid.NewString()
	token, err := r.Issue(fp)
	if err != nil {
		log.Printf("Error signing voter cookie: %v", err)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(r.cookieName, token, int(r.maxAge.Seconds()), "/", "", r.secure, true)
	}
	c.Set(contextKey, fp)
	return fp
}

// Middleware resolves the fingerprint up front so handlers can use FromContext.
func (r *Resolver) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		r.Fingerprint(c)
		c.Next()
	}
}

// FromContext returns the fingerprint stored by Middleware, or "".
func FromContext(c *gin.Context) string {
	return c.GetString(contextKey)
}
