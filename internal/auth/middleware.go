package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const claimsKey = "claims"

// TokenTTL is the lifetime of issued identity tokens.
const TokenTTL = 24 * time.Hour

// Claims represents the JWT claims structure.
type Claims struct {
	UserID string `json:"uid"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the given identity.
func IssueToken(secret string, cl Claims, now time.Time) (string, error) {
	cl.IssuedAt = jwt.NewNumericDate(now)
	cl.ExpiresAt = jwt.NewNumericDate(now.Add(TokenTTL))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString([]byte(secret))
}

// ParseToken validates tokenStr and returns its claims.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// tokenFrom reads the bearer token from the Authorization header, falling
// back to the "token" cookie.
func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

// Identify attaches claims to the context when a valid token is present.
// Requests without one pass through untouched.
func Identify(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := tokenFrom(c); tokenStr != "" {
			if claims, err := ParseToken(secret, tokenStr); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// Required rejects requests that Identify could not resolve to a caller.
func Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ClaimsFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid bearer token"})
			return
		}
		c.Next()
	}
}

func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	cl, ok := v.(*Claims)
	return cl, ok
}

// ActorFrom returns the caller's display name, or fallback when the request
// is anonymous.
func ActorFrom(c *gin.Context, fallback string) string {
	if fallback = strings.TrimSpace(fallback); fallback != "" {
		return fallback
	}
	if cl, ok := ClaimsFrom(c); ok && cl.Name != "" {
		return cl.Name
	}
	return ""
}
