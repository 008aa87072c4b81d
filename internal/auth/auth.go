package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "auth.principal"

var ErrInvalidToken = errors.New("invalid token")

// Principal is the caller identified by a bearer token.
type Principal struct {
	UserID  string
	IsStaff bool
}

type Claims struct {
	IsStaff bool `json:"is_staff"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
	now    func() time.Time
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

// IssueToken signs an HS256 token for userID valid for ttl.
func (a *Authenticator) IssueToken(userID string, isStaff bool, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		IsStaff: isStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) Parse(tokenStr string) (Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid || claims.Subject == "" {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: claims.Subject, IsStaff: claims.IsStaff}, nil
}

// Authenticate resolves the bearer token if one is sent. A malformed or
// expired token is rejected; a missing one leaves the request anonymous.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abort(c, http.StatusUnauthorized, "Invalid authorization header.")
			return
		}
		p, err := a.Parse(strings.TrimSpace(tokenStr))
		if err != nil {
			abort(c, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func FromContext(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// RequireAuthenticated admits any identified caller.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := FromContext(c); !ok {
			abortAnonymous(c)
			return
		}
		c.Next()
	}
}

// AdminOrAuthenticatedReadOnly lets identified callers read and staff write.
func AdminOrAuthenticatedReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := FromContext(c)
		switch {
		case !ok:
			abortAnonymous(c)
		case !isSafe(c.Request.Method) && !p.IsStaff:
			abortForbidden(c)
		default:
			c.Next()
		}
	}
}

// AdminOrReadOnly lets anyone read and staff write.
func AdminOrReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafe(c.Request.Method) {
			c.Next()
			return
		}
		p, ok := FromContext(c)
		switch {
		case !ok:
			abortAnonymous(c)
		case !p.IsStaff:
			abortForbidden(c)
		default:
			c.Next()
		}
	}
}

// RequireAdmin admits staff only, whatever the method.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := FromContext(c)
		switch {
		case !ok:
			abortAnonymous(c)
		case !p.IsStaff:
			abortForbidden(c)
		default:
			c.Next()
		}
	}
}

func isSafe(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func abortAnonymous(c *gin.Context) {
	abort(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
}

func abortForbidden(c *gin.Context) {
	abort(c, http.StatusForbidden, "You do not have permission to perform this action.")
}

func abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
