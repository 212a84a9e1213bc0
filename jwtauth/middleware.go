package jwtauth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is honored for correlation when present
const RequestIDHeader = "X-Request-ID"

// unauthorizedResponse is identical for every failure cause
var unauthorizedResponse = gin.H{"error": "unauthorized"}

// BasicCredentials is a username/password pair from HTTP basic auth
type BasicCredentials struct {
	Username string
	Password string
}

// BasicCredentialsFromRequest reads HTTP basic auth credentials
func BasicCredentialsFromRequest(r *http.Request) (BasicCredentials, bool) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return BasicCredentials{}, false
	}
	return BasicCredentials{Username: username, Password: password}, true
}

// JWTAuth returns a Gin middleware admitting requests the authorizer
// accepts. The privilege value is stored in the request context and can
// be read with PrivilegeFrom[T].
func JWTAuth[T any](a *Authorizer[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithRequestID(c.Request.Context(), requestIDFrom(c.GetHeader(RequestIDHeader)))

		value, err := a.Authorize(ctx, c.Request.Header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedResponse)
			return
		}

		c.Request = c.Request.WithContext(WithPrivilege(ctx, value))
		c.Next()
	}
}

// IssueToken returns a Gin handler that authenticates the credentials
// extract pulls from the request and responds with the signed token as
// the body. Missing or rejected credentials get a 401.
func IssueToken[C, I any](iss *Issuer[C, I], extract func(*gin.Context) (C, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithRequestID(c.Request.Context(), requestIDFrom(c.GetHeader(RequestIDHeader)))

		credentials, ok := extract(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedResponse)
			return
		}

		token, err := iss.Issue(ctx, credentials)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedResponse)
			return
		}

		c.String(http.StatusOK, token.String())
	}
}

// GinBasicCredentials is an extractor for IssueToken reading basic auth
func GinBasicCredentials(c *gin.Context) (BasicCredentials, bool) {
	return BasicCredentialsFromRequest(c.Request)
}

// Middleware is the net/http counterpart of JWTAuth
func Middleware[T any](a *Authorizer[T]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithRequestID(r.Context(), requestIDFrom(r.Header.Get(RequestIDHeader)))

			value, err := a.Authorize(ctx, r.Header)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrivilege(ctx, value)))
		})
	}
}

// requestIDFrom keeps a caller supplied ID or generates one
func requestIDFrom(header string) string {
	if header != "" {
		return header
	}
	return uuid.New().String()
}
