package jwtauth

import "strings"

const (
	// AuthorizationHeader is the header carrying the bearer token
	AuthorizationHeader = "Authorization"

	// BearerPrefix is matched case-sensitively
	BearerPrefix = "Bearer "
)

// extractBearerToken takes the values of the authorization header (HTTP
// header or gRPC metadata) and returns the parsed token.
// Expected format: "Bearer <token>"
func extractBearerToken(values []string) (Token, string, error) {
	if len(values) == 0 || values[0] == "" {
		return "", "", NewValidationError(ErrMissingHeader, "authorization header not found", nil)
	}

	authHeader := values[0]
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", "", NewValidationError(ErrMalformedBearer, "invalid authorization header format, expected 'Bearer <token>'", nil)
	}

	raw := authHeader[len(BearerPrefix):]
	token, err := ParseToken(raw)
	if err != nil {
		return "", raw, err
	}
	return token, raw, nil
}
