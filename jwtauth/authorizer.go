package jwtauth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Authorizer admits or rejects requests by their bearer token. A token
// is admitted only if it parses, its signature verifies and the
// privilege accepts its claim set; the privilege's result is what the
// protected handler receives.
//
// An Authorizer is immutable and safe for concurrent use.
type Authorizer[T any] struct {
	verifier  TokenVerifier
	privilege Privilege[T]
	logger    *slog.Logger
}

// NewAuthorizer creates an Authorizer. verifier is usually a *Signer.
func NewAuthorizer[T any](verifier TokenVerifier, privilege Privilege[T], opts ...Option) (*Authorizer[T], error) {
	if verifier == nil {
		return nil, NewValidationError(ErrConfigError, "token verifier cannot be nil", nil)
	}
	if privilege == nil {
		return nil, NewValidationError(ErrConfigError, "privilege cannot be nil", nil)
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Authorizer[T]{
		verifier:  verifier,
		privilege: privilege,
		logger:    o.logger,
	}, nil
}

// Authorize runs the pipeline against the Authorization header of h
func (a *Authorizer[T]) Authorize(ctx context.Context, h http.Header) (T, error) {
	return a.AuthorizeValues(ctx, h.Values(AuthorizationHeader))
}

// AuthorizeValues runs the pipeline against the raw values of the
// authorization header. Every failure returns ErrUnauthorized; the cause
// is only reported to the security log.
func (a *Authorizer[T]) AuthorizeValues(ctx context.Context, values []string) (T, error) {
	startTime := time.Now()

	value, claims, raw, err := a.evaluate(values)
	if err != nil {
		a.logFailure(ctx, raw, err, time.Since(startTime))
		var zero T
		return zero, ErrUnauthorized
	}

	a.logSuccess(ctx, raw, claims, time.Since(startTime))
	return value, nil
}

// evaluate returns the precise failure; callers outside the package only
// ever see ErrUnauthorized.
func (a *Authorizer[T]) evaluate(values []string) (T, ClaimSet, string, error) {
	var zero T

	token, raw, err := extractBearerToken(values)
	if err != nil {
		return zero, ClaimSet{}, raw, err
	}

	claims, err := a.verifier.Verify(token)
	if err != nil {
		return zero, ClaimSet{}, raw, err
	}

	value, ok := a.privilege(claims)
	if !ok {
		return zero, claims, raw, NewValidationError(
			ErrPrivilegeDenied,
			fmt.Sprintf("privilege denied for subject %q", claims.Subject()),
			nil,
		)
	}
	return value, claims, raw, nil
}

// logSuccess logs a successful authorization event
func (a *Authorizer[T]) logSuccess(ctx context.Context, token string, claims ClaimSet, latency time.Duration) {
	if a.logger == nil {
		return
	}

	requestID, _ := GetRequestID(ctx)
	event := SecurityEvent{
		EventType:    "success",
		Operation:    operationAuthorize,
		Timestamp:    time.Now(),
		RequestID:    requestID,
		UserID:       claims.Subject(),
		Algorithm:    extractAlgorithmFromToken(token),
		TokenPreview: token,
		Latency:      latency,
	}

	logSecurityEvent(a.logger, event)
}

// logFailure logs a failed authorization event
func (a *Authorizer[T]) logFailure(ctx context.Context, token string, err error, latency time.Duration) {
	if a.logger == nil {
		return
	}

	requestID, _ := GetRequestID(ctx)
	event := SecurityEvent{
		EventType:     "failure",
		Operation:     operationAuthorize,
		Timestamp:     time.Now(),
		RequestID:     requestID,
		Algorithm:     extractAlgorithmFromToken(token),
		FailureReason: errorCode(err),
		TokenPreview:  token,
		Latency:       latency,
	}

	logSecurityEvent(a.logger, event)
}

// extractAlgorithmFromToken extracts the algorithm from a JWT token header
// for logging. Returns "MALFORMED" if the token does not parse and an
// empty string if there was no token at all.
func extractAlgorithmFromToken(token string) string {
	if token == "" {
		return ""
	}
	parsed, err := splitCompact(token)
	if err != nil {
		return "MALFORMED"
	}
	return parsed.alg
}
