package jwtauth

import (
	"context"
	"log/slog"
	"time"
)

// Authenticator checks credentials against an external identity source.
// It returns the identity and true on success, false when the
// credentials are rejected, and an error when the source itself failed.
// Implementations should honor ctx cancellation.
type Authenticator[C, I any] func(ctx context.Context, credentials C) (I, bool, error)

// IssueResult is the outcome of an asynchronous issuance
type IssueResult struct {
	Token Token
	Err   error
}

// Issuer turns an authenticator into a token issuing function: the
// identity it resolves is fed through the claim builder and the result
// is signed.
type Issuer[C, I any] struct {
	authenticate Authenticator[C, I]
	builder      ClaimBuilder[I]
	signer       TokenSigner
	executor     Executor
	logger       *slog.Logger
}

// NewIssuer creates an Issuer. The authenticator runs on the configured
// Executor (GoExecutor unless WithExecutor is given).
func NewIssuer[C, I any](authenticate Authenticator[C, I], builder ClaimBuilder[I], signer TokenSigner, opts ...Option) (*Issuer[C, I], error) {
	if authenticate == nil {
		return nil, NewValidationError(ErrConfigError, "authenticator cannot be nil", nil)
	}
	if builder == nil {
		return nil, NewValidationError(ErrConfigError, "claim builder cannot be nil", nil)
	}
	if signer == nil {
		return nil, NewValidationError(ErrConfigError, "token signer cannot be nil", nil)
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Issuer[C, I]{
		authenticate: authenticate,
		builder:      builder,
		signer:       signer,
		executor:     o.executor,
		logger:       o.logger,
	}, nil
}

// IssueAsync starts issuance and returns a channel that receives exactly
// one result once the authenticator has resolved. The channel is
// buffered, so abandoning it does not leak the task.
func (iss *Issuer[C, I]) IssueAsync(ctx context.Context, credentials C) <-chan IssueResult {
	results := make(chan IssueResult, 1)
	err := iss.executor.Execute(ctx, func() {
		results <- iss.issue(ctx, credentials)
	})
	if err != nil {
		results <- IssueResult{Err: err}
	}
	return results
}

// Issue authenticates credentials and returns a signed token.
// Rejected credentials and any internal failure return
// ErrNotAuthenticated; a done ctx returns ctx.Err().
func (iss *Issuer[C, I]) Issue(ctx context.Context, credentials C) (Token, error) {
	select {
	case result := <-iss.IssueAsync(ctx, credentials):
		return result.Token, result.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (iss *Issuer[C, I]) issue(ctx context.Context, credentials C) IssueResult {
	startTime := time.Now()

	identity, ok, err := iss.authenticate(ctx, credentials)
	if err != nil {
		iss.logFailure(ctx, NewValidationError(ErrAuthentication, "authenticator failed", err), time.Since(startTime))
		return IssueResult{Err: ErrNotAuthenticated}
	}
	if !ok {
		iss.logFailure(ctx, NewValidationError(ErrAuthentication, "credentials rejected", nil), time.Since(startTime))
		return IssueResult{Err: ErrNotAuthenticated}
	}

	claims, ok := iss.builder(identity)
	if !ok {
		iss.logFailure(ctx, NewValidationError(ErrAuthentication, "claim builder yielded no claims", nil), time.Since(startTime))
		return IssueResult{Err: ErrNotAuthenticated}
	}

	token, err := iss.signer.Sign(claims)
	if err != nil {
		iss.logFailure(ctx, err, time.Since(startTime))
		return IssueResult{Err: ErrNotAuthenticated}
	}

	iss.logSuccess(ctx, claims, token, time.Since(startTime))
	return IssueResult{Token: token}
}

// logSuccess logs a successful issuance event
func (iss *Issuer[C, I]) logSuccess(ctx context.Context, claims ClaimSet, token Token, latency time.Duration) {
	if iss.logger == nil {
		return
	}

	requestID, _ := GetRequestID(ctx)
	event := SecurityEvent{
		EventType:    "success",
		Operation:    operationIssue,
		Timestamp:    time.Now(),
		RequestID:    requestID,
		UserID:       claims.Subject(),
		Algorithm:    extractAlgorithmFromToken(token.String()),
		TokenPreview: token.String(),
		Latency:      latency,
	}

	logSecurityEvent(iss.logger, event)
}

// logFailure logs a failed issuance event
func (iss *Issuer[C, I]) logFailure(ctx context.Context, err error, latency time.Duration) {
	if iss.logger == nil {
		return
	}

	requestID, _ := GetRequestID(ctx)
	event := SecurityEvent{
		EventType:     "failure",
		Operation:     operationIssue,
		Timestamp:     time.Now(),
		RequestID:     requestID,
		FailureReason: errorCode(err),
		Latency:       latency,
	}

	logSecurityEvent(iss.logger, event)
}
