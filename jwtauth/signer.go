package jwtauth

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Token is a compact JWS serialization: header.payload.signature,
// each segment base64url encoded without padding.
type Token string

// String returns the compact serialization
func (t Token) String() string {
	return string(t)
}

// TokenVerifier turns a token back into the claim set it carries
type TokenVerifier interface {
	Verify(token Token) (ClaimSet, error)
}

// TokenSigner signs a claim set
type TokenSigner interface {
	Sign(claims ClaimSet) (Token, error)
}

// segmentParser decodes segments strictly so that a signature has a
// single valid encoding.
var segmentParser = jwt.NewParser(jwt.WithStrictDecoding())

// compactToken is a token split into its segments
type compactToken struct {
	alg          string
	signingInput string
	payload      string
	signature    []byte
}

func splitCompact(raw string) (*compactToken, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, NewValidationError(ErrMalformedToken, "token must have three segments", nil)
	}

	headerBytes, err := segmentParser.DecodeSegment(parts[0])
	if err != nil {
		return nil, NewValidationError(ErrMalformedToken, "header is not base64url", err)
	}
	var header map[string]any
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, NewValidationError(ErrMalformedToken, "header is not a JSON object", err)
	}
	alg, ok := header["alg"].(string)
	if !ok {
		return nil, NewValidationError(ErrMalformedToken, "header has no string alg", nil)
	}

	if _, err := segmentParser.DecodeSegment(parts[1]); err != nil {
		return nil, NewValidationError(ErrMalformedToken, "payload is not base64url", err)
	}
	signature, err := segmentParser.DecodeSegment(parts[2])
	if err != nil {
		return nil, NewValidationError(ErrMalformedToken, "signature is not base64url", err)
	}

	return &compactToken{
		alg:          alg,
		signingInput: parts[0] + "." + parts[1],
		payload:      parts[1],
		signature:    signature,
	}, nil
}

// ParseToken checks that raw is a structurally valid compact token.
// It does not verify the signature.
func ParseToken(raw string) (Token, error) {
	if _, err := splitCompact(raw); err != nil {
		return "", err
	}
	return Token(raw), nil
}

// Signer is a signature context: one algorithm paired with one key.
// It holds only immutable configuration and is safe for concurrent use.
// Tokens verify only under the context that signed them.
type Signer struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
}

// NewSigner creates a signature context for algorithm. For the HS family
// secret is the shared secret; for the RS family it is a PEM encoded RSA
// private key.
func NewSigner(algorithm string, secret []byte) (*Signer, error) {
	method, err := lookupMethod(algorithm)
	if err != nil {
		return nil, NewValidationError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
	}
	signKey, verifyKey, err := signingKeys(method, secret)
	if err != nil {
		return nil, NewValidationError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
	}
	return &Signer{method: method, signKey: signKey, verifyKey: verifyKey}, nil
}

// NewVerifier creates a verify-only context. For the RS family key is a
// PEM encoded RSA public key; for the HS family it is the shared secret.
func NewVerifier(algorithm string, key []byte) (*Signer, error) {
	method, err := lookupMethod(algorithm)
	if err != nil {
		return nil, NewValidationError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
	}
	verifyKey, err := verifyingKey(method, key)
	if err != nil {
		return nil, NewValidationError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
	}
	return &Signer{method: method, verifyKey: verifyKey}, nil
}

// Algorithm returns the configured algorithm identifier
func (s *Signer) Algorithm() string {
	return s.method.Alg()
}

// CanSign reports whether the context holds signing key material
func (s *Signer) CanSign() bool {
	return s.signKey != nil
}

// Sign serializes claims and signs them
func (s *Signer) Sign(claims ClaimSet) (Token, error) {
	if s.signKey == nil {
		return "", NewValidationError(ErrConfigError, "signer is verify-only", nil)
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return Token(signed), nil
}

// Verify checks the token signature and returns the claim set it carries.
// The header algorithm must equal the configured one. Time based claims
// are not evaluated here; use a ClaimVerifier such as VerifyNotExpired.
func (s *Signer) Verify(token Token) (ClaimSet, error) {
	parsed, err := splitCompact(string(token))
	if err != nil {
		return ClaimSet{}, err
	}

	if parsed.alg != s.method.Alg() {
		return ClaimSet{}, NewValidationError(
			ErrInvalidSignature,
			fmt.Sprintf("token algorithm %s does not match configured algorithm %s", parsed.alg, s.method.Alg()),
			nil,
		)
	}

	if err := s.method.Verify(parsed.signingInput, parsed.signature, s.verifyKey); err != nil {
		return ClaimSet{}, NewValidationError(ErrInvalidSignature, "invalid signature", err)
	}

	payload, err := segmentParser.DecodeSegment(parsed.payload)
	if err != nil {
		return ClaimSet{}, NewValidationError(ErrMalformedToken, "payload is not base64url", err)
	}
	var claims ClaimSet
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ClaimSet{}, NewValidationError(ErrClaimDecodeFailure, "payload is not a claim set", err)
	}
	return claims, nil
}

var (
	_ TokenSigner   = (*Signer)(nil)
	_ TokenVerifier = (*Signer)(nil)
)
