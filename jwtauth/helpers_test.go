package jwtauth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"
)

const testSecret = "s3cr3t"

// fakeClock pins timeNow for the duration of a test. Tests using it
// must not run in parallel.
type fakeClock struct {
	now time.Time
}

func useFakeClock(t *testing.T, start time.Time) *fakeClock {
	t.Helper()
	clock := &fakeClock{now: start}
	previous := timeNow
	timeNow = func() time.Time { return clock.now }
	t.Cleanup(func() { timeNow = previous })
	return clock
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func mustCreateSigner(t testing.TB, algorithm string, secret []byte) *Signer {
	t.Helper()
	signer, err := NewSigner(algorithm, secret)
	if err != nil {
		t.Fatalf("Failed to create signer: %v", err)
	}
	return signer
}

func mustSign(t testing.TB, signer *Signer, claims ClaimSet) Token {
	t.Helper()
	token, err := signer.Sign(claims)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// mustGenerateRSAPEM returns PEM encoded private and public keys
func mustGenerateRSAPEM(t testing.TB) (privatePEM, publicPEM []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	privatePEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("Failed to marshal public key: %v", err)
	}
	publicPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})
	return privatePEM, publicPEM
}

// validClaims returns a claim set for subject expiring in an hour
func validClaims(subject string) ClaimSet {
	return NewClaimSet(
		Claim{ClaimNameSubject, subject},
		Claim{ClaimNameIssuer, "akka-jwt"},
		Claim{ClaimNameExpiration, time.Now().Add(time.Hour)},
	)
}
