package jwtauth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// supportedMethods maps algorithm identifiers to signing methods.
// Lookup is case-sensitive.
var supportedMethods = map[string]jwt.SigningMethod{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
	"RS256": jwt.SigningMethodRS256,
	"RS384": jwt.SigningMethodRS384,
	"RS512": jwt.SigningMethodRS512,
}

func lookupMethod(algorithm string) (jwt.SigningMethod, error) {
	if algorithm == "none" || algorithm == "None" || algorithm == "NONE" {
		return nil, fmt.Errorf("none algorithm is prohibited")
	}
	method, ok := supportedMethods[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported algorithm %q", algorithm)
	}
	return method, nil
}

// signingKeys turns the configured key material into the key types the
// signing method expects. HMAC methods use the material as the shared
// secret; RSA methods expect a PEM encoded private key (PKCS#1 or PKCS#8).
func signingKeys(method jwt.SigningMethod, material []byte) (signKey, verifyKey any, err error) {
	switch method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(material) == 0 {
			return nil, nil, fmt.Errorf("%s secret cannot be empty", method.Alg())
		}
		secret := make([]byte, len(material))
		copy(secret, material)
		return secret, secret, nil
	case *jwt.SigningMethodRSA:
		privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(material)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse RSA private key from PEM: %w", err)
		}
		return privateKey, &privateKey.PublicKey, nil
	}
	return nil, nil, fmt.Errorf("algorithm %s has no key handling", method.Alg())
}

// verifyingKey parses the public half for verify-only contexts
func verifyingKey(method jwt.SigningMethod, material []byte) (any, error) {
	switch method.(type) {
	case *jwt.SigningMethodHMAC:
		_, verifyKey, err := signingKeys(method, material)
		return verifyKey, err
	case *jwt.SigningMethodRSA:
		publicKey, err := jwt.ParseRSAPublicKeyFromPEM(material)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA public key from PEM: %w", err)
		}
		return publicKey, nil
	}
	return nil, fmt.Errorf("algorithm %s has no key handling", method.Alg())
}
