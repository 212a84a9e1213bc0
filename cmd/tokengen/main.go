package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Wang-tianhao/vibrant-jwt-privilege/jwtauth"
)

type identity struct {
	subject string
	role    string
}

func main() {
	var (
		algorithm = flag.String("alg", "HS256", "Signing algorithm (HS256, HS384, HS512)")
		secret    = flag.String("secret", "s3cr3t", "Shared secret")
		subject   = flag.String("sub", "John Snow", "Subject (user ID)")
		issuer    = flag.String("iss", "akka-jwt", "Issuer")
		role      = flag.String("role", "user", "User role")
		validity  = flag.Duration("exp", time.Hour, "Token validity (whole minutes, at least 1m)")
		verify    = flag.String("verify", "", "Verify this token instead of generating one")
	)

	flag.Parse()

	signer, err := jwtauth.NewSigner(*algorithm, []byte(*secret))
	if err != nil {
		log.Fatalf("Invalid signing configuration: %v", err)
	}

	if *verify != "" {
		verifyToken(signer, *verify)
		return
	}

	builder := jwtauth.Chain(
		jwtauth.ClaimSubject(func(id identity) string { return id.subject }),
		jwtauth.ClaimIssuer[identity](*issuer),
		jwtauth.ClaimValue("role", func(id identity) any { return id.role }),
		jwtauth.ClaimIssuedAt[identity](),
		jwtauth.ClaimExpiration[identity](*validity),
	)

	claims, _ := builder(identity{subject: *subject, role: *role})
	token, err := signer.Sign(claims)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	exp, _ := claims.Expiration()

	fmt.Println("\n=== JWT Token Generated ===")
	fmt.Printf("\nToken: %s\n\n", token)
	fmt.Println("Claims:")
	fmt.Printf("  Subject: %s\n", claims.Subject())
	fmt.Printf("  Issuer:  %s\n", claims.Issuer())
	fmt.Printf("  Role:    %s\n", *role)
	fmt.Printf("  Expires: %s\n\n", exp.Format(time.RFC3339))
	fmt.Println("Usage:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:8080/api/profile\n\n", token)
}

func verifyToken(signer *jwtauth.Signer, raw string) {
	token, err := jwtauth.ParseToken(raw)
	if err != nil {
		log.Fatalf("Malformed token: %v", err)
	}

	claims, err := signer.Verify(token)
	if err != nil {
		log.Fatalf("Verification failed: %v", err)
	}

	fmt.Println("\n=== Signature Valid ===")
	for _, name := range claims.Names() {
		value, _ := claims.Get(name)
		if t, ok := value.(time.Time); ok {
			value = t.Format(time.RFC3339)
		}
		fmt.Printf("  %s: %v\n", name, value)
	}

	if _, ok := jwtauth.VerifyNotExpired(claims); !ok {
		fmt.Println("\nToken is expired or carries no exp claim")
		return
	}
	fmt.Println("\nToken is within its validity period")
}
