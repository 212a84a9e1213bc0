package jwtauth

// ClaimVerifier checks a verified claim set. It returns the claim set to
// hand to the next stage, which is usually the input unchanged, or false
// to deny.
type ClaimVerifier func(ClaimSet) (ClaimSet, bool)

// Privilege projects a verified claim set into the value a protected
// handler works with, or denies with false.
type Privilege[T any] func(ClaimSet) (T, bool)

// And runs v then next. next only runs when v succeeds and receives the
// claim set v produced, not the original.
func (v ClaimVerifier) And(next ClaimVerifier) ClaimVerifier {
	return func(claims ClaimSet) (ClaimSet, bool) {
		out, ok := v(claims)
		if !ok {
			return ClaimSet{}, false
		}
		return next(out)
	}
}

// Privilege adapts the verifier into a privilege yielding the claim set
func (v ClaimVerifier) Privilege() Privilege[ClaimSet] {
	return Privilege[ClaimSet](v)
}

// Then runs the verifier and, if it passes, the privilege on its output
func Then[T any](v ClaimVerifier, p Privilege[T]) Privilege[T] {
	return func(claims ClaimSet) (T, bool) {
		out, ok := v(claims)
		if !ok {
			var zero T
			return zero, false
		}
		return p(out)
	}
}

// Project chains a further projection after a privilege
func Project[T, U any](p Privilege[T], f func(T) (U, bool)) Privilege[U] {
	return func(claims ClaimSet) (U, bool) {
		t, ok := p(claims)
		if !ok {
			var zero U
			return zero, false
		}
		return f(t)
	}
}

// Verifiers folds verifiers left to right with And.
// An empty list passes every claim set through.
func Verifiers(verifiers ...ClaimVerifier) ClaimVerifier {
	chained := ClaimVerifier(func(claims ClaimSet) (ClaimSet, bool) {
		return claims, true
	})
	for _, v := range verifiers {
		chained = chained.And(v)
	}
	return chained
}

// VerifyNotExpired denies claim sets without exp and claim sets whose
// exp is at or before the current time.
var VerifyNotExpired ClaimVerifier = func(claims ClaimSet) (ClaimSet, bool) {
	exp, ok := claims.Expiration()
	if !ok {
		return ClaimSet{}, false
	}
	if !timeNow().Before(exp) {
		return ClaimSet{}, false
	}
	return claims, true
}

// VerifyNotBefore denies claim sets whose nbf is after the current time.
// A claim set without nbf passes.
var VerifyNotBefore ClaimVerifier = func(claims ClaimSet) (ClaimSet, bool) {
	if !claims.Has(ClaimNameNotBefore) {
		return claims, true
	}
	nbf, ok := claims.Time(ClaimNameNotBefore)
	if !ok || timeNow().Before(nbf) {
		return ClaimSet{}, false
	}
	return claims, true
}

// VerifyIssuer denies claim sets whose iss is not issuer
func VerifyIssuer(issuer string) ClaimVerifier {
	return func(claims ClaimSet) (ClaimSet, bool) {
		if iss, ok := claims.String(ClaimNameIssuer); !ok || iss != issuer {
			return ClaimSet{}, false
		}
		return claims, true
	}
}

// RequireClaims denies claim sets missing any of names
func RequireClaims(names ...string) ClaimVerifier {
	return func(claims ClaimSet) (ClaimSet, bool) {
		for _, name := range names {
			if !claims.Has(name) {
				return ClaimSet{}, false
			}
		}
		return claims, true
	}
}

// VerifyClaim denies claim sets where name does not hold value
func VerifyClaim(name string, value any) ClaimVerifier {
	want := normalizeValue(name, value)
	return func(claims ClaimSet) (ClaimSet, bool) {
		got, ok := claims.Get(name)
		if !ok || !valuesEqual(got, want) {
			return ClaimSet{}, false
		}
		return claims, true
	}
}

// SubjectPrivilege projects to the sub claim, denying when it is absent
// or empty.
var SubjectPrivilege Privilege[string] = func(claims ClaimSet) (string, bool) {
	sub, ok := claims.String(ClaimNameSubject)
	if !ok || sub == "" {
		return "", false
	}
	return sub, true
}
