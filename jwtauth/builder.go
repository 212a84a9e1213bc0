package jwtauth

import (
	"time"

	"github.com/google/uuid"
)

// timeNow is the clock used by time-dependent builders and verifiers.
// Tests replace it to move time forward.
var timeNow = time.Now

// ClaimBuilder produces a claim set from a caller-defined input, such as
// an authenticated identity. Returning false means no claim set could be
// built and the token must not be issued.
type ClaimBuilder[I any] func(I) (ClaimSet, bool)

// And merges two builders. Both run against the same input; if either
// yields nothing the merged builder yields nothing. Otherwise the claims
// of next override the claims of b on a name collision, so a specific
// builder chained after a general one replaces its defaults.
func (b ClaimBuilder[I]) And(next ClaimBuilder[I]) ClaimBuilder[I] {
	return func(in I) (ClaimSet, bool) {
		left, ok := b(in)
		if !ok {
			return ClaimSet{}, false
		}
		right, ok := next(in)
		if !ok {
			return ClaimSet{}, false
		}
		return left.Merge(right), true
	}
}

// Chain folds builders left to right with And.
// An empty chain builds an empty claim set.
func Chain[I any](builders ...ClaimBuilder[I]) ClaimBuilder[I] {
	chained := ClaimBuilder[I](func(I) (ClaimSet, bool) {
		return ClaimSet{}, true
	})
	for _, b := range builders {
		chained = chained.And(b)
	}
	return chained
}

// ClaimSubject sets sub from the input
func ClaimSubject[I any](extract func(I) string) ClaimBuilder[I] {
	return func(in I) (ClaimSet, bool) {
		return NewClaimSet(Claim{ClaimNameSubject, extract(in)}), true
	}
}

// ClaimIssuer sets iss to a constant, ignoring the input
func ClaimIssuer[I any](name string) ClaimBuilder[I] {
	return func(I) (ClaimSet, bool) {
		return NewClaimSet(Claim{ClaimNameIssuer, name}), true
	}
}

// ClaimExpiration sets exp to now+d, evaluated each time the builder runs.
// d is floored to whole minutes with a minimum of one minute. exp is
// rounded up to the next whole second so the token lives at least d.
func ClaimExpiration[I any](d time.Duration) ClaimBuilder[I] {
	d = d.Truncate(time.Minute)
	if d < time.Minute {
		d = time.Minute
	}
	return func(I) (ClaimSet, bool) {
		exp := timeNow().Add(d)
		if whole := exp.Truncate(time.Second); !whole.Equal(exp) {
			exp = whole.Add(time.Second)
		}
		return NewClaimSet(Claim{ClaimNameExpiration, exp}), true
	}
}

// ClaimIssuedAt sets iat to the moment the builder runs
func ClaimIssuedAt[I any]() ClaimBuilder[I] {
	return func(I) (ClaimSet, bool) {
		return NewClaimSet(Claim{ClaimNameIssuedAt, timeNow()}), true
	}
}

// ClaimJWTID sets jti to a fresh random UUID on every run
func ClaimJWTID[I any]() ClaimBuilder[I] {
	return func(I) (ClaimSet, bool) {
		return NewClaimSet(Claim{ClaimNameJWTID, uuid.NewString()}), true
	}
}

// ClaimAudience sets aud to a constant
func ClaimAudience[I any](audience string) ClaimBuilder[I] {
	return func(I) (ClaimSet, bool) {
		return NewClaimSet(Claim{ClaimNameAudience, audience}), true
	}
}

// ClaimValue sets an arbitrary claim from the input
func ClaimValue[I any](name string, extract func(I) any) ClaimBuilder[I] {
	return func(in I) (ClaimSet, bool) {
		return NewClaimSet(Claim{name, extract(in)}), true
	}
}
