package jwtauth

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

// TestClaimSetImmutability tests that With and Merge never touch the receiver
func TestClaimSetImmutability(t *testing.T) {
	base := NewClaimSet(Claim{"sub", "alice"}, Claim{"iss", "a"})

	withRole := base.With("role", "admin")
	merged := base.Merge(NewClaimSet(Claim{"iss", "b"}))

	if base.Len() != 2 {
		t.Errorf("Expected base to keep 2 claims, got %d", base.Len())
	}
	if iss := base.Issuer(); iss != "a" {
		t.Errorf("Expected base iss to stay %q, got %q", "a", iss)
	}
	if !withRole.Has("role") {
		t.Error("Expected With result to hold role")
	}
	if iss := merged.Issuer(); iss != "b" {
		t.Errorf("Expected merged iss %q, got %q", "b", iss)
	}
}

// TestClaimSetMergeOrder tests right-biased merge and name ordering
func TestClaimSetMergeOrder(t *testing.T) {
	left := NewClaimSet(Claim{"sub", "alice"}, Claim{"iss", "a"}, Claim{"role", "user"})
	right := NewClaimSet(Claim{"role", "admin"}, Claim{"exp", time.Unix(1700000000, 0)})

	merged := left.Merge(right)

	wantNames := []string{"sub", "iss", "role", "exp"}
	if got := merged.Names(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("Expected names %v, got %v", wantNames, got)
	}
	if role, _ := merged.String("role"); role != "admin" {
		t.Errorf("Expected role %q, got %q", "admin", role)
	}
}

// TestNewClaimSetDuplicates tests that a repeated name keeps its first position and last value
func TestNewClaimSetDuplicates(t *testing.T) {
	cs := NewClaimSet(Claim{"a", 1}, Claim{"b", 2}, Claim{"a", 3})

	if got := cs.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Expected names [a b], got %v", got)
	}
	if v, _ := cs.Get("a"); v != int64(3) {
		t.Errorf("Expected a=3, got %v (%T)", v, v)
	}
}

// TestClaimSetJSONOrder tests that encoding keeps insertion order and timestamps become NumericDate
func TestClaimSetJSONOrder(t *testing.T) {
	cs := NewClaimSet(
		Claim{"sub", "John Snow"},
		Claim{"iss", "akka-jwt"},
		Claim{"exp", time.Unix(1700000060, 0)},
		Claim{"level", 3},
	)

	data, err := json.Marshal(cs)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	want := `{"sub":"John Snow","iss":"akka-jwt","exp":1700000060,"level":3}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}

	var decoded ClaimSet
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if !decoded.Equal(cs) {
		t.Errorf("Expected decoded claim set to equal original, got %v", decoded.Map())
	}
	exp, ok := decoded.Expiration()
	if !ok || exp.Unix() != 1700000060 {
		t.Errorf("Expected exp to decode as timestamp 1700000060, got %v (ok=%v)", exp, ok)
	}
}

// TestClaimSetDecodeFailures tests payloads that are not well-formed claim sets
func TestClaimSetDecodeFailures(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "JSON array", payload: `["sub"]`},
		{name: "JSON string", payload: `"sub"`},
		{name: "Non-string subject", payload: `{"sub":42}`},
		{name: "Non-string issuer", payload: `{"iss":true}`},
		{name: "String expiration", payload: `{"exp":"tomorrow"}`},
		{name: "Object issued-at", payload: `{"iat":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cs ClaimSet
			if err := json.Unmarshal([]byte(tt.payload), &cs); err == nil {
				t.Errorf("Expected decode of %s to fail", tt.payload)
			}
		})
	}
}

// TestClaimSetEqual tests numeric and timestamp equality rules
func TestClaimSetEqual(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		a, b  ClaimSet
		equal bool
	}{
		{
			name:  "int and float with same value",
			a:     NewClaimSet(Claim{"n", 3}),
			b:     NewClaimSet(Claim{"n", 3.0}),
			equal: true,
		},
		{
			name:  "timestamps within the same second",
			a:     NewClaimSet(Claim{"exp", now}),
			b:     NewClaimSet(Claim{"exp", time.Unix(now.Unix(), 0).UTC()}),
			equal: true,
		},
		{
			name:  "different order",
			a:     NewClaimSet(Claim{"a", "1"}, Claim{"b", "2"}),
			b:     NewClaimSet(Claim{"b", "2"}, Claim{"a", "1"}),
			equal: false,
		},
		{
			name:  "different values",
			a:     NewClaimSet(Claim{"a", "1"}),
			b:     NewClaimSet(Claim{"a", "2"}),
			equal: false,
		},
		{
			name:  "empty sets",
			a:     ClaimSet{},
			b:     NewClaimSet(),
			equal: true,
		},
		{
			name:  "string slice and decoded list",
			a:     NewClaimSet(Claim{"roles", []string{"admin", "ops"}}),
			b:     NewClaimSet(Claim{"roles", []any{"admin", "ops"}}),
			equal: true,
		},
		{
			name:  "nested numbers compare by value",
			a:     NewClaimSet(Claim{"limits", map[string]any{"max": 2.0, "ids": []any{1, 2}}}),
			b:     NewClaimSet(Claim{"limits", map[string]any{"max": int64(2), "ids": []any{int64(1), 2.0}}}),
			equal: true,
		},
		{
			name:  "lists of different length",
			a:     NewClaimSet(Claim{"roles", []string{"admin"}}),
			b:     NewClaimSet(Claim{"roles", []string{"admin", "ops"}}),
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Expected Equal=%v, got %v", tt.equal, got)
			}
		})
	}
}

// TestClaimSetAudience tests single and array audience forms
func TestClaimSetAudience(t *testing.T) {
	single := NewClaimSet(Claim{"aud", "api"})
	if got := single.Audience(); !reflect.DeepEqual(got, []string{"api"}) {
		t.Errorf("Expected [api], got %v", got)
	}

	var decoded ClaimSet
	if err := json.Unmarshal([]byte(`{"aud":["api","web"]}`), &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if got := decoded.Audience(); !reflect.DeepEqual(got, []string{"api", "web"}) {
		t.Errorf("Expected [api web], got %v", got)
	}
}

// TestClaimSetStoresDecodedForm tests that values are held in the form they decode back to
func TestClaimSetStoresDecodedForm(t *testing.T) {
	authTime := time.Unix(1700000000, 500)
	cs := NewClaimSet(
		Claim{"auth_time", authTime},
		Claim{"groups", []string{"ops"}},
		Claim{"exp", int64(1700000060)},
		Claim{"nbf", 1700000000.75},
	)

	if v, _ := cs.Get("auth_time"); v != int64(1700000000) {
		t.Errorf("Expected custom timestamp as Unix seconds, got %T(%v)", v, v)
	}
	if v, _ := cs.Get("groups"); !reflect.DeepEqual(v, []any{"ops"}) {
		t.Errorf("Expected []any{ops}, got %T(%v)", v, v)
	}
	if exp, ok := cs.Expiration(); !ok || exp.Unix() != 1700000060 {
		t.Errorf("Expected numeric exp stored as timestamp, got %v (ok=%v)", exp, ok)
	}
	if nbf, ok := cs.Time("nbf"); !ok || nbf.Unix() != 1700000000 {
		t.Errorf("Expected fractional nbf floored to whole seconds, got %v (ok=%v)", nbf, ok)
	}
}
